package approval

import "fieldjobs/internal/domain"

// Item is one job in the review queue with its evidence split by type.
type Item struct {
	Job        domain.Job        `json:"job"`
	Photos     []domain.Evidence `json:"photos"`
	Signatures []domain.Evidence `json:"signatures"`
}

// Evidence lists photos first, then signatures.
func (it *Item) Evidence() []domain.Evidence {
	out := make([]domain.Evidence, 0, len(it.Photos)+len(it.Signatures))
	out = append(out, it.Photos...)
	return append(out, it.Signatures...)
}

// Workspace is the reviewer's view of the queue: which job is open and
// which of its evidence items is being previewed. It is not safe for
// concurrent use.
type Workspace struct {
	items    []Item
	selected int
	preview  int
}

// NewWorkspace copies items; the caller's slice is never modified.
func NewWorkspace(items []Item) *Workspace {
	return &Workspace{items: append([]Item(nil), items...), selected: -1}
}

func (w *Workspace) Items() []Item {
	return w.items
}

func (w *Workspace) Len() int {
	return len(w.items)
}

// Select opens the job with the given id. Unknown ids leave the
// selection unchanged.
func (w *Workspace) Select(id string) bool {
	i := w.indexOf(id)
	if i < 0 {
		return false
	}
	w.selected = i
	w.preview = 0
	return true
}

// Selected returns the open job, nil when none is open.
func (w *Workspace) Selected() *Item {
	if w.selected < 0 || w.selected >= len(w.items) {
		return nil
	}
	return &w.items[w.selected]
}

// Process removes a decided job and opens the one that took its place,
// or the new last job when it was the last. The selection is cleared
// once the queue is empty.
func (w *Workspace) Process(id string) *Item {
	i := w.indexOf(id)
	if i >= 0 {
		w.items = append(w.items[:i], w.items[i+1:]...)
	} else {
		i = 0
	}

	w.preview = 0
	if len(w.items) == 0 {
		w.selected = -1
		return nil
	}
	w.selected = min(i, len(w.items)-1)
	return &w.items[w.selected]
}

// Preview returns the evidence currently previewed in the open job.
func (w *Workspace) Preview() *domain.Evidence {
	ev := w.evidence()
	if len(ev) == 0 {
		return nil
	}
	return &ev[w.preview]
}

// NextEvidence moves the preview forward, wrapping to the first item.
func (w *Workspace) NextEvidence() *domain.Evidence {
	return w.step(1)
}

// PrevEvidence moves the preview back, wrapping to the last item.
func (w *Workspace) PrevEvidence() *domain.Evidence {
	return w.step(-1)
}

func (w *Workspace) step(delta int) *domain.Evidence {
	ev := w.evidence()
	if len(ev) == 0 {
		return nil
	}
	w.preview = ((w.preview+delta)%len(ev) + len(ev)) % len(ev)
	return &ev[w.preview]
}

func (w *Workspace) evidence() []domain.Evidence {
	it := w.Selected()
	if it == nil {
		return nil
	}
	return it.Evidence()
}

func (w *Workspace) indexOf(id string) int {
	for i := range w.items {
		if w.items[i].Job.ID == id {
			return i
		}
	}
	return -1
}
