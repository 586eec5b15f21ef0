// Package livelist keeps a fetched list together with the change patches
// received since that fetch. The authoritative state is always the last
// baseline; patches only shape the view until the next Reconcile.
package livelist

import "sync"

type Op string

const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
	OpDelete Op = "DELETE"
)

type Patch[T any] struct {
	Op   Op
	Item T
}

type pendingPatch[T any] struct {
	correlationID string
	patch         Patch[T]
}

type List[T any] struct {
	mu       sync.RWMutex
	key      func(T) string
	baseline []T
	pending  []pendingPatch[T]
}

// New returns an empty list whose items are identified by key.
func New[T any](key func(T) string) *List[T] {
	return &List[T]{key: key}
}

// Apply records a patch that arrived from the change feed.
func (l *List[T]) Apply(p Patch[T]) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = append(l.pending, pendingPatch[T]{patch: p})
}

// Optimistic records a local patch tagged with correlationID so it can be
// discarded if the action it anticipates fails.
func (l *List[T]) Optimistic(correlationID string, p Patch[T]) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = append(l.pending, pendingPatch[T]{correlationID: correlationID, patch: p})
}

func (l *List[T]) Discard(correlationID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.pending[:0]
	for _, p := range l.pending {
		if p.correlationID != correlationID || correlationID == "" {
			kept = append(kept, p)
		}
	}
	l.pending = kept
}

// Reconcile replaces the baseline with a fresh fetch and drops every
// pending patch, optimistic or not.
func (l *List[T]) Reconcile(fresh []T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.baseline = append([]T(nil), fresh...)
	l.pending = nil
}

// Dirty reports whether the view differs from the last fetch.
func (l *List[T]) Dirty() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.pending) > 0
}

func (l *List[T]) Baseline() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]T(nil), l.baseline...)
}

// View is the baseline with pending patches applied in arrival order.
func (l *List[T]) View() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := append([]T(nil), l.baseline...)
	for _, pp := range l.pending {
		out = l.apply(out, pp.patch)
	}
	return out
}

func (l *List[T]) apply(items []T, p Patch[T]) []T {
	k := l.key(p.Item)
	idx := -1
	for i, it := range items {
		if l.key(it) == k {
			idx = i
			break
		}
	}

	switch p.Op {
	case OpInsert, OpUpdate:
		if idx >= 0 {
			items[idx] = p.Item
			return items
		}
		return append([]T{p.Item}, items...)
	case OpDelete:
		if idx < 0 {
			return items
		}
		return append(items[:idx], items[idx+1:]...)
	}
	return items
}
