package realtime

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"fieldjobs/internal/pkg/livelist"
)

// FetchFunc loads the authoritative list.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// Syncer keeps a livelist in step with the change feed. Every event is
// applied as a patch for immediate display and then triggers a full
// re-fetch, which is what the list ends up holding.
type Syncer[T any] struct {
	list  *livelist.List[T]
	fetch FetchFunc[T]
	log   logrus.FieldLogger
}

func NewSyncer[T any](list *livelist.List[T], fetch FetchFunc[T], log logrus.FieldLogger) *Syncer[T] {
	return &Syncer[T]{list: list, fetch: fetch, log: log}
}

// Refresh replaces the baseline with a fresh fetch.
func (s *Syncer[T]) Refresh(ctx context.Context) error {
	items, err := s.fetch(ctx)
	if err != nil {
		return err
	}
	s.list.Reconcile(items)
	return nil
}

// Run consumes messages until ctx ends or the channel closes. A failed
// re-fetch is logged and the list stays dirty until the next event.
func (s *Syncer[T]) Run(ctx context.Context, messages <-chan ServerMessage) error {
	if err := s.Refresh(ctx); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			if msg.Type != MessageChange || msg.Event == nil {
				continue
			}
			if p, ok := PatchFromEvent[T](*msg.Event); ok {
				s.list.Apply(p)
			}
			if err := s.Refresh(ctx); err != nil {
				s.log.WithError(err).WithField("table", msg.Event.Table).Warn("refetch after change failed")
			}
		}
	}
}

// PatchFromEvent decodes the event row into T. Deletes carry the old row.
func PatchFromEvent[T any](ev ChangeEvent) (livelist.Patch[T], bool) {
	record := ev.Record
	if ev.Type == ChangeDelete {
		record = ev.OldRecord
	}
	if record == nil {
		return livelist.Patch[T]{}, false
	}
	b, err := json.Marshal(record)
	if err != nil {
		return livelist.Patch[T]{}, false
	}
	var item T
	if err := json.Unmarshal(b, &item); err != nil {
		return livelist.Patch[T]{}, false
	}
	return livelist.Patch[T]{Op: livelist.Op(ev.Type), Item: item}, true
}
