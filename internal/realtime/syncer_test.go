package realtime

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldjobs/internal/logging"
	"fieldjobs/internal/pkg/livelist"
)

type item struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func TestPatchFromEvent(t *testing.T) {
	p, ok := PatchFromEvent[item](ChangeEvent{Type: ChangeUpdate, Record: map[string]any{"id": "a", "title": "A"}})
	require.True(t, ok)
	assert.Equal(t, livelist.OpUpdate, p.Op)
	assert.Equal(t, item{ID: "a", Title: "A"}, p.Item)

	p, ok = PatchFromEvent[item](ChangeEvent{Type: ChangeDelete, OldRecord: map[string]any{"id": "b"}})
	require.True(t, ok)
	assert.Equal(t, livelist.OpDelete, p.Op)
	assert.Equal(t, "b", p.Item.ID)

	_, ok = PatchFromEvent[item](ChangeEvent{Type: ChangeDelete})
	assert.False(t, ok)
}

func TestSyncer_RefetchesOnEveryChange(t *testing.T) {
	var calls atomic.Int32
	server := [][]item{
		{{ID: "a", Title: "A"}},
		{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}},
	}
	fetch := func(context.Context) ([]item, error) {
		n := int(calls.Add(1)) - 1
		if n >= len(server) {
			n = len(server) - 1
		}
		return server[n], nil
	}

	list := livelist.New(func(i item) string { return i.ID })
	s := NewSyncer(list, fetch, logging.Discard())

	msgs := make(chan ServerMessage, 3)
	msgs <- ServerMessage{Type: MessageSubscribed, Topic: "jobs"}
	msgs <- ServerMessage{Type: MessageChange, Event: &ChangeEvent{
		Table: "jobs", Type: ChangeInsert, Record: map[string]any{"id": "b", "title": "B"},
	}}
	close(msgs)

	require.NoError(t, s.Run(context.Background(), msgs))
	assert.Equal(t, int32(2), calls.Load(), "initial fetch plus one per change")
	assert.False(t, list.Dirty())
	assert.Equal(t, server[1], list.View())
}

func TestSyncer_InitialFetchFailure(t *testing.T) {
	list := livelist.New(func(i item) string { return i.ID })
	boom := errors.New("boom")
	s := NewSyncer(list, func(context.Context) ([]item, error) { return nil, boom }, logging.Discard())

	err := s.Run(context.Background(), make(chan ServerMessage))
	assert.ErrorIs(t, err, boom)
}
