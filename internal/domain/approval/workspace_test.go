package approval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldjobs/internal/domain"
)

func queue(ids ...string) []Item {
	items := make([]Item, len(ids))
	for i, id := range ids {
		items[i] = Item{Job: domain.Job{ID: id}}
	}
	return items
}

// Processing J2 of [J1 J2 J3] opens J3, the job that took its place,
// not J1.
func TestWorkspace_ProcessAdvancesToSameIndex(t *testing.T) {
	ws := NewWorkspace(queue("J1", "J2", "J3"))
	require.True(t, ws.Select("J2"))

	next := ws.Process("J2")
	require.NotNil(t, next)
	assert.Equal(t, "J3", next.Job.ID)
	assert.Equal(t, "J3", ws.Selected().Job.ID)
	assert.Equal(t, 2, ws.Len())
}

func TestNewWorkspace_LeavesCallerSliceIntact(t *testing.T) {
	q := queue("J1", "J2", "J3")
	ws := NewWorkspace(q)
	require.True(t, ws.Select("J2"))
	ws.Process("J2")

	ids := make([]string, len(q))
	for i, it := range q {
		ids[i] = it.Job.ID
	}
	assert.Equal(t, []string{"J1", "J2", "J3"}, ids)
	assert.Equal(t, 2, ws.Len())
}

func TestWorkspace_ProcessLastClampsToNewLast(t *testing.T) {
	ws := NewWorkspace(queue("J1", "J2", "J3"))
	ws.Select("J3")

	next := ws.Process("J3")
	require.NotNil(t, next)
	assert.Equal(t, "J2", next.Job.ID)
}

func TestWorkspace_ProcessOnlyJobClearsSelection(t *testing.T) {
	ws := NewWorkspace(queue("J1"))
	ws.Select("J1")

	assert.Nil(t, ws.Process("J1"))
	assert.Nil(t, ws.Selected())
	assert.Zero(t, ws.Len())
}

func TestWorkspace_ProcessUnknownSelectsFirst(t *testing.T) {
	ws := NewWorkspace(queue("J1", "J2"))

	next := ws.Process("gone")
	require.NotNil(t, next)
	assert.Equal(t, "J1", next.Job.ID)
	assert.Equal(t, 2, ws.Len())
}

func TestWorkspace_SelectUnknown(t *testing.T) {
	ws := NewWorkspace(queue("J1"))
	assert.False(t, ws.Select("nope"))
	assert.Nil(t, ws.Selected())
}

func TestWorkspace_EvidenceNavigationWraps(t *testing.T) {
	items := queue("J1")
	items[0].Photos = []domain.Evidence{{ID: "p1"}, {ID: "p2"}}
	items[0].Signatures = []domain.Evidence{{ID: "s1"}}
	ws := NewWorkspace(items)

	assert.Nil(t, ws.NextEvidence(), "no job selected")
	ws.Select("J1")

	assert.Equal(t, "p1", ws.Preview().ID)
	assert.Equal(t, "p2", ws.NextEvidence().ID)
	assert.Equal(t, "s1", ws.NextEvidence().ID)
	assert.Equal(t, "p1", ws.NextEvidence().ID)
	assert.Equal(t, "s1", ws.PrevEvidence().ID)

	ws.Select("J1")
	assert.Equal(t, "p1", ws.Preview().ID, "selecting resets the preview")
}

func TestComposeReason(t *testing.T) {
	assert.Equal(t, "Falta firma del cliente. La foto está oscura",
		ComposeReason([]string{"Falta firma del cliente"}, "  La foto está oscura "))
	assert.Equal(t, "Falta foto del montaje", ComposeReason([]string{"Falta foto del montaje", " "}, ""))
	assert.Equal(t, "", ComposeReason(nil, "   "))
}

func TestRejectRequest_Compose(t *testing.T) {
	assert.Equal(t, "Motivo libre", RejectRequest{Reason: " Motivo libre "}.Compose())
	assert.Equal(t, "A. B", RejectRequest{Reasons: []string{"A"}, Comment: "B"}.Compose())
}
