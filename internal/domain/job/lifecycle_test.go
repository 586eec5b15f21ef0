package job

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldjobs/internal/domain"
	"fieldjobs/internal/domain/evidence"
)

var (
	complete   = evidence.Check([]domain.Evidence{{Type: domain.EvidencePhoto}, {Type: domain.EvidenceSignature}})
	photosOnly = evidence.Check([]domain.Evidence{{Type: domain.EvidencePhoto}})
	nothing    = evidence.Check(nil)
)

func installer(c evidence.Completeness) Payload {
	return Payload{Role: domain.RoleInstaller, IsAssignee: true, Completeness: &c}
}

func admin(reason string) Payload {
	return Payload{Role: domain.RoleAdmin, Reason: reason}
}

func TestTransition_Submit(t *testing.T) {
	out, err := Transition(domain.JobStatusPending, EventSubmit, installer(complete))
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusEnRevision, out.Status)
	assert.Nil(t, out.RejectionReason)
	assert.Equal(t, NoticeSubmitted, out.Notify)
}

func TestTransition_SubmitRequiresPhotoAndSignature(t *testing.T) {
	_, err := Transition(domain.JobStatusPending, EventSubmit, installer(photosOnly))
	assert.ErrorIs(t, err, ErrEvidenceIncomplete)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "signature")

	_, err = Transition(domain.JobStatusPending, EventSubmit, installer(nothing))
	assert.ErrorIs(t, err, ErrEvidenceIncomplete)
	assert.Contains(t, err.Error(), "photo, signature")

	_, err = Transition(domain.JobStatusPending, EventSubmit, Payload{Role: domain.RoleInstaller, IsAssignee: true})
	assert.ErrorIs(t, err, ErrEvidenceIncomplete)
}

func TestTransition_SubmitGuards(t *testing.T) {
	p := installer(complete)
	p.IsAssignee = false
	_, err := Transition(domain.JobStatusPending, EventSubmit, p)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = Transition(domain.JobStatusPending, EventSubmit, Payload{Role: domain.RoleAdmin, IsAssignee: true, Completeness: &complete})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = Transition(domain.JobStatusApproved, EventSubmit, installer(complete))
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTransition_Approve(t *testing.T) {
	out, err := Transition(domain.JobStatusEnRevision, EventApprove, admin(""))
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusApproved, out.Status)
	assert.Equal(t, NoticeApproved, out.Notify)

	_, err = Transition(domain.JobStatusEnRevision, EventApprove, Payload{Role: domain.RoleInstaller})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = Transition(domain.JobStatusPending, EventApprove, admin(""))
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTransition_Reject(t *testing.T) {
	for _, from := range []domain.JobStatus{domain.JobStatusEnRevision, domain.JobStatusApproved} {
		out, err := Transition(from, EventReject, admin("  Falta firma del cliente  "))
		require.NoError(t, err)
		assert.Equal(t, domain.JobStatusPending, out.Status)
		require.NotNil(t, out.RejectionReason)
		assert.Equal(t, "Falta firma del cliente", *out.RejectionReason)
		assert.Equal(t, NoticeRejected, out.Notify)
	}
}

func TestTransition_RejectNeedsReason(t *testing.T) {
	for _, reason := range []string{"", "   ", "\n\t"} {
		_, err := Transition(domain.JobStatusEnRevision, EventReject, admin(reason))
		assert.ErrorIs(t, err, ErrValidation)
	}

	_, err := Transition(domain.JobStatusPending, EventReject, admin("x"))
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTransition_Revert(t *testing.T) {
	out, err := Transition(domain.JobStatusApproved, EventRevert, admin(" "))
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusEnRevision, out.Status)
	assert.Nil(t, out.RejectionReason)
	assert.Equal(t, NoticeNone, out.Notify)

	out, err = Transition(domain.JobStatusApproved, EventRevert, admin("Fotos borrosas"))
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusPending, out.Status)
	assert.Equal(t, "Fotos borrosas", *out.RejectionReason)
	assert.Equal(t, NoticeReverted, out.Notify)

	_, err = Transition(domain.JobStatusEnRevision, EventRevert, admin(""))
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTransition_Delete(t *testing.T) {
	for _, from := range []domain.JobStatus{domain.JobStatusPending, domain.JobStatusEnRevision} {
		out, err := Transition(from, EventDelete, admin(""))
		require.NoError(t, err)
		assert.True(t, out.Delete)
	}

	for _, from := range []domain.JobStatus{domain.JobStatusApproved, domain.JobStatusPaid} {
		_, err := Transition(from, EventDelete, admin(""))
		assert.ErrorIs(t, err, ErrDeleteNotAllowed)
		assert.Contains(t, err.Error(), "pending, en_revision")
	}

	_, err := Transition(domain.JobStatusPending, EventDelete, Payload{Role: domain.RoleInstaller})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestTransition_PaidIsTerminal(t *testing.T) {
	for _, ev := range []Event{EventSubmit, EventApprove, EventReject, EventRevert} {
		p := admin("reason")
		if ev == EventSubmit {
			p = installer(complete)
		}
		_, err := Transition(domain.JobStatusPaid, ev, p)
		assert.ErrorIs(t, err, ErrInvalidTransition, ev)
	}
}

func TestTransition_UnknownEvent(t *testing.T) {
	_, err := Transition(domain.JobStatusPending, Event("archive"), admin(""))
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
