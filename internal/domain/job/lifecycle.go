package job

import (
	"fmt"
	"strings"

	"fieldjobs/internal/domain"
	"fieldjobs/internal/domain/evidence"
)

type Event string

const (
	EventSubmit  Event = "submit"
	EventApprove Event = "approve"
	EventReject  Event = "reject"
	EventRevert  Event = "revert"
	EventDelete  Event = "delete"
)

// Notice names the notification a transition produces.
type Notice int

const (
	NoticeNone Notice = iota
	NoticeSubmitted
	NoticeApproved
	NoticeRejected
	NoticeReverted
)

// Payload carries everything the guards look at.
type Payload struct {
	Role       domain.UserRole
	IsAssignee bool
	Reason     string
	// Completeness is required for EventSubmit.
	Completeness *evidence.Completeness
}

// Outcome is what the caller must persist. RejectionReason is always
// written: it is non-nil only when the job goes back to pending with a reason.
type Outcome struct {
	Status          domain.JobStatus
	RejectionReason *string
	Delete          bool
	Notify          Notice
}

// Transition applies event to a job in status current. It performs no I/O.
func Transition(current domain.JobStatus, event Event, p Payload) (Outcome, error) {
	switch event {
	case EventSubmit:
		return submit(current, p)
	case EventApprove:
		return approve(current, p)
	case EventReject:
		return reject(current, p)
	case EventRevert:
		return revert(current, p)
	case EventDelete:
		return remove(current, p)
	}
	return Outcome{}, fmt.Errorf("%w: unknown event %q", ErrInvalidTransition, event)
}

func submit(current domain.JobStatus, p Payload) (Outcome, error) {
	if p.Role != domain.RoleInstaller || !p.IsAssignee {
		return Outcome{}, ErrUnauthorized
	}
	if current != domain.JobStatusPending {
		return Outcome{}, invalid(current, EventSubmit)
	}
	if p.Completeness == nil || !p.Completeness.CanSubmit {
		return Outcome{}, incomplete(p.Completeness)
	}
	return Outcome{Status: domain.JobStatusEnRevision, Notify: NoticeSubmitted}, nil
}

func approve(current domain.JobStatus, p Payload) (Outcome, error) {
	if p.Role != domain.RoleAdmin {
		return Outcome{}, ErrUnauthorized
	}
	if current != domain.JobStatusEnRevision {
		return Outcome{}, invalid(current, EventApprove)
	}
	return Outcome{Status: domain.JobStatusApproved, Notify: NoticeApproved}, nil
}

func reject(current domain.JobStatus, p Payload) (Outcome, error) {
	if p.Role != domain.RoleAdmin {
		return Outcome{}, ErrUnauthorized
	}
	if current != domain.JobStatusEnRevision && current != domain.JobStatusApproved {
		return Outcome{}, invalid(current, EventReject)
	}
	reason := strings.TrimSpace(p.Reason)
	if reason == "" {
		return Outcome{}, validationError("a rejection reason is required")
	}
	return Outcome{Status: domain.JobStatusPending, RejectionReason: &reason, Notify: NoticeRejected}, nil
}

// revert undoes an approval: without a reason the job goes back to internal
// review, with one it returns to the installer.
func revert(current domain.JobStatus, p Payload) (Outcome, error) {
	if p.Role != domain.RoleAdmin {
		return Outcome{}, ErrUnauthorized
	}
	if current != domain.JobStatusApproved {
		return Outcome{}, invalid(current, EventRevert)
	}
	reason := strings.TrimSpace(p.Reason)
	if reason == "" {
		return Outcome{Status: domain.JobStatusEnRevision}, nil
	}
	return Outcome{Status: domain.JobStatusPending, RejectionReason: &reason, Notify: NoticeReverted}, nil
}

func remove(current domain.JobStatus, p Payload) (Outcome, error) {
	if p.Role != domain.RoleAdmin {
		return Outcome{}, ErrUnauthorized
	}
	if current != domain.JobStatusPending && current != domain.JobStatusEnRevision {
		return Outcome{}, ErrDeleteNotAllowed
	}
	return Outcome{Status: current, Delete: true}, nil
}

func invalid(current domain.JobStatus, event Event) error {
	return fmt.Errorf("%w: cannot %s a job in status %s", ErrInvalidTransition, event, current)
}

func incomplete(c *evidence.Completeness) error {
	if c == nil {
		return fmt.Errorf("%w: evidence not checked", ErrEvidenceIncomplete)
	}
	missing := make([]string, len(c.Missing))
	for i, m := range c.Missing {
		missing[i] = string(m)
	}
	return fmt.Errorf("%w: missing %s", ErrEvidenceIncomplete, strings.Join(missing, ", "))
}
