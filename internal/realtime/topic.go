package realtime

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fieldjobs/internal/domain"
)

var (
	ErrInvalidTopic   = errors.New("invalid topic")
	ErrTopicForbidden = errors.New("topic not allowed for this user")
)

// Topic selects the events of one table, optionally narrowed to rows
// whose column equals value. The wire form is "table" or
// "table:column=value".
type Topic struct {
	Table  string
	Column string
	Value  string
}

var knownTables = map[string]bool{
	TableJobs:          true,
	TableEvidence:      true,
	TableNotifications: true,
}

func ParseTopic(s string) (Topic, error) {
	s = strings.TrimSpace(s)
	table, filter, hasFilter := strings.Cut(s, ":")
	if !knownTables[table] {
		return Topic{}, fmt.Errorf("%w: unknown table %q", ErrInvalidTopic, table)
	}
	if !hasFilter {
		return Topic{Table: table}, nil
	}
	column, value, ok := strings.Cut(filter, "=")
	if !ok || column == "" || value == "" {
		return Topic{}, fmt.Errorf("%w: filter must be column=value", ErrInvalidTopic)
	}
	return Topic{Table: table, Column: column, Value: value}, nil
}

func (t Topic) String() string {
	if t.Column == "" {
		return t.Table
	}
	return t.Table + ":" + t.Column + "=" + t.Value
}

// Matches reports whether ev belongs to the topic. A filtered topic
// matches when either the new or the old row carries the value, so a
// subscriber also learns that a row left its filter.
func (t Topic) Matches(ev ChangeEvent) bool {
	if ev.Table != t.Table {
		return false
	}
	if t.Column == "" {
		return true
	}
	return fieldEquals(ev.Record, t.Column, t.Value) || fieldEquals(ev.OldRecord, t.Column, t.Value)
}

func fieldEquals(record map[string]any, column, value string) bool {
	v, ok := record[column]
	if !ok || v == nil {
		return false
	}
	return fmt.Sprint(v) == value
}

// Viewer is the authenticated identity behind a connection.
type Viewer struct {
	UserID string
	Role   domain.UserRole
}

// JobLookup resolves a job so evidence topics can be checked against
// its assignee.
type JobLookup interface {
	Get(ctx context.Context, id string) (*domain.Job, error)
}

// Authorize decides whether v may subscribe to t. Admins see every
// table; installers only their own jobs, notifications and the evidence
// of jobs assigned to them.
func Authorize(ctx context.Context, jobs JobLookup, v Viewer, t Topic) error {
	if v.Role == domain.RoleAdmin {
		return nil
	}
	if v.Role != domain.RoleInstaller || t.Column == "" {
		return ErrTopicForbidden
	}

	switch {
	case t.Table == TableJobs && t.Column == "assigned_to":
		if t.Value == v.UserID {
			return nil
		}
	case t.Table == TableNotifications && t.Column == "user_id":
		if t.Value == v.UserID {
			return nil
		}
	case t.Table == TableEvidence && t.Column == "job_id":
		if jobs == nil {
			return ErrTopicForbidden
		}
		j, err := jobs.Get(ctx, t.Value)
		if err != nil {
			return ErrTopicForbidden
		}
		if j.AssignedTo != nil && *j.AssignedTo == v.UserID {
			return nil
		}
	}
	return ErrTopicForbidden
}
