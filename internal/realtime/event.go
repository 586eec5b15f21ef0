package realtime

import "encoding/json"

const (
	TableJobs          = "jobs"
	TableEvidence      = "evidence"
	TableNotifications = "notifications"
)

type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

// ChangeEvent describes one row change. Consumers treat it as a refresh
// trigger, never as the authoritative row.
type ChangeEvent struct {
	Table     string         `json:"table"`
	Type      ChangeType     `json:"type"`
	Record    map[string]any `json:"record,omitempty"`
	OldRecord map[string]any `json:"old_record,omitempty"`
}

// Publisher is what services use to announce committed changes.
type Publisher interface {
	Publish(ev ChangeEvent)
}

type NopPublisher struct{}

func (NopPublisher) Publish(ChangeEvent) {}

// NewEvent flattens record and old into their JSON field maps; either may be nil.
func NewEvent(table string, t ChangeType, record, old any) ChangeEvent {
	return ChangeEvent{Table: table, Type: t, Record: toRecord(record), OldRecord: toRecord(old)}
}

func toRecord(v any) map[string]any {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}
	return m
}
