package domain

import (
	"database/sql/driver"
	"fmt"
	"time"

	"gorm.io/gorm"

	"fieldjobs/internal/pkg/geo"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusEnRevision JobStatus = "en_revision"
	JobStatusApproved   JobStatus = "approved"
	JobStatusPaid       JobStatus = "paid"

	// jobStatusLegacyCompleted predates en_revision and is only ever read.
	jobStatusLegacyCompleted = "completed"
)

// ParseJobStatus maps stored values onto the canonical set.
func ParseJobStatus(s string) (JobStatus, error) {
	switch s {
	case string(JobStatusPending), string(JobStatusEnRevision), string(JobStatusApproved), string(JobStatusPaid):
		return JobStatus(s), nil
	case jobStatusLegacyCompleted:
		return JobStatusEnRevision, nil
	}
	return "", fmt.Errorf("unknown job status %q", s)
}

func (s *JobStatus) Scan(value any) error {
	raw, err := scanString(value)
	if err != nil {
		return err
	}
	parsed, err := ParseJobStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s JobStatus) Value() (driver.Value, error) {
	return string(s), nil
}

type Job struct {
	ID              string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Title           string    `gorm:"not null" json:"title"`
	Description     *string   `json:"description"`
	ClientName      string    `gorm:"not null" json:"client_name"`
	Address         string    `gorm:"not null" json:"address"`
	Lat             *float64  `json:"lat"`
	Lng             *float64  `json:"lng"`
	AssignedTo      *string   `gorm:"type:varchar(36);index" json:"assigned_to"`
	Amount          *float64  `gorm:"type:numeric(12,2)" json:"amount"`
	Status          JobStatus `gorm:"type:varchar(20);not null;default:pending;index" json:"status"`
	RejectionReason *string   `json:"rejection_reason"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Job) TableName() string { return "jobs" }

func (j *Job) BeforeCreate(*gorm.DB) error {
	ensureID(&j.ID)
	if j.Status == "" {
		j.Status = JobStatusPending
	}
	return nil
}

// IsIncident reports a pending job that was sent back with a reason.
func (j *Job) IsIncident() bool {
	return j.Status == JobStatusPending && j.RejectionReason != nil && *j.RejectionReason != ""
}

func (j *Job) IsAssignedTo(userID string) bool {
	return j.AssignedTo != nil && *j.AssignedTo == userID
}

// Location returns nil when the job was never geocoded.
func (j *Job) Location() *geo.Point {
	return geo.NewPoint(j.Lat, j.Lng)
}
