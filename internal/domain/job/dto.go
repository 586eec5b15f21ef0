package job

import (
	"fieldjobs/internal/domain"
	"fieldjobs/internal/domain/evidence"
)

type CreateJobRequest struct {
	Title       string   `json:"title" validate:"required,notblank,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=4000"`
	ClientName  string   `json:"client_name" validate:"required,notblank,max=200"`
	Address     string   `json:"address" validate:"required,notblank,max=500"`
	AssignedTo  string   `json:"assigned_to" validate:"required"`
	Amount      *float64 `json:"amount" validate:"omitempty,gte=0"`
}

type ReasonRequest struct {
	Reason string `json:"reason"`
}

type JobIDsRequest struct {
	JobIDs []string `json:"job_ids" validate:"required,min=1,dive,required"`
}

type JobListResponse struct {
	Jobs  []domain.Job `json:"jobs"`
	Total int64        `json:"total"`
}

type InstallerJobsResponse struct {
	Jobs          []domain.Job `json:"jobs"`
	IncidentCount int          `json:"incident_count"`
	Sorted        string       `json:"sorted_by"`
}

// JobDetail is the installer job page: the job, its evidence and what is
// still missing before it can be submitted.
type JobDetail struct {
	Job          *domain.Job           `json:"job"`
	Photos       []domain.Evidence     `json:"photos"`
	Signatures   []domain.Evidence     `json:"signatures"`
	Completeness evidence.Completeness `json:"completeness"`
}

type RemindResponse struct {
	Count int `json:"count"`
}
