package job

import (
	"context"

	"fieldjobs/internal/domain"
	"fieldjobs/internal/pkg/geo"
)

// Notifier delivers the in-app and push messages job transitions produce.
type Notifier interface {
	JobAssigned(ctx context.Context, j *domain.Job) error
	JobSubmitted(ctx context.Context, adminIDs []string, j *domain.Job) error
	JobApproved(ctx context.Context, j *domain.Job) error
	JobRejected(ctx context.Context, j *domain.Job, reason string) error
	JobReverted(ctx context.Context, j *domain.Job, reason string) error
	JobReminder(ctx context.Context, j *domain.Job) error
}

type Geocoder interface {
	Lookup(ctx context.Context, address string) (*geo.Point, error)
}
