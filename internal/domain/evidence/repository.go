package evidence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"fieldjobs/internal/domain"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, e *domain.Evidence) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Evidence, error) {
	var e domain.Evidence
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEvidenceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListByJob returns a job's evidence oldest first.
func (r *Repository) ListByJob(ctx context.Context, jobID string) ([]domain.Evidence, error) {
	var items []domain.Evidence
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("uploaded_at ASC, id ASC").
		Find(&items).Error
	return items, err
}

// ListByJobs groups evidence by job id for a batch of jobs.
func (r *Repository) ListByJobs(ctx context.Context, jobIDs []string) (map[string][]domain.Evidence, error) {
	out := make(map[string][]domain.Evidence, len(jobIDs))
	if len(jobIDs) == 0 {
		return out, nil
	}
	var items []domain.Evidence
	err := r.db.WithContext(ctx).
		Where("job_id IN ?", jobIDs).
		Order("uploaded_at ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	for _, e := range items {
		out[e.JobID] = append(out[e.JobID], e)
	}
	return out, nil
}

// DeleteWhileJobPending removes the row only if its job is still pending
// at the moment of the delete.
func (r *Repository) DeleteWhileJobPending(ctx context.Context, id, jobID string) error {
	pending := r.db.WithContext(ctx).Model(&domain.Job{}).
		Select("id").
		Where("id = ? AND status = ?", jobID, domain.JobStatusPending)
	res := r.db.WithContext(ctx).
		Where("id = ? AND job_id IN (?)", id, pending).
		Delete(&domain.Evidence{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return ErrJobNotPending
}

// DeleteByJob removes every evidence row of a job; tx may be a transaction.
func DeleteByJob(ctx context.Context, tx *gorm.DB, jobID string) error {
	return tx.WithContext(ctx).Where("job_id = ?", jobID).Delete(&domain.Evidence{}).Error
}

// GetJob reads the owning job for permission and status checks.
func (r *Repository) GetJob(ctx context.Context, jobID string) (*domain.Job, error) {
	var j domain.Job
	err := r.db.WithContext(ctx).Where("id = ?", jobID).First(&j).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}
