package job

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"fieldjobs/internal/database"
	"fieldjobs/internal/domain"
	"fieldjobs/internal/domain/evidence"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type ListFilter struct {
	Status     *domain.JobStatus
	AssignedTo string
	Query      string
	Limit      int
	Offset     int
}

func (r *Repository) Create(ctx context.Context, j *domain.Job) error {
	err := r.db.WithContext(ctx).Create(j).Error
	if database.IsForeignKeyViolation(err) {
		return validationError("assigned_to does not reference an existing user")
	}
	return err
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	var j domain.Job
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&j).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *Repository) GetByIDs(ctx context.Context, ids []string) ([]domain.Job, error) {
	var jobs []domain.Job
	if len(ids) == 0 {
		return jobs, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&jobs).Error
	return jobs, err
}

// List returns admin list rows newest first plus the unpaginated total.
func (r *Repository) List(ctx context.Context, f ListFilter) ([]domain.Job, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Job{})
	if f.Status != nil {
		q = q.Where("status IN ?", storedValues(*f.Status))
	}
	if f.AssignedTo != "" {
		q = q.Where("assigned_to = ?", f.AssignedTo)
	}
	if term := strings.TrimSpace(f.Query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(client_name) LIKE ? OR LOWER(address) LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var jobs []domain.Job
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	if err := q.Order("created_at DESC").Find(&jobs).Error; err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

func (r *Repository) ListByAssignee(ctx context.Context, userID string) ([]domain.Job, error) {
	var jobs []domain.Job
	err := r.db.WithContext(ctx).
		Where("assigned_to = ?", userID).
		Order("created_at DESC").
		Find(&jobs).Error
	return jobs, err
}

// ListByStatus pages through jobs in one status, oldest first.
func (r *Repository) ListByStatus(ctx context.Context, status domain.JobStatus, limit, offset int) ([]domain.Job, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Job{}).Where("status IN ?", storedValues(status))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var jobs []domain.Job
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	err := q.Order("updated_at ASC, id ASC").Find(&jobs).Error
	return jobs, total, err
}

// PendingAssignedIDs lists pending jobs that have an assignee.
func (r *Repository) PendingAssignedIDs(ctx context.Context) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).Model(&domain.Job{}).
		Where("status = ? AND assigned_to IS NOT NULL", domain.JobStatusPending).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// UpdateStatus moves a job only if it is still in status from, so two
// concurrent decisions on the same job cannot both succeed.
func (r *Repository) UpdateStatus(ctx context.Context, id string, from, to domain.JobStatus, reason *string) error {
	res := r.db.WithContext(ctx).Model(&domain.Job{}).
		Where("id = ? AND status IN ?", id, storedValues(from)).
		Updates(map[string]any{
			"status":           to,
			"rejection_reason": reason,
			"updated_at":       time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInvalidTransition
	}
	return nil
}

// MarkSubmitted moves a job to review only while it is still in status
// from and still holds at least one photo and one signature. An evidence
// row deleted after the completeness check makes the update a no-op.
func (r *Repository) MarkSubmitted(ctx context.Context, id string, from, to domain.JobStatus) error {
	const hasEvidence = "EXISTS (SELECT 1 FROM evidence WHERE evidence.job_id = jobs.id AND evidence.type = ?)"
	res := r.db.WithContext(ctx).Model(&domain.Job{}).
		Where("id = ? AND status IN ?", id, storedValues(from)).
		Where(hasEvidence, domain.EvidencePhoto).
		Where(hasEvidence, domain.EvidenceSignature).
		Updates(map[string]any{
			"status":           to,
			"rejection_reason": nil,
			"updated_at":       time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.Status != from {
		return ErrInvalidTransition
	}
	return fmt.Errorf("%w: evidence changed during submit", ErrEvidenceIncomplete)
}

// Delete removes the job and its evidence rows in one transaction.
func (r *Repository) Delete(ctx context.Context, id string, from domain.JobStatus) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := evidence.DeleteByJob(ctx, tx, id); err != nil {
			return err
		}
		res := tx.Where("id = ? AND status IN ?", id, storedValues(from)).Delete(&domain.Job{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidTransition
		}
		return nil
	})
}

func (r *Repository) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) ListAdminIDs(ctx context.Context) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("role = ?", domain.RoleAdmin).
		Pluck("id", &ids).Error
	return ids, err
}

// storedValues includes the legacy spelling still present in old rows.
func storedValues(s domain.JobStatus) []string {
	if s == domain.JobStatusEnRevision {
		return []string{string(domain.JobStatusEnRevision), "completed"}
	}
	return []string{string(s)}
}
