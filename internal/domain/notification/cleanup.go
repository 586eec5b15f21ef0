package notification

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"fieldjobs/internal/domain"
)

// DeleteReadBefore removes read notifications created before cutoff.
func (r *Repository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("is_read = ? AND created_at < ?", true, cutoff).
		Delete(&domain.Notification{})
	return res.RowsAffected, res.Error
}

// Cleanup drops read notifications older than keep. Unread rows stay
// until their recipient sees them.
func (s *Service) Cleanup(ctx context.Context, keep time.Duration) (int64, error) {
	start := time.Now()
	deleted, err := s.repo.DeleteReadBefore(ctx, start.Add(-keep))
	if err != nil {
		return 0, err
	}
	s.log.WithFields(logrus.Fields{
		"deleted":  deleted,
		"duration": time.Since(start),
	}).Info("notification cleanup completed")
	return deleted, nil
}
