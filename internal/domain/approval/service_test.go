package approval

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"fieldjobs/internal/database/dbtest"
	"fieldjobs/internal/domain"
	"fieldjobs/internal/domain/evidence"
	"fieldjobs/internal/domain/job"
	"fieldjobs/internal/domain/notification"
	"fieldjobs/internal/logging"
	"fieldjobs/internal/storage"
)

func newService(t *testing.T) (*Service, *gorm.DB, *domain.User) {
	t.Helper()
	db := dbtest.Open(t)
	log := logging.Discard()
	store := storage.NewFileSystem(t.TempDir(), "http://files.test/evidence")
	ev := evidence.NewService(evidence.NewRepository(db), store, nil, log)
	notifier := notification.NewService(notification.NewRepository(db), nil, nil, log)
	jobs := job.NewService(job.NewRepository(db), ev, notifier, nil, nil, log)

	installer := dbtest.SeedUser(t, db, "i@example.com", domain.RoleInstaller)
	return NewService(jobs, ev, log), db, installer
}

// seedQueue creates en_revision jobs whose updated_at follows the given order.
func seedQueue(t *testing.T, db *gorm.DB, installer *domain.User, ids ...string) {
	t.Helper()
	base := time.Now().Add(-time.Hour)
	for i, id := range ids {
		dbtest.SeedJob(t, db, installer, func(j *domain.Job) {
			j.ID = id
			j.Status = domain.JobStatusEnRevision
		})
		require.NoError(t, db.Model(&domain.Job{}).Where("id = ?", id).
			UpdateColumn("updated_at", base.Add(time.Duration(i)*time.Minute)).Error)
	}
}

func TestQueue_GroupsEvidence(t *testing.T) {
	svc, db, installer := newService(t)
	seedQueue(t, db, installer, "J1", "J2")
	dbtest.SeedJob(t, db, installer, func(j *domain.Job) { j.ID = "P1" })
	dbtest.SeedEvidence(t, db, "J1", domain.EvidencePhoto, "http://files.test/evidence/J1/a.jpg")
	dbtest.SeedEvidence(t, db, "J1", domain.EvidenceSignature, "http://files.test/evidence/J1/s.png")

	items, total, err := svc.Queue(context.Background(), 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 2)
	assert.Equal(t, "J1", items[0].Job.ID)
	assert.Len(t, items[0].Photos, 1)
	assert.Len(t, items[0].Signatures, 1)
	assert.NotNil(t, items[1].Photos)
	assert.Empty(t, items[1].Photos)
}

func TestApprove_ReturnsNextJob(t *testing.T) {
	svc, db, installer := newService(t)
	seedQueue(t, db, installer, "J1", "J2", "J3")
	ctx := context.Background()

	d, err := svc.Approve(ctx, domain.RoleAdmin, "J2")
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusApproved, d.Job.Status)
	require.NotNil(t, d.NextJobID)
	assert.Equal(t, "J3", *d.NextJobID)

	d, err = svc.Reject(ctx, domain.RoleAdmin, "J3", "Falta firma del cliente")
	require.NoError(t, err)
	require.NotNil(t, d.NextJobID)
	assert.Equal(t, "J1", *d.NextJobID)

	d, err = svc.Approve(ctx, domain.RoleAdmin, "J1")
	require.NoError(t, err)
	assert.Nil(t, d.NextJobID)
}

func TestReject_RequiresReason(t *testing.T) {
	svc, db, installer := newService(t)
	seedQueue(t, db, installer, "J1")

	_, err := svc.Reject(context.Background(), domain.RoleAdmin, "J1", ComposeReason(nil, " "))
	assert.ErrorIs(t, err, job.ErrValidation)
}

func TestDownloads(t *testing.T) {
	svc, db, installer := newService(t)
	seedQueue(t, db, installer, "J1")
	dbtest.SeedEvidence(t, db, "J1", domain.EvidenceSignature, "http://files.test/evidence/J1/s.png")
	dbtest.SeedEvidence(t, db, "J1", domain.EvidencePhoto, "http://files.test/evidence/J1/a.jpg")

	urls, err := svc.Downloads(context.Background(), "J1")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"http://files.test/evidence/J1/a.jpg",
		"http://files.test/evidence/J1/s.png",
	}, urls)

	_, err = svc.Downloads(context.Background(), "missing")
	assert.ErrorIs(t, err, job.ErrJobNotFound)
}
