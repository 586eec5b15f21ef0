package job

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"fieldjobs/internal/database/dbtest"
	"fieldjobs/internal/domain"
	"fieldjobs/internal/domain/evidence"
	"fieldjobs/internal/logging"
	"fieldjobs/internal/pkg/geo"
	"fieldjobs/internal/realtime"
	"fieldjobs/internal/storage"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) JobAssigned(ctx context.Context, j *domain.Job) error {
	return m.Called(ctx, j).Error(0)
}

func (m *mockNotifier) JobSubmitted(ctx context.Context, adminIDs []string, j *domain.Job) error {
	return m.Called(ctx, adminIDs, j).Error(0)
}

func (m *mockNotifier) JobApproved(ctx context.Context, j *domain.Job) error {
	return m.Called(ctx, j).Error(0)
}

func (m *mockNotifier) JobRejected(ctx context.Context, j *domain.Job, reason string) error {
	return m.Called(ctx, j, reason).Error(0)
}

func (m *mockNotifier) JobReverted(ctx context.Context, j *domain.Job, reason string) error {
	return m.Called(ctx, j, reason).Error(0)
}

func (m *mockNotifier) JobReminder(ctx context.Context, j *domain.Job) error {
	return m.Called(ctx, j).Error(0)
}

type stubGeocoder struct {
	point *geo.Point
	err   error
}

func (g stubGeocoder) Lookup(context.Context, string) (*geo.Point, error) {
	return g.point, g.err
}

type fixture struct {
	db        *gorm.DB
	svc       *Service
	notifier  *mockNotifier
	dir       string
	admin     *domain.User
	installer *domain.User
}

func setup(t *testing.T, geocoder Geocoder) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	dir := t.TempDir()
	log := logging.Discard()

	store := storage.NewFileSystem(dir, "http://files.test/evidence")
	evSvc := evidence.NewService(evidence.NewRepository(db), store, realtime.NopPublisher{}, log)
	n := &mockNotifier{}

	return &fixture{
		db:        db,
		svc:       NewService(NewRepository(db), evSvc, n, geocoder, nil, log),
		notifier:  n,
		dir:       dir,
		admin:     dbtest.SeedUser(t, db, "admin@example.com", domain.RoleAdmin),
		installer: dbtest.SeedUser(t, db, "installer@example.com", domain.RoleInstaller),
	}
}

func (f *fixture) reload(t *testing.T, id string) *domain.Job {
	t.Helper()
	j, err := f.svc.Get(context.Background(), id)
	require.NoError(t, err)
	return j
}

func validRequest(assignee string) CreateJobRequest {
	return CreateJobRequest{
		Title:      " Montaje cocina ",
		ClientName: "Ana López",
		Address:    "Calle Mayor 1, Madrid",
		AssignedTo: assignee,
	}
}

func TestCreate_GeocodesAndNotifies(t *testing.T) {
	f := setup(t, stubGeocoder{point: &geo.Point{Lat: 40.41, Lng: -3.70}})
	f.notifier.On("JobAssigned", mock.Anything, mock.AnythingOfType("*domain.Job")).Return(nil).Once()

	j, err := f.svc.Create(context.Background(), domain.RoleAdmin, validRequest(f.installer.ID))
	require.NoError(t, err)

	assert.Equal(t, "Montaje cocina", j.Title)
	assert.Equal(t, domain.JobStatusPending, j.Status)
	require.NotNil(t, j.Lat)
	assert.Equal(t, 40.41, *j.Lat)
	f.notifier.AssertExpectations(t)
}

func TestCreate_GeocodeFailureDoesNotBlock(t *testing.T) {
	f := setup(t, stubGeocoder{err: errors.New("upstream down")})
	f.notifier.On("JobAssigned", mock.Anything, mock.Anything).Return(errors.New("push down"))

	j, err := f.svc.Create(context.Background(), domain.RoleAdmin, validRequest(f.installer.ID))
	require.NoError(t, err)
	assert.Nil(t, j.Lat)
	assert.Nil(t, j.Lng)
}

func TestCreate_Validation(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()

	blank := validRequest(f.installer.ID)
	blank.Address = "   "
	_, err := f.svc.Create(ctx, domain.RoleAdmin, blank)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Create(ctx, domain.RoleAdmin, validRequest(""))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Create(ctx, domain.RoleAdmin, validRequest(f.admin.ID))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Create(ctx, domain.RoleAdmin, validRequest("no-such-user"))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Create(ctx, domain.RoleInstaller, validRequest(f.installer.ID))
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSubmit_FullFlow(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	j := dbtest.SeedJob(t, f.db, f.installer, func(j *domain.Job) { j.RejectionReason = ptr("Falta firma del cliente") })

	_, err := f.svc.Submit(ctx, f.installer.ID, domain.RoleInstaller, j.ID)
	assert.ErrorIs(t, err, ErrEvidenceIncomplete)

	dbtest.SeedEvidence(t, f.db, j.ID, domain.EvidencePhoto, "http://files.test/evidence/p.jpg")
	_, err = f.svc.Submit(ctx, f.installer.ID, domain.RoleInstaller, j.ID)
	assert.ErrorIs(t, err, ErrEvidenceIncomplete)

	dbtest.SeedEvidence(t, f.db, j.ID, domain.EvidenceSignature, "http://files.test/evidence/s.png")
	f.notifier.On("JobSubmitted", mock.Anything, []string{f.admin.ID}, mock.Anything).Return(nil).Once()

	got, err := f.svc.Submit(ctx, f.installer.ID, domain.RoleInstaller, j.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusEnRevision, got.Status)

	stored := f.reload(t, j.ID)
	assert.Equal(t, domain.JobStatusEnRevision, stored.Status)
	assert.Nil(t, stored.RejectionReason)
	f.notifier.AssertExpectations(t)
}

func TestSubmit_EvidenceRemovedDuringSubmit(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	j := dbtest.SeedJob(t, f.db, f.installer, nil)
	dbtest.SeedEvidence(t, f.db, j.ID, domain.EvidencePhoto, "http://files.test/evidence/p.jpg")
	sig := dbtest.SeedEvidence(t, f.db, j.ID, domain.EvidenceSignature, "http://files.test/evidence/s.png")

	// Drop the signature after the completeness check has passed but
	// before the status update runs.
	dropped := false
	require.NoError(t, f.db.Callback().Update().Before("gorm:update").Register("test:drop_signature", func(tx *gorm.DB) {
		if dropped || tx.Statement.Table != "jobs" {
			return
		}
		dropped = true
		err := tx.Session(&gorm.Session{NewDB: true}).Where("id = ?", sig.ID).Delete(&domain.Evidence{}).Error
		require.NoError(t, err)
	}))

	_, err := f.svc.Submit(ctx, f.installer.ID, domain.RoleInstaller, j.ID)
	assert.ErrorIs(t, err, ErrEvidenceIncomplete)
	assert.True(t, dropped)

	assert.Equal(t, domain.JobStatusPending, f.reload(t, j.ID).Status)
	f.notifier.AssertNotCalled(t, "JobSubmitted", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_NotAssignee(t *testing.T) {
	f := setup(t, nil)
	other := dbtest.SeedUser(t, f.db, "other@example.com", domain.RoleInstaller)
	j := dbtest.SeedJob(t, f.db, f.installer, nil)

	_, err := f.svc.Submit(context.Background(), other.ID, domain.RoleInstaller, j.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestApproveRejectRevert(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	j := dbtest.SeedJob(t, f.db, f.installer, func(j *domain.Job) { j.Status = domain.JobStatusEnRevision })

	f.notifier.On("JobApproved", mock.Anything, mock.Anything).Return(nil)
	f.notifier.On("JobRejected", mock.Anything, mock.Anything, "Fotos borrosas o insuficientes").Return(nil)
	f.notifier.On("JobReverted", mock.Anything, mock.Anything, "Falta foto del montaje").Return(nil)

	_, err := f.svc.Approve(ctx, domain.RoleAdmin, j.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusApproved, f.reload(t, j.ID).Status)

	_, err = f.svc.Approve(ctx, domain.RoleAdmin, j.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.svc.Revert(ctx, domain.RoleAdmin, j.ID, "")
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusEnRevision, f.reload(t, j.ID).Status)

	_, err = f.svc.Reject(ctx, domain.RoleAdmin, j.ID, "  ")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Reject(ctx, domain.RoleAdmin, j.ID, " Fotos borrosas o insuficientes ")
	require.NoError(t, err)
	stored := f.reload(t, j.ID)
	assert.Equal(t, domain.JobStatusPending, stored.Status)
	assert.Equal(t, "Fotos borrosas o insuficientes", *stored.RejectionReason)

	require.NoError(t, f.db.Model(&domain.Job{}).Where("id = ?", j.ID).Update("status", domain.JobStatusApproved).Error)
	_, err = f.svc.Revert(ctx, domain.RoleAdmin, j.ID, "Falta foto del montaje")
	require.NoError(t, err)
	stored = f.reload(t, j.ID)
	assert.Equal(t, domain.JobStatusPending, stored.Status)
	assert.Equal(t, "Falta foto del montaje", *stored.RejectionReason)

	f.notifier.AssertNumberOfCalls(t, "JobReverted", 1)
}

func TestApprove_LegacyCompletedRow(t *testing.T) {
	f := setup(t, nil)
	j := dbtest.SeedJob(t, f.db, f.installer, nil)
	require.NoError(t, f.db.Exec("UPDATE jobs SET status = 'completed' WHERE id = ?", j.ID).Error)
	f.notifier.On("JobApproved", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.Approve(context.Background(), domain.RoleAdmin, j.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusApproved, f.reload(t, j.ID).Status)
}

func TestDelete_CascadesEvidence(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	j := dbtest.SeedJob(t, f.db, f.installer, func(j *domain.Job) { j.Status = domain.JobStatusEnRevision })

	key := j.ID + "/1-a.jpg"
	require.NoError(t, os.MkdirAll(filepath.Join(f.dir, j.ID), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, j.ID, "1-a.jpg"), []byte("x"), 0o644))
	dbtest.SeedEvidence(t, f.db, j.ID, domain.EvidencePhoto, "http://files.test/evidence/"+key)

	require.NoError(t, f.svc.Delete(ctx, domain.RoleAdmin, j.ID))

	_, err := f.svc.Get(ctx, j.ID)
	assert.ErrorIs(t, err, ErrJobNotFound)

	var count int64
	require.NoError(t, f.db.Model(&domain.Evidence{}).Where("job_id = ?", j.ID).Count(&count).Error)
	assert.Zero(t, count)

	_, err = os.Stat(filepath.Join(f.dir, j.ID, "1-a.jpg"))
	assert.True(t, os.IsNotExist(err))
}

func TestDelete_ApprovedRejected(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	j := dbtest.SeedJob(t, f.db, f.installer, func(j *domain.Job) { j.Status = domain.JobStatusApproved })
	dbtest.SeedEvidence(t, f.db, j.ID, domain.EvidencePhoto, "http://files.test/evidence/x.jpg")

	err := f.svc.Delete(ctx, domain.RoleAdmin, j.ID)
	assert.ErrorIs(t, err, ErrDeleteNotAllowed)

	var count int64
	require.NoError(t, f.db.Model(&domain.Evidence{}).Where("job_id = ?", j.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestListForInstaller(t *testing.T) {
	f := setup(t, nil)
	other := dbtest.SeedUser(t, f.db, "other@example.com", domain.RoleInstaller)
	dbtest.SeedJob(t, f.db, f.installer, func(j *domain.Job) { j.ID = "mine-incident"; j.RejectionReason = ptr("x") })
	dbtest.SeedJob(t, f.db, f.installer, func(j *domain.Job) { j.ID = "mine-done"; j.Status = domain.JobStatusApproved })
	dbtest.SeedJob(t, f.db, other, func(j *domain.Job) { j.ID = "theirs" })

	jobs, incidents, err := f.svc.ListForInstaller(context.Background(), f.installer.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"mine-incident", "mine-done"}, ids(jobs))
	assert.Equal(t, 1, incidents)

	count, err := f.svc.IncidentCount(context.Background(), other.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
	count, err = f.svc.IncidentCount(context.Background(), f.installer.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRemind_SkipsNonPendingAndFailures(t *testing.T) {
	f := setup(t, nil)
	a := dbtest.SeedJob(t, f.db, f.installer, nil)
	b := dbtest.SeedJob(t, f.db, f.installer, nil)
	c := dbtest.SeedJob(t, f.db, f.installer, func(j *domain.Job) { j.Status = domain.JobStatusApproved })
	d := dbtest.SeedJob(t, f.db, nil, nil)

	f.notifier.On("JobReminder", mock.Anything, mock.MatchedBy(func(j *domain.Job) bool { return j.ID == a.ID })).Return(nil)
	f.notifier.On("JobReminder", mock.Anything, mock.MatchedBy(func(j *domain.Job) bool { return j.ID == b.ID })).Return(errors.New("boom"))

	count, err := f.svc.Remind(context.Background(), []string{a.ID, b.ID, c.ID, d.ID, "missing"})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	f.notifier.AssertNumberOfCalls(t, "JobReminder", 2)
}

func TestPendingAssignedIDs(t *testing.T) {
	f := setup(t, nil)
	a := dbtest.SeedJob(t, f.db, f.installer, nil)
	dbtest.SeedJob(t, f.db, nil, nil)
	dbtest.SeedJob(t, f.db, f.installer, func(j *domain.Job) { j.Status = domain.JobStatusEnRevision })

	got, err := f.svc.PendingAssignedIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, got)
}

func TestReviewQueue(t *testing.T) {
	f := setup(t, nil)
	dbtest.SeedJob(t, f.db, f.installer, func(j *domain.Job) { j.Status = domain.JobStatusEnRevision })
	dbtest.SeedJob(t, f.db, f.installer, nil)

	jobs, total, err := f.svc.ReviewQueue(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
	assert.Equal(t, int64(1), total)
}

func TestByIDs_KeepsRequestOrder(t *testing.T) {
	f := setup(t, nil)
	a := dbtest.SeedJob(t, f.db, f.installer, nil)
	b := dbtest.SeedJob(t, f.db, f.installer, nil)

	jobs, err := f.svc.ByIDs(context.Background(), []string{b.ID, "missing", a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID, a.ID}, ids(jobs))
}
