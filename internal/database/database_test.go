package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldjobs/internal/database/dbtest"
	"fieldjobs/internal/domain"
)

func TestMigrate_LegacyStatusIsNormalizedOnRead(t *testing.T) {
	db := dbtest.Open(t)
	job := dbtest.SeedJob(t, db, nil, nil)

	require.NoError(t, db.Exec("UPDATE jobs SET status = 'completed' WHERE id = ?", job.ID).Error)

	var got domain.Job
	require.NoError(t, db.First(&got, "id = ?", job.ID).Error)
	assert.Equal(t, domain.JobStatusEnRevision, got.Status)
}

func TestMigrate_UnknownStatusFailsRead(t *testing.T) {
	db := dbtest.Open(t)
	job := dbtest.SeedJob(t, db, nil, nil)

	require.NoError(t, db.Exec("UPDATE jobs SET status = 'archived' WHERE id = ?", job.ID).Error)

	var got domain.Job
	assert.Error(t, db.First(&got, "id = ?", job.ID).Error)
}

func TestMigrate_NotificationMetadataRoundTrip(t *testing.T) {
	db := dbtest.Open(t)
	u := dbtest.SeedUser(t, db, "a@example.com", domain.RoleAdmin)

	n := &domain.Notification{UserID: u.ID, Title: "t", Message: "m", Type: domain.NotificationInfo, Metadata: map[string]any{"jobId": "j1"}}
	require.NoError(t, db.Create(n).Error)

	var got domain.Notification
	require.NoError(t, db.First(&got, "id = ?", n.ID).Error)
	assert.Equal(t, "j1", got.Metadata["jobId"])
}
