// Package dbtest opens migrated in-memory databases for tests.
package dbtest

import (
	"testing"

	"gorm.io/gorm"

	"fieldjobs/internal/database"
	"fieldjobs/internal/domain"
	"fieldjobs/internal/logging"
)

// Open returns a fresh migrated SQLite database closed at test end.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Connect(":memory:", logging.Discard())
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// SeedUser inserts a user with the given role; the password hash is a placeholder.
func SeedUser(t *testing.T, db *gorm.DB, email string, role domain.UserRole) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, PasswordHash: "x", Role: role, FullName: email}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return u
}

// SeedJob inserts a job; mutate may adjust fields before the insert.
func SeedJob(t *testing.T, db *gorm.DB, assignee *domain.User, mutate func(*domain.Job)) *domain.Job {
	t.Helper()
	j := &domain.Job{
		Title:      "Instalación",
		ClientName: "Cliente",
		Address:    "Calle Mayor 1",
		Status:     domain.JobStatusPending,
	}
	if assignee != nil {
		j.AssignedTo = &assignee.ID
	}
	if mutate != nil {
		mutate(j)
	}
	if err := db.Create(j).Error; err != nil {
		t.Fatalf("failed to seed job: %v", err)
	}
	return j
}

func SeedEvidence(t *testing.T, db *gorm.DB, jobID string, typ domain.EvidenceType, url string) *domain.Evidence {
	t.Helper()
	e := &domain.Evidence{JobID: jobID, Type: typ, URL: url}
	if err := db.Create(e).Error; err != nil {
		t.Fatalf("failed to seed evidence: %v", err)
	}
	return e
}
