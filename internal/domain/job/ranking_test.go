package job

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fieldjobs/internal/domain"
	"fieldjobs/internal/pkg/geo"
)

func ids(jobs []domain.Job) []string {
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = j.ID
	}
	return out
}

func ptr[T any](v T) *T { return &v }

// offset returns a point roughly meters north of origin.
func offset(origin geo.Point, meters float64) (*float64, *float64) {
	lat := origin.Lat + meters/111195.0
	lng := origin.Lng
	return &lat, &lng
}

func TestRank_PriorityOrder(t *testing.T) {
	origin := geo.Point{Lat: 40.4168, Lng: -3.7038}
	now := time.Now()

	aLat, aLng := offset(origin, 2000)
	bLat, bLng := offset(origin, 10)

	jobs := []domain.Job{
		{ID: "C", Status: domain.JobStatusEnRevision, CreatedAt: now.Add(-24 * time.Hour)},
		{ID: "B", Status: domain.JobStatusPending, Lat: bLat, Lng: bLng, CreatedAt: now},
		{ID: "D", Status: domain.JobStatusEnRevision, CreatedAt: now},
		{ID: "A", Status: domain.JobStatusPending, RejectionReason: ptr("Falta firma"), Lat: aLat, Lng: aLng, CreatedAt: now},
	}

	assert.Equal(t, []string{"A", "B", "D", "C"}, ids(Rank(jobs, &origin)))
}

func TestRank_DistanceWithinGroupAndMissingCoordinatesLast(t *testing.T) {
	origin := geo.Point{Lat: 0, Lng: 0}
	now := time.Now()
	farLat, farLng := offset(origin, 5000)
	nearLat, nearLng := offset(origin, 100)

	jobs := []domain.Job{
		{ID: "nocoords-new", Status: domain.JobStatusPending, CreatedAt: now},
		{ID: "far", Status: domain.JobStatusPending, Lat: farLat, Lng: farLng, CreatedAt: now.Add(-time.Hour)},
		{ID: "nocoords-old", Status: domain.JobStatusPending, CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "near", Status: domain.JobStatusPending, Lat: nearLat, Lng: nearLng, CreatedAt: now.Add(-3 * time.Hour)},
	}

	assert.Equal(t, []string{"near", "far", "nocoords-new", "nocoords-old"}, ids(Rank(jobs, &origin)))
}

func TestRank_WithoutOrigin(t *testing.T) {
	now := time.Now()
	jobs := []domain.Job{
		{ID: "approved-new", Status: domain.JobStatusApproved, CreatedAt: now},
		{ID: "pending-old", Status: domain.JobStatusPending, CreatedAt: now.Add(-time.Hour)},
		{ID: "incident", Status: domain.JobStatusPending, RejectionReason: ptr("x"), CreatedAt: now.Add(-48 * time.Hour)},
		{ID: "pending-new", Status: domain.JobStatusPending, CreatedAt: now},
		{ID: "paid-old", Status: domain.JobStatusPaid, CreatedAt: now.Add(-72 * time.Hour)},
	}

	assert.Equal(t,
		[]string{"incident", "pending-new", "pending-old", "approved-new", "paid-old"},
		ids(Rank(jobs, nil)))
}

func TestRank_IdempotentAndStable(t *testing.T) {
	origin := geo.Point{Lat: 1, Lng: 1}
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	lat, lng := offset(origin, 300)

	jobs := []domain.Job{
		{ID: "x1", Status: domain.JobStatusApproved, CreatedAt: ts},
		{ID: "x2", Status: domain.JobStatusApproved, CreatedAt: ts},
		{ID: "p1", Status: domain.JobStatusPending, Lat: lat, Lng: lng, CreatedAt: ts},
		{ID: "p2", Status: domain.JobStatusPending, Lat: lat, Lng: lng, CreatedAt: ts},
	}

	once := Rank(jobs, &origin)
	twice := Rank(once, &origin)

	assert.Equal(t, []string{"p1", "p2", "x1", "x2"}, ids(once))
	assert.Equal(t, ids(once), ids(twice))
	assert.Equal(t, "x1", jobs[0].ID, "input must not be reordered")
}

func TestCountIncidents(t *testing.T) {
	jobs := []domain.Job{
		{Status: domain.JobStatusPending, RejectionReason: ptr("a")},
		{Status: domain.JobStatusPending},
		{Status: domain.JobStatusEnRevision, RejectionReason: ptr("stale")},
	}
	assert.Equal(t, 1, CountIncidents(jobs))
}
