package job

import (
	"sort"

	"fieldjobs/internal/domain"
	"fieldjobs/internal/pkg/geo"
)

const (
	groupIncident = iota
	groupPending
	groupOther
)

// Rank orders an installer's jobs: incidents, then other pending jobs, each
// nearest first when origin is known (jobs without coordinates last), then
// everything else newest first. The input slice is not modified.
func Rank(jobs []domain.Job, origin *geo.Point) []domain.Job {
	out := append([]domain.Job(nil), jobs...)

	dist := make(map[string]float64, len(out))
	if origin != nil {
		for i := range out {
			if loc := out[i].Location(); loc != nil {
				dist[out[i].ID] = geo.Distance(*origin, *loc)
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := &out[i], &out[j]
		ga, gb := group(a), group(b)
		if ga != gb {
			return ga < gb
		}

		if ga != groupOther && origin != nil {
			da, okA := dist[a.ID]
			db, okB := dist[b.ID]
			switch {
			case okA && okB:
				return da < db
			case okA != okB:
				return okA
			}
		}

		return a.CreatedAt.After(b.CreatedAt)
	})
	return out
}

// CountIncidents counts pending jobs carrying a rejection reason.
func CountIncidents(jobs []domain.Job) int {
	n := 0
	for i := range jobs {
		if jobs[i].IsIncident() {
			n++
		}
	}
	return n
}

func group(j *domain.Job) int {
	switch {
	case j.IsIncident():
		return groupIncident
	case j.Status == domain.JobStatusPending:
		return groupPending
	default:
		return groupOther
	}
}
