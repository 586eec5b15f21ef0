package approval

import (
	"context"

	"github.com/sirupsen/logrus"

	"fieldjobs/internal/domain"
	"fieldjobs/internal/domain/evidence"
	"fieldjobs/internal/domain/job"
)

type Service struct {
	jobs     *job.Service
	evidence *evidence.Service
	log      logrus.FieldLogger
}

func NewService(jobs *job.Service, evidenceService *evidence.Service, log logrus.FieldLogger) *Service {
	return &Service{jobs: jobs, evidence: evidenceService, log: log}
}

// Decision is the result of approving or rejecting a queued job.
type Decision struct {
	Job       *domain.Job `json:"job"`
	NextJobID *string     `json:"next_job_id"`
}

// Queue returns a page of jobs awaiting review with their evidence.
func (s *Service) Queue(ctx context.Context, limit, offset int) ([]Item, int64, error) {
	jobs, total, err := s.jobs.ReviewQueue(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := s.withEvidence(ctx, jobs)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *Service) withEvidence(ctx context.Context, jobs []domain.Job) ([]Item, error) {
	ids := make([]string, len(jobs))
	for i := range jobs {
		ids[i] = jobs[i].ID
	}
	byJob, err := s.evidence.ListForJobs(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]Item, len(jobs))
	for i := range jobs {
		photos, signatures := evidence.Split(byJob[jobs[i].ID])
		items[i] = Item{Job: jobs[i], Photos: nonNil(photos), Signatures: nonNil(signatures)}
	}
	return items, nil
}

func (s *Service) Approve(ctx context.Context, role domain.UserRole, id string) (*Decision, error) {
	return s.decide(ctx, id, func() (*domain.Job, error) {
		return s.jobs.Approve(ctx, role, id)
	})
}

func (s *Service) Reject(ctx context.Context, role domain.UserRole, id, reason string) (*Decision, error) {
	return s.decide(ctx, id, func() (*domain.Job, error) {
		return s.jobs.Reject(ctx, role, id, reason)
	})
}

// decide runs the transition and then advances a workspace built from
// the queue as it stood before the decision.
func (s *Service) decide(ctx context.Context, id string, apply func() (*domain.Job, error)) (*Decision, error) {
	queue, _, err := s.jobs.ReviewQueue(ctx, 0, 0)
	if err != nil {
		return nil, err
	}
	items := make([]Item, len(queue))
	for i := range queue {
		items[i] = Item{Job: queue[i]}
	}
	ws := NewWorkspace(items)
	ws.Select(id)

	j, err := apply()
	if err != nil {
		return nil, err
	}

	d := &Decision{Job: j}
	if next := ws.Process(id); next != nil {
		d.NextJobID = &next.Job.ID
	}
	return d, nil
}

// Downloads lists every evidence URL of a job, photos first.
func (s *Service) Downloads(ctx context.Context, id string) ([]string, error) {
	if _, err := s.jobs.Get(ctx, id); err != nil {
		return nil, err
	}
	items, _, err := s.evidence.ListForJob(ctx, id)
	if err != nil {
		return nil, err
	}

	photos, signatures := evidence.Split(items)
	it := Item{Photos: photos, Signatures: signatures}
	urls := []string{}
	for _, e := range it.Evidence() {
		urls = append(urls, e.URL)
	}
	return urls, nil
}

func nonNil(items []domain.Evidence) []domain.Evidence {
	if items == nil {
		return []domain.Evidence{}
	}
	return items
}
