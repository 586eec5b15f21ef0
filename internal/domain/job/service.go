package job

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"fieldjobs/internal/domain"
	"fieldjobs/internal/domain/evidence"
	"fieldjobs/internal/pkg/geo"
	"fieldjobs/internal/realtime"
)

type Service struct {
	repo     *Repository
	evidence *evidence.Service
	notifier Notifier
	geocoder Geocoder
	pub      realtime.Publisher
	log      logrus.FieldLogger
}

func NewService(
	repo *Repository,
	evidenceService *evidence.Service,
	notifier Notifier,
	geocoder Geocoder,
	pub realtime.Publisher,
	log logrus.FieldLogger,
) *Service {
	if pub == nil {
		pub = realtime.NopPublisher{}
	}
	return &Service{
		repo:     repo,
		evidence: evidenceService,
		notifier: notifier,
		geocoder: geocoder,
		pub:      pub,
		log:      log,
	}
}

// Create inserts a pending job for an installer. Geocoding is best effort.
func (s *Service) Create(ctx context.Context, role domain.UserRole, req CreateJobRequest) (*domain.Job, error) {
	if role != domain.RoleAdmin {
		return nil, ErrUnauthorized
	}

	title := strings.TrimSpace(req.Title)
	clientName := strings.TrimSpace(req.ClientName)
	address := strings.TrimSpace(req.Address)
	switch {
	case title == "":
		return nil, validationError("title is required")
	case clientName == "":
		return nil, validationError("client_name is required")
	case address == "":
		return nil, validationError("address is required")
	case strings.TrimSpace(req.AssignedTo) == "":
		return nil, validationError("assigned_to is required")
	case req.Amount != nil && *req.Amount < 0:
		return nil, validationError("amount must not be negative")
	}

	assignee, err := s.repo.GetUser(ctx, strings.TrimSpace(req.AssignedTo))
	if err != nil {
		return nil, err
	}
	if assignee == nil || assignee.Role != domain.RoleInstaller {
		return nil, validationError("assigned_to must be an existing installer")
	}

	j := &domain.Job{
		Title:       title,
		Description: trimOptional(req.Description),
		ClientName:  clientName,
		Address:     address,
		AssignedTo:  &assignee.ID,
		Amount:      req.Amount,
		Status:      domain.JobStatusPending,
	}

	if p := s.lookup(ctx, address); p != nil {
		j.Lat, j.Lng = &p.Lat, &p.Lng
	}

	if err := s.repo.Create(ctx, j); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"job_id": j.ID, "assigned_to": assignee.ID}).Info("job created")
	s.pub.Publish(realtime.NewEvent(realtime.TableJobs, realtime.ChangeInsert, j, nil))

	if err := s.notifier.JobAssigned(ctx, j); err != nil {
		s.log.WithError(err).WithField("job_id", j.ID).Warn("assignment notification failed")
	}
	return j, nil
}

func (s *Service) lookup(ctx context.Context, address string) *geo.Point {
	if s.geocoder == nil {
		return nil
	}
	p, err := s.geocoder.Lookup(ctx, address)
	if err != nil {
		s.log.WithError(err).WithField("address", address).Info("geocoding skipped")
		return nil
	}
	return p
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Job, error) {
	return s.repo.GetByID(ctx, id)
}

// ByIDs returns the jobs that exist among ids, in the order requested.
func (s *Service) ByIDs(ctx context.Context, ids []string) ([]domain.Job, error) {
	jobs, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Job, len(jobs))
	for _, j := range jobs {
		byID[j.ID] = j
	}

	out := make([]domain.Job, 0, len(jobs))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if j, ok := byID[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, j)
		}
	}
	return out, nil
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]domain.Job, int64, error) {
	return s.repo.List(ctx, f)
}

// ListForInstaller returns the caller's jobs ranked for the field.
func (s *Service) ListForInstaller(ctx context.Context, userID string, origin *geo.Point) ([]domain.Job, int, error) {
	jobs, err := s.repo.ListByAssignee(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return Rank(jobs, origin), CountIncidents(jobs), nil
}

func (s *Service) IncidentCount(ctx context.Context, userID string) (int, error) {
	jobs, err := s.repo.ListByAssignee(ctx, userID)
	if err != nil {
		return 0, err
	}
	return CountIncidents(jobs), nil
}

// Detail is only visible to the job's assignee.
func (s *Service) Detail(ctx context.Context, userID, id string) (*JobDetail, error) {
	j, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !j.IsAssignedTo(userID) {
		return nil, ErrUnauthorized
	}

	items, completeness, err := s.evidence.ListForJob(ctx, id)
	if err != nil {
		return nil, err
	}
	photos, signatures := evidence.Split(items)
	return &JobDetail{Job: j, Photos: photos, Signatures: signatures, Completeness: completeness}, nil
}

// Submit hands a pending job over for review once its evidence is complete.
func (s *Service) Submit(ctx context.Context, userID string, role domain.UserRole, id string) (*domain.Job, error) {
	j, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	_, completeness, err := s.evidence.ListForJob(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.apply(ctx, j, EventSubmit, Payload{
		Role:         role,
		IsAssignee:   j.IsAssignedTo(userID),
		Completeness: &completeness,
	})
}

func (s *Service) Approve(ctx context.Context, role domain.UserRole, id string) (*domain.Job, error) {
	return s.transition(ctx, id, EventApprove, Payload{Role: role})
}

func (s *Service) Reject(ctx context.Context, role domain.UserRole, id, reason string) (*domain.Job, error) {
	return s.transition(ctx, id, EventReject, Payload{Role: role, Reason: reason})
}

func (s *Service) Revert(ctx context.Context, role domain.UserRole, id, reason string) (*domain.Job, error) {
	return s.transition(ctx, id, EventRevert, Payload{Role: role, Reason: reason})
}

// Delete removes a pending or in-review job together with its evidence.
func (s *Service) Delete(ctx context.Context, role domain.UserRole, id string) error {
	_, err := s.transition(ctx, id, EventDelete, Payload{Role: role})
	return err
}

func (s *Service) transition(ctx context.Context, id string, event Event, p Payload) (*domain.Job, error) {
	j, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, j, event, p)
}

func (s *Service) apply(ctx context.Context, j *domain.Job, event Event, p Payload) (*domain.Job, error) {
	out, err := Transition(j.Status, event, p)
	if err != nil {
		return nil, err
	}

	old := *j
	if out.Delete {
		items, _, err := s.evidence.ListForJob(ctx, j.ID)
		if err != nil {
			return nil, err
		}
		if err := s.repo.Delete(ctx, j.ID, j.Status); err != nil {
			return nil, err
		}
		s.evidence.PurgeObjects(ctx, items)

		s.log.WithFields(logrus.Fields{"job_id": j.ID, "evidence": len(items)}).Info("job deleted")
		s.pub.Publish(realtime.NewEvent(realtime.TableJobs, realtime.ChangeDelete, nil, &old))
		return &old, nil
	}

	if event == EventSubmit {
		err = s.repo.MarkSubmitted(ctx, j.ID, j.Status, out.Status)
	} else {
		err = s.repo.UpdateStatus(ctx, j.ID, j.Status, out.Status, out.RejectionReason)
	}
	if err != nil {
		return nil, err
	}
	j.Status = out.Status
	j.RejectionReason = out.RejectionReason

	s.log.WithFields(logrus.Fields{
		"job_id": j.ID,
		"event":  event,
		"from":   old.Status,
		"to":     j.Status,
	}).Info("job transition")
	s.pub.Publish(realtime.NewEvent(realtime.TableJobs, realtime.ChangeUpdate, j, &old))

	if err := s.notify(ctx, j, out); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"job_id": j.ID, "event": event}).Warn("transition notification failed")
	}
	return j, nil
}

func (s *Service) notify(ctx context.Context, j *domain.Job, out Outcome) error {
	reason := ""
	if out.RejectionReason != nil {
		reason = *out.RejectionReason
	}

	switch out.Notify {
	case NoticeSubmitted:
		admins, err := s.repo.ListAdminIDs(ctx)
		if err != nil {
			return err
		}
		return s.notifier.JobSubmitted(ctx, admins, j)
	case NoticeApproved:
		return s.notifier.JobApproved(ctx, j)
	case NoticeRejected:
		return s.notifier.JobRejected(ctx, j, reason)
	case NoticeReverted:
		return s.notifier.JobReverted(ctx, j, reason)
	}
	return nil
}

func (s *Service) PendingAssignedIDs(ctx context.Context) ([]string, error) {
	return s.repo.PendingAssignedIDs(ctx)
}

// Remind nudges the installer of every pending job in ids. Jobs that are
// not pending or unassigned are skipped, as are individual send failures.
func (s *Service) Remind(ctx context.Context, ids []string) (int, error) {
	jobs, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return 0, err
	}

	count := 0
	for i := range jobs {
		j := &jobs[i]
		if j.Status != domain.JobStatusPending || j.AssignedTo == nil {
			continue
		}
		if err := s.notifier.JobReminder(ctx, j); err != nil {
			s.log.WithError(err).WithField("job_id", j.ID).Warn("reminder failed")
			continue
		}
		count++
	}
	return count, nil
}

// ReviewQueue pages through jobs awaiting review, oldest submission first.
func (s *Service) ReviewQueue(ctx context.Context, limit, offset int) ([]domain.Job, int64, error) {
	return s.repo.ListByStatus(ctx, domain.JobStatusEnRevision, limit, offset)
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
