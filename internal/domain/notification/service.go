package notification

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/sirupsen/logrus"

	"fieldjobs/internal/domain"
	"fieldjobs/internal/realtime"
)

type Service struct {
	repo *Repository
	push PushSender
	pub  realtime.Publisher
	log  logrus.FieldLogger
}

// NewService wires in-app notifications; push may be nil to disable web push.
func NewService(repo *Repository, push PushSender, pub realtime.Publisher, log logrus.FieldLogger) *Service {
	if pub == nil {
		pub = realtime.NopPublisher{}
	}
	return &Service{repo: repo, push: push, pub: pub, log: log}
}

// Message is one notification for one recipient. URL is only used by push.
type Message struct {
	UserID   string
	Title    string
	Body     string
	Type     domain.NotificationType
	Metadata map[string]any
	URL      string
}

// Notify stores the in-app row and then attempts a push. Only the row
// insert can fail the call.
func (s *Service) Notify(ctx context.Context, m Message) (*domain.Notification, error) {
	if m.Type == "" {
		m.Type = domain.NotificationInfo
	}

	n := &domain.Notification{
		UserID:   m.UserID,
		Title:    m.Title,
		Message:  m.Body,
		Type:     m.Type,
		Metadata: m.Metadata,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	s.pub.Publish(realtime.NewEvent(realtime.TableNotifications, realtime.ChangeInsert, n, nil))

	if _, err := s.Push(ctx, m.UserID, PushMessage{Title: m.Title, Body: m.Body, URL: m.URL}); err != nil {
		s.log.WithError(err).WithField("user_id", m.UserID).Warn("push delivery failed")
	}
	return n, nil
}

// Push sends msg to the user's subscription, if any, and reports whether
// it was delivered. Subscriptions rejected with 404 or 410 are removed.
func (s *Service) Push(ctx context.Context, userID string, msg PushMessage) (bool, error) {
	if s.push == nil {
		return false, nil
	}

	sub, err := s.repo.GetSubscription(ctx, userID)
	if err != nil || sub == nil {
		return false, err
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return false, err
	}

	status, err := s.push.Send(ctx, []byte(sub.Subscription), payload)
	if err == nil {
		return true, nil
	}
	if isGone(status) {
		s.log.WithFields(logrus.Fields{"user_id": userID, "status": status}).Info("pruning stale push subscription")
		if delErr := s.repo.DeleteSubscriptionByEndpoint(ctx, sub.Endpoint); delErr != nil {
			s.log.WithError(delErr).Warn("failed to prune push subscription")
		}
	}
	return false, err
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]domain.Notification, int64, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	list, total, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, 0, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, 0, err
	}
	return list, unread, total, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
	n, err := s.repo.MarkRead(ctx, id, userID)
	if err != nil {
		return err
	}
	s.pub.Publish(realtime.NewEvent(realtime.TableNotifications, realtime.ChangeUpdate, n, nil))
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

// Subscribe registers or replaces the caller's browser subscription.
func (s *Service) Subscribe(ctx context.Context, userID string, req SubscribeRequest) error {
	if s.push == nil {
		return ErrPushDisabled
	}
	if !strings.HasPrefix(req.Endpoint, "https://") && !strings.HasPrefix(req.Endpoint, "http://") {
		return ErrInvalidSubscription
	}

	raw, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return s.repo.UpsertSubscription(ctx, &domain.PushSubscription{
		UserID:       userID,
		Endpoint:     req.Endpoint,
		Subscription: string(raw),
	})
}

func (s *Service) Unsubscribe(ctx context.Context, userID string) error {
	return s.repo.DeleteSubscription(ctx, userID)
}
