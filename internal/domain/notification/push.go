package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// PushSender delivers an encrypted payload to one browser subscription.
// The returned status is the push service's HTTP status, 0 when no
// response was received.
type PushSender interface {
	Send(ctx context.Context, subscription []byte, payload []byte) (int, error)
}

// PushMessage is what the service worker renders.
type PushMessage struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
}

type WebPushConfig struct {
	PublicKey  string
	PrivateKey string
	Subject    string
	TTL        int
	HTTPClient *http.Client
}

type WebPush struct {
	cfg WebPushConfig
}

func NewWebPush(cfg WebPushConfig) *WebPush {
	if cfg.TTL <= 0 {
		cfg.TTL = 60 * 60 * 24
	}
	if cfg.Subject == "" {
		cfg.Subject = "mailto:admin@example.com"
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &WebPush{cfg: cfg}
}

func (w *WebPush) PublicKey() string {
	return w.cfg.PublicKey
}

func (w *WebPush) Send(ctx context.Context, subscription []byte, payload []byte) (int, error) {
	var sub webpush.Subscription
	if err := json.Unmarshal(subscription, &sub); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSubscription, err)
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &sub, &webpush.Options{
		HTTPClient:      w.cfg.HTTPClient,
		Subscriber:      w.cfg.Subject,
		VAPIDPublicKey:  w.cfg.PublicKey,
		VAPIDPrivateKey: w.cfg.PrivateKey,
		TTL:             w.cfg.TTL,
		Urgency:         webpush.UrgencyHigh,
	})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("push service responded %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}

// isGone reports a subscription the push service no longer knows.
func isGone(status int) bool {
	return status == http.StatusNotFound || status == http.StatusGone
}
