package sink

import (
	"bytes"
	"campus-market/domain"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// TriggerSecretHeader authenticates the server to the notification endpoint.
const TriggerSecretHeader = "x-trigger-secret"

// WebhookSink posts {"type": ..., "id": ...} to the external notification
// service. Requests are rate limited so a burst of messages cannot flood it.
type WebhookSink struct {
	log     *slog.Logger
	client  *http.Client
	url     string
	secret  string
	limiter *rate.Limiter
}

func NewWebhookSink(log *slog.Logger, url, secret string, perSecond float64, burst int) *WebhookSink {
	return &WebhookSink{
		log:     log,
		client:  &http.Client{Timeout: 10 * time.Second},
		url:     url,
		secret:  secret,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

func (s *WebhookSink) Consume(ctx context.Context, notification domain.Notification) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("webhook rate limit: %w", err)
	}
	body, err := json.Marshal(notification)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.secret != "" {
		req.Header.Set(TriggerSecretHeader, s.secret)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook post: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	s.log.Debug("Notification delivered", "type", notification.Type, "id", notification.ID)
	return nil
}
