package alarm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/yanosDev/awqat/internal/httpclient"
)

// LogSink records fired alarms in the daemon log. It backs deployments with
// no webhook configured.
type LogSink struct {
	Logger zerolog.Logger
}

func (s LogSink) Deliver(event Event) {
	s.Logger.Info().
		Int("code", event.Code).
		Str("id", event.ID).
		Time("scheduled_at", event.At).
		Msg("prayer alarm")
}

// webhookPayload is the body posted for each fired alarm.
type webhookPayload struct {
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	Data      Event     `json:"data"`
}

// WebhookSink posts fired alarms to a webhook endpoint with retry.
type WebhookSink struct {
	url        string
	client     *http.Client
	logger     zerolog.Logger
	maxRetries int
}

// NewWebhookSink creates a sink posting to the given URL.
func NewWebhookSink(url string, logger zerolog.Logger) *WebhookSink {
	return &WebhookSink{
		url:        url,
		client:     httpclient.NewSimple(30 * time.Second),
		logger:     logger.With().Str("component", "alarm_webhook").Logger(),
		maxRetries: 3,
	}
}

// Deliver posts the event. Delivery failures are logged, never surfaced to
// the registrar; a dead endpoint must not affect alarm bookkeeping.
func (s *WebhookSink) Deliver(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.send(ctx, event); err != nil {
		s.logger.Error().Err(err).Int("code", event.Code).Msg("alarm delivery failed")
	}
}

func (s *WebhookSink) send(ctx context.Context, event Event) error {
	body, err := json.Marshal(webhookPayload{
		EventType: "prayer_alarm",
		Timestamp: event.FiredAt.UTC(),
		Data:      event,
	})
	if err != nil {
		return fmt.Errorf("marshal alarm payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			s.logger.Debug().Int("attempt", attempt+1).Msg("retrying alarm webhook")
		}

		lastErr = s.post(ctx, body)
		if lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("alarm webhook failed after %d attempts: %w", s.maxRetries, lastErr)
}

func (s *WebhookSink) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create alarm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send alarm webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("alarm webhook returned status %d", resp.StatusCode)
}
