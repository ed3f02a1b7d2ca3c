// Package notify delivers pipeline domain events to the notification
// service over a webhook. Delivery is at-least-once: the client retries with
// backoff, and failures are logged without ever touching the committed
// transition that produced the event.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"talentflow-core/internal/logging"
	"talentflow-core/internal/pipeline"
)

// StageNotification is the wire payload handed to the notification service.
type StageNotification struct {
	ApplicationID  string    `json:"application_id"`
	JobID          string    `json:"job_id"`
	CandidateID    string    `json:"candidate_id"`
	Classification string    `json:"classification"`
	ToStage        string    `json:"to_stage"`
	Message        string    `json:"message,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// ClientConfig holds configuration for the webhook client.
type ClientConfig struct {
	WebhookURL string
	Timeout    time.Duration
	MaxRetries int
}

// Client posts stage notifications to the configured webhook.
type Client struct {
	httpClient *http.Client
	webhookURL string
	maxRetries int
	logger     logging.Logger
}

// NewClient creates a new webhook client.
func NewClient(config ClientConfig, logger logging.Logger) (*Client, error) {
	if config.WebhookURL == "" {
		return nil, fmt.Errorf("webhook URL is required")
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}

	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		webhookURL: config.WebhookURL,
		maxRetries: config.MaxRetries,
		logger:     logger,
	}, nil
}

// Send posts one notification, retrying transient failures with linear
// backoff up to the configured attempt count.
func (c *Client) Send(ctx context.Context, notification StageNotification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(time.Duration(attempt-1) * time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = c.post(ctx, payload)
		if lastErr == nil {
			c.logger.Info("stage notification delivered", map[string]interface{}{
				"application_id": notification.ApplicationID,
				"to_stage":       notification.ToStage,
				"attempt":        attempt,
			})
			return nil
		}

		c.logger.Warn("stage notification delivery failed", map[string]interface{}{
			"application_id": notification.ApplicationID,
			"to_stage":       notification.ToStage,
			"attempt":        attempt,
			"error":          lastErr.Error(),
		})
	}

	return fmt.Errorf("notification delivery failed after %d attempts: %w", c.maxRetries, lastErr)
}

func (c *Client) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// NotificationFromEvent converts a pipeline event to its wire payload.
func NotificationFromEvent(event pipeline.Event) StageNotification {
	return StageNotification{
		ApplicationID:  event.ApplicationID.String(),
		JobID:          event.JobID,
		CandidateID:    event.CandidateID,
		Classification: string(event.Classification),
		ToStage:        string(event.ToStage),
		Message:        event.Message,
		OccurredAt:     event.OccurredAt,
	}
}
