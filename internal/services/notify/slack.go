package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fgeck/gonetmon-homelab/internal/models"
	"github.com/rs/zerolog"
)

// Slack posts messages to a Slack incoming webhook.
type Slack struct {
	cfg        models.SlackConfig
	httpClient HTTPClient
	logger     zerolog.Logger
}

// NewSlack creates a new Slack webhook sink.
func NewSlack(logger zerolog.Logger, cfg models.SlackConfig) *Slack {
	return &Slack{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: DeliveryTimeout,
		},
		logger: logger,
	}
}

// NewSlackWithClient creates a new Slack sink with a custom HTTP client (for testing).
func NewSlackWithClient(logger zerolog.Logger, cfg models.SlackConfig, httpClient HTTPClient) *Slack {
	return &Slack{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     logger,
	}
}

// webhookPayload is the request body for a Slack incoming webhook.
type webhookPayload struct {
	Text    string `json:"text"`
	Channel string `json:"channel"`
}

// Name returns the sink name.
func (s *Slack) Name() string {
	return "slack"
}

// Send posts text to the configured webhook.
func (s *Slack) Send(ctx context.Context, text string) (*models.NotificationResult, error) {
	result := &models.NotificationResult{Sink: s.Name()}

	jsonBody, err := json.Marshal(webhookPayload{Text: text, Channel: s.cfg.Channel})
	if err != nil {
		result.Error = fmt.Errorf("failed to marshal payload: %w", err)
		return result, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.WebhookURL, bytes.NewReader(jsonBody))
	if err != nil {
		result.Error = fmt.Errorf("failed to create request: %w", err)
		return result, nil
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		result.Error = fmt.Errorf("failed to send request: %w", err)
		return result, nil
	}
	defer func() { _ = resp.Body.Close() }()

	result.StatusCode = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		result.Error = fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
		return result, nil
	}

	result.MessageSent = true
	s.logger.Debug().
		Str("channel", s.cfg.Channel).
		Dur("duration", time.Since(start)).
		Msg("Slack notification sent")

	return result, nil
}
