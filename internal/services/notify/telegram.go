package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fgeck/gonetmon-homelab/internal/models"
	"github.com/rs/zerolog"
)

// Telegram sends messages through the Telegram Bot API.
type Telegram struct {
	cfg        models.TelegramConfig
	httpClient HTTPClient
	logger     zerolog.Logger
	baseURL    string
}

// NewTelegram creates a new Telegram sink.
func NewTelegram(logger zerolog.Logger, cfg models.TelegramConfig) *Telegram {
	return &Telegram{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: DeliveryTimeout,
		},
		logger:  logger,
		baseURL: "https://api.telegram.org",
	}
}

// NewTelegramWithClient creates a new Telegram sink with a custom HTTP client (for testing).
func NewTelegramWithClient(logger zerolog.Logger, cfg models.TelegramConfig, httpClient HTTPClient, baseURL string) *Telegram {
	return &Telegram{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     logger,
		baseURL:    baseURL,
	}
}

// sendMessageRequest is the request body for Telegram sendMessage API.
type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// Name returns the sink name.
func (s *Telegram) Name() string {
	return "telegram"
}

// Send delivers text to the configured chat.
func (s *Telegram) Send(ctx context.Context, text string) (*models.NotificationResult, error) {
	result := &models.NotificationResult{Sink: s.Name()}

	jsonBody, err := json.Marshal(sendMessageRequest{ChatID: s.cfg.ChatID, Text: text})
	if err != nil {
		result.Error = fmt.Errorf("failed to marshal request: %w", err)
		return result, nil
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.cfg.BotToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		result.Error = fmt.Errorf("failed to create request: %w", err)
		return result, nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		result.Error = fmt.Errorf("failed to send request: %w", err)
		return result, nil
	}
	defer func() { _ = resp.Body.Close() }()

	result.StatusCode = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		result.Error = fmt.Errorf("telegram API returned status %d", resp.StatusCode)
		return result, nil
	}

	result.MessageSent = true
	s.logger.Debug().Str("chat_id", s.cfg.ChatID).Msg("Telegram notification sent")

	return result, nil
}
