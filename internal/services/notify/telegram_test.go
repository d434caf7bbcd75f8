package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/fgeck/gonetmon-homelab/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func telegramConfig() models.TelegramConfig {
	return models.TelegramConfig{
		BotToken: "123456:ABC-DEF",
		ChatID:   "-100123456789",
	}
}

func TestTelegramSend_Success(t *testing.T) {
	var capturedRequest *http.Request
	var capturedBody sendMessageRequest

	httpClient := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			capturedRequest = req
			body, _ := io.ReadAll(req.Body)
			_ = json.Unmarshal(body, &capturedBody)
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader("{\"ok\":true}")),
			}, nil
		},
	}

	svc := NewTelegramWithClient(testLogger(), telegramConfig(), httpClient, "https://api.telegram.org")
	result, err := svc.Send(context.Background(), "设备 aa:bb:cc:dd:ee:ff 已上线，离线持续时间: 30秒")

	require.NoError(t, err)
	assert.True(t, result.MessageSent)
	assert.Nil(t, result.Error)
	assert.Equal(t, "telegram", result.Sink)

	assert.Equal(t, http.MethodPost, capturedRequest.Method)
	assert.Contains(t, capturedRequest.URL.String(), "/bot123456:ABC-DEF/sendMessage")
	assert.Equal(t, "application/json", capturedRequest.Header.Get("Content-Type"))

	assert.Equal(t, "-100123456789", capturedBody.ChatID)
	assert.Equal(t, "设备 aa:bb:cc:dd:ee:ff 已上线，离线持续时间: 30秒", capturedBody.Text)
}

func TestTelegramSend_HTTPError(t *testing.T) {
	httpClient := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("network error")
		},
	}

	svc := NewTelegramWithClient(testLogger(), telegramConfig(), httpClient, "https://api.telegram.org")
	result, err := svc.Send(context.Background(), "hello")

	require.NoError(t, err)
	assert.False(t, result.MessageSent)
	assert.Contains(t, result.Error.Error(), "failed to send request")
}

func TestTelegramSend_APIError(t *testing.T) {
	httpClient := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusBadRequest,
				Body:       io.NopCloser(strings.NewReader("{\"ok\":false}")),
			}, nil
		},
	}

	svc := NewTelegramWithClient(testLogger(), telegramConfig(), httpClient, "https://api.telegram.org")
	result, err := svc.Send(context.Background(), "hello")

	require.NoError(t, err)
	assert.False(t, result.MessageSent)
	assert.Contains(t, result.Error.Error(), "status 400")
}

func TestTelegramSend_NoContentIsSuccess(t *testing.T) {
	httpClient := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusNoContent,
				Body:       io.NopCloser(strings.NewReader("")),
			}, nil
		},
	}

	svc := NewTelegramWithClient(testLogger(), telegramConfig(), httpClient, "https://api.telegram.org")
	result, err := svc.Send(context.Background(), "hello")

	require.NoError(t, err)
	assert.True(t, result.MessageSent)
	assert.NoError(t, result.Error)
}

func TestTelegramSend_ContextCancelled(t *testing.T) {
	httpClient := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			return nil, req.Context().Err()
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewTelegramWithClient(testLogger(), telegramConfig(), httpClient, "https://api.telegram.org")
	result, err := svc.Send(ctx, "hello")

	require.NoError(t, err)
	assert.False(t, result.MessageSent)
	assert.ErrorIs(t, result.Error, context.Canceled)
}
