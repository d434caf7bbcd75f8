// Package notify delivers short text messages about presence changes to
// external channels such as a Slack webhook or a Telegram chat.
package notify

import (
	"context"
	"net/http"

	"github.com/fgeck/gonetmon-homelab/internal/models"
	"github.com/fgeck/gonetmon-homelab/internal/presence"
)

// Service defines the interface for a single notification sink.
type Service interface {
	Name() string
	Send(ctx context.Context, text string) (*models.NotificationResult, error)
}

// HTTPClient allows mocking HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// TransitionMessage renders the notification text for a committed transition.
func TransitionMessage(target models.Target, t presence.Transition) string {
	if t.Current {
		return "设备 " + target.Identity() + " 已上线，离线持续时间: " + presence.FormatDuration(t.Duration)
	}
	return "设备 " + target.Identity() + " 已下线，持续时间: " + presence.FormatDuration(t.Duration)
}
