package models

// SlackConfig holds Slack incoming-webhook configuration.
type SlackConfig struct {
	Enabled    bool
	WebhookURL string
	Channel    string
}

// TelegramConfig holds Telegram notification configuration.
type TelegramConfig struct {
	BotToken string
	ChatID   string
}

// NotificationResult holds the result of a single notification delivery.
type NotificationResult struct {
	Sink        string
	MessageSent bool
	StatusCode  int
	Error       error
}
