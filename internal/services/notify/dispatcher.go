package notify

import (
	"context"
	"sync"
	"time"

	"github.com/fgeck/gonetmon-homelab/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// DeliveryTimeout bounds one Notify call across all sinks.
const DeliveryTimeout = 10 * time.Second

// Dispatcher fans a message out to every configured sink. Delivery failures
// are logged and dropped; they are never retried. It is safe for concurrent use.
type Dispatcher struct {
	sinks   []Service
	limiter *rate.Limiter
	logger  zerolog.Logger
	timeout time.Duration
}

// NewDispatcher creates a dispatcher over sinks. A ratePerMinute of 0 disables
// rate limiting.
func NewDispatcher(logger zerolog.Logger, ratePerMinute int, sinks ...Service) *Dispatcher {
	d := &Dispatcher{
		sinks:   sinks,
		logger:  logger,
		timeout: DeliveryTimeout,
	}
	if ratePerMinute > 0 {
		d.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(ratePerMinute)), ratePerMinute)
	}
	return d
}

// FromConfig builds a dispatcher with every sink enabled in cfg.
func FromConfig(logger zerolog.Logger, cfg models.MonitorConfig) *Dispatcher {
	var sinks []Service

	if cfg.Slack != nil && cfg.Slack.Enabled && cfg.Slack.WebhookURL != "" {
		sinks = append(sinks, NewSlack(logger, *cfg.Slack))
	}
	if cfg.Telegram != nil {
		sinks = append(sinks, NewTelegram(logger, *cfg.Telegram))
	}

	return NewDispatcher(logger, cfg.NotifyRatePerMinute, sinks...)
}

// Sinks returns the names of the configured sinks.
func (d *Dispatcher) Sinks() []string {
	names := make([]string, 0, len(d.sinks))
	for _, s := range d.sinks {
		names = append(names, s.Name())
	}
	return names
}

// Notify delivers text to all sinks concurrently and returns one result per
// attempted sink, in sink order. Cancellation of ctx does not abort deliveries
// already started.
func (d *Dispatcher) Notify(ctx context.Context, text string) []*models.NotificationResult {
	if len(d.sinks) == 0 {
		return nil
	}

	if d.limiter != nil && !d.limiter.Allow() {
		d.logger.Warn().Str("text", text).Msg("notification rate limit exceeded, dropping message")
		return nil
	}

	// One deadline covers all sinks, so a transition never blocks its loop
	// for longer than the delivery timeout.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	results := make([]*models.NotificationResult, len(d.sinks))
	var wg sync.WaitGroup
	for i, sink := range d.sinks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = d.deliver(ctx, sink, text)
		}()
	}
	wg.Wait()
	return results
}

func (d *Dispatcher) deliver(ctx context.Context, sink Service, text string) *models.NotificationResult {
	result, err := sink.Send(ctx, text)
	if err != nil {
		result = &models.NotificationResult{Sink: sink.Name(), Error: err}
	}

	if result.Error != nil {
		d.logger.Error().
			Err(result.Error).
			Str("sink", sink.Name()).
			Msg("failed to send notification")
		return result
	}

	d.logger.Info().Str("sink", sink.Name()).Msg("notification sent")
	return result
}
