// Package supervisor runs one monitoring loop per enabled target and routes
// presence events to the event log, the notification sinks and metrics.
package supervisor

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/fgeck/gonetmon-homelab/internal/metrics"
	"github.com/fgeck/gonetmon-homelab/internal/models"
	"github.com/fgeck/gonetmon-homelab/internal/presence"
	"github.com/fgeck/gonetmon-homelab/internal/services/eventlog"
	"github.com/fgeck/gonetmon-homelab/internal/services/notify"
	"github.com/fgeck/gonetmon-homelab/internal/services/probe"
	"github.com/rs/zerolog"
)

// Service defines the interface for the monitor supervisor.
type Service interface {
	Run(ctx context.Context, cfg models.MonitorConfig) error
}

// Notifier delivers a notification text to every configured sink.
type Notifier interface {
	Notify(ctx context.Context, text string) []*models.NotificationResult
}

// Impl implements the supervisor Service interface.
type Impl struct {
	clock    clock.Clock
	prober   probe.Service
	events   eventlog.Service
	notifier Notifier
	recorder metrics.Recorder
	logger   zerolog.Logger
}

// New creates a supervisor wired to the real clock, probes, event log and
// the notification sinks configured in cfg.
func New(logger zerolog.Logger, cfg models.MonitorConfig, recorder metrics.Recorder) *Impl {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Impl{
		clock:    clock.New(),
		prober:   probe.New(logger, cfg.ARP),
		events:   eventlog.New(logger),
		notifier: notify.FromConfig(logger, cfg),
		recorder: recorder,
		logger:   logger,
	}
}

// NewWithServices creates a supervisor with custom dependencies (for testing).
func NewWithServices(
	logger zerolog.Logger,
	clk clock.Clock,
	prober probe.Service,
	events eventlog.Service,
	notifier Notifier,
	recorder metrics.Recorder,
) *Impl {
	return &Impl{
		clock:    clk,
		prober:   prober,
		events:   events,
		notifier: notifier,
		recorder: recorder,
		logger:   logger,
	}
}

// Run monitors every enabled target until ctx is cancelled. It returns once
// all loops have written their shutdown lines.
func (s *Impl) Run(ctx context.Context, cfg models.MonitorConfig) error {
	if len(cfg.Targets) == 0 {
		s.write(models.Target{}, s.clock.Now(), eventlog.NoTargetsLine(), false)
		return nil
	}

	// All loops close their last interval at the same instant.
	stoppedAt := sync.OnceValue(s.clock.Now)

	var wg sync.WaitGroup
	for _, target := range cfg.Targets {
		if !target.Enabled {
			s.write(target, s.clock.Now(), eventlog.DisabledLine(target), false)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.monitor(ctx, target, stoppedAt)
		}()
	}

	s.logger.Debug().Int("targets", len(cfg.Targets)).Msg("monitoring loops started")
	wg.Wait()
	s.logger.Info().Msg("all monitoring loops stopped")

	return nil
}

func (s *Impl) monitor(ctx context.Context, target models.Target, stoppedAt func() time.Time) {
	logger := s.logger.With().Str("target", target.Identity()).Logger()

	ticker := s.clock.Ticker(target.PollInterval)
	defer ticker.Stop()

	startedAt := s.clock.Now()
	machine := presence.New(presence.Settings{
		OnlineThreshold:   target.OnlineThreshold,
		OfflineThreshold:  target.OfflineThreshold,
		HeartbeatInterval: target.HeartbeatInterval,
	}, startedAt)

	logger.Info().
		Str("kind", target.Kind()).
		Dur("interval", target.PollInterval).
		Str("log_file", target.LogFile).
		Msg("starting monitoring loop")
	s.write(target, startedAt, eventlog.StartLine(target), true)

	s.sample(ctx, target, machine, logger)

	for {
		select {
		case <-ctx.Done():
			s.stop(target, machine, stoppedAt())
			logger.Debug().Msg("monitoring loop stopped")
			return
		case <-ticker.C:
			s.sample(ctx, target, machine, logger)
		}
	}
}

// sample probes the target once and feeds the result into machine.
func (s *Impl) sample(ctx context.Context, target models.Target, machine *presence.Machine, logger zerolog.Logger) {
	now := s.clock.Now()

	res, err := s.prober.Check(ctx, target)
	if ctx.Err() != nil {
		// Shutdown interrupted the probe; its answer says nothing about the target.
		return
	}
	if err == nil && res.Error != nil {
		err = res.Error
	}

	reachable := false
	if err != nil {
		logger.Warn().Err(err).Msg("probe failed, treating target as unreachable")
		s.recorder.IncProbeErrors(target.Identity())
	} else {
		reachable = res.Reachable
	}

	s.handle(ctx, target, machine.Observe(reachable, now))
}

func (s *Impl) handle(ctx context.Context, target models.Target, out presence.Outcome) {
	if out.Initial != nil {
		s.write(target, out.Initial.At, eventlog.InitialLine(out.Initial.Online), true)
		s.recorder.SetOnline(target.Identity(), out.Initial.Online)
	}

	if t := out.Transition; t != nil {
		s.write(target, t.EndedAt, eventlog.IntervalLine(*t), true)
		s.notifier.Notify(ctx, notify.TransitionMessage(target, *t))
		s.write(target, t.EndedAt, eventlog.StateChangeLine(t.Current), true)
		s.recorder.ObserveTransition(target.Identity(), t.Current)
	}

	if h := out.Heartbeat; h != nil {
		s.write(target, h.At, eventlog.HeartbeatLine(*h), false)
	}
}

func (s *Impl) stop(target models.Target, machine *presence.Machine, at time.Time) {
	s.write(target, at, eventlog.StoppedLine(), true)

	if t := machine.Close(at); t != nil {
		s.write(target, at, eventlog.IntervalLine(*t), true)
	}
}

// write drops the error; the event log already reports it on the console.
func (s *Impl) write(target models.Target, at time.Time, msg string, toFile bool) {
	_ = s.events.Write(target, at, msg, toFile)
}
