// Package metrics exposes per-target presence state as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Recorder receives presence updates from the monitoring loops.
type Recorder interface {
	SetOnline(target string, online bool)
	ObserveTransition(target string, online bool)
	IncProbeErrors(target string)
}

// Nop discards all updates.
type Nop struct{}

// SetOnline implements Recorder.
func (Nop) SetOnline(string, bool) {}

// ObserveTransition implements Recorder.
func (Nop) ObserveTransition(string, bool) {}

// IncProbeErrors implements Recorder.
func (Nop) IncProbeErrors(string) {}

// Prometheus records presence state in a dedicated registry.
type Prometheus struct {
	registry    *prometheus.Registry
	online      *prometheus.GaugeVec
	transitions *prometheus.CounterVec
	probeErrors *prometheus.CounterVec
}

// NewPrometheus creates the collectors and registers them.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		online: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "gonetmon",
			Name:      "target_online",
			Help:      "Confirmed presence state of the target (1=online, 0=offline).",
		}, []string{"target"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gonetmon",
			Name:      "transitions_total",
			Help:      "Confirmed state transitions by new state.",
		}, []string{"target", "state"}),
		probeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gonetmon",
			Name:      "probe_errors_total",
			Help:      "Probe invocations that failed to run.",
		}, []string{"target"}),
	}

	p.registry.MustRegister(p.online, p.transitions, p.probeErrors)
	return p
}

// SetOnline implements Recorder.
func (p *Prometheus) SetOnline(target string, online bool) {
	v := 0.0
	if online {
		v = 1
	}
	p.online.WithLabelValues(target).Set(v)
}

// ObserveTransition implements Recorder.
func (p *Prometheus) ObserveTransition(target string, online bool) {
	state := "offline"
	if online {
		state = "online"
	}
	p.transitions.WithLabelValues(target, state).Inc()
	p.SetOnline(target, online)
}

// IncProbeErrors implements Recorder.
func (p *Prometheus) IncProbeErrors(target string) {
	p.probeErrors.WithLabelValues(target).Inc()
}

// Handler returns the HTTP handler serving the registry.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (p *Prometheus) Serve(ctx context.Context, addr string, logger zerolog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", p.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", addr).Msg("serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
