package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fgeck/gonetmon-homelab/internal/metrics"
	"github.com/fgeck/gonetmon-homelab/internal/services/supervisor"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start monitoring all enabled targets",
	Long: `Start one monitoring loop per enabled target:
1. Probe the target (ping for IP targets, ARP table for MAC targets)
2. Debounce the raw samples against the online/offline thresholds
3. Log confirmed transitions to the console and the target's log file
4. Send notifications to the configured sinks
5. Print a heartbeat line to the console at the heartbeat interval

On SIGINT/SIGTERM every loop writes a final interval line and exits.`,
	RunE: runMonitor,
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log.Info().
		Str("version", Version).
		Int("targets", len(cfg.Targets)).
		Str("log_path", cfg.LogPath).
		Msg("starting gonetmon")

	// Set up context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Warn().Str("signal", sig.String()).Msg("received signal, shutting down")
		cancel()
	}()

	var recorder metrics.Recorder = metrics.Nop{}
	if cfg.Metrics.Listen != "" {
		prom := metrics.NewPrometheus()
		recorder = prom
		go func() {
			if err := prom.Serve(ctx, cfg.Metrics.Listen, log.Logger); err != nil {
				log.Error().Err(err).Msg("metrics listener failed")
			}
		}()
	}

	svc := supervisor.New(log.Logger, *cfg, recorder)
	if err := svc.Run(ctx, *cfg); err != nil {
		log.Error().Err(err).Msg("monitoring failed")
		return err
	}

	return nil
}
