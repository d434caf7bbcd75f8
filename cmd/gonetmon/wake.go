package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fgeck/gonetmon-homelab/internal/models"
	"github.com/fgeck/gonetmon-homelab/internal/services/probe"
	"github.com/fgeck/gonetmon-homelab/internal/services/wol"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	wakeWait    bool
	wakeTimeout time.Duration
)

var wakeCmd = &cobra.Command{
	Use:   "wake <target>",
	Short: "Send a Wake-on-LAN packet to a configured target",
	Long: `Send a Wake-on-LAN magic packet to the MAC address of a configured target.
The target is matched by IP or MAC. With --wait the command probes the
target until it is reachable or the timeout expires.`,
	Args: cobra.ExactArgs(1),
	RunE: wakeTarget,
}

func init() {
	wakeCmd.Flags().BoolVar(&wakeWait, "wait", false, "wait until the target is reachable")
	wakeCmd.Flags().DurationVar(&wakeTimeout, "timeout", 5*time.Minute, "maximum time to wait with --wait")
}

func wakeTarget(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	target, ok := findTarget(cfg.Targets, args[0])
	if !ok {
		return fmt.Errorf("no configured target matches %q", args[0])
	}
	if target.MAC == "" {
		return fmt.Errorf("target %s has no mac configured", target.Identity())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	prober := probe.New(log.Logger, cfg.ARP)
	wolCfg := models.WOLConfig{
		MACAddress:   target.MAC,
		BroadcastIP:  target.BroadcastIP,
		Timeout:      wakeTimeout,
		PollInterval: target.PollInterval,
	}
	if wakeWait {
		wolCfg.Target = &target
	}

	result, err := wol.New(log.Logger, prober).Wake(ctx, wolCfg)
	if err != nil {
		return err
	}
	if result.Error != nil {
		log.Error().Err(result.Error).Str("target", target.Identity()).Msg("wake failed")
		return result.Error
	}

	log.Info().
		Str("target", target.Identity()).
		Bool("ready", result.TargetReady).
		Dur("duration", result.WaitDuration).
		Msg("wake completed")
	return nil
}

func findTarget(targets []models.Target, name string) (models.Target, bool) {
	if name == "" {
		return models.Target{}, false
	}
	for _, t := range targets {
		if t.IP == name || (t.MAC != "" && strings.EqualFold(t.MAC, name)) {
			return t, true
		}
	}
	return models.Target{}, false
}
