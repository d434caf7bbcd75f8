package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fgeck/gonetmon-homelab/internal/services/probe"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Probe every enabled target once",
	Long:  `Take a single reachability sample of every enabled target and print the result.`,
	RunE:  probeTargets,
}

func probeTargets(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	svc := probe.New(log.Logger, cfg.ARP)
	ctx := context.Background()

	for _, t := range cfg.Targets {
		if !t.Enabled {
			continue
		}

		res, err := svc.Check(ctx, t)
		if err != nil {
			return fmt.Errorf("probing %s: %w", t.Identity(), err)
		}

		state := "offline"
		if res.Reachable {
			state = "online"
		}
		if res.Error != nil {
			fmt.Printf("%-20s %-4s error: %v\n", t.Identity(), t.Kind(), res.Error)
			continue
		}
		fmt.Printf("%-20s %-4s %s (%s)\n", t.Identity(), t.Kind(), state, res.Duration.Round(time.Millisecond))
	}

	return nil
}
