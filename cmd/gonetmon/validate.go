package main

import (
	"fmt"

	"github.com/fgeck/gonetmon-homelab/internal/services/notify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long:  `Validate the configuration file without probing any targets.`,
	RunE:  validateConfig,
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Println("Configuration is valid!")
	fmt.Println()
	fmt.Println("Summary:")
	fmt.Printf("  Log path: %s\n", cfg.LogPath)
	fmt.Printf("  Targets: %d\n", len(cfg.Targets))
	fmt.Printf("  ARP source: %s\n", cfg.ARP.Source)
	fmt.Println()
	fmt.Println("Defaults:")
	fmt.Printf("  Ping interval: %s\n", cfg.Defaults.PollInterval)
	fmt.Printf("  Offline threshold: %s\n", cfg.Defaults.OfflineThreshold)
	fmt.Printf("  Online threshold: %s\n", cfg.Defaults.OnlineThreshold)
	fmt.Printf("  Heartbeat interval: %s\n", cfg.Defaults.HeartbeatInterval)

	for i, t := range cfg.Targets {
		fmt.Println()
		fmt.Printf("Target %d: %s (%s)\n", i+1, t.Identity(), t.Kind())
		fmt.Printf("  Enabled: %v\n", t.Enabled)
		if t.UsesMAC() && t.IP != "" {
			fmt.Printf("  IP: %s\n", t.IP)
		}
		fmt.Printf("  Ping interval: %s\n", t.PollInterval)
		fmt.Printf("  Offline threshold: %s\n", t.OfflineThreshold)
		fmt.Printf("  Online threshold: %s\n", t.OnlineThreshold)
		fmt.Printf("  Log file: %s\n", t.LogFile)
	}

	fmt.Println()
	fmt.Println("Notifications:")
	sinks := notify.FromConfig(log.Logger, *cfg).Sinks()
	if len(sinks) == 0 {
		fmt.Println("  (none)")
	}
	for _, name := range sinks {
		fmt.Printf("  %s: enabled\n", name)
	}
	if cfg.NotifyRatePerMinute > 0 {
		fmt.Printf("  Rate limit: %d/min\n", cfg.NotifyRatePerMinute)
	}

	if cfg.ARP.SSH != nil {
		fmt.Println()
		fmt.Println("ARP over SSH:")
		fmt.Printf("  Host: %s\n", cfg.ARP.SSH.Host)
		fmt.Printf("  Port: %d\n", cfg.ARP.SSH.Port)
		fmt.Printf("  Username: %s\n", cfg.ARP.SSH.Username)
	}

	if cfg.Metrics.Listen != "" {
		fmt.Println()
		fmt.Printf("Metrics: %s/metrics\n", cfg.Metrics.Listen)
	}

	return nil
}
