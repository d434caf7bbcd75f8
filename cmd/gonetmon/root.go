package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fgeck/gonetmon-homelab/internal/config"
	"github.com/fgeck/gonetmon-homelab/internal/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// defaultConfigFile is used when --config is not given.
const defaultConfigFile = "config_multi.yaml"

var (
	// Version is set at build time.
	Version = "dev"

	// Configuration flags.
	configFile string
	verbose    bool
	quiet      bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "gonetmon",
	Short: "A network presence monitor for homelab environments",
	Long: `gonetmon watches devices on the local network and reports when they come and go:
  - ICMP ping by IP address, or ARP table presence by MAC address
  - Debounced online/offline transitions with per-target thresholds
  - Per-target log files with the time spent in each state
  - Slack and Telegram notifications
  - Wake-on-LAN for configured targets

Runs as a long-lived process; stop it with Ctrl+C or SIGTERM.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
	Version: Version,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default "+defaultConfigFile+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose (debug) output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "enable quiet mode (errors only)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output logs in JSON format")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(wakeCmd)
}

func setupLogging() {
	// Diagnostics go to stderr; stdout carries the event lines.
	if jsonOutput {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
		output.FormatLevel = func(i interface{}) string {
			if s, ok := i.(string); ok {
				return strings.ToUpper(s)
			}
			return ""
		}
		log.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	switch {
	case quiet:
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case verbose:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// loadConfig reads and validates the configuration file.
func loadConfig() (*models.MonitorConfig, error) {
	path := configFile
	if path == "" {
		path = defaultConfigFile
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Error().Str("file", path).Msg("config file not found")
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	parser := config.NewParser()
	cfg, err := parser.LoadFile(path)
	if err != nil {
		log.Error().Err(err).Str("file", path).Msg("failed to load config")
		return nil, err
	}

	if err := config.Validate(cfg); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return nil, err
	}

	log.Debug().Str("config", path).Int("targets", len(cfg.Targets)).Msg("configuration loaded")
	return cfg, nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
