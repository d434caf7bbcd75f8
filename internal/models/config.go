// Package models contains the data structures used throughout gonetmon-homelab.
package models

import "time"

// MonitorConfig holds the complete configuration for a monitoring run.
type MonitorConfig struct {
	LogPath             string
	Defaults            TargetDefaults
	Targets             []Target
	Slack               *SlackConfig    // nil if not configured
	Telegram            *TelegramConfig // nil if not configured
	NotifyRatePerMinute int             // 0 disables rate limiting
	ARP                 ARPConfig
	Metrics             MetricsConfig
}

// TargetDefaults holds the global_* fallbacks applied to targets.
type TargetDefaults struct {
	PollInterval      time.Duration
	OfflineThreshold  time.Duration
	OnlineThreshold   time.Duration
	HeartbeatInterval time.Duration
}

// ARP table source constants.
const (
	ARPSourceLocal = "local"
	ARPSourceSSH   = "ssh"
)

// ARPConfig selects where the ARP table used for MAC presence is read from.
type ARPConfig struct {
	Source string     // "local" (default) or "ssh"
	SSH    *SSHConfig // required when Source is "ssh"
}

// MetricsConfig holds the Prometheus listener settings.
type MetricsConfig struct {
	Listen string // empty disables the listener
}
