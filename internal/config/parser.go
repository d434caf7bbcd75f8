// Package config provides configuration file parsing.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fgeck/gonetmon-homelab/internal/models"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

// Defaults applied when neither the target nor the global_* keys set a value.
const (
	DefaultLogPath             = "./logs"
	DefaultPollInterval        = 5 * time.Second
	DefaultOfflineThreshold    = 60 * time.Second
	DefaultOnlineThreshold     = 60 * time.Second
	DefaultHeartbeatInterval   = 300 * time.Second
	DefaultNotifyRatePerMinute = 30
	DefaultBroadcastIP         = "255.255.255.255"
)

// Parser handles configuration file parsing.
type Parser struct {
	v *viper.Viper
}

// rawTarget mirrors one entry of the targets list. Pointer fields
// distinguish "unset" from an explicit zero.
type rawTarget struct {
	IP               string   `mapstructure:"ip"`
	MAC              string   `mapstructure:"mac"`
	Enable           *bool    `mapstructure:"enable"`
	PingInterval     *float64 `mapstructure:"ping_interval"`
	OfflineThreshold *float64 `mapstructure:"offline_threshold"`
	OnlineThreshold  *float64 `mapstructure:"online_threshold"`
	Heartbeat        *float64 `mapstructure:"heartbeat_interval"`
	LogFile          string   `mapstructure:"log_file"`
	BroadcastIP      string   `mapstructure:"broadcast_ip"`
}

// NewParser creates a new configuration parser.
func NewParser() *Parser {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("log_path", DefaultLogPath)
	v.SetDefault("global_ping_interval", DefaultPollInterval.Seconds())
	v.SetDefault("global_offline_threshold", DefaultOfflineThreshold.Seconds())
	v.SetDefault("global_online_threshold", DefaultOnlineThreshold.Seconds())
	v.SetDefault("global_heartbeat_interval", DefaultHeartbeatInterval.Seconds())
	v.SetDefault("notify_rate_per_minute", DefaultNotifyRatePerMinute)
	v.SetDefault("arp.source", models.ARPSourceLocal)
	return &Parser{v: v}
}

// LoadFile loads configuration from a file path.
func (p *Parser) LoadFile(path string) (*models.MonitorConfig, error) {
	p.v.SetConfigFile(path)

	if err := p.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return p.parse()
}

// LoadReader loads configuration from a reader (useful for testing).
func (p *Parser) LoadReader(content string) (*models.MonitorConfig, error) {
	if err := p.v.ReadConfig(strings.NewReader(content)); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	return p.parse()
}

func (p *Parser) parse() (*models.MonitorConfig, error) {
	cfg := &models.MonitorConfig{
		LogPath: p.expandEnv(p.v.GetString("log_path")),
		Defaults: models.TargetDefaults{
			PollInterval:      seconds(p.v.GetFloat64("global_ping_interval")),
			OfflineThreshold:  seconds(p.v.GetFloat64("global_offline_threshold")),
			OnlineThreshold:   seconds(p.v.GetFloat64("global_online_threshold")),
			HeartbeatInterval: seconds(p.v.GetFloat64("global_heartbeat_interval")),
		},
		NotifyRatePerMinute: p.v.GetInt("notify_rate_per_minute"),
		Metrics: models.MetricsConfig{
			Listen: p.v.GetString("metrics.listen"),
		},
	}

	var raw []rawTarget
	if err := p.v.UnmarshalKey("targets", &raw); err != nil {
		return nil, fmt.Errorf("parsing targets: %w", err)
	}
	for _, r := range raw {
		cfg.Targets = append(cfg.Targets, p.buildTarget(r, cfg.LogPath, cfg.Defaults))
	}

	// Parse optional Slack config.
	if p.v.IsSet("slack") {
		cfg.Slack = &models.SlackConfig{
			Enabled:    p.v.GetBool("slack.enabled"),
			WebhookURL: p.expandEnv(p.v.GetString("slack.webhook_url")),
			Channel:    p.v.GetString("slack.channel"),
		}
	}

	// Parse optional Telegram config.
	if p.v.IsSet("telegram") {
		cfg.Telegram = &models.TelegramConfig{
			BotToken: p.expandEnv(p.v.GetString("telegram.bot_token")),
			ChatID:   p.expandEnv(p.v.GetString("telegram.chat_id")),
		}

		if cfg.Telegram.BotToken == "" {
			return nil, fmt.Errorf("telegram.bot_token is required when telegram is configured")
		}
		if cfg.Telegram.ChatID == "" {
			return nil, fmt.Errorf("telegram.chat_id is required when telegram is configured")
		}
	}

	// Parse ARP source.
	cfg.ARP.Source = p.v.GetString("arp.source")
	if p.v.IsSet("arp.ssh") {
		cfg.ARP.SSH = &models.SSHConfig{
			Host:     p.v.GetString("arp.ssh.host"),
			Port:     p.v.GetInt("arp.ssh.port"),
			Username: p.v.GetString("arp.ssh.username"),
			KeyPath:  p.expandEnv(p.v.GetString("arp.ssh.key_path")),
		}

		if cfg.ARP.SSH.Host == "" {
			return nil, fmt.Errorf("arp.ssh.host is required when arp.ssh is configured")
		}
		if cfg.ARP.SSH.Port == 0 {
			cfg.ARP.SSH.Port = 22
		}
		if cfg.ARP.SSH.Username == "" {
			cfg.ARP.SSH.Username = "root"
		}
		if cfg.ARP.SSH.KeyPath == "" {
			return nil, fmt.Errorf("arp.ssh.key_path is required when arp.ssh is configured")
		}
	}

	return cfg, nil
}

func (p *Parser) buildTarget(r rawTarget, logPath string, defaults models.TargetDefaults) models.Target {
	t := models.Target{
		IP:                strings.TrimSpace(r.IP),
		MAC:               strings.TrimSpace(r.MAC),
		Enabled:           true,
		PollInterval:      defaults.PollInterval,
		OfflineThreshold:  defaults.OfflineThreshold,
		OnlineThreshold:   defaults.OnlineThreshold,
		HeartbeatInterval: defaults.HeartbeatInterval,
		LogFile:           p.expandEnv(r.LogFile),
		BroadcastIP:       r.BroadcastIP,
	}

	if r.Enable != nil {
		t.Enabled = *r.Enable
	}
	if r.PingInterval != nil {
		t.PollInterval = seconds(*r.PingInterval)
	}
	if r.OfflineThreshold != nil {
		t.OfflineThreshold = seconds(*r.OfflineThreshold)
	}
	if r.OnlineThreshold != nil {
		t.OnlineThreshold = seconds(*r.OnlineThreshold)
	}
	if r.Heartbeat != nil {
		t.HeartbeatInterval = seconds(*r.Heartbeat)
	}
	if t.LogFile == "" && t.IP != "" {
		t.LogFile = LogFileFor(logPath, t.IP)
	}
	if t.BroadcastIP == "" {
		t.BroadcastIP = DefaultBroadcastIP
	}

	return t
}

// LogFileFor derives the per-target log file path: <logPath>/mon_<ip with . replaced by _>.log.
func LogFileFor(logPath, ip string) string {
	return filepath.Join(logPath, "mon_"+strings.ReplaceAll(ip, ".", "_")+".log")
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// expandEnv expands environment variables in the format ${VAR} or $VAR.
func (p *Parser) expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Validate performs validation on the loaded configuration and reports
// every problem found, not just the first.
func Validate(cfg *models.MonitorConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var err error

	for i, t := range cfg.Targets {
		err = multierr.Append(err, validateTarget(i, t))
	}

	switch cfg.ARP.Source {
	case models.ARPSourceLocal:
	case models.ARPSourceSSH:
		if cfg.ARP.SSH == nil {
			err = multierr.Append(err, errors.New("arp.ssh is required when arp.source is ssh"))
		}
	default:
		err = multierr.Append(err, fmt.Errorf("arp.source must be one of: local, ssh (got %q)", cfg.ARP.Source))
	}

	if cfg.NotifyRatePerMinute < 0 {
		err = multierr.Append(err, errors.New("notify_rate_per_minute must not be negative"))
	}

	return err
}

func validateTarget(i int, t models.Target) error {
	var err error
	name := fmt.Sprintf("targets[%d]", i)

	if t.IP == "" && t.MAC == "" {
		return fmt.Errorf("%s: ip or mac is required", name)
	}
	if t.IP != "" && net.ParseIP(t.IP) == nil {
		err = multierr.Append(err, fmt.Errorf("%s: invalid ip %q", name, t.IP))
	}
	if t.MAC != "" {
		if _, perr := net.ParseMAC(t.MAC); perr != nil {
			err = multierr.Append(err, fmt.Errorf("%s: invalid mac %q: %w", name, t.MAC, perr))
		}
	}
	if t.LogFile == "" {
		err = multierr.Append(err, fmt.Errorf("%s: log_file is required for MAC-only targets", name))
	}
	if t.PollInterval <= 0 {
		err = multierr.Append(err, fmt.Errorf("%s: ping_interval must be positive", name))
	}
	if t.OfflineThreshold < 0 || t.OnlineThreshold < 0 {
		err = multierr.Append(err, fmt.Errorf("%s: thresholds must not be negative", name))
	}
	if t.HeartbeatInterval <= 0 {
		err = multierr.Append(err, fmt.Errorf("%s: heartbeat_interval must be positive", name))
	}

	return err
}
