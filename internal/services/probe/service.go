// Package probe answers whether a target is reachable right now, by pinging
// its IP address or by looking for its MAC address in an ARP table.
package probe

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/fgeck/gonetmon-homelab/internal/models"
	"github.com/fgeck/gonetmon-homelab/internal/services/ssh"
	"github.com/rs/zerolog"
)

// probeGrace is added to the poll interval to bound a whole probe invocation.
const probeGrace = time.Second

// ErrNoSSHConfig is returned when the ARP source is ssh but no host is configured.
var ErrNoSSHConfig = errors.New("arp source is ssh but no ssh host is configured")

// Service defines the interface for reachability probes.
type Service interface {
	Check(ctx context.Context, target models.Target) (*models.ProbeResult, error)
}

// CommandExecutor allows mocking exec.Command in tests.
type CommandExecutor interface {
	Execute(ctx context.Context, name string, args ...string) ([]byte, error)
}

// DefaultExecutor is the default command executor using os/exec.
type DefaultExecutor struct{}

// Execute runs a command and returns its combined output.
func (e *DefaultExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// Impl implements the probe Service interface.
type Impl struct {
	executor CommandExecutor
	sshSvc   ssh.Service
	arp      models.ARPConfig
	logger   zerolog.Logger
}

// New creates a new probe service reading the ARP table as configured.
func New(logger zerolog.Logger, arp models.ARPConfig) *Impl {
	return &Impl{
		executor: &DefaultExecutor{},
		sshSvc:   ssh.New(logger),
		arp:      arp,
		logger:   logger,
	}
}

// NewWithServices creates a new probe service with custom dependencies (for testing).
func NewWithServices(logger zerolog.Logger, arp models.ARPConfig, executor CommandExecutor, sshSvc ssh.Service) *Impl {
	return &Impl{
		executor: executor,
		sshSvc:   sshSvc,
		arp:      arp,
		logger:   logger,
	}
}

// Check takes one reachability sample. Failures to run the probe are stored
// in the result with Reachable set to false.
func (s *Impl) Check(ctx context.Context, target models.Target) (*models.ProbeResult, error) {
	probeCtx, cancel := context.WithTimeout(ctx, target.PollInterval+probeGrace)
	defer cancel()

	start := time.Now()

	var result *models.ProbeResult
	if target.UsesMAC() {
		result = s.checkARP(probeCtx, target.MAC)
	} else {
		result = s.ping(probeCtx, target)
	}
	result.Duration = time.Since(start)

	// A killed ping looks like a missing reply; it is not a sample.
	if err := ctx.Err(); err != nil && !result.Reachable && result.Error == nil {
		result.Error = fmt.Errorf("probe of %s interrupted: %w", target.Identity(), err)
	}

	s.logger.Debug().
		Str("target", target.Identity()).
		Bool("reachable", result.Reachable).
		Dur("duration", result.Duration).
		Msg("probe completed")

	return result, nil
}

func (s *Impl) ping(ctx context.Context, target models.Target) *models.ProbeResult {
	output, err := s.executor.Execute(ctx, "ping", PingArgs(target)...)
	result := &models.ProbeResult{Output: string(output)}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			result.Error = fmt.Errorf("ping %s: %w", target.IP, err)
		}
		return result
	}

	result.Reachable = true
	return result
}

// PingArgs returns the ping arguments for a single echo request, waiting at
// most one poll interval for the reply.
func PingArgs(target models.Target) []string {
	wait := int(target.PollInterval / time.Second)
	if wait < 1 {
		wait = 1
	}
	return []string{"-c", "1", "-W", strconv.Itoa(wait), target.IP}
}

func (s *Impl) checkARP(ctx context.Context, mac string) *models.ProbeResult {
	table, err := s.arpTable(ctx)
	result := &models.ProbeResult{Output: table}
	if err != nil {
		result.Error = err
		return result
	}

	result.Reachable = ContainsMAC(table, mac)
	return result
}

func (s *Impl) arpTable(ctx context.Context) (string, error) {
	if s.arp.Source == models.ARPSourceSSH {
		if s.arp.SSH == nil {
			return "", ErrNoSSHConfig
		}

		res, err := s.sshSvc.Run(ctx, *s.arp.SSH, "arp -a")
		if err != nil {
			return "", fmt.Errorf("remote arp: %w", err)
		}
		if res.Error != nil {
			return res.Output, fmt.Errorf("remote arp on %s: %w", s.arp.SSH.Host, res.Error)
		}
		return res.Output, nil
	}

	output, err := s.executor.Execute(ctx, "arp", "-a")
	if err != nil {
		return string(output), fmt.Errorf("arp: %w", err)
	}
	return string(output), nil
}

// ContainsMAC reports whether the ARP table output mentions mac, ignoring case.
func ContainsMAC(table, mac string) bool {
	return strings.Contains(strings.ToLower(table), strings.ToLower(mac))
}
