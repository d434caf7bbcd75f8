// Package eventlog writes timestamped monitoring events to the console and to
// per-target log files.
package eventlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fgeck/gonetmon-homelab/internal/models"
	"github.com/rs/zerolog"
)

// TimestampLayout is the prefix layout of every event line.
const TimestampLayout = "2006-01-02 15:04:05"

// Service defines the interface for event log operations.
type Service interface {
	// Write appends msg to the console and, if toFile is set, to the target's log file.
	Write(target models.Target, at time.Time, msg string, toFile bool) error
}

// FileOpener allows replacing file access in tests.
type FileOpener interface {
	OpenAppend(path string) (io.WriteCloser, error)
}

// DefaultOpener creates parent directories and opens files for appending.
type DefaultOpener struct{}

// OpenAppend opens path for appending, creating it and its directory if needed.
func (o *DefaultOpener) OpenAppend(path string) (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // path comes from config
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// Impl implements the event log Service interface. Writes from concurrent
// monitoring loops are serialized so lines never interleave.
type Impl struct {
	mu      sync.Mutex
	console io.Writer
	opener  FileOpener
	logger  zerolog.Logger
}

// New creates a new event log writing to stdout.
func New(logger zerolog.Logger) *Impl {
	return &Impl{
		console: os.Stdout,
		opener:  &DefaultOpener{},
		logger:  logger,
	}
}

// NewWithWriters creates a new event log with a custom console and file opener (for testing).
func NewWithWriters(logger zerolog.Logger, console io.Writer, opener FileOpener) *Impl {
	return &Impl{
		console: console,
		opener:  opener,
		logger:  logger,
	}
}

// Write appends a formatted line. File errors are reported on the console and
// returned; the console line is always written first.
func (s *Impl) Write(target models.Target, at time.Time, msg string, toFile bool) error {
	line := formatLine(at, msg)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := io.WriteString(s.console, line); err != nil {
		s.logger.Error().Err(err).Msg("failed to write event to console")
	}

	if !toFile || target.LogFile == "" {
		return nil
	}

	if err := s.appendFile(target.LogFile, line); err != nil {
		_, _ = fmt.Fprintf(s.console, "Error writing to log file: %v\n", err)
		s.logger.Error().Err(err).Str("file", target.LogFile).Msg("failed to write event to log file")
		return err
	}

	return nil
}

func (s *Impl) appendFile(path, line string) error {
	f, err := s.opener.OpenAppend(path)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(f, line); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to append to log file: %w", err)
	}

	return f.Close()
}

func formatLine(at time.Time, msg string) string {
	return "[" + at.Format(TimestampLayout) + "] " + msg + "\n"
}
