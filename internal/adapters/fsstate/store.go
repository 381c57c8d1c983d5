// Package fsstate implements the state store and login lock on the local
// filesystem. The layout matches what the detector container and the
// operator commands expect:
//
//	<dir>/login-required.json   pending signal
//	<dir>/last-login-at.txt     cooldown timestamp (epoch seconds)
//	<dir>/mode                  mode override
//	<dir>/login.lock/           lock marker (directory, created atomically)
package fsstate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/domain"
)

const (
	signalFile   = "login-required.json"
	cooldownFile = "last-login-at.txt"
	modeFile     = "mode"
	lockDir      = "login.lock"
)

// Store implements ports.StateStore rooted at a state directory.
type Store struct {
	dir        string
	signalPath string // usually <dir>/login-required.json, overridable
	logger     *slog.Logger
}

type Option func(*Store)

// WithSignalPath overrides the signal file location. The detector container
// writes the signal on a shared volume that may live outside the state dir.
func WithSignalPath(path string) Option {
	return func(s *Store) {
		if path != "" {
			s.signalPath = path
		}
	}
}

// WithLogger sets the logger used for self-healing events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New creates a Store rooted at dir. If dir is empty it defaults to
// ~/.aws/sso-renewer.
func New(dir string, opts ...Option) *Store {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			dir = ".sso-renewer"
		} else {
			dir = filepath.Join(home, ".aws", "sso-renewer")
		}
	}
	s := &Store{
		dir:        dir,
		signalPath: filepath.Join(dir, signalFile),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the state directory root.
func (s *Store) Dir() string { return s.dir }

// SignalPath returns the signal file location.
func (s *Store) SignalPath() string { return s.signalPath }

// LoadSignal reads the pending signal. Malformed content is removed and
// reported as absent so a corrupt write can never wedge the watcher.
func (s *Store) LoadSignal(ctx context.Context) (*domain.Signal, error) {
	data, err := os.ReadFile(s.signalPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNoSignal
		}
		return nil, fmt.Errorf("read signal file: %w", err)
	}

	var sig domain.Signal
	if err := json.Unmarshal(data, &sig); err != nil {
		s.logger.Warn("removing malformed signal file", "path", s.signalPath, "err", err)
		if rmErr := os.Remove(s.signalPath); rmErr != nil && !os.IsNotExist(rmErr) {
			return nil, fmt.Errorf("remove malformed signal file: %w", rmErr)
		}
		return nil, domain.ErrNoSignal
	}
	return &sig, nil
}

// SaveSignal writes the signal atomically via a temp file and rename.
func (s *Store) SaveSignal(ctx context.Context, sig *domain.Signal) error {
	data, err := json.MarshalIndent(sig, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal signal: %w", err)
	}
	return s.writeAtomic(s.signalPath, append(data, '\n'))
}

// ClearSignal removes the signal file. Absent file is a no-op.
func (s *Store) ClearSignal(ctx context.Context) error {
	if err := os.Remove(s.signalPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear signal: %w", err)
	}
	return nil
}

// CooldownAt reads the last settling timestamp. A missing or unparseable
// record reads as the zero time.
func (s *Store) CooldownAt(ctx context.Context) (time.Time, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, cooldownFile))
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("read cooldown file: %w", err)
	}
	ts, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		s.logger.Warn("ignoring malformed cooldown file", "err", err)
		return time.Time{}, nil
	}
	sec := int64(ts)
	return time.Unix(sec, int64((ts-float64(sec))*float64(time.Second))), nil
}

// MarkCooldown writes now as the last settling timestamp.
func (s *Store) MarkCooldown(ctx context.Context, now time.Time) error {
	content := fmt.Sprintf("%d\n", now.Unix())
	return s.writeAtomic(filepath.Join(s.dir, cooldownFile), []byte(content))
}

// ClearCooldown removes the cooldown record.
func (s *Store) ClearCooldown(ctx context.Context) error {
	if err := os.Remove(filepath.Join(s.dir, cooldownFile)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear cooldown: %w", err)
	}
	return nil
}

// ModeOverride reads the mode override file, "" when absent.
func (s *Store) ModeOverride(ctx context.Context) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, modeFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read mode file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// SetMode stores the override. Takes effect on the watcher's next tick.
func (s *Store) SetMode(ctx context.Context, mode domain.Mode) error {
	return s.writeAtomic(filepath.Join(s.dir, modeFile), []byte(string(mode)+"\n"))
}

// ClearMode removes the override.
func (s *Store) ClearMode(ctx context.Context) error {
	if err := os.Remove(filepath.Join(s.dir, modeFile)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear mode: %w", err)
	}
	return nil
}

// writeAtomic writes data to path through a temp file in the same directory
// followed by a rename, so a reader never observes a torn write.
func (s *Store) writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure state directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
