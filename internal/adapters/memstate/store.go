// Package memstate provides in-memory implementations of the state store
// and locker contracts for tests. Behavior mirrors the filesystem adapter,
// including idempotent clears and self-healing of an absent signal.
package memstate

import (
	"context"
	"sync"
	"time"

	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/domain"
	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/ports"
)

// Store implements ports.StateStore in memory.
type Store struct {
	mu       sync.Mutex
	signal   *domain.Signal
	cooldown time.Time
	mode     string

	// FailWrites, when set, makes every mutating call return this error.
	// Lets tests exercise the write-failure paths of the loop.
	FailWrites error
}

// New returns an empty in-memory store.
func New() *Store { return &Store{} }

func (s *Store) LoadSignal(ctx context.Context) (*domain.Signal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.signal == nil {
		return nil, domain.ErrNoSignal
	}
	cp := *s.signal
	return &cp, nil
}

func (s *Store) SaveSignal(ctx context.Context, sig *domain.Signal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return s.FailWrites
	}
	cp := *sig
	s.signal = &cp
	return nil
}

func (s *Store) ClearSignal(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return s.FailWrites
	}
	s.signal = nil
	return nil
}

func (s *Store) CooldownAt(ctx context.Context) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cooldown, nil
}

func (s *Store) MarkCooldown(ctx context.Context, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return s.FailWrites
	}
	s.cooldown = now
	return nil
}

func (s *Store) ClearCooldown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return s.FailWrites
	}
	s.cooldown = time.Time{}
	return nil
}

func (s *Store) ModeOverride(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode, nil
}

func (s *Store) SetMode(ctx context.Context, mode domain.Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return s.FailWrites
	}
	s.mode = string(mode)
	return nil
}

func (s *Store) ClearMode(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return s.FailWrites
	}
	s.mode = ""
	return nil
}

// Locker implements ports.Locker in memory.
type Locker struct {
	mu   sync.Mutex
	held bool
}

// NewLocker returns an unheld in-memory locker.
func NewLocker() *Locker { return &Locker{} }

// Held reports whether the lock is currently held.
func (l *Locker) Held() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held
}

func (l *Locker) TryLock(ctx context.Context) (ports.UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return nil, domain.ErrLockHeld
	}
	l.held = true
	return func(ctx context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.held = false
		return nil
	}, nil
}
