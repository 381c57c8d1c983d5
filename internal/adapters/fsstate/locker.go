package fsstate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/domain"
	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/ports"
)

// Locker implements ports.Locker with an atomic directory creation. Mkdir
// fails when the directory already exists, which makes check-and-create a
// single operation: two processes can never both acquire the lock.
type Locker struct {
	path string
}

// NewLocker creates a Locker for the lock marker inside the state dir.
func NewLocker(stateDir string) *Locker {
	return &Locker{path: filepath.Join(stateDir, lockDir)}
}

// Path returns the lock marker location.
func (l *Locker) Path() string { return l.path }

// Held reports whether the lock marker currently exists. Inspection only;
// never use this to decide an acquire.
func (l *Locker) Held() bool {
	_, err := os.Stat(l.path)
	return err == nil
}

// TryLock acquires the lock or returns domain.ErrLockHeld.
func (l *Locker) TryLock(ctx context.Context) (ports.UnlockFunc, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure state directory: %w", err)
	}
	if err := os.Mkdir(l.path, 0o755); err != nil {
		if os.IsExist(err) {
			return nil, domain.ErrLockHeld
		}
		return nil, fmt.Errorf("create lock marker: %w", err)
	}
	return func(ctx context.Context) error {
		if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove lock marker: %w", err)
		}
		return nil
	}, nil
}

// ForceUnlock removes the lock marker regardless of holder. Used only by
// the state cleanup command.
func (l *Locker) ForceUnlock() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove lock marker: %w", err)
	}
	return nil
}
