package ports

import (
	"context"
	"time"

	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/domain"
)

// StateStore is the shared mutable state of the renewal system: the pending
// signal, the cooldown timestamp and the mode override. Every mutation must
// be a single atomic operation; a reader must see either the old or the
// fully written new content, never a torn intermediate state.
type StateStore interface {
	// LoadSignal returns the pending signal, or domain.ErrNoSignal when
	// absent. Unparseable signal content is self-healing: implementations
	// remove it and report absence.
	LoadSignal(ctx context.Context) (*domain.Signal, error)

	// SaveSignal writes (or overwrites) the pending signal atomically.
	SaveSignal(ctx context.Context, sig *domain.Signal) error

	// ClearSignal removes the pending signal. Clearing an absent signal
	// is a no-op.
	ClearSignal(ctx context.Context) error

	// CooldownAt returns the timestamp of the last settling outcome, or
	// the zero time when no cooldown record exists.
	CooldownAt(ctx context.Context) (time.Time, error)

	// MarkCooldown records now as the last settling outcome.
	MarkCooldown(ctx context.Context, now time.Time) error

	// ClearCooldown removes the cooldown record. Used by manual login and
	// state cleanup; absent record is a no-op.
	ClearCooldown(ctx context.Context) error

	// ModeOverride returns the stored mode override string, or "" when
	// none is set. Validation is the mode controller's job.
	ModeOverride(ctx context.Context) (string, error)

	// SetMode stores a mode override. It takes effect on the next tick.
	SetMode(ctx context.Context, mode domain.Mode) error

	// ClearMode removes the override, restoring the configured default.
	ClearMode(ctx context.Context) error
}
