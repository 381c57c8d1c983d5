package fsstate_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/adapters/fsstate"
	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/domain"
	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/logging"
	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/ports"
)

// Ensure Store implements the state store contract.
var _ ports.StateStore = (*fsstate.Store)(nil)

func newStore(t *testing.T) *fsstate.Store {
	t.Helper()
	return fsstate.New(t.TempDir(), fsstate.WithLogger(logging.NewNop()))
}

func TestStore_SignalRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	_, err := store.LoadSignal(ctx)
	assert.ErrorIs(t, err, domain.ErrNoSignal)

	sig := &domain.Signal{
		ID:        "3e1f8a90-0000-4000-8000-000000000000",
		Profile:   "build",
		Reason:    "expired",
		CreatedAt: "2025-06-01T12:00:00Z",
		Source:    "sso-monitor",
	}
	require.NoError(t, store.SaveSignal(ctx, sig))

	loaded, err := store.LoadSignal(ctx)
	require.NoError(t, err)
	assert.Equal(t, sig, loaded)
}

func TestStore_SignalSnoozeOverwrite(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	now := time.Now()

	sig := &domain.Signal{Profile: "build"}
	require.NoError(t, store.SaveSignal(ctx, sig))

	sig.Snooze(now, 15*time.Minute)
	require.NoError(t, store.SaveSignal(ctx, sig))

	loaded, err := store.LoadSignal(ctx)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(15*time.Minute), loaded.SnoozedUntil(), time.Second)
}

func TestStore_ClearSignalIdempotent(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	// Clearing an absent signal is a no-op, not an error.
	require.NoError(t, store.ClearSignal(ctx))

	require.NoError(t, store.SaveSignal(ctx, &domain.Signal{Profile: "build"}))
	require.NoError(t, store.ClearSignal(ctx))
	require.NoError(t, store.ClearSignal(ctx))

	_, err := store.LoadSignal(ctx)
	assert.ErrorIs(t, err, domain.ErrNoSignal)
}

func TestStore_MalformedSignalSelfHeals(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, os.MkdirAll(filepath.Dir(store.SignalPath()), 0o755))
	require.NoError(t, os.WriteFile(store.SignalPath(), []byte("{not json"), 0o644))

	_, err := store.LoadSignal(ctx)
	assert.ErrorIs(t, err, domain.ErrNoSignal)

	_, statErr := os.Stat(store.SignalPath())
	assert.True(t, os.IsNotExist(statErr), "malformed signal file should be removed")
}

func TestStore_SignalPathOverride(t *testing.T) {
	dir := t.TempDir()
	signalPath := filepath.Join(dir, "signals", "login-required.json")
	store := fsstate.New(dir, fsstate.WithSignalPath(signalPath), fsstate.WithLogger(logging.NewNop()))

	require.NoError(t, store.SaveSignal(context.Background(), &domain.Signal{Profile: "build"}))

	_, err := os.Stat(signalPath)
	assert.NoError(t, err, "signal should land on the overridden path")
}

func TestStore_CooldownRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	at, err := store.CooldownAt(ctx)
	require.NoError(t, err)
	assert.True(t, at.IsZero(), "absent record reads as zero time")

	now := time.Now().Truncate(time.Second)
	require.NoError(t, store.MarkCooldown(ctx, now))

	at, err = store.CooldownAt(ctx)
	require.NoError(t, err)
	assert.Equal(t, now.Unix(), at.Unix())

	require.NoError(t, store.ClearCooldown(ctx))
	require.NoError(t, store.ClearCooldown(ctx))
	at, err = store.CooldownAt(ctx)
	require.NoError(t, err)
	assert.True(t, at.IsZero())
}

func TestStore_CooldownToleratesGarbage(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "last-login-at.txt"), []byte("not a number\n"), 0o644))

	at, err := store.CooldownAt(ctx)
	require.NoError(t, err)
	assert.True(t, at.IsZero(), "garbage cooldown must read as absent")
}

func TestStore_ModeRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	override, err := store.ModeOverride(ctx)
	require.NoError(t, err)
	assert.Empty(t, override)

	require.NoError(t, store.SetMode(ctx, domain.ModeAuto))
	override, err = store.ModeOverride(ctx)
	require.NoError(t, err)
	assert.Equal(t, "auto", override, "trailing newline must be trimmed")

	require.NoError(t, store.ClearMode(ctx))
	require.NoError(t, store.ClearMode(ctx))
	override, err = store.ModeOverride(ctx)
	require.NoError(t, err)
	assert.Empty(t, override)
}

func TestStore_WritesAreAtomic(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSignal(ctx, &domain.Signal{Profile: "build"}))

	// No temp files may survive a completed write.
	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	for _, entry := range entries {
		assert.NotContains(t, entry.Name(), ".tmp-", "temp file left behind: %s", entry.Name())
	}
}
