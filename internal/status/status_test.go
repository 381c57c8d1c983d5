package status_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/adapters/memstate"
	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/domain"
	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/status"
)

func TestCollect_QuietState(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	rep, err := status.Collect(ctx, memstate.New(), memstate.NewLocker(), nil,
		domain.ModeNotify, 10*time.Minute, now)
	require.NoError(t, err)

	assert.Equal(t, domain.ModeNotify, rep.Mode)
	assert.False(t, rep.SignalPresent)
	assert.False(t, rep.CooldownActive)
	assert.False(t, rep.LockHeld)
	assert.False(t, rep.TokenKnown)
}

func TestCollect_PendingSignalWithSnoozeAndCooldown(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	store := memstate.New()

	sig := &domain.Signal{ID: "abc", Profile: "staging", Reason: "token expired"}
	sig.Snooze(now, 15*time.Minute)
	require.NoError(t, store.SaveSignal(ctx, sig))
	require.NoError(t, store.MarkCooldown(ctx, now.Add(-4*time.Minute)))

	rep, err := status.Collect(ctx, store, memstate.NewLocker(), nil,
		domain.ModeNotify, 10*time.Minute, now)
	require.NoError(t, err)

	assert.True(t, rep.SignalPresent)
	assert.Equal(t, "staging", rep.Signal.Profile)
	assert.Equal(t, 15*time.Minute, rep.SnoozedFor)
	assert.True(t, rep.CooldownActive)
	assert.Equal(t, 6*time.Minute, rep.CooldownRemaining)
}

func TestCollect_ExpiredCooldownInactive(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	store := memstate.New()
	require.NoError(t, store.MarkCooldown(ctx, now.Add(-time.Hour)))

	rep, err := status.Collect(ctx, store, memstate.NewLocker(), nil,
		domain.ModeNotify, 10*time.Minute, now)
	require.NoError(t, err)
	assert.False(t, rep.CooldownActive)
}

func TestCollect_ModeOverrideWins(t *testing.T) {
	ctx := context.Background()
	store := memstate.New()
	require.NoError(t, store.SetMode(ctx, domain.ModeSilent))

	rep, err := status.Collect(ctx, store, memstate.NewLocker(), nil,
		domain.ModeNotify, 10*time.Minute, time.Now())
	require.NoError(t, err)
	assert.Equal(t, domain.ModeSilent, rep.Mode)
	assert.Equal(t, "silent", rep.ModeOverride)
}

func TestCollect_LockHeld(t *testing.T) {
	ctx := context.Background()
	locker := memstate.NewLocker()
	unlock, err := locker.TryLock(ctx)
	require.NoError(t, err)
	defer unlock(ctx)

	rep, err := status.Collect(ctx, memstate.New(), locker, nil,
		domain.ModeNotify, 10*time.Minute, time.Now())
	require.NoError(t, err)
	assert.True(t, rep.LockHeld)
}

func TestRender_PlainOutput(t *testing.T) {
	rep := status.Report{
		Mode:          domain.ModeNotify,
		DefaultMode:   domain.ModeNotify,
		SignalPresent: true,
		Signal:        &domain.Signal{Profile: "default", Reason: "token expired"},
		SnoozedFor:    5 * time.Minute,
		LockHeld:      true,
	}

	var buf bytes.Buffer
	status.Render(&buf, rep, termenv.Ascii)
	out := buf.String()

	assert.Contains(t, out, "mode:      notify")
	assert.Contains(t, out, "signal:    pending")
	assert.Contains(t, out, "snooze:    5m0s remaining")
	assert.Contains(t, out, "lock:      held")
	assert.Contains(t, out, "sso token: not found")
	assert.NotContains(t, out, "\x1b[") // ascii profile stays uncolored
}
