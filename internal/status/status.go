// Package status builds the operator-facing state report: active mode,
// signal presence, throttle state and lock state, assembled from the same
// store the watcher polls.
package status

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/muesli/termenv"

	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/domain"
	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/ports"
	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/ssocache"
	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/watcher"
)

// LockInspector reports lock presence without acquiring it.
type LockInspector interface {
	Held() bool
}

// Report is one point-in-time snapshot of the renewal state.
type Report struct {
	Mode         domain.Mode
	ModeOverride string
	DefaultMode  domain.Mode

	SignalPresent bool
	Signal        *domain.Signal
	SnoozedFor    time.Duration // remaining, 0 when not snoozed

	CooldownActive    bool
	CooldownRemaining time.Duration

	LockHeld bool

	TokenKnown     bool
	TokenExpiresIn time.Duration
}

// Collect assembles a Report.
func Collect(ctx context.Context, store ports.StateStore, lock LockInspector, inspector *ssocache.Inspector, defaultMode domain.Mode, cooldownWindow time.Duration, now time.Time) (Report, error) {
	rep := Report{DefaultMode: defaultMode}

	override, err := store.ModeOverride(ctx)
	if err != nil {
		return rep, fmt.Errorf("read mode override: %w", err)
	}
	rep.ModeOverride = override
	rep.Mode, _ = watcher.ResolveMode(override, defaultMode)

	sig, err := store.LoadSignal(ctx)
	switch {
	case err == nil:
		rep.SignalPresent = true
		rep.Signal = sig
		if until := sig.SnoozedUntil(); until.After(now) {
			rep.SnoozedFor = until.Sub(now).Round(time.Second)
		}
	case errors.Is(err, domain.ErrNoSignal):
		// No signal pending.
	default:
		return rep, fmt.Errorf("read signal: %w", err)
	}

	cooldownAt, err := store.CooldownAt(ctx)
	if err != nil {
		return rep, fmt.Errorf("read cooldown: %w", err)
	}
	if !cooldownAt.IsZero() {
		if remaining := cooldownWindow - now.Sub(cooldownAt); remaining > 0 {
			rep.CooldownActive = true
			rep.CooldownRemaining = remaining.Round(time.Second)
		}
	}

	rep.LockHeld = lock.Held()

	if inspector != nil {
		if tok, err := inspector.Latest(); err == nil {
			rep.TokenKnown = true
			rep.TokenExpiresIn = tok.TimeUntilExpiry(now).Round(time.Second)
		}
	}

	return rep, nil
}

// Render writes a human-readable report. Colors degrade automatically on
// non-TTY outputs through the termenv profile.
func Render(w io.Writer, rep Report, profile termenv.Profile) {
	good := func(s string) string { return termenv.String(s).Foreground(profile.Color("2")).String() }
	warn := func(s string) string { return termenv.String(s).Foreground(profile.Color("3")).String() }
	bad := func(s string) string { return termenv.String(s).Foreground(profile.Color("1")).String() }

	fmt.Fprintf(w, "mode:      %s", rep.Mode)
	if rep.ModeOverride != "" {
		fmt.Fprintf(w, " (override %q, default %s)", rep.ModeOverride, rep.DefaultMode)
	}
	fmt.Fprintln(w)

	if rep.SignalPresent {
		line := fmt.Sprintf("signal:    pending (profile=%s", rep.Signal.Profile)
		if rep.Signal.Reason != "" {
			line += fmt.Sprintf(", reason=%q", rep.Signal.Reason)
		}
		line += ")"
		fmt.Fprintln(w, warn(line))
		if rep.SnoozedFor > 0 {
			fmt.Fprintf(w, "snooze:    %s remaining\n", rep.SnoozedFor)
		}
	} else {
		fmt.Fprintln(w, good("signal:    none"))
	}

	if rep.CooldownActive {
		fmt.Fprintf(w, "cooldown:  %s\n", warn(rep.CooldownRemaining.String()+" remaining"))
	} else {
		fmt.Fprintln(w, "cooldown:  inactive")
	}

	if rep.LockHeld {
		fmt.Fprintln(w, warn("lock:      held (login in progress)"))
	} else {
		fmt.Fprintln(w, "lock:      free")
	}

	switch {
	case !rep.TokenKnown:
		fmt.Fprintln(w, "sso token: not found")
	case rep.TokenExpiresIn <= 0:
		fmt.Fprintln(w, bad("sso token: expired"))
	default:
		fmt.Fprintf(w, "sso token: valid for %s\n", rep.TokenExpiresIn)
	}
}
