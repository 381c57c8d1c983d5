// Package watcher implements the renewal state machine: a poll loop that
// reads the shared filesystem state every tick and coordinates the
// interactive login flow through the notification and invoker capabilities.
package watcher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/domain"
	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/ports"
)

// Options tune the loop. Zero values select the documented defaults.
type Options struct {
	// Profile used when the signal does not name one.
	Profile string
	// PollInterval between ticks (default 5s).
	PollInterval time.Duration
	// CooldownWindow blocks all handling after a settling outcome
	// (default 600s).
	CooldownWindow time.Duration
	// DialogWait bounds the notification prompt (default 120s).
	DialogWait time.Duration
	// RetrySnooze is the automatic deferral after a failed or timed-out
	// login attempt (default 30s).
	RetrySnooze time.Duration
	// DefaultMode applies when no valid override is stored (default
	// notify).
	DefaultMode domain.Mode
}

func (o *Options) fill() {
	if o.Profile == "" {
		o.Profile = "default"
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 5 * time.Second
	}
	if o.CooldownWindow <= 0 {
		o.CooldownWindow = 600 * time.Second
	}
	if o.DialogWait <= 0 {
		o.DialogWait = 120 * time.Second
	}
	if o.RetrySnooze <= 0 {
		o.RetrySnooze = 30 * time.Second
	}
	if o.DefaultMode == "" {
		o.DefaultMode = domain.ModeNotify
	}
}

// Watcher is the core orchestrator. It owns no state of its own: every
// decision is derived from the store, the clock and the capability results,
// so the daemon can be restarted at any point.
type Watcher struct {
	store    ports.StateStore
	locker   ports.Locker
	notifier ports.Notifier
	invoker  ports.Invoker
	opts     Options
	logger   *slog.Logger

	now func() time.Time
}

// New assembles a Watcher. The notifier may be nil when the deployment has
// no notification capability; prompts then resolve to dismiss.
func New(store ports.StateStore, locker ports.Locker, notifier ports.Notifier, invoker ports.Invoker, opts Options, logger *slog.Logger) *Watcher {
	opts.fill()
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		store:    store,
		locker:   locker,
		notifier: notifier,
		invoker:  invoker,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// Run polls until the context is canceled. Tick errors are logged and the
// loop continues; nothing in the core is fatal.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("watcher started",
		"profile", w.opts.Profile,
		"default_mode", w.opts.DefaultMode,
		"poll", w.opts.PollInterval,
		"cooldown", w.opts.CooldownWindow)

	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	for {
		if err := w.Tick(ctx); err != nil {
			w.logger.Error("tick failed", "err", err)
		}
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Tick performs one poll cycle: resolve mode, check signal and throttles,
// acquire the lock, handle, release the lock.
func (w *Watcher) Tick(ctx context.Context) error {
	mode := w.resolveMode(ctx)
	if mode == domain.ModeStandalone {
		return nil
	}

	sig, err := w.store.LoadSignal(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNoSignal) {
			return nil
		}
		return err
	}

	now := w.now()
	cooldownAt, err := w.store.CooldownAt(ctx)
	if err != nil {
		return err
	}
	throttle := EvaluateThrottle(now, cooldownAt, w.opts.CooldownWindow, sig.SnoozedUntil())
	if throttle.Blocked() {
		w.logger.Debug("signal throttled",
			"cooldown", throttle.BlockedByCooldown,
			"snooze", throttle.BlockedBySnooze)
		return nil
	}

	unlock, err := w.locker.TryLock(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrLockHeld) {
			w.logger.Info("login lock held by another process, skipping tick")
			return nil
		}
		return err
	}
	// Unconditional release: a failure inside handling must never leave
	// the lock behind, or every future tick would deadlock.
	defer func() {
		if err := unlock(ctx); err != nil {
			w.logger.Error("failed to release login lock", "err", err)
		}
	}()

	return w.handle(ctx, mode, sig)
}

func (w *Watcher) resolveMode(ctx context.Context) domain.Mode {
	override, err := w.store.ModeOverride(ctx)
	if err != nil {
		w.logger.Warn("failed to read mode override, using default",
			"default", w.opts.DefaultMode, "err", err)
		return w.opts.DefaultMode
	}
	mode, valid := ResolveMode(override, w.opts.DefaultMode)
	if !valid {
		w.logger.Warn("invalid mode override, using default",
			"override", override, "default", w.opts.DefaultMode)
	}
	return mode
}

// handle dispatches to the mode-specific procedure. The caller holds the
// login lock.
func (w *Watcher) handle(ctx context.Context, mode domain.Mode, sig *domain.Signal) error {
	profile := sig.Profile
	if profile == "" {
		profile = w.opts.Profile
	}
	w.logger.Info("handling renewal signal", "mode", mode, "profile", profile, "reason", sig.Reason)

	switch mode {
	case domain.ModeNotify:
		return w.handleNotify(ctx, profile, sig)
	case domain.ModeAuto:
		return w.attemptLogin(ctx, profile, sig)
	case domain.ModeSilent:
		return w.handleSilent(ctx, profile, sig)
	}
	return nil
}

func (w *Watcher) handleNotify(ctx context.Context, profile string, sig *domain.Signal) error {
	// Cheap path first: a configured non-interactive refresh spares the
	// user the dialog entirely.
	if w.invoker.CanRefresh() {
		if res := w.invoker.Refresh(ctx, profile); !res.Failed() {
			w.logger.Info("non-interactive refresh succeeded", "profile", profile)
			return w.settle(ctx, true)
		}
		w.logger.Info("non-interactive refresh failed, prompting user", "profile", profile)
	}

	outcome := w.prompt(ctx, profile, sig.Reason)
	w.logger.Info("dialog outcome", "outcome", outcome.Kind)

	switch outcome.Kind {
	case domain.OutcomeRefresh:
		return w.attemptLogin(ctx, profile, sig)
	case domain.OutcomeSnooze:
		sig.Snooze(w.now(), outcome.SnoozeFor)
		if err := w.store.SaveSignal(ctx, sig); err != nil {
			return err
		}
		w.logger.Info("signal snoozed", "for", outcome.SnoozeFor)
		return nil
	case domain.OutcomeSuppress:
		// Clear AND cool down: a signal re-triggered right away (e.g. a
		// manual trigger) must not re-prompt within the window.
		w.logger.Info("reminders suppressed, signal cleared")
		return w.settle(ctx, true)
	default: // dismiss, including dialog timeout and notifier errors
		w.logger.Info("dialog dismissed, retry after cooldown")
		return w.settle(ctx, false)
	}
}

func (w *Watcher) handleSilent(ctx context.Context, profile string, sig *domain.Signal) error {
	if w.invoker.CanRefresh() {
		if res := w.invoker.Refresh(ctx, profile); !res.Failed() {
			w.logger.Info("non-interactive refresh succeeded", "profile", profile)
			return w.settle(ctx, true)
		}
	} else {
		w.logger.Warn("silent mode with no refresh command configured")
	}
	// Never escalate to an interactive login. Short deferral, fast retry.
	return w.retrySnooze(ctx, sig)
}

// attemptLogin runs the interactive login and applies the outcome table:
// success clears the signal and starts the cooldown; failure and timeout
// keep the signal with a short automatic snooze and no cooldown.
func (w *Watcher) attemptLogin(ctx context.Context, profile string, sig *domain.Signal) error {
	res := w.invoker.Login(ctx, profile)
	if res.Failed() {
		w.logger.Warn("login attempt failed",
			"status", res.Status, "exit_code", res.ExitCode, "retry_in", w.opts.RetrySnooze)
		return w.retrySnooze(ctx, sig)
	}
	w.logger.Info("login successful, signal cleared", "profile", profile)
	return w.settle(ctx, true)
}

// prompt asks the notification capability for a decision. Absent or failing
// capability degrades to dismiss so the loop keeps running.
func (w *Watcher) prompt(ctx context.Context, profile, reason string) domain.Outcome {
	if w.notifier == nil {
		w.logger.Warn("no notification capability configured, treating as dismiss")
		return domain.Outcome{Kind: domain.OutcomeDismiss}
	}
	outcome, err := w.notifier.Prompt(ctx, ports.PromptRequest{
		Profile: profile,
		Reason:  reason,
		Wait:    w.opts.DialogWait,
	})
	if err != nil {
		w.logger.Warn("notification capability failed, treating as dismiss", "err", err)
		return domain.Outcome{Kind: domain.OutcomeDismiss}
	}
	return outcome
}

// settle records a settling outcome: cooldown always, signal cleared only
// when clear is true (success and suppress clear it, dismiss keeps it).
func (w *Watcher) settle(ctx context.Context, clear bool) error {
	if clear {
		if err := w.store.ClearSignal(ctx); err != nil {
			return err
		}
	}
	return w.store.MarkCooldown(ctx, w.now())
}

func (w *Watcher) retrySnooze(ctx context.Context, sig *domain.Signal) error {
	sig.Snooze(w.now(), w.opts.RetrySnooze)
	return w.store.SaveSignal(ctx, sig)
}
