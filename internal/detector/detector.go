// Package detector implements the credential expiration detector: a
// check loop that writes the renewal signal exactly on the valid-to-invalid
// transition and clears it when credentials become valid again.
package detector

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/domain"
	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/ports"
)

// Checker validates the current credential state. reason is informational
// and only used when valid is false.
type Checker interface {
	Check(ctx context.Context) (valid bool, reason string)
}

// Options tune the detector loop.
type Options struct {
	Profile  string
	Interval time.Duration // default 60s
	Source   string        // origin tag stamped into signals
}

// Detector owns the edge-triggered check loop.
type Detector struct {
	store   ports.StateStore
	checker Checker
	opts    Options
	logger  *slog.Logger

	// lastValid tracks the previous check result. nil until the first
	// check completes so startup emits exactly one transition.
	lastValid *bool

	now func() time.Time
}

// New assembles a Detector.
func New(store ports.StateStore, checker Checker, opts Options, logger *slog.Logger) *Detector {
	if opts.Interval <= 0 {
		opts.Interval = 60 * time.Second
	}
	if opts.Profile == "" {
		opts.Profile = "default"
	}
	if opts.Source == "" {
		opts.Source = "sso-monitor"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{store: store, checker: checker, opts: opts, logger: logger, now: time.Now}
}

// Run checks until the context is canceled.
func (d *Detector) Run(ctx context.Context) error {
	d.logger.Info("credential monitor started",
		"profile", d.opts.Profile, "interval", d.opts.Interval)

	ticker := time.NewTicker(d.opts.Interval)
	defer ticker.Stop()

	for {
		if err := d.CheckOnce(ctx); err != nil {
			d.logger.Error("credential check failed", "err", err)
		}
		select {
		case <-ctx.Done():
			d.logger.Info("credential monitor stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// CheckOnce performs one check and applies the edge-triggered signal
// policy: state changes write or clear the signal, steady states touch
// nothing so an expired-and-snoozed signal is never churned.
func (d *Detector) CheckOnce(ctx context.Context) error {
	valid, reason := d.checker.Check(ctx)

	if d.lastValid != nil && *d.lastValid == valid {
		return nil
	}
	d.lastValid = &valid

	if valid {
		d.logger.Info("credentials valid, clearing signal", "profile", d.opts.Profile)
		return d.store.ClearSignal(ctx)
	}

	d.logger.Info("credentials invalid, writing signal",
		"profile", d.opts.Profile, "reason", reason)
	return d.store.SaveSignal(ctx, &domain.Signal{
		ID:        uuid.NewString(),
		Profile:   d.opts.Profile,
		Reason:    reason,
		CreatedAt: d.now().UTC().Format(time.RFC3339),
		Source:    d.opts.Source,
	})
}
