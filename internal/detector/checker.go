package detector

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/ssocache"
)

// TokenChecker validates against the SSO token cache expiry. Credentials
// count as invalid once the remaining validity drops below Threshold, so
// the user is prompted before the token actually dies mid-build.
type TokenChecker struct {
	Inspector *ssocache.Inspector
	Threshold time.Duration
	Now       func() time.Time
}

// NewTokenChecker creates a TokenChecker with a one hour threshold.
func NewTokenChecker(inspector *ssocache.Inspector) *TokenChecker {
	return &TokenChecker{Inspector: inspector, Threshold: time.Hour, Now: time.Now}
}

func (c *TokenChecker) Check(ctx context.Context) (bool, string) {
	tok, err := c.Inspector.Latest()
	if err != nil {
		return false, "no SSO token in cache"
	}
	remaining := tok.TimeUntilExpiry(c.Now())
	if remaining < c.Threshold {
		return false, fmt.Sprintf("SSO token expires in %s", remaining.Round(time.Second))
	}
	return true, ""
}

// STSChecker probes the live credential chain with a get-caller-identity
// call through the aws CLI. Slower and networked, but catches revocation
// that the cache timestamp cannot.
type STSChecker struct {
	Profile string
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewSTSChecker creates an STSChecker with a 30s probe timeout.
func NewSTSChecker(profile string, logger *slog.Logger) *STSChecker {
	if logger == nil {
		logger = slog.Default()
	}
	return &STSChecker{Profile: profile, Timeout: 30 * time.Second, Logger: logger}
}

func (c *STSChecker) Check(ctx context.Context) (bool, string) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "aws", "sts", "get-caller-identity",
		"--profile", c.Profile, "--output", "json")
	cmd.WaitDelay = 5 * time.Second
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			// Network trouble, not necessarily expired credentials.
			// Report invalid; the watcher's throttles absorb flapping.
			c.Logger.Warn("sts probe timed out", "profile", c.Profile)
			return false, "sts probe timed out"
		}
		return false, "sts get-caller-identity failed"
	}
	return true, ""
}

// AnyInvalid combines checkers; the first invalid verdict wins. Used to
// pair the cheap cache check with the authoritative STS probe.
type AnyInvalid []Checker

func (cs AnyInvalid) Check(ctx context.Context) (bool, string) {
	for _, c := range cs {
		if valid, reason := c.Check(ctx); !valid {
			return false, reason
		}
	}
	return true, ""
}
