package ports

import (
	"context"
	"time"

	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/domain"
)

// PromptRequest describes one notification dialog.
type PromptRequest struct {
	Profile string
	Reason  string
	// Wait bounds how long the capability may block for a decision.
	// Exceeding it is reported as a dismiss outcome.
	Wait time.Duration
}

// Notifier presents the renewal choice to the user. Implementations are
// platform specific (macOS dialog, operator script); the state machine only
// sees the fixed outcome vocabulary. An error return is mapped to dismiss
// by the caller, so a broken notifier can never crash the loop.
type Notifier interface {
	Prompt(ctx context.Context, req PromptRequest) (domain.Outcome, error)
}

// Invoker runs the external credential commands.
type Invoker interface {
	// Login runs the interactive login command for the profile under a
	// hard timeout. It never leaves an orphaned subprocess behind.
	Login(ctx context.Context, profile string) domain.LoginResult

	// CanRefresh reports whether a non-interactive refresh command is
	// configured.
	CanRefresh() bool

	// Refresh attempts the non-interactive token refresh. Only called
	// when CanRefresh is true.
	Refresh(ctx context.Context, profile string) domain.LoginResult
}
