package notify

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/domain"
	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/ports"
)

// Script runs an operator-provided command (e.g. a zenity or notify-send
// wrapper on Linux) that prints one outcome line to stdout:
//
//	refresh | snooze:<seconds> | suppress | dismiss
//
// The profile and reason are passed through the environment so the hook
// needs no argument parsing.
type Script struct {
	argv   []string
	logger *slog.Logger
}

// NewScript creates a script-backed notifier from an argv.
func NewScript(argv []string, logger *slog.Logger) *Script {
	if logger == nil {
		logger = slog.Default()
	}
	return &Script{argv: argv, logger: logger}
}

// Prompt runs the hook under the bounded wait. Errors are returned to the
// caller, which maps them to dismiss.
func (s *Script) Prompt(ctx context.Context, req ports.PromptRequest) (domain.Outcome, error) {
	if len(s.argv) == 0 {
		return domain.Outcome{}, fmt.Errorf("notify script not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, req.Wait+15*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.argv[0], s.argv[1:]...)
	cmd.WaitDelay = 5 * time.Second
	cmd.Env = append(cmd.Environ(),
		"SSO_RENEWER_PROFILE="+req.Profile,
		"SSO_RENEWER_REASON="+req.Reason,
		fmt.Sprintf("SSO_RENEWER_WAIT_SECONDS=%d", int(req.Wait.Seconds())),
	)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			s.logger.Info("notify script timed out")
			return domain.Outcome{Kind: domain.OutcomeDismiss}, nil
		}
		return domain.Outcome{}, fmt.Errorf("notify script: %w", err)
	}
	return ParseOutcome(stdout.String()), nil
}
