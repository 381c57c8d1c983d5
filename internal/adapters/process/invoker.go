// Package process runs the external credential commands as subprocesses.
package process

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/domain"
)

// DefaultLoginCommand is the interactive SSO login. The AWS CLI opens the
// browser and waits for the user to complete authentication.
var DefaultLoginCommand = []string{"aws", "sso", "login", "--profile", "{profile}"}

// Invoker implements ports.Invoker. Commands are argv templates; every
// "{profile}" token is replaced with the profile before execution. Passing
// the profile as a substituted argv element (never through a shell) keeps
// the invocation injection-free.
type Invoker struct {
	loginCmd   []string
	refreshCmd []string
	timeout    time.Duration
	logger     *slog.Logger
}

type Option func(*Invoker)

// WithLoginCommand overrides the interactive login argv template.
func WithLoginCommand(argv []string) Option {
	return func(i *Invoker) {
		if len(argv) > 0 {
			i.loginCmd = argv
		}
	}
}

// WithRefreshCommand configures the optional non-interactive refresh argv
// template. Empty means the capability is absent.
func WithRefreshCommand(argv []string) Option {
	return func(i *Invoker) { i.refreshCmd = argv }
}

// WithTimeout sets the hard bound on both commands.
func WithTimeout(d time.Duration) Option {
	return func(i *Invoker) {
		if d > 0 {
			i.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Invoker) { i.logger = logger }
}

// New creates an Invoker with the default aws CLI login and a 120s timeout.
func New(opts ...Option) *Invoker {
	inv := &Invoker{
		loginCmd: DefaultLoginCommand,
		timeout:  120 * time.Second,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Login runs the interactive login command under the hard timeout.
func (i *Invoker) Login(ctx context.Context, profile string) domain.LoginResult {
	return i.run(ctx, i.loginCmd, profile)
}

// CanRefresh reports whether a refresh command is configured.
func (i *Invoker) CanRefresh() bool { return len(i.refreshCmd) > 0 }

// Refresh runs the configured non-interactive refresh command.
func (i *Invoker) Refresh(ctx context.Context, profile string) domain.LoginResult {
	return i.run(ctx, i.refreshCmd, profile)
}

func (i *Invoker) run(ctx context.Context, argv []string, profile string) domain.LoginResult {
	args := expand(argv, profile)
	i.logger.Info("running credential command", "cmd", strings.Join(args, " "), "timeout", i.timeout)

	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	// Give the process a moment to die after the kill signal so Wait can
	// never hang on inherited pipes.
	cmd.WaitDelay = 5 * time.Second

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	output := strings.TrimSpace(out.String())

	switch {
	case err == nil:
		return domain.LoginResult{Status: domain.LoginSuccess, Output: output}
	case ctx.Err() == context.DeadlineExceeded:
		i.logger.Warn("credential command timed out, subprocess killed", "timeout", i.timeout)
		return domain.LoginResult{Status: domain.LoginTimeout, ExitCode: -1, Output: output}
	default:
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return domain.LoginResult{Status: domain.LoginFailure, ExitCode: code, Output: output}
	}
}

func expand(argv []string, profile string) []string {
	out := make([]string, len(argv))
	for n, a := range argv {
		out[n] = strings.ReplaceAll(a, "{profile}", profile)
	}
	return out
}
