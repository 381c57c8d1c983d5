package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/adapters/fsstate"
	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/adapters/notify"
	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/adapters/process"
	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/config"
	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/logging"
	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/ports"
)

// loadConfig resolves the configuration with the persistent flags layered
// on top of file and environment values.
func loadConfig(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}
	if v, _ := cmd.Flags().GetString("profile"); v != "" {
		cfg.Profile = v
	}
	if v, _ := cmd.Flags().GetString("state-dir"); v != "" {
		cfg.StateDir = v
	}
	if v, _ := cmd.Flags().GetBool("debug"); v {
		cfg.Debug = true
	}
	return cfg, logging.New(cfg.Debug), nil
}

func newStore(cfg config.Config, logger *slog.Logger) *fsstate.Store {
	return fsstate.New(cfg.StateDir,
		fsstate.WithSignalPath(cfg.SignalFile),
		fsstate.WithLogger(logger))
}

func newLocker(store *fsstate.Store) *fsstate.Locker {
	return fsstate.NewLocker(store.Dir())
}

func newInvoker(cfg config.Config, logger *slog.Logger) *process.Invoker {
	return process.New(
		process.WithLoginCommand(cfg.LoginCommand),
		process.WithRefreshCommand(cfg.RefreshCommand),
		process.WithTimeout(cfg.LoginTimeout),
		process.WithLogger(logger))
}

func newNotifier(cfg config.Config, logger *slog.Logger) ports.Notifier {
	if len(cfg.NotifyCommand) > 0 {
		return notify.NewScript(cfg.NotifyCommand, logger)
	}
	return notify.NewOsascript(logger)
}

// signalContext cancels on SIGINT/SIGTERM so daemons exit cleanly under
// launchd and container supervisors.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
