package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the host-side login watcher daemon",
	Long: `Polls the shared state directory for a renewal signal and coordinates the
interactive SSO login: notification dialog, cooldown and snooze throttles,
and single-flight locking against concurrent manual logins.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		store := newStore(cfg, logger)
		logger.Info("watching for renewal signals",
			"signal_file", store.SignalPath(), "state_dir", store.Dir())

		w := watcher.New(
			store,
			newLocker(store),
			newNotifier(cfg, logger),
			newInvoker(cfg, logger),
			watcher.Options{
				Profile:        cfg.Profile,
				PollInterval:   cfg.PollInterval,
				CooldownWindow: cfg.CooldownWindow,
				DialogWait:     cfg.DialogWait,
				RetrySnooze:    cfg.RetrySnooze,
				DefaultMode:    cfg.DefaultMode,
			},
			logger)

		ctx, cancel := signalContext()
		defer cancel()

		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
