package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/domain"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Run the interactive SSO login now",
	Long: `Runs the interactive login immediately, under the same filesystem lock
the watcher uses, so a manual login never races the daemon. Success clears
the pending signal and resets the cooldown.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		store := newStore(cfg, logger)
		ctx := cmd.Context()

		unlock, err := newLocker(store).TryLock(ctx)
		if err != nil {
			if errors.Is(err, domain.ErrLockHeld) {
				fmt.Fprintln(os.Stderr, "a login is already in progress (lock held)")
				os.Exit(1)
			}
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer unlock(ctx)

		res := newInvoker(cfg, logger).Login(ctx, cfg.Profile)
		if res.Failed() {
			fmt.Fprintf(os.Stderr, "login %s (exit code %d)\n", res.Status, res.ExitCode)
			if res.Output != "" {
				fmt.Fprintln(os.Stderr, res.Output)
			}
			os.Exit(1)
		}

		// A fresh manual login settles everything: the signal is moot and
		// the throttle must not delay the next genuine expiration.
		if err := store.ClearSignal(ctx); err != nil {
			logger.Warn("failed to clear signal after login", "err", err)
		}
		if err := store.ClearCooldown(ctx); err != nil {
			logger.Warn("failed to clear cooldown after login", "err", err)
		}
		fmt.Printf("login successful for profile %s\n", cfg.Profile)
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
}
