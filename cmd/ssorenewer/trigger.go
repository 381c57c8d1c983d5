package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/domain"
)

var triggerCmd = &cobra.Command{
	Use:   "trigger",
	Short: "Write a renewal signal manually",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		reason, _ := cmd.Flags().GetString("reason")

		store := newStore(cfg, logger)
		sig := &domain.Signal{
			ID:        uuid.NewString(),
			Profile:   cfg.Profile,
			Reason:    reason,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
			Source:    "manual-trigger",
		}
		if err := store.SaveSignal(cmd.Context(), sig); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("signal written: %s\n", store.SignalPath())
	},
}

var invalidateCmd = &cobra.Command{
	Use:   "invalidate",
	Short: "Clear the cooldown and retrigger a renewal signal",
	Long: `Resets the cooldown throttle and writes a fresh renewal signal, forcing
the watcher to act on its next tick. Useful when credentials were revoked
outside the normal expiration flow.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		store := newStore(cfg, logger)
		ctx := cmd.Context()

		if err := store.ClearCooldown(ctx); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		sig := &domain.Signal{
			ID:        uuid.NewString(),
			Profile:   cfg.Profile,
			Reason:    "manually invalidated",
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
			Source:    "manual-invalidate",
		}
		if err := store.SaveSignal(ctx, sig); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println("cooldown cleared, signal retriggered")
	},
}

func init() {
	triggerCmd.Flags().String("reason", "manually triggered", "Reason recorded in the signal")
	rootCmd.AddCommand(triggerCmd)
	rootCmd.AddCommand(invalidateCmd)
}
