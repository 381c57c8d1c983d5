package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/detector"
	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/ssocache"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run the credential expiration monitor",
	Long: `Periodically validates the SSO credentials and writes the renewal signal
on the valid-to-invalid transition. Designed to run next to the proxy (in
the container) while the watcher runs on the host.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		store := newStore(cfg, logger)

		tokenChecker := detector.NewTokenChecker(ssocache.New(cfg.SSOCacheDir))
		tokenChecker.Threshold = cfg.RenewalThreshold

		var checker detector.Checker = tokenChecker
		if cfg.STSProbe {
			checker = detector.AnyInvalid{
				tokenChecker,
				detector.NewSTSChecker(cfg.Profile, logger),
			}
		}

		d := detector.New(store, checker, detector.Options{
			Profile:  cfg.Profile,
			Interval: cfg.CheckInterval,
		}, logger)

		ctx, cancel := signalContext()
		defer cancel()

		if err := d.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}
