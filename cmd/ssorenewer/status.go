package main

import (
	"fmt"
	"os"
	"time"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/ssocache"
	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/status"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the renewal state: mode, signal, throttles, lock",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		store := newStore(cfg, logger)
		rep, err := status.Collect(cmd.Context(), store, newLocker(store),
			ssocache.New(cfg.SSOCacheDir), cfg.DefaultMode, cfg.CooldownWindow, time.Now())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		profile := termenv.Ascii
		if term.IsTerminal(int(os.Stdout.Fd())) {
			profile = termenv.ColorProfile()
		}
		status.Render(os.Stdout, rep, profile)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
