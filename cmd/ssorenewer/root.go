package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ssorenewer",
	Short: "AWS SSO session renewal for the bazel-aws-maven-proxy",
	Long: `ssorenewer keeps the long-lived Maven artifact proxy supplied with valid
AWS SSO credentials without ever restarting it. It bundles the host-side
watcher daemon, the credential expiration monitor, the caching artifact
proxy, and the operator commands that inspect and drive the shared
filesystem state.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to the YAML config file")
	rootCmd.PersistentFlags().String("profile", "", "AWS profile (overrides config and AWS_PROFILE)")
	rootCmd.PersistentFlags().String("state-dir", "", "State directory (overrides config and SSO_STATE_DIR)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}
