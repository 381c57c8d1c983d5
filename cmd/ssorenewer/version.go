package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the ssorenewer version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ssorenewer version %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
