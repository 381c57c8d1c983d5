package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clear the signal, lock and cooldown unconditionally",
	Long: `Removes all transient renewal state. Use after a crashed login attempt
left the lock behind, or to reset throttles during debugging. The mode
override is kept; clear it with 'mode --clear'.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		store := newStore(cfg, logger)
		ctx := cmd.Context()

		failed := false
		if err := store.ClearSignal(ctx); err != nil {
			fmt.Fprintln(os.Stderr, err)
			failed = true
		}
		if err := store.ClearCooldown(ctx); err != nil {
			fmt.Fprintln(os.Stderr, err)
			failed = true
		}
		if err := newLocker(store).ForceUnlock(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			failed = true
		}
		if failed {
			os.Exit(1)
		}
		fmt.Println("state cleaned: signal, cooldown and lock removed")
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
