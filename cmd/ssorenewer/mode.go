package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/domain"
	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/watcher"
)

var modeCmd = &cobra.Command{
	Use:   "mode [notify|auto|silent|standalone]",
	Short: "Show or switch the watcher operating mode",
	Long: `Without arguments, prints the active mode. With a mode argument, stores
an override that the watcher picks up on its next poll tick; no restart is
needed. Use --clear to remove the override.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		store := newStore(cfg, logger)
		ctx := cmd.Context()

		if clear, _ := cmd.Flags().GetBool("clear"); clear {
			if err := store.ClearMode(ctx); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			fmt.Printf("mode override cleared, default is %s\n", cfg.DefaultMode)
			return
		}

		if len(args) == 0 {
			override, err := store.ModeOverride(ctx)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			mode, valid := watcher.ResolveMode(override, cfg.DefaultMode)
			if override == "" {
				fmt.Printf("%s (default)\n", mode)
			} else if !valid {
				fmt.Printf("%s (invalid override %q ignored)\n", mode, override)
			} else {
				fmt.Println(mode)
			}
			return
		}

		mode, ok := domain.ParseMode(args[0])
		if !ok {
			fmt.Fprintf(os.Stderr, "invalid mode %q (valid: notify, auto, silent, standalone)\n", args[0])
			os.Exit(1)
		}
		if err := store.SetMode(ctx, mode); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("mode set to %s (takes effect on the next poll)\n", mode)
	},
}

func init() {
	modeCmd.Flags().Bool("clear", false, "Remove the mode override")
	rootCmd.AddCommand(modeCmd)
}
