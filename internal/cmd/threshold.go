package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var thresholdCmd = &cobra.Command{
	Use:   "threshold",
	Short: "Show or change the remaining-yardage threshold",
	Long: `The threshold (in meters) decides when a busy loom counts as about to
open: machines at or below it are offered to the allocator alongside open
ones. The value persists across sessions.`,
}

var thresholdGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the current threshold",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		meters, err := store.Threshold(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("%g\n", meters)
		return nil
	},
}

var thresholdSetCmd = &cobra.Command{
	Use:   "set METERS",
	Short: "Store a new threshold",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		meters, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("threshold %q is not a number", args[0])
		}

		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.SetThreshold(cmd.Context(), meters); err != nil {
			return err
		}
		fmt.Printf("threshold set to %g m\n", meters)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(thresholdCmd)
	thresholdCmd.AddCommand(thresholdGetCmd)
	thresholdCmd.AddCommand(thresholdSetCmd)
}
