package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/loomworks/loomplan/pkg/planstore"
)

var restrictCmd = &cobra.Command{
	Use:   "restrict",
	Short: "Manage the blocked and hidden machine lists",
	Long: `Blocked machines are looms the planner must not touch (maintenance,
reserved work). Hidden machines are dummy rows in the floor export that do
not physically exist. Both are excluded from planning identically; the
lists are kept separate so each can be reviewed on its own.`,
}

var restrictListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show both restriction lists",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		blocked, err := store.Blocked(cmd.Context())
		if err != nil {
			return err
		}
		hidden, err := store.Hidden(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("blocked: %v\n", blocked)
		fmt.Printf("hidden:  %v\n", hidden)
		return nil
	},
}

func restrictionCommand(use, short string, apply func(context.Context, *planstore.Store, int) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " MACHINE...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			for _, arg := range args {
				machine, err := strconv.Atoi(arg)
				if err != nil {
					return fmt.Errorf("machine %q is not a number", arg)
				}
				if err := apply(cmd.Context(), store, machine); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(restrictCmd)
	restrictCmd.AddCommand(restrictListCmd)

	restrictCmd.AddCommand(restrictionCommand("block", "Add machines to the blocked list",
		func(ctx context.Context, s *planstore.Store, machine int) error { return s.Block(ctx, machine) }))
	restrictCmd.AddCommand(restrictionCommand("unblock", "Remove machines from the blocked list",
		func(ctx context.Context, s *planstore.Store, machine int) error { return s.Unblock(ctx, machine) }))
	restrictCmd.AddCommand(restrictionCommand("hide", "Add machines to the hidden list",
		func(ctx context.Context, s *planstore.Store, machine int) error { return s.Hide(ctx, machine) }))
	restrictCmd.AddCommand(restrictionCommand("unhide", "Remove machines from the hidden list",
		func(ctx context.Context, s *planstore.Store, machine int) error { return s.Unhide(ctx, machine) }))
}
