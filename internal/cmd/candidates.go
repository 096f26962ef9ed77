package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/loomworks/loomplan/pkg/alloc"
	"github.com/loomworks/loomplan/pkg/reedgroup"
	"github.com/loomworks/loomplan/pkg/rules"
)

var candidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "Show the candidate machines for one reed group",
	Long: `List the machines the allocator would offer for a reed group, in
planning order: backlog-empty groups first, then the excess of busier
groups, with the target group's own machines only as a fallback.`,
	RunE: runCandidates,
}

var (
	candManifestPath string
	candGroup        string
	candCategory     string
)

func init() {
	rootCmd.AddCommand(candidatesCmd)

	candidatesCmd.Flags().StringVarP(&candManifestPath, "manifest", "m", "", "Path to planning manifest (required)")
	candidatesCmd.Flags().StringVarP(&candGroup, "group", "g", "", "Reed group (required)")
	candidatesCmd.Flags().StringVar(&candCategory, "category", "denim", "Job category (denim|dyed)")

	_ = candidatesCmd.MarkFlagRequired("manifest")
	_ = candidatesCmd.MarkFlagRequired("group")
}

func runCandidates(cmd *cobra.Command, args []string) error {
	cat, err := rules.ParseCategory(candCategory)
	if err != nil {
		return err
	}

	in, err := loadPlanning(cmd.Context(), candManifestPath)
	if err != nil {
		return err
	}
	defer in.Close()

	groupKey := reedgroup.Normalize(candGroup)
	cands := alloc.BuildCandidates(groupKey, cat, in.Machines, in.Jobs, alloc.NewSession(), in.Config)
	if len(cands) == 0 {
		fmt.Printf("no candidates for group %s (%s)\n", groupKey, cat)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIER\tMACHINE\tGROUP\tSTATE\tSELVEDGE\tWEAVE\tEXP")
	for _, c := range cands {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\t%d\n",
			c.Tier, c.Machine.Number, c.Machine.GroupKey,
			machineLabelShort(c.Machine), c.Machine.Selvedge, c.Machine.Weave,
			c.Machine.Experience)
	}
	return w.Flush()
}

func machineLabelShort(m alloc.Machine) string {
	if m.Open {
		return "open"
	}
	if m.HasYardage {
		return fmt.Sprintf("%.1f m", m.RemainingYardage)
	}
	return "busy"
}
