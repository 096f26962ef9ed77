package cmd

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/loomworks/loomplan/pkg/alloc"
	"github.com/loomworks/loomplan/pkg/reedgroup"
	"github.com/loomworks/loomplan/pkg/rules"
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Show per-group backlog and active machine counts",
	RunE:  runGroups,
}

var (
	groupsManifestPath string
	groupsCategory     string
)

func init() {
	rootCmd.AddCommand(groupsCmd)

	groupsCmd.Flags().StringVarP(&groupsManifestPath, "manifest", "m", "", "Path to planning manifest (required)")
	groupsCmd.Flags().StringVar(&groupsCategory, "category", "denim", "Job category (denim|dyed)")

	_ = groupsCmd.MarkFlagRequired("manifest")
}

func runGroups(cmd *cobra.Command, args []string) error {
	cat, err := rules.ParseCategory(groupsCategory)
	if err != nil {
		return err
	}

	in, err := loadPlanning(cmd.Context(), groupsManifestPath)
	if err != nil {
		return err
	}
	defer in.Close()

	stats := alloc.Stats(in.Machines, in.Jobs, cat, alloc.NewSession(), in.Config)
	keys := make([]string, 0, len(stats))
	for key := range stats {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, k int) bool {
		ai, aok := reedgroup.LeadingNumber(keys[i])
		bi, bok := reedgroup.LeadingNumber(keys[k])
		if aok != bok {
			return aok
		}
		if aok && ai != bi {
			return ai < bi
		}
		return keys[i] < keys[k]
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "GROUP\tJOBS\tMACHINES\tBALANCE")
	for _, key := range keys {
		st := stats[key]
		fmt.Fprintf(w, "%s\t%d\t%d\t%+d\n",
			key, st.JobBacklog, st.ActiveMachines, st.ActiveMachines-st.JobBacklog)
	}
	return w.Flush()
}
