package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/loomworks/loomplan/pkg/alloc"
	"github.com/loomworks/loomplan/pkg/reedgroup"
	"github.com/loomworks/loomplan/pkg/rules"
)

var planInteractiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Plan one reed group job by job with operator confirmation",
	Long: `Walk one reed group's backlog interactively. For each job the candidate
machines are listed in planning order; pick one by number, skip the job,
or quit. Pairings with warnings (remark, weft shortage, tooling mismatch)
ask for explicit confirmation before committing.`,
	RunE: runPlanInteractive,
}

var (
	interManifestPath string
	interGroup        string
	interCategory     string
)

func init() {
	planCmd.AddCommand(planInteractiveCmd)

	planInteractiveCmd.Flags().StringVarP(&interManifestPath, "manifest", "m", "", "Path to planning manifest (required)")
	planInteractiveCmd.Flags().StringVarP(&interGroup, "group", "g", "", "Reed group to plan (required)")
	planInteractiveCmd.Flags().StringVar(&interCategory, "category", "denim", "Job category (denim|dyed)")

	_ = planInteractiveCmd.MarkFlagRequired("manifest")
	_ = planInteractiveCmd.MarkFlagRequired("group")
}

func runPlanInteractive(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cat, err := rules.ParseCategory(interCategory)
	if err != nil {
		return err
	}

	in, err := loadPlanning(ctx, interManifestPath)
	if err != nil {
		return err
	}
	defer in.Close()

	groupKey := reedgroup.Normalize(interGroup)
	it := alloc.NewInteractive(groupKey, cat, in.Jobs, in.Machines, alloc.NewSession(), in.Config)
	prompt := bufio.NewScanner(os.Stdin)

	for {
		job := it.Current()
		if job == nil {
			fmt.Printf("group %s: no pending jobs left\n", groupKey)
			break
		}

		fmt.Printf("\njob %s (due %s)", job.ID, dueLabel(job))
		if job.Remark != "" {
			fmt.Printf("  remark: %s", job.Remark)
		}
		if job.WeftShortage {
			fmt.Print("  [weft shortage]")
		}
		fmt.Println()

		cands := it.Candidates()
		if len(cands) == 0 {
			fmt.Println("no candidate machines; leaving job pending")
			break
		}
		for _, c := range cands {
			fmt.Printf("  tier %d  machine %d  %s\n", c.Tier, c.Machine.Number, machineLabel(c.Machine))
		}

		fmt.Print("machine number, s = skip job, q = quit> ")
		if !prompt.Scan() {
			break
		}
		answer := strings.TrimSpace(prompt.Text())

		switch answer {
		case "q":
			return nil
		case "s":
			if err := it.SkipCurrent(); err != nil {
				return err
			}
			continue
		}

		number, err := strconv.Atoi(answer)
		if err != nil {
			fmt.Println("enter a machine number, s, or q")
			continue
		}

		p, err := it.Propose(number)
		if errors.Is(err, alloc.ErrMachineUnavailable) {
			fmt.Printf("machine %d is not available\n", number)
			continue
		}
		if err != nil {
			return err
		}

		decision := alloc.Proceed
		if !p.Clean() {
			printWarnings(p)
			fmt.Print("proceed anyway? y = yes, s = skip job, r = reselect> ")
			if !prompt.Scan() {
				break
			}
			switch strings.TrimSpace(prompt.Text()) {
			case "y":
				decision = alloc.Proceed
			case "s":
				decision = alloc.SkipJob
			default:
				decision = alloc.Reselect
			}
		}

		if err := it.Commit(p, decision); err != nil {
			fmt.Printf("could not commit: %v\n", err)
			continue
		}
		if decision == alloc.Proceed {
			fmt.Printf("job %s -> machine %d\n", p.Job.ID, p.Machine.Number)
		}
	}
	if err := prompt.Err(); err != nil {
		return err
	}

	return saveInteractiveSnapshot(ctx, in)
}

func printWarnings(p alloc.Proposal) {
	if p.NeedsConfirmation {
		if p.Job.Remark != "" {
			fmt.Printf("  warning: remark %q\n", p.Job.Remark)
		}
		if p.Job.WeftShortage {
			fmt.Println("  warning: weft shortage")
		}
	}
	if !p.SelvedgeOK {
		fmt.Printf("  warning: selvedge mismatch (job %q, machine %q)\n",
			p.Job.Selvedge, p.Machine.Selvedge)
	}
	if !p.WeaveOK {
		fmt.Printf("  warning: weave conflict (job %q, machine %q)\n",
			p.Job.Weave, p.Machine.Weave)
	}
}

func dueLabel(j *alloc.Job) string {
	if j.DueDate.IsZero() {
		return "none"
	}
	return j.DueDate.Format("2006-01-02")
}

func machineLabel(m alloc.Machine) string {
	if m.Open {
		return fmt.Sprintf("open, group %s", m.GroupKey)
	}
	if m.HasYardage {
		return fmt.Sprintf("%.1f m left, group %s", m.RemainingYardage, m.GroupKey)
	}
	return "group " + m.GroupKey
}

func saveInteractiveSnapshot(ctx context.Context, in *planningInputs) error {
	runID := "interactive-" + uuid.NewString()
	return saveRunSnapshot(ctx, in.Store, runID, in.Jobs)
}
