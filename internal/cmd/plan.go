package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/loomworks/loomplan/internal/observability"
	"github.com/loomworks/loomplan/pkg/alloc"
	"github.com/loomworks/loomplan/pkg/export"
	"github.com/loomworks/loomplan/pkg/planstore"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Run a planning pass",
}

var planAutoCmd = &cobra.Command{
	Use:   "auto",
	Short: "Run the automatic allocator over the whole backlog",
	Long: `Run the automatic allocator: every reed group in the backlog is planned
in turn, denim groups first, then dyed. Jobs carrying a remark or a weft
shortage are skipped for manual review. The run is stored as a snapshot
and the knot list is written to the output destination.

Example:
  loomplan plan auto --manifest plan.yaml
  loomplan plan auto --manifest plan.yaml --output knotlist.csv --format csv`,
	RunE: runPlanAuto,
}

var (
	planManifestPath string
	planOutput       string
	planFormat       string
)

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.AddCommand(planAutoCmd)

	planAutoCmd.Flags().StringVarP(&planManifestPath, "manifest", "m", "", "Path to planning manifest (required)")
	planAutoCmd.Flags().StringVarP(&planOutput, "output", "o", "", "Output path (default stdout)")
	planAutoCmd.Flags().StringVar(&planFormat, "format", "jsonl", "Output format (jsonl|csv)")

	_ = planAutoCmd.MarkFlagRequired("manifest")
}

func runPlanAuto(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	in, err := loadPlanning(ctx, planManifestPath)
	if err != nil {
		observability.CLILogger.Error("failed to load planning inputs", zap.Error(err))
		return err
	}
	defer in.Close()

	sess := alloc.NewSession()
	var run alloc.RunResult
	for _, cat := range in.Manifest.CategoryOrder() {
		for _, key := range alloc.GroupKeys(in.Jobs, cat) {
			run.Groups = append(run.Groups,
				alloc.AutoPlanGroup(key, cat, in.Jobs, in.Machines, sess, in.Config))
		}
	}

	runID := uuid.NewString()
	observability.CLILogger.Info("automatic run complete",
		zap.String("run_id", runID),
		zap.Int("groups", len(run.Groups)),
		zap.Int("assigned", run.Assigned()),
		zap.Int("changed", run.Changed()))

	if err := saveRunSnapshot(ctx, in.Store, runID, in.Jobs); err != nil {
		return err
	}
	if err := writeRunOutput(runID, in.Jobs, in.Machines, run); err != nil {
		return err
	}

	for _, g := range run.Groups {
		if g.Changed() == 0 {
			continue
		}
		fmt.Printf("%-16s %-6s assigned=%d skipped=%d\n",
			g.GroupKey, g.Category, g.Assigned, g.Skipped)
	}
	fmt.Printf("run %s: %d assigned, %d skipped across %d groups\n",
		runID, run.Assigned(), run.Changed()-run.Assigned(), len(run.Groups))
	return nil
}

func saveRunSnapshot(ctx context.Context, store *planstore.Store, runID string, jobs []*alloc.Job) error {
	var rows []planstore.Assignment
	for _, j := range jobs {
		switch j.Disposition {
		case alloc.Assigned:
			rows = append(rows, planstore.Assignment{
				JobID: j.ID, GroupKey: j.GroupKey,
				Category: j.Category.String(), Machine: j.Machine,
			})
		case alloc.Skipped:
			rows = append(rows, planstore.Assignment{
				JobID: j.ID, GroupKey: j.GroupKey,
				Category: j.Category.String(), Skipped: true,
			})
		}
	}
	if len(rows) == 0 {
		return nil
	}
	if err := store.SaveSnapshot(ctx, runID, rows); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func writeRunOutput(runID string, jobs []*alloc.Job, machines []alloc.Machine, run alloc.RunResult) error {
	out, closeOut, err := openOutput(planOutput)
	if err != nil {
		return err
	}
	defer closeOut()

	w, err := newExportWriter(planFormat, out, runID)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	assignments, skips := export.BuildRecords(jobs, machines)
	for i := range assignments {
		if err := w.WriteAssignment(&assignments[i]); err != nil {
			return err
		}
	}
	for i := range skips {
		if err := w.WriteSkip(&skips[i]); err != nil {
			return err
		}
	}
	pending := 0
	for _, j := range jobs {
		if !j.Terminal() {
			pending++
		}
	}
	return w.WriteSummary(&export.SummaryRecord{
		Assigned: run.Assigned(),
		Skipped:  run.Changed() - run.Assigned(),
		Pending:  pending,
		Groups:   len(run.Groups),
	})
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func newExportWriter(format string, out io.Writer, runID string) (export.Writer, error) {
	switch format {
	case "jsonl":
		return export.NewJSONLWriter(out, runID), nil
	case "csv":
		return export.NewCSVWriter(out), nil
	default:
		return nil, fmt.Errorf("unsupported format %q (want jsonl or csv)", format)
	}
}
