package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loomworks/loomplan/pkg/export"
	"github.com/loomworks/loomplan/pkg/rules"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Re-emit a stored run snapshot",
	Long: `Write a stored planning run back out as a knot list. Without --run the
stored runs are listed instead.

Example:
  loomplan export
  loomplan export --run 4f6b… --format csv --output knotlist.csv`,
	RunE: runExport,
}

var (
	exportRunID  string
	exportOutput string
	exportFormat string
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportRunID, "run", "", "Run id to export (omit to list runs)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output path (default stdout)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format (jsonl|csv)")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if exportRunID == "" {
		runs, err := store.ListRuns(ctx)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("no stored runs")
			return nil
		}
		for _, r := range runs {
			fmt.Printf("%s  %s  assigned=%d skipped=%d\n",
				r.RunID, r.CreatedAt.Format("2006-01-02 15:04"), r.Assigned, r.Skipped)
		}
		return nil
	}

	rows, err := store.LoadSnapshot(ctx, exportRunID)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(exportOutput)
	if err != nil {
		return err
	}
	defer closeOut()

	w, err := newExportWriter(exportFormat, out, exportRunID)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	assigned, skipped := 0, 0
	for _, row := range rows {
		cat, err := rules.ParseCategory(row.Category)
		if err != nil {
			cat = rules.Denim
		}
		if row.Skipped {
			skipped++
			if err := w.WriteSkip(&export.SkipRecord{
				JobID: row.JobID, GroupKey: row.GroupKey, Category: cat,
			}); err != nil {
				return err
			}
			continue
		}
		assigned++
		if err := w.WriteAssignment(&export.AssignmentRecord{
			JobID: row.JobID, GroupKey: row.GroupKey, Category: cat, Machine: row.Machine,
		}); err != nil {
			return err
		}
	}
	return w.WriteSummary(&export.SummaryRecord{Assigned: assigned, Skipped: skipped})
}
