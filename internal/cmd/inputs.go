package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/loomworks/loomplan/internal/observability"
	"github.com/loomworks/loomplan/pkg/alloc"
	"github.com/loomworks/loomplan/pkg/manifest"
	"github.com/loomworks/loomplan/pkg/planstore"
	"github.com/loomworks/loomplan/pkg/rules"
	"github.com/loomworks/loomplan/pkg/table"
)

// planningInputs is everything a planning command needs: the two loaded
// tables with restrictions applied, the engine config, and the open store.
type planningInputs struct {
	Manifest *manifest.Manifest
	Jobs     []*alloc.Job
	Machines []alloc.Machine
	Config   alloc.Config
	Store    *planstore.Store
}

// Close releases the store handle.
func (in *planningInputs) Close() {
	if in.Store != nil {
		_ = in.Store.Close()
	}
}

// loadPlanning loads the manifest, reads both tables, applies the stored
// restriction lists, and resolves the threshold (manifest override first,
// stored setting otherwise).
func loadPlanning(ctx context.Context, manifestPath string) (*planningInputs, error) {
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, err
	}

	jobs, err := table.LoadJobs(m.Tables.Jobs)
	if err != nil {
		return nil, fmt.Errorf("load jobs table: %w", err)
	}
	machines, err := table.LoadMachines(m.Tables.Machines)
	if err != nil {
		return nil, fmt.Errorf("load machines table: %w", err)
	}

	store, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	threshold := m.Planning.ThresholdMeters
	if threshold == 0 {
		threshold, err = store.Threshold(ctx)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
	}

	restricted, err := store.RestrictedSet(ctx)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	table.ApplyRestrictions(machines, restricted)

	observability.CLILogger.Debug("planning inputs loaded",
		zap.String("manifest", manifestPath),
		zap.Int("jobs", len(jobs)),
		zap.Int("machines", len(machines)),
		zap.Int("restricted", len(restricted)),
		zap.Float64("threshold_meters", threshold))

	return &planningInputs{
		Manifest: m,
		Jobs:     jobs,
		Machines: machines,
		Config: alloc.Config{
			Ruleset:         rules.DefaultRuleset(),
			ThresholdMeters: threshold,
		},
		Store: store,
	}, nil
}
