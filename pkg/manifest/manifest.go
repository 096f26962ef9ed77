// Package manifest provides loading and validation of planning manifests.
//
// A planning manifest is a YAML or JSON file naming the job and machine
// tables for a planning run, plus optional overrides for the allocation
// settings. It is the one input the plan commands need.
//
// Example manifest (YAML):
//
//	version: "1.0"
//	tables:
//	  jobs: exports/jobs-*.csv
//	  machines: exports/machines-*.csv
//	planning:
//	  threshold_meters: 150
//	  categories: [denim, dyed]
package manifest

import (
	"fmt"

	"github.com/loomworks/loomplan/pkg/rules"
)

// Version is the manifest schema version this build understands.
const Version = "1.0"

// Manifest is a validated planning manifest.
type Manifest struct {
	// Version is the manifest schema version. Must be "1.0".
	Version string `json:"version" yaml:"version"`

	// Tables names the two input tables.
	Tables TablesConfig `json:"tables" yaml:"tables"`

	// Planning carries optional allocation overrides.
	Planning PlanningConfig `json:"planning,omitempty" yaml:"planning,omitempty"`
}

// TablesConfig names the job and machine table sources. Both accept
// doublestar glob patterns; the newest matching file is used.
type TablesConfig struct {
	// Jobs is the job (order backlog) table path or pattern.
	Jobs string `json:"jobs" yaml:"jobs"`

	// Machines is the machine (loom floor) table path or pattern.
	Machines string `json:"machines" yaml:"machines"`
}

// PlanningConfig carries optional allocation overrides.
type PlanningConfig struct {
	// ThresholdMeters overrides the persisted remaining-yardage threshold
	// for this run. Zero means use the stored setting.
	ThresholdMeters float64 `json:"threshold_meters,omitempty" yaml:"threshold_meters,omitempty"`

	// Categories is the category order for automatic runs.
	// Default: [denim, dyed].
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`
}

// ApplyDefaults fills optional fields with their defaults.
func (m *Manifest) ApplyDefaults() {
	if m.Version == "" {
		m.Version = Version
	}
	if len(m.Planning.Categories) == 0 {
		m.Planning.Categories = []string{"denim", "dyed"}
	}
}

// Validate checks the manifest for structural errors. Defaults must have
// been applied first.
func (m *Manifest) Validate() error {
	if m.Version != Version {
		return fmt.Errorf("manifest: unsupported version %q (want %q)", m.Version, Version)
	}
	if m.Tables.Jobs == "" {
		return fmt.Errorf("manifest: tables.jobs is required")
	}
	if m.Tables.Machines == "" {
		return fmt.Errorf("manifest: tables.machines is required")
	}
	if m.Planning.ThresholdMeters < 0 {
		return fmt.Errorf("manifest: planning.threshold_meters must not be negative")
	}
	for _, c := range m.Planning.Categories {
		if _, err := rules.ParseCategory(c); err != nil {
			return fmt.Errorf("manifest: planning.categories: %w", err)
		}
	}
	return nil
}

// CategoryOrder returns the parsed category sequence for automatic runs.
func (m *Manifest) CategoryOrder() []rules.Category {
	out := make([]rules.Category, 0, len(m.Planning.Categories))
	for _, c := range m.Planning.Categories {
		cat, err := rules.ParseCategory(c)
		if err != nil {
			continue
		}
		out = append(out, cat)
	}
	return out
}
