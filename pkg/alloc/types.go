// Package alloc implements the loom allocation engine: matching a backlog
// of weaving jobs, grouped by reed-group key, to the physical machines that
// can take them.
//
// The engine is deterministic, single-pass and greedy. It never backtracks
// and never raises an error for ambiguous data — incompatible or unparseable
// pairings are refused, not reported. All inputs are already-typed records
// produced by the table adapter; the engine does no column lookup and no I/O.
package alloc

import (
	"time"

	"github.com/loomworks/loomplan/pkg/rules"
)

// Disposition is the allocation state of a job within the current plan.
type Disposition int

const (
	// Pending jobs have not been looked at yet.
	Pending Disposition = iota
	// Assigned jobs carry a committed machine number.
	Assigned
	// Skipped jobs were explicitly passed over; they are terminal and are
	// never re-selected, exactly like assigned jobs.
	Skipped
)

// String returns the lower-case disposition name.
func (d Disposition) String() string {
	switch d {
	case Assigned:
		return "assigned"
	case Skipped:
		return "skipped"
	default:
		return "pending"
	}
}

// Job is one unit of pending production work.
type Job struct {
	// ID is the opaque row identity from the source table.
	ID string
	// GroupKey is the normalized reed-group key (reedgroup.Normalize).
	GroupKey string
	// Category is the job's machine-pool classification.
	Category rules.Category
	// Selvedge is the required edge tooling code; empty means unconstrained.
	Selvedge string
	// Weave is the required weave code; only its first character matters.
	Weave string
	// DueDate orders jobs within a group. Zero means no due date; such jobs
	// sort after every dated job.
	DueDate time.Time
	// Remark is any free-text note attached to the job. In automatic mode a
	// non-empty remark skips the job unconditionally, whatever it says.
	Remark string
	// WeftShortage flags a known yarn-supply deficiency.
	WeftShortage bool

	// Disposition and Machine are mutated only by the allocators or by an
	// explicit manual override.
	Disposition Disposition
	Machine     int
}

// Terminal reports whether the job has been assigned or skipped.
func (j *Job) Terminal() bool {
	return j.Disposition != Pending
}

// Assign commits the job to a machine.
func (j *Job) Assign(machine int) {
	j.Disposition = Assigned
	j.Machine = machine
}

// Skip marks the job as explicitly passed over.
func (j *Job) Skip() {
	j.Disposition = Skipped
	j.Machine = 0
}

// NeedsConfirmation reports whether an operator must acknowledge the job
// before any compatibility check is even evaluated.
func (j *Job) NeedsConfirmation() bool {
	return j.Remark != "" || j.WeftShortage
}

// Machine is one physical loom with its live state.
type Machine struct {
	// Number is the integer identity; it also encodes category eligibility.
	Number int
	// GroupKey is the normalized key of the currently mounted reed group.
	GroupKey string
	// Open means the machine is idle with no current order.
	Open bool
	// RemainingYardage is meters left on the current order. Meaningful only
	// when HasYardage is true and the machine is not open.
	RemainingYardage float64
	// HasYardage distinguishes a genuine zero from an absent value.
	HasYardage bool
	// Selvedge and Weave describe the currently mounted tooling.
	Selvedge string
	Weave    string
	// Experience is a historical reliability signal; higher wins ties.
	Experience int
	// Restricted machines are under maintenance or deliberately hidden.
	// They never appear as candidates and never count in group statistics.
	Restricted bool
}

// WithinThreshold reports whether a busy machine is about to open: its
// remaining yardage is known and at or below the threshold.
func (m Machine) WithinThreshold(thresholdMeters float64) bool {
	return !m.Open && m.HasYardage && m.RemainingYardage <= thresholdMeters
}

// Viable reports whether the machine can receive new work at all within
// this planning pass: it is open, or about to open.
func (m Machine) Viable(thresholdMeters float64) bool {
	return m.Open || m.WithinThreshold(thresholdMeters)
}

// Compatible runs both tooling checks for a job against this machine.
func (m Machine) Compatible(j *Job) bool {
	return rules.SelvedgeCompatible(j.Selvedge, m.Selvedge) &&
		rules.WeaveCompatible(j.Weave, m.Weave)
}
