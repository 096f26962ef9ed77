// Package export emits planning results as machine-readable records: a
// JSONL stream with typed envelopes, and a CSV knot list in the layout the
// weaving floor already reads.
package export

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/loomworks/loomplan/pkg/alloc"
	"github.com/loomworks/loomplan/pkg/rules"
)

// Record type constants define the envelope types for JSONL output.
const (
	// TypeAssignment identifies committed job-to-machine pairings.
	TypeAssignment = "loomplan.assignment.v1"

	// TypeSkip identifies jobs left unplaced.
	TypeSkip = "loomplan.skip.v1"

	// TypeSummary identifies the final run summary.
	TypeSummary = "loomplan.summary.v1"
)

// Record is the envelope for all JSONL output. Each line carries one
// record with a type-specific payload in Data.
type Record struct {
	// Type identifies the record type (e.g., "loomplan.assignment.v1").
	Type string `json:"type"`

	// TS is the timestamp when the record was created.
	TS time.Time `json:"ts"`

	// RunID is the correlation ID of the planning run.
	RunID string `json:"run_id"`

	// Data contains the type-specific payload as raw JSON.
	Data json.RawMessage `json:"data"`
}

// AssignmentRecord is one row of the knot list: a job committed to a loom,
// with the tooling attributes the knotting crew checks before tying in.
type AssignmentRecord struct {
	JobID    string         `json:"job_id"`
	GroupKey string         `json:"group_key"`
	Category rules.Category `json:"category"`
	Machine  int            `json:"machine"`

	// JobSelvedge and MachineSelvedge are both carried so a tolerated
	// mismatch is visible on the printed list.
	JobSelvedge      string `json:"job_selvedge,omitempty"`
	MachineSelvedge  string `json:"machine_selvedge,omitempty"`
	SelvedgeMismatch bool   `json:"selvedge_mismatch,omitempty"`

	Weave          string   `json:"weave,omitempty"`
	RemainingYards *float64 `json:"remaining_yards,omitempty"`
	DueDate        string   `json:"due_date,omitempty"`
	Remark         string   `json:"remark,omitempty"`
}

// SkipRecord is a job the run could not or would not place.
type SkipRecord struct {
	JobID        string         `json:"job_id"`
	GroupKey     string         `json:"group_key"`
	Category     rules.Category `json:"category"`
	Remark       string         `json:"remark,omitempty"`
	WeftShortage bool           `json:"weft_shortage,omitempty"`
}

// SummaryRecord is the aggregate outcome of a run.
type SummaryRecord struct {
	Assigned int `json:"assigned"`
	Skipped  int `json:"skipped"`
	Pending  int `json:"pending"`
	Groups   int `json:"groups"`
}

// BuildRecords converts a planned job set into assignment and skip records.
// Machine attributes are joined in so each knot-list row is self-contained.
func BuildRecords(jobs []*alloc.Job, machines []alloc.Machine) ([]AssignmentRecord, []SkipRecord) {
	byNumber := make(map[int]alloc.Machine, len(machines))
	for _, m := range machines {
		byNumber[m.Number] = m
	}

	var assigned []AssignmentRecord
	var skipped []SkipRecord
	for _, j := range jobs {
		switch j.Disposition {
		case alloc.Assigned:
			rec := AssignmentRecord{
				JobID:       j.ID,
				GroupKey:    j.GroupKey,
				Category:    j.Category,
				Machine:     j.Machine,
				JobSelvedge: j.Selvedge,
				Weave:       j.Weave,
				Remark:      j.Remark,
			}
			if !j.DueDate.IsZero() {
				rec.DueDate = j.DueDate.Format("2006-01-02")
			}
			if m, ok := byNumber[j.Machine]; ok {
				rec.MachineSelvedge = m.Selvedge
				rec.SelvedgeMismatch = j.Selvedge != "" && m.Selvedge != "" && j.Selvedge != m.Selvedge
				if m.HasYardage {
					yards := m.RemainingYardage
					rec.RemainingYards = &yards
				}
			}
			assigned = append(assigned, rec)
		case alloc.Skipped:
			skipped = append(skipped, SkipRecord{
				JobID:        j.ID,
				GroupKey:     j.GroupKey,
				Category:     j.Category,
				Remark:       j.Remark,
				WeftShortage: j.WeftShortage,
			})
		}
	}
	return assigned, skipped
}

// Writer errors.
var (
	// ErrWriterClosed is returned when writing to a closed writer.
	ErrWriterClosed = errors.New("writer is closed")
)

// WriteError wraps errors that occur during write operations.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return "export: " + e.Op + ": " + e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
