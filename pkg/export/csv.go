package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"sync"
)

// csvHeader is the knot-list column layout the floor is used to reading.
var csvHeader = []string{
	"machine", "reed_group", "category", "job_id",
	"job_selvedge", "machine_selvedge", "selvedge_mismatch",
	"weave", "remaining_yards", "due_date", "remark",
}

// CSVWriter writes the knot list as CSV. Skip records get their own rows
// with an empty machine column so the printed list shows the full backlog;
// the summary is not part of the list and is dropped.
type CSVWriter struct {
	cw *csv.Writer
	mu sync.Mutex

	closed      bool
	wroteHeader bool
}

// NewCSVWriter creates a CSV knot-list writer. The header row is written
// lazily with the first record.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{cw: csv.NewWriter(w)}
}

// WriteAssignment emits one knot-list row.
func (cw *CSVWriter) WriteAssignment(rec *AssignmentRecord) error {
	yards := ""
	if rec.RemainingYards != nil {
		yards = strconv.FormatFloat(*rec.RemainingYards, 'f', -1, 64)
	}
	mismatch := ""
	if rec.SelvedgeMismatch {
		mismatch = "x"
	}
	return cw.writeRow([]string{
		strconv.Itoa(rec.Machine), rec.GroupKey, rec.Category.String(), rec.JobID,
		rec.JobSelvedge, rec.MachineSelvedge, mismatch,
		rec.Weave, yards, rec.DueDate, rec.Remark,
	})
}

// WriteSkip emits a row with no machine for an unplaced job.
func (cw *CSVWriter) WriteSkip(rec *SkipRecord) error {
	remark := rec.Remark
	if rec.WeftShortage {
		if remark != "" {
			remark += "; "
		}
		remark += "weft shortage"
	}
	return cw.writeRow([]string{
		"", rec.GroupKey, rec.Category.String(), rec.JobID,
		"", "", "", "", "", "", remark,
	})
}

// WriteSummary is a no-op for CSV output.
func (cw *CSVWriter) WriteSummary(_ *SummaryRecord) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	if cw.closed {
		return ErrWriterClosed
	}
	return nil
}

// Close flushes buffered rows.
func (cw *CSVWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	if cw.closed {
		return nil
	}
	cw.closed = true
	cw.cw.Flush()
	if err := cw.cw.Error(); err != nil {
		return &WriteError{Op: "flush", Err: err}
	}
	return nil
}

func (cw *CSVWriter) writeRow(row []string) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.closed {
		return ErrWriterClosed
	}
	if !cw.wroteHeader {
		if err := cw.cw.Write(csvHeader); err != nil {
			return &WriteError{Op: "write_header", Err: err}
		}
		cw.wroteHeader = true
	}
	if err := cw.cw.Write(row); err != nil {
		return &WriteError{Op: "write_row", Err: err}
	}
	return nil
}

// Compile-time check that CSVWriter implements Writer.
var _ Writer = (*CSVWriter)(nil)
