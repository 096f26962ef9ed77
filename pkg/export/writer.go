package export

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Writer outputs planning records.
//
// Implementations must be safe for concurrent use from multiple goroutines.
type Writer interface {
	// WriteAssignment emits one committed pairing.
	WriteAssignment(rec *AssignmentRecord) error

	// WriteSkip emits one unplaced job.
	WriteSkip(rec *SkipRecord) error

	// WriteSummary emits the run summary.
	WriteSummary(rec *SummaryRecord) error

	// Close flushes any buffered output and releases resources.
	Close() error
}

// JSONLWriter writes records as newline-delimited JSON to an io.Writer.
//
// Writes are serialized with a mutex so lines never interleave.
type JSONLWriter struct {
	w     io.Writer
	runID string
	mu    sync.Mutex

	closed bool
}

// NewJSONLWriter creates a JSONL writer. The run id is stamped into every
// envelope for correlation with the stored snapshot.
func NewJSONLWriter(w io.Writer, runID string) *JSONLWriter {
	return &JSONLWriter{w: w, runID: runID}
}

// WriteAssignment emits one committed pairing.
func (jw *JSONLWriter) WriteAssignment(rec *AssignmentRecord) error {
	return jw.writeRecord(TypeAssignment, rec)
}

// WriteSkip emits one unplaced job.
func (jw *JSONLWriter) WriteSkip(rec *SkipRecord) error {
	return jw.writeRecord(TypeSkip, rec)
}

// WriteSummary emits the run summary.
func (jw *JSONLWriter) WriteSummary(rec *SummaryRecord) error {
	return jw.writeRecord(TypeSummary, rec)
}

// Close marks the writer as closed. The underlying writer is not closed;
// that stays with the caller.
func (jw *JSONLWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()
	jw.closed = true
	return nil
}

func (jw *JSONLWriter) writeRecord(recordType string, data any) error {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return &WriteError{Op: "marshal_data", Err: err}
	}

	jw.mu.Lock()
	defer jw.mu.Unlock()

	if jw.closed {
		return ErrWriterClosed
	}

	record := Record{
		Type:  recordType,
		TS:    time.Now().UTC(),
		RunID: jw.runID,
		Data:  dataBytes,
	}
	recordBytes, err := json.Marshal(record)
	if err != nil {
		return &WriteError{Op: "marshal_record", Err: err}
	}

	recordBytes = append(recordBytes, '\n')
	if err := writeAll(jw.w, recordBytes); err != nil {
		return &WriteError{Op: "write", Err: err}
	}
	return nil
}

// writeAll writes all bytes to w, handling short writes. io.Writer.Write
// may return n < len(p) with a nil error, which would truncate JSONL lines.
func writeAll(w io.Writer, p []byte) error {
	for len(p) > 0 {
		n, err := w.Write(p)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		p = p[n:]
	}
	return nil
}

// Compile-time check that JSONLWriter implements Writer.
var _ Writer = (*JSONLWriter)(nil)
