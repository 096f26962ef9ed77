package table

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/loomworks/loomplan/pkg/alloc"
	"github.com/loomworks/loomplan/pkg/reedgroup"
	"github.com/loomworks/loomplan/pkg/rules"
)

// Job table column names, canonical first, then the names seen in the
// plant's own exports.
var (
	jobColID       = []string{"id", "order_no", "siparis no"}
	jobColGroup    = []string{"reed_group", "tarak"}
	jobColCategory = []string{"category", "tip"}
	jobColSelvedge = []string{"selvedge", "kenar"}
	jobColWeave    = []string{"weave", "orgu"}
	jobColDue      = []string{"due_date", "termin"}
	jobColRemark   = []string{"remark", "aciklama"}
	jobColShortage = []string{"weft_shortage", "atki eksik"}
)

// ReadJobsCSV reads a job table from CSV. The first row is the header; the
// reed-group column is required, everything else is optional. Rows with an
// empty reed group are kept (the allocator never visits them) so row counts
// stay comparable to the source sheet.
func ReadJobsCSV(r io.Reader, path string) ([]*alloc.Job, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: %s", ErrEmptyTable, path)
	}
	if err != nil {
		return nil, fmt.Errorf("table: %s: %w", path, err)
	}

	b := newBinder(header)
	groupIdx := b.index(jobColGroup...)
	if groupIdx < 0 {
		return nil, &ColumnError{Column: jobColGroup[0], Path: path}
	}
	idIdx := b.index(jobColID...)
	catIdx := b.index(jobColCategory...)
	selIdx := b.index(jobColSelvedge...)
	weaveIdx := b.index(jobColWeave...)
	dueIdx := b.index(jobColDue...)
	remarkIdx := b.index(jobColRemark...)
	shortIdx := b.index(jobColShortage...)

	var jobs []*alloc.Job
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("table: %s: %w", path, err)
		}

		cat := rules.Denim
		if s := cell(row, catIdx); s != "" {
			cat, err = rules.ParseCategory(s)
			if err != nil {
				return nil, fmt.Errorf("table: %s line %d: %w", path, line, err)
			}
		}

		id := cell(row, idIdx)
		if id == "" {
			id = "row-" + strconv.Itoa(line)
		}

		jobs = append(jobs, &alloc.Job{
			ID:           id,
			GroupKey:     reedgroup.Normalize(cell(row, groupIdx)),
			Category:     cat,
			Selvedge:     cell(row, selIdx),
			Weave:        cell(row, weaveIdx),
			DueDate:      parseDueDate(cell(row, dueIdx)),
			Remark:       cell(row, remarkIdx),
			WeftShortage: truthy(cell(row, shortIdx)),
		})
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyTable, path)
	}
	return jobs, nil
}

// jobRecord is the JSONL shape, mirroring the export format so a written
// snapshot can be read back.
type jobRecord struct {
	ID           string         `json:"id"`
	ReedGroup    string         `json:"reed_group"`
	Category     rules.Category `json:"category"`
	Selvedge     string         `json:"selvedge,omitempty"`
	Weave        string         `json:"weave,omitempty"`
	DueDate      string         `json:"due_date,omitempty"`
	Remark       string         `json:"remark,omitempty"`
	WeftShortage bool           `json:"weft_shortage,omitempty"`
}

// ReadJobsJSONL reads a job table as newline-delimited JSON, one job per
// line. Blank lines are skipped.
func ReadJobsJSONL(r io.Reader, path string) ([]*alloc.Job, error) {
	var jobs []*alloc.Job
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec jobRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("table: %s line %d: %w", path, line, err)
		}
		id := rec.ID
		if id == "" {
			id = "row-" + strconv.Itoa(line)
		}
		jobs = append(jobs, &alloc.Job{
			ID:           id,
			GroupKey:     reedgroup.Normalize(rec.ReedGroup),
			Category:     rec.Category,
			Selvedge:     rec.Selvedge,
			Weave:        rec.Weave,
			DueDate:      parseDueDate(rec.DueDate),
			Remark:       rec.Remark,
			WeftShortage: rec.WeftShortage,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("table: %s: %w", path, err)
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyTable, path)
	}
	return jobs, nil
}
