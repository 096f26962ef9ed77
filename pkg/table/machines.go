package table

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/loomworks/loomplan/pkg/alloc"
	"github.com/loomworks/loomplan/pkg/reedgroup"
)

// Machine table column names.
var (
	machColNumber     = []string{"machine", "machine_no", "tezgah"}
	machColGroup      = []string{"reed_group", "tarak"}
	machColRemaining  = []string{"remaining_yards", "kalan metre"}
	machColSelvedge   = []string{"selvedge", "kenar"}
	machColWeave      = []string{"weave", "orgu"}
	machColExperience = []string{"experience", "tecrube"}
	machColStatus     = []string{"status", "durum"}
)

// openStatus is the marker the floor sheet carries for a loom with no order
// mounted. Code 94 is the plant's historical "empty" status code.
func openStatus(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "94" || strings.Contains(s, "no order")
}

// ReadMachinesCSV reads a machine table from CSV. The machine-number and
// reed-group columns are required. A machine is open when its status cell
// carries the no-order marker or its remaining-yardage cell is empty or
// non-numeric.
func ReadMachinesCSV(r io.Reader, path string) ([]alloc.Machine, error) {
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
	numIdx := b.index(machColNumber...)
	if numIdx < 0 {
		return nil, &ColumnError{Column: machColNumber[0], Path: path}
	}
	groupIdx := b.index(machColGroup...)
	if groupIdx < 0 {
		return nil, &ColumnError{Column: machColGroup[0], Path: path}
	}
	remIdx := b.index(machColRemaining...)
	selIdx := b.index(machColSelvedge...)
	weaveIdx := b.index(machColWeave...)
	expIdx := b.index(machColExperience...)
	statusIdx := b.index(machColStatus...)

	var machines []alloc.Machine
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("table: %s: %w", path, err)
		}

		number, err := strconv.Atoi(cell(row, numIdx))
		if err != nil {
			return nil, fmt.Errorf("table: %s line %d: bad machine number %q", path, line, cell(row, numIdx))
		}

		m := alloc.Machine{
			Number:   number,
			GroupKey: reedgroup.Normalize(cell(row, groupIdx)),
			Selvedge: cell(row, selIdx),
			Weave:    cell(row, weaveIdx),
		}
		if exp := cell(row, expIdx); exp != "" {
			if n, err := strconv.Atoi(exp); err == nil {
				m.Experience = n
			}
		}
		if yards, ok := parseYardage(cell(row, remIdx)); ok {
			m.RemainingYardage = yards
			m.HasYardage = true
		} else {
			m.Open = true
		}
		if openStatus(cell(row, statusIdx)) {
			m.Open = true
			m.HasYardage = false
			m.RemainingYardage = 0
		}
		machines = append(machines, m)
	}
	if len(machines) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyTable, path)
	}
	return machines, nil
}

// machineRecord is the JSONL shape of one loom row.
type machineRecord struct {
	Number     int      `json:"machine"`
	ReedGroup  string   `json:"reed_group"`
	Remaining  *float64 `json:"remaining_yards,omitempty"`
	Selvedge   string   `json:"selvedge,omitempty"`
	Weave      string   `json:"weave,omitempty"`
	Experience int      `json:"experience,omitempty"`
	Status     string   `json:"status,omitempty"`
}

// ReadMachinesJSONL reads a machine table as newline-delimited JSON. A null
// or absent remaining_yards marks the loom open.
func ReadMachinesJSONL(r io.Reader, path string) ([]alloc.Machine, error) {
	var machines []alloc.Machine
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec machineRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("table: %s line %d: %w", path, line, err)
		}
		if rec.Number == 0 {
			return nil, fmt.Errorf("table: %s line %d: missing machine number", path, line)
		}
		m := alloc.Machine{
			Number:     rec.Number,
			GroupKey:   reedgroup.Normalize(rec.ReedGroup),
			Selvedge:   rec.Selvedge,
			Weave:      rec.Weave,
			Experience: rec.Experience,
		}
		if rec.Remaining != nil {
			m.RemainingYardage = *rec.Remaining
			m.HasYardage = true
		} else {
			m.Open = true
		}
		if openStatus(rec.Status) {
			m.Open = true
			m.HasYardage = false
			m.RemainingYardage = 0
		}
		machines = append(machines, m)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("table: %s: %w", path, err)
	}
	if len(machines) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyTable, path)
	}
	return machines, nil
}
