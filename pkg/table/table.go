// Package table reads job and machine tables from the plant's file exports
// and adapts them into the typed records the allocation engine works on.
//
// All boundary concerns live here: column-name binding (with a
// case-insensitive fallback), decimal-comma coercion, due-date parsing,
// open-machine detection, and reed-group label normalization. The engine
// never sees a raw cell.
//
// Two formats are supported: CSV (the spreadsheet exports the plant already
// produces) and JSONL (this tool's own export format, so a snapshot can be
// fed back in). Format is chosen by file extension.
package table

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/loomworks/loomplan/pkg/alloc"
)

// Table errors.
var (
	// ErrNoMatch is returned when a glob pattern matches no file.
	ErrNoMatch = errors.New("no file matches pattern")

	// ErrEmptyTable is returned when a table has a header but no rows.
	ErrEmptyTable = errors.New("table has no rows")

	// ErrUnknownFormat is returned for a file extension that is neither
	// CSV nor JSONL.
	ErrUnknownFormat = errors.New("unknown table format")
)

// ColumnError reports a required column missing from a table header.
type ColumnError struct {
	Column string
	Path   string
}

func (e *ColumnError) Error() string {
	if e.Path == "" {
		return "table: missing column " + e.Column
	}
	return "table: " + e.Path + ": missing column " + e.Column
}

// Resolve expands a doublestar glob pattern and returns the newest matching
// file by modification time. A pattern without meta characters is returned
// as-is after an existence check, so plain paths work unchanged.
func Resolve(pattern string) (string, error) {
	if !strings.ContainsAny(pattern, "*?[{") {
		if _, err := os.Stat(pattern); err != nil {
			return "", fmt.Errorf("table: %w", err)
		}
		return pattern, nil
	}

	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return "", fmt.Errorf("table: bad pattern %q: %w", pattern, err)
	}

	newest := ""
	var newestMod int64
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		if mod := info.ModTime().UnixNano(); newest == "" || mod > newestMod {
			newest, newestMod = m, mod
		}
	}
	if newest == "" {
		return "", fmt.Errorf("%w: %s", ErrNoMatch, pattern)
	}
	return newest, nil
}

// LoadJobs resolves the pattern and reads the job table it names.
func LoadJobs(pattern string) ([]*alloc.Job, error) {
	path, err := Resolve(pattern)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("table: %w", err)
	}
	defer f.Close()

	switch ext(path) {
	case ".csv":
		return ReadJobsCSV(f, path)
	case ".jsonl", ".ndjson":
		return ReadJobsJSONL(f, path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// LoadMachines resolves the pattern and reads the machine table it names.
func LoadMachines(pattern string) ([]alloc.Machine, error) {
	path, err := Resolve(pattern)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("table: %w", err)
	}
	defer f.Close()

	switch ext(path) {
	case ".csv":
		return ReadMachinesCSV(f, path)
	case ".jsonl", ".ndjson":
		return ReadMachinesJSONL(f, path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// ApplyRestrictions marks machines whose number appears in the restricted
// set. Both blocked and hidden lists funnel into the same flag: the engine
// treats them identically, the distinction only matters for list management.
func ApplyRestrictions(machines []alloc.Machine, restricted map[int]bool) {
	if len(restricted) == 0 {
		return
	}
	for i := range machines {
		if restricted[machines[i].Number] {
			machines[i].Restricted = true
		}
	}
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
