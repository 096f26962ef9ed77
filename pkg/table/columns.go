package table

import (
	"strconv"
	"strings"
	"time"
)

// binder resolves logical fields to header positions. Exact matches win;
// when none exists a case-insensitive pass runs, so "Machine No" still binds
// a table exported with "MACHINE NO".
type binder struct {
	header []string
}

func newBinder(header []string) *binder {
	cleaned := make([]string, len(header))
	for i, h := range header {
		cleaned[i] = strings.TrimSpace(h)
	}
	return &binder{header: cleaned}
}

// index returns the position of the first header cell matching any of the
// candidate names, or -1 when none does.
func (b *binder) index(names ...string) int {
	for _, name := range names {
		for i, h := range b.header {
			if h == name {
				return i
			}
		}
	}
	for _, name := range names {
		for i, h := range b.header {
			if strings.EqualFold(h, name) {
				return i
			}
		}
	}
	return -1
}

// cell returns the trimmed value at position idx, or "" when the column is
// unbound or the row is short.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseYardage coerces a yardage cell. Decimal commas are accepted and
// thousands separators stripped. The second result is false for empty or
// non-numeric cells.
func parseYardage(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0, false
	}
	// "1.234,5" style: dot as thousands separator, comma as decimal.
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// dueDateLayouts are the formats the plant's exports have been seen using.
var dueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"02.01.2006",
	"2.1.2006",
	"02/01/2006",
}

// parseDueDate parses a due-date cell. Unparseable or empty cells yield the
// zero time, which the allocator orders after every dated job.
func parseDueDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// truthy reports whether a cell marks a flag column as set. The plant's
// sheets use anything from "1" to "VAR" for this.
func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "x", "yes", "true", "evet", "var":
		return true
	}
	return false
}
