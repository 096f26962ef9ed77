// Package rules holds the pure business rules of loom allocation:
// which machine numbers a job category may use, and whether a job's
// tooling attributes are acceptable on a machine's current tooling.
//
// Everything here is a pure function over plain values. No I/O, no state.
package rules

import (
	"fmt"
	"strings"
)

// Category classifies jobs and machines into the two disjoint pools the
// plant runs: regular denim production and raw ("dyed with HAM code") work.
type Category int

const (
	// Denim is the regular production category.
	Denim Category = iota
	// Dyed is the raw / HAM-coded category.
	Dyed
)

// String returns the lower-case category name.
func (c Category) String() string {
	if c == Dyed {
		return "dyed"
	}
	return "denim"
}

// MarshalText encodes the category as its lower-case name.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText plus the plant's
// historical aliases ("ham" for dyed/raw work).
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCategory converts a user-supplied category name. "denim" and
// "regular" map to Denim; "dyed", "raw" and "ham" map to Dyed.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "denim", "regular":
		return Denim, nil
	case "dyed", "raw", "ham":
		return Dyed, nil
	default:
		return Denim, fmt.Errorf("unknown category %q (want denim or dyed)", s)
	}
}

// Range is an inclusive machine-number interval.
type Range struct {
	Lo, Hi int
}

// Contains reports whether n falls inside the range.
func (r Range) Contains(n int) bool {
	return n >= r.Lo && n <= r.Hi
}

// Ruleset carries the site's machine-number eligibility data. The numbers
// are plant configuration, not algorithm: a different hall gets a different
// Ruleset, the logic stays the same.
type Ruleset struct {
	// NeverAllowed machines are excluded from every category.
	NeverAllowed map[int]bool
	// DyedRange is the machine-number interval for raw/dyed work.
	DyedRange Range
	// DenimRange is the machine-number interval for regular denim work.
	DenimRange Range
}

// DefaultRuleset returns the plant's fixed eligibility data: the even
// machines 2430–2446 are never allowed, dyed work runs on 2447–2518,
// denim on 2201–2446.
func DefaultRuleset() Ruleset {
	never := make(map[int]bool, 9)
	for n := 2430; n <= 2446; n += 2 {
		never[n] = true
	}
	return Ruleset{
		NeverAllowed: never,
		DyedRange:    Range{Lo: 2447, Hi: 2518},
		DenimRange:   Range{Lo: 2201, Hi: 2446},
	}
}

// IsEligible reports whether a machine number may take work of the given
// category. The never-allowed set wins over both ranges.
func (rs Ruleset) IsEligible(machineNumber int, cat Category) bool {
	if rs.NeverAllowed[machineNumber] {
		return false
	}
	if cat == Dyed {
		return rs.DyedRange.Contains(machineNumber)
	}
	return rs.DenimRange.Contains(machineNumber)
}
