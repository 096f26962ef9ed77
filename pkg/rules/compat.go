package rules

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// toothTolerance is the maximum tooth-count difference two selvedge
// toolings may have and still run without a retool.
const toothTolerance = 2

// tolerantTeeth are tooth counts that interchange freely with each other
// regardless of the numeric difference.
var tolerantTeeth = map[int]bool{8: true, 10: true, 18: true}

var firstIntRe = regexp.MustCompile(`\d+`)

// SelvedgeTeeth extracts the leading tooth count from a selvedge code like
// "10 DİŞ". Returns false when the text carries no parseable integer.
func SelvedgeTeeth(code string) (int, bool) {
	s := strings.TrimSpace(code)
	if s == "" {
		return 0, false
	}
	m := firstIntRe.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SelvedgeCompatible decides whether a job's selvedge tooling can run on a
// machine's currently mounted selvedge tooling.
//
// An empty value on either side means "no constraint" and always passes.
// Identical strings pass. Otherwise both tooth counts must parse — if
// either does not, the pair is rejected: ambiguous tooling must not be
// assigned silently. Parsed counts pass when both belong to the tolerant
// set {8, 10, 18}, or when they differ by at most two teeth.
func SelvedgeCompatible(jobSelvedge, machineSelvedge string) bool {
	job := strings.TrimSpace(jobSelvedge)
	machine := strings.TrimSpace(machineSelvedge)

	if job == "" || machine == "" {
		return true
	}
	if job == machine {
		return true
	}

	jt, jok := SelvedgeTeeth(job)
	mt, mok := SelvedgeTeeth(machine)
	if !jok || !mok {
		return false
	}

	if tolerantTeeth[jt] && tolerantTeeth[mt] {
		return true
	}
	diff := jt - mt
	if diff < 0 {
		diff = -diff
	}
	return diff <= toothTolerance
}

// WeavePrefix returns the upper-cased first character of a weave code,
// or "" when the code is empty.
func WeavePrefix(code string) string {
	s := strings.TrimSpace(code)
	if s == "" {
		return ""
	}
	r := []rune(s)[0]
	return string(unicode.ToUpper(r))
}

// WeaveCompatible decides whether a job's weave family can follow the
// machine's current weave family. The only known physical incompatibility
// is between the '3' and 'K' families, in either direction; every other
// pairing is accepted, as is any side with no weave information.
func WeaveCompatible(jobWeave, machineWeave string) bool {
	jp := WeavePrefix(jobWeave)
	mp := WeavePrefix(machineWeave)
	if jp == "" || mp == "" {
		return true
	}
	return !((jp == "3" && mp == "K") || (jp == "K" && mp == "3"))
}
