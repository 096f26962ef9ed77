// Package reedgroup normalizes free-text reed-group labels into canonical
// keys so that jobs and machines can be matched by tooling identity.
//
// A reed group label arrives from spreadsheet exports in many shapes:
// "67.5 / 4 / 194", "67,5-4-194 TARAK", "120/2". The canonical key keeps
// the first three numeric tokens, normalizes decimal commas to dots, strips
// redundant ".0" tails, and joins the tokens with "/".
package reedgroup

import (
	"regexp"
	"strconv"
	"strings"
)

// MaxTokens is the number of numeric tokens a canonical key keeps.
const MaxTokens = 3

var (
	numberRe  = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
	intTailRe = regexp.MustCompile(`^\d+\.0+$`)
)

// Normalize converts a reed-group label to its canonical key.
//
// Rules:
//   - Up to the first three numeric tokens are extracted, in order.
//   - Comma decimal separators become dots ("67,5" → "67.5").
//   - Integer-valued decimals lose their fractional tail ("4.0" → "4").
//   - Tokens are joined with "/".
//   - If the label contains no numeric token, the trimmed label itself is
//     returned, so purely symbolic groups still compare by text.
//   - Empty or whitespace-only input yields "", a key that matches nothing.
func Normalize(label string) string {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return ""
	}

	tokens := numberRe.FindAllString(trimmed, -1)
	if len(tokens) == 0 {
		return trimmed
	}
	if len(tokens) > MaxTokens {
		tokens = tokens[:MaxTokens]
	}

	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.ReplaceAll(tok, ",", ".")
		if intTailRe.MatchString(tok) {
			tok = tok[:strings.IndexByte(tok, '.')]
		}
		out = append(out, tok)
	}
	return strings.Join(out, "/")
}

// LeadingNumber returns the first numeric token of a label as a float,
// for ordering group lists the way operators read them ("20/2/120" sorts
// by 20). The second result is false when the label has no numeric token.
func LeadingNumber(label string) (float64, bool) {
	tok := numberRe.FindString(label)
	if tok == "" {
		return 0, false
	}
	tok = strings.ReplaceAll(tok, ",", ".")
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Equal reports whether two labels normalize to the same non-empty key.
// Two empty keys never match: an absent group is not a group.
func Equal(a, b string) bool {
	ka, kb := Normalize(a), Normalize(b)
	if ka == "" || kb == "" {
		return false
	}
	return ka == kb
}
