package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "denim", Denim.String())
	assert.Equal(t, "dyed", Dyed.String())
}

func TestDefaultRulesetIsEligible(t *testing.T) {
	rs := DefaultRuleset()

	tests := []struct {
		name    string
		machine int
		cat     Category
		want    bool
	}{
		{"never-allowed even machine, dyed", 2432, Dyed, false},
		{"never-allowed even machine, denim", 2432, Denim, false},
		{"dyed range member", 2500, Dyed, true},
		{"dyed range member asked for denim", 2500, Denim, false},
		{"dyed range lower bound", 2447, Dyed, true},
		{"dyed range upper bound", 2518, Dyed, true},
		{"past dyed range", 2519, Dyed, false},
		{"denim range member", 2300, Denim, true},
		{"denim range lower bound", 2201, Denim, true},
		{"denim upper bound odd machine", 2445, Denim, true},
		{"denim machine asked for dyed", 2300, Dyed, false},
		{"below both ranges", 2200, Denim, false},
		{"zero machine number", 0, Denim, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rs.IsEligible(tt.machine, tt.cat))
		})
	}
}

func TestNeverAllowedCoversAllEvens(t *testing.T) {
	rs := DefaultRuleset()
	for n := 2430; n <= 2446; n += 2 {
		assert.False(t, rs.IsEligible(n, Denim), "machine %d", n)
		assert.False(t, rs.IsEligible(n, Dyed), "machine %d", n)
	}
	// Odd neighbors in the denim range stay eligible.
	for n := 2431; n <= 2445; n += 2 {
		assert.True(t, rs.IsEligible(n, Denim), "machine %d", n)
	}
}

func TestCustomRuleset(t *testing.T) {
	rs := Ruleset{
		NeverAllowed: map[int]bool{5: true},
		DyedRange:    Range{Lo: 10, Hi: 20},
		DenimRange:   Range{Lo: 1, Hi: 9},
	}
	assert.True(t, rs.IsEligible(3, Denim))
	assert.False(t, rs.IsEligible(5, Denim))
	assert.True(t, rs.IsEligible(15, Dyed))
	assert.False(t, rs.IsEligible(15, Denim))
}
