package reedgroup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  string
	}{
		{"plain slash form", "67.5/4/194", "67.5/4/194"},
		{"comma decimal", "67,5 / 4 / 194", "67.5/4/194"},
		{"dash separated", "67.5-4-194", "67.5/4/194"},
		{"trailing text ignored", "20/2/120 TARAK", "20/2/120"},
		{"integer decimal tail collapsed", "20.0/2.00/120", "20/2/120"},
		{"more than three tokens truncated", "20/2/120/7", "20/2/120"},
		{"two tokens stay two", "120/2", "120/2"},
		{"single token", "194", "194"},
		{"no numbers falls back to text", "ÖZEL GRUP", "ÖZEL GRUP"},
		{"whitespace only", "   ", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.label))
		})
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal("67,5/4/194", "67.5-4-194"))
	assert.True(t, Equal("20.0/2/120", "20/2/120 GRUBU"))
	assert.False(t, Equal("20/2/120", "20/2/121"))

	// Empty keys never match, including each other.
	assert.False(t, Equal("", ""))
	assert.False(t, Equal("", "20/2/120"))
}
