package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeArea(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Bedroom Wall", "bedroom wall"},
		{"collapses whitespace", "Bedroom   Wall", "bedroom wall"},
		{"trims", "  Kitchen  ", "kitchen"},
		{"empty is sentinel key", "", "not_available"},
		{"sentinel is sentinel key", "Not Available", "not_available"},
		{"sentinel any case", "not available", "not_available"},
		{"punctuation kept", "Bedroom Wall (North)", "bedroom wall (north)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeArea(tt.in))
		})
	}
}

func TestNormalizeForMatch(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase and punct to space", "Damp, visible!", "damp visible"},
		{"marker tokens survive as words", "moisture_signs=no", "moisture_signs no"},
		{"sentinel reduces to empty", "Not Available", ""},
		{"blank reduces to empty", "   ", ""},
		{"whitespace collapsed", "a  \t b", "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeForMatch(tt.in))
		})
	}
}

func TestRatio(t *testing.T) {
	// Reference values from the classic sequence-matching ratio:
	// 2 * matched / (len(a) + len(b)).
	assert.InDelta(t, 0.75, ratio("abcd", "abce"), 1e-9)
	assert.InDelta(t, 2.0*3.0/9.0, ratio("pear", "peach"), 1e-9)
	assert.InDelta(t, 22.0/29.0, ratio("new york mets", "new york yankees"), 1e-9)
	assert.Equal(t, 1.0, ratio("same", "same"))
	assert.Equal(t, 0.0, ratio("abc", "xyz"))
}

func TestSimilarEmptySignatures(t *testing.T) {
	assert.Equal(t, 1.0, similar("", ""))
	assert.Equal(t, 0.0, similar("", "damp"))
	assert.Equal(t, 0.0, similar("damp", ""))
}
