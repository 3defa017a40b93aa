package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nil slice", input: nil, expected: nil},
		{name: "empty slice", input: []string{}, expected: []string{}},
		{name: "trims whitespace", input: []string{"  url ", "ticker  "}, expected: []string{"url", "ticker"}},
		{
			name:     "removes duplicates preserving order",
			input:    []string{"url", "ticker", "url", "news_id"},
			expected: []string{"url", "ticker", "news_id"},
		},
		{name: "removes empty strings", input: []string{"url", "", "  "}, expected: []string{"url"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}
