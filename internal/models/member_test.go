package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name           string
		submissionName *string
		ordinal        int
		expected       string
	}{
		{"chosen name wins", strPtr("Popcorn Prophet"), 3, "Popcorn Prophet"},
		{"nil name falls back", nil, 1, "Ballot #1"},
		{"empty name falls back", strPtr(""), 7, "Ballot #7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &PoolMember{SubmissionName: tt.submissionName}
			assert.Equal(t, tt.expected, m.DisplayName(tt.ordinal))
		})
	}
}
