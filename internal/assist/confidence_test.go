package assist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreConfidence(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		hadData      bool
		usedFallback bool
		partial      bool
		want         float64
	}{
		{"full answer with data", "Claim 9 has 3 billable items.", true, false, false, 1.0},
		{"partial answer", "You have 14 claims: ...", true, false, true, 0.7},
		{"fallback answer", "Probably three.", true, true, false, 0.6},
		{"neutral answer without data", "No claim found with id 9.", false, false, false, 0.5},
		{"blank text", "", true, false, false, 0.3},
		{"whitespace-only text", "   ", true, false, false, 0.3},
		// Severity ordering: blank beats fallback beats partial.
		{"blank beats fallback", "", true, true, true, 0.3},
		{"fallback beats partial", "partial fallback", true, true, true, 0.6},
		{"partial beats full", "truncated", true, false, true, 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreConfidence(tt.text, tt.hadData, tt.usedFallback, tt.partial)
			assert.Equal(t, tt.want, got)
		})
	}
}
