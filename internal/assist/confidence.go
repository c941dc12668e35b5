package assist

import (
	"math"
	"strings"
)

// ScoreConfidence collapses heterogeneous answer-quality signals into one
// comparable score. The branch order is a severity ranking — missing text
// beats fallback beats partial beats full — and must not be reordered.
func ScoreConfidence(text string, hadData, usedFallback, partial bool) float64 {
	var score float64
	switch {
	case strings.TrimSpace(text) == "":
		score = 0.3
	case usedFallback:
		score = 0.6
	case partial:
		score = 0.7
	case hadData:
		score = 1.0
	default:
		score = 0.5
	}
	return math.Round(score*100) / 100
}
