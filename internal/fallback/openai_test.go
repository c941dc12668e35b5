package fallback

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbrowning13/IMC-CMS-sub001/internal/domain"
)

func testSources() []domain.Source {
	return []domain.Source{
		{ID: "claim:9", Label: "Claim 9", Text: "Open claim, lower back strain."},
		{ID: "report:31", Label: "Report 31", Text: "Cleared for light duty."},
	}
}

func TestExtractCitedIDs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "single citation",
			text: "The patient is cleared for light duty [report:31].",
			want: []string{"report:31"},
		},
		{
			name: "order of first appearance",
			text: "Per [report:31], and the claim itself [claim:9], also [report:31] again.",
			want: []string{"report:31", "claim:9"},
		},
		{
			name: "ids outside the evidence set are dropped",
			text: "See [report:31] and [invoice:999].",
			want: []string{"report:31"},
		},
		{
			name: "no citations",
			text: "The evidence does not cover that question.",
			want: nil,
		},
		{
			name: "malformed brackets ignored",
			text: "See [report 31] and [REPORT:31].",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractCitedIDs(tt.text, testSources())
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt("is the patient back at work?", testSources())

	assert.Contains(t, prompt, "[claim:9] Claim 9: Open claim, lower back strain.")
	assert.Contains(t, prompt, "[report:31] Report 31: Cleared for light duty.")
	assert.Contains(t, prompt, "Question: is the patient back at work?")
}

func TestBuildPrompt_NoSources(t *testing.T) {
	prompt := buildPrompt("anything?", nil)
	assert.Contains(t, prompt, "(none)")
}

func TestNewOpenAIAnswerer(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	_, err := NewOpenAIAnswerer(domain.FallbackConfig{}, logger)
	assert.Error(t, err, "missing API key must be rejected")

	a, err := NewOpenAIAnswerer(domain.FallbackConfig{
		APIKey:  "test-key",
		Timeout: 10 * time.Second,
	}, logger)
	require.NoError(t, err)
	assert.NotEmpty(t, a.model)
	assert.Equal(t, 500, a.maxTokens)
}
