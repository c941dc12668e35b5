package assist

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rbrowning13/IMC-CMS-sub001/internal/domain"
)

func TestExpandFollowup_Table(t *testing.T) {
	countIntents := []string{
		domain.PendingClaimCount,
		domain.PendingClaimCountOpen,
		domain.PendingClaimCountClosed,
		domain.PendingClaimCountBoth,
	}
	listIntents := []string{
		domain.PendingClaimList,
		domain.PendingClaimListOpen,
		domain.PendingClaimListClosed,
		domain.PendingClaimListBoth,
	}

	countWant := map[string]string{
		"open":   "how many open claims do i have?",
		"closed": "how many closed claims do i have?",
		"both":   "how many open and closed claims do i have?",
	}
	listWant := map[string]string{
		"open":   "list open claims",
		"closed": "list closed claims",
		"both":   "list all claims",
	}

	for _, intent := range countIntents {
		for reply, want := range countWant {
			got, consumed := ExpandFollowup(reply, intent)
			assert.True(t, consumed, "intent %s reply %s", intent, reply)
			assert.Equal(t, want, got, "intent %s reply %s", intent, reply)
		}
	}
	for _, intent := range listIntents {
		for reply, want := range listWant {
			got, consumed := ExpandFollowup(reply, intent)
			assert.True(t, consumed, "intent %s reply %s", intent, reply)
			assert.Equal(t, want, got, "intent %s reply %s", intent, reply)
		}
	}
}

func TestExpandFollowup_ReplyNormalization(t *testing.T) {
	got, consumed := ExpandFollowup("  Open  ", domain.PendingClaimCount)
	assert.True(t, consumed)
	assert.Equal(t, "how many open claims do i have?", got)
}

func TestExpandFollowup_NoOp(t *testing.T) {
	tests := []struct {
		name     string
		question string
		intent   string
	}{
		{"no pending intent", "open", ""},
		{"unknown intent token", "open", "claim_export"},
		{"reply outside the vocabulary", "open ones please", domain.PendingClaimCount},
		{"unrelated question", "summarize claim 9", domain.PendingClaimCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, consumed := ExpandFollowup(tt.question, tt.intent)
			assert.False(t, consumed)
			assert.Equal(t, tt.question, got)
		})
	}
}
