package assist

import (
	"strings"

	"github.com/rbrowning13/IMC-CMS-sub001/internal/domain"
)

// The follow-up vocabulary is a fixed lookup table, not a parser. Each
// pending-intent family maps the three accepted one-word replies to one
// exact question.
var followupTable = map[string]map[string]string{
	"claim_count": {
		"open":   "how many open claims do i have?",
		"closed": "how many closed claims do i have?",
		"both":   "how many open and closed claims do i have?",
	},
	"claim_list": {
		"open":   "list open claims",
		"closed": "list closed claims",
		"both":   "list all claims",
	},
}

var intentFamilies = map[string]string{
	domain.PendingClaimCount:       "claim_count",
	domain.PendingClaimCountOpen:   "claim_count",
	domain.PendingClaimCountClosed: "claim_count",
	domain.PendingClaimCountBoth:   "claim_count",
	domain.PendingClaimList:        "claim_list",
	domain.PendingClaimListOpen:    "claim_list",
	domain.PendingClaimListClosed:  "claim_list",
	domain.PendingClaimListBoth:    "claim_list",
}

// ExpandFollowup turns a bare open/closed/both reply into the full question
// the pending intent was waiting on. It reports whether the intent was
// consumed; any other reply or intent leaves the question unmodified.
func ExpandFollowup(question, pendingIntent string) (string, bool) {
	if pendingIntent == "" {
		return question, false
	}
	family, ok := intentFamilies[pendingIntent]
	if !ok {
		return question, false
	}
	reply := strings.ToLower(strings.TrimSpace(question))
	expanded, ok := followupTable[family][reply]
	if !ok {
		return question, false
	}
	return expanded, true
}
