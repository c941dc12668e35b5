package assist

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rbrowning13/IMC-CMS-sub001/internal/domain"
)

var (
	countingRe   = regexp.MustCompile(`(?i)\bhow\s+many\b`)
	billableRe   = regexp.MustCompile(`(?i)\bbillables?\b|\bbillable\s+items?\b`)
	explicitIDRe = regexp.MustCompile(`(?i)\b(claim|invoice)\s+#?\d+\b`)
	invoiceRefRe = regexp.MustCompile(`(?i)\binvoice\b`)
	claimRefRe   = regexp.MustCompile(`(?i)\bclaim\b`)
)

// RewriteQuery disambiguates a billables-counting question against the page
// context by embedding the concrete id. It only fires when the context
// carries a claim or invoice id AND the question combines a counting phrase
// with a billable reference scoped to the current page; anything less keeps
// the question untouched, since a wrong rewrite changes the answer. The
// rewrite is idempotent: an explicitly-scoped question passes through.
func RewriteQuery(question string, pctx domain.Context) string {
	claimID, hasClaim := pctx.ClaimID()
	invoiceID, hasInvoice := pctx.InvoiceID()
	if !hasClaim && !hasInvoice {
		return question
	}
	if !countingRe.MatchString(question) || !billableRe.MatchString(question) {
		return question
	}
	// Already carries a concrete id: nothing ambiguous left.
	if explicitIDRe.MatchString(question) {
		return question
	}

	mentionsInvoice := invoiceRefRe.MatchString(question)
	mentionsClaim := claimRefRe.MatchString(question)

	switch {
	case mentionsClaim && hasClaim:
		return fmt.Sprintf("How many billable items are on claim %d?", claimID)
	case mentionsInvoice && hasInvoice:
		return fmt.Sprintf("How many billable items are on invoice %d?", invoiceID)
	}
	return question
}

// ExtractClaimRef pulls an explicit "claim N" reference out of a question.
func ExtractClaimRef(question string) (int64, bool) {
	m := claimNumRe.FindStringSubmatch(question)
	if m == nil {
		return 0, false
	}
	n, ok := asInt64(strings.TrimPrefix(m[1], "#"))
	return n, ok
}

var claimNumRe = regexp.MustCompile(`(?i)\bclaim\s+(#?\d+)\b`)
