package assist

import (
	"context"
	"regexp"
	"strings"

	"github.com/rbrowning13/IMC-CMS-sub001/internal/domain"
)

// Routing patterns. Deliberately narrow: a question that matches none of
// them goes to the probabilistic fallback instead of being forced into the
// wrong resolver.
var (
	claimCountRe = regexp.MustCompile(`(?i)\bhow\s+many\b.*\bclaims\b`)
	claimListRe  = regexp.MustCompile(`(?i)\b(list|show)\b.*\bclaims\b`)
	workStatusRe = regexp.MustCompile(`(?i)\bwork\s+status\b`)
	billingRe    = regexp.MustCompile(`(?i)\boutstanding\b|\bunpaid\b|\bowed?\b|\bbilling\b`)
	summaryRe    = regexp.MustCompile(`(?i)\bsummar(y|ize)\b|\btell\s+me\s+about\b|\boverview\b`)
	bothScopeRe  = regexp.MustCompile(`(?i)\bopen\s+and\s+closed\b|\ball\b|\bboth\b|\btotal\b`)
	openScopeRe  = regexp.MustCompile(`(?i)\bopen\b`)
	closedRe     = regexp.MustCompile(`(?i)\bclosed\b`)
)

// route picks and runs the deterministic resolver for a question, if any
// applies. The second return reports whether a resolver matched.
func (e *Engine) route(ctx context.Context, question string, pctx domain.Context) (*Resolution, bool, error) {
	claimID := claimScopeID(question, pctx)

	switch {
	case claimListRe.MatchString(question):
		res, err := e.resolvers.ClaimList(ctx, claimScope(question))
		return res, true, err

	case claimCountRe.MatchString(question):
		res, err := e.resolvers.ClaimCount(ctx, claimScope(question))
		return res, true, err

	case billableRe.MatchString(question) && claimID != 0:
		res, err := e.resolvers.ClaimBillables(ctx, claimID)
		return res, true, err

	case workStatusRe.MatchString(question) && claimID != 0:
		res, err := e.resolvers.ClaimWorkStatus(ctx, claimID)
		return res, true, err

	case billingRe.MatchString(question) && claimID != 0:
		res, err := e.resolvers.ClaimBilling(ctx, claimID)
		return res, true, err

	case summaryRe.MatchString(question) && claimID != 0:
		res, err := e.resolvers.ClaimSummary(ctx, claimID)
		return res, true, err
	}

	return nil, false, nil
}

// claimScope reads the open/closed/both axis from the question text. The
// empty scope means the question is ambiguous along that axis.
func claimScope(question string) domain.ClaimScope {
	q := strings.ToLower(question)
	switch {
	case bothScopeRe.MatchString(q):
		return domain.ScopeBoth
	case openScopeRe.MatchString(q):
		return domain.ScopeOpen
	case closedRe.MatchString(q):
		return domain.ScopeClosed
	}
	return ""
}

// claimScopeID prefers an explicit "claim N" in the question over the page
// context's claim id.
func claimScopeID(question string, pctx domain.Context) int64 {
	if id, ok := ExtractClaimRef(question); ok {
		return id
	}
	if id, ok := pctx.ClaimID(); ok {
		return id
	}
	return 0
}
