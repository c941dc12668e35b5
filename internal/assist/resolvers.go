package assist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/rbrowning13/IMC-CMS-sub001/internal/domain"
)

// Invoice statuses that no longer count toward outstanding billing.
var terminalInvoiceStatuses = map[string]bool{
	"Paid":      true,
	"Void":      true,
	"Cancelled": true,
}

const summaryCacheSize = 256

// Resolution is the structured result of one deterministic resolver. The
// engine derives the confidence score from its quality signals.
type Resolution struct {
	Intent            string
	Text              string
	Citations         []domain.Citation
	HadData           bool
	Partial           bool
	PendingIntent     string
	ThreadStateUpdate map[string]any
}

// Resolvers answers the fixed question categories from claim-scoped data.
// Resolvers never fail on missing data; they return neutral results with
// degraded quality signals. Only data-access failures propagate.
type Resolvers struct {
	claims       domain.ClaimReader
	log          *logrus.Logger
	summaryCache *lru.Cache[int64, string]
}

// NewResolvers creates the deterministic resolver family.
func NewResolvers(claims domain.ClaimReader, logger *logrus.Logger) *Resolvers {
	cache, _ := lru.New[int64, string](summaryCacheSize)
	return &Resolvers{
		claims:       claims,
		log:          logger,
		summaryCache: cache,
	}
}

// ClaimSummary produces a one-paragraph summary of a claim.
func (r *Resolvers) ClaimSummary(ctx context.Context, claimID int64) (*Resolution, error) {
	if text, ok := r.summaryCache.Get(claimID); ok {
		return &Resolution{
			Intent:    "claim_summary",
			Text:      text,
			Citations: []domain.Citation{claimCitation(claimID)},
			HadData:   true,
		}, nil
	}

	facts, err := r.claims.ClaimFacts(ctx, claimID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &Resolution{
				Intent: "claim_summary",
				Text:   fmt.Sprintf("No claim found with id %d.", claimID),
			}, nil
		}
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Claim %s is %s.", facts.ClaimNumber, strings.ToLower(facts.Status))
	if facts.InjuryDesc != "" {
		fmt.Fprintf(&b, " Injury: %s.", facts.InjuryDesc)
	}
	if facts.EmployerName != "" {
		fmt.Fprintf(&b, " Employer: %s.", facts.EmployerName)
	}
	if facts.CarrierName != "" {
		fmt.Fprintf(&b, " Carrier: %s.", facts.CarrierName)
	}
	if facts.DateOfInjury != nil {
		fmt.Fprintf(&b, " Date of injury: %s.", facts.DateOfInjury.Format("January 2, 2006"))
	}

	reports, err := r.claims.Reports(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if len(reports) > 0 && reports[0].Summary != "" {
		fmt.Fprintf(&b, " Latest report: %s", reports[0].Summary)
	}

	text := b.String()
	r.summaryCache.Add(claimID, text)

	r.log.WithFields(logrus.Fields{
		"claim_id": claimID,
		"reports":  len(reports),
	}).Info("Resolved claim summary")

	return &Resolution{
		Intent:    "claim_summary",
		Text:      text,
		Citations: []domain.Citation{claimCitation(claimID)},
		HadData:   true,
	}, nil
}

// ClaimBilling reports the outstanding invoice count and amount total for a
// claim. Outstanding means the invoice status is non-terminal.
func (r *Resolvers) ClaimBilling(ctx context.Context, claimID int64) (*Resolution, error) {
	invoices, err := r.claims.Invoices(ctx, claimID)
	if err != nil {
		return nil, err
	}

	count := 0
	total := 0.0
	citations := make([]domain.Citation, 0, len(invoices))
	for _, inv := range invoices {
		if terminalInvoiceStatuses[inv.Status] {
			continue
		}
		count++
		total += inv.Amount
		citations = append(citations, domain.Citation{
			ID:    fmt.Sprintf("invoice:%d", inv.ID),
			Label: fmt.Sprintf("Invoice %d (%s)", inv.ID, inv.Status),
		})
	}

	if len(invoices) == 0 {
		return &Resolution{
			Intent: "claim_billing",
			Text:   fmt.Sprintf("Claim %d has no invoices on file.", claimID),
		}, nil
	}

	noun := "invoices"
	if count == 1 {
		noun = "invoice"
	}
	return &Resolution{
		Intent:    "claim_billing",
		Text:      fmt.Sprintf("Claim %d has %d outstanding %s totaling $%.2f.", claimID, count, noun, total),
		Citations: citations,
		HadData:   true,
	}, nil
}

// ClaimBillables aggregates the billable items on a claim.
func (r *Resolvers) ClaimBillables(ctx context.Context, claimID int64) (*Resolution, error) {
	billables, err := r.claims.Billables(ctx, claimID)
	if err != nil {
		return nil, err
	}

	if len(billables) == 0 {
		return &Resolution{
			Intent: "claim_billables",
			Text:   fmt.Sprintf("Claim %d has no billable items.", claimID),
		}, nil
	}

	summary := domain.BillablesSummary{Count: len(billables)}
	citations := make([]domain.Citation, 0, len(billables))
	for _, bl := range billables {
		summary.TotalUnits += bl.Units
		summary.TotalAmount += bl.Amount
		citations = append(citations, domain.Citation{
			ID:    fmt.Sprintf("billable:%d", bl.ID),
			Label: fmt.Sprintf("Billable %d", bl.ID),
		})
	}

	noun := "items"
	if summary.Count == 1 {
		noun = "item"
	}
	return &Resolution{
		Intent: "claim_billables",
		Text: fmt.Sprintf("Claim %d has %d billable %s: %.1f units totaling $%.2f.",
			claimID, summary.Count, noun, summary.TotalUnits, summary.TotalAmount),
		Citations: citations,
		HadData:   true,
	}, nil
}

// ClaimWorkStatus reports the work status from the most recently created
// report that has one. A claim with no such report yields an absent result,
// not an error.
func (r *Resolvers) ClaimWorkStatus(ctx context.Context, claimID int64) (*Resolution, error) {
	reports, err := r.claims.Reports(ctx, claimID)
	if err != nil {
		return nil, err
	}

	for _, rep := range reports {
		if rep.WorkStatus == "" {
			continue
		}
		return &Resolution{
			Intent: "claim_work_status",
			Text: fmt.Sprintf("Latest work status for claim %d: %s (reported %s).",
				claimID, rep.WorkStatus, rep.CreatedAt.Format("January 2, 2006")),
			Citations: []domain.Citation{{
				ID:    fmt.Sprintf("report:%d", rep.ID),
				Label: fmt.Sprintf("Report %d", rep.ID),
			}},
			HadData: true,
		}, nil
	}

	return &Resolution{Intent: "claim_work_status"}, nil
}

// ClaimCount counts claims for an open/closed/both scope. An empty or
// unrecognized scope is an ambiguity, not an error: the resolver sets a
// pending intent and asks the user to pick a scope.
func (r *Resolvers) ClaimCount(ctx context.Context, scope domain.ClaimScope) (*Resolution, error) {
	switch scope {
	case domain.ScopeOpen, domain.ScopeClosed, domain.ScopeBoth:
	default:
		return &Resolution{
			Intent:            "claim_count",
			Text:              "Do you want the number of open claims, closed claims, or both?",
			PendingIntent:     domain.PendingClaimCount,
			ThreadStateUpdate: map[string]any{"pending_intent": domain.PendingClaimCount},
		}, nil
	}

	count, err := r.claims.CountClaims(ctx, scope)
	if err != nil {
		return nil, err
	}

	var text string
	switch scope {
	case domain.ScopeOpen:
		text = fmt.Sprintf("You have %d open %s.", count, pluralClaim(count))
	case domain.ScopeClosed:
		text = fmt.Sprintf("You have %d closed %s.", count, pluralClaim(count))
	default:
		text = fmt.Sprintf("You have %d open and closed %s in total.", count, pluralClaim(count))
	}

	return &Resolution{Intent: "claim_count", Text: text, HadData: true}, nil
}

// ClaimList lists claims for an open/closed/both scope, with the same
// ambiguity handling as ClaimCount.
func (r *Resolvers) ClaimList(ctx context.Context, scope domain.ClaimScope) (*Resolution, error) {
	switch scope {
	case domain.ScopeOpen, domain.ScopeClosed, domain.ScopeBoth:
	default:
		return &Resolution{
			Intent:            "claim_list",
			Text:              "Do you want to list open claims, closed claims, or both?",
			PendingIntent:     domain.PendingClaimList,
			ThreadStateUpdate: map[string]any{"pending_intent": domain.PendingClaimList},
		}, nil
	}

	claims, err := r.claims.ListClaims(ctx, scope)
	if err != nil {
		return nil, err
	}

	if len(claims) == 0 {
		label := string(scope)
		if scope == domain.ScopeBoth {
			label = "matching"
		}
		return &Resolution{
			Intent: "claim_list",
			Text:   fmt.Sprintf("You have no %s claims.", label),
		}, nil
	}

	const maxListed = 10
	names := make([]string, 0, len(claims))
	citations := make([]domain.Citation, 0, len(claims))
	for i, c := range claims {
		if i == maxListed {
			names = append(names, fmt.Sprintf("and %d more", len(claims)-maxListed))
			break
		}
		names = append(names, fmt.Sprintf("%s (%s)", c.ClaimNumber, strings.ToLower(c.Status)))
		citations = append(citations, claimCitation(c.ID))
	}

	return &Resolution{
		Intent:    "claim_list",
		Text:      fmt.Sprintf("You have %d %s: %s.", len(claims), pluralClaim(len(claims)), strings.Join(names, ", ")),
		Citations: citations,
		HadData:   true,
		Partial:   len(claims) > maxListed,
	}, nil
}

func claimCitation(claimID int64) domain.Citation {
	return domain.Citation{
		ID:    fmt.Sprintf("claim:%d", claimID),
		Label: fmt.Sprintf("Claim %d", claimID),
	}
}

func pluralClaim(n int) string {
	if n == 1 {
		return "claim"
	}
	return "claims"
}
