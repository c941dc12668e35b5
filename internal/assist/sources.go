package assist

import (
	"context"
	"errors"
	"fmt"

	"github.com/rbrowning13/IMC-CMS-sub001/internal/domain"
)

// BuildSources assembles the claim-scoped evidence set handed to the
// probabilistic fallback: claim facts, report text, invoice lines, and
// billable lines, each under a stable id. Claimant personal identifiers
// never appear in source text. A zero claim id yields no sources.
func BuildSources(ctx context.Context, claims domain.ClaimReader, claimID int64) ([]domain.Source, error) {
	if claimID == 0 {
		return nil, nil
	}

	var sources []domain.Source

	facts, err := claims.ClaimFacts(ctx, claimID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	sources = append(sources, domain.Source{
		ID:    fmt.Sprintf("claim:%d", facts.ID),
		Label: fmt.Sprintf("Claim %s", facts.ClaimNumber),
		Text: fmt.Sprintf("Claim %s, status %s. Injury: %s. Employer: %s. Carrier: %s.",
			facts.ClaimNumber, facts.Status, facts.InjuryDesc, facts.EmployerName, facts.CarrierName),
	})

	reports, err := claims.Reports(ctx, claimID)
	if err != nil {
		return nil, err
	}
	for _, rep := range reports {
		text := rep.Summary
		if rep.WorkStatus != "" {
			text = fmt.Sprintf("%s Work status: %s.", text, rep.WorkStatus)
		}
		sources = append(sources, domain.Source{
			ID:    fmt.Sprintf("report:%d", rep.ID),
			Label: fmt.Sprintf("Report %d (%s)", rep.ID, rep.CreatedAt.Format("2006-01-02")),
			Text:  text,
		})
	}

	invoices, err := claims.Invoices(ctx, claimID)
	if err != nil {
		return nil, err
	}
	for _, inv := range invoices {
		sources = append(sources, domain.Source{
			ID:    fmt.Sprintf("invoice:%d", inv.ID),
			Label: fmt.Sprintf("Invoice %d", inv.ID),
			Text:  fmt.Sprintf("Invoice %d, status %s, amount $%.2f.", inv.ID, inv.Status, inv.Amount),
		})
	}

	billables, err := claims.Billables(ctx, claimID)
	if err != nil {
		return nil, err
	}
	for _, bl := range billables {
		sources = append(sources, domain.Source{
			ID:    fmt.Sprintf("billable:%d", bl.ID),
			Label: fmt.Sprintf("Billable %d", bl.ID),
			Text:  fmt.Sprintf("Billable activity: %s, %.1f units, $%.2f.", bl.Description, bl.Units, bl.Amount),
		})
	}

	return sources, nil
}
