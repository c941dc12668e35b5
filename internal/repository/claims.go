package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rbrowning13/IMC-CMS-sub001/internal/domain"
)

// ClaimStore implements domain.ClaimReader over the case-management read
// views. It owns no writes; the surrounding CRUD application owns the
// tables.
type ClaimStore struct {
	db  *sql.DB
	log *logrus.Logger
}

// NewClaimStore creates a read-only claim store.
func NewClaimStore(db *sql.DB, logger *logrus.Logger) *ClaimStore {
	return &ClaimStore{db: db, log: logger}
}

// ClaimFacts retrieves the read view of one claim.
func (s *ClaimStore) ClaimFacts(ctx context.Context, claimID int64) (*domain.ClaimFacts, error) {
	query := `
		SELECT id, claim_number, status, open,
		       COALESCE(injury_description, ''), COALESCE(employer_name, ''),
		       COALESCE(carrier_name, ''), date_of_injury
		FROM claims
		WHERE id = $1`

	var facts domain.ClaimFacts
	var dateOfInjury sql.NullTime

	err := s.db.QueryRowContext(ctx, query, claimID).Scan(
		&facts.ID,
		&facts.ClaimNumber,
		&facts.Status,
		&facts.Open,
		&facts.InjuryDesc,
		&facts.EmployerName,
		&facts.CarrierName,
		&dateOfInjury,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("claim %d: %w", claimID, domain.ErrNotFound)
		}
		s.log.WithError(err).WithField("claim_id", claimID).Error("Failed to read claim facts")
		return nil, domain.NewDataAccessError("claim facts", err)
	}
	if dateOfInjury.Valid {
		facts.DateOfInjury = &dateOfInjury.Time
	}

	return &facts, nil
}

// Reports returns a claim's reports, most recently created first.
func (s *ClaimStore) Reports(ctx context.Context, claimID int64) ([]domain.ReportFacts, error) {
	query := `
		SELECT id, claim_id, COALESCE(summary, ''), COALESCE(work_status, ''), created_at
		FROM reports
		WHERE claim_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, claimID)
	if err != nil {
		return nil, domain.NewDataAccessError("reports", err)
	}
	defer rows.Close()

	var reports []domain.ReportFacts
	for rows.Next() {
		var r domain.ReportFacts
		if err := rows.Scan(&r.ID, &r.ClaimID, &r.Summary, &r.WorkStatus, &r.CreatedAt); err != nil {
			return nil, domain.NewDataAccessError("reports", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewDataAccessError("reports", err)
	}

	return reports, nil
}

// Invoices returns a claim's invoice lines.
func (s *ClaimStore) Invoices(ctx context.Context, claimID int64) ([]domain.InvoiceLine, error) {
	query := `
		SELECT id, claim_id, status, amount
		FROM invoices
		WHERE claim_id = $1
		ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, claimID)
	if err != nil {
		return nil, domain.NewDataAccessError("invoices", err)
	}
	defer rows.Close()

	var invoices []domain.InvoiceLine
	for rows.Next() {
		var inv domain.InvoiceLine
		if err := rows.Scan(&inv.ID, &inv.ClaimID, &inv.Status, &inv.Amount); err != nil {
			return nil, domain.NewDataAccessError("invoices", err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewDataAccessError("invoices", err)
	}

	return invoices, nil
}

// Billables returns a claim's billable activity lines.
func (s *ClaimStore) Billables(ctx context.Context, claimID int64) ([]domain.BillableLine, error) {
	query := `
		SELECT id, claim_id, COALESCE(description, ''), units, amount
		FROM billables
		WHERE claim_id = $1
		ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, claimID)
	if err != nil {
		return nil, domain.NewDataAccessError("billables", err)
	}
	defer rows.Close()

	var billables []domain.BillableLine
	for rows.Next() {
		var bl domain.BillableLine
		if err := rows.Scan(&bl.ID, &bl.ClaimID, &bl.Description, &bl.Units, &bl.Amount); err != nil {
			return nil, domain.NewDataAccessError("billables", err)
		}
		billables = append(billables, bl)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewDataAccessError("billables", err)
	}

	return billables, nil
}

// CountClaims counts claims in the requested open/closed/both scope.
func (s *ClaimStore) CountClaims(ctx context.Context, scope domain.ClaimScope) (int, error) {
	query := `SELECT COUNT(*) FROM claims` + scopeClause(scope)

	var count int
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, domain.NewDataAccessError("claim count", err)
	}
	return count, nil
}

// ListClaims lists claims in the requested open/closed/both scope.
func (s *ClaimStore) ListClaims(ctx context.Context, scope domain.ClaimScope) ([]domain.ClaimFacts, error) {
	query := `
		SELECT id, claim_number, status, open,
		       COALESCE(injury_description, ''), COALESCE(employer_name, ''),
		       COALESCE(carrier_name, ''), date_of_injury
		FROM claims` + scopeClause(scope) + `
		ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, domain.NewDataAccessError("claim list", err)
	}
	defer rows.Close()

	var claims []domain.ClaimFacts
	for rows.Next() {
		var facts domain.ClaimFacts
		var dateOfInjury sql.NullTime
		err := rows.Scan(
			&facts.ID, &facts.ClaimNumber, &facts.Status, &facts.Open,
			&facts.InjuryDesc, &facts.EmployerName, &facts.CarrierName, &dateOfInjury,
		)
		if err != nil {
			return nil, domain.NewDataAccessError("claim list", err)
		}
		if dateOfInjury.Valid {
			facts.DateOfInjury = &dateOfInjury.Time
		}
		claims = append(claims, facts)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewDataAccessError("claim list", err)
	}

	return claims, nil
}

func scopeClause(scope domain.ClaimScope) string {
	switch scope {
	case domain.ScopeOpen:
		return ` WHERE open`
	case domain.ScopeClosed:
		return ` WHERE NOT open`
	}
	return ``
}
