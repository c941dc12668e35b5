package assist

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbrowning13/IMC-CMS-sub001/internal/domain"
)

// stubClaims is an in-memory ClaimReader for resolver and engine tests.
type stubClaims struct {
	facts     map[int64]*domain.ClaimFacts
	reports   map[int64][]domain.ReportFacts
	invoices  map[int64][]domain.InvoiceLine
	billables map[int64][]domain.BillableLine
	all       []domain.ClaimFacts
	err       error
}

func (s *stubClaims) ClaimFacts(ctx context.Context, claimID int64) (*domain.ClaimFacts, error) {
	if s.err != nil {
		return nil, s.err
	}
	f, ok := s.facts[claimID]
	if !ok {
		return nil, fmt.Errorf("claim %d: %w", claimID, domain.ErrNotFound)
	}
	return f, nil
}

func (s *stubClaims) Reports(ctx context.Context, claimID int64) ([]domain.ReportFacts, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.reports[claimID], nil
}

func (s *stubClaims) Invoices(ctx context.Context, claimID int64) ([]domain.InvoiceLine, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.invoices[claimID], nil
}

func (s *stubClaims) Billables(ctx context.Context, claimID int64) ([]domain.BillableLine, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.billables[claimID], nil
}

func (s *stubClaims) CountClaims(ctx context.Context, scope domain.ClaimScope) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	claims, _ := s.ListClaims(ctx, scope)
	return len(claims), nil
}

func (s *stubClaims) ListClaims(ctx context.Context, scope domain.ClaimScope) ([]domain.ClaimFacts, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []domain.ClaimFacts
	for _, c := range s.all {
		switch scope {
		case domain.ScopeOpen:
			if !c.Open {
				continue
			}
		case domain.ScopeClosed:
			if c.Open {
				continue
			}
		}
		out = append(out, c)
	}
	return out, nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestClaimSummary(t *testing.T) {
	injured := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	claims := &stubClaims{
		facts: map[int64]*domain.ClaimFacts{
			9: {
				ID:           9,
				ClaimNumber:  "WC-2024-0009",
				Status:       "Open",
				Open:         true,
				InjuryDesc:   "Lower back strain",
				EmployerName: "Acme Logistics",
				CarrierName:  "Statewide Mutual",
				DateOfInjury: &injured,
			},
		},
		reports: map[int64][]domain.ReportFacts{
			9: {
				{ID: 31, ClaimID: 9, Summary: "Patient cleared for light duty.", CreatedAt: time.Now()},
				{ID: 30, ClaimID: 9, Summary: "Initial evaluation.", CreatedAt: time.Now().Add(-time.Hour)},
			},
		},
	}
	r := NewResolvers(claims, testLogger())

	res, err := r.ClaimSummary(context.Background(), 9)
	require.NoError(t, err)
	assert.True(t, res.HadData)
	assert.Contains(t, res.Text, "Claim WC-2024-0009 is open.")
	assert.Contains(t, res.Text, "Injury: Lower back strain.")
	assert.Contains(t, res.Text, "Employer: Acme Logistics.")
	assert.Contains(t, res.Text, "Carrier: Statewide Mutual.")
	assert.Contains(t, res.Text, "Date of injury: March 14, 2024.")
	assert.Contains(t, res.Text, "Latest report: Patient cleared for light duty.")
	require.Len(t, res.Citations, 1)
	assert.Equal(t, "claim:9", res.Citations[0].ID)
}

func TestClaimSummary_CachesText(t *testing.T) {
	claims := &stubClaims{
		facts: map[int64]*domain.ClaimFacts{
			4: {ID: 4, ClaimNumber: "WC-2024-0004", Status: "Open", Open: true},
		},
	}
	r := NewResolvers(claims, testLogger())

	first, err := r.ClaimSummary(context.Background(), 4)
	require.NoError(t, err)

	// Subsequent calls serve from cache even if the reader starts failing.
	claims.err = domain.NewDataAccessError("claim_facts", fmt.Errorf("connection reset"))
	second, err := r.ClaimSummary(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, first.Text, second.Text)
}

func TestClaimSummary_MissingClaimIsNeutral(t *testing.T) {
	r := NewResolvers(&stubClaims{facts: map[int64]*domain.ClaimFacts{}}, testLogger())

	res, err := r.ClaimSummary(context.Background(), 404)
	require.NoError(t, err)
	assert.False(t, res.HadData)
	assert.Equal(t, "No claim found with id 404.", res.Text)
}

func TestClaimBilling(t *testing.T) {
	tests := []struct {
		name     string
		invoices []domain.InvoiceLine
		wantText string
		wantData bool
	}{
		{
			name: "terminal statuses excluded",
			invoices: []domain.InvoiceLine{
				{ID: 1, ClaimID: 7, Status: "Paid", Amount: 300.0},
				{ID: 2, ClaimID: 7, Status: "Draft", Amount: 150.0},
			},
			wantText: "Claim 7 has 1 outstanding invoice totaling $150.00.",
			wantData: true,
		},
		{
			name: "void and cancelled excluded",
			invoices: []domain.InvoiceLine{
				{ID: 1, ClaimID: 7, Status: "Void", Amount: 10.0},
				{ID: 2, ClaimID: 7, Status: "Cancelled", Amount: 20.0},
				{ID: 3, ClaimID: 7, Status: "Submitted", Amount: 99.5},
				{ID: 4, ClaimID: 7, Status: "Overdue", Amount: 0.5},
			},
			wantText: "Claim 7 has 2 outstanding invoices totaling $100.00.",
			wantData: true,
		},
		{
			name: "all terminal still counts as data",
			invoices: []domain.InvoiceLine{
				{ID: 1, ClaimID: 7, Status: "Paid", Amount: 300.0},
			},
			wantText: "Claim 7 has 0 outstanding invoices totaling $0.00.",
			wantData: true,
		},
		{
			name:     "no invoices at all is neutral",
			invoices: nil,
			wantText: "Claim 7 has no invoices on file.",
			wantData: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := &stubClaims{invoices: map[int64][]domain.InvoiceLine{7: tt.invoices}}
			r := NewResolvers(claims, testLogger())

			res, err := r.ClaimBilling(context.Background(), 7)
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, res.Text)
			assert.Equal(t, tt.wantData, res.HadData)
		})
	}
}

func TestClaimBillables(t *testing.T) {
	claims := &stubClaims{
		billables: map[int64][]domain.BillableLine{
			9: {
				{ID: 1, ClaimID: 9, Description: "Case review", Units: 2.0, Amount: 250.0},
				{ID: 2, ClaimID: 9, Description: "Deposition", Units: 1.5, Amount: 187.5},
			},
		},
	}
	r := NewResolvers(claims, testLogger())

	res, err := r.ClaimBillables(context.Background(), 9)
	require.NoError(t, err)
	assert.True(t, res.HadData)
	assert.Equal(t, "Claim 9 has 2 billable items: 3.5 units totaling $437.50.", res.Text)
	assert.Len(t, res.Citations, 2)

	empty, err := r.ClaimBillables(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, empty.HadData)
	assert.Equal(t, "Claim 2 has no billable items.", empty.Text)
}

func TestClaimWorkStatus(t *testing.T) {
	reported := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	claims := &stubClaims{
		reports: map[int64][]domain.ReportFacts{
			9: {
				{ID: 52, ClaimID: 9, WorkStatus: "", CreatedAt: reported.AddDate(0, 0, 7)},
				{ID: 51, ClaimID: 9, WorkStatus: "Modified duty", CreatedAt: reported},
			},
			3: {
				{ID: 60, ClaimID: 3, WorkStatus: "", CreatedAt: reported},
			},
		},
	}
	r := NewResolvers(claims, testLogger())

	res, err := r.ClaimWorkStatus(context.Background(), 9)
	require.NoError(t, err)
	assert.True(t, res.HadData)
	assert.Equal(t, "Latest work status for claim 9: Modified duty (reported June 2, 2024).", res.Text)
	require.Len(t, res.Citations, 1)
	assert.Equal(t, "report:51", res.Citations[0].ID)

	// No report carries a work status: absent result, degraded confidence.
	absent, err := r.ClaimWorkStatus(context.Background(), 3)
	require.NoError(t, err)
	assert.False(t, absent.HadData)
	assert.Equal(t, "", absent.Text)
	assert.Equal(t, 0.3, ScoreConfidence(absent.Text, absent.HadData, false, absent.Partial))
}

func TestClaimCount(t *testing.T) {
	claims := &stubClaims{
		all: []domain.ClaimFacts{
			{ID: 1, ClaimNumber: "WC-1", Status: "Open", Open: true},
			{ID: 2, ClaimNumber: "WC-2", Status: "Open", Open: true},
			{ID: 3, ClaimNumber: "WC-3", Status: "Closed", Open: false},
		},
	}
	r := NewResolvers(claims, testLogger())

	tests := []struct {
		name  string
		scope domain.ClaimScope
		want  string
	}{
		{"open", domain.ScopeOpen, "You have 2 open claims."},
		{"closed", domain.ScopeClosed, "You have 1 closed claim."},
		{"both", domain.ScopeBoth, "You have 3 open and closed claims in total."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.ClaimCount(context.Background(), tt.scope)
			require.NoError(t, err)
			assert.True(t, res.HadData)
			assert.Equal(t, tt.want, res.Text)
		})
	}
}

func TestClaimCount_AmbiguousScopeSetsPendingIntent(t *testing.T) {
	r := NewResolvers(&stubClaims{}, testLogger())

	res, err := r.ClaimCount(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, res.HadData)
	assert.Equal(t, "Do you want the number of open claims, closed claims, or both?", res.Text)
	assert.Equal(t, domain.PendingClaimCount, res.PendingIntent)
	assert.Equal(t, domain.PendingClaimCount, res.ThreadStateUpdate["pending_intent"])
}

func TestClaimList(t *testing.T) {
	claims := &stubClaims{
		all: []domain.ClaimFacts{
			{ID: 1, ClaimNumber: "WC-1", Status: "Open", Open: true},
			{ID: 2, ClaimNumber: "WC-2", Status: "Closed", Open: false},
		},
	}
	r := NewResolvers(claims, testLogger())

	res, err := r.ClaimList(context.Background(), domain.ScopeBoth)
	require.NoError(t, err)
	assert.True(t, res.HadData)
	assert.False(t, res.Partial)
	assert.Equal(t, "You have 2 claims: WC-1 (open), WC-2 (closed).", res.Text)
	assert.Len(t, res.Citations, 2)
}

func TestClaimList_TruncatesLongLists(t *testing.T) {
	var all []domain.ClaimFacts
	for i := 1; i <= 14; i++ {
		all = append(all, domain.ClaimFacts{
			ID:          int64(i),
			ClaimNumber: fmt.Sprintf("WC-%d", i),
			Status:      "Open",
			Open:        true,
		})
	}
	r := NewResolvers(&stubClaims{all: all}, testLogger())

	res, err := r.ClaimList(context.Background(), domain.ScopeOpen)
	require.NoError(t, err)
	assert.True(t, res.Partial)
	assert.Contains(t, res.Text, "You have 14 claims:")
	assert.Contains(t, res.Text, "and 4 more")
	assert.Len(t, res.Citations, 10)
}

func TestClaimList_AmbiguousScopeSetsPendingIntent(t *testing.T) {
	r := NewResolvers(&stubClaims{}, testLogger())

	res, err := r.ClaimList(context.Background(), "everything")
	require.NoError(t, err)
	assert.Equal(t, domain.PendingClaimList, res.PendingIntent)
	assert.Equal(t, "Do you want to list open claims, closed claims, or both?", res.Text)
}

func TestResolvers_DataAccessErrorsPropagate(t *testing.T) {
	boom := domain.NewDataAccessError("invoices", fmt.Errorf("connection refused"))
	r := NewResolvers(&stubClaims{err: boom}, testLogger())

	_, err := r.ClaimBilling(context.Background(), 9)
	require.Error(t, err)
	assert.True(t, domain.IsDataAccess(err))
}
