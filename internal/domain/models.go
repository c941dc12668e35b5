package domain

import (
	"time"
)

// Core Enums and Types

// ClaimScope selects which claims a count or listing covers.
type ClaimScope string

const (
	ScopeOpen   ClaimScope = "open"
	ScopeClosed ClaimScope = "closed"
	ScopeBoth   ClaimScope = "both"
)

// ContextScope is the textual category of where a query originates.
// It is never a numeric entity id.
type ContextScope string

const (
	ContextClaim   ContextScope = "claim"
	ContextInvoice ContextScope = "invoice"
	ContextSystem  ContextScope = "system"
)

// Pending-intent tokens. The *_open/_closed/_both variants record the
// scope the user originally mentioned alongside the outstanding question.
const (
	PendingClaimCount       = "claim_count"
	PendingClaimCountOpen   = "claim_count_open"
	PendingClaimCountClosed = "claim_count_closed"
	PendingClaimCountBoth   = "claim_count_both"
	PendingClaimList        = "claim_list"
	PendingClaimListOpen    = "claim_list_open"
	PendingClaimListClosed  = "claim_list_closed"
	PendingClaimListBoth    = "claim_list_both"
)

// Context keys produced by normalization. Unrecognized keys from the raw
// payload are carried through under their original names.
const (
	KeyClaimID      = "claim_id"
	KeyInvoiceID    = "invoice_id"
	KeyReportID     = "report_id"
	KeyCarrierID    = "carrier_id"
	KeyEmployerID   = "employer_id"
	KeyProviderID   = "provider_id"
	KeyActiveTab    = "active_tab"
	KeyPath         = "path"
	KeyURL          = "url"
	KeyContextScope = "context_scope"
	KeyThreadState  = "thread_state"
)

// Context is the canonical per-request page context. Identifier values are
// normalized to int64; context_scope holds a ContextScope-compatible string.
type Context map[string]any

// ClaimID returns the normalized claim id, if present.
func (c Context) ClaimID() (int64, bool) { return c.intVal(KeyClaimID) }

// InvoiceID returns the normalized invoice id, if present.
func (c Context) InvoiceID() (int64, bool) { return c.intVal(KeyInvoiceID) }

// ReportID returns the normalized report id, if present.
func (c Context) ReportID() (int64, bool) { return c.intVal(KeyReportID) }

// Scope returns the context_scope label, if present.
func (c Context) Scope() (string, bool) {
	v, ok := c[KeyContextScope]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

func (c Context) intVal(key string) (int64, bool) {
	v, ok := c[key]
	if !ok {
		return 0, false
	}
	n, ok := v.(int64)
	return n, ok
}

// Request/Response Models

// Citation references one evidence source that supports an answer.
type Citation struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Answer is the normalized result of resolving a question. Confidence is
// always set and lies in [0,1].
type Answer struct {
	Text              string         `json:"answer"`
	Citations         []Citation     `json:"citations"`
	IsGuess           bool           `json:"is_guess"`
	Confidence        float64        `json:"confidence"`
	ModelSource       string         `json:"model_source"`
	LocalOnly         bool           `json:"local_only"`
	PendingIntent     string         `json:"pending_intent"`
	ThreadStateUpdate map[string]any `json:"thread_state_update"`
}

// Source is a claim-scoped evidence snippet handed to the probabilistic
// fallback. It never carries direct personal identifiers.
type Source struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

// FallbackResult is what the probabilistic answerer returns on success.
type FallbackResult struct {
	Text     string   `json:"text"`
	CitedIDs []string `json:"cited_ids"`
	Model    string   `json:"model"`
}

// Claim Read Views

// ClaimFacts is the read view of a single claim.
type ClaimFacts struct {
	ID           int64      `json:"id"`
	ClaimNumber  string     `json:"claim_number"`
	Status       string     `json:"status"`
	Open         bool       `json:"open"`
	InjuryDesc   string     `json:"injury_description"`
	EmployerName string     `json:"employer_name"`
	CarrierName  string     `json:"carrier_name"`
	DateOfInjury *time.Time `json:"date_of_injury,omitempty"`
}

// ReportFacts is the read view of a medical report attached to a claim.
type ReportFacts struct {
	ID         int64     `json:"id"`
	ClaimID    int64     `json:"claim_id"`
	Summary    string    `json:"summary"`
	WorkStatus string    `json:"work_status"`
	CreatedAt  time.Time `json:"created_at"`
}

// InvoiceLine is the read view of an invoice on a claim.
type InvoiceLine struct {
	ID      int64   `json:"id"`
	ClaimID int64   `json:"claim_id"`
	Status  string  `json:"status"`
	Amount  float64 `json:"amount"`
}

// BillableLine is the read view of a billable activity on a claim.
type BillableLine struct {
	ID          int64   `json:"id"`
	ClaimID     int64   `json:"claim_id"`
	Description string  `json:"description"`
	Units       float64 `json:"units"`
	Amount      float64 `json:"amount"`
}

// BillablesSummary aggregates the billable items on one claim.
type BillablesSummary struct {
	Count       int     `json:"count"`
	TotalUnits  float64 `json:"total_units"`
	TotalAmount float64 `json:"total_amount"`
}

// TurnRecord captures one conversational exchange for the audit log.
type TurnRecord struct {
	ID            int64     `json:"id"`
	SessionID     string    `json:"session_id"`
	Question      string    `json:"question"`
	ResolvedQuery string    `json:"resolved_query"`
	Intent        string    `json:"intent"`
	Confidence    float64   `json:"confidence"`
	ModelSource   string    `json:"model_source"`
	PendingIntent string    `json:"pending_intent"`
	CreatedAt     time.Time `json:"created_at"`
}
