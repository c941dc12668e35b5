package domain

import (
	"context"
)

// ClaimReader is the narrow read interface the query layer depends on.
// Implementations surface ErrNotFound for missing claims; any other error
// is an infrastructure failure and is fatal for the request.
type ClaimReader interface {
	ClaimFacts(ctx context.Context, claimID int64) (*ClaimFacts, error)
	// Reports returns the claim's reports, most recently created first.
	Reports(ctx context.Context, claimID int64) ([]ReportFacts, error)
	Invoices(ctx context.Context, claimID int64) ([]InvoiceLine, error)
	Billables(ctx context.Context, claimID int64) ([]BillableLine, error)
	CountClaims(ctx context.Context, scope ClaimScope) (int, error)
	ListClaims(ctx context.Context, scope ClaimScope) ([]ClaimFacts, error)
}

// FallbackAnswerer is the probabilistic model boundary. It either returns
// text with the subset of source ids it cited, or an error; the caller
// converts errors into best-effort guess answers, never request failures.
type FallbackAnswerer interface {
	Answer(ctx context.Context, question string, sources []Source) (*FallbackResult, error)
}

// SessionStore holds the server-side half of the pending-intent pair,
// keyed by the caller's session identity.
type SessionStore interface {
	GetPendingIntent(ctx context.Context, sessionID string) (string, error)
	SetPendingIntent(ctx context.Context, sessionID, intent string) error
	ClearPendingIntent(ctx context.Context, sessionID string) error
}

// TurnLogger records conversational turns. Implementations must not fail
// the request on write errors.
type TurnLogger interface {
	Record(ctx context.Context, turn *TurnRecord) error
	Close() error
}
