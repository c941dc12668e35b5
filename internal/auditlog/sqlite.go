// Package auditlog records conversation turns in an embedded database so
// degraded answers can be reviewed later. Writes are best-effort; callers
// must not fail a request on a logging error.
package auditlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/rbrowning13/IMC-CMS-sub001/internal/domain"
)

// SQLiteLog implements domain.TurnLogger on an embedded SQLite database.
type SQLiteLog struct {
	db *sql.DB
}

// NewSQLiteLog opens (creating if needed) the audit database at path.
func NewSQLiteLog(path string) (*SQLiteLog, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating audit log directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}

	// WAL keeps turn writes from blocking concurrent readers.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating audit schema: %w", err)
	}

	return &SQLiteLog{db: db}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS turns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL DEFAULT '',
		question TEXT NOT NULL,
		resolved_query TEXT NOT NULL DEFAULT '',
		intent TEXT NOT NULL DEFAULT '',
		confidence REAL NOT NULL DEFAULT 0,
		model_source TEXT NOT NULL DEFAULT '',
		pending_intent TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id, created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// Record appends one turn.
func (l *SQLiteLog) Record(ctx context.Context, turn *domain.TurnRecord) error {
	query := `
		INSERT INTO turns (
			session_id, question, resolved_query, intent,
			confidence, model_source, pending_intent, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := l.db.ExecContext(ctx, query,
		turn.SessionID,
		turn.Question,
		turn.ResolvedQuery,
		turn.Intent,
		turn.Confidence,
		turn.ModelSource,
		turn.PendingIntent,
		turn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("recording turn: %w", err)
	}
	return nil
}

// Recent returns the most recent turns for a session, newest first.
func (l *SQLiteLog) Recent(ctx context.Context, sessionID string, limit int) ([]domain.TurnRecord, error) {
	query := `
		SELECT id, session_id, question, resolved_query, intent,
		       confidence, model_source, pending_intent, created_at
		FROM turns
		WHERE session_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`

	rows, err := l.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("reading turns: %w", err)
	}
	defer rows.Close()

	var turns []domain.TurnRecord
	for rows.Next() {
		var t domain.TurnRecord
		err := rows.Scan(
			&t.ID, &t.SessionID, &t.Question, &t.ResolvedQuery, &t.Intent,
			&t.Confidence, &t.ModelSource, &t.PendingIntent, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// Close closes the underlying database.
func (l *SQLiteLog) Close() error {
	return l.db.Close()
}
