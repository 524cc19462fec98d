package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an open database and creates the ledger table.
func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS ledger_entries (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			kind TEXT NOT NULL,
			ring INTEGER NOT NULL,
			clock REAL NOT NULL,
			amount TEXT NOT NULL,
			detail TEXT NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_ledger_run_seq ON ledger_entries(run_id, seq);`,
	}
	for _, query := range schemas {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return nil, fmt.Errorf("create ledger schema: %w", err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ledger tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO ledger_entries (id, run_id, seq, kind, ring, clock, amount, detail, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare ledger insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx,
			e.ID, e.RunID, e.Seq, string(e.Kind), e.Ring, e.At, e.Amount, e.Detail, e.RecordedAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("append ledger entry: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) ListByRun(ctx context.Context, runID string, limit int) ([]Entry, error) {
	query := `SELECT id, run_id, seq, kind, ring, clock, amount, detail, recorded_at FROM ledger_entries WHERE run_id = ? ORDER BY seq ASC`
	args := []any{runID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e          Entry
			kind       string
			recordedAt string
		)
		if err := rows.Scan(&e.ID, &e.RunID, &e.Seq, &kind, &e.Ring, &e.At, &e.Amount, &e.Detail, &recordedAt); err != nil {
			return nil, err
		}
		e.Kind = Kind(kind)
		if t, err := time.Parse(time.RFC3339Nano, recordedAt); err == nil {
			e.RecordedAt = t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
