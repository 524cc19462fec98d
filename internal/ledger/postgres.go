package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	schemas := []string{
		`CREATE SCHEMA IF NOT EXISTS cycles`,
		`CREATE TABLE IF NOT EXISTS cycles.ledger_entries (
			id UUID PRIMARY KEY,
			run_id UUID NOT NULL,
			seq BIGINT NOT NULL,
			kind TEXT NOT NULL,
			ring INTEGER NOT NULL,
			clock DOUBLE PRECISION NOT NULL,
			amount NUMERIC NOT NULL,
			detail TEXT NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL,
			UNIQUE (run_id, seq)
		)`,
	}
	for _, query := range schemas {
		if _, err := pool.Exec(ctx, query); err != nil {
			return nil, fmt.Errorf("create ledger schema: %w", err)
		}
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Append(ctx context.Context, entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin ledger tx: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(`
			INSERT INTO cycles.ledger_entries (id, run_id, seq, kind, ring, clock, amount, detail, recorded_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8, $9)
		`, e.ID, e.RunID, e.Seq, string(e.Kind), e.Ring, e.At, e.Amount, e.Detail, e.RecordedAt)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("append ledger entries: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) ListByRun(ctx context.Context, runID string, limit int) ([]Entry, error) {
	query := `
		SELECT id::text, run_id::text, seq, kind, ring, clock, amount::text, detail, recorded_at
		FROM cycles.ledger_entries
		WHERE run_id = $1
		ORDER BY seq ASC
	`
	args := []any{runID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e    Entry
			kind string
		)
		if err := rows.Scan(&e.ID, &e.RunID, &e.Seq, &kind, &e.Ring, &e.At, &e.Amount, &e.Detail, &e.RecordedAt); err != nil {
			return nil, err
		}
		e.Kind = Kind(kind)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
