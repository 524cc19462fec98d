package ledger

import (
	"context"
	"fmt"

	"cycles/internal/config"
	"cycles/internal/db"
)

// Open builds the store selected by kind. LedgerNone yields a nil Store.
func Open(ctx context.Context, kind, databaseURL, sqlitePath string) (Store, error) {
	switch kind {
	case config.LedgerNone, "":
		return nil, nil
	case config.LedgerPostgres:
		pool, err := db.Connect(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		store, err := NewPostgresStore(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return store, nil
	case config.LedgerSQLite:
		conn, err := db.OpenSQLite(ctx, sqlitePath)
		if err != nil {
			return nil, err
		}
		store, err := NewSQLiteStore(ctx, conn)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown ledger %q", kind)
	}
}
