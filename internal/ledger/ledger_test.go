package ledger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"cycles/internal/currency"
	"cycles/internal/db"
	"cycles/internal/game"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	ctx := context.Background()
	conn, err := db.OpenSQLite(ctx, filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	store, err := NewSQLiteStore(ctx, conn)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestFromEvents(t *testing.T) {
	upgrade := game.AddSocket(1)
	events := []game.Event{
		{Kind: game.EventSocketTriggered, Ring: 0},
		{Kind: game.EventCycleComplete, Ring: 2, At: 8, Payout: currency.FromUint64(12), CycleScore: currency.FromUint64(6), Multiplier: 2},
		{Kind: game.EventPurchase, Upgrade: &upgrade, Cost: currency.FromUint64(4)},
		{Kind: game.EventPurchase},
	}
	got := FromEvents("run-1", events, time.Unix(0, 0))
	if len(got) != 2 {
		t.Fatalf("got %d entries want 2", len(got))
	}
	if got[0].Kind != KindSettlement || got[0].Amount != "12" || got[0].Ring != 2 || got[0].Detail != "score=6 mult=2 bonuses=0" {
		t.Fatalf("unexpected settlement %+v", got[0])
	}
	if got[1].Kind != KindPurchase || got[1].Amount != "4" || got[1].Detail != "add_socket(1)" || got[1].Ring != -1 {
		t.Fatalf("unexpected purchase %+v", got[1])
	}
	if got[0].ID == "" || got[0].ID == got[1].ID {
		t.Fatalf("entries need distinct ids")
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	entries := []Entry{
		{ID: "a", RunID: "run-1", Seq: 2, Kind: KindPurchase, Ring: -1, At: 5, Amount: "4", Detail: "add_socket(1)", RecordedAt: now},
		{ID: "b", RunID: "run-1", Seq: 1, Kind: KindSettlement, Ring: 0, At: 4, Amount: "123456789012345678901234567890", RecordedAt: now},
		{ID: "c", RunID: "run-2", Seq: 1, Kind: KindSettlement, Amount: "1", RecordedAt: now},
	}
	if err := store.Append(ctx, entries...); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := store.ListByRun(ctx, "run-1", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("got %+v", got)
	}
	if got[0].Amount != "123456789012345678901234567890" || !got[0].RecordedAt.Equal(now) {
		t.Fatalf("lost precision: %+v", got[0])
	}

	limited, err := store.ListByRun(ctx, "run-1", 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("got=%v err=%v", limited, err)
	}

	dup := entries[0]
	dup.ID = "d"
	if err := store.Append(ctx, dup); err == nil {
		t.Fatalf("duplicate (run, seq) should be rejected")
	}
}

func TestRecorderWritesSessionStream(t *testing.T) {
	store := openTestStore(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	session, err := game.NewSession(game.DefaultTuning(), logger)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	rec := NewRecorder(store, session.RunID(), logger, 64)
	session.Subscribe(rec)

	for now := 0.5; now <= 20; now += 0.5 {
		if err := session.Tick(now); err != nil {
			t.Fatalf("tick: %v", err)
		}
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := rec.Close(); !errors.Is(err, ErrClosed) {
		t.Fatalf("got=%v want ErrClosed", err)
	}

	got, err := store.ListByRun(context.Background(), session.RunID(), 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 4 || rec.Written() != 4 || rec.Dropped() != 0 {
		t.Fatalf("got %d entries, written=%d dropped=%d", len(got), rec.Written(), rec.Dropped())
	}
	for i, e := range got {
		if e.Seq != int64(i+1) || e.Kind != KindSettlement {
			t.Fatalf("entry %d: %+v", i, e)
		}
	}

	// publishing after close is a no-op
	rec.Publish([]game.Event{{Kind: game.EventCycleComplete}})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, "none", "", "")
	if err != nil || store != nil {
		t.Fatalf("none: got store=%v err=%v", store, err)
	}
	store, err = Open(ctx, "sqlite", "", filepath.Join(t.TempDir(), "nested", "ledger.db"))
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	if _, ok := store.(*SQLiteStore); !ok {
		t.Fatalf("got %T want *SQLiteStore", store)
	}
	_ = store.Close()
	if _, err := Open(ctx, "redis", "", ""); err == nil {
		t.Fatalf("unknown ledger accepted")
	}
}
