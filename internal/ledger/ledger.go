// Package ledger keeps an append-only record of what a run paid out and
// spent. It is history only; a World is never rebuilt from it.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cycles/internal/game"

	"github.com/google/uuid"
)

type Kind string

const (
	KindSettlement Kind = "settlement"
	KindPurchase   Kind = "purchase"
)

var ErrClosed = errors.New("ledger closed")

type Entry struct {
	ID         string    `json:"id"`
	RunID      string    `json:"run_id"`
	Seq        int64     `json:"seq"`
	Kind       Kind      `json:"kind"`
	Ring       int       `json:"ring"`
	At         float64   `json:"at"`
	Amount     string    `json:"amount"`
	Detail     string    `json:"detail"`
	RecordedAt time.Time `json:"recorded_at"`
}

type Store interface {
	Append(ctx context.Context, entries ...Entry) error
	// ListByRun returns a run's entries in sequence order, at most limit
	// of them when limit > 0.
	ListByRun(ctx context.Context, runID string, limit int) ([]Entry, error)
	Close() error
}

// FromEvents keeps the settlements and purchases of an event batch.
// Sequence numbers are assigned by the caller.
func FromEvents(runID string, events []game.Event, now time.Time) []Entry {
	var out []Entry
	for _, e := range events {
		entry := Entry{
			ID:         uuid.NewString(),
			RunID:      runID,
			Ring:       int(e.Ring),
			At:         e.At,
			RecordedAt: now.UTC(),
		}
		switch e.Kind {
		case game.EventCycleComplete:
			entry.Kind = KindSettlement
			entry.Amount = e.Payout.String()
			entry.Detail = fmt.Sprintf("score=%s mult=%g bonuses=%d", e.CycleScore, e.Multiplier, len(e.Bonuses))
		case game.EventPurchase:
			if e.Upgrade == nil {
				continue
			}
			entry.Kind = KindPurchase
			entry.Ring = -1
			entry.Amount = e.Cost.String()
			entry.Detail = e.Upgrade.String()
		default:
			continue
		}
		out = append(out, entry)
	}
	return out
}
