package ledger

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"cycles/internal/game"
)

const appendTimeout = 10 * time.Second

// Recorder is a game.Feedback that writes settlements and purchases to a
// Store from its own goroutine, so a slow database never stalls a tick.
// Batches that arrive while the buffer is full are dropped and counted.
type Recorder struct {
	store   Store
	runID   string
	log     *slog.Logger
	queue   chan []Entry
	done    chan struct{}
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
	written atomic.Int64
}

func NewRecorder(store Store, runID string, logger *slog.Logger, buffer int) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	if buffer < 1 {
		buffer = 1
	}
	r := &Recorder{
		store: store,
		runID: runID,
		log:   logger,
		queue: make(chan []Entry, buffer),
		done:  make(chan struct{}),
	}
	go r.loop()
	return r
}

func (r *Recorder) RunID() string {
	return r.runID
}

func (r *Recorder) Publish(events []game.Event) {
	entries := FromEvents(r.runID, events, time.Now())
	if len(entries) == 0 {
		return
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}
	select {
	case r.queue <- entries:
	default:
		n := r.dropped.Add(int64(len(entries)))
		r.log.Warn("ledger buffer full, dropping entries", slog.Int("batch", len(entries)), slog.Int64("dropped_total", n))
	}
}

func (r *Recorder) loop() {
	defer close(r.done)
	var seq int64
	for batch := range r.queue {
		for i := range batch {
			seq++
			batch[i].Seq = seq
		}
		ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
		err := r.store.Append(ctx, batch...)
		cancel()
		if err != nil {
			r.log.Error("ledger append failed", slog.Any("err", err), slog.Int("entries", len(batch)))
			continue
		}
		r.written.Add(int64(len(batch)))
	}
}

// Close stops accepting events and waits for queued batches to be
// written. It does not close the store.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()
	<-r.done
	return nil
}

func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

func (r *Recorder) Written() int64 {
	return r.written.Load()
}
