package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session owns one World and serializes every mutation: ticks,
// purchases and recolors each run inside the same lock, and the events
// they produce are published to the sinks before the lock is released.
type Session struct {
	mu      sync.Mutex
	world   *World
	display *DisplayTracker
	log     *slog.Logger
	sinks   []Feedback
	runID   string
}

func NewSession(tuning Tuning, logger *slog.Logger, sinks ...Feedback) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	runID := uuid.NewString()
	logger = logger.With(slog.String("run_id", runID))
	world, err := NewWorld(tuning, logger)
	if err != nil {
		return nil, err
	}
	return &Session{
		world:   world,
		display: NewDisplayTracker(),
		log:     logger,
		sinks:   sinks,
		runID:   runID,
	}, nil
}

func (s *Session) RunID() string {
	return s.runID
}

// Subscribe adds a sink for every subsequent event batch.
func (s *Session) Subscribe(f Feedback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinks = append(s.sinks, f)
}

func (s *Session) Now() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.Now()
}

// Tick advances the world to now.
func (s *Session) Tick(now float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	events, err := s.world.Step(now)
	s.display.Sync(s.world.Rings())
	s.publish(events)
	return err
}

func (s *Session) Purchase(p Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.world.Purchase(p)
	s.publish(s.world.Flush())
	return err
}

func (s *Session) SetSocketColor(in SocketColorInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := s.world.SocketAt(in.Ring, in.Socket)
	if err != nil {
		return err
	}
	if err := s.world.SetSocketColor(id, in.Color, in.Remove); err != nil {
		return err
	}
	s.publish(s.world.Flush())
	return nil
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.world.View(s.display)
	snap.RunID = s.runID
	return snap
}

func (s *Session) Offers() []OfferView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.OfferViews()
}

// Do runs fn with exclusive access to the world. Events fn causes are
// published when it returns.
func (s *Session) Do(fn func(w *World) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := fn(s.world)
	s.publish(s.world.Flush())
	return err
}

// Run ticks the session from the wall clock every interval until ctx is
// done. Time continues from the world's current clock.
func (s *Session) Run(ctx context.Context, every time.Duration) error {
	if every <= 0 {
		return fmt.Errorf("tick interval must be > 0, got %s", every)
	}
	base := s.Now()
	start := time.Now()
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	s.log.Info("session running", slog.Duration("every", every))
	for {
		select {
		case <-ctx.Done():
			s.log.Info("session stopped", slog.Float64("now", s.Now()))
			return ctx.Err()
		case <-ticker.C:
			if err := s.Tick(base + time.Since(start).Seconds()); err != nil {
				s.log.Error("tick failed", slog.Any("err", err))
			}
		}
	}
}

func (s *Session) publish(events []Event) {
	if len(events) == 0 {
		return
	}
	for _, sink := range s.sinks {
		sink.Publish(events)
	}
}
