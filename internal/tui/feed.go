package tui

import (
	"sync"

	"cycles/internal/game"
)

// feed collects floating texts published by the session until they
// expire on the world clock.
type feed struct {
	mu    sync.Mutex
	texts []game.Event
	max   int
}

func newFeed(limit int) *feed {
	return &feed{max: limit}
}

func (f *feed) Publish(events []game.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range events {
		if e.Kind != game.EventFloatingText || e.Text == nil {
			continue
		}
		f.texts = append(f.texts, e)
	}
	if over := len(f.texts) - f.max; over > 0 {
		f.texts = append(f.texts[:0:0], f.texts[over:]...)
	}
}

// Live drops expired texts and returns the rest, newest last.
func (f *feed) Live(now float64) []game.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.texts[:0]
	for _, e := range f.texts {
		if now-e.At <= e.Text.Seconds {
			kept = append(kept, e)
		}
	}
	f.texts = kept
	return append([]game.Event(nil), kept...)
}
