package game

import (
	"errors"
	"testing"
)

func TestGridCoordinatesSpiral(t *testing.T) {
	want := []GridPoint{
		{0, 0}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1},
		{2, -1}, {2, 0}, {2, 1}, {2, 2}, {1, 2},
	}
	for i, w := range want {
		if got := GridCoordinates(i); got != w {
			t.Fatalf("ordinal=%d got=%v want=%v", i, got, w)
		}
	}

	seen := make(map[GridPoint]int)
	for i := 0; i < 100; i++ {
		p := GridCoordinates(i)
		if prev, dup := seen[p]; dup {
			t.Fatalf("ordinals %d and %d share cell %v", prev, i, p)
		}
		seen[p] = i
	}
}

func TestNewWorldBootstrap(t *testing.T) {
	w := newTestWorld(t)

	if w.RingCount() != 1 {
		t.Fatalf("got=%d rings want=1", w.RingCount())
	}
	r, _ := w.Ring(0)
	if len(r.Sockets) != DefaultStartingSockets || r.Grid != (GridPoint{}) {
		t.Fatalf("unexpected bootstrap ring %+v", r)
	}
	first, _ := w.Socket(r.Sockets[0])
	second, _ := w.Socket(r.Sockets[1])
	if first.Color != ColorBlue || second.Color != ColorNone {
		t.Fatalf("got colors %s,%s want blue,none", first.Color, second.Color)
	}
	if got := w.Palette(); len(got) != 1 || got[0] != ColorBlue {
		t.Fatalf("got palette=%v want [blue]", got)
	}
	if len(w.History()) != 0 {
		t.Fatalf("bootstrap purchase must not be recorded")
	}
	offers := w.Offers()
	if len(offers) != 1 || offers[0].Upgrade != AddSocket(1) || offers[0].Cost.String() != "4" {
		t.Fatalf("got offers=%v", offers)
	}
	if w.PendingUnlocks() != len(DefaultUnlocks())-1 {
		t.Fatalf("got=%d pending unlocks", w.PendingUnlocks())
	}
	if len(w.Flush()) != 0 {
		t.Fatalf("bootstrap should not leave events behind")
	}
}

func TestAppendSocketRelayout(t *testing.T) {
	w := newTestWorld(t)
	r, _ := w.Ring(0)
	oldAngle := map[SocketID]float64{}
	for _, sid := range r.Sockets {
		s, _ := w.Socket(sid)
		oldAngle[sid] = s.Angle
	}

	added := w.appendSocket(0)

	r, _ = w.Ring(0)
	n := len(r.Sockets)
	if n != 3 || r.Sockets[2] != added {
		t.Fatalf("got sockets=%v", r.Sockets)
	}
	for i, sid := range r.Sockets {
		s, _ := w.Socket(sid)
		if s.Index != i {
			t.Fatalf("socket %d has index %d", i, s.Index)
		}
		if !approx(s.Angle, SocketAngle(i, n)) || s.Position != SocketPosition(i, n) {
			t.Fatalf("socket %d not re-laid out: angle=%v", i, s.Angle)
		}
		if old, ok := oldAngle[sid]; ok && i != 0 && approx(old, s.Angle) {
			t.Fatalf("socket %d kept its old angle", i)
		}
	}
	s, _ := w.Socket(added)
	if s.Color != ColorNone {
		t.Fatalf("new socket got color %s", s.Color)
	}
}

func TestSetSocketColorRejectsLockedColor(t *testing.T) {
	w := newTestWorld(t)
	id, _ := w.SocketAt(0, 1)
	if err := w.SetSocketColor(id, ColorRed, false); !errors.Is(err, ErrColorLocked) {
		t.Fatalf("got=%v want ErrColorLocked", err)
	}
	if err := w.SetSocketColor(id, ColorBlue, false); err != nil {
		t.Fatalf("paint blue: %v", err)
	}
	if err := w.SetSocketColor(id, ColorRed, true); err != nil {
		t.Fatalf("removal should ignore the color: %v", err)
	}
	s, _ := w.Socket(id)
	if s.Color != ColorNone || s.TriggerDuration != 0 {
		t.Fatalf("got %+v want empty socket", s)
	}
	if _, err := w.SocketAt(0, 9); !errors.Is(err, ErrSocketNotFound) {
		t.Fatalf("got=%v want ErrSocketNotFound", err)
	}
	if _, err := w.SocketAt(4, 0); !errors.Is(err, ErrRingNotFound) {
		t.Fatalf("got=%v want ErrRingNotFound", err)
	}
}

func TestRecolorKeepsRemainingCooldown(t *testing.T) {
	w := newTestWorld(t)
	unlockPalette(w)
	id, _ := w.SocketAt(0, 0)

	w.now = 1
	if err := w.resolve(trigger{ring: 0, index: 0}); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	// longer color: the 0.3s left must not grow to 14s
	w.now = 1.1
	paint(t, w, 0, 0, ColorPink)
	s, _ := w.Socket(id)
	if !approx(s.CooldownRemaining(w.now), 0.3) || s.TriggerDuration != 14 {
		t.Fatalf("got remaining=%v duration=%v", s.CooldownRemaining(w.now), s.TriggerDuration)
	}

	// shorter color: remaining is capped by the new duration
	w.now = 1.2
	paint(t, w, 0, 0, ColorOrange)
	s, _ = w.Socket(id)
	if !approx(s.CooldownRemaining(w.now), 0.2) {
		t.Fatalf("got remaining=%v want 0.2", s.CooldownRemaining(w.now))
	}
	if s.Ready(1.39) || !s.Ready(1.41) {
		t.Fatalf("cooldown should end at 1.4")
	}
}

func TestRecolorIdleSocketIsReady(t *testing.T) {
	w := newTestWorld(t)
	unlockPalette(w)
	paint(t, w, 0, 1, ColorPink)
	id, _ := w.SocketAt(0, 1)
	s, _ := w.Socket(id)
	if !s.Ready(0) {
		t.Fatalf("a socket that never fired should be ready")
	}
}
