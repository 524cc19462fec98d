package game

import (
	"fmt"
	"log/slog"
	"math"

	"cycles/internal/currency"
)

type trigger struct {
	ring  RingID
	index int
}

// Step advances every ring to now and resolves all crossings, cascades
// and settlements. A clock that moves backwards is held at the last tick.
//
// Crossings and cycle ends of all rings are resolved in time order at the
// instant they happen, so the outcome does not depend on how coarse the
// ticks are, even when triggers reach across rings.
func (w *World) Step(now float64) ([]Event, error) {
	if math.IsNaN(now) {
		panic("game: NaN clock")
	}
	if now < w.now {
		w.log.Debug("clock moved backwards", slog.Float64("now", now), slog.Float64("last", w.now))
		now = w.now
	}

	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for {
		next, ok := w.nextInstant(now)
		if !ok {
			break
		}
		w.now = next.at
		r := w.ring(next.ring)
		if next.boundary {
			w.completeCycle(next.ring, next.at)
			// the boundary socket opens the new cycle
			keep(w.resolve(trigger{ring: next.ring, index: 0}))
			continue
		}
		r.Progress = next.pct
		keep(w.resolve(trigger{ring: next.ring, index: next.index}))
	}

	for i := range w.rings {
		r := &w.rings[i]
		r.Progress = (now - r.CycleStart) / r.CycleDuration
	}
	w.now = now
	w.recomputePending()
	return w.Flush(), firstErr
}

// instant is a scheduled crossing or cycle end within a step.
type instant struct {
	at       float64
	ring     RingID
	index    int
	pct      float64
	boundary bool
}

// nextInstant finds the earliest unprocessed crossing or cycle end at or
// before now across all rings. Ties go to the lower ring ID.
func (w *World) nextInstant(now float64) (instant, bool) {
	var best instant
	found := false
	for id := range w.rings {
		c, ok := w.ringInstant(RingID(id), now)
		if ok && (!found || c.at < best.at) {
			best, found = c, true
		}
	}
	return best, found
}

// ringInstant is the ring's next event: the first non-boundary socket
// whose position lies in (progress, reached], in the order the hand
// reaches them, else the cycle end once now has passed it.
func (w *World) ringInstant(id RingID, now float64) (instant, bool) {
	r := w.ring(id)
	reached := math.Min((now-r.CycleStart)/r.CycleDuration, 1)
	n := len(r.Sockets)
	for i := n - 1; i >= 1; i-- {
		pct := SocketPositionPct(i, n)
		if pct <= r.Progress || pct > reached {
			continue
		}
		return instant{at: r.CycleStart + pct*r.CycleDuration, ring: id, index: i, pct: pct}, true
	}
	if now-r.CycleStart > r.CycleDuration {
		return instant{at: r.CycleStart + r.CycleDuration, ring: id, boundary: true}, true
	}
	return instant{}, false
}

// resolve drains the cascade started by origin. Each socket is attempted
// at most once per origin.
func (w *World) resolve(origin trigger) error {
	queue := []trigger{origin}
	visited := make(map[trigger]struct{})
	attempts := 0
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		if _, seen := visited[t]; seen {
			continue
		}
		visited[t] = struct{}{}

		attempts++
		if attempts > w.tuning.CascadeLimit {
			w.log.Error("trigger cascade exceeded limit",
				slog.Int("ring", int(origin.ring)),
				slog.Int("socket", origin.index),
				slog.Int("limit", w.tuning.CascadeLimit),
				slog.Int("queued", len(queue)),
			)
			return fmt.Errorf("%w: ring %d socket %d", ErrCascadeOverflow, origin.ring, origin.index)
		}
		queue = append(queue, w.fire(t)...)
	}
	return nil
}

// fire applies one trigger attempt and returns the triggers it causes.
func (w *World) fire(t trigger) []trigger {
	r := w.ring(t.ring)
	if t.index < 0 || t.index >= len(r.Sockets) {
		return nil
	}
	s := w.socket(r.Sockets[t.index])
	if s.Color == ColorNone || !s.Ready(w.now) {
		return nil
	}

	if len(w.rings) == 1 {
		w.emit(Event{
			Kind:  EventSound,
			Ring:  t.ring,
			Sound: &Sound{Key: clickSounds[s.Index%len(clickSounds)], Volume: 0.5},
		})
	}

	oldScore, oldMult := r.CycleScore, r.CycleMultiplier
	r.Cycle = append(r.Cycle, s.Color)

	var next []trigger
	switch s.Color {
	case ColorBlue:
		if w.history.Has(EnhanceColor(ColorBlue, 1)) {
			r.CycleScore = r.CycleScore.Add(currency.FromInt(w.BlueOrbCount()))
		} else {
			r.CycleScore = r.CycleScore.Add(currency.FromUint64(1))
		}
	case ColorRed:
		n := len(r.Sockets)
		prev, after := (s.Index+n-1)%n, (s.Index+1)%n
		next = append(next, trigger{t.ring, prev}, trigger{t.ring, after})
		if w.history.Has(EnhanceColor(ColorRed, 1)) {
			for _, dx := range []int{1, -1} {
				neighbor, ok := w.index[GridPoint{X: r.Grid.X + dx, Y: r.Grid.Y}]
				if !ok {
					continue
				}
				next = append(next, trigger{neighbor, prev}, trigger{neighbor, after})
			}
		}
	case ColorGreen:
		r.CycleScore = r.CycleScore.Add(currency.FromInt(len(r.PreviousCycle)))
		if w.history.Has(EnhanceColor(ColorGreen, 1)) {
			r.CycleScore = r.CycleScore.Add(w.wallet.Pending.MulFloat(w.tuning.GreenPendingShare))
		}
	case ColorOrange:
		w.reduceCooldowns(r, s.ID)
	case ColorPink:
		r.CycleMultiplier++
	}

	r.Pending = r.CycleScore.MulFloat(r.CycleMultiplier)
	s.LastTriggered = w.now
	s.HasTriggered = true
	s.CooldownStart = w.now

	scoreDelta := r.CycleScore.SubSaturating(oldScore)
	multDelta := r.CycleMultiplier - oldMult
	w.emit(Event{
		Kind:            EventSocketTriggered,
		Ring:            t.ring,
		Socket:          s.Index,
		Color:           s.Color,
		ScoreDelta:      scoreDelta,
		MultiplierDelta: multDelta,
	})
	center := RingCenter(r.Grid)
	at := Vec2{X: center.X + s.Position.X, Y: center.Y + s.Position.Y}
	if text := triggerText(scoreDelta, multDelta, at); text != nil {
		w.emit(Event{Kind: EventFloatingText, Ring: t.ring, Socket: s.Index, Text: text})
	}
	return next
}

// reduceCooldowns pulls the last trigger time of every other triggered
// socket on the ring into the past, never below zero.
func (w *World) reduceCooldowns(r *Ring, source SocketID) {
	amount := w.tuning.OrangeReductionSeconds
	if w.history.Has(EnhanceColor(ColorOrange, 1)) {
		amount *= 2
	}
	for _, sid := range r.Sockets {
		if sid == source {
			continue
		}
		other := w.socket(sid)
		if !other.HasTriggered {
			continue
		}
		other.LastTriggered = math.Max(other.LastTriggered-amount, 0)
		other.CooldownStart = other.LastTriggered
	}
}

func cycleBonuses(r *Ring) []CycleBonus {
	var out []CycleBonus
	if excess := len(r.Cycle) - len(r.Sockets); excess > 0 {
		out = append(out, CycleBonus{
			Kind:   BonusOverflow,
			Size:   excess,
			Amount: currency.FromInt(excess),
		})
	}
	return out
}

// completeCycle settles the ring's cycle into the wallet at time end and
// starts the next cycle there, so overshoot never accumulates as drift.
func (w *World) completeCycle(id RingID, end float64) {
	r := w.ring(id)
	w.now = end

	bonuses := cycleBonuses(r)
	bonusTotal := currency.Zero()
	for _, b := range bonuses {
		bonusTotal = bonusTotal.Add(b.Amount)
	}
	score, mult := r.CycleScore, r.CycleMultiplier
	payout := score.MulFloat(mult).Add(bonusTotal)

	r.CycleCount = r.CycleCount.Add(currency.FromUint64(1))
	r.PreviousBonuses = bonuses
	r.PreviousCycle = r.Cycle
	w.wallet.Amount = w.wallet.Amount.Add(payout)

	w.emit(Event{
		Kind:          EventCycleComplete,
		Ring:          id,
		NewCycleStart: end,
		Payout:        payout,
		CycleScore:    score,
		Multiplier:    mult,
		Bonuses:       bonuses,
	})
	if !payout.IsZero() && r.Ordinal < 9 {
		w.emit(Event{
			Kind:  EventSound,
			Ring:  id,
			Sound: &Sound{Key: cycleSounds[(r.Ordinal+len(r.PreviousCycle))%len(cycleSounds)], Volume: 1},
		})
	}
	for _, text := range settlementTexts(payout, score, mult, bonuses, RingCenter(r.Grid)) {
		w.emit(Event{Kind: EventFloatingText, Ring: id, Text: &text})
	}

	r.Cycle = nil
	r.CycleScore = currency.Zero()
	r.CycleMultiplier = 1
	r.Pending = currency.Zero()
	r.CycleStart = end
	r.Progress = 0
}

func (w *World) recomputePending() {
	total := currency.Zero()
	for i := range w.rings {
		total = total.Add(w.rings[i].Pending)
	}
	w.wallet.Pending = total
}
