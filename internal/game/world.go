package game

import (
	"fmt"
	"log/slog"
	"math"

	"cycles/internal/currency"
)

type RingID int

type SocketID int

type GridPoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// GridCoordinates walks a square spiral outward from the origin:
// 0 -> (0,0), 1 -> (1,0), 2 -> (1,1), 3 -> (0,1), 4 -> (-1,1), ...
// Ordinals 0..8 fill the inner 3x3 block.
func GridCoordinates(ordinal int) GridPoint {
	if ordinal < 0 {
		panic(fmt.Sprintf("game: negative grid ordinal %d", ordinal))
	}
	dirs := [4]GridPoint{{X: 1}, {Y: 1}, {X: -1}, {Y: -1}}
	p := GridPoint{}
	step, dir := 1, 0
	for remaining := ordinal; remaining > 0; {
		for pass := 0; pass < 2 && remaining > 0; pass++ {
			move := min(step, remaining)
			p.X += dirs[dir].X * move
			p.Y += dirs[dir].Y * move
			remaining -= move
			dir = (dir + 1) % 4
		}
		step++
	}
	return p
}

// RingCenter is the world-space center of the ring at grid cell p.
func RingCenter(p GridPoint) Vec2 {
	return Vec2{X: float64(p.X) * RingSpacing, Y: float64(p.Y) * RingSpacing}
}

type Socket struct {
	ID              SocketID    `json:"id"`
	Ring            RingID      `json:"ring"`
	Index           int         `json:"index"`
	Color           SocketColor `json:"color"`
	Radius          float64     `json:"radius"`
	Angle           float64     `json:"angle"`
	Position        Vec2        `json:"position"`
	LastTriggered   float64     `json:"last_triggered"`
	TriggerDuration float64     `json:"trigger_duration"`
	HasTriggered    bool        `json:"has_triggered"`
	// CooldownStart drives the cooldown sweep drawn on the socket.
	CooldownStart float64 `json:"cooldown_start"`
}

// Ready reports whether the cooldown gate is open at now.
func (s Socket) Ready(now float64) bool {
	return !s.HasTriggered || now >= s.LastTriggered+s.TriggerDuration
}

func (s Socket) CooldownRemaining(now float64) float64 {
	if !s.HasTriggered {
		return 0
	}
	return math.Max(0, s.LastTriggered+s.TriggerDuration-now)
}

type BonusKind string

const BonusOverflow BonusKind = "overflow"

type CycleBonus struct {
	Kind   BonusKind       `json:"kind"`
	Size   int             `json:"size"`
	Amount currency.Amount `json:"amount"`
}

func (b CycleBonus) Text() string {
	switch b.Kind {
	case BonusOverflow:
		return fmt.Sprintf("Overflow (%d) +$%s", b.Size, b.Amount.Scientific())
	default:
		return fmt.Sprintf("%s +$%s", b.Kind, b.Amount.Scientific())
	}
}

func (b CycleBonus) Tint() string {
	return TintCyan
}

type Ring struct {
	ID RingID `json:"id"`
	// Ordinal is the ring's position along the spiral grid; never reassigned.
	Ordinal         int             `json:"ordinal"`
	Grid            GridPoint       `json:"grid"`
	Sockets         []SocketID      `json:"sockets"`
	Cycle           []SocketColor   `json:"cycle"`
	PreviousCycle   []SocketColor   `json:"previous_cycle"`
	PreviousBonuses []CycleBonus    `json:"previous_bonuses"`
	CycleScore      currency.Amount `json:"cycle_score"`
	CycleMultiplier float64         `json:"cycle_multiplier"`
	Pending         currency.Amount `json:"pending"`
	CycleStart      float64         `json:"cycle_start"`
	CycleDuration   float64         `json:"cycle_duration"`
	CycleCount      currency.Amount `json:"cycle_count"`
	// Progress is the hand's sweep fraction as of the last tick.
	Progress float64 `json:"progress"`
}

func (r Ring) clone() Ring {
	r.Sockets = append([]SocketID(nil), r.Sockets...)
	r.Cycle = append([]SocketColor(nil), r.Cycle...)
	r.PreviousCycle = append([]SocketColor(nil), r.PreviousCycle...)
	r.PreviousBonuses = append([]CycleBonus(nil), r.PreviousBonuses...)
	return r
}

// Wallet is the global currency. Pending is display-only and recomputed
// every tick from the rings' projected payouts.
type Wallet struct {
	Amount  currency.Amount `json:"amount"`
	Pending currency.Amount `json:"pending"`
}

// World owns the whole simulation state: rings and sockets in stable
// arenas, the grid index, wallet, upgrade history and the unlock pool.
// It is not safe for concurrent use; Session serializes access.
type World struct {
	tuning  Tuning
	log     *slog.Logger
	now     float64
	rings   []Ring
	sockets []Socket
	index   map[GridPoint]RingID
	wallet  Wallet
	history UpgradeHistory
	unlocks []Unlock
	offers  []Offer
	palette []SocketColor
	outbox  []Event
}

// NewWorld builds the bootstrap state: one ring with a blue socket, blue
// in the palette, and the first offers realized.
func NewWorld(tuning Tuning, logger *slog.Logger) (*World, error) {
	if err := tuning.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	w := &World{
		tuning:  tuning,
		log:     logger,
		index:   make(map[GridPoint]RingID),
		history: make(UpgradeHistory),
		unlocks: DefaultUnlocks(),
		palette: []SocketColor{ColorBlue},
	}
	w.spawnRing(tuning.StartingSockets, 0, true)
	if err := w.Purchase(Purchase{Upgrade: NoUpgrade()}); err != nil {
		return nil, fmt.Errorf("bootstrap purchase: %w", err)
	}
	w.outbox = nil
	return w, nil
}

func (w *World) Tuning() Tuning {
	return w.tuning
}

func (w *World) Now() float64 {
	return w.now
}

func (w *World) Wallet() Wallet {
	return w.wallet
}

func (w *World) History() UpgradeHistory {
	out := make(UpgradeHistory, len(w.history))
	for u := range w.history {
		out[u] = struct{}{}
	}
	return out
}

func (w *World) Offers() []Offer {
	return append([]Offer(nil), w.offers...)
}

// PendingUnlocks is the number of rules not yet realized.
func (w *World) PendingUnlocks() int {
	return len(w.unlocks)
}

func (w *World) Palette() []SocketColor {
	return append([]SocketColor(nil), w.palette...)
}

func (w *World) ColorUnlocked(c SocketColor) bool {
	for _, p := range w.palette {
		if p == c {
			return true
		}
	}
	return false
}

func (w *World) RingCount() int {
	return len(w.rings)
}

func (w *World) Ring(id RingID) (Ring, bool) {
	if int(id) < 0 || int(id) >= len(w.rings) {
		return Ring{}, false
	}
	return w.rings[id].clone(), true
}

func (w *World) Rings() []Ring {
	out := make([]Ring, len(w.rings))
	for i := range w.rings {
		out[i] = w.rings[i].clone()
	}
	return out
}

// RingAt looks a ring up by grid coordinate.
func (w *World) RingAt(p GridPoint) (RingID, bool) {
	id, ok := w.index[p]
	return id, ok
}

func (w *World) Socket(id SocketID) (Socket, bool) {
	if int(id) < 0 || int(id) >= len(w.sockets) {
		return Socket{}, false
	}
	return w.sockets[id], true
}

// SocketAt resolves a socket by ring and position within the ring.
func (w *World) SocketAt(ring RingID, index int) (SocketID, error) {
	if int(ring) < 0 || int(ring) >= len(w.rings) {
		return 0, fmt.Errorf("%w: %d", ErrRingNotFound, ring)
	}
	r := &w.rings[ring]
	if index < 0 || index >= len(r.Sockets) {
		return 0, fmt.Errorf("%w: ring %d index %d", ErrSocketNotFound, ring, index)
	}
	return r.Sockets[index], nil
}

// BlueOrbCount counts blue sockets across every ring.
func (w *World) BlueOrbCount() int {
	count := 0
	for i := range w.sockets {
		if w.sockets[i].Color == ColorBlue {
			count++
		}
	}
	return count
}

// Flush hands out events produced outside Step, e.g. by Purchase.
func (w *World) Flush() []Event {
	out := w.outbox
	w.outbox = nil
	return out
}

func (w *World) emit(e Event) {
	e.At = w.now
	w.outbox = append(w.outbox, e)
}

func (w *World) ring(id RingID) *Ring {
	if int(id) < 0 || int(id) >= len(w.rings) {
		panic(fmt.Sprintf("game: dangling ring handle %d", id))
	}
	return &w.rings[id]
}

func (w *World) socket(id SocketID) *Socket {
	if int(id) < 0 || int(id) >= len(w.sockets) {
		panic(fmt.Sprintf("game: dangling socket handle %d", id))
	}
	return &w.sockets[id]
}

func (w *World) newestRing() *Ring {
	return w.ring(RingID(len(w.rings) - 1))
}

// spawnRing registers a ring at the spiral ordinal and lays out its
// sockets evenly. The bootstrap ring gets a blue socket at index 0.
func (w *World) spawnRing(numSockets, ordinal int, seedBlue bool) RingID {
	grid := GridCoordinates(ordinal)
	if _, taken := w.index[grid]; taken {
		panic(fmt.Sprintf("game: grid cell %v already holds a ring", grid))
	}
	id := RingID(len(w.rings))
	w.rings = append(w.rings, Ring{
		ID:              id,
		Ordinal:         ordinal,
		Grid:            grid,
		CycleMultiplier: 1,
		CycleStart:      w.now,
		CycleDuration:   w.tuning.CycleSeconds,
	})
	w.index[grid] = id

	for i := 0; i < numSockets; i++ {
		color := ColorNone
		if seedBlue && i == 0 {
			color = ColorBlue
		}
		w.newSocket(id, i, numSockets, color)
	}
	return id
}

func (w *World) newSocket(ring RingID, index, n int, color SocketColor) SocketID {
	id := SocketID(len(w.sockets))
	w.sockets = append(w.sockets, Socket{
		ID:              id,
		Ring:            ring,
		Index:           index,
		Color:           color,
		Radius:          DefaultSocketRadius,
		Angle:           SocketAngle(index, n),
		Position:        SocketPosition(index, n),
		TriggerDuration: TriggerDuration(color),
	})
	r := w.ring(ring)
	r.Sockets = append(r.Sockets, id)
	return id
}

// appendSocket adds an empty socket at the next index and re-lays out
// every socket of the ring on the new spacing.
func (w *World) appendSocket(ring RingID) SocketID {
	r := w.ring(ring)
	n := len(r.Sockets) + 1
	for _, sid := range r.Sockets {
		s := w.socket(sid)
		s.Angle = SocketAngle(s.Index, n)
		s.Position = SocketPosition(s.Index, n)
	}
	return w.newSocket(ring, n-1, n, ColorNone)
}

// SetSocketColor recolors a socket, or clears it to ColorNone when remove
// is set. A cooldown in progress is carried over: it ends at
// now+min(remaining, newDuration), so a swap can neither reset nor extend it.
func (w *World) SetSocketColor(id SocketID, color SocketColor, remove bool) error {
	if int(id) < 0 || int(id) >= len(w.sockets) {
		return fmt.Errorf("%w: %d", ErrSocketNotFound, id)
	}
	if remove {
		color = ColorNone
	}
	if !color.Valid() {
		return fmt.Errorf("unknown socket color %d", uint8(color))
	}
	if color != ColorNone && !w.ColorUnlocked(color) {
		return fmt.Errorf("%w: %s", ErrColorLocked, color)
	}

	s := w.socket(id)
	newDuration := TriggerDuration(color)
	if s.HasTriggered {
		remaining := s.LastTriggered + s.TriggerDuration - w.now
		if remaining > 0 {
			end := w.now + math.Min(remaining, newDuration)
			s.LastTriggered = end - newDuration
		}
	}
	s.Color = color
	s.TriggerDuration = newDuration

	w.emit(Event{
		Kind:   EventSocketColored,
		Ring:   s.Ring,
		Socket: s.Index,
		Color:  color,
	})
	return nil
}
