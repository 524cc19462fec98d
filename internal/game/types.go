package game

import "cycles/internal/currency"

type Snapshot struct {
	RunID          string          `json:"run_id"`
	Now            float64         `json:"now"`
	Wallet         WalletView      `json:"wallet"`
	TotalCycles    currency.Amount `json:"total_cycles"`
	Rings          []RingView      `json:"rings"`
	Offers         []OfferView     `json:"offers"`
	Palette        []PaletteEntry  `json:"palette"`
	History        []UpgradeKind   `json:"history"`
	PendingUnlocks int             `json:"pending_unlocks"`
}

type WalletView struct {
	Amount      currency.Amount `json:"amount"`
	Pending     currency.Amount `json:"pending"`
	AmountText  string          `json:"amount_text"`
	PendingText string          `json:"pending_text"`
}

type RingView struct {
	ID              RingID          `json:"id"`
	Ordinal         int             `json:"ordinal"`
	Grid            GridPoint       `json:"grid"`
	Center          Vec2            `json:"center"`
	Progress        float64         `json:"progress"`
	CycleStart      float64         `json:"cycle_start"`
	CycleDuration   float64         `json:"cycle_duration"`
	Cycle           []SocketColor   `json:"cycle"`
	PreviousCycle   []SocketColor   `json:"previous_cycle"`
	PreviousBonuses []CycleBonus    `json:"previous_bonuses"`
	CycleScore      currency.Amount `json:"cycle_score"`
	CycleMultiplier float64         `json:"cycle_multiplier"`
	Pending         currency.Amount `json:"pending"`
	CycleCount      currency.Amount `json:"cycle_count"`
	Sockets         []SocketView    `json:"sockets"`
	Panels          []Panel         `json:"panels"`
}

type SocketView struct {
	Index             int         `json:"index"`
	Color             SocketColor `json:"color"`
	Angle             float64     `json:"angle"`
	Position          Vec2        `json:"position"`
	PositionPct       float64     `json:"position_pct"`
	Radius            float64     `json:"radius"`
	TriggerDuration   float64     `json:"trigger_duration"`
	CooldownStart     float64     `json:"cooldown_start"`
	CooldownRemaining float64     `json:"cooldown_remaining"`
	Ready             bool        `json:"ready"`
}

type OfferView struct {
	Upgrade    UpgradeKind     `json:"upgrade"`
	Cost       currency.Amount `json:"cost"`
	Text       string          `json:"text"`
	Affordable bool            `json:"affordable"`
}

// PaletteEntry is one hotbar slot.
type PaletteEntry struct {
	Color       SocketColor `json:"color"`
	Hotkey      uint32      `json:"hotkey"`
	Display     string      `json:"display"`
	Highlight   string      `json:"highlight"`
	Description string      `json:"description"`
}

type SocketColorInput struct {
	Ring   RingID      `json:"ring"`
	Socket int         `json:"socket"`
	Color  SocketColor `json:"color"`
	Remove bool        `json:"remove"`
}

// View renders the world into its JSON snapshot. display may be nil.
func (w *World) View(display *DisplayTracker) Snapshot {
	snap := Snapshot{
		Now: w.now,
		Wallet: WalletView{
			Amount:      w.wallet.Amount,
			Pending:     w.wallet.Pending,
			AmountText:  w.wallet.Amount.Scientific(),
			PendingText: w.wallet.Pending.Scientific(),
		},
		TotalCycles:    currency.Zero(),
		Rings:          make([]RingView, 0, len(w.rings)),
		Offers:         w.OfferViews(),
		Palette:        w.PaletteEntries(),
		History:        w.history.List(),
		PendingUnlocks: len(w.unlocks),
	}
	for i := range w.rings {
		r := w.rings[i].clone()
		snap.TotalCycles = snap.TotalCycles.Add(r.CycleCount)
		rv := RingView{
			ID:              r.ID,
			Ordinal:         r.Ordinal,
			Grid:            r.Grid,
			Center:          RingCenter(r.Grid),
			Progress:        r.Progress,
			CycleStart:      r.CycleStart,
			CycleDuration:   r.CycleDuration,
			Cycle:           r.Cycle,
			PreviousCycle:   r.PreviousCycle,
			PreviousBonuses: r.PreviousBonuses,
			CycleScore:      r.CycleScore,
			CycleMultiplier: r.CycleMultiplier,
			Pending:         r.Pending,
			CycleCount:      r.CycleCount,
			Sockets:         make([]SocketView, 0, len(r.Sockets)),
		}
		n := len(r.Sockets)
		for _, sid := range r.Sockets {
			s := w.sockets[sid]
			rv.Sockets = append(rv.Sockets, SocketView{
				Index:             s.Index,
				Color:             s.Color,
				Angle:             s.Angle,
				Position:          s.Position,
				PositionPct:       SocketPositionPct(s.Index, n),
				Radius:            s.Radius,
				TriggerDuration:   s.TriggerDuration,
				CooldownStart:     s.CooldownStart,
				CooldownRemaining: s.CooldownRemaining(w.now),
				Ready:             s.Ready(w.now),
			})
		}
		if display != nil {
			rv.Panels = display.Panels(r.ID)
		}
		snap.Rings = append(snap.Rings, rv)
	}
	return snap
}

func (w *World) OfferViews() []OfferView {
	out := make([]OfferView, 0, len(w.offers))
	for _, o := range w.offers {
		out = append(out, OfferView{
			Upgrade:    o.Upgrade,
			Cost:       o.Cost,
			Text:       o.Text(),
			Affordable: w.Affordable(o),
		})
	}
	return out
}

func (w *World) PaletteEntries() []PaletteEntry {
	out := make([]PaletteEntry, 0, len(w.palette))
	for _, c := range w.palette {
		out = append(out, PaletteEntry{
			Color:       c,
			Hotkey:      HotkeyOrdinal(c),
			Display:     DisplayColor(c),
			Highlight:   HighlightColor(c),
			Description: Describe(c, w.history, w.tuning),
		})
	}
	return out
}
