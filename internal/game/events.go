package game

import (
	"fmt"
	"strconv"

	"cycles/internal/currency"
)

type EventKind string

const (
	EventSocketTriggered EventKind = "socket_triggered"
	EventCycleComplete   EventKind = "cycle_complete"
	EventFloatingText    EventKind = "floating_text"
	EventSound           EventKind = "sound"
	EventPurchase        EventKind = "purchase"
	EventUnlock          EventKind = "unlock"
	EventSocketColored   EventKind = "socket_colored"
)

type SoundKey string

const (
	SoundClick         SoundKey = "click"
	SoundClick2        SoundKey = "click2"
	SoundCycleC        SoundKey = "cycle_c"
	SoundCycleD        SoundKey = "cycle_d"
	SoundCycleHighF    SoundKey = "cycle_high_f"
	SoundCycleHighG    SoundKey = "cycle_high_g"
	SoundCycleLowF     SoundKey = "cycle_low_f"
	SoundCycleLowG     SoundKey = "cycle_low_g"
	SoundUpgradeBought SoundKey = "upgrade_bought"
)

var (
	clickSounds = []SoundKey{SoundClick, SoundClick2}
	cycleSounds = []SoundKey{
		SoundCycleC, SoundCycleD, SoundCycleHighF,
		SoundCycleHighG, SoundCycleLowF, SoundCycleLowG,
	}
)

// Sound is a request to play a cue; the presentation decides how.
type Sound struct {
	Key    SoundKey `json:"key"`
	Volume float64  `json:"volume"`
}

const (
	TintWhite  = "#ffffff"
	TintYellow = "#facc15"
	TintOrange = "#f97316"
	TintCyan   = "#22d3ee"
)

// FloatingText is a short-lived label that scrolls up from Position.
type FloatingText struct {
	Text     string  `json:"text"`
	Tint     string  `json:"tint"`
	Size     float64 `json:"size"`
	Seconds  float64 `json:"seconds"`
	Distance float64 `json:"distance"`
	Position Vec2    `json:"position"`
}

// Event is one discrete thing the engine decided happened. Only the
// fields relevant to Kind are set.
type Event struct {
	Kind   EventKind   `json:"kind"`
	At     float64     `json:"at"`
	Ring   RingID      `json:"ring"`
	Socket int         `json:"socket"`
	Color  SocketColor `json:"color,omitempty"`

	ScoreDelta      currency.Amount `json:"score_delta,omitzero"`
	MultiplierDelta float64         `json:"multiplier_delta,omitempty"`

	NewCycleStart float64         `json:"new_cycle_start,omitempty"`
	Payout        currency.Amount `json:"payout,omitzero"`
	CycleScore    currency.Amount `json:"cycle_score,omitzero"`
	Multiplier    float64         `json:"multiplier,omitempty"`
	Bonuses       []CycleBonus    `json:"bonuses,omitempty"`

	Upgrade *UpgradeKind    `json:"upgrade,omitempty"`
	Cost    currency.Amount `json:"cost,omitzero"`

	Sound *Sound        `json:"sound,omitempty"`
	Text  *FloatingText `json:"text,omitempty"`
}

func (e Event) String() string {
	switch e.Kind {
	case EventSocketTriggered:
		return fmt.Sprintf("%.3f ring %d socket %d %s", e.At, e.Ring, e.Socket, e.Color)
	case EventCycleComplete:
		return fmt.Sprintf("%.3f ring %d cycle complete +$%s", e.At, e.Ring, e.Payout.Scientific())
	case EventPurchase, EventUnlock:
		if e.Upgrade != nil {
			return fmt.Sprintf("%.3f %s %s $%s", e.At, e.Kind, e.Upgrade, e.Cost.Scientific())
		}
	case EventFloatingText:
		if e.Text != nil {
			return fmt.Sprintf("%.3f text %q", e.At, e.Text.Text)
		}
	case EventSound:
		if e.Sound != nil {
			return fmt.Sprintf("%.3f sound %s", e.At, e.Sound.Key)
		}
	}
	return fmt.Sprintf("%.3f %s ring %d", e.At, e.Kind, e.Ring)
}

// Feedback receives the event batch of every mutating call, in order.
// Implementations must not call back into the Session.
type Feedback interface {
	Publish(events []Event)
}

type FeedbackFunc func(events []Event)

func (f FeedbackFunc) Publish(events []Event) {
	f(events)
}

func triggerText(scoreDelta currency.Amount, multDelta float64, at Vec2) *FloatingText {
	switch {
	case !scoreDelta.IsZero():
		return &FloatingText{
			Text:     "+$" + scoreDelta.Scientific(),
			Tint:     TintWhite,
			Size:     20,
			Seconds:  1,
			Distance: 100,
			Position: at,
		}
	case multDelta != 0:
		return &FloatingText{
			Text:     "+" + strconv.FormatFloat(multDelta, 'f', -1, 64) + "x",
			Tint:     TintYellow,
			Size:     26,
			Seconds:  1,
			Distance: 100,
			Position: at,
		}
	}
	return nil
}

// settlementTexts lays out the payout line, the score x multiplier line
// and one line per bonus, stacked downward from above the ring center.
func settlementTexts(payout, score currency.Amount, mult float64, bonuses []CycleBonus, center Vec2) []FloatingText {
	var out []FloatingText
	line := func(n int) Vec2 {
		return Vec2{X: center.X, Y: center.Y + 50 - 25*float64(n)}
	}
	if !payout.IsZero() {
		out = append(out, FloatingText{
			Text:     "+$" + payout.Scientific(),
			Tint:     TintOrange,
			Size:     36,
			Seconds:  2,
			Distance: 200,
			Position: line(0),
		})
	}
	above := 1
	if mult > 1 {
		above++
		out = append(out, FloatingText{
			Text:     "$" + score.String() + "x" + strconv.FormatFloat(mult, 'f', -1, 64),
			Tint:     TintOrange,
			Size:     20,
			Seconds:  2,
			Distance: 200,
			Position: line(above),
		})
	}
	for i, b := range bonuses {
		out = append(out, FloatingText{
			Text:     b.Text(),
			Tint:     b.Tint(),
			Size:     16,
			Seconds:  2,
			Distance: 200,
			Position: line(above + i + 1),
		})
	}
	return out
}
