package sim

import (
	"errors"
	"log/slog"
	"slices"

	"cycles/internal/game"
)

// DefaultPreference is the order the autopilot paints empty sockets in,
// restricted to whatever the palette has unlocked.
var DefaultPreference = []game.SocketColor{
	game.ColorBlue,
	game.ColorPink,
	game.ColorGreen,
	game.ColorRed,
	game.ColorOrange,
}

// Autopilot plays greedily: it buys the cheapest affordable offer until
// nothing is affordable, then paints every empty socket.
type Autopilot struct {
	Preference []game.SocketColor
	log        *slog.Logger
}

func NewAutopilot(logger *slog.Logger) *Autopilot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Autopilot{Preference: DefaultPreference, log: logger}
}

// Act performs one round of decisions on w and returns what it bought.
func (a *Autopilot) Act(w *game.World) ([]game.UpgradeKind, error) {
	var bought []game.UpgradeKind
	for {
		offer, ok := cheapestAffordable(w)
		if !ok {
			break
		}
		err := w.Purchase(game.Purchase{Upgrade: offer.Upgrade, Cost: offer.Cost})
		if err != nil {
			return bought, err
		}
		bought = append(bought, offer.Upgrade)
	}
	if err := a.paint(w); err != nil {
		return bought, err
	}
	return bought, nil
}

func cheapestAffordable(w *game.World) (game.Offer, bool) {
	var best game.Offer
	found := false
	for _, o := range w.Offers() {
		if !w.Affordable(o) {
			continue
		}
		if !found || o.Cost.Less(best.Cost) {
			best, found = o, true
		}
	}
	return best, found
}

// paint fills empty sockets. The boundary socket gets the first
// preferred color; the rest rotate through the unlocked preferences.
func (a *Autopilot) paint(w *game.World) error {
	colors := unlockedPreference(a.Preference, w.Palette())
	if len(colors) == 0 {
		return nil
	}
	for _, r := range w.Rings() {
		for _, sid := range r.Sockets {
			s, ok := w.Socket(sid)
			if !ok || s.Color != game.ColorNone {
				continue
			}
			c := colors[s.Index%len(colors)]
			if err := w.SetSocketColor(sid, c, false); err != nil {
				if errors.Is(err, game.ErrColorLocked) {
					continue
				}
				return err
			}
			a.log.Debug("autopilot painted socket",
				slog.Int("ring", int(r.ID)),
				slog.Int("socket", s.Index),
				slog.String("color", c.String()),
			)
		}
	}
	return nil
}

func unlockedPreference(pref, palette []game.SocketColor) []game.SocketColor {
	out := make([]game.SocketColor, 0, len(pref))
	for _, c := range pref {
		if slices.Contains(palette, c) {
			out = append(out, c)
		}
	}
	return out
}
