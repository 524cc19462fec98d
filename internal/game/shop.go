package game

import (
	"fmt"
	"log/slog"
)

// Purchase buys an offered upgrade at its offered cost. A rejected
// purchase returns an error and leaves the world untouched. The None
// upgrade only runs unlock resolution and is never recorded.
func (w *World) Purchase(p Purchase) error {
	u := p.Upgrade.Normalize()
	if u.Type == UpgradeNone {
		w.resolveUnlocks()
		return nil
	}

	idx := w.offerIndex(u)
	if idx < 0 {
		w.log.Debug("purchase rejected", slog.String("upgrade", u.String()), slog.String("reason", "not offered"))
		return fmt.Errorf("%w: %s", ErrUpgradeNotOffered, u)
	}
	offer := w.offers[idx]
	if offer.Cost.Cmp(p.Cost) != 0 {
		w.log.Debug("purchase rejected", slog.String("upgrade", u.String()), slog.String("reason", "stale cost"))
		return fmt.Errorf("%w: %s costs %s, got %s", ErrStaleOffer, u, offer.Cost, p.Cost)
	}
	rest, ok := w.wallet.Amount.CheckedSub(offer.Cost)
	if !ok {
		w.log.Debug("purchase rejected",
			slog.String("upgrade", u.String()),
			slog.String("reason", "insufficient funds"),
			slog.String("cost", offer.Cost.String()),
			slog.String("amount", w.wallet.Amount.String()),
		)
		return fmt.Errorf("%w: %s costs %s", ErrInsufficientFunds, u, offer.Cost.Scientific())
	}

	w.wallet.Amount = rest
	w.offers = append(w.offers[:idx:idx], w.offers[idx+1:]...)
	w.history[u] = struct{}{}
	w.apply(u)

	w.emit(Event{Kind: EventPurchase, Upgrade: &u, Cost: offer.Cost})
	w.emit(Event{Kind: EventSound, Sound: &Sound{Key: SoundUpgradeBought, Volume: 1}})
	w.log.Info("upgrade purchased",
		slog.String("upgrade", u.String()),
		slog.String("cost", offer.Cost.String()),
		slog.String("remaining", w.wallet.Amount.String()),
	)

	w.resolveUnlocks()
	return nil
}

// Affordable reports whether the wallet covers the offer.
func (w *World) Affordable(o Offer) bool {
	return o.Cost.Cmp(w.wallet.Amount) <= 0
}

func (w *World) offerIndex(u UpgradeKind) int {
	for i, o := range w.offers {
		if o.Upgrade == u {
			return i
		}
	}
	return -1
}

func (w *World) apply(u UpgradeKind) {
	switch u.Type {
	case UpgradeAddSocket:
		for id := range w.rings {
			w.appendSocket(RingID(id))
		}
	case UpgradeAddColor:
		if !w.ColorUnlocked(u.Color) {
			w.palette = append(w.palette, u.Color)
		}
	case UpgradeAddRing:
		newest := w.newestRing()
		w.spawnRing(len(newest.Sockets), len(w.rings), false)
	case UpgradeEnhanceColor:
		// scoring reads the history directly
	}
}

// resolveUnlocks realizes every rule whose prerequisites are owned. A
// realized rule leaves the pool for good.
func (w *World) resolveUnlocks() {
	pending := make([]Unlock, 0, len(w.unlocks))
	for _, rule := range w.unlocks {
		if !w.history.HasAll(rule.Prerequisites) {
			pending = append(pending, rule)
			continue
		}
		grants := rule.Grants
		offer := Offer{Upgrade: grants, Cost: UpgradeCost(grants)}
		w.offers = append(w.offers, offer)
		w.emit(Event{Kind: EventUnlock, Upgrade: &grants, Cost: offer.Cost})
	}
	w.unlocks = pending
}
