package game

import (
	"errors"
	"testing"

	"cycles/internal/currency"
)

func offerFor(t *testing.T, w *World, u UpgradeKind) Offer {
	t.Helper()
	for _, o := range w.Offers() {
		if o.Upgrade == u {
			return o
		}
	}
	t.Fatalf("%s is not offered; offers=%v", u, w.Offers())
	return Offer{}
}

func buy(t *testing.T, w *World, u UpgradeKind) {
	t.Helper()
	o := offerFor(t, w, u)
	if err := w.Purchase(Purchase{Upgrade: u, Cost: o.Cost}); err != nil {
		t.Fatalf("buy %s: %v", u, err)
	}
}

func TestPurchaseRejectedWhenUnaffordable(t *testing.T) {
	w := newTestWorld(t)
	w.wallet.Amount = currency.FromUint64(3)

	err := w.Purchase(Purchase{Upgrade: AddSocket(1), Cost: currency.FromUint64(4)})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("got=%v want ErrInsufficientFunds", err)
	}
	if w.wallet.Amount.String() != "3" || len(w.History()) != 0 || len(w.Offers()) != 1 {
		t.Fatalf("state changed: amount=%s history=%v offers=%v", w.wallet.Amount, w.History(), w.Offers())
	}
	if r, _ := w.Ring(0); len(r.Sockets) != 2 {
		t.Fatalf("sockets changed: %d", len(r.Sockets))
	}
	if len(w.Flush()) != 0 {
		t.Fatalf("rejected purchase emitted events")
	}
}

func TestPurchaseAddSocket(t *testing.T) {
	w := newTestWorld(t)
	w.wallet.Amount = currency.FromUint64(10)

	if err := w.Purchase(Purchase{Upgrade: AddSocket(1), Cost: currency.FromUint64(4)}); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if w.wallet.Amount.String() != "6" {
		t.Fatalf("got amount=%s want 6", w.wallet.Amount)
	}
	if !w.History().Has(AddSocket(1)) {
		t.Fatalf("history missing add_socket(1)")
	}
	if r, _ := w.Ring(0); len(r.Sockets) != 3 {
		t.Fatalf("got sockets=%d want 3", len(r.Sockets))
	}
	next := offerFor(t, w, AddSocket(2))
	if next.Cost.String() != "8" {
		t.Fatalf("got cost=%s want 8", next.Cost)
	}
	for _, o := range w.Offers() {
		if o.Upgrade == AddSocket(1) {
			t.Fatalf("bought offer still listed")
		}
	}

	events := w.Flush()
	if countKind(events, EventPurchase) != 1 || countKind(events, EventUnlock) != 1 || countKind(events, EventSound) != 1 {
		t.Fatalf("got events=%v", events)
	}
}

func TestPurchaseRejectsUnknownAndStaleOffers(t *testing.T) {
	w := newTestWorld(t)
	w.wallet.Amount = currency.FromUint64(1_000_000)

	if err := w.Purchase(Purchase{Upgrade: AddRing(1), Cost: currency.FromUint64(500)}); !errors.Is(err, ErrUpgradeNotOffered) {
		t.Fatalf("got=%v want ErrUpgradeNotOffered", err)
	}
	if err := w.Purchase(Purchase{Upgrade: AddSocket(1), Cost: currency.FromUint64(5)}); !errors.Is(err, ErrStaleOffer) {
		t.Fatalf("got=%v want ErrStaleOffer", err)
	}
	if w.wallet.Amount.String() != "1000000" {
		t.Fatalf("rejections must not charge, amount=%s", w.wallet.Amount)
	}
}

func TestUnlockRealizedOnce(t *testing.T) {
	w := newTestWorld(t)
	w.wallet.Amount = currency.FromUint64(100)
	buy(t, w, AddSocket(1))

	w.resolveUnlocks()
	_ = w.Purchase(Purchase{Upgrade: NoUpgrade()})

	n := 0
	for _, o := range w.Offers() {
		if o.Upgrade == AddSocket(2) {
			n++
		}
	}
	if n != 1 {
		t.Fatalf("add_socket(2) offered %d times", n)
	}
}

func TestUnlockLadder(t *testing.T) {
	w := newTestWorld(t)
	w.wallet.Amount = currency.MustParse("1000000000000")

	buy(t, w, AddSocket(1))
	buy(t, w, AddSocket(2))
	buy(t, w, AddColor(ColorRed))
	if got := w.Palette(); len(got) != 2 || got[1] != ColorRed {
		t.Fatalf("got palette=%v", got)
	}
	offerFor(t, w, EnhanceColor(ColorBlue, 1))

	buy(t, w, AddSocket(3))
	buy(t, w, AddSocket(4))
	offerFor(t, w, AddColor(ColorGreen))

	w.now = 7
	buy(t, w, AddRing(1))
	if w.RingCount() != 2 {
		t.Fatalf("got rings=%d want 2", w.RingCount())
	}
	r, _ := w.Ring(1)
	if r.Grid != (GridPoint{X: 1}) || len(r.Sockets) != 6 || r.CycleStart != 7 {
		t.Fatalf("unexpected new ring %+v", r)
	}
	for _, sid := range r.Sockets {
		if s, _ := w.Socket(sid); s.Color != ColorNone {
			t.Fatalf("new ring socket %d painted %s", s.Index, s.Color)
		}
	}
	if id, ok := w.RingAt(GridPoint{X: 1}); !ok || id != 1 {
		t.Fatalf("ring index missing new ring")
	}
	offerFor(t, w, EnhanceColor(ColorRed, 1))

	buy(t, w, AddSocket(5))
	if r, _ := w.Ring(1); len(r.Sockets) != 7 {
		t.Fatalf("add socket should grow every ring, got %d", len(r.Sockets))
	}
}

func TestCurrencyNeverNegative(t *testing.T) {
	w := newTestWorld(t)
	for step := 1; step <= 3000; step++ {
		if _, err := w.Step(float64(step) / 10); err != nil {
			t.Fatalf("step: %v", err)
		}
		for _, o := range w.Offers() {
			if w.Affordable(o) {
				if err := w.Purchase(Purchase{Upgrade: o.Upgrade, Cost: o.Cost}); err != nil {
					t.Fatalf("buy %s: %v", o.Upgrade, err)
				}
				break
			}
		}
		for _, o := range w.Offers() {
			if !w.Affordable(o) {
				if err := w.Purchase(Purchase{Upgrade: o.Upgrade, Cost: o.Cost}); !errors.Is(err, ErrInsufficientFunds) {
					t.Fatalf("got=%v want ErrInsufficientFunds", err)
				}
				break
			}
		}
		if w.Wallet().Amount.Cmp(currency.Zero()) < 0 {
			t.Fatalf("negative wallet at step %d", step)
		}
	}
	if len(w.History()) == 0 {
		t.Fatalf("expected at least one purchase in 300s")
	}
}
