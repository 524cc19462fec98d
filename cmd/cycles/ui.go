package main

import (
	"fmt"
	"strconv"
	"strings"

	"cycles/internal/game"
	"cycles/internal/ledger"
	"cycles/internal/sim"

	"github.com/fatih/color"
)

var (
	accent  = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen, color.Bold)
	warn    = color.New(color.FgYellow, color.Bold)
	danger  = color.New(color.FgRed, color.Bold)
	neutral = color.New(color.FgHiWhite)
	faded   = color.New(color.Faint)
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printError(msg string) {
	danger.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func orbColor(c game.SocketColor) *color.Color {
	switch c {
	case game.ColorBlue:
		return color.New(color.FgBlue, color.Bold)
	case game.ColorRed:
		return color.New(color.FgRed, color.Bold)
	case game.ColorGreen:
		return color.New(color.FgHiGreen)
	case game.ColorOrange:
		return color.New(color.FgYellow)
	case game.ColorPink:
		return color.New(color.FgHiMagenta)
	default:
		return faded
	}
}

func renderState(s game.Snapshot) {
	accent.Printf("\n== RUN %s (t=%.1fs) ==\n", s.RunID, s.Now)
	fmt.Printf("Amount:        $%s\n", comma(s.Wallet.Amount.String()))
	fmt.Printf("Pending:       $%s\n", comma(s.Wallet.Pending.String()))
	fmt.Printf("Total cycles:  %s\n", comma(s.TotalCycles.String()))
	fmt.Printf("Locked unlocks:%d\n", s.PendingUnlocks)

	fmt.Println()
	accent.Println("Rings")
	fmt.Printf("%-5s %-8s %-9s %12s %6s %10s  %s\n", "RING", "GRID", "PROGRESS", "SCORE", "MULT", "CYCLES", "SOCKETS")
	for _, r := range s.Rings {
		var sockets strings.Builder
		for _, sock := range r.Sockets {
			glyph := "o"
			if sock.Color != game.ColorNone {
				glyph = "●"
			}
			sockets.WriteString(orbColor(sock.Color).Sprint(glyph))
		}
		fmt.Printf("%-5d %-8s %8.0f%% %12s %6g %10s  %s\n",
			r.Ordinal,
			fmt.Sprintf("(%d,%d)", r.Grid.X, r.Grid.Y),
			r.Progress*100,
			r.CycleScore.Scientific(),
			r.CycleMultiplier,
			r.CycleCount.Scientific(),
			sockets.String(),
		)
	}

	fmt.Println()
	accent.Println("Palette")
	for _, p := range s.Palette {
		fmt.Printf("[%d] %s  %s\n", p.Hotkey, orbColor(p.Color).Sprint(p.Color.String()), p.Description)
	}
	renderOffers(s.Offers)
}

func renderOffers(offers []game.OfferView) {
	fmt.Println()
	accent.Println("Shop")
	if len(offers) == 0 {
		printInfo("Nothing for sale.")
		return
	}
	fmt.Printf("%-3s %-22s %s\n", "#", "UPGRADE", "OFFER")
	for i, o := range offers {
		line := fmt.Sprintf("%-3d %-22s %s", i+1, o.Upgrade.String(), o.Text)
		if o.Affordable {
			success.Println(line)
			continue
		}
		faded.Println(line + "  (can't afford)")
	}
	fmt.Println()
}

func renderReport(r sim.Report) {
	accent.Printf("\n== SIMULATION %s ==\n", r.RunID)
	fmt.Printf("Simulated:     %.1fs\n", r.Seconds)
	fmt.Printf("Amount:        $%s (%s)\n", comma(r.Amount.String()), r.AmountText)
	fmt.Printf("Total cycles:  %s\n", comma(r.TotalCycles.String()))
	fmt.Printf("Rings:         %d\n", r.Rings)
	fmt.Printf("Sockets:       %d\n", r.Sockets)
	if r.ScriptApplied+r.ScriptFailed > 0 {
		fmt.Printf("Script:        %d applied, %s\n", r.ScriptApplied, colorizeFailures(r.ScriptFailed))
	}
	if r.TickErrors > 0 {
		printWarn(fmt.Sprintf("Tick errors:   %d", r.TickErrors))
	}
	fmt.Println()
	accent.Println("Purchases")
	if len(r.Purchases) == 0 {
		printInfo("None.")
	}
	for _, u := range r.Purchases {
		fmt.Printf("  %s\n", u.String())
	}
	fmt.Println()
}

func renderLedger(entries []ledger.Entry) {
	accent.Println("\n== LEDGER ==")
	if len(entries) == 0 {
		printInfo("No entries.")
		return
	}
	fmt.Printf("%-5s %-10s %-5s %9s %16s  %s\n", "SEQ", "KIND", "RING", "CLOCK", "AMOUNT", "DETAIL")
	for _, e := range entries {
		ring := strconv.Itoa(e.Ring)
		if e.Ring < 0 {
			ring = "-"
		}
		amount := "+" + comma(e.Amount)
		if e.Kind == ledger.KindPurchase {
			amount = danger.Sprint("-" + comma(e.Amount))
		} else {
			amount = success.Sprint(amount)
		}
		fmt.Printf("%-5d %-10s %-5s %9.2f %16s  %s\n", e.Seq, e.Kind, ring, e.At, amount, truncate(e.Detail, 48))
	}
	fmt.Println()
}

func colorizeFailures(n int) string {
	text := fmt.Sprintf("%d failed", n)
	if n > 0 {
		return danger.Sprint(text)
	}
	return neutral.Sprint(text)
}

// comma groups the digits of a decimal integer string.
func comma(s string) string {
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
		if len(s) > pre {
			b.WriteByte(',')
		}
	}
	for i := pre; i < len(s); i += 3 {
		b.WriteString(s[i : i+3])
		if i+3 < len(s) {
			b.WriteByte(',')
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

// pickOffer resolves a 1-based shop index or an upgrade name such as
// add_socket(3) against the current offers.
func pickOffer(arg string, offers []game.OfferView) (game.OfferView, error) {
	arg = strings.TrimSpace(arg)
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(offers) {
			return game.OfferView{}, fmt.Errorf("offer %d out of range (1..%d)", n, len(offers))
		}
		return offers[n-1], nil
	}
	for _, o := range offers {
		if strings.EqualFold(o.Upgrade.String(), arg) {
			return o, nil
		}
	}
	return game.OfferView{}, fmt.Errorf("%w: %s", game.ErrUpgradeNotOffered, arg)
}
