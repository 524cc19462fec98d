// Package sim drives a session on a simulated clock, optionally replaying
// a script and letting the autopilot play.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"cycles/internal/currency"
	"cycles/internal/game"
	"cycles/internal/script"
)

const (
	DefaultStep     = 1.0 / 60
	DefaultActEvery = 1.0
)

type Options struct {
	// Seconds of world time to simulate past the session's current clock.
	Seconds float64
	Step    float64
	// ActEvery is the autopilot decision interval in world seconds.
	ActEvery  float64
	Autopilot *Autopilot
	Script    *script.Script
}

type Report struct {
	RunID         string             `json:"run_id"`
	Seconds       float64            `json:"seconds"`
	Amount        currency.Amount    `json:"amount"`
	AmountText    string             `json:"amount_text"`
	TotalCycles   currency.Amount    `json:"total_cycles"`
	Rings         int                `json:"rings"`
	Sockets       int                `json:"sockets"`
	Purchases     []game.UpgradeKind `json:"purchases"`
	ScriptApplied int                `json:"script_applied"`
	ScriptFailed  int                `json:"script_failed"`
	TickErrors    int                `json:"tick_errors"`
}

func (o Options) normalized() (Options, error) {
	if o.Seconds < 0 || math.IsNaN(o.Seconds) || math.IsInf(o.Seconds, 0) {
		return o, fmt.Errorf("simulated seconds must be finite and >= 0, got %g", o.Seconds)
	}
	if o.Step == 0 {
		o.Step = DefaultStep
	}
	if o.Step < 0 || math.IsNaN(o.Step) {
		return o, fmt.Errorf("step must be > 0, got %g", o.Step)
	}
	if o.ActEvery <= 0 {
		o.ActEvery = DefaultActEvery
	}
	return o, nil
}

// Run advances s by opts.Seconds in fixed steps. Script commands are
// applied at their own times; the autopilot acts every ActEvery seconds.
func Run(ctx context.Context, s *game.Session, opts Options, logger *slog.Logger) (Report, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts, err := opts.normalized()
	if err != nil {
		return Report{}, err
	}
	var commands []script.Command
	if opts.Script != nil {
		if err := opts.Script.Validate(); err != nil {
			return Report{}, err
		}
		commands = opts.Script.Commands
	}

	rep := Report{RunID: s.RunID()}
	start := s.Now()
	now := start
	end := start + opts.Seconds
	nextAct := now
	next := 0
	for now < end {
		if err := ctx.Err(); err != nil {
			return finish(s, rep, start), err
		}
		now = math.Min(now+opts.Step, end)

		for next < len(commands) && commands[next].At <= now {
			c := commands[next]
			next++
			if c.At > s.Now() {
				if err := s.Tick(c.At); err != nil {
					rep.TickErrors++
					logger.Warn("tick failed", slog.Float64("now", c.At), slog.Any("err", err))
				}
			}
			if err := s.Do(c.Apply); err != nil {
				rep.ScriptFailed++
				logger.Warn("script command failed",
					slog.Float64("at", c.At),
					slog.String("action", string(c.Action)),
					slog.Any("err", err),
				)
				continue
			}
			rep.ScriptApplied++
		}

		if err := s.Tick(now); err != nil {
			rep.TickErrors++
			logger.Warn("tick failed", slog.Float64("now", now), slog.Any("err", err))
		}

		if opts.Autopilot != nil && now >= nextAct {
			nextAct = now + opts.ActEvery
			err := s.Do(func(w *game.World) error {
				bought, err := opts.Autopilot.Act(w)
				for _, u := range bought {
					logger.Debug("autopilot bought", slog.String("upgrade", u.String()), slog.Float64("now", now))
				}
				return err
			})
			if err != nil {
				return finish(s, rep, start), fmt.Errorf("autopilot: %w", err)
			}
		}
	}
	return finish(s, rep, start), nil
}

func finish(s *game.Session, rep Report, start float64) Report {
	snap := s.Snapshot()
	rep.Seconds = snap.Now - start
	rep.Amount = snap.Wallet.Amount
	rep.AmountText = snap.Wallet.AmountText
	rep.TotalCycles = snap.TotalCycles
	rep.Rings = len(snap.Rings)
	for _, r := range snap.Rings {
		rep.Sockets += len(r.Sockets)
	}
	rep.Purchases = snap.History
	return rep
}
