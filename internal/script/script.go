// Package script stores timed player commands so a run can be replayed
// against a fresh world.
package script

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cycles/internal/game"
)

type Action string

const (
	ActionColor Action = "color"
	ActionClear Action = "clear"
	ActionBuy   Action = "buy"
)

var ErrInvalidCommand = errors.New("invalid script command")

// Command is one player action at a world clock time. Buy commands
// carry only the upgrade; the cost is read from the live offer when the
// command is applied.
type Command struct {
	At      float64           `json:"at"`
	Action  Action            `json:"action"`
	Ring    game.RingID       `json:"ring,omitempty"`
	Socket  int               `json:"socket,omitempty"`
	Color   game.SocketColor  `json:"color,omitempty"`
	Upgrade *game.UpgradeKind `json:"upgrade,omitempty"`
}

func (c Command) Validate() error {
	if c.At < 0 {
		return fmt.Errorf("%w: negative time %g", ErrInvalidCommand, c.At)
	}
	switch c.Action {
	case ActionColor:
		if !c.Color.Valid() || c.Color == game.ColorNone {
			return fmt.Errorf("%w: color command needs an orb color", ErrInvalidCommand)
		}
	case ActionClear:
	case ActionBuy:
		if c.Upgrade == nil || c.Upgrade.Type == game.UpgradeNone {
			return fmt.Errorf("%w: buy command needs an upgrade", ErrInvalidCommand)
		}
	default:
		return fmt.Errorf("%w: unknown action %q", ErrInvalidCommand, c.Action)
	}
	return nil
}

// Apply performs the command on w at w's current clock.
func (c Command) Apply(w *game.World) error {
	switch c.Action {
	case ActionColor, ActionClear:
		id, err := w.SocketAt(c.Ring, c.Socket)
		if err != nil {
			return err
		}
		return w.SetSocketColor(id, c.Color, c.Action == ActionClear)
	case ActionBuy:
		u := c.Upgrade.Normalize()
		for _, o := range w.Offers() {
			if o.Upgrade == u {
				return w.Purchase(game.Purchase{Upgrade: u, Cost: o.Cost})
			}
		}
		return fmt.Errorf("%w: %s", game.ErrUpgradeNotOffered, u)
	default:
		return fmt.Errorf("%w: unknown action %q", ErrInvalidCommand, c.Action)
	}
}

type Script struct {
	Tuning   *game.Tuning `json:"tuning,omitempty"`
	Commands []Command    `json:"commands"`
}

// Push appends cmd, keeping commands ordered by time.
func (s *Script) Push(cmd Command) {
	s.Commands = append(s.Commands, cmd)
	if n := len(s.Commands); n > 1 && s.Commands[n-2].At > cmd.At {
		sort.SliceStable(s.Commands, func(i, j int) bool { return s.Commands[i].At < s.Commands[j].At })
	}
}

// Duration is the time of the last command.
func (s Script) Duration() float64 {
	if len(s.Commands) == 0 {
		return 0
	}
	return s.Commands[len(s.Commands)-1].At
}

func (s Script) Validate() error {
	for i, c := range s.Commands {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("command %d: %w", i, err)
		}
		if i > 0 && s.Commands[i-1].At > c.At {
			return fmt.Errorf("command %d: %w: out of order", i, ErrInvalidCommand)
		}
	}
	if s.Tuning != nil {
		if err := s.Tuning.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Load reads a script file. A missing or empty file is an empty script.
func Load(path string) (Script, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Script{Commands: []Command{}}, nil
		}
		return Script{}, err
	}
	if len(raw) == 0 {
		return Script{Commands: []Command{}}, nil
	}
	var out Script
	if err := json.Unmarshal(raw, &out); err != nil {
		return Script{}, err
	}
	if err := out.Validate(); err != nil {
		return Script{}, err
	}
	return out, nil
}

func Save(path string, s Script) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if s.Commands == nil {
		s.Commands = []Command{}
	}
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
