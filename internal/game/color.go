package game

import (
	"fmt"
	"strings"
)

type SocketColor uint8

const (
	ColorNone SocketColor = iota
	ColorBlue
	ColorRed
	ColorGreen
	ColorOrange
	ColorPink
)

// OrbColors lists every non-empty color in hotkey order.
var OrbColors = []SocketColor{ColorBlue, ColorRed, ColorGreen, ColorOrange, ColorPink}

var colorNames = map[SocketColor]string{
	ColorNone:   "none",
	ColorBlue:   "blue",
	ColorRed:    "red",
	ColorGreen:  "green",
	ColorOrange: "orange",
	ColorPink:   "pink",
}

func (c SocketColor) String() string {
	if name, ok := colorNames[c]; ok {
		return name
	}
	return fmt.Sprintf("color(%d)", uint8(c))
}

func (c SocketColor) Valid() bool {
	_, ok := colorNames[c]
	return ok
}

func ParseColor(s string) (SocketColor, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for c, name := range colorNames {
		if name == s {
			return c, nil
		}
	}
	return ColorNone, fmt.Errorf("unknown socket color %q", s)
}

func (c SocketColor) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("unknown socket color %d", uint8(c))
	}
	return []byte(c.String()), nil
}

func (c *SocketColor) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// TriggerDuration is the base cooldown of a color in seconds.
func TriggerDuration(c SocketColor) float64 {
	switch c {
	case ColorBlue:
		return 0.4
	case ColorRed:
		return 3.0
	case ColorGreen:
		return 7.0
	case ColorOrange:
		return 0.3
	case ColorPink:
		return 14.0
	default:
		return 0
	}
}

func DisplayColor(c SocketColor) string {
	switch c {
	case ColorBlue:
		return "#0000ff"
	case ColorRed:
		return "#ff0000"
	case ColorGreen:
		return "#90ee90"
	case ColorOrange:
		return "#ffa500"
	case ColorPink:
		return "#ffc0cb"
	default:
		return "#030712"
	}
}

func HighlightColor(c SocketColor) string {
	switch c {
	case ColorBlue:
		return "#22d3ee"
	case ColorRed:
		return "#fca5a5"
	case ColorGreen:
		return "#bbf7d0"
	case ColorOrange:
		return "#fde68a"
	case ColorPink:
		return "#fbcfe8"
	default:
		return "#1f2937"
	}
}

// HotkeyOrdinal is the 1-based hotbar key for an orb color. ColorNone has
// no hotkey; asking for one is a programming error.
func HotkeyOrdinal(c SocketColor) uint32 {
	switch c {
	case ColorBlue:
		return 1
	case ColorRed:
		return 2
	case ColorGreen:
		return 3
	case ColorOrange:
		return 4
	case ColorPink:
		return 5
	case ColorNone:
		panic("game: HotkeyOrdinal called with ColorNone")
	default:
		panic(fmt.Sprintf("game: HotkeyOrdinal called with unknown color %d", uint8(c)))
	}
}

// Describe is the hotbar description of a color, reflecting owned
// enhancement tiers and the tuned effect sizes.
func Describe(c SocketColor, history UpgradeHistory, tuning Tuning) string {
	enhanced := history.Has(EnhanceColor(c, 1))
	var text string
	switch c {
	case ColorBlue:
		text = "+$1 when triggered."
		if enhanced {
			text = "+$1 for every blue orb on the board when triggered."
		}
	case ColorRed:
		text = "Triggers the orbs on either side."
		if enhanced {
			text = "Triggers the orbs on either side, on this ring and the rings beside it."
		}
	case ColorGreen:
		text = "+$1 for every orb triggered last cycle."
		if enhanced {
			text = fmt.Sprintf("+$1 for every orb triggered last cycle, plus %g%% of pending $.", tuning.GreenPendingShare*100)
		}
	case ColorOrange:
		reduction := tuning.OrangeReductionSeconds
		if enhanced {
			reduction *= 2
		}
		text = fmt.Sprintf("Shortens the cooldown of every other orb on the ring by %gs.", reduction)
	case ColorPink:
		text = "+1x cycle multiplier."
	default:
		return "An empty socket."
	}
	return fmt.Sprintf("%s Cooldown %gs.", text, TriggerDuration(c))
}
