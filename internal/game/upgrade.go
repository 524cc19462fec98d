package game

import (
	"fmt"
	"sort"
	"strings"

	"cycles/internal/currency"
)

type UpgradeType uint8

const (
	UpgradeNone UpgradeType = iota
	UpgradeAddSocket
	UpgradeAddColor
	UpgradeAddRing
	UpgradeEnhanceColor
)

var upgradeTypeNames = map[UpgradeType]string{
	UpgradeNone:         "none",
	UpgradeAddSocket:    "add_socket",
	UpgradeAddColor:     "add_color",
	UpgradeAddRing:      "add_ring",
	UpgradeEnhanceColor: "enhance_color",
}

func (t UpgradeType) String() string {
	if name, ok := upgradeTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("upgrade(%d)", uint8(t))
}

func (t UpgradeType) MarshalText() ([]byte, error) {
	if _, ok := upgradeTypeNames[t]; !ok {
		return nil, fmt.Errorf("unknown upgrade type %d", uint8(t))
	}
	return []byte(t.String()), nil
}

func (t *UpgradeType) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for k, name := range upgradeTypeNames {
		if name == s {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("unknown upgrade type %q", s)
}

// UpgradeKind is a tagged union over upgrade variants. Only the payload
// fields of its Type are set, so == and map keys compare variant+payload.
// Build values with the constructors below.
type UpgradeKind struct {
	Type  UpgradeType `json:"type"`
	Level int         `json:"level,omitempty"`
	Color SocketColor `json:"color,omitempty"`
	Tier  int         `json:"tier,omitempty"`
}

func NoUpgrade() UpgradeKind {
	return UpgradeKind{Type: UpgradeNone}
}

func AddSocket(level int) UpgradeKind {
	return UpgradeKind{Type: UpgradeAddSocket, Level: level}
}

func AddColor(c SocketColor) UpgradeKind {
	return UpgradeKind{Type: UpgradeAddColor, Color: c}
}

func AddRing(level int) UpgradeKind {
	return UpgradeKind{Type: UpgradeAddRing, Level: level}
}

func EnhanceColor(c SocketColor, tier int) UpgradeKind {
	return UpgradeKind{Type: UpgradeEnhanceColor, Color: c, Tier: tier}
}

// Normalize drops payload fields that do not belong to the variant, so
// decoded input compares equal to constructor-built values.
func (u UpgradeKind) Normalize() UpgradeKind {
	switch u.Type {
	case UpgradeAddSocket:
		return AddSocket(u.Level)
	case UpgradeAddColor:
		return AddColor(u.Color)
	case UpgradeAddRing:
		return AddRing(u.Level)
	case UpgradeEnhanceColor:
		return EnhanceColor(u.Color, u.Tier)
	default:
		return NoUpgrade()
	}
}

func (u UpgradeKind) String() string {
	switch u.Type {
	case UpgradeAddSocket:
		return fmt.Sprintf("add_socket(%d)", u.Level)
	case UpgradeAddColor:
		return fmt.Sprintf("add_color(%s)", u.Color)
	case UpgradeAddRing:
		return fmt.Sprintf("add_ring(%d)", u.Level)
	case UpgradeEnhanceColor:
		return fmt.Sprintf("enhance_color(%s,%d)", u.Color, u.Tier)
	default:
		return "none"
	}
}

// Description is the shop label of an upgrade.
func (u UpgradeKind) Description() string {
	switch u.Type {
	case UpgradeAddSocket:
		return "Add a socket"
	case UpgradeAddColor:
		return fmt.Sprintf("Add %s orbs", u.Color)
	case UpgradeAddRing:
		return "Add a ring"
	case UpgradeEnhanceColor:
		return fmt.Sprintf("Enhance %s orbs", u.Color)
	default:
		return "Errmm.. This shouldn't be for sale"
	}
}

// UpgradeHistory is every upgrade ever purchased. It only grows.
type UpgradeHistory map[UpgradeKind]struct{}

func (h UpgradeHistory) Has(u UpgradeKind) bool {
	_, ok := h[u]
	return ok
}

func (h UpgradeHistory) HasAll(us []UpgradeKind) bool {
	for _, u := range us {
		if !h.Has(u) {
			return false
		}
	}
	return true
}

// List returns the history in a stable order.
func (h UpgradeHistory) List() []UpgradeKind {
	out := make([]UpgradeKind, 0, len(h))
	for u := range h {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.Color != b.Color {
			return a.Color < b.Color
		}
		if a.Level != b.Level {
			return a.Level < b.Level
		}
		return a.Tier < b.Tier
	})
	return out
}

// Unlock grants a purchasable upgrade once all prerequisites are owned.
type Unlock struct {
	Prerequisites []UpgradeKind `json:"prerequisites"`
	Grants        UpgradeKind   `json:"grants"`
}

// Offer is a realized unlock: a purchasable upgrade with a cost fixed at
// the moment it was realized.
type Offer struct {
	Upgrade UpgradeKind     `json:"upgrade"`
	Cost    currency.Amount `json:"cost"`
}

func (o Offer) Text() string {
	return fmt.Sprintf("$%s | %s", o.Cost.Scientific(), o.Upgrade.Description())
}

type Purchase struct {
	Upgrade UpgradeKind     `json:"upgrade"`
	Cost    currency.Amount `json:"cost"`
}

// DefaultUnlocks builds the static unlock rule table.
func DefaultUnlocks() []Unlock {
	var out []Unlock
	out = append(out, socketUnlocks()...)
	out = append(out, ringUnlocks()...)
	out = append(out, colorUnlocks()...)
	out = append(out, enhanceUnlocks()...)
	return out
}

func socketUnlocks() []Unlock {
	out := make([]Unlock, 0, MaxSocketLevel)
	out = append(out, Unlock{Grants: AddSocket(1)})
	for level := 1; level < MaxSocketLevel; level++ {
		out = append(out, Unlock{
			Prerequisites: []UpgradeKind{AddSocket(level)},
			Grants:        AddSocket(level + 1),
		})
	}
	return out
}

func ringUnlocks() []Unlock {
	out := make([]Unlock, 0, MaxRingLevel)
	out = append(out, Unlock{
		Prerequisites: []UpgradeKind{AddSocket(4)},
		Grants:        AddRing(1),
	})
	for level := 1; level < MaxRingLevel; level++ {
		out = append(out, Unlock{
			Prerequisites: []UpgradeKind{AddRing(level), AddSocket(min(4+2*level, MaxSocketLevel))},
			Grants:        AddRing(level + 1),
		})
	}
	return out
}

func colorUnlocks() []Unlock {
	return []Unlock{
		{Prerequisites: []UpgradeKind{AddSocket(2)}, Grants: AddColor(ColorRed)},
		{Prerequisites: []UpgradeKind{AddColor(ColorRed), AddSocket(4)}, Grants: AddColor(ColorGreen)},
		{Prerequisites: []UpgradeKind{AddColor(ColorGreen), AddSocket(6)}, Grants: AddColor(ColorOrange)},
		{Prerequisites: []UpgradeKind{AddColor(ColorOrange), AddRing(1)}, Grants: AddColor(ColorPink)},
	}
}

func enhanceUnlocks() []Unlock {
	return []Unlock{
		{Prerequisites: []UpgradeKind{AddColor(ColorRed)}, Grants: EnhanceColor(ColorBlue, 1)},
		{Prerequisites: []UpgradeKind{AddColor(ColorRed), AddRing(1)}, Grants: EnhanceColor(ColorRed, 1)},
		{Prerequisites: []UpgradeKind{AddColor(ColorGreen), AddRing(2)}, Grants: EnhanceColor(ColorGreen, 1)},
		{Prerequisites: []UpgradeKind{AddColor(ColorOrange), AddRing(3)}, Grants: EnhanceColor(ColorOrange, 1)},
	}
}
