package game

import (
	"fmt"
	"math"

	"cycles/internal/currency"
)

var addRingCostTable = []uint64{
	500,
	5_000,
	40_000,
	250_000,
	1_500_000,
	10_000_000,
	75_000_000,
	600_000_000,
}

// UpgradeCost is the live cost formula. It is evaluated when an unlock
// is realized, never when the rule is authored.
func UpgradeCost(u UpgradeKind) currency.Amount {
	switch u.Type {
	case UpgradeNone:
		return currency.Zero()
	case UpgradeAddSocket:
		return addSocketCost(u.Level)
	case UpgradeAddColor:
		return addColorCost(u.Color)
	case UpgradeAddRing:
		return addRingCost(u.Level)
	case UpgradeEnhanceColor:
		return enhanceColorCost(u.Color, u.Tier)
	default:
		panic(fmt.Sprintf("game: no cost for upgrade %v", u))
	}
}

// addSocketExponent grows as level^(1+k*level); past level 10 the curve
// restarts from the level-10 value with a steeper slope.
func addSocketExponent(level int) uint32 {
	if level <= 10 {
		l := float64(level)
		return uint32(math.Floor(math.Pow(l, 1+0.03*l)))
	}
	over := float64(level - 10)
	return addSocketExponent(10) + uint32(math.Floor(2*math.Pow(over, 1+0.05*over)))
}

func addSocketCost(level int) currency.Amount {
	if level < 1 {
		panic(fmt.Sprintf("game: add socket level %d", level))
	}
	return currency.Pow(2, addSocketExponent(level)+1)
}

func addColorCost(c SocketColor) currency.Amount {
	switch c {
	case ColorRed:
		return currency.FromUint64(60)
	case ColorGreen:
		return currency.FromUint64(1_500)
	case ColorOrange:
		return currency.FromUint64(40_000)
	case ColorPink:
		return currency.FromUint64(1_000_000)
	default:
		panic(fmt.Sprintf("game: no add color upgrade for %s", c))
	}
}

func addRingCost(level int) currency.Amount {
	if level < 1 {
		panic(fmt.Sprintf("game: add ring level %d", level))
	}
	if level <= len(addRingCostTable) {
		return currency.FromUint64(addRingCostTable[level-1])
	}
	over := float64(level - len(addRingCostTable))
	exp := 8 + uint32(math.Floor(math.Pow(over, 1.25)))
	return currency.Pow(10, exp).MulUint64(6)
}

func enhanceColorCost(c SocketColor, tier int) currency.Amount {
	if tier != 1 {
		panic(fmt.Sprintf("game: no enhancement tier %d for %s", tier, c))
	}
	switch c {
	case ColorBlue:
		return currency.FromUint64(2_500)
	case ColorRed:
		return currency.FromUint64(75_000)
	case ColorGreen:
		return currency.FromUint64(400_000)
	case ColorOrange:
		return currency.FromUint64(3_000_000)
	default:
		panic(fmt.Sprintf("game: no enhancement for %s", c))
	}
}
