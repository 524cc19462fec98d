package game

import (
	"errors"
	"fmt"
	"math"
)

const (
	DefaultCycleSeconds      = 4.0
	DefaultStartingSockets   = 2
	DefaultCascadeLimit      = 1024
	DefaultOrangeReduction   = 0.5
	DefaultGreenPendingShare = 0.1

	// Ring quad geometry, in world units.
	RingQuadSize        = 512.0
	RingRadius          = 1.0 - 0.005
	RingThickness       = 0.05
	DefaultSocketRadius = 32.0
	RingSpacing         = 600.0

	MaxSocketLevel = 30
	MaxRingLevel   = 24
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUpgradeNotOffered = errors.New("upgrade is not offered")
	ErrStaleOffer        = errors.New("offer cost does not match")
	ErrColorLocked       = errors.New("socket color is not unlocked")
	ErrRingNotFound      = errors.New("ring not found")
	ErrSocketNotFound    = errors.New("socket not found")
	ErrCascadeOverflow   = errors.New("trigger cascade exceeded limit")
	ErrInvalidTuning     = errors.New("invalid tuning")
)

// Tuning holds the runtime knobs of a World. Cost formulas are not tunable.
type Tuning struct {
	CycleSeconds           float64 `yaml:"cycle_seconds" json:"cycle_seconds"`
	StartingSockets        int     `yaml:"starting_sockets" json:"starting_sockets"`
	CascadeLimit           int     `yaml:"cascade_limit" json:"cascade_limit"`
	OrangeReductionSeconds float64 `yaml:"orange_reduction_seconds" json:"orange_reduction_seconds"`
	GreenPendingShare      float64 `yaml:"green_pending_share" json:"green_pending_share"`
}

func DefaultTuning() Tuning {
	return Tuning{
		CycleSeconds:           DefaultCycleSeconds,
		StartingSockets:        DefaultStartingSockets,
		CascadeLimit:           DefaultCascadeLimit,
		OrangeReductionSeconds: DefaultOrangeReduction,
		GreenPendingShare:      DefaultGreenPendingShare,
	}
}

func (t Tuning) Validate() error {
	switch {
	case !(t.CycleSeconds > 0) || math.IsInf(t.CycleSeconds, 0):
		return fmt.Errorf("%w: cycle_seconds must be > 0", ErrInvalidTuning)
	case t.StartingSockets < 1:
		return fmt.Errorf("%w: starting_sockets must be >= 1", ErrInvalidTuning)
	case t.CascadeLimit < 1:
		return fmt.Errorf("%w: cascade_limit must be >= 1", ErrInvalidTuning)
	case !(t.OrangeReductionSeconds >= 0) || math.IsInf(t.OrangeReductionSeconds, 0):
		return fmt.Errorf("%w: orange_reduction_seconds must be finite and >= 0", ErrInvalidTuning)
	case !(t.GreenPendingShare >= 0 && t.GreenPendingShare <= 1):
		return fmt.Errorf("%w: green_pending_share must be between 0 and 1", ErrInvalidTuning)
	}
	return nil
}

type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SocketAngle is the angular position of socket index on a ring of n sockets.
func SocketAngle(index, n int) float64 {
	return 2*math.Pi*float64(index)/float64(n) + math.Pi/2
}

// SocketPosition is the socket's offset from its ring's center.
func SocketPosition(index, n int) Vec2 {
	angle := SocketAngle(index, n)
	centerRadius := RingRadius - RingThickness/2
	return Vec2{
		X: 0.5 * centerRadius * RingQuadSize * math.Cos(angle),
		Y: 0.5 * centerRadius * RingQuadSize * math.Sin(angle),
	}
}

// SocketPositionPct is the progress fraction at which the hand crosses
// socket index. Index 0 sits at 1.0, the cycle boundary.
func SocketPositionPct(index, n int) float64 {
	return float64(n-index) / float64(n)
}
