package currency

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"
)

// Scale is the fixed-point factor used when multiplying by a float.
const Scale = int64(1_000_000)

var (
	ErrNegative = errors.New("currency amount cannot be negative")
	ErrParse    = errors.New("invalid currency amount")
)

var (
	bigScale    = big.NewInt(Scale)
	bigHalfUnit = big.NewInt(Scale / 2)
)

// Amount is an immutable arbitrary-precision non-negative integer.
// The zero value is 0. Every operation returns a fresh Amount, so values
// can be copied and shared freely.
type Amount struct {
	n *big.Int
}

func Zero() Amount {
	return Amount{}
}

func FromUint64(v uint64) Amount {
	return Amount{n: new(big.Int).SetUint64(v)}
}

func FromInt(v int) Amount {
	if v < 0 {
		panic(fmt.Sprintf("currency: FromInt(%d): %v", v, ErrNegative))
	}
	return FromUint64(uint64(v))
}

func fromBig(n *big.Int) Amount {
	if n.Sign() < 0 {
		panic(fmt.Sprintf("currency: %s: %v", n.String(), ErrNegative))
	}
	return Amount{n: n}
}

// Parse reads a plain base-10 integer.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, fmt.Errorf("%w: empty string", ErrParse)
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Amount{}, fmt.Errorf("%w: %q", ErrParse, s)
	}
	if n.Sign() < 0 {
		return Amount{}, fmt.Errorf("%w: %q", ErrNegative, s)
	}
	return Amount{n: n}, nil
}

func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) int() *big.Int {
	if a.n == nil {
		return new(big.Int)
	}
	return a.n
}

func (a Amount) Add(b Amount) Amount {
	return Amount{n: new(big.Int).Add(a.int(), b.int())}
}

// SubSaturating returns a-b, clamped at zero.
func (a Amount) SubSaturating(b Amount) Amount {
	if a.Cmp(b) <= 0 {
		return Amount{}
	}
	return Amount{n: new(big.Int).Sub(a.int(), b.int())}
}

// CheckedSub returns a-b and true, or zero and false when b > a.
func (a Amount) CheckedSub(b Amount) (Amount, bool) {
	if a.Cmp(b) < 0 {
		return Amount{}, false
	}
	return Amount{n: new(big.Int).Sub(a.int(), b.int())}, true
}

func (a Amount) MulUint64(v uint64) Amount {
	return Amount{n: new(big.Int).Mul(a.int(), new(big.Int).SetUint64(v))}
}

// MulFloat computes round(a * round(f * 1e6)) / 1e6, rounding half up.
// Only the factor goes through floating point; the product stays integral.
func (a Amount) MulFloat(f float64) Amount {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		panic(fmt.Sprintf("currency: MulFloat(%v): factor must be finite and non-negative", f))
	}
	scaled, _ := new(big.Float).SetFloat64(math.Round(f * float64(Scale))).Int(nil)
	out := new(big.Int).Mul(a.int(), scaled)
	out.Add(out, bigHalfUnit)
	out.Quo(out, bigScale)
	return fromBig(out)
}

func (a Amount) Pow(exp uint32) Amount {
	return Amount{n: new(big.Int).Exp(a.int(), big.NewInt(int64(exp)), nil)}
}

// Pow returns base^exp.
func Pow(base uint64, exp uint32) Amount {
	return FromUint64(base).Pow(exp)
}

func (a Amount) Cmp(b Amount) int {
	return a.int().Cmp(b.int())
}

func (a Amount) Less(b Amount) bool {
	return a.Cmp(b) < 0
}

func (a Amount) IsZero() bool {
	return a.n == nil || a.n.Sign() == 0
}

// Uint64 reports the value when it fits.
func (a Amount) Uint64() (uint64, bool) {
	n := a.int()
	if !n.IsUint64() {
		return 0, false
	}
	return n.Uint64(), true
}

func (a Amount) String() string {
	return a.int().String()
}

// Scientific formats a using at most four significant digits once the
// value has more than four decimal digits: 1234000 -> "1.234e6".
func (a Amount) Scientific() string {
	return FormatScientific(a)
}

func FormatScientific(a Amount) string {
	digits := a.String()
	originalLen := len(digits)
	if originalLen <= 4 {
		return digits
	}

	digits = strings.TrimRight(digits, "0")
	if len(digits) == 1 {
		return fmt.Sprintf("%se%d", digits, originalLen-1)
	}

	digits = digits[:1] + "." + digits[1:]
	if len(digits) > 5 {
		digits = digits[:5]
	}
	return fmt.Sprintf("%se%d", digits, originalLen-1)
}

func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Amount) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Sum adds every amount in values.
func Sum(values ...Amount) Amount {
	total := new(big.Int)
	for _, v := range values {
		total.Add(total, v.int())
	}
	return Amount{n: total}
}
