// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package types

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// maxDecimals keeps 10^n inside uint64.
const maxDecimals = 18

var (
	ErrZeroDenominator  = errors.New("fraction: zero denominator")
	ErrFractionOverflow = errors.New("fraction: overflow")
	ErrNegativeFraction = errors.New("fraction: negative result")
)

// Fraction is an exact non-negative rational number Num/Den.
// The zero value (Den == 0) is treated as 0.
type Fraction struct {
	Num uint64
	Den uint64
}

// NewFraction builds a reduced fraction.
func NewFraction(num, den uint64) (Fraction, error) {
	if den == 0 {
		return Fraction{}, ErrZeroDenominator
	}
	return Fraction{Num: num, Den: den}.reduce(), nil
}

// MustFraction is NewFraction that panics on error.
func MustFraction(num, den uint64) Fraction {
	f, err := NewFraction(num, den)
	if err != nil {
		panic(err)
	}
	return f
}

// Zero returns 0/1.
func Zero() Fraction { return Fraction{Num: 0, Den: 1} }

// One returns 1/1.
func One() Fraction { return Fraction{Num: 1, Den: 1} }

// Percent returns p/100.
func Percent(p uint64) Fraction { return MustFraction(p, 100) }

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func (f Fraction) reduce() Fraction {
	if f.Num == 0 || f.Den == 0 {
		return Zero()
	}
	g := gcd(f.Num, f.Den)
	return Fraction{Num: f.Num / g, Den: f.Den / g}
}

// IsZero reports whether f equals 0.
func (f Fraction) IsZero() bool {
	return f.Num == 0 || f.Den == 0
}

// Cmp compares f and g and returns -1, 0 or +1.
func (f Fraction) Cmp(g Fraction) int {
	f, g = f.reduce(), g.reduce()
	lh, ll := bits.Mul64(f.Num, g.Den)
	rh, rl := bits.Mul64(g.Num, f.Den)
	switch {
	case lh < rh || (lh == rh && ll < rl):
		return -1
	case lh > rh || (lh == rh && ll > rl):
		return 1
	}
	return 0
}

// Add returns f + g, failing when the reduced result does not fit in uint64.
func (f Fraction) Add(g Fraction) (Fraction, error) {
	f, g = f.reduce(), g.reduce()
	if f.Num == 0 {
		return g, nil
	}
	if g.Num == 0 {
		return f, nil
	}
	d := gcd(f.Den, g.Den)
	fm, gm := g.Den/d, f.Den/d

	hi, den := bits.Mul64(f.Den, fm)
	if hi != 0 {
		return Fraction{}, ErrFractionOverflow
	}
	hi, a := bits.Mul64(f.Num, fm)
	if hi != 0 {
		return Fraction{}, ErrFractionOverflow
	}
	hi, b := bits.Mul64(g.Num, gm)
	if hi != 0 {
		return Fraction{}, ErrFractionOverflow
	}
	num, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return Fraction{}, ErrFractionOverflow
	}
	return Fraction{Num: num, Den: den}.reduce(), nil
}

// Sub returns f - g, failing when g > f.
func (f Fraction) Sub(g Fraction) (Fraction, error) {
	if f.Cmp(g) < 0 {
		return Fraction{}, ErrNegativeFraction
	}
	f, g = f.reduce(), g.reduce()
	if g.Num == 0 {
		return f, nil
	}
	d := gcd(f.Den, g.Den)
	fm, gm := g.Den/d, f.Den/d

	hi, den := bits.Mul64(f.Den, fm)
	if hi != 0 {
		return Fraction{}, ErrFractionOverflow
	}
	hi, a := bits.Mul64(f.Num, fm)
	if hi != 0 {
		return Fraction{}, ErrFractionOverflow
	}
	hi, b := bits.Mul64(g.Num, gm)
	if hi != 0 {
		return Fraction{}, ErrFractionOverflow
	}
	return Fraction{Num: a - b, Den: den}.reduce(), nil
}

// MulFloor returns floor(amount * f). The product is computed with a 512 bit
// intermediate; ErrFractionOverflow is returned when the result exceeds 256 bits.
func (f Fraction) MulFloor(amount *uint256.Int) (*uint256.Int, error) {
	if f.IsZero() || amount == nil || amount.IsZero() {
		return new(uint256.Int), nil
	}
	res, overflow := new(uint256.Int).MulDivOverflow(amount, uint256.NewInt(f.Num), uint256.NewInt(f.Den))
	if overflow {
		return nil, ErrFractionOverflow
	}
	return res, nil
}

// String renders the fraction as "num/den", or "num" when den is 1.
func (f Fraction) String() string {
	f = f.reduce()
	if f.Den == 1 {
		return strconv.FormatUint(f.Num, 10)
	}
	return fmt.Sprintf("%d/%d", f.Num, f.Den)
}

// MarshalText implements encoding.TextMarshaler.
func (f Fraction) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Fraction) UnmarshalText(text []byte) error {
	parsed, err := ParseFraction(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ParseFraction accepts "n/d", a decimal such as "0.05" or an integer.
func ParseFraction(s string) (Fraction, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Fraction{}, errors.New("fraction: empty string")
	}
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err := strconv.ParseUint(strings.TrimSpace(num), 10, 64)
		if err != nil {
			return Fraction{}, errors.Wrap(err, "fraction numerator")
		}
		d, err := strconv.ParseUint(strings.TrimSpace(den), 10, 64)
		if err != nil {
			return Fraction{}, errors.Wrap(err, "fraction denominator")
		}
		return NewFraction(n, d)
	}

	whole, decimals, _ := strings.Cut(s, ".")
	if len(decimals) > maxDecimals {
		return Fraction{}, errors.Errorf("fraction: more than %d decimals", maxDecimals)
	}
	den := uint64(1)
	for range decimals {
		den *= 10
	}
	digits := whole + decimals
	if digits == "" {
		return Fraction{}, errors.Errorf("fraction: invalid value %q", s)
	}
	n, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return Fraction{}, errors.Wrap(err, "fraction value")
	}
	return NewFraction(n, den)
}
