// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package types

import (
	"sort"
	"strings"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// ErrAmountOverflow is returned when a monetary sum exceeds 256 bits.
var ErrAmountOverflow = errors.New("amount overflow")

// Coin is an amount of a single denomination.
type Coin struct {
	Denom  string       `json:"denom" yaml:"denom"`
	Amount *uint256.Int `json:"amount" yaml:"amount"`
}

// NewCoin creates a coin, copying amount.
func NewCoin(denom string, amount *uint256.Int) Coin {
	c := Coin{Denom: denom, Amount: new(uint256.Int)}
	if amount != nil {
		c.Amount.Set(amount)
	}
	return c
}

// NewCoin64 is a shortcut for small literal amounts.
func NewCoin64(denom string, amount uint64) Coin {
	return Coin{Denom: denom, Amount: uint256.NewInt(amount)}
}

// IsZero reports whether the coin carries no value.
func (c Coin) IsZero() bool {
	return c.Amount == nil || c.Amount.IsZero()
}

func (c Coin) String() string {
	if c.Amount == nil {
		return "0" + c.Denom
	}
	return c.Amount.Dec() + c.Denom
}

// Coins is a list of coins. Normalized coins have unique denominations,
// no zero entries and are sorted by denomination.
type Coins []Coin

// NewCoins returns the normalized form of the given coins.
func NewCoins(coins ...Coin) (Coins, error) {
	return Coins(coins).Normalize()
}

// Normalize merges equal denominations, drops zero amounts and sorts by denomination.
func (cs Coins) Normalize() (Coins, error) {
	merged := make(map[string]*uint256.Int, len(cs))
	for _, c := range cs {
		if c.IsZero() {
			continue
		}
		if cur, ok := merged[c.Denom]; ok {
			if _, overflow := cur.AddOverflow(cur, c.Amount); overflow {
				return nil, errors.Wrapf(ErrAmountOverflow, "denom %s", c.Denom)
			}
			continue
		}
		merged[c.Denom] = new(uint256.Int).Set(c.Amount)
	}

	out := make(Coins, 0, len(merged))
	for denom, amount := range merged {
		out = append(out, Coin{Denom: denom, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Denom < out[j].Denom })
	return out, nil
}

// AmountOf returns the total amount held in denom.
func (cs Coins) AmountOf(denom string) *uint256.Int {
	total := new(uint256.Int)
	for _, c := range cs {
		if c.Denom == denom && c.Amount != nil {
			total.Add(total, c.Amount)
		}
	}
	return total
}

// IsZero reports whether every coin is zero.
func (cs Coins) IsZero() bool {
	for _, c := range cs {
		if !c.IsZero() {
			return false
		}
	}
	return true
}

func (cs Coins) String() string {
	parts := make([]string, 0, len(cs))
	for _, c := range cs {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, ",")
}

// ParseCoins parses the String form, e.g. "1000uusdc,5uatom", and normalizes
// the result. An empty string is no coins.
func ParseCoins(s string) (Coins, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var coins Coins
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		i := strings.IndexFunc(part, func(r rune) bool { return r < '0' || r > '9' })
		if i <= 0 {
			return nil, errors.Errorf("invalid coin %q", part)
		}
		amount, err := uint256.FromDecimal(part[:i])
		if err != nil {
			return nil, errors.Wrapf(err, "invalid coin %q", part)
		}
		coins = append(coins, Coin{Denom: part[i:], Amount: amount})
	}
	return coins.Normalize()
}
