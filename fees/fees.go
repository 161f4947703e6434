// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package fees splits coin amounts across weighted recipients.
//
// Both policies floor per coin and per recipient, walking coins and
// recipients in the order given, so the rounding dust is reproducible.
package fees

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/wenruji/decaygame/reverts"
	"github.com/wenruji/decaygame/types"
)

var (
	ErrZeroWeight     = reverts.New(reverts.KindInvalid, "total fee weight is zero")
	ErrFeesExceedPool = reverts.New(reverts.KindInvalid, "fee weights exceed the amount")
)

// Weight is the share of one recipient.
type Weight struct {
	Recipient types.Address  `json:"recipient" yaml:"recipient"`
	Weight    types.Fraction `json:"weight" yaml:"weight"`
}

// Share is what one recipient receives.
type Share struct {
	Recipient types.Address `json:"recipient"`
	Coins     types.Coins   `json:"coins"`
}

// TotalWeight sums the weights exactly.
func TotalWeight(weights []Weight) (types.Fraction, error) {
	total := types.Zero()
	for _, w := range weights {
		var err error
		if total, err = total.Add(w.Weight); err != nil {
			return types.Fraction{}, errors.Wrap(err, "total weight")
		}
	}
	return total, nil
}

// SplitAdditive takes floor(amount * weight) out of every coin for every
// recipient. What is not taken, rounding dust included, is returned as remaining.
func SplitAdditive(amounts types.Coins, weights []Weight) ([]Share, types.Coins, error) {
	shares := make([]types.Coins, len(weights))
	var remaining types.Coins

	for _, coin := range amounts {
		if coin.IsZero() {
			continue
		}
		taken := new(uint256.Int)
		for i, w := range weights {
			fee, err := w.Weight.MulFloor(coin.Amount)
			if err != nil {
				return nil, nil, reverts.ErrOverflow
			}
			if fee.IsZero() {
				continue
			}
			shares[i] = append(shares[i], types.Coin{Denom: coin.Denom, Amount: fee})
			if _, overflow := taken.AddOverflow(taken, fee); overflow {
				return nil, nil, reverts.ErrOverflow
			}
		}
		left, underflow := new(uint256.Int).SubOverflow(coin.Amount, taken)
		if underflow {
			return nil, nil, errors.Wrapf(ErrFeesExceedPool, "denom %s", coin.Denom)
		}
		if !left.IsZero() {
			remaining = append(remaining, types.Coin{Denom: coin.Denom, Amount: left})
		}
	}
	return collect(weights, shares), remaining, nil
}

// SplitProportional hands out every coin by weight_i / sum(weights). The sum of
// the shares may fall short of the amount; that dust stays with the caller.
func SplitProportional(amounts types.Coins, weights []Weight) ([]Share, error) {
	portions, err := Portions(amounts, weights)
	if err != nil {
		return nil, err
	}
	return collect(weights, portions), nil
}

// Portions is SplitProportional keeping empty shares: portion i belongs to weights[i].
func Portions(amounts types.Coins, weights []Weight) ([]types.Coins, error) {
	total, err := TotalWeight(weights)
	if err != nil {
		return nil, err
	}
	if total.IsZero() {
		return nil, ErrZeroWeight
	}

	// w_i / (N/D) == (n_i * D) / (d_i * N)
	nums := make([]*uint256.Int, len(weights))
	dens := make([]*uint256.Int, len(weights))
	for i, w := range weights {
		if w.Weight.IsZero() {
			continue
		}
		nums[i] = new(uint256.Int).Mul(uint256.NewInt(w.Weight.Num), uint256.NewInt(total.Den))
		dens[i] = new(uint256.Int).Mul(uint256.NewInt(w.Weight.Den), uint256.NewInt(total.Num))
	}

	shares := make([]types.Coins, len(weights))
	for _, coin := range amounts {
		if coin.IsZero() {
			continue
		}
		for i := range weights {
			if nums[i] == nil {
				continue
			}
			amount, overflow := new(uint256.Int).MulDivOverflow(coin.Amount, nums[i], dens[i])
			if overflow {
				return nil, reverts.ErrOverflow
			}
			if amount.IsZero() {
				continue
			}
			shares[i] = append(shares[i], types.Coin{Denom: coin.Denom, Amount: amount})
		}
	}
	return shares, nil
}

func collect(weights []Weight, shares []types.Coins) []Share {
	out := make([]Share, 0, len(weights))
	for i, coins := range shares {
		if len(coins) == 0 {
			continue
		}
		out = append(out, Share{Recipient: weights[i].Recipient, Coins: coins})
	}
	return out
}
