// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/wenruji/decaygame/types"
)

// Coin is the JSON form of a coin. Amounts are hex encoded.
type Coin struct {
	Denom  string                `json:"denom"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

func ConvertCoins(coins types.Coins) []Coin {
	out := make([]Coin, 0, len(coins))
	for _, c := range coins {
		out = append(out, Coin{
			Denom:  c.Denom,
			Amount: (*math.HexOrDecimal256)(c.Amount.ToBig()),
		})
	}
	return out
}
