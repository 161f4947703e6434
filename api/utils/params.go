// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"

	"github.com/wenruji/decaygame/types"
)

// ParseRound parses a round query parameter. "" and "live" select the live
// round (nil); otherwise a decimal or 0x-prefixed hex index.
func ParseRound(round string) (*uint64, error) {
	if round == "" || round == "live" {
		return nil, nil
	}
	var (
		idx uint64
		err error
	)
	if strings.HasPrefix(round, "0x") {
		idx, err = hexutil.DecodeUint64(round)
	} else {
		idx, err = strconv.ParseUint(round, 10, 64)
	}
	if err != nil {
		return nil, errors.Wrap(err, "round")
	}
	if idx == 0 {
		return nil, errors.New("round: index starts at 1")
	}
	return &idx, nil
}

// ParseAddress parses a path parameter into an address.
func ParseAddress(s string) (types.Address, error) {
	addr, err := types.ParseAddress(s)
	if err != nil {
		return types.Address{}, errors.Wrap(err, "address")
	}
	return *addr, nil
}
