// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fees

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wenruji/decaygame/types"
)

var (
	alice = types.BytesToAddress([]byte("alice"))
	bob   = types.BytesToAddress([]byte("bob"))
	carol = types.BytesToAddress([]byte("carol"))
)

func coins(pairs ...any) types.Coins {
	var out types.Coins
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, types.NewCoin64(pairs[i].(string), uint64(pairs[i+1].(int))))
	}
	return out
}

func TestSplitProportional(t *testing.T) {
	shares, err := SplitProportional(coins("X", 1000), []Weight{
		{alice, types.Percent(10)},
		{bob, types.Percent(30)},
	})
	require.NoError(t, err)
	assert.Equal(t, []Share{
		{alice, coins("X", 250)},
		{bob, coins("X", 750)},
	}, shares)
}

func TestSplitProportional_DustRetained(t *testing.T) {
	third := types.MustFraction(1, 3)
	shares, err := SplitProportional(coins("X", 100, "Y", 2), []Weight{
		{alice, third},
		{bob, third},
		{carol, third},
	})
	require.NoError(t, err)
	assert.Equal(t, []Share{
		{alice, coins("X", 33)},
		{bob, coins("X", 33)},
		{carol, coins("X", 33)},
	}, shares, "Y is too small for anyone and nobody gets the dust")
}

func TestSplitProportional_ListOrder(t *testing.T) {
	shares, err := SplitProportional(coins("b", 10, "a", 7), []Weight{
		{carol, types.MustFraction(2, 1)},
		{alice, types.Zero()},
		{bob, types.One()},
	})
	require.NoError(t, err)
	assert.Equal(t, []Share{
		{carol, coins("b", 6, "a", 4)},
		{bob, coins("b", 3, "a", 2)},
	}, shares)
}

func TestSplitProportional_ZeroWeight(t *testing.T) {
	_, err := SplitProportional(coins("X", 1000), []Weight{{alice, types.Zero()}})
	assert.ErrorIs(t, err, ErrZeroWeight)

	_, err = SplitProportional(coins("X", 1000), nil)
	assert.ErrorIs(t, err, ErrZeroWeight)
}

func TestSplitProportional_LargeAmount(t *testing.T) {
	maxAmount := new(uint256.Int).SetAllOne()
	shares, err := SplitProportional(types.Coins{types.NewCoin("X", maxAmount)}, []Weight{
		{alice, types.One()},
	})
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.True(t, shares[0].Coins[0].Amount.Eq(maxAmount))
}

func TestSplitAdditive(t *testing.T) {
	third := types.MustFraction(1, 3)
	shares, remaining, err := SplitAdditive(coins("X", 1000), []Weight{
		{alice, third},
		{bob, third},
		{carol, third},
	})
	require.NoError(t, err)
	assert.Equal(t, []Share{
		{alice, coins("X", 333)},
		{bob, coins("X", 333)},
		{carol, coins("X", 333)},
	}, shares)
	assert.Equal(t, coins("X", 1), remaining)
}

func TestSplitAdditive_PartialWeights(t *testing.T) {
	shares, remaining, err := SplitAdditive(coins("X", 1000, "Y", 5), []Weight{
		{alice, types.Percent(5)},
		{bob, types.Percent(10)},
	})
	require.NoError(t, err)
	assert.Equal(t, []Share{
		{alice, coins("X", 50)},
		{bob, coins("X", 100)},
	}, shares)
	assert.Equal(t, coins("X", 850, "Y", 5), remaining)
}

func TestSplitAdditive_AllTaken(t *testing.T) {
	shares, remaining, err := SplitAdditive(coins("X", 10), []Weight{
		{alice, types.MustFraction(1, 2)},
		{bob, types.MustFraction(1, 2)},
	})
	require.NoError(t, err)
	assert.Len(t, shares, 2)
	assert.Empty(t, remaining)
}

func TestSplitAdditive_Exceeds(t *testing.T) {
	_, _, err := SplitAdditive(coins("X", 10), []Weight{
		{alice, types.One()},
		{bob, types.One()},
	})
	assert.ErrorIs(t, err, ErrFeesExceedPool)
}

func TestPortions(t *testing.T) {
	portions, err := Portions(coins("X", 10), []Weight{
		{alice, types.MustFraction(1, 100)},
		{bob, types.MustFraction(99, 100)},
	})
	require.NoError(t, err)
	require.Len(t, portions, 2)
	assert.Empty(t, portions[0], "empty portions keep their slot")
	assert.Equal(t, coins("X", 9), portions[1])
}
