// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/wenruji/decaygame/kv"
	"github.com/wenruji/decaygame/log"
	"github.com/wenruji/decaygame/reverts"
	"github.com/wenruji/decaygame/storage"
	"github.com/wenruji/decaygame/types"
)

var logger = log.WithContext("pkg", "rewards")

const (
	userRewardsBucket = kv.Bucket("rwd/ur/")
	denomsBucket      = kv.Bucket("rwd/gi/")
)

// userDenom keys an accrual by user, then denomination.
type userDenom struct {
	user  types.Address
	denom string
}

func (k userDenom) Bytes() []byte {
	return append(k.user.Bytes(), k.denom...)
}

func decodeUserDenom(raw []byte) (userDenom, error) {
	if len(raw) < types.AddressLength {
		return userDenom{}, errors.Errorf("invalid reward key length %d", len(raw))
	}
	return userDenom{
		user:  types.BytesToAddress(raw[:types.AddressLength]),
		denom: string(raw[types.AddressLength:]),
	}, nil
}

// Ledger accrues rewards per user and denomination. Claiming zeroes the
// user's balance; sending the coins is the caller's job.
type Ledger struct {
	accrued *storage.Mapping[userDenom, *uint256.Int]
	denoms  *storage.Mapping[storage.StringKey, bool]
}

func New(store kv.Store) *Ledger {
	return &Ledger{
		accrued: storage.NewMapping[userDenom, *uint256.Int](store, userRewardsBucket, decodeUserDenom),
		denoms:  storage.NewMapping[storage.StringKey, bool](store, denomsBucket, storage.DecodeString),
	}
}

// Credit adds coins to the user's balance.
func (l *Ledger) Credit(user types.Address, coins types.Coins) error {
	type update struct {
		key    userDenom
		amount *uint256.Int
		fresh  bool
	}
	// merge first, so a denom listed twice is added once
	coins, err := coins.Normalize()
	if err != nil {
		return reverts.ErrOverflow
	}

	updates := make([]update, 0, len(coins))
	for _, c := range coins {
		key := userDenom{user, c.Denom}
		cur, err := l.accrued.Get(key)
		if err != nil {
			return errors.Wrap(err, "get accrued rewards")
		}
		sum, overflow := new(uint256.Int).AddOverflow(cur, c.Amount)
		if overflow {
			return errors.Wrapf(reverts.ErrOverflow, "rewards of %s in %s", user, c.Denom)
		}
		known, err := l.denoms.Has(storage.StringKey(c.Denom))
		if err != nil {
			return errors.Wrap(err, "get denoms")
		}
		updates = append(updates, update{key, sum, !known})
	}

	for _, u := range updates {
		if err := l.accrued.Set(u.key, u.amount); err != nil {
			return err
		}
		if u.fresh {
			if err := l.denoms.Set(storage.StringKey(u.key.denom), true); err != nil {
				return err
			}
		}
	}
	logger.Debug("credited rewards", "user", user, "coins", coins)
	return nil
}

// Denoms lists every denomination ever credited, sorted.
func (l *Ledger) Denoms() ([]string, error) {
	keys, err := l.denoms.Keys()
	if err != nil {
		return nil, err
	}
	denoms := make([]string, 0, len(keys))
	for _, k := range keys {
		denoms = append(denoms, string(k))
	}
	return denoms, nil
}

// Peek returns the user's balance without touching it.
func (l *Ledger) Peek(user types.Address) (types.Coins, error) {
	denoms, err := l.Denoms()
	if err != nil {
		return nil, err
	}
	var coins types.Coins
	for _, denom := range denoms {
		amount, err := l.accrued.Get(userDenom{user, denom})
		if err != nil {
			return nil, errors.Wrap(err, "get accrued rewards")
		}
		coins = append(coins, types.Coin{Denom: denom, Amount: amount})
	}
	return coins.Normalize()
}

// Claim returns the user's balance and zeroes it.
func (l *Ledger) Claim(user types.Address) (types.Coins, error) {
	coins, err := l.Peek(user)
	if err != nil {
		return nil, err
	}
	for _, c := range coins {
		if err := l.accrued.Delete(userDenom{user, c.Denom}); err != nil {
			return nil, err
		}
	}
	if len(coins) > 0 {
		logger.Debug("claimed rewards", "user", user, "coins", coins)
	}
	return coins, nil
}
