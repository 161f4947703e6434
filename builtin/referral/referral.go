// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package referral implements the referral contract: a registry of referral
// codes and the rewards ambassadors accrue for the players they bring.
package referral

import (
	"github.com/pkg/errors"

	"github.com/wenruji/decaygame/builtin/receipt"
	"github.com/wenruji/decaygame/fees"
	"github.com/wenruji/decaygame/kv"
	"github.com/wenruji/decaygame/log"
	"github.com/wenruji/decaygame/metrics"
	"github.com/wenruji/decaygame/reverts"
	"github.com/wenruji/decaygame/rewards"
	"github.com/wenruji/decaygame/storage"
	"github.com/wenruji/decaygame/types"
)

var (
	logger = log.WithContext("pkg", "referral")

	metricDistributions = metrics.LazyLoadCounter("referral_distributions_count")
	metricClaims        = metrics.LazyLoadCounter("referral_claims_count")
)

var (
	ErrInvalidConfig       = reverts.New(reverts.KindInvalid, "invalid referral config")
	ErrNotInstantiated     = reverts.New(reverts.KindNotFound, "referral not instantiated")
	ErrUnauthorized        = reverts.New(reverts.KindAuthorization, "unauthorized")
	ErrInvalidCode         = reverts.New(reverts.KindInvalid, "invalid referral code")
	ErrCodeTaken           = reverts.New(reverts.KindConflict, "referral code taken")
	ErrCodeNotFound        = reverts.New(reverts.KindNotFound, "referral code not found")
	ErrAlreadyReferred     = reverts.New(reverts.KindConflict, "referee already added")
	ErrSelfReferral        = reverts.New(reverts.KindAuthorization, "cannot refer self")
	ErrNoFunds             = reverts.New(reverts.KindInvalid, "no funds")
	ErrDenomNotWhitelisted = reverts.New(reverts.KindInvalid, "reward denom not on whitelist")
	ErrNoRewardsToClaim    = reverts.New(reverts.KindConflict, "no rewards to claim")
)

const (
	configKey = "config"

	userToCodeBucket    = kv.Bucket("ref/utc/")
	codeToUserBucket    = kv.Bucket("ref/ctu/")
	refereeToUserBucket = kv.Bucket("ref/rft/")

	maxCodeLength = 64
)

// Referral binds the referral contract state.
type Referral struct {
	config        *storage.Item[*Config]
	userToCode    *storage.Mapping[types.Address, string]
	codeToUser    *storage.Mapping[storage.StringKey, types.Address]
	refereeToUser *storage.Mapping[types.Address, types.Address]
	ledger        *rewards.Ledger
}

func New(store kv.Store) *Referral {
	return &Referral{
		config:        storage.NewItem[*Config](store, configKey),
		userToCode:    storage.NewMapping[types.Address, string](store, userToCodeBucket, storage.DecodeAddress),
		codeToUser:    storage.NewMapping[storage.StringKey, types.Address](store, codeToUserBucket, storage.DecodeString),
		refereeToUser: storage.NewMapping[types.Address, types.Address](store, refereeToUserBucket, storage.DecodeAddress),
		ledger:        rewards.New(store),
	}
}

func (r *Referral) Instantiate(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	return r.config.Set(cfg)
}

func (r *Referral) Config() (*Config, error) {
	cfg, ok, err := r.config.MayGet()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotInstantiated
	}
	return cfg, nil
}

// UpdateConfig is restricted to the owner.
func (r *Referral) UpdateConfig(sender types.Address, update *ConfigUpdate) (*receipt.Receipt, error) {
	cfg, err := r.Config()
	if err != nil {
		return nil, err
	}
	if sender != cfg.Owner {
		return nil, ErrUnauthorized
	}
	cfg.ApplyUpdate(update)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := r.config.Set(cfg); err != nil {
		return nil, err
	}
	return new(receipt.Receipt).Emit(receipt.NewEvent("referral/update_config")), nil
}

// GenCode registers code as the referral code of user. A user has at most
// one code and a code belongs to one user.
func (r *Referral) GenCode(user types.Address, code string) (*receipt.Receipt, error) {
	if code == "" || len(code) > maxCodeLength {
		return nil, errors.Wrapf(ErrInvalidCode, "length %d", len(code))
	}
	if has, err := r.userToCode.Has(user); err != nil {
		return nil, err
	} else if has {
		return nil, errors.Wrap(ErrCodeTaken, "user already has a code")
	}
	if has, err := r.codeToUser.Has(storage.StringKey(code)); err != nil {
		return nil, err
	} else if has {
		return nil, errors.Wrapf(ErrCodeTaken, "code %q", code)
	}

	if err := r.userToCode.Set(user, code); err != nil {
		return nil, err
	}
	if err := r.codeToUser.Set(storage.StringKey(code), user); err != nil {
		return nil, err
	}
	logger.Debug("code generated", "user", user, "code", code)
	return new(receipt.Receipt).Emit(receipt.NewEvent("referral/gen_code", "user", user, "code", code)), nil
}

// CodeOf returns the code of user, or "" if none.
func (r *Referral) CodeOf(user types.Address) (string, error) {
	return r.userToCode.Get(user)
}

func (r *Referral) AddrOf(code string) (types.Address, error) {
	addr, ok, err := r.codeToUser.MayGet(storage.StringKey(code))
	if err != nil {
		return types.Address{}, err
	}
	if !ok {
		return types.Address{}, errors.Wrapf(ErrCodeNotFound, "code %q", code)
	}
	return addr, nil
}

// AddReferee records that referee was brought in by the owner of code.
// caller is the contract asking, checked against the whitelist.
func (r *Referral) AddReferee(caller, referee types.Address, code string) (*receipt.Receipt, error) {
	cfg, err := r.Config()
	if err != nil {
		return nil, err
	}
	if !cfg.allowsContract(caller) {
		return nil, ErrUnauthorized
	}
	ambassador, err := r.AddrOf(code)
	if err != nil {
		return nil, err
	}
	if err := r.addReferee(referee, ambassador); err != nil {
		return nil, err
	}
	return new(receipt.Receipt).Emit(receipt.NewEvent("referral/add_referee", "referee", referee, "referrer", ambassador)), nil
}

func (r *Referral) addReferee(referee, ambassador types.Address) error {
	if referee == ambassador {
		return ErrSelfReferral
	}
	if has, err := r.refereeToUser.Has(referee); err != nil {
		return err
	} else if has {
		return ErrAlreadyReferred
	}
	if err := r.refereeToUser.Set(referee, ambassador); err != nil {
		return err
	}
	logger.Debug("referee added", "referee", referee, "referrer", ambassador)
	return nil
}

// ReferrerOf returns who referred referee, or nil.
func (r *Referral) ReferrerOf(referee types.Address) (*types.Address, error) {
	addr, ok, err := r.refereeToUser.MayGet(referee)
	if err != nil || !ok {
		return nil, err
	}
	return &addr, nil
}

// Referees lists the users user referred, in ascending order.
func (r *Referral) Referees(user types.Address) ([]types.Address, error) {
	var referees []types.Address
	err := r.refereeToUser.Iterate(func(referee, referrer types.Address) (bool, error) {
		if referrer == user {
			referees = append(referees, referee)
		}
		return true, nil
	})
	return referees, err
}

// Resolve is the join hook of the game contracts. A user keeps the referrer
// it already has; otherwise a given code makes it a referee of the code's
// owner. It returns the ambassador, or nil.
func (r *Referral) Resolve(caller, user types.Address, code string) (*types.Address, error) {
	referrer, err := r.ReferrerOf(user)
	if err != nil || referrer != nil {
		return referrer, err
	}
	if code == "" {
		return nil, nil
	}
	cfg, err := r.Config()
	if err != nil {
		return nil, err
	}
	if !cfg.allowsContract(caller) {
		return nil, ErrUnauthorized
	}
	ambassador, err := r.AddrOf(code)
	if err != nil {
		return nil, err
	}
	if err := r.addReferee(user, ambassador); err != nil {
		return nil, err
	}
	return &ambassador, nil
}

// Distribute splits funds across weights and credits each ambassador.
// Rounding dust is not credited to anyone.
func (r *Referral) Distribute(caller types.Address, funds types.Coins, weights []fees.Weight) (*receipt.Receipt, error) {
	cfg, err := r.Config()
	if err != nil {
		return nil, err
	}
	if !cfg.allowsContract(caller) {
		return nil, ErrUnauthorized
	}
	funds, err = funds.Normalize()
	if err != nil {
		return nil, reverts.ErrOverflow
	}
	if len(funds) == 0 {
		return nil, ErrNoFunds
	}
	for _, c := range funds {
		if !cfg.allowsDenom(c.Denom) {
			return nil, errors.Wrapf(ErrDenomNotWhitelisted, "denom %s", c.Denom)
		}
	}
	shares, err := fees.SplitProportional(funds, weights)
	if err != nil {
		return nil, err
	}
	for _, s := range shares {
		if err := r.ledger.Credit(s.Recipient, s.Coins); err != nil {
			return nil, err
		}
	}
	metricDistributions().Add(1)
	logger.Debug("rewards distributed", "sender", caller, "funds", funds, "referrers", len(weights))
	return new(receipt.Receipt).Emit(receipt.NewEvent("referral/distribute_rewards",
		"action", "distribute-rewards",
		"sender", caller,
	)), nil
}

// ClaimRewards hands out everything user accrued.
func (r *Referral) ClaimRewards(user types.Address) (types.Coins, *receipt.Receipt, error) {
	coins, err := r.ledger.Claim(user)
	if err != nil {
		return nil, nil, err
	}
	if len(coins) == 0 {
		return nil, nil, ErrNoRewardsToClaim
	}
	metricClaims().Add(1)
	rcpt := new(receipt.Receipt).
		Send(user, coins).
		Emit(receipt.NewEvent("referral/claim", "action", "claim", "staker", user))
	return coins, rcpt, nil
}

func (r *Referral) PendingRewards(user types.Address) (types.Coins, error) {
	return r.ledger.Peek(user)
}
