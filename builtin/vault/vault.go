// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package vault implements the crack-the-vault contract: a plain decay pool
// whose winner is declared by an admin. Donors may top up the prize while the
// round runs.
package vault

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/wenruji/decaygame/builtin/receipt"
	"github.com/wenruji/decaygame/decay"
	"github.com/wenruji/decaygame/fees"
	"github.com/wenruji/decaygame/kv"
	"github.com/wenruji/decaygame/log"
	"github.com/wenruji/decaygame/metrics"
	"github.com/wenruji/decaygame/reverts"
	"github.com/wenruji/decaygame/storage"
	"github.com/wenruji/decaygame/types"
)

var (
	logger = log.WithContext("pkg", "vault")

	metricJoins       = metrics.LazyLoadCounter("vault_joins_count")
	metricDonations   = metrics.LazyLoadCounterVec("vault_donations_count", []string{"denom"})
	metricRoundsEnded = metrics.LazyLoadCounterVec("vault_rounds_ended_count", []string{"outcome"})
)

var (
	ErrInvalidConfig       = reverts.New(reverts.KindInvalid, "invalid vault config")
	ErrNotInstantiated     = reverts.New(reverts.KindNotFound, "vault not instantiated")
	ErrAlreadyInstantiated = reverts.New(reverts.KindConflict, "vault already instantiated")
	ErrUnauthorized        = reverts.New(reverts.KindAuthorization, "unauthorized")
	ErrInsufficientFunds   = reverts.New(reverts.KindInvalid, "insufficient funds")
	ErrInvalidPayment      = reverts.New(reverts.KindInvalid, "invalid payment")
	ErrNonPayable          = reverts.New(reverts.KindInvalid, "call does not accept funds")
	ErrNoFunds             = reverts.New(reverts.KindInvalid, "no funds")
	ErrAlreadyJoined       = reverts.New(reverts.KindConflict, "already joined")
	ErrNotJoined           = reverts.New(reverts.KindNotFound, "not joined")
	ErrRoundNotCompleted   = reverts.New(reverts.KindConflict, "round not completed")
	ErrInvalidWinner       = reverts.New(reverts.KindInvalid, "invalid winner")
)

const (
	configKey = "config"
	poolKey   = "dg"

	accountsBucket   = kv.Bucket("dg/a/")
	donationsBucket  = kv.Bucket("r/")
	refWeightsBucket = kv.Bucket("rw/")
	adminsBucket     = kv.Bucket("admin/")
)

// Referrals is the part of the referral contract the vault calls into.
type Referrals interface {
	Resolve(caller, user types.Address, code string) (*types.Address, error)
	Distribute(caller types.Address, funds types.Coins, weights []fees.Weight) (*receipt.Receipt, error)
}

type Vault struct {
	self       types.Address
	config     *storage.Item[*Config]
	pool       *storage.Item[*decay.Pool]
	accounts   *storage.Mapping[types.Address, *decay.Account]
	donations  *storage.Mapping[storage.StringKey, *uint256.Int]
	refWeights *storage.Mapping[types.Address, uint64]
	admins     *storage.Mapping[types.Address, bool]
	referral   Referrals
}

func New(self types.Address, store kv.Store, referral Referrals) *Vault {
	return &Vault{
		self:       self,
		config:     storage.NewItem[*Config](store, configKey),
		pool:       storage.NewItem[*decay.Pool](store, poolKey),
		accounts:   storage.NewMapping[types.Address, *decay.Account](store, accountsBucket, storage.DecodeAddress),
		donations:  storage.NewMapping[storage.StringKey, *uint256.Int](store, donationsBucket, storage.DecodeString),
		refWeights: storage.NewMapping[types.Address, uint64](store, refWeightsBucket, storage.DecodeAddress),
		admins:     storage.NewMapping[types.Address, bool](store, adminsBucket, storage.DecodeAddress),
		referral:   referral,
	}
}

func (v *Vault) Config() (*Config, error) {
	cfg, ok, err := v.config.MayGet()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotInstantiated
	}
	return cfg, nil
}

// GameStatus returns the pool of the current round.
func (v *Vault) GameStatus() (*decay.Pool, error) {
	pool, ok, err := v.pool.MayGet()
	if err != nil {
		return nil, errors.Wrap(err, "get pool")
	}
	if !ok {
		return nil, ErrNotInstantiated
	}
	return pool, nil
}

// Instantiate stores the config, the admins and opens the first round.
// The owner is always an admin.
func (v *Vault) Instantiate(now types.Timestamp, msg *InstantiateMsg) (*receipt.Receipt, error) {
	if _, ok, err := v.config.MayGet(); err != nil {
		return nil, err
	} else if ok {
		return nil, ErrAlreadyInstantiated
	}
	cfg, err := NewConfig(msg)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pool, err := decay.NewPool(msg.StartsAt, msg.StartsAt.Add(msg.DurationSeconds))
	if err != nil {
		return nil, err
	}
	if err := pool.Validate(now); err != nil {
		return nil, err
	}
	if err := v.config.Set(cfg); err != nil {
		return nil, err
	}
	if err := v.pool.Set(pool); err != nil {
		return nil, err
	}
	if err := v.setAdmins(append([]types.Address{msg.Owner}, msg.Admins...)); err != nil {
		return nil, err
	}
	logger.Info("vault instantiated", "start", pool.Start, "end", pool.End)
	return new(receipt.Receipt).Emit(receipt.NewEvent("vault/instantiate",
		"starts_at", pool.Start,
		"ends_at", pool.End,
	)), nil
}

func (v *Vault) setAdmins(admins []types.Address) error {
	if err := v.admins.Clear(); err != nil {
		return err
	}
	for _, admin := range admins {
		if admin.IsZero() {
			return errors.Wrap(ErrInvalidConfig, "admin address")
		}
		if err := v.admins.Set(admin, true); err != nil {
			return err
		}
	}
	return nil
}

func (v *Vault) IsAdmin(addr types.Address) (bool, error) {
	return v.admins.Has(addr)
}

func (v *Vault) HasJoined(addr types.Address) (bool, error) {
	return v.accounts.Has(addr)
}

func (v *Vault) HasExited(addr types.Address) (bool, error) {
	acc, ok, err := v.accounts.MayGet(addr)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, ErrNotJoined
	}
	return acc.HasExited(), nil
}

// Donations lists the donated coins of the current prize.
func (v *Vault) Donations() (types.Coins, error) {
	var coins types.Coins
	err := v.donations.Iterate(func(denom storage.StringKey, amount *uint256.Int) (bool, error) {
		coins = append(coins, types.NewCoin(string(denom), amount))
		return true, nil
	})
	return coins, err
}

// RefWeight is the number of players addr brought into the round.
func (v *Vault) RefWeight(addr types.Address) (uint64, error) {
	return v.refWeights.Get(addr)
}

func (v *Vault) mustPay(cfg *Config, funds types.Coins) (*uint256.Int, error) {
	funds, err := funds.Normalize()
	if err != nil {
		return nil, reverts.ErrOverflow
	}
	if len(funds) != 1 || funds[0].Denom != cfg.TicketDenom {
		return nil, errors.Wrapf(ErrInvalidPayment, "want %s%s, got %s", cfg.TicketAmount.Dec(), cfg.TicketDenom, funds)
	}
	if !funds[0].Amount.Eq(cfg.TicketAmount) {
		return nil, ErrInsufficientFunds
	}
	return funds[0].Amount, nil
}

func nonPayable(funds types.Coins) error {
	if !funds.IsZero() {
		return ErrNonPayable
	}
	return nil
}

// Join stakes one ticket for sender. The round may already be running.
func (v *Vault) Join(now types.Timestamp, sender types.Address, funds types.Coins, refCode string) (*receipt.Receipt, error) {
	cfg, err := v.Config()
	if err != nil {
		return nil, err
	}
	amount, err := v.mustPay(cfg, funds)
	if err != nil {
		return nil, err
	}
	if joined, err := v.accounts.Has(sender); err != nil {
		return nil, err
	} else if joined {
		return nil, ErrAlreadyJoined
	}
	pool, err := v.GameStatus()
	if err != nil {
		return nil, err
	}
	if pool.IsEnded(now) {
		return nil, decay.ErrRoundEnded
	}

	ambassador, err := v.referral.Resolve(v.self, sender, refCode)
	if err != nil {
		return nil, err
	}
	ambassadorAttr := ""
	if ambassador != nil {
		weight, err := v.refWeights.Get(*ambassador)
		if err != nil {
			return nil, err
		}
		if err := v.refWeights.Set(*ambassador, weight+1); err != nil {
			return nil, err
		}
		ambassadorAttr = ambassador.String()
	}

	acc, err := pool.Join(amount, now)
	if err != nil {
		return nil, err
	}
	if err := v.pool.Set(pool); err != nil {
		return nil, err
	}
	if err := v.accounts.Set(sender, acc); err != nil {
		return nil, err
	}
	metricJoins().Add(1)
	logger.Debug("joined", "account", sender, "ambassador", ambassadorAttr)
	return new(receipt.Receipt).Emit(receipt.NewEvent("vault/join",
		"account", sender,
		"ambassador", ambassadorAttr,
	)), nil
}

// Exit withdraws the decayed stake of sender. Before the start the whole
// ticket comes back.
func (v *Vault) Exit(now types.Timestamp, sender types.Address, funds types.Coins) (*receipt.Receipt, error) {
	if err := nonPayable(funds); err != nil {
		return nil, err
	}
	cfg, err := v.Config()
	if err != nil {
		return nil, err
	}
	pool, err := v.GameStatus()
	if err != nil {
		return nil, err
	}
	if now >= pool.End {
		return nil, decay.ErrRoundEnded
	}
	acc, ok, err := v.accounts.MayGet(sender)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotJoined
	}
	if err := pool.Exit(now, acc); err != nil {
		return nil, err
	}
	amount := pool.Claim(acc)
	if err := v.pool.Set(pool); err != nil {
		return nil, err
	}
	if err := v.accounts.Set(sender, acc); err != nil {
		return nil, err
	}
	logger.Debug("exited", "account", sender, "amount", amount, "fraction", acc.DecaySnapshot)
	return new(receipt.Receipt).
		Send(sender, types.Coins{types.NewCoin(cfg.TicketDenom, amount)}).
		Emit(receipt.NewEvent("vault/exit",
			"account", sender,
			"decay_snap", acc.DecaySnapshot,
		)), nil
}

// Donate adds funds to the prize. Only configured donors may donate, and
// only before the round ends.
func (v *Vault) Donate(now types.Timestamp, sender types.Address, funds types.Coins) (*receipt.Receipt, error) {
	cfg, err := v.Config()
	if err != nil {
		return nil, err
	}
	pool, err := v.GameStatus()
	if err != nil {
		return nil, err
	}
	if now >= pool.End {
		return nil, decay.ErrRoundEnded
	}
	if !cfg.isDonor(sender) {
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
		cur, err := v.donations.Get(storage.StringKey(c.Denom))
		if err != nil {
			return nil, err
		}
		sum := new(uint256.Int)
		if cur != nil {
			sum.Set(cur)
		}
		if _, overflow := sum.AddOverflow(sum, c.Amount); overflow {
			return nil, reverts.ErrOverflow
		}
		if err := v.donations.Set(storage.StringKey(c.Denom), sum); err != nil {
			return nil, err
		}
		metricDonations().AddWithLabel(1, map[string]string{"denom": c.Denom})
	}
	return new(receipt.Receipt).Emit(receipt.NewEvent("vault/donate", "sender", sender, "funds", funds)), nil
}

// EndRound finalizes the pot and pays it out to winner. Admin only. A round
// with nothing left to pay restarts instead; otherwise it restarts if asked.
func (v *Vault) EndRound(now types.Timestamp, sender types.Address, funds types.Coins, winner types.Address, restart bool) (*receipt.Receipt, error) {
	if err := nonPayable(funds); err != nil {
		return nil, err
	}
	if admin, err := v.admins.Has(sender); err != nil {
		return nil, err
	} else if !admin {
		return nil, ErrUnauthorized
	}
	cfg, err := v.Config()
	if err != nil {
		return nil, err
	}
	pool, err := v.GameStatus()
	if err != nil {
		return nil, err
	}

	amount, err := pool.FinalizeRewards(now)
	if errors.Is(err, decay.ErrNoRewards) {
		metricRoundsEnded().AddWithLabel(1, map[string]string{"outcome": "empty"})
		rcpt := new(receipt.Receipt).Emit(receipt.NewEvent("vault/end_game",
			"winner", "",
			"prize_amount", "",
			"prize_denom", "",
		))
		restarted, err := v.Restart(now)
		if err != nil {
			return nil, err
		}
		return rcpt.Merge(restarted), nil
	}
	if err != nil {
		return nil, err
	}
	if winner.IsZero() {
		return nil, ErrInvalidWinner
	}
	if err := v.pool.Set(pool); err != nil {
		return nil, err
	}

	rcpt, err := v.payout(cfg, winner, amount)
	if err != nil {
		return nil, err
	}
	metricRoundsEnded().AddWithLabel(1, map[string]string{"outcome": "paid"})
	logger.Info("vault cracked", "winner", winner, "pot", amount)
	rcpt.Emit(receipt.NewEvent("vault/end_game",
		"winner", winner,
		"prize_amount", amount,
		"prize_denom", cfg.TicketDenom,
	))

	if restart {
		restarted, err := v.Restart(now)
		if err != nil {
			return nil, err
		}
		rcpt.Merge(restarted)
	}
	return rcpt, nil
}

// payout splits the pot between the winner and the fee recipients. The
// donations go to the winner untouched.
func (v *Vault) payout(cfg *Config, winner types.Address, amount *uint256.Int) (*receipt.Receipt, error) {
	var referrers []fees.Weight
	err := v.refWeights.Iterate(func(addr types.Address, weight uint64) (bool, error) {
		referrers = append(referrers, fees.Weight{Recipient: addr, Weight: types.MustFraction(weight, 1)})
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	weights := []fees.Weight{
		{Recipient: winner, Weight: cfg.WinnerShare},
		{Recipient: cfg.Fees.Platform.Address, Weight: cfg.Fees.Platform.Share},
		{Recipient: cfg.Fees.Treasury.Address, Weight: cfg.Fees.Treasury.Share},
	}
	if len(referrers) > 0 {
		weights = append(weights, fees.Weight{Recipient: cfg.Fees.Referral.Address, Weight: cfg.Fees.Referral.Share})
	}
	portions, err := fees.Portions(types.Coins{types.NewCoin(cfg.TicketDenom, amount)}, weights)
	if err != nil {
		return nil, err
	}

	donations, err := v.Donations()
	if err != nil {
		return nil, err
	}
	prize, err := append(portions[0], donations...).Normalize()
	if err != nil {
		return nil, reverts.ErrOverflow
	}
	if err := v.donations.Clear(); err != nil {
		return nil, err
	}

	rcpt := new(receipt.Receipt).
		Send(winner, prize).
		Send(cfg.Fees.Platform.Address, portions[1]).
		Send(cfg.Fees.Treasury.Address, portions[2])
	if len(referrers) > 0 && !portions[3].IsZero() {
		distributed, err := v.referral.Distribute(v.self, portions[3], referrers)
		if err != nil {
			return nil, err
		}
		rcpt.Send(cfg.Fees.Referral.Address, portions[3]).Merge(distributed)
	}
	return rcpt, nil
}

// Restart opens the next round once the current one is ended and paid out.
// Donations that were not paid out carry over.
func (v *Vault) Restart(now types.Timestamp) (*receipt.Receipt, error) {
	cfg, err := v.Config()
	if err != nil {
		return nil, err
	}
	pool, err := v.GameStatus()
	if err != nil {
		return nil, err
	}
	if !pool.IsEnded(now) {
		return nil, decay.ErrRoundNotEnded
	}
	if !pool.IsFinalized() {
		return nil, ErrRoundNotCompleted
	}

	start := now.Add(cfg.GameDelaySeconds)
	next, err := decay.NewPool(start, start.Add(cfg.DurationSeconds))
	if err != nil {
		return nil, err
	}
	if err := v.accounts.Clear(); err != nil {
		return nil, errors.Wrap(err, "clear accounts")
	}
	if err := v.refWeights.Clear(); err != nil {
		return nil, errors.Wrap(err, "clear referral weights")
	}
	if err := v.pool.Set(next); err != nil {
		return nil, err
	}
	logger.Info("vault restarted", "start", next.Start, "end", next.End)
	return new(receipt.Receipt).Emit(receipt.NewEvent("vault/restart",
		"game_starts_at", next.Start,
		"game_ends_at", next.End,
	)), nil
}

// UpdateConfig is restricted to the owner, between a finalized round and the
// restart.
func (v *Vault) UpdateConfig(sender types.Address, update *ConfigUpdate) (*receipt.Receipt, error) {
	cfg, err := v.Config()
	if err != nil {
		return nil, err
	}
	if sender != cfg.Owner {
		return nil, ErrUnauthorized
	}
	pool, err := v.GameStatus()
	if err != nil {
		return nil, err
	}
	if !pool.IsFinalized() {
		return nil, ErrRoundNotCompleted
	}
	if err := cfg.ApplyUpdate(update); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if update.Admins != nil {
		if err := v.setAdmins(*update.Admins); err != nil {
			return nil, err
		}
	}
	if err := v.config.Set(cfg); err != nil {
		return nil, err
	}
	return new(receipt.Receipt).Emit(receipt.NewEvent("vault/update_config")), nil
}
