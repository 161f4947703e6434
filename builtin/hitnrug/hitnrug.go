// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package hitnrug implements the hit'n'rug contract. Players buy a ticket
// before the round opens, then keep, hit or help each other until the end.
// The top scorer takes the pot, minus the platform and referral fees.
package hitnrug

import (
	"github.com/pkg/errors"

	"github.com/wenruji/decaygame/builtin/receipt"
	"github.com/wenruji/decaygame/fees"
	"github.com/wenruji/decaygame/game"
	"github.com/wenruji/decaygame/kv"
	"github.com/wenruji/decaygame/log"
	"github.com/wenruji/decaygame/reverts"
	"github.com/wenruji/decaygame/storage"
	"github.com/wenruji/decaygame/types"
)

var logger = log.WithContext("pkg", "hitnrug")

var (
	ErrInvalidConfig       = reverts.New(reverts.KindInvalid, "invalid hitnrug config")
	ErrNotInstantiated     = reverts.New(reverts.KindNotFound, "hitnrug not instantiated")
	ErrAlreadyInstantiated = reverts.New(reverts.KindConflict, "hitnrug already instantiated")
	ErrUnauthorized        = reverts.New(reverts.KindAuthorization, "unauthorized")
	ErrInsufficientFunds   = reverts.New(reverts.KindInvalid, "insufficient funds")
	ErrInvalidPayment      = reverts.New(reverts.KindInvalid, "invalid payment")
	ErrNonPayable          = reverts.New(reverts.KindInvalid, "call does not accept funds")
)

const configKey = "config"

// ReferralHook is the part of the referral contract the game calls into.
type ReferralHook interface {
	Resolve(caller, user types.Address, code string) (*types.Address, error)
	Distribute(caller types.Address, funds types.Coins, weights []fees.Weight) (*receipt.Receipt, error)
}

// HitNRug binds the contract state. self is the contract's own address.
type HitNRug struct {
	self     types.Address
	config   *storage.Item[*Config]
	game     *game.Machine
	referral ReferralHook
}

func New(self types.Address, store kv.Store, referral ReferralHook) *HitNRug {
	return &HitNRug{
		self:     self,
		config:   storage.NewItem[*Config](store, configKey),
		game:     game.New(store),
		referral: referral,
	}
}

// Game exposes the round state for queries.
func (h *HitNRug) Game() *game.Machine {
	return h.game
}

func (h *HitNRug) Config() (*Config, error) {
	cfg, ok, err := h.config.MayGet()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotInstantiated
	}
	return cfg, nil
}

// Instantiate stores the config and opens round 1.
func (h *HitNRug) Instantiate(now types.Timestamp, msg *InstantiateMsg) (*receipt.Receipt, error) {
	if _, ok, err := h.config.MayGet(); err != nil {
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
	if err := h.game.Initialize(now, msg.StartsAt, msg.StartsAt.Add(msg.DurationSeconds)); err != nil {
		return nil, err
	}
	if err := h.config.Set(cfg); err != nil {
		return nil, err
	}
	return new(receipt.Receipt).Emit(receipt.NewEvent("hitnrug/instantiate",
		"starts_at", msg.StartsAt,
		"duration", msg.DurationSeconds,
	)), nil
}

// mustPay returns nil if funds are exactly the ticket.
func mustPay(cfg *Config, funds types.Coins) error {
	funds, err := funds.Normalize()
	if err != nil {
		return reverts.ErrOverflow
	}
	if len(funds) != 1 || funds[0].Denom != cfg.TicketDenom {
		return errors.Wrapf(ErrInvalidPayment, "want %s%s, got %s", cfg.TicketAmount.Dec(), cfg.TicketDenom, funds)
	}
	if !funds[0].Amount.Eq(cfg.TicketAmount) {
		return ErrInsufficientFunds
	}
	return nil
}

func nonPayable(funds types.Coins) error {
	if !funds.IsZero() {
		return ErrNonPayable
	}
	return nil
}

// Join buys a ticket for sender. refCode, if any, names who brought it.
func (h *HitNRug) Join(now types.Timestamp, sender types.Address, funds types.Coins, refCode string) (*receipt.Receipt, error) {
	cfg, err := h.Config()
	if err != nil {
		return nil, err
	}
	if err := mustPay(cfg, funds); err != nil {
		return nil, err
	}
	phase, err := h.game.Phase(now)
	if err != nil {
		return nil, err
	}
	if phase != game.NotStarted {
		return nil, game.ErrRoundStarted
	}
	if joined, err := h.game.HasJoined(sender); err != nil {
		return nil, err
	} else if joined {
		return nil, game.ErrAlreadyJoined
	}

	ambassador, err := h.referral.Resolve(h.self, sender, refCode)
	if err != nil {
		return nil, err
	}
	if ambassador != nil {
		if err := h.game.IncreaseRef(*ambassador); err != nil {
			return nil, err
		}
	}
	if _, err := h.game.Join(now, sender, cfg.TicketAmount); err != nil {
		return nil, err
	}

	ambassadorAttr := ""
	if ambassador != nil {
		ambassadorAttr = ambassador.String()
	}
	return new(receipt.Receipt).Emit(receipt.NewEvent("hitnrug/join",
		"account", sender,
		"ambassador", ambassadorAttr,
	)), nil
}

// Exit leaves the round with the decayed ticket.
func (h *HitNRug) Exit(now types.Timestamp, sender types.Address, funds types.Coins) (*receipt.Receipt, error) {
	if err := nonPayable(funds); err != nil {
		return nil, err
	}
	cfg, err := h.Config()
	if err != nil {
		return nil, err
	}
	if phase, err := h.game.Phase(now); err != nil {
		return nil, err
	} else if phase == game.NotStarted {
		return nil, game.ErrRoundNotStarted
	}
	amount, fraction, err := h.game.Exit(now, sender)
	if err != nil {
		return nil, err
	}
	return new(receipt.Receipt).
		Send(sender, types.Coins{types.NewCoin(cfg.TicketDenom, amount)}).
		Emit(receipt.NewEvent("hitnrug/exit",
			"account", sender,
			"decay_snap", fraction,
		)), nil
}

// Play applies one action of sender.
func (h *HitNRug) Play(now types.Timestamp, sender types.Address, funds types.Coins, action game.Action) (*receipt.Receipt, error) {
	if err := nonPayable(funds); err != nil {
		return nil, err
	}
	cfg, err := h.Config()
	if err != nil {
		return nil, err
	}
	if err := h.game.Play(now, sender, action, cfg.Rules()); err != nil {
		return nil, err
	}
	ev := receipt.NewEvent("hitnrug/play", "account", sender, "action", action.Kind)
	if action.Target != nil {
		ev.Attrs = append(ev.Attrs, receipt.Attr{Key: "target", Value: action.Target.String()})
	}
	return new(receipt.Receipt).Emit(ev), nil
}

// EndRound pays the pot out. The winner and the platform are paid
// directly; the referral share goes to the referral contract, split by the
// number of players each ambassador brought.
func (h *HitNRug) EndRound(now types.Timestamp, funds types.Coins) (*receipt.Receipt, error) {
	if err := nonPayable(funds); err != nil {
		return nil, err
	}
	cfg, err := h.Config()
	if err != nil {
		return nil, err
	}
	refWeights, err := h.game.RefWeights()
	if err != nil {
		return nil, err
	}
	winner, amount, err := h.game.EndRound(now)
	if err != nil {
		return nil, err
	}

	weights := []fees.Weight{
		{Recipient: winner.Address, Weight: cfg.WinnerShare},
		{Recipient: cfg.Fees.Platform.Address, Weight: cfg.Fees.Platform.Share},
	}
	if len(refWeights) > 0 {
		weights = append(weights, fees.Weight{Recipient: cfg.Fees.Referral.Address, Weight: cfg.Fees.Referral.Share})
	}
	portions, err := fees.Portions(types.Coins{types.NewCoin(cfg.TicketDenom, amount)}, weights)
	if err != nil {
		return nil, err
	}

	rcpt := new(receipt.Receipt).
		Send(winner.Address, portions[0]).
		Send(cfg.Fees.Platform.Address, portions[1])
	if len(refWeights) > 0 && !portions[2].IsZero() {
		referrers := make([]fees.Weight, 0, len(refWeights))
		for _, w := range refWeights {
			referrers = append(referrers, fees.Weight{Recipient: w.Address, Weight: types.MustFraction(w.Weight, 1)})
		}
		distributed, err := h.referral.Distribute(h.self, portions[2], referrers)
		if err != nil {
			return nil, err
		}
		rcpt.Send(cfg.Fees.Referral.Address, portions[2]).Merge(distributed)
	}

	logger.Info("pot paid out", "winner", winner.Address, "points", winner.Points, "pot", amount)
	return rcpt.Emit(receipt.NewEvent("hitnrug/endgame",
		"winner", winner.Address,
		"points", winner.Points,
	)), nil
}

// Restart archives the completed round and opens the next one after the
// configured delay.
func (h *HitNRug) Restart(now types.Timestamp) (*receipt.Receipt, error) {
	cfg, err := h.Config()
	if err != nil {
		return nil, err
	}
	idx, err := h.game.Restart(now, cfg.DurationSeconds, cfg.GameDelaySeconds)
	if err != nil {
		return nil, err
	}
	base, err := h.game.Base()
	if err != nil {
		return nil, err
	}
	return new(receipt.Receipt).Emit(receipt.NewEvent("hitnrug/restart",
		"game_idx", idx,
		"game_starts_at", base.Pool.Start,
		"game_ends_at", base.Pool.End,
	)), nil
}

// UpdateConfig is restricted to the owner, between a completed round and
// the restart.
func (h *HitNRug) UpdateConfig(now types.Timestamp, sender types.Address, update *ConfigUpdate) (*receipt.Receipt, error) {
	cfg, err := h.Config()
	if err != nil {
		return nil, err
	}
	if sender != cfg.Owner {
		return nil, ErrUnauthorized
	}
	if phase, err := h.game.Phase(now); err != nil {
		return nil, err
	} else if phase != game.Completed {
		return nil, game.ErrRoundNotCompleted
	}
	if err := cfg.ApplyUpdate(update); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := h.config.Set(cfg); err != nil {
		return nil, err
	}
	return new(receipt.Receipt).Emit(receipt.NewEvent("hitnrug/update_config")), nil
}

// GameStatus returns the snapshot of round idx, or of the live round.
func (h *HitNRug) GameStatus(idx *uint64) (*game.Snapshot, error) {
	return h.game.GetSnapshot(idx)
}

func (h *HitNRug) GameIndex() (uint64, error) {
	return h.game.Index()
}
