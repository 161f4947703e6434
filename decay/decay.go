// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package decay implements the stake ledger of a single round. The share of a
// stake a participant may take back shrinks linearly from 1 at the window start
// to 0 at the window end. Whatever is left behind forms the reward pot.
package decay

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/wenruji/decaygame/reverts"
	"github.com/wenruji/decaygame/types"
)

var (
	ErrRoundEnded    = reverts.New(reverts.KindTemporal, "round has ended")
	ErrRoundNotEnded = reverts.New(reverts.KindTemporal, "round has not ended")
	ErrNoRewards     = reverts.New(reverts.KindConflict, "no rewards")
	ErrAlreadyExited = reverts.New(reverts.KindConflict, "already exited")
	ErrInvalidWindow = reverts.New(reverts.KindInvalid, "invalid decay window")
)

// Fraction returns the reclaimable share of a stake at now.
func Fraction(start, end, now types.Timestamp) types.Fraction {
	switch {
	case now <= start:
		return types.One()
	case now > end:
		return types.Zero()
	}
	return types.MustFraction(uint64(end-now), uint64(end-start))
}

// Pool holds the counters of one round.
// Exited never exceeds Total. Rewards is set once, to Total - Exited.
type Pool struct {
	Start   types.Timestamp `json:"start"`
	End     types.Timestamp `json:"end"`
	Total   *uint256.Int    `json:"total"`
	Exited  *uint256.Int    `json:"exited"`
	Rewards *uint256.Int    `json:"rewards"`
}

// Account is one participant's position in a pool.
// DecaySnapshot stays zero until the participant exits.
type Account struct {
	Amount        *uint256.Int   `json:"amount"`
	DecaySnapshot types.Fraction `json:"decaySnapshot"`
	Pending       *uint256.Int   `json:"pending"`
}

// HasExited reports whether exit was already applied to the account.
func (a *Account) HasExited() bool {
	return !a.DecaySnapshot.IsZero()
}

// NewPool opens an empty round over [start, end].
func NewPool(start, end types.Timestamp) (*Pool, error) {
	if end <= start {
		return nil, errors.Wrapf(ErrInvalidWindow, "start %d, end %d", start, end)
	}
	return &Pool{
		Start:   start,
		End:     end,
		Total:   new(uint256.Int),
		Exited:  new(uint256.Int),
		Rewards: new(uint256.Int),
	}, nil
}

// Validate checks the window against the current time.
func (p *Pool) Validate(now types.Timestamp) error {
	if p.Start < now {
		return errors.Wrapf(ErrInvalidWindow, "start %d is in the past", p.Start)
	}
	if p.End <= p.Start {
		return errors.Wrapf(ErrInvalidWindow, "start %d, end %d", p.Start, p.End)
	}
	return nil
}

func (p *Pool) Fraction(now types.Timestamp) types.Fraction {
	return Fraction(p.Start, p.End, now)
}

func (p *Pool) IsStarted(now types.Timestamp) bool {
	return now >= p.Start
}

func (p *Pool) IsEnded(now types.Timestamp) bool {
	return now > p.End
}

// IsFinalized reports whether the pot has been handed out.
// A round nobody left anything in is finalized by definition.
func (p *Pool) IsFinalized() bool {
	remaining, underflow := new(uint256.Int).SubOverflow(p.Total, p.Exited)
	return !underflow && remaining.Eq(p.Rewards)
}

// PendingRewards is the part of the pot not yet finalized.
func (p *Pool) PendingRewards() *uint256.Int {
	remaining, underflow := new(uint256.Int).SubOverflow(p.Total, p.Exited)
	if underflow {
		return new(uint256.Int)
	}
	if _, underflow = remaining.SubOverflow(remaining, p.Rewards); underflow {
		return new(uint256.Int)
	}
	return remaining
}

// Join stakes amount and returns the new account.
func (p *Pool) Join(amount *uint256.Int, now types.Timestamp) (*Account, error) {
	if p.IsEnded(now) {
		return nil, ErrRoundEnded
	}
	total, overflow := new(uint256.Int).AddOverflow(p.Total, amount)
	if overflow {
		return nil, reverts.ErrOverflow
	}
	p.Total = total
	return &Account{
		Amount:        new(uint256.Int).Set(amount),
		DecaySnapshot: types.Zero(),
		Pending:       new(uint256.Int),
	}, nil
}

// Exit records the decayed amount the account may withdraw.
func (p *Pool) Exit(now types.Timestamp, acc *Account) error {
	if acc.HasExited() {
		return ErrAlreadyExited
	}
	f := p.Fraction(now)
	pending, err := f.MulFloor(acc.Amount)
	if err != nil {
		return reverts.ErrOverflow
	}
	exited, overflow := new(uint256.Int).AddOverflow(p.Exited, pending)
	if overflow || exited.Gt(p.Total) {
		return reverts.ErrOverflow
	}

	p.Exited = exited
	acc.Pending = pending
	acc.DecaySnapshot = f
	return nil
}

// Claim hands out and zeroes the account's pending amount.
func (p *Pool) Claim(acc *Account) *uint256.Int {
	amount := new(uint256.Int)
	if acc.Pending != nil {
		amount.Set(acc.Pending)
	}
	acc.Pending = new(uint256.Int)
	return amount
}

// FinalizeRewards fixes the pot once the window is over.
func (p *Pool) FinalizeRewards(now types.Timestamp) (*uint256.Int, error) {
	if !p.IsEnded(now) {
		return nil, ErrRoundNotEnded
	}
	if p.PendingRewards().IsZero() {
		return nil, ErrNoRewards
	}
	rewards := new(uint256.Int).Sub(p.Total, p.Exited)
	p.Rewards = rewards
	return new(uint256.Int).Set(rewards), nil
}
