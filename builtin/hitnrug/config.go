// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package hitnrug

import (
	"io"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/wenruji/decaygame/game"
	"github.com/wenruji/decaygame/types"
)

// Fee is a share of the pot paid to Address.
type Fee struct {
	Address types.Address  `json:"address" yaml:"address"`
	Share   types.Fraction `json:"share" yaml:"share"`
}

type Fees struct {
	Platform Fee `json:"platform" yaml:"platform"`
	Referral Fee `json:"referral" yaml:"referral"`
}

// total returns platform + referral shares, which must stay below one.
func (f *Fees) total() (types.Fraction, error) {
	total, err := f.Platform.Share.Add(f.Referral.Share)
	if err != nil {
		return types.Fraction{}, errors.Wrap(ErrInvalidConfig, "fees")
	}
	if total.Cmp(types.One()) >= 0 {
		return types.Fraction{}, errors.Wrapf(ErrInvalidConfig, "fees %s reach the whole pot", total)
	}
	return total, nil
}

// Points are the deltas of each action. Negative values penalize.
type Points struct {
	Keep int64     `json:"keep" yaml:"keep"`
	Hit  int64     `json:"hit" yaml:"hit"`
	Help HelpPoint `json:"help" yaml:"help"`
}

type HelpPoint struct {
	Self  int64 `json:"self" yaml:"self"`
	Other int64 `json:"other" yaml:"other"`
}

// EncodeRLP stores the signed deltas in two's complement.
func (p Points) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, []uint64{
		uint64(p.Keep),       // #nosec G115
		uint64(p.Hit),        // #nosec G115
		uint64(p.Help.Self),  // #nosec G115
		uint64(p.Help.Other), // #nosec G115
	})
}

func (p *Points) DecodeRLP(s *rlp.Stream) error {
	var raw []uint64
	if err := s.Decode(&raw); err != nil {
		return err
	}
	if len(raw) != 4 {
		return errors.Errorf("points: want 4 values, got %d", len(raw))
	}
	p.Keep = int64(raw[0])       // #nosec G115
	p.Hit = int64(raw[1])        // #nosec G115
	p.Help.Self = int64(raw[2])  // #nosec G115
	p.Help.Other = int64(raw[3]) // #nosec G115
	return nil
}

// InstantiateMsg sets up the contract and its first round.
type InstantiateMsg struct {
	Owner            types.Address   `json:"owner" yaml:"owner"`
	TicketDenom      string          `json:"ticketDenom" yaml:"ticketDenom"`
	TicketAmount     *uint256.Int    `json:"ticketAmount" yaml:"ticketAmount"`
	StartsAt         types.Timestamp `json:"startsAt" yaml:"startsAt"`
	DurationSeconds  uint64          `json:"durationSeconds" yaml:"durationSeconds"`
	GameDelaySeconds uint64          `json:"gameDelaySeconds" yaml:"gameDelaySeconds"`
	PlayDelaySeconds uint64          `json:"playDelaySeconds" yaml:"playDelaySeconds"`
	Fees             Fees            `json:"fees" yaml:"fees"`
	Points           Points          `json:"points" yaml:"points"`
}

// Config of the contract. WinnerShare is whatever the fees leave.
type Config struct {
	Owner            types.Address  `json:"owner"`
	TicketDenom      string         `json:"ticketDenom"`
	TicketAmount     *uint256.Int   `json:"ticketAmount"`
	DurationSeconds  uint64         `json:"durationSeconds"`
	GameDelaySeconds uint64         `json:"gameDelaySeconds"`
	PlayDelaySeconds uint64         `json:"playDelaySeconds"`
	WinnerShare      types.Fraction `json:"winnerShare"`
	Fees             Fees           `json:"fees"`
	Points           Points         `json:"points"`
}

func NewConfig(msg *InstantiateMsg) (*Config, error) {
	total, err := msg.Fees.total()
	if err != nil {
		return nil, err
	}
	winnerShare, err := types.One().Sub(total)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidConfig, "winner share")
	}
	amount := new(uint256.Int)
	if msg.TicketAmount != nil {
		amount.Set(msg.TicketAmount)
	}
	return &Config{
		Owner:            msg.Owner,
		TicketDenom:      msg.TicketDenom,
		TicketAmount:     amount,
		DurationSeconds:  msg.DurationSeconds,
		GameDelaySeconds: msg.GameDelaySeconds,
		PlayDelaySeconds: msg.PlayDelaySeconds,
		WinnerShare:      winnerShare,
		Fees:             msg.Fees,
		Points:           msg.Points,
	}, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Owner.IsZero():
		return errors.Wrap(ErrInvalidConfig, "owner")
	case c.Fees.Platform.Address.IsZero():
		return errors.Wrap(ErrInvalidConfig, "platform fee address")
	case c.Fees.Referral.Address.IsZero():
		return errors.Wrap(ErrInvalidConfig, "referral fee address")
	case c.TicketDenom == "":
		return errors.Wrap(ErrInvalidConfig, "ticket denom")
	case c.TicketAmount == nil || c.TicketAmount.IsZero():
		return errors.Wrap(ErrInvalidConfig, "ticket amount")
	case c.DurationSeconds == 0:
		return errors.Wrap(ErrInvalidConfig, "duration seconds")
	case c.GameDelaySeconds == 0:
		return errors.Wrap(ErrInvalidConfig, "game delay seconds")
	}
	_, err := c.Fees.total()
	return err
}

// Rules maps the configured points onto the game rules.
func (c *Config) Rules() *game.Rules {
	return &game.Rules{
		Keep:      c.Points.Keep,
		Hit:       c.Points.Hit,
		HelpSelf:  c.Points.Help.Self,
		HelpOther: c.Points.Help.Other,
		Cooldown:  c.PlayDelaySeconds,
	}
}

// ConfigUpdate replaces the fields that are set.
type ConfigUpdate struct {
	Owner            *types.Address `json:"owner,omitempty" yaml:"owner"`
	TicketDenom      *string        `json:"ticketDenom,omitempty" yaml:"ticketDenom"`
	TicketAmount     *uint256.Int   `json:"ticketAmount,omitempty" yaml:"ticketAmount"`
	DurationSeconds  *uint64        `json:"durationSeconds,omitempty" yaml:"durationSeconds"`
	GameDelaySeconds *uint64        `json:"gameDelaySeconds,omitempty" yaml:"gameDelaySeconds"`
	PlayDelaySeconds *uint64        `json:"playDelaySeconds,omitempty" yaml:"playDelaySeconds"`
	Fees             *Fees          `json:"fees,omitempty" yaml:"fees"`
	Points           *Points        `json:"points,omitempty" yaml:"points"`
}

func (c *Config) ApplyUpdate(u *ConfigUpdate) error {
	if u.Owner != nil {
		c.Owner = *u.Owner
	}
	if u.TicketDenom != nil {
		c.TicketDenom = *u.TicketDenom
	}
	if u.TicketAmount != nil {
		c.TicketAmount = new(uint256.Int).Set(u.TicketAmount)
	}
	if u.DurationSeconds != nil {
		c.DurationSeconds = *u.DurationSeconds
	}
	if u.GameDelaySeconds != nil {
		c.GameDelaySeconds = *u.GameDelaySeconds
	}
	if u.PlayDelaySeconds != nil {
		c.PlayDelaySeconds = *u.PlayDelaySeconds
	}
	if u.Points != nil {
		c.Points = *u.Points
	}
	if u.Fees != nil {
		total, err := u.Fees.total()
		if err != nil {
			return err
		}
		if c.WinnerShare, err = types.One().Sub(total); err != nil {
			return errors.Wrap(ErrInvalidConfig, "winner share")
		}
		c.Fees = *u.Fees
	}
	return nil
}
