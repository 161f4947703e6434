// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/wenruji/decaygame/types"
)

type Fee struct {
	Address types.Address  `json:"address" yaml:"address"`
	Share   types.Fraction `json:"share" yaml:"share"`
}

// Fees are taken from the pot, in this order, before the winner share.
type Fees struct {
	Platform Fee `json:"platform" yaml:"platform"`
	Treasury Fee `json:"treasury" yaml:"treasury"`
	Referral Fee `json:"referral" yaml:"referral"`
}

func (f *Fees) total() (types.Fraction, error) {
	total := types.Zero()
	for _, fee := range []Fee{f.Platform, f.Treasury, f.Referral} {
		var err error
		if total, err = total.Add(fee.Share); err != nil {
			return types.Fraction{}, errors.Wrap(ErrInvalidConfig, "fees")
		}
	}
	if total.Cmp(types.One()) >= 0 {
		return types.Fraction{}, errors.Wrapf(ErrInvalidConfig, "fees %s reach the whole pot", total)
	}
	return total, nil
}

type InstantiateMsg struct {
	Owner            types.Address   `json:"owner" yaml:"owner"`
	TicketDenom      string          `json:"ticketDenom" yaml:"ticketDenom"`
	TicketAmount     *uint256.Int    `json:"ticketAmount" yaml:"ticketAmount"`
	StartsAt         types.Timestamp `json:"startsAt" yaml:"startsAt"`
	DurationSeconds  uint64          `json:"durationSeconds" yaml:"durationSeconds"`
	GameDelaySeconds uint64          `json:"gameDelaySeconds" yaml:"gameDelaySeconds"`
	DonationAddrs    []types.Address `json:"donationAddrs" yaml:"donationAddrs"`
	Admins           []types.Address `json:"admins,omitempty" yaml:"admins"`
	Fees             Fees            `json:"fees" yaml:"fees"`
}

type Config struct {
	Owner            types.Address   `json:"owner"`
	TicketDenom      string          `json:"ticketDenom"`
	TicketAmount     *uint256.Int    `json:"ticketAmount"`
	DurationSeconds  uint64          `json:"durationSeconds"`
	GameDelaySeconds uint64          `json:"gameDelaySeconds"`
	DonationAddrs    []types.Address `json:"donationAddrs"`
	WinnerShare      types.Fraction  `json:"winnerShare"`
	Fees             Fees            `json:"fees"`
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
		DonationAddrs:    append([]types.Address{}, msg.DonationAddrs...),
		WinnerShare:      winnerShare,
		Fees:             msg.Fees,
	}, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Owner.IsZero():
		return errors.Wrap(ErrInvalidConfig, "owner")
	case c.TicketDenom == "":
		return errors.Wrap(ErrInvalidConfig, "ticket denom")
	case c.TicketAmount == nil || c.TicketAmount.IsZero():
		return errors.Wrap(ErrInvalidConfig, "ticket amount")
	case c.DurationSeconds == 0:
		return errors.Wrap(ErrInvalidConfig, "duration seconds")
	}
	for _, fee := range []Fee{c.Fees.Platform, c.Fees.Treasury, c.Fees.Referral} {
		if fee.Address.IsZero() {
			return errors.Wrap(ErrInvalidConfig, "fee address")
		}
	}
	for _, addr := range c.DonationAddrs {
		if addr.IsZero() {
			return errors.Wrap(ErrInvalidConfig, "donation address")
		}
	}
	_, err := c.Fees.total()
	return err
}

func (c *Config) isDonor(addr types.Address) bool {
	for _, a := range c.DonationAddrs {
		if a == addr {
			return true
		}
	}
	return false
}

// ConfigUpdate replaces the fields that are set. Admins, if set, replaces
// the whole admin list.
type ConfigUpdate struct {
	Owner            *types.Address   `json:"owner,omitempty" yaml:"owner"`
	TicketDenom      *string          `json:"ticketDenom,omitempty" yaml:"ticketDenom"`
	TicketAmount     *uint256.Int     `json:"ticketAmount,omitempty" yaml:"ticketAmount"`
	DurationSeconds  *uint64          `json:"durationSeconds,omitempty" yaml:"durationSeconds"`
	GameDelaySeconds *uint64          `json:"gameDelaySeconds,omitempty" yaml:"gameDelaySeconds"`
	DonationAddrs    *[]types.Address `json:"donationAddrs,omitempty" yaml:"donationAddrs"`
	Admins           *[]types.Address `json:"admins,omitempty" yaml:"admins"`
	Fees             *Fees            `json:"fees,omitempty" yaml:"fees"`
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
	if u.DonationAddrs != nil {
		c.DonationAddrs = append([]types.Address{}, (*u.DonationAddrs)...)
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
