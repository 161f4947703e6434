// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package referral

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/wenruji/decaygame/types"
)

// Config of the referral contract. An empty whitelist allows everything.
type Config struct {
	Owner     types.Address   `json:"owner" yaml:"owner"`
	Denoms    []string        `json:"denoms" yaml:"denoms"`
	Contracts []types.Address `json:"contracts" yaml:"contracts"`
}

// ConfigUpdate replaces the fields that are set.
type ConfigUpdate struct {
	Owner     *types.Address   `json:"owner,omitempty" yaml:"owner"`
	Denoms    *[]string        `json:"denoms,omitempty" yaml:"denoms"`
	Contracts *[]types.Address `json:"contracts,omitempty" yaml:"contracts"`
}

func (c *Config) Validate() error {
	if c.Owner.IsZero() {
		return errors.Wrap(ErrInvalidConfig, "owner")
	}
	for _, d := range c.Denoms {
		if d == "" {
			return errors.Wrap(ErrInvalidConfig, "empty denom")
		}
	}
	return nil
}

func (c *Config) ApplyUpdate(u *ConfigUpdate) {
	if u.Owner != nil {
		c.Owner = *u.Owner
	}
	if u.Denoms != nil {
		c.Denoms = *u.Denoms
	}
	if u.Contracts != nil {
		c.Contracts = *u.Contracts
	}
}

func (c *Config) allowsContract(caller types.Address) bool {
	return len(c.Contracts) == 0 || slices.Contains(c.Contracts, caller)
}

func (c *Config) allowsDenom(denom string) bool {
	return len(c.Denoms) == 0 || slices.Contains(c.Denoms, denom)
}
