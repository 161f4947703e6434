// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package config loads the host configuration: a YAML file with the contract
// setups, then DECAYGAME_* environment variables over the host settings.
package config

import (
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/wenruji/decaygame/builtin/hitnrug"
	"github.com/wenruji/decaygame/builtin/referral"
	"github.com/wenruji/decaygame/builtin/vault"
	"github.com/wenruji/decaygame/types"
)

// Host holds the settings of the process itself.
type Host struct {
	DataDir       string   `yaml:"dataDir" env:"DECAYGAME_DATA_DIR"`
	APIAddr       string   `yaml:"apiAddr" env:"DECAYGAME_API_ADDR"`
	APICORS       []string `yaml:"apiCors" env:"DECAYGAME_API_CORS" envSeparator:","`
	Verbosity     int      `yaml:"verbosity" env:"DECAYGAME_VERBOSITY"`
	JSONLogs      bool     `yaml:"jsonLogs" env:"DECAYGAME_JSON_LOGS"`
	EnableMetrics bool     `yaml:"enableMetrics" env:"DECAYGAME_ENABLE_METRICS"`
}

// Addresses are the accounts the contracts act as.
type Addresses struct {
	Referral types.Address `yaml:"referral"`
	HitNRug  types.Address `yaml:"hitnrug"`
	Vault    types.Address `yaml:"vault"`
}

type Config struct {
	Host      Host                    `yaml:"host"`
	Addresses Addresses               `yaml:"addresses"`
	Referral  *referral.Config        `yaml:"referral"`
	HitNRug   *hitnrug.InstantiateMsg `yaml:"hitnrug"`
	Vault     *vault.InstantiateMsg   `yaml:"vault"`
}

// Default returns the host defaults and no contract setup.
func Default() *Config {
	return &Config{
		Host: Host{
			DataDir:   "./data",
			APIAddr:   "localhost:8669",
			APICORS:   []string{},
			Verbosity: 3,
		},
	}
}

// Load reads path, if given, then applies the environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read config")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	}
	if err := env.Parse(&cfg.Host); err != nil {
		return nil, errors.Wrap(err, "parse env")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Host.DataDir == "" {
		return errors.New("host: data dir is required")
	}
	if c.Host.Verbosity < 0 || c.Host.Verbosity > 9 {
		return errors.Errorf("host: verbosity %d out of range", c.Host.Verbosity)
	}

	if c.Referral != nil {
		if c.Addresses.Referral.IsZero() {
			return errors.New("addresses: referral is required")
		}
		if err := c.Referral.Validate(); err != nil {
			return errors.Wrap(err, "referral")
		}
	}
	if c.HitNRug != nil {
		if c.Addresses.HitNRug.IsZero() {
			return errors.New("addresses: hitnrug is required")
		}
		cfg, err := hitnrug.NewConfig(c.HitNRug)
		if err != nil {
			return errors.Wrap(err, "hitnrug")
		}
		if err := cfg.Validate(); err != nil {
			return errors.Wrap(err, "hitnrug")
		}
	}
	if c.Vault != nil {
		if c.Addresses.Vault.IsZero() {
			return errors.New("addresses: vault is required")
		}
		cfg, err := vault.NewConfig(c.Vault)
		if err != nil {
			return errors.Wrap(err, "vault")
		}
		if err := cfg.Validate(); err != nil {
			return errors.Wrap(err, "vault")
		}
	}
	if (c.HitNRug != nil || c.Vault != nil) && c.Referral == nil {
		return errors.New("referral: the game contracts need the referral contract")
	}

	seen := make(map[types.Address]string)
	for name, addr := range map[string]types.Address{
		"referral": c.Addresses.Referral,
		"hitnrug":  c.Addresses.HitNRug,
		"vault":    c.Addresses.Vault,
	} {
		if addr.IsZero() {
			continue
		}
		if other, ok := seen[addr]; ok {
			return errors.Errorf("addresses: %s and %s share %s", name, other, addr)
		}
		seen[addr] = name
	}
	return nil
}
