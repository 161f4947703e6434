// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"

	"github.com/wenruji/decaygame/builtin/hitnrug"
	"github.com/wenruji/decaygame/builtin/receipt"
	"github.com/wenruji/decaygame/builtin/referral"
	"github.com/wenruji/decaygame/builtin/vault"
	"github.com/wenruji/decaygame/config"
	"github.com/wenruji/decaygame/kv"
	"github.com/wenruji/decaygame/log"
	"github.com/wenruji/decaygame/lvldb"
	"github.com/wenruji/decaygame/stage"
	"github.com/wenruji/decaygame/types"
)

var (
	referralSpace = kv.Bucket("referral/")
	hitnrugSpace  = kv.Bucket("hitnrug/")
	vaultSpace    = kv.Bucket("vault/")
)

// loadConfig reads the config file, then lets the global flags that were
// set override the host settings.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx.GlobalString(configFlag.Name))
	if err != nil {
		return nil, err
	}
	host := &cfg.Host
	if ctx.GlobalIsSet(dataDirFlag.Name) {
		host.DataDir = ctx.GlobalString(dataDirFlag.Name)
	}
	if ctx.GlobalIsSet(verbosityFlag.Name) {
		host.Verbosity = int(ctx.GlobalUint64(verbosityFlag.Name)) // #nosec G115
	}
	if ctx.GlobalIsSet(jsonLogsFlag.Name) {
		host.JSONLogs = ctx.GlobalBool(jsonLogsFlag.Name)
	}
	if ctx.GlobalIsSet(apiAddrFlag.Name) {
		host.APIAddr = ctx.GlobalString(apiAddrFlag.Name)
	}
	if ctx.GlobalIsSet(apiCorsFlag.Name) {
		host.APICORS = strings.Split(ctx.GlobalString(apiCorsFlag.Name), ",")
	}
	if ctx.GlobalIsSet(enableMetricsFlag.Name) {
		host.EnableMetrics = ctx.GlobalBool(enableMetricsFlag.Name)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func initLogger(host *config.Host) {
	useColor := isatty.IsTerminal(os.Stderr.Fd()) && os.Getenv("TERM") != "dumb"
	handler := log.NewHandler(os.Stderr, log.FromLegacyLevel(host.Verbosity), host.JSONLogs, useColor)
	log.SetHandler(handler)
}

func newClock(ctx *cli.Context) clockwork.Clock {
	if ctx.GlobalIsSet(nowFlag.Name) {
		return clockwork.NewFakeClockAt(time.Unix(int64(ctx.GlobalUint64(nowFlag.Name)), 0)) // #nosec G115
	}
	return clockwork.NewRealClock()
}

func openMainDB(dataDir string) (*lvldb.LevelDB, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, errors.Wrapf(err, "create data dir [%v]", dataDir)
	}
	dir := filepath.Join(dataDir, "main.db")
	db, err := lvldb.New(dir, lvldb.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "open main database [%v]", dir)
	}
	return db, nil
}

// contracts are the configured contracts over one store. Contracts absent
// from the config are nil.
type contracts struct {
	cfg      *config.Config
	referral *referral.Referral
	hitnrug  *hitnrug.HitNRug
	vault    *vault.Vault
}

func newContracts(cfg *config.Config, store kv.Store) *contracts {
	c := &contracts{cfg: cfg}
	if cfg.Referral == nil {
		return c
	}
	c.referral = referral.New(referralSpace.NewStore(store))
	if cfg.HitNRug != nil {
		c.hitnrug = hitnrug.New(cfg.Addresses.HitNRug, hitnrugSpace.NewStore(store), c.referral)
	}
	if cfg.Vault != nil {
		c.vault = vault.New(cfg.Addresses.Vault, vaultSpace.NewStore(store), c.referral)
	}
	return c
}

func (c *contracts) mustReferral() (*referral.Referral, error) {
	if c.referral == nil {
		return nil, errors.New("referral contract not configured")
	}
	return c.referral, nil
}

func (c *contracts) mustHitNRug() (*hitnrug.HitNRug, error) {
	if c.hitnrug == nil {
		return nil, errors.New("hitnrug contract not configured")
	}
	return c.hitnrug, nil
}

func (c *contracts) mustVault() (*vault.Vault, error) {
	if c.vault == nil {
		return nil, errors.New("vault contract not configured")
	}
	return c.vault, nil
}

// execute runs op inside a stage and commits its writes only when op
// succeeds. The receipt is printed as JSON.
func execute(ctx *cli.Context, op func(now types.Timestamp, c *contracts) (*receipt.Receipt, error)) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	initLogger(&cfg.Host)

	db, err := openMainDB(cfg.Host.DataDir)
	if err != nil {
		return err
	}
	defer db.Close()

	stg := stage.New(db)
	now := types.Now(newClock(ctx).Now())
	rcpt, err := op(now, newContracts(cfg, stg))
	if err != nil {
		stg.Discard()
		return err
	}
	changes := stg.Changes()
	if err := stg.Commit(); err != nil {
		return err
	}
	logger.Debug("committed", "now", now, "changes", changes)
	if rcpt == nil {
		rcpt = new(receipt.Receipt)
	}
	return printJSON(ctx, rcpt)
}

// query runs a read-only op against the database and prints its result.
func query(ctx *cli.Context, op func(now types.Timestamp, c *contracts) (any, error)) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	initLogger(&cfg.Host)

	db, err := openMainDB(cfg.Host.DataDir)
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := op(types.Now(newClock(ctx).Now()), newContracts(cfg, db))
	if err != nil {
		return err
	}
	return printJSON(ctx, res)
}

func printJSON(ctx *cli.Context, v any) error {
	enc := json.NewEncoder(ctx.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseAddress(ctx *cli.Context, flag cli.StringFlag) (types.Address, error) {
	s := ctx.String(flag.Name)
	if s == "" {
		return types.Address{}, errors.Errorf("--%s is required", flag.Name)
	}
	addr, err := types.ParseAddress(s)
	if err != nil {
		return types.Address{}, errors.Wrapf(err, "--%s", flag.Name)
	}
	return *addr, nil
}

func parseFunds(ctx *cli.Context) (types.Coins, error) {
	funds, err := types.ParseCoins(ctx.String(fundsFlag.Name))
	if err != nil {
		return nil, errors.Wrapf(err, "--%s", fundsFlag.Name)
	}
	return funds, nil
}

// readYAML decodes the file named by --file into v.
func readYAML(ctx *cli.Context, v any) error {
	path := ctx.String(fileFlag.Name)
	if path == "" {
		return errors.Errorf("--%s is required", fileFlag.Name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read update")
	}
	return errors.Wrapf(yaml.Unmarshal(data, v), "parse update %s", path)
}
