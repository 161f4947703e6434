// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/wenruji/decaygame/api/utils"
	"github.com/wenruji/decaygame/builtin/hitnrug"
	"github.com/wenruji/decaygame/builtin/receipt"
	"github.com/wenruji/decaygame/builtin/referral"
	"github.com/wenruji/decaygame/builtin/vault"
	"github.com/wenruji/decaygame/game"
	"github.com/wenruji/decaygame/types"
)

var initCommand = cli.Command{
	Name:  "init",
	Usage: "instantiate every contract of the config",
	Action: func(ctx *cli.Context) error {
		return execute(ctx, func(now types.Timestamp, c *contracts) (*receipt.Receipt, error) {
			ref, err := c.mustReferral()
			if err != nil {
				return nil, err
			}
			if err := ref.Instantiate(c.cfg.Referral); err != nil {
				return nil, errors.Wrap(err, "referral")
			}
			rcpt := new(receipt.Receipt).Emit(receipt.NewEvent("referral/instantiate", "owner", c.cfg.Referral.Owner))
			if c.hitnrug != nil {
				r, err := c.hitnrug.Instantiate(now, c.cfg.HitNRug)
				if err != nil {
					return nil, errors.Wrap(err, "hitnrug")
				}
				rcpt.Merge(r)
			}
			if c.vault != nil {
				r, err := c.vault.Instantiate(now, c.cfg.Vault)
				if err != nil {
					return nil, errors.Wrap(err, "vault")
				}
				rcpt.Merge(r)
			}
			return rcpt, nil
		})
	},
}

// senderAndFunds reads the two flags every paying call takes.
func senderAndFunds(ctx *cli.Context) (types.Address, types.Coins, error) {
	sender, err := parseAddress(ctx, senderFlag)
	if err != nil {
		return types.Address{}, nil, err
	}
	funds, err := parseFunds(ctx)
	if err != nil {
		return types.Address{}, nil, err
	}
	return sender, funds, nil
}

var hitnrugCommand = cli.Command{
	Name:  "hitnrug",
	Usage: "play the hit'n'rug scoring game",
	Subcommands: []cli.Command{
		{
			Name:  "join",
			Usage: "buy a ticket for the next round",
			Flags: []cli.Flag{senderFlag, fundsFlag, refCodeFlag},
			Action: func(ctx *cli.Context) error {
				sender, funds, err := senderAndFunds(ctx)
				if err != nil {
					return err
				}
				return execute(ctx, func(now types.Timestamp, c *contracts) (*receipt.Receipt, error) {
					h, err := c.mustHitNRug()
					if err != nil {
						return nil, err
					}
					return h.Join(now, sender, funds, ctx.String(refCodeFlag.Name))
				})
			},
		},
		{
			Name:  "exit",
			Usage: "leave the round with the decayed stake",
			Flags: []cli.Flag{senderFlag, fundsFlag},
			Action: func(ctx *cli.Context) error {
				sender, funds, err := senderAndFunds(ctx)
				if err != nil {
					return err
				}
				return execute(ctx, func(now types.Timestamp, c *contracts) (*receipt.Receipt, error) {
					h, err := c.mustHitNRug()
					if err != nil {
						return nil, err
					}
					return h.Exit(now, sender, funds)
				})
			},
		},
		{
			Name:  "play",
			Usage: "keep, hit or help",
			Flags: []cli.Flag{senderFlag, fundsFlag, actionFlag, targetFlag},
			Action: func(ctx *cli.Context) error {
				sender, funds, err := senderAndFunds(ctx)
				if err != nil {
					return err
				}
				var action game.Action
				if err := action.Kind.UnmarshalText([]byte(ctx.String(actionFlag.Name))); err != nil {
					return err
				}
				if action.Kind != game.Keep {
					target, err := parseAddress(ctx, targetFlag)
					if err != nil {
						return err
					}
					action.Target = &target
				}
				return execute(ctx, func(now types.Timestamp, c *contracts) (*receipt.Receipt, error) {
					h, err := c.mustHitNRug()
					if err != nil {
						return nil, err
					}
					return h.Play(now, sender, funds, action)
				})
			},
		},
		{
			Name:  "end-round",
			Usage: "pay out the ended round",
			Flags: []cli.Flag{fundsFlag},
			Action: func(ctx *cli.Context) error {
				funds, err := parseFunds(ctx)
				if err != nil {
					return err
				}
				return execute(ctx, func(now types.Timestamp, c *contracts) (*receipt.Receipt, error) {
					h, err := c.mustHitNRug()
					if err != nil {
						return nil, err
					}
					return h.EndRound(now, funds)
				})
			},
		},
		{
			Name:  "restart",
			Usage: "archive the finished round and open the next one",
			Action: func(ctx *cli.Context) error {
				return execute(ctx, func(now types.Timestamp, c *contracts) (*receipt.Receipt, error) {
					h, err := c.mustHitNRug()
					if err != nil {
						return nil, err
					}
					return h.Restart(now)
				})
			},
		},
		{
			Name:  "update-config",
			Usage: "apply a config update from a YAML file",
			Flags: []cli.Flag{senderFlag, fileFlag},
			Action: func(ctx *cli.Context) error {
				sender, err := parseAddress(ctx, senderFlag)
				if err != nil {
					return err
				}
				var update hitnrug.ConfigUpdate
				if err := readYAML(ctx, &update); err != nil {
					return err
				}
				return execute(ctx, func(now types.Timestamp, c *contracts) (*receipt.Receipt, error) {
					h, err := c.mustHitNRug()
					if err != nil {
						return nil, err
					}
					return h.UpdateConfig(now, sender, &update)
				})
			},
		},
		{
			Name:  "status",
			Usage: "print the snapshot of a round",
			Flags: []cli.Flag{idxFlag},
			Action: func(ctx *cli.Context) error {
				idx, err := utils.ParseRound(ctx.String(idxFlag.Name))
				if err != nil {
					return err
				}
				return query(ctx, func(_ types.Timestamp, c *contracts) (any, error) {
					h, err := c.mustHitNRug()
					if err != nil {
						return nil, err
					}
					return h.GameStatus(idx)
				})
			},
		},
	},
}

var vaultCommand = cli.Command{
	Name:  "vault",
	Usage: "play the vault game",
	Subcommands: []cli.Command{
		{
			Name:  "join",
			Usage: "buy a ticket",
			Flags: []cli.Flag{senderFlag, fundsFlag, refCodeFlag},
			Action: func(ctx *cli.Context) error {
				sender, funds, err := senderAndFunds(ctx)
				if err != nil {
					return err
				}
				return execute(ctx, func(now types.Timestamp, c *contracts) (*receipt.Receipt, error) {
					v, err := c.mustVault()
					if err != nil {
						return nil, err
					}
					return v.Join(now, sender, funds, ctx.String(refCodeFlag.Name))
				})
			},
		},
		{
			Name:  "exit",
			Usage: "leave the round with the decayed stake",
			Flags: []cli.Flag{senderFlag, fundsFlag},
			Action: func(ctx *cli.Context) error {
				sender, funds, err := senderAndFunds(ctx)
				if err != nil {
					return err
				}
				return execute(ctx, func(now types.Timestamp, c *contracts) (*receipt.Receipt, error) {
					v, err := c.mustVault()
					if err != nil {
						return nil, err
					}
					return v.Exit(now, sender, funds)
				})
			},
		},
		{
			Name:  "donate",
			Usage: "add coins to the donation pot",
			Flags: []cli.Flag{senderFlag, fundsFlag},
			Action: func(ctx *cli.Context) error {
				sender, funds, err := senderAndFunds(ctx)
				if err != nil {
					return err
				}
				return execute(ctx, func(now types.Timestamp, c *contracts) (*receipt.Receipt, error) {
					v, err := c.mustVault()
					if err != nil {
						return nil, err
					}
					return v.Donate(now, sender, funds)
				})
			},
		},
		{
			Name:  "end-round",
			Usage: "pay out the ended round to the winner",
			Flags: []cli.Flag{senderFlag, fundsFlag, winnerFlag, restartFlag},
			Action: func(ctx *cli.Context) error {
				sender, funds, err := senderAndFunds(ctx)
				if err != nil {
					return err
				}
				winner, err := parseAddress(ctx, winnerFlag)
				if err != nil {
					return err
				}
				return execute(ctx, func(now types.Timestamp, c *contracts) (*receipt.Receipt, error) {
					v, err := c.mustVault()
					if err != nil {
						return nil, err
					}
					return v.EndRound(now, sender, funds, winner, ctx.Bool(restartFlag.Name))
				})
			},
		},
		{
			Name:  "restart",
			Usage: "open the next round",
			Action: func(ctx *cli.Context) error {
				return execute(ctx, func(now types.Timestamp, c *contracts) (*receipt.Receipt, error) {
					v, err := c.mustVault()
					if err != nil {
						return nil, err
					}
					return v.Restart(now)
				})
			},
		},
		{
			Name:  "update-config",
			Usage: "apply a config update from a YAML file",
			Flags: []cli.Flag{senderFlag, fileFlag},
			Action: func(ctx *cli.Context) error {
				sender, err := parseAddress(ctx, senderFlag)
				if err != nil {
					return err
				}
				var update vault.ConfigUpdate
				if err := readYAML(ctx, &update); err != nil {
					return err
				}
				return execute(ctx, func(_ types.Timestamp, c *contracts) (*receipt.Receipt, error) {
					v, err := c.mustVault()
					if err != nil {
						return nil, err
					}
					return v.UpdateConfig(sender, &update)
				})
			},
		},
		{
			Name:  "status",
			Usage: "print the pool and the donation pot",
			Action: func(ctx *cli.Context) error {
				return query(ctx, func(_ types.Timestamp, c *contracts) (any, error) {
					v, err := c.mustVault()
					if err != nil {
						return nil, err
					}
					pool, err := v.GameStatus()
					if err != nil {
						return nil, err
					}
					donations, err := v.Donations()
					if err != nil {
						return nil, err
					}
					return map[string]any{"pool": pool, "donations": donations}, nil
				})
			},
		},
	},
}

var referralCommand = cli.Command{
	Name:  "referral",
	Usage: "manage referral codes and rewards",
	Subcommands: []cli.Command{
		{
			Name:  "gen-code",
			Usage: "register a referral code for the sender",
			Flags: []cli.Flag{senderFlag, codeFlag},
			Action: func(ctx *cli.Context) error {
				sender, err := parseAddress(ctx, senderFlag)
				if err != nil {
					return err
				}
				return execute(ctx, func(_ types.Timestamp, c *contracts) (*receipt.Receipt, error) {
					ref, err := c.mustReferral()
					if err != nil {
						return nil, err
					}
					return ref.GenCode(sender, ctx.String(codeFlag.Name))
				})
			},
		},
		{
			Name:  "claim",
			Usage: "claim the accrued referral rewards",
			Flags: []cli.Flag{senderFlag},
			Action: func(ctx *cli.Context) error {
				sender, err := parseAddress(ctx, senderFlag)
				if err != nil {
					return err
				}
				return execute(ctx, func(_ types.Timestamp, c *contracts) (*receipt.Receipt, error) {
					ref, err := c.mustReferral()
					if err != nil {
						return nil, err
					}
					_, rcpt, err := ref.ClaimRewards(sender)
					return rcpt, err
				})
			},
		},
		{
			Name:  "update-config",
			Usage: "apply a config update from a YAML file",
			Flags: []cli.Flag{senderFlag, fileFlag},
			Action: func(ctx *cli.Context) error {
				sender, err := parseAddress(ctx, senderFlag)
				if err != nil {
					return err
				}
				var update referral.ConfigUpdate
				if err := readYAML(ctx, &update); err != nil {
					return err
				}
				return execute(ctx, func(_ types.Timestamp, c *contracts) (*receipt.Receipt, error) {
					ref, err := c.mustReferral()
					if err != nil {
						return nil, err
					}
					return ref.UpdateConfig(sender, &update)
				})
			},
		},
		{
			Name:  "rewards",
			Usage: "print the pending rewards of an address",
			Flags: []cli.Flag{addressFlag},
			Action: func(ctx *cli.Context) error {
				addr, err := parseAddress(ctx, addressFlag)
				if err != nil {
					return err
				}
				return query(ctx, func(_ types.Timestamp, c *contracts) (any, error) {
					ref, err := c.mustReferral()
					if err != nil {
						return nil, err
					}
					return ref.PendingRewards(addr)
				})
			},
		},
	},
}
