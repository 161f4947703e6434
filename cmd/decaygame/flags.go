// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to the YAML config file",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Usage: "directory for the contract database",
	}
	verbosityFlag = cli.Uint64Flag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-9)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8669",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	nowFlag = cli.Uint64Flag{
		Name:  "now",
		Usage: "pin the clock to this unix time instead of the wall clock",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}

	senderFlag = cli.StringFlag{
		Name:  "sender",
		Usage: "address the call is made from",
	}
	fundsFlag = cli.StringFlag{
		Name:  "funds",
		Usage: "coins attached to the call, e.g. 1000uusdc",
	}
	refCodeFlag = cli.StringFlag{
		Name:  "ref-code",
		Usage: "referral code of the ambassador",
	}
	actionFlag = cli.StringFlag{
		Name:  "action",
		Value: "keep",
		Usage: "play action (keep|hit|help)",
	}
	targetFlag = cli.StringFlag{
		Name:  "target",
		Usage: "target player of a hit or help",
	}
	codeFlag = cli.StringFlag{
		Name:  "code",
		Usage: "referral code",
	}
	winnerFlag = cli.StringFlag{
		Name:  "winner",
		Usage: "address receiving the prize",
	}
	restartFlag = cli.BoolFlag{
		Name:  "restart",
		Usage: "open the next round right after the payout",
	}
	idxFlag = cli.StringFlag{
		Name:  "idx",
		Usage: "round index, the live round if omitted",
	}
	fileFlag = cli.StringFlag{
		Name:  "file",
		Usage: "YAML file holding the config update",
	}
	addressFlag = cli.StringFlag{
		Name:  "address",
		Usage: "address to query",
	}
)
