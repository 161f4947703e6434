// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/wenruji/decaygame/log"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Version = fullVersion()
	app.Name = "decaygame"
	app.Usage = "Host of the decay staking games"
	app.Flags = []cli.Flag{
		configFlag,
		dataDirFlag,
		verbosityFlag,
		jsonLogsFlag,
		apiAddrFlag,
		apiCorsFlag,
		nowFlag,
		enableMetricsFlag,
	}
	app.Commands = []cli.Command{
		serveCommand,
		initCommand,
		hitnrugCommand,
		vaultCommand,
		referralCommand,
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
