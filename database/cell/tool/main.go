// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"fmt"
	"os"

	"github.com/0xsoniclabs/cellar/common/diagnostics"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
)

// Run using
//  go run ./database/cell/tool <command> <flags>

var verbosityFlag = cli.IntFlag{
	Name:  "verbosity",
	Usage: "log level: 0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
	Value: 3,
}

var commands = []*cli.Command{
	&InfoCmd,
	&TreeCmd,
	&DictCmd,
	&ProveCmd,
	&UpdateCmd,
	&ImportCmd,
	&ExportCmd,
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "cell-tool",
		Usage:     "inspect, prove and persist bags of cells",
		Copyright: "(c) 2025 Sonic Operations Ltd",
		Flags:     append([]cli.Flag{&verbosityFlag}, diagnostics.Flags...),
		Before: func(context *cli.Context) error {
			level := log.FromLegacyLevel(context.Int(verbosityFlag.Name))
			log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stderr, level, true)))
			return nil
		},
		Commands: commands,
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
