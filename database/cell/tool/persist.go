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
	"errors"
	"fmt"

	"github.com/0xsoniclabs/cellar/common"
	"github.com/0xsoniclabs/cellar/common/diagnostics"
	"github.com/0xsoniclabs/cellar/common/future"
	"github.com/0xsoniclabs/cellar/common/result"
	"github.com/0xsoniclabs/cellar/database/cell/store"
	"github.com/ethereum/go-ethereum/log"
	"github.com/pbnjay/memory"
	"github.com/urfave/cli/v2"
)

var (
	dbFlag = cli.StringFlag{
		Name:     "db",
		Usage:    "directory of the cell store",
		Required: true,
	}
	backendFlag = cli.StringFlag{
		Name:  "backend",
		Usage: fmt.Sprintf("storage backend of the cell store, one of %v", store.Backends()),
		Value: string(store.LevelDb),
	}
	cacheSizeFlag = cli.IntFlag{
		Name:  "cache-size",
		Usage: "number of cell records cached in memory, 0 to disable",
		Value: defaultCacheSize(),
	}
	hashFlag = cli.StringFlag{
		Name:     "hash",
		Usage:    "representation hash of the root to export",
		Required: true,
	}
)

var ImportCmd = cli.Command{
	Action:    diagnostics.AddPerformanceDiagnostics(doImport),
	Name:      "import",
	Usage:     "stores all roots of a bag of cells in a cell store",
	ArgsUsage: "<boc file>",
	Flags: []cli.Flag{
		&dbFlag,
		&backendFlag,
		&cacheSizeFlag,
	},
}

var ExportCmd = cli.Command{
	Action: diagnostics.AddPerformanceDiagnostics(doExport),
	Name:   "export",
	Usage:  "loads a root from a cell store and writes it as bag of cells",
	Flags: []cli.Flag{
		&dbFlag,
		&backendFlag,
		&cacheSizeFlag,
		&hashFlag,
		&outFlag,
	},
}

// defaultCacheSize dedicates about 1/64 of the system memory to the record
// cache, assuming records of 256 bytes.
func defaultCacheSize() int {
	return int(min(memory.TotalMemory()/64/256, 1<<24))
}

func openStore(context *cli.Context) (*store.Store, error) {
	return store.Open(store.Parameters{
		Directory: context.String(dbFlag.Name),
		Backend:   store.Backend(context.String(backendFlag.Name)),
		CacheSize: context.Int(cacheSizeFlag.Name),
	})
}

func doImport(context *cli.Context) (err error) {
	path, err := inputArg(context)
	if err != nil {
		return err
	}
	roots, err := loadRoots(path)
	if err != nil {
		return err
	}
	s, err := openStore(context)
	if err != nil {
		return err
	}
	async := store.NewAsync(s)
	defer func() {
		err = errors.Join(err, async.Close())
	}()

	pending := make([]future.Future[result.Result[common.Hash]], 0, len(roots))
	for _, root := range roots {
		pending = append(pending, async.Put(root))
	}
	for _, put := range pending {
		hash, err := put.Await().Get()
		if err != nil {
			return err
		}
		fmt.Fprintln(context.App.Writer, hash)
	}
	log.Info("Imported bag of cells", "roots", len(roots), "db", context.String(dbFlag.Name))
	return nil
}

func doExport(context *cli.Context) (err error) {
	hash, err := common.HashFromHex(context.String(hashFlag.Name))
	if err != nil {
		return err
	}
	s, err := openStore(context)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, s.Close())
	}()
	root, err := s.Get(hash)
	if err != nil {
		return err
	}
	return writeOutput(context.App.Writer, context.String(outFlag.Name), root)
}
