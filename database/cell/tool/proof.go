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
	"math/big"

	"github.com/0xsoniclabs/cellar/common/diagnostics"
	"github.com/0xsoniclabs/cellar/database/cell"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
)

var (
	keyFlag = cli.StringSliceFlag{
		Name:     "key",
		Usage:    "dictionary key, decimal or 0x-prefixed hex; may be repeated",
		Required: true,
	}
	valueFlag = cli.StringFlag{
		Name:     "value",
		Usage:    "new value as 0x-prefixed hex bytes stored inline in the leaf",
		Required: true,
	}
	outFlag = cli.StringFlag{
		Name:  "out",
		Usage: "file receiving the binary bag of cells, base64 is printed if empty",
	}
)

var ProveCmd = cli.Command{
	Action:    diagnostics.AddPerformanceDiagnostics(doProve),
	Name:      "prove",
	Usage:     "creates a Merkle proof revealing only the given dictionary keys",
	ArgsUsage: "<boc file>",
	Flags: []cli.Flag{
		&keyBitsFlag,
		&directFlag,
		&keyFlag,
		&outFlag,
	},
}

var UpdateCmd = cli.Command{
	Action:    diagnostics.AddPerformanceDiagnostics(doUpdate),
	Name:      "update",
	Usage:     "creates a Merkle update setting a single dictionary key",
	ArgsUsage: "<boc file>",
	Flags: []cli.Flag{
		&keyBitsFlag,
		&directFlag,
		&keyFlag,
		&valueFlag,
		&outFlag,
	},
}

func parseKeys(context *cli.Context) ([]*big.Int, error) {
	raw := context.StringSlice(keyFlag.Name)
	res := make([]*big.Int, 0, len(raw))
	for _, s := range raw {
		key, ok := new(big.Int).SetString(s, 0)
		if !ok {
			return nil, fmt.Errorf("invalid key %q", s)
		}
		res = append(res, key)
	}
	return res, nil
}

func doProve(context *cli.Context) error {
	path, err := inputArg(context)
	if err != nil {
		return err
	}
	root, err := loadRoot(path)
	if err != nil {
		return err
	}
	d, err := loadDictionary(context, root)
	if err != nil {
		return err
	}
	keys, err := parseKeys(context)
	if err != nil {
		return err
	}
	proof, err := d.GenerateMerkleProof(keys)
	if err != nil {
		return err
	}
	log.Info("Created Merkle proof", "keys", len(keys), "entries", d.Len(), "hash", proof.Ref(0).Hash(0))
	return writeOutput(context.App.Writer, context.String(outFlag.Name), proof)
}

func doUpdate(context *cli.Context) error {
	path, err := inputArg(context)
	if err != nil {
		return err
	}
	root, err := loadRoot(path)
	if err != nil {
		return err
	}
	d, err := loadDictionary(context, root)
	if err != nil {
		return err
	}
	keys, err := parseKeys(context)
	if err != nil {
		return err
	}
	if len(keys) != 1 {
		return fmt.Errorf("an update requires exactly one key, got %d", len(keys))
	}
	data, err := hexutil.Decode(context.String(valueFlag.Name))
	if err != nil {
		return fmt.Errorf("invalid value: %w", err)
	}
	b := cell.NewBuilder()
	if err := b.StoreBuffer(data); err != nil {
		return err
	}
	value, err := b.EndCell()
	if err != nil {
		return err
	}
	update, err := d.GenerateMerkleUpdate(keys[0], value)
	if err != nil {
		return err
	}
	log.Info("Created Merkle update", "key", keys[0], "from", update.Ref(0).Hash(0), "to", update.Ref(1).Hash(0))
	return writeOutput(context.App.Writer, context.String(outFlag.Name), update)
}
