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

	"github.com/0xsoniclabs/cellar/common"
	"github.com/0xsoniclabs/cellar/common/diagnostics"
	"github.com/0xsoniclabs/cellar/database/cell"
	"github.com/0xsoniclabs/cellar/database/cell/dict"
	"github.com/urfave/cli/v2"
)

var (
	keyBitsFlag = cli.IntFlag{
		Name:  "key-bits",
		Usage: "number of bits of dictionary keys",
		Value: 256,
	}
	directFlag = cli.BoolFlag{
		Name:  "direct",
		Usage: "the root is the trie root instead of a cell holding a dictionary reference",
		Value: true,
	}
)

var InfoCmd = cli.Command{
	Action:    diagnostics.AddPerformanceDiagnostics(doInfo),
	Name:      "info",
	Usage:     "prints hashes and statistics of all roots of a bag of cells",
	ArgsUsage: "<boc file>",
}

var TreeCmd = cli.Command{
	Action:    diagnostics.AddPerformanceDiagnostics(doTree),
	Name:      "tree",
	Usage:     "prints the cell tree of a single-root bag of cells",
	ArgsUsage: "<boc file>",
}

var DictCmd = cli.Command{
	Action:    diagnostics.AddPerformanceDiagnostics(doDict),
	Name:      "dict",
	Usage:     "lists the entries of a dictionary",
	ArgsUsage: "<boc file>",
	Flags: []cli.Flag{
		&keyBitsFlag,
		&directFlag,
	},
}

func inputArg(context *cli.Context) (string, error) {
	if context.Args().Len() != 1 {
		return "", fmt.Errorf("missing input file parameter")
	}
	return context.Args().Get(0), nil
}

type stats struct {
	cells int
	bits  int
	refs  int
	types map[cell.Type]int
}

func collectStats(root *cell.Cell) stats {
	res := stats{types: map[cell.Type]int{}}
	seen := map[common.Hash]struct{}{}
	var visit func(c *cell.Cell)
	visit = func(c *cell.Cell) {
		if _, found := seen[c.ReprHash()]; found {
			return
		}
		seen[c.ReprHash()] = struct{}{}
		res.cells++
		res.bits += c.Bits().Len()
		res.refs += len(c.Refs())
		res.types[c.Type()]++
		for _, ref := range c.Refs() {
			visit(ref)
		}
	}
	visit(root)
	return res
}

func doInfo(context *cli.Context) error {
	path, err := inputArg(context)
	if err != nil {
		return err
	}
	roots, err := loadRoots(path)
	if err != nil {
		return err
	}
	out := context.App.Writer
	for i, root := range roots {
		s := collectStats(root)
		fmt.Fprintf(out, "root %d: %v\n", i, root.ReprHash())
		fmt.Fprintf(out, "\ttype:   %v\n", root.Type())
		fmt.Fprintf(out, "\tlevel:  %d\n", root.Level())
		fmt.Fprintf(out, "\thash:   %v\n", root.Hash(0))
		fmt.Fprintf(out, "\tdepth:  %d\n", root.Depth(0))
		fmt.Fprintf(out, "\tcells:  %d\n", s.cells)
		fmt.Fprintf(out, "\tbits:   %d\n", s.bits)
		fmt.Fprintf(out, "\trefs:   %d\n", s.refs)
		for typ := cell.Ordinary; typ <= cell.MerkleUpdate; typ++ {
			if count := s.types[typ]; count > 0 {
				fmt.Fprintf(out, "\t%v: %d\n", typ, count)
			}
		}
	}
	return nil
}

func doTree(context *cli.Context) error {
	path, err := inputArg(context)
	if err != nil {
		return err
	}
	root, err := loadRoot(path)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(context.App.Writer, root.String())
	return err
}

func loadDictionary(context *cli.Context, root *cell.Cell) (*dict.Dictionary[*big.Int, *cell.Cell], error) {
	keys := dict.BigUintKeys(context.Int(keyBitsFlag.Name))
	values := dict.RawValues()
	// proofs produced by the prove command wrap the directly stored trie
	if root.Type() == cell.MerkleProof {
		if root = root.Ref(0); root.IsExotic() {
			return dict.New(keys, values), nil
		}
		return dict.LoadDirect(keys, values, root.BeginParse())
	}
	if context.Bool(directFlag.Name) {
		return dict.LoadDirect(keys, values, root.BeginParse())
	}
	return dict.LoadFromCell(keys, values, root)
}

func doDict(context *cli.Context) error {
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
	out := context.App.Writer
	fmt.Fprintf(out, "%d entries\n", d.Len())
	d.Range(func(key *big.Int, value *cell.Cell) bool {
		fmt.Fprintf(out, "0x%x: %v\n", key, value.Bits())
		return true
	})
	return nil
}
