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
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/0xsoniclabs/cellar/database/cell"
	"github.com/0xsoniclabs/cellar/database/cell/boc"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
)

var bocMagics = [][]byte{
	{0xb5, 0xee, 0x9c, 0x72},
	{0x68, 0xff, 0x65, 0xf3},
	{0xac, 0xc3, 0xa7, 0x28},
}

// readInput reads a file, or stdin if path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// decodeBoc accepts a bag of cells in binary form, as hex text with or
// without 0x prefix, or as base64 text.
func decodeBoc(data []byte) ([]*cell.Cell, error) {
	for _, magic := range bocMagics {
		if bytes.HasPrefix(data, magic) {
			log.Debug("Decoding binary bag of cells", "size", len(data))
			return boc.Deserialize(data)
		}
	}
	text := strings.TrimSpace(string(data))
	if !strings.HasPrefix(text, "0x") {
		text = "0x" + text
	}
	if raw, err := hexutil.Decode(text); err == nil {
		log.Debug("Decoding hex bag of cells", "size", len(raw))
		return boc.Deserialize(raw)
	}
	root, err := boc.FromBase64(string(data))
	if err != nil {
		return nil, err
	}
	return []*cell.Cell{root}, nil
}

func loadRoots(path string) ([]*cell.Cell, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	roots, err := decodeBoc(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return roots, nil
}

func loadRoot(path string) (*cell.Cell, error) {
	roots, err := loadRoots(path)
	if err != nil {
		return nil, err
	}
	if len(roots) != 1 {
		return nil, fmt.Errorf("expected a single root in %s, got %d", path, len(roots))
	}
	return roots[0], nil
}

// writeOutput writes the root as binary bag of cells to the given file or,
// if path is empty, as base64 to out.
func writeOutput(out io.Writer, path string, root *cell.Cell) error {
	if path == "" {
		text, err := boc.ToBase64(root)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, text)
		return err
	}
	data, err := boc.Serialize(root)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
