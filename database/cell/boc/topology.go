// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package boc

import (
	"fmt"

	"github.com/0xsoniclabs/cellar/common"
	"github.com/0xsoniclabs/cellar/database/cell"
)

// ordered is a cell in serialization order together with the positions of
// its references.
type ordered struct {
	cell *cell.Cell
	refs []int
}

// topologicalSort lists all distinct cells reachable from roots such that
// every cell precedes the cells it references. Cells are identified by their
// representation hash, shared sub-trees are listed once.
func topologicalSort(roots []*cell.Cell) ([]ordered, map[common.Hash]int, error) {
	type entry struct {
		cell *cell.Cell
		refs []common.Hash
	}

	// collect cells level by level in discovery order
	all := map[common.Hash]entry{}
	var discovered []common.Hash
	pending := roots
	for len(pending) > 0 {
		current := pending
		pending = nil
		for _, c := range current {
			hash := c.ReprHash()
			if _, found := all[hash]; found {
				continue
			}
			refs := make([]common.Hash, len(c.Refs()))
			for i, ref := range c.Refs() {
				refs[i] = ref.ReprHash()
			}
			all[hash] = entry{cell: c, refs: refs}
			discovered = append(discovered, hash)
			pending = append(pending, c.Refs()...)
		}
	}

	// depth first post-order, references visited in reverse
	unvisited := make(map[common.Hash]struct{}, len(all))
	for hash := range all {
		unvisited[hash] = struct{}{}
	}
	inProgress := map[common.Hash]struct{}{}
	sorted := make([]common.Hash, 0, len(all))
	var visit func(hash common.Hash) error
	visit = func(hash common.Hash) error {
		if _, found := unvisited[hash]; !found {
			return nil
		}
		if _, found := inProgress[hash]; found {
			return fmt.Errorf("%w: cycle at %v", ErrInvalidBoc, hash)
		}
		inProgress[hash] = struct{}{}
		refs := all[hash].refs
		for i := len(refs) - 1; i >= 0; i-- {
			if err := visit(refs[i]); err != nil {
				return err
			}
		}
		sorted = append(sorted, hash)
		delete(inProgress, hash)
		delete(unvisited, hash)
		return nil
	}
	for _, hash := range discovered {
		if err := visit(hash); err != nil {
			return nil, nil, err
		}
	}

	index := make(map[common.Hash]int, len(sorted))
	for i, hash := range sorted {
		index[hash] = len(sorted) - i - 1
	}
	res := make([]ordered, 0, len(sorted))
	for i := len(sorted) - 1; i >= 0; i-- {
		e := all[sorted[i]]
		refs := make([]int, len(e.refs))
		for j, ref := range e.refs {
			refs[j] = index[ref]
		}
		res = append(res, ordered{cell: e.cell, refs: refs})
	}
	return res, index, nil
}
