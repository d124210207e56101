// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package debuginfo records where in a cell DAG particular pieces of data
// were placed during serialization, e.g. the values of dictionary entries.
package debuginfo

import (
	"fmt"

	"github.com/0xsoniclabs/cellar/common"
	"github.com/0xsoniclabs/cellar/database/cell/bits"
)

// Kind classifies a recorded mapping.
type Kind uint8

const (
	// DictionaryValue marks the start of a dictionary entry's value.
	DictionaryValue Kind = iota + 1
	// Code marks the start of a code fragment.
	Code
)

func (k Kind) String() string {
	switch k {
	case DictionaryValue:
		return "dictionary-value"
	case Code:
		return "code"
	}
	return fmt.Sprintf("unknown(%d)", uint8(k))
}

// Mapping locates a bit offset within a cell identified by its level 0 hash.
type Mapping struct {
	CellHash common.Hash
	Offset   int
	Kind     Kind
	Key      bits.BitString
}

// Arena collects mappings. The zero value is not usable, use NewArena.
type Arena struct {
	mappings []Mapping
	byCell   map[common.Hash][]int
}

func NewArena() *Arena {
	return &Arena{byCell: map[common.Hash][]int{}}
}

// Add records a mapping and returns its position in the arena.
func (a *Arena) Add(m Mapping) int {
	a.mappings = append(a.mappings, m)
	id := len(a.mappings) - 1
	a.byCell[m.CellHash] = append(a.byCell[m.CellHash], id)
	return id
}

func (a *Arena) Len() int {
	return len(a.mappings)
}

// At returns the mapping with the given position. It panics if the position
// is out of range.
func (a *Arena) At(id int) Mapping {
	return a.mappings[id]
}

// Lookup returns all mappings recorded for the given cell, in insertion
// order.
func (a *Arena) Lookup(hash common.Hash) []Mapping {
	ids := a.byCell[hash]
	res := make([]Mapping, 0, len(ids))
	for _, id := range ids {
		res = append(res, a.mappings[id])
	}
	return res
}
