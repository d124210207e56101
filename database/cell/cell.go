// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package cell

import (
	"errors"
	"fmt"
	"slices"

	"github.com/0xsoniclabs/cellar/common"
	"github.com/0xsoniclabs/cellar/database/cell/bits"
)

const (
	// MaxBits is the maximum number of data bits of a cell.
	MaxBits = 1023
	// MaxRefs is the maximum number of references of a cell.
	MaxRefs = 4
	// MaxLevel is the highest Merkle level a cell can have.
	MaxLevel = 3
	// MaxDepth is the depth at which cell depths are capped.
	MaxDepth = 1024
)

var (
	ErrInvalidRefCount     = errors.New("cell: invalid number of references")
	ErrBitsOverflow        = errors.New("cell: too many data bits")
	ErrInvalidExoticType   = errors.New("cell: invalid exotic cell type")
	ErrInvalidExoticLength = errors.New("cell: invalid exotic cell length")
	ErrInvalidLevelMask    = errors.New("cell: invalid level mask")
	ErrProofMismatch       = errors.New("cell: Merkle proof does not match referenced cell")
	ErrTrailingData        = errors.New("cell: unconsumed data")
)

// Type distinguishes ordinary cells from the exotic kinds. The values of the
// exotic kinds are their type tags as stored in the first data byte.
type Type uint8

const (
	Ordinary     Type = 0
	PrunedBranch Type = 1
	Library      Type = 2
	MerkleProof  Type = 3
	MerkleUpdate Type = 4
)

func (t Type) String() string {
	switch t {
	case Ordinary:
		return "ordinary"
	case PrunedBranch:
		return "pruned-branch"
	case Library:
		return "library"
	case MerkleProof:
		return "merkle-proof"
	case MerkleUpdate:
		return "merkle-update"
	}
	return fmt.Sprintf("unknown(%d)", uint8(t))
}

// Cell is an immutable node of a cell DAG holding up to MaxBits bits and up
// to MaxRefs references to other cells. Hashes and depths are computed once
// on construction for every Merkle level.
type Cell struct {
	typ    Type
	bits   bits.BitString
	refs   []*Cell
	mask   LevelMask
	hashes [MaxLevel + 1]common.Hash
	depths [MaxLevel + 1]int
}

// New creates a cell from its data bits and references. If exotic is set,
// the first data byte selects the exotic type and its layout is validated.
func New(data bits.BitString, refs []*Cell, exotic bool) (*Cell, error) {
	if len(refs) > MaxRefs {
		return nil, fmt.Errorf("%w: %d > %d", ErrInvalidRefCount, len(refs), MaxRefs)
	}
	if data.Len() > MaxBits {
		return nil, fmt.Errorf("%w: %d > %d", ErrBitsOverflow, data.Len(), MaxBits)
	}
	res := &Cell{
		typ:  Ordinary,
		bits: data,
		refs: slices.Clone(refs),
	}
	if exotic {
		if data.Len() < 8 {
			return nil, fmt.Errorf("%w: missing type tag", ErrInvalidExoticLength)
		}
		tag, _ := bits.NewReader(data).PreloadUint(8)
		if tag < uint64(PrunedBranch) || tag > uint64(MerkleUpdate) {
			return nil, fmt.Errorf("%w: tag %d", ErrInvalidExoticType, tag)
		}
		res.typ = Type(tag)
	}
	if err := res.resolve(); err != nil {
		return nil, err
	}
	return res, nil
}

// Type returns the kind of the cell.
func (c *Cell) Type() Type {
	return c.typ
}

// IsExotic reports whether the cell is not an ordinary cell.
func (c *Cell) IsExotic() bool {
	return c.typ != Ordinary
}

// Bits returns the data bits of the cell.
func (c *Cell) Bits() bits.BitString {
	return c.bits
}

// Refs returns the referenced cells. The slice must not be modified.
func (c *Cell) Refs() []*Cell {
	return c.refs
}

// Ref returns the i-th reference. It panics if i is out of range.
func (c *Cell) Ref(i int) *Cell {
	return c.refs[i]
}

func (c *Cell) LevelMask() LevelMask {
	return c.mask
}

func (c *Cell) Level() int {
	return c.mask.Level()
}

func clampLevel(level int) int {
	return max(0, min(level, MaxLevel))
}

// Hash returns the representation hash of the cell at the given Merkle
// level. Levels above MaxLevel yield the highest level hash.
func (c *Cell) Hash(level int) common.Hash {
	return c.hashes[clampLevel(level)]
}

// Depth returns the depth of the cell at the given Merkle level.
func (c *Cell) Depth(level int) int {
	return c.depths[clampLevel(level)]
}

// ReprHash is the hash identifying the cell, its hash at MaxLevel.
func (c *Cell) ReprHash() common.Hash {
	return c.Hash(MaxLevel)
}

// Equal reports whether both cells have the same representation hash.
func (c *Cell) Equal(other *Cell) bool {
	return c.ReprHash() == other.ReprHash()
}

// Descriptors returns the two descriptor bytes of the cell for the given
// level: d1 = refs + 8*exotic + 32*mask and d2 = floor(bits/8) + ceil(bits/8).
func (c *Cell) Descriptors(level int) (byte, byte) {
	d1 := byte(len(c.refs)) + 32*byte(c.mask.Apply(level))
	if c.IsExotic() {
		d1 += 8
	}
	d2 := byte(c.bits.Len()/8 + (c.bits.Len()+7)/8)
	return d1, d2
}

// BeginParse starts reading the cell's data and references.
func (c *Cell) BeginParse() *Slice {
	return newSlice(c)
}
