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
	"fmt"

	"github.com/0xsoniclabs/cellar/common"
	"github.com/0xsoniclabs/cellar/database/cell/bits"
)

const (
	hashBits  = common.HashSize * 8
	depthBits = 16

	libraryBits      = 8 + hashBits
	merkleProofBits  = 8 + hashBits + depthBits
	merkleUpdateBits = 8 + 2*(hashBits+depthBits)
	// prunedLegacyBits is the size of pruned branches serialized without an
	// explicit level mask, which implies a mask of 1.
	prunedLegacyBits = 8 + hashBits + depthBits
)

// prunedEntry is a hash and depth of the original cell stored in a pruned
// branch for one of its lower levels.
type prunedEntry struct {
	hash  common.Hash
	depth int
}

// exoticMask validates the layout of an exotic cell and derives its level
// mask. For pruned branches the stored hashes and depths are returned too.
func (c *Cell) exoticMask() (LevelMask, []prunedEntry, error) {
	switch c.typ {
	case PrunedBranch:
		return c.resolvePrunedBranch()
	case Library:
		if c.bits.Len() != libraryBits {
			return 0, nil, fmt.Errorf("%w: library cell has %d bits, want %d", ErrInvalidExoticLength, c.bits.Len(), libraryBits)
		}
		if len(c.refs) != 0 {
			return 0, nil, fmt.Errorf("%w: library cell with %d references", ErrInvalidRefCount, len(c.refs))
		}
		return 0, nil, nil
	case MerkleProof:
		if err := c.checkMerkleProof(); err != nil {
			return 0, nil, err
		}
		return c.refs[0].mask >> 1, nil, nil
	case MerkleUpdate:
		if err := c.checkMerkleUpdate(); err != nil {
			return 0, nil, err
		}
		return (c.refs[0].mask | c.refs[1].mask) >> 1, nil, nil
	}
	return 0, nil, fmt.Errorf("%w: %v", ErrInvalidExoticType, c.typ)
}

func (c *Cell) resolvePrunedBranch() (LevelMask, []prunedEntry, error) {
	if len(c.refs) != 0 {
		return 0, nil, fmt.Errorf("%w: pruned branch with %d references", ErrInvalidRefCount, len(c.refs))
	}
	r := bits.NewReader(c.bits)
	if err := r.Skip(8); err != nil {
		return 0, nil, err
	}

	var mask LevelMask
	if c.bits.Len() == prunedLegacyBits {
		mask = 1
	} else {
		raw, err := r.LoadUint(8)
		if err != nil {
			return 0, nil, fmt.Errorf("%w: %w", ErrInvalidExoticLength, err)
		}
		mask = LevelMask(raw)
		if mask < 1 || mask > 7 {
			return 0, nil, fmt.Errorf("%w: pruned branch with mask %d", ErrInvalidLevelMask, mask)
		}
		want := 16 + mask.Apply(mask.Level()-1).HashCount()*(hashBits+depthBits)
		if c.bits.Len() != want {
			return 0, nil, fmt.Errorf("%w: pruned branch has %d bits, want %d", ErrInvalidExoticLength, c.bits.Len(), want)
		}
	}

	// all hashes are stored first, followed by all depths
	entries := make([]prunedEntry, mask.Apply(mask.Level()-1).HashCount())
	for i := range entries {
		hash, err := r.LoadBuffer(common.HashSize)
		if err != nil {
			return 0, nil, fmt.Errorf("%w: %w", ErrInvalidExoticLength, err)
		}
		copy(entries[i].hash[:], hash)
	}
	for i := range entries {
		depth, err := r.LoadUint(depthBits)
		if err != nil {
			return 0, nil, fmt.Errorf("%w: %w", ErrInvalidExoticLength, err)
		}
		entries[i].depth = int(depth)
	}
	return mask, entries, nil
}

// readHashAndDepth reads a hash and a depth at the given bit offsets.
func (c *Cell) readHashAndDepth(hashOffset, depthOffset int) (common.Hash, int) {
	var hash common.Hash
	r := bits.NewReader(c.bits)
	// offsets are within the validated length
	_ = r.Skip(hashOffset)
	raw, _ := r.LoadBuffer(common.HashSize)
	copy(hash[:], raw)
	r.Reset()
	_ = r.Skip(depthOffset)
	depth, _ := r.LoadUint(depthBits)
	return hash, int(depth)
}

func (c *Cell) checkMerkleProof() error {
	if c.bits.Len() != merkleProofBits {
		return fmt.Errorf("%w: Merkle proof has %d bits, want %d", ErrInvalidExoticLength, c.bits.Len(), merkleProofBits)
	}
	if len(c.refs) != 1 {
		return fmt.Errorf("%w: Merkle proof with %d references", ErrInvalidRefCount, len(c.refs))
	}
	hash, depth := c.readHashAndDepth(8, 8+hashBits)
	if hash != c.refs[0].Hash(0) || depth != c.refs[0].Depth(0) {
		return fmt.Errorf("%w: stored %v at depth %d, referenced %v at depth %d",
			ErrProofMismatch, hash, depth, c.refs[0].Hash(0), c.refs[0].Depth(0))
	}
	return nil
}

func (c *Cell) checkMerkleUpdate() error {
	if c.bits.Len() != merkleUpdateBits {
		return fmt.Errorf("%w: Merkle update has %d bits, want %d", ErrInvalidExoticLength, c.bits.Len(), merkleUpdateBits)
	}
	if len(c.refs) != 2 {
		return fmt.Errorf("%w: Merkle update with %d references", ErrInvalidRefCount, len(c.refs))
	}
	for i, ref := range c.refs {
		hash, depth := c.readHashAndDepth(8+i*hashBits, 8+2*hashBits+i*depthBits)
		if hash != ref.Hash(0) || depth != ref.Depth(0) {
			return fmt.Errorf("%w: update side %d stored %v at depth %d, referenced %v at depth %d",
				ErrProofMismatch, i, hash, depth, ref.Hash(0), ref.Depth(0))
		}
	}
	return nil
}
