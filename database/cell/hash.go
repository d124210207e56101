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
	"github.com/0xsoniclabs/cellar/common"
	"github.com/minio/sha256-simd"
)

// resolve derives the level mask and computes hashes and depths of the cell
// for all Merkle levels.
func (c *Cell) resolve() error {
	var pruned []prunedEntry
	if c.IsExotic() {
		mask, entries, err := c.exoticMask()
		if err != nil {
			return err
		}
		c.mask, pruned = mask, entries
	} else {
		for _, ref := range c.refs {
			c.mask |= ref.mask
		}
	}

	// Pruned branches only compute their own highest level hash, the lower
	// levels are taken from the stored entries.
	total := c.mask.HashCount()
	count := total
	if c.typ == PrunedBranch {
		count = 1
	}
	offset := total - count

	var (
		hashes [MaxLevel + 1]common.Hash
		depths [MaxLevel + 1]int
	)
	index := 0
	for level := 0; level <= c.mask.Level(); level++ {
		if !c.mask.IsSignificant(level) {
			continue
		}
		if index < offset {
			index++
			continue
		}

		var data []byte
		if index == offset {
			data = c.bits.PaddedBytes()
		} else {
			prev := hashes[index-offset-1]
			data = prev[:]
		}

		childLevel := level
		if c.typ == MerkleProof || c.typ == MerkleUpdate {
			childLevel = level + 1
		}

		depth := 0
		for _, ref := range c.refs {
			depth = max(depth, ref.Depth(childLevel))
		}
		if len(c.refs) > 0 {
			depth = min(depth+1, MaxDepth)
		}

		hashes[index-offset] = c.representationHash(level, childLevel, data)
		depths[index-offset] = depth
		index++
	}

	for level := 0; level <= MaxLevel; level++ {
		hashIndex := c.mask.Apply(level).HashIndex()
		switch {
		case pruned != nil && hashIndex != c.mask.HashIndex():
			c.hashes[level] = pruned[hashIndex].hash
			c.depths[level] = pruned[hashIndex].depth
		case pruned != nil:
			c.hashes[level] = hashes[0]
			c.depths[level] = depths[0]
		default:
			c.hashes[level] = hashes[hashIndex]
			c.depths[level] = depths[hashIndex]
		}
	}
	return nil
}

// representationHash hashes the descriptors, the given data, and the depths
// and hashes of the references at childLevel.
func (c *Cell) representationHash(level, childLevel int, data []byte) common.Hash {
	d1, d2 := c.Descriptors(level)
	repr := make([]byte, 0, 2+len(data)+len(c.refs)*(2+common.HashSize))
	repr = append(repr, d1, d2)
	repr = append(repr, data...)
	for _, ref := range c.refs {
		depth := ref.Depth(childLevel)
		repr = append(repr, byte(depth>>8), byte(depth))
	}
	for _, ref := range c.refs {
		hash := ref.Hash(childLevel)
		repr = append(repr, hash[:]...)
	}
	return sha256.Sum256(repr)
}
