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

// ConvertToPrunedBranch replaces c by a pruned branch carrying its level 0
// hash and depth. The result has level mask 1.
func ConvertToPrunedBranch(c *Cell) (*Cell, error) {
	b := NewBuilder()
	hash := c.Hash(0)
	if err := b.StoreUint(uint64(PrunedBranch), 8); err != nil {
		return nil, err
	}
	if err := b.StoreUint(1, 8); err != nil {
		return nil, err
	}
	if err := b.StoreBuffer(hash[:]); err != nil {
		return nil, err
	}
	if err := b.StoreUint(uint64(c.Depth(0)), depthBits); err != nil {
		return nil, err
	}
	return b.EndExoticCell()
}

// ConvertToMerkleProof wraps c into a Merkle proof cell committing to its
// level 0 hash and depth.
func ConvertToMerkleProof(c *Cell) (*Cell, error) {
	b := NewBuilder()
	hash := c.Hash(0)
	if err := b.StoreUint(uint64(MerkleProof), 8); err != nil {
		return nil, err
	}
	if err := b.StoreBuffer(hash[:]); err != nil {
		return nil, err
	}
	if err := b.StoreUint(uint64(c.Depth(0)), depthBits); err != nil {
		return nil, err
	}
	if err := b.StoreRef(c); err != nil {
		return nil, err
	}
	return b.EndExoticCell()
}

// ConvertToMerkleUpdate creates a Merkle update cell transforming the state
// committed to by from into the state committed to by to.
func ConvertToMerkleUpdate(from, to *Cell) (*Cell, error) {
	b := NewBuilder()
	fromHash, toHash := from.Hash(0), to.Hash(0)
	if err := b.StoreUint(uint64(MerkleUpdate), 8); err != nil {
		return nil, err
	}
	if err := b.StoreBuffer(fromHash[:]); err != nil {
		return nil, err
	}
	if err := b.StoreBuffer(toHash[:]); err != nil {
		return nil, err
	}
	if err := b.StoreUint(uint64(from.Depth(0)), depthBits); err != nil {
		return nil, err
	}
	if err := b.StoreUint(uint64(to.Depth(0)), depthBits); err != nil {
		return nil, err
	}
	if err := b.StoreRef(from); err != nil {
		return nil, err
	}
	if err := b.StoreRef(to); err != nil {
		return nil, err
	}
	return b.EndExoticCell()
}
