// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package dict

import (
	"fmt"

	"github.com/0xsoniclabs/cellar/database/cell"
	"github.com/0xsoniclabs/cellar/database/cell/bits"
)

// GenerateMerkleProofDirect returns the directly stored trie with every
// branch not leading to one of the given keys replaced by a pruned branch.
// The result has the same level 0 hash as the full trie. All keys must be
// present.
func (d *Dictionary[K, V]) GenerateMerkleProofDirect(keys []K) (*cell.Cell, error) {
	if err := d.checkCodecs(); err != nil {
		return nil, err
	}
	targets := make([]bits.BitString, 0, len(keys))
	for _, key := range keys {
		if !d.Has(key) {
			return nil, fmt.Errorf("%w: %v", ErrKeyNotFound, key)
		}
		target, err := serializeKey(d.keys, key)
		if err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}

	b := cell.NewBuilder()
	if err := d.StoreDirect(b); err != nil {
		return nil, err
	}
	root, err := b.EndCell()
	if err != nil {
		return nil, err
	}
	return prune(root, d.keys.Bits(), bits.Empty, targets)
}

// GenerateMerkleProof wraps the result of GenerateMerkleProofDirect into a
// Merkle proof cell.
func (d *Dictionary[K, V]) GenerateMerkleProof(keys []K) (*cell.Cell, error) {
	direct, err := d.GenerateMerkleProofDirect(keys)
	if err != nil {
		return nil, err
	}
	return cell.ConvertToMerkleProof(direct)
}

// GenerateMerkleUpdate returns a Merkle update from the current dictionary
// to the dictionary with key set to value, each side pruned down to the
// path of key. The dictionary itself is not modified.
func (d *Dictionary[K, V]) GenerateMerkleUpdate(key K, value V) (*cell.Cell, error) {
	before, err := d.GenerateMerkleProofDirect([]K{key})
	if err != nil {
		return nil, err
	}
	next := d.Clone()
	next.Set(key, value)
	after, err := next.GenerateMerkleProofDirect([]K{key})
	if err != nil {
		return nil, err
	}
	return cell.ConvertToMerkleUpdate(before, after)
}

// prune rebuilds the trie cell c keeping only the paths to targets.
func prune(c *cell.Cell, remaining int, prefix bits.BitString, targets []bits.BitString) (*cell.Cell, error) {
	if len(targets) == 0 {
		return cell.ConvertToPrunedBranch(c)
	}
	label, err := readLabel(c.BeginParse(), remaining)
	if err != nil {
		return nil, err
	}
	remaining -= label.Len()
	if remaining == 0 {
		return c, nil
	}
	if len(c.Refs()) < 2 {
		return nil, fmt.Errorf("%w: fork with %d references", ErrInvalidLabel, len(c.Refs()))
	}

	key := bits.Concat(prefix, label)
	refs := make([]*cell.Cell, 2)
	for i := range refs {
		refs[i] = c.Ref(i)
		if refs[i].IsExotic() {
			continue
		}
		branch := appendBit(key, i == 1)
		if refs[i], err = prune(refs[i], remaining-1, branch, withPrefix(targets, branch)); err != nil {
			return nil, err
		}
	}

	b := cell.NewBuilder()
	if err := b.StoreBits(c.Bits()); err != nil {
		return nil, err
	}
	for _, ref := range refs {
		if err := b.StoreRef(ref); err != nil {
			return nil, err
		}
	}
	return b.EndCell()
}

func withPrefix(keys []bits.BitString, prefix bits.BitString) []bits.BitString {
	var res []bits.BitString
	for _, key := range keys {
		head, err := key.Substring(0, prefix.Len())
		if err == nil && head.Equal(prefix) {
			res = append(res, key)
		}
	}
	return res
}
