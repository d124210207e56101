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
	"testing"

	"github.com/0xsoniclabs/cellar/database/cell"
	"github.com/0xsoniclabs/cellar/database/cell/bits"
	"github.com/stretchr/testify/require"
)

func largeDict() *Dictionary[uint32, uint64] {
	d := New(UintKeys[uint32](32), UintValues[uint64](64))
	for i := uint32(0); i < 200; i++ {
		d.Set(i*7919, uint64(i)*31)
	}
	return d
}

func TestMerkleProof_PreservesLevelZeroHash(t *testing.T) {
	d := largeDict()
	full := storeDirect(t, d)
	subsets := [][]uint32{
		{},
		{0},
		{7919 * 5},
		{0, 7919 * 100, 7919 * 199},
		d.Keys(),
	}
	for _, keys := range subsets {
		proof, err := d.GenerateMerkleProofDirect(keys)
		require.NoError(t, err)
		require.Equal(t, full.Hash(0), proof.Hash(0))
		require.Equal(t, full.Depth(0), proof.Depth(0))
	}
}

func TestMerkleProof_ContainsExactlyRequestedEntries(t *testing.T) {
	require := require.New(t)
	d := largeDict()
	keys := []uint32{7919 * 3, 7919 * 42, 7919 * 150}
	proof, err := d.GenerateMerkleProofDirect(keys)
	require.NoError(err)
	require.Equal(1, proof.Level())

	got, err := LoadDirect(UintKeys[uint32](32), UintValues[uint64](64), proof.BeginParse())
	require.NoError(err)
	require.Equal(len(keys), got.Len())
	for _, key := range keys {
		want, _ := d.Get(key)
		value, found := got.Get(key)
		require.True(found)
		require.Equal(want, value)
	}
}

func TestMerkleProof_WithoutKeysPrunesRoot(t *testing.T) {
	proof, err := exampleDict().GenerateMerkleProofDirect(nil)
	require.NoError(t, err)
	require.Equal(t, cell.PrunedBranch, proof.Type())
}

func TestMerkleProof_FailsForMissingKeys(t *testing.T) {
	d := exampleDict()
	_, err := d.GenerateMerkleProofDirect([]uint16{13, 14})
	require.ErrorIs(t, err, ErrKeyNotFound)
	_, err = d.GenerateMerkleProof([]uint16{1})
	require.ErrorIs(t, err, ErrKeyNotFound)
	_, err = d.GenerateMerkleUpdate(1, 2)
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMerkleProof_WrappedProofCommitsToTrie(t *testing.T) {
	require := require.New(t)
	d := exampleDict()
	proof, err := d.GenerateMerkleProof([]uint16{17})
	require.NoError(err)
	require.Equal(cell.MerkleProof, proof.Type())
	require.Equal(0, proof.Level())

	s := proof.BeginParse()
	require.NoError(s.Skip(8))
	hash, err := s.LoadBuffer(32)
	require.NoError(err)
	require.Equal(storeDirect(t, d).Hash(0).Bytes(), hash)
}

func TestPrune_ProofOfProofIsStable(t *testing.T) {
	require := require.New(t)
	d := largeDict()
	keys := []uint32{0, 7919}
	first, err := d.GenerateMerkleProofDirect(keys)
	require.NoError(err)

	var targets []bits.BitString
	for _, key := range keys {
		target, err := serializeKey(d.keys, key)
		require.NoError(err)
		targets = append(targets, target)
	}
	again, err := prune(first, 32, bits.Empty, targets)
	require.NoError(err)
	require.Equal(first.ReprHash(), again.ReprHash())

	pruned, err := prune(first, 32, bits.Empty, nil)
	require.NoError(err)
	require.Equal(first.Hash(0), pruned.Hash(0))
}

func TestMerkleUpdate_EmbedsOldAndNewCommitments(t *testing.T) {
	require := require.New(t)
	d := exampleDict()
	const key = 17
	old, _ := d.Get(key)

	update, err := d.GenerateMerkleUpdate(key, old*2)
	require.NoError(err)
	require.Equal(cell.MerkleUpdate, update.Type())

	// independently recomputed proofs of both trees
	before, err := d.GenerateMerkleProofDirect([]uint16{key})
	require.NoError(err)
	changed := d.Clone()
	changed.Set(key, old*2)
	after, err := changed.GenerateMerkleProofDirect([]uint16{key})
	require.NoError(err)

	s := update.BeginParse()
	require.NoError(s.Skip(8))
	h1, err := s.LoadBuffer(32)
	require.NoError(err)
	h2, err := s.LoadBuffer(32)
	require.NoError(err)
	d1, err := s.LoadUint(16)
	require.NoError(err)
	d2, err := s.LoadUint(16)
	require.NoError(err)

	require.Equal(before.Hash(0).Bytes(), h1)
	require.Equal(after.Hash(0).Bytes(), h2)
	require.EqualValues(before.Depth(0), d1)
	require.EqualValues(after.Depth(0), d2)
	require.Equal(storeDirect(t, d).Hash(0), before.Hash(0))
	require.Equal(storeDirect(t, changed).Hash(0), after.Hash(0))

	// the source dictionary is left untouched
	current, _ := d.Get(key)
	require.Equal(old, current)
}
