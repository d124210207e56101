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
	"encoding/hex"
	"math/big"
	"strings"
	"testing"

	"github.com/0xsoniclabs/cellar/common"
	"github.com/0xsoniclabs/cellar/database/cell/address"
	"github.com/0xsoniclabs/cellar/database/cell/bits"
	"github.com/stretchr/testify/require"
)

func mustCell(t *testing.T, fill func(b *Builder) error) *Cell {
	t.Helper()
	b := NewBuilder()
	require.NoError(t, fill(b))
	c, err := b.EndCell()
	require.NoError(t, err)
	return c
}

func leaf(t *testing.T, value uint64) *Cell {
	return mustCell(t, func(b *Builder) error { return b.StoreUint(value, 32) })
}

func withRefs(t *testing.T, value uint64, refs ...*Cell) *Cell {
	return mustCell(t, func(b *Builder) error {
		if err := b.StoreUint(value, 8); err != nil {
			return err
		}
		for _, ref := range refs {
			if err := b.StoreRef(ref); err != nil {
				return err
			}
		}
		return nil
	})
}

func TestCell_EmptyCell_HasWellKnownHash(t *testing.T) {
	c, err := NewBuilder().EndCell()
	require.NoError(t, err)
	require.Equal(t, "96a296d224f285c67bee93c30f8a309157f0daa35dc5b87e410b78630a09cfc7", hex.EncodeToString(c.Hash(0).Bytes()))
	require.Equal(t, 0, c.Depth(0))
	require.Equal(t, 0, c.Level())
}

func TestCell_OrdinaryCell_HashesAreEqualOnAllLevels(t *testing.T) {
	c := withRefs(t, 1, leaf(t, 1), leaf(t, 2))
	for level := 0; level <= MaxLevel+2; level++ {
		require.Equal(t, c.Hash(0), c.Hash(level))
		require.Equal(t, 1, c.Depth(level))
	}
	require.Equal(t, c.Hash(MaxLevel), c.ReprHash())
}

func TestCell_Hash_DependsOnDataAndReferences(t *testing.T) {
	a := withRefs(t, 1, leaf(t, 1))
	b := withRefs(t, 1, leaf(t, 2))
	c := withRefs(t, 2, leaf(t, 1))
	d := withRefs(t, 1, leaf(t, 1))
	require.NotEqual(t, a.Hash(0), b.Hash(0))
	require.NotEqual(t, a.Hash(0), c.Hash(0))
	require.Equal(t, a.Hash(0), d.Hash(0))
	require.True(t, a.Equal(d))
}

func TestCell_Depth_IsOnePlusDeepestReference(t *testing.T) {
	inner := withRefs(t, 0, leaf(t, 0))
	outer := withRefs(t, 0, leaf(t, 1), inner)
	require.Equal(t, 1, inner.Depth(0))
	require.Equal(t, 2, outer.Depth(0))
}

func TestCell_Depth_IsCappedAtMaxDepth(t *testing.T) {
	c := leaf(t, 0)
	for i := 0; i < MaxDepth+10; i++ {
		c = withRefs(t, 0, c)
	}
	require.Equal(t, MaxDepth, c.Depth(0))
}

func TestCell_New_RejectsOversizedContent(t *testing.T) {
	data, err := bits.New(make([]byte, 128), 0, 1024)
	require.NoError(t, err)
	_, err = New(data, nil, false)
	require.ErrorIs(t, err, ErrBitsOverflow)

	l := leaf(t, 0)
	_, err = New(bits.Empty, []*Cell{l, l, l, l, l}, false)
	require.ErrorIs(t, err, ErrInvalidRefCount)
}

func TestCell_New_RejectsUnknownExoticTypes(t *testing.T) {
	_, err := New(bits.FromBytes([]byte{5}), nil, true)
	require.ErrorIs(t, err, ErrInvalidExoticType)
	_, err = New(bits.FromBytes([]byte{0}), nil, true)
	require.ErrorIs(t, err, ErrInvalidExoticType)
	_, err = New(bits.Empty, nil, true)
	require.ErrorIs(t, err, ErrInvalidExoticLength)
}

func TestCell_Descriptors(t *testing.T) {
	c := mustCell(t, func(b *Builder) error {
		if err := b.StoreUint(0, 12); err != nil {
			return err
		}
		return b.StoreRef(leaf(t, 0))
	})
	d1, d2 := c.Descriptors(MaxLevel)
	require.Equal(t, byte(1), d1)
	require.Equal(t, byte(1+2), d2)

	pruned, err := ConvertToPrunedBranch(c)
	require.NoError(t, err)
	d1, d2 = pruned.Descriptors(MaxLevel)
	require.Equal(t, byte(8+32), d1)
	require.Equal(t, byte(2*(288/8)), d2)
}

func TestPrunedBranch_KeepsLevelZeroIdentity(t *testing.T) {
	require := require.New(t)
	original := withRefs(t, 7, leaf(t, 1), leaf(t, 2))
	pruned, err := ConvertToPrunedBranch(original)
	require.NoError(err)

	require.Equal(PrunedBranch, pruned.Type())
	require.True(pruned.IsExotic())
	require.Equal(LevelMask(1), pruned.LevelMask())
	require.Equal(original.Hash(0), pruned.Hash(0))
	require.Equal(original.Depth(0), pruned.Depth(0))
	require.NotEqual(original.Hash(0), pruned.Hash(1))
	require.Equal(0, pruned.Depth(1))
}

func TestPrunedBranch_ParentHashAtLevelZeroIsUnchanged(t *testing.T) {
	require := require.New(t)
	child := withRefs(t, 3, leaf(t, 4))
	other := leaf(t, 5)
	full := withRefs(t, 1, child, other)

	prunedChild, err := ConvertToPrunedBranch(child)
	require.NoError(err)
	partial := withRefs(t, 1, prunedChild, other)

	require.Equal(LevelMask(1), partial.LevelMask())
	require.Equal(full.Hash(0), partial.Hash(0))
	require.Equal(full.Depth(0), partial.Depth(0))
	require.NotEqual(full.Hash(1), partial.Hash(1))
}

func TestPrunedBranch_LegacyLayoutImpliesMaskOne(t *testing.T) {
	require := require.New(t)
	original := leaf(t, 99)
	hash := original.Hash(0)

	b := NewBuilder()
	require.NoError(b.StoreUint(uint64(PrunedBranch), 8))
	require.NoError(b.StoreBuffer(hash[:]))
	require.NoError(b.StoreUint(uint64(original.Depth(0)), 16))
	require.Equal(280, b.BitsLen())
	pruned, err := b.EndExoticCell()
	require.NoError(err)
	require.Equal(LevelMask(1), pruned.LevelMask())
	require.Equal(hash, pruned.Hash(0))
}

func TestPrunedBranch_RejectsInvalidLayouts(t *testing.T) {
	hash := leaf(t, 0).Hash(0)
	build := func(mask uint64, extra int, refs ...*Cell) error {
		b := NewBuilder()
		require.NoError(t, b.StoreUint(uint64(PrunedBranch), 8))
		require.NoError(t, b.StoreUint(mask, 8))
		require.NoError(t, b.StoreBuffer(hash[:]))
		require.NoError(t, b.StoreUint(0, 16+extra))
		for _, ref := range refs {
			require.NoError(t, b.StoreRef(ref))
		}
		_, err := b.EndExoticCell()
		return err
	}
	require.NoError(t, build(1, 0))
	require.ErrorIs(t, build(0, 0), ErrInvalidLevelMask)
	require.ErrorIs(t, build(8, 0), ErrInvalidLevelMask)
	require.ErrorIs(t, build(1, 8), ErrInvalidExoticLength)
	require.ErrorIs(t, build(3, 0), ErrInvalidExoticLength)
	require.ErrorIs(t, build(1, 0, leaf(t, 0)), ErrInvalidRefCount)
}

func TestPrunedBranch_HigherLevelMaskStoresAllLowerHashes(t *testing.T) {
	require := require.New(t)
	h0 := leaf(t, 1).Hash(0)
	h1 := leaf(t, 2).Hash(0)

	b := NewBuilder()
	require.NoError(b.StoreUint(uint64(PrunedBranch), 8))
	require.NoError(b.StoreUint(3, 8))
	require.NoError(b.StoreBuffer(h0[:]))
	require.NoError(b.StoreBuffer(h1[:]))
	require.NoError(b.StoreUint(5, 16))
	require.NoError(b.StoreUint(6, 16))
	pruned, err := b.EndExoticCell()
	require.NoError(err)

	require.Equal(2, pruned.Level())
	require.Equal(h0, pruned.Hash(0))
	require.Equal(5, pruned.Depth(0))
	require.Equal(h1, pruned.Hash(1))
	require.Equal(6, pruned.Depth(1))
	require.NotEqual(h1, pruned.Hash(2))
	require.Equal(pruned.Hash(2), pruned.Hash(3))
}

func TestLibraryCell_RequiresExactLayout(t *testing.T) {
	hash := leaf(t, 0).Hash(0)
	b := NewBuilder()
	require.NoError(t, b.StoreUint(uint64(Library), 8))
	require.NoError(t, b.StoreBuffer(hash[:]))
	lib, err := b.EndExoticCell()
	require.NoError(t, err)
	require.Equal(t, Library, lib.Type())
	require.Equal(t, 0, lib.Level())

	require.NoError(t, b.StoreBit(true))
	_, err = b.EndExoticCell()
	require.ErrorIs(t, err, ErrInvalidExoticLength)
}

func TestMerkleProof_LowersLevelOfPrunedContent(t *testing.T) {
	require := require.New(t)
	child := leaf(t, 1)
	prunedChild, err := ConvertToPrunedBranch(child)
	require.NoError(err)
	partial := withRefs(t, 0, prunedChild, leaf(t, 2))

	proof, err := ConvertToMerkleProof(partial)
	require.NoError(err)
	require.Equal(MerkleProof, proof.Type())
	require.Equal(0, proof.Level())
	require.Equal(partial.Depth(1)+1, proof.Depth(0))
	require.Equal(partial, proof.Ref(0))
}

func TestMerkleProof_RejectsMismatchingCommitment(t *testing.T) {
	require := require.New(t)
	target := leaf(t, 1)
	wrong := leaf(t, 2).Hash(0)

	b := NewBuilder()
	require.NoError(b.StoreUint(uint64(MerkleProof), 8))
	require.NoError(b.StoreBuffer(wrong[:]))
	require.NoError(b.StoreUint(uint64(target.Depth(0)), 16))
	require.NoError(b.StoreRef(target))
	_, err := b.EndExoticCell()
	require.ErrorIs(err, ErrProofMismatch)

	b = NewBuilder()
	require.NoError(b.StoreUint(uint64(MerkleProof), 8))
	require.NoError(b.StoreBuffer(wrong[:]))
	_, err = b.EndExoticCell()
	require.ErrorIs(err, ErrInvalidExoticLength)
}

func TestMerkleUpdate_CommitsToBothSides(t *testing.T) {
	require := require.New(t)
	from := withRefs(t, 1, leaf(t, 1))
	to := withRefs(t, 1, leaf(t, 2))

	update, err := ConvertToMerkleUpdate(from, to)
	require.NoError(err)
	require.Equal(MerkleUpdate, update.Type())
	require.Equal(552, update.Bits().Len())

	s := update.BeginParse()
	require.NoError(s.Skip(8))
	h1, err := s.LoadBuffer(32)
	require.NoError(err)
	h2, err := s.LoadBuffer(32)
	require.NoError(err)
	require.Equal(from.Hash(0).Bytes(), h1)
	require.Equal(to.Hash(0).Bytes(), h2)
}

func TestMerkleUpdate_RejectsWrongReferenceCount(t *testing.T) {
	from := leaf(t, 1)
	update, err := ConvertToMerkleUpdate(from, from)
	require.NoError(t, err)

	s := update.BeginParse()
	bits, err := s.LoadBits(s.RemainingBits())
	require.NoError(t, err)
	_, err = New(bits, []*Cell{from}, true)
	require.ErrorIs(t, err, ErrInvalidRefCount)
}

func TestCell_String_DumpsTree(t *testing.T) {
	child := mustCell(t, func(b *Builder) error { return b.StoreUint(0xF, 4) })
	root := withRefs(t, 0xAB, child)
	require.Equal(t, "x{AB}\n x{F}", root.String())

	pruned, err := ConvertToPrunedBranch(child)
	require.NoError(t, err)
	hash := child.Hash(0)
	want := "p{0101" + strings.ToUpper(hex.EncodeToString(hash[:])) + "0000}"
	require.Equal(t, want, pruned.String())
}

func TestCell_String_ExoticCellsUseSinglePrefix(t *testing.T) {
	empty := mustCell(t, func(b *Builder) error { return nil })
	proof, err := ConvertToMerkleProof(empty)
	require.NoError(t, err)
	hash := empty.Hash(0)
	want := "p{03" + strings.ToUpper(hex.EncodeToString(hash[:])) + "0000}\n x{}"
	require.Equal(t, want, proof.String())

	update, err := ConvertToMerkleUpdate(empty, empty)
	require.NoError(t, err)
	dump := update.String()
	require.True(t, strings.HasPrefix(dump, "u{04"), dump)
	require.True(t, strings.HasSuffix(dump, "}\n x{}\n x{}"), dump)
}

func TestBuilderSlice_RoundTrip(t *testing.T) {
	require := require.New(t)
	ref := leaf(t, 42)
	addr := address.New(0, common.Hash{9})

	b := NewBuilder()
	require.NoError(b.StoreBit(true))
	require.NoError(b.StoreUint(300, 16))
	require.NoError(b.StoreInt(-2, 8))
	require.NoError(b.StoreCoins(big.NewInt(12345)))
	require.NoError(b.StoreAddress(addr))
	require.NoError(b.StoreMaybeRef(nil))
	require.NoError(b.StoreMaybeRef(ref))
	c, err := b.EndCell()
	require.NoError(err)

	s := c.BeginParse()
	bit, err := s.LoadBit()
	require.NoError(err)
	require.True(bit)
	u, err := s.LoadUint(16)
	require.NoError(err)
	require.EqualValues(300, u)
	i, err := s.LoadInt(8)
	require.NoError(err)
	require.EqualValues(-2, i)
	coins, err := s.LoadCoins()
	require.NoError(err)
	require.Equal(int64(12345), coins.Int64())
	gotAddr, err := s.LoadAddress()
	require.NoError(err)
	require.True(addr.Equal(gotAddr))
	none, err := s.LoadMaybeRef()
	require.NoError(err)
	require.Nil(none)
	got, err := s.LoadMaybeRef()
	require.NoError(err)
	require.True(ref.Equal(got))
	require.NoError(s.EndParse())
}

func TestBuilder_RejectsTooManyReferences(t *testing.T) {
	b := NewBuilder()
	l := leaf(t, 0)
	for i := 0; i < MaxRefs; i++ {
		require.NoError(t, b.StoreRef(l))
	}
	require.ErrorIs(t, b.StoreRef(l), ErrInvalidRefCount)
	require.ErrorIs(t, b.StoreMaybeRef(l), ErrInvalidRefCount)
	require.Zero(t, b.AvailableRefs())
}

func TestBuilder_RejectsTooManyBits(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.StoreBuffer(make([]byte, 127)))
	require.Equal(t, 7, b.AvailableBits())
	require.ErrorIs(t, b.StoreUint(0, 8), bits.ErrOverflow)
}

func TestSlice_EndParse_ReportsTrailingData(t *testing.T) {
	c := withRefs(t, 1, leaf(t, 1))
	s := c.BeginParse()
	require.ErrorIs(t, s.EndParse(), ErrTrailingData)
	_, err := s.LoadUint(8)
	require.NoError(t, err)
	require.ErrorIs(t, s.EndParse(), ErrTrailingData)
	_, err = s.LoadRef()
	require.NoError(t, err)
	require.NoError(t, s.EndParse())
	_, err = s.LoadRef()
	require.ErrorIs(t, err, bits.ErrOutOfBounds)
}

func TestSlice_ToCell_KeepsRemainder(t *testing.T) {
	require := require.New(t)
	ref := leaf(t, 3)
	c := withRefs(t, 0xCD, ref)
	s := c.BeginParse()
	require.NoError(s.Skip(4))

	rest, err := s.ToCell()
	require.NoError(err)
	require.Equal("D", rest.Bits().String())
	require.Len(rest.Refs(), 1)

	clone := c.BeginParse().Clone()
	b := NewBuilder()
	require.NoError(b.StoreSlice(clone))
	copied, err := b.EndCell()
	require.NoError(err)
	require.True(c.Equal(copied))
}

func TestBuilder_StoreBuilder_AppendsContent(t *testing.T) {
	require := require.New(t)
	inner := NewBuilder()
	require.NoError(inner.StoreUint(0xA, 4))
	require.NoError(inner.StoreRef(leaf(t, 1)))

	outer := NewBuilder()
	require.NoError(outer.StoreUint(0xB, 4))
	require.NoError(outer.StoreBuilder(inner))
	c, err := outer.EndCell()
	require.NoError(err)
	require.Equal("BA", c.Bits().String())
	require.Len(c.Refs(), 1)
}

func TestType_String(t *testing.T) {
	require.Equal(t, "ordinary", Ordinary.String())
	require.Equal(t, "pruned-branch", PrunedBranch.String())
	require.Equal(t, "merkle-update", MerkleUpdate.String())
	require.Equal(t, "unknown(9)", Type(9).String())
}
