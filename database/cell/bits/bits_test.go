// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package bits

import (
	"math"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, write func(b *Builder) error) BitString {
	t.Helper()
	b := NewBuilder(1023)
	require.NoError(t, write(b))
	return b.BitString()
}

func TestBitString_String_CanonicalForms(t *testing.T) {
	tests := map[string]struct {
		width int
		value uint64
		want  string
	}{
		"empty":           {0, 0, ""},
		"single one":      {1, 1, "C_"},
		"single zero":     {1, 0, "4_"},
		"nibble":          {4, 0xA, "A"},
		"byte":            {8, 0xAB, "AB"},
		"twelve bits":     {12, 0xABC, "ABC"},
		"five bits":       {5, 0b10101, "AC_"},
		"seven bits":      {7, 0b1010101, "AB_"},
		"three bits":      {3, 0b101, "B_"},
		"nine bits":       {9, 0b101010101, "AAC_"},
		"sixteen zeroes":  {16, 0, "0000"},
		"ten bits of one": {10, 0x3FF, "FFE_"},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			s := build(t, func(b *Builder) error { return b.WriteUint(test.value, test.width) })
			require.Equal(t, test.want, s.String())
		})
	}
}

func TestBitString_Substring_SharesBitsAndChecksBounds(t *testing.T) {
	require := require.New(t)
	s := FromBytes([]byte{0b10110011, 0xFF})

	sub, err := s.Substring(2, 4)
	require.NoError(err)
	require.Equal(4, sub.Len())
	require.Equal("C", sub.String())

	_, err = s.Substring(10, 7)
	require.ErrorIs(err, ErrOutOfBounds)
	_, err = s.Substring(-1, 2)
	require.ErrorIs(err, ErrOutOfBounds)
}

func TestBitString_Equal_ComparesBitsNotLayout(t *testing.T) {
	a := FromBytes([]byte{0b00111100})
	b, err := a.Substring(2, 4)
	require.NoError(t, err)
	c := build(t, func(b *Builder) error { return b.WriteUint(0xF, 4) })
	require.True(t, b.Equal(c))
	require.False(t, a.Equal(c))
}

func TestBitString_PaddedBytes_AppendsCompletionTag(t *testing.T) {
	s := build(t, func(b *Builder) error { return b.WriteUint(0b101, 3) })
	require.Equal(t, []byte{0b10110000}, s.PaddedBytes())

	aligned := FromBytes([]byte{1, 2})
	require.Equal(t, []byte{1, 2}, aligned.PaddedBytes())
}

func TestBitString_Buffer_RequiresAlignment(t *testing.T) {
	s := FromBytes([]byte{0x12, 0x34, 0x56})
	sub, err := s.Substring(4, 16)
	require.NoError(t, err)
	buf, err := sub.Buffer()
	require.NoError(t, err)
	require.Equal(t, []byte{0x23, 0x45}, buf)

	odd, err := s.Substring(0, 5)
	require.NoError(t, err)
	_, err = odd.Buffer()
	require.ErrorIs(t, err, ErrInvalidLength)
}

func TestConcat_JoinsBits(t *testing.T) {
	a := build(t, func(b *Builder) error { return b.WriteUint(0b1, 1) })
	b := build(t, func(b *Builder) error { return b.WriteUint(0b011, 3) })
	require.Equal(t, "B", Concat(a, b).String())
	require.Equal(t, 0, Concat(Empty, Empty).Len())
}

func TestBuilder_WriteUint_RangeChecks(t *testing.T) {
	require := require.New(t)
	b := NewBuilder(1023)
	require.NoError(b.WriteUint(0, 0))
	require.ErrorIs(b.WriteUint(1, 0), ErrOutOfRange)
	require.NoError(b.WriteUint(255, 8))
	require.ErrorIs(b.WriteUint(256, 8), ErrOutOfRange)
	require.NoError(b.WriteUint(math.MaxUint64, 64))
	require.ErrorIs(b.WriteUint(0, 65), ErrInvalidLength)
	require.Equal(72, b.Len())
}

func TestBuilder_WriteInt_RangeChecks(t *testing.T) {
	require := require.New(t)
	b := NewBuilder(1023)
	require.NoError(b.WriteInt(-1, 1))
	require.NoError(b.WriteInt(0, 1))
	require.ErrorIs(b.WriteInt(1, 1), ErrOutOfRange)
	require.NoError(b.WriteInt(-128, 8))
	require.NoError(b.WriteInt(127, 8))
	require.ErrorIs(b.WriteInt(128, 8), ErrOutOfRange)
	require.ErrorIs(b.WriteInt(-129, 8), ErrOutOfRange)
	require.ErrorIs(b.WriteInt(3, 0), ErrOutOfRange)
}

func TestBuilder_Overflow_IsReported(t *testing.T) {
	b := NewBuilder(10)
	require.NoError(t, b.WriteUint(0, 8))
	require.ErrorIs(t, b.WriteUint(0, 3), ErrOverflow)
	require.Equal(t, 8, b.Len())
	require.Equal(t, 2, b.Available())
}

func TestBuilderReader_IntegersRoundTrip(t *testing.T) {
	require := require.New(t)
	b := NewBuilder(1023)
	require.NoError(b.WriteBit(true))
	require.NoError(b.WriteUint(0x1234, 16))
	require.NoError(b.WriteInt(-5, 7))
	require.NoError(b.WriteInt(math.MinInt64, 64))
	require.NoError(b.WriteBigInt(big.NewInt(-300), 12))
	require.NoError(b.WriteBigUint(big.NewInt(300), 12))
	require.NoError(b.WriteUint256(uint256.NewInt(77), 256))

	r := NewReader(b.BitString())
	bit, err := r.LoadBit()
	require.NoError(err)
	require.True(bit)

	peek, err := r.PreloadUint(16)
	require.NoError(err)
	u, err := r.LoadUint(16)
	require.NoError(err)
	require.Equal(peek, u)
	require.EqualValues(0x1234, u)

	i, err := r.LoadInt(7)
	require.NoError(err)
	require.EqualValues(-5, i)

	i, err = r.LoadInt(64)
	require.NoError(err)
	require.EqualValues(int64(math.MinInt64), i)

	bi, err := r.LoadBigInt(12)
	require.NoError(err)
	require.Equal(int64(-300), bi.Int64())

	bu, err := r.LoadBigUint(12)
	require.NoError(err)
	require.Equal(int64(300), bu.Int64())

	word, err := r.LoadUint256(256)
	require.NoError(err)
	require.Equal(uint64(77), word.Uint64())

	require.Equal(0, r.Remaining())
	_, err = r.LoadBit()
	require.ErrorIs(err, ErrOutOfBounds)
}

func TestBuilderReader_VarIntegersRoundTrip(t *testing.T) {
	require := require.New(t)
	values := []int64{0, 1, -1, 127, 128, -129, 1 << 40, -(1 << 40)}
	for _, v := range values {
		b := NewBuilder(1023)
		require.NoError(b.WriteVarInt(big.NewInt(v), 5))
		got, err := NewReader(b.BitString()).LoadVarInt(5)
		require.NoError(err)
		require.Equal(v, got.Int64())

		if v < 0 {
			require.ErrorIs(b.WriteVarUint(big.NewInt(v), 5), ErrOutOfRange)
			continue
		}
		b = NewBuilder(1023)
		require.NoError(b.WriteVarUint(big.NewInt(v), 5))
		gotU, err := NewReader(b.BitString()).LoadVarUint(5)
		require.NoError(err)
		require.Equal(v, gotU.Int64())
	}
}

func TestBuilder_WriteCoins_UsesByteLengthPrefix(t *testing.T) {
	require := require.New(t)
	b := NewBuilder(1023)
	require.NoError(b.WriteCoins(big.NewInt(0)))
	require.Equal(4, b.Len())

	b = NewBuilder(1023)
	require.NoError(b.WriteCoins(big.NewInt(1_000_000_000)))
	require.Equal(4+4*8, b.Len())
	got, err := NewReader(b.BitString()).LoadCoins()
	require.NoError(err)
	require.Equal(int64(1_000_000_000), got.Int64())

	tooLarge := new(big.Int).Lsh(big.NewInt(1), 15*8)
	require.ErrorIs(NewBuilder(1023).WriteCoins(tooLarge), ErrOutOfRange)
}

func TestReader_LoadPaddedBits_StripsCompletionTag(t *testing.T) {
	require := require.New(t)
	r := NewReader(FromBytes([]byte{0b10110000, 0xFF}))
	bits, err := r.LoadPaddedBits(8)
	require.NoError(err)
	require.Equal(3, bits.Len())
	require.Equal(8, r.Offset())

	_, err = NewReader(FromBytes([]byte{0})).LoadPaddedBits(8)
	require.ErrorIs(err, ErrInvalidLength)
	_, err = NewReader(FromBytes([]byte{0})).LoadPaddedBits(5)
	require.ErrorIs(err, ErrInvalidLength)
}

func TestReader_FailedVarLoad_KeepsPosition(t *testing.T) {
	b := NewBuilder(16)
	require.NoError(t, b.WriteUint(15, 4))
	r := NewReader(b.BitString())
	_, err := r.LoadVarUint(4)
	require.ErrorIs(t, err, ErrOutOfBounds)
	require.Equal(t, 0, r.Offset())
}

func TestReader_CloneAndReset_AreIndependent(t *testing.T) {
	require := require.New(t)
	r := NewReader(FromBytes([]byte{0xF0}))
	require.NoError(r.Skip(4))
	clone := r.Clone()
	v, err := clone.LoadUint(4)
	require.NoError(err)
	require.Zero(v)
	require.Equal(4, r.Offset())
	r.Reset()
	require.Equal(8, r.Remaining())
	require.ErrorIs(r.Skip(9), ErrOutOfBounds)
}

func TestBuilderReader_Uint16RoundTrip(t *testing.T) {
	b := NewBuilder(16)
	require.NoError(t, b.WriteUint(169, 16))
	got, err := NewReader(b.BitString()).LoadUint(16)
	require.NoError(t, err)
	require.EqualValues(t, 169, got)
}
