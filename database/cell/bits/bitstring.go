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
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrOutOfBounds   = errors.New("bits: index out of bounds")
	ErrOutOfRange    = errors.New("bits: value out of range")
	ErrOverflow      = errors.New("bits: builder overflow")
	ErrInvalidLength = errors.New("bits: invalid bit length")
)

// BitString is an immutable view on a sequence of bits stored in a byte
// buffer. Bits are addressed MSB-first, i.e. bit 0 is the most significant
// bit of the first byte. Substrings share the underlying buffer.
type BitString struct {
	data   []byte
	offset int
	length int
}

// Empty is the bit string of length zero.
var Empty = BitString{}

// New creates a view on length bits of data starting at the given bit offset.
// The buffer is not copied and must not be modified afterwards.
func New(data []byte, offset, length int) (BitString, error) {
	if offset < 0 || length < 0 || offset+length > len(data)*8 {
		return BitString{}, fmt.Errorf("%w: %d bits at offset %d in %d bytes", ErrOutOfBounds, length, offset, len(data))
	}
	return BitString{data: data, offset: offset, length: length}, nil
}

// FromBytes creates a bit string covering all bits of the given bytes.
func FromBytes(data []byte) BitString {
	return BitString{data: data, length: len(data) * 8}
}

// Len returns the number of bits in the string.
func (s BitString) Len() int {
	return s.length
}

// At returns the bit at the given index. Like slice indexing, it panics if
// the index is out of range.
func (s BitString) At(index int) bool {
	if index < 0 || index >= s.length {
		panic(fmt.Sprintf("bits: index %d out of range [0,%d)", index, s.length))
	}
	pos := s.offset + index
	return s.data[pos/8]&(1<<(7-pos%8)) != 0
}

// Substring returns a view on length bits starting at offset. No data is
// copied.
func (s BitString) Substring(offset, length int) (BitString, error) {
	if offset < 0 || length < 0 || offset+length > s.length {
		return BitString{}, fmt.Errorf("%w: substring [%d,%d) of %d bits", ErrOutOfBounds, offset, offset+length, s.length)
	}
	return BitString{data: s.data, offset: s.offset + offset, length: length}, nil
}

// Buffer returns a copy of the bits as bytes. The length of the string must
// be a multiple of 8.
func (s BitString) Buffer() ([]byte, error) {
	if s.length%8 != 0 {
		return nil, fmt.Errorf("%w: %d bits are not byte aligned", ErrInvalidLength, s.length)
	}
	if s.offset%8 == 0 {
		start := s.offset / 8
		return append([]byte(nil), s.data[start:start+s.length/8]...), nil
	}
	res := make([]byte, s.length/8)
	for i := 0; i < s.length; i++ {
		if s.At(i) {
			res[i/8] |= 1 << (7 - i%8)
		}
	}
	return res, nil
}

// PaddedBytes returns the bits rounded up to full bytes. If the length is not
// a multiple of 8, a single 1 bit followed by 0 bits is appended to mark the
// end of the data.
func (s BitString) PaddedBytes() []byte {
	res := make([]byte, (s.length+7)/8)
	for i := 0; i < s.length; i++ {
		if s.At(i) {
			res[i/8] |= 1 << (7 - i%8)
		}
	}
	if s.length%8 != 0 {
		res[s.length/8] |= 1 << (7 - s.length%8)
	}
	return res
}

// Equal reports whether both strings contain the same bits.
func (s BitString) Equal(other BitString) bool {
	if s.length != other.length {
		return false
	}
	for i := 0; i < s.length; i++ {
		if s.At(i) != other.At(i) {
			return false
		}
	}
	return true
}

// String renders the canonical hex form of the bits. Strings that do not end
// on a nibble boundary are padded with a 1 bit and zeros and get a trailing
// underscore.
func (s BitString) String() string {
	padded := s.PaddedBytes()
	if s.length%4 == 0 {
		res := strings.ToUpper(hex.EncodeToString(padded))
		if s.length%8 == 0 {
			return res
		}
		return res[:len(res)-1]
	}
	res := strings.ToUpper(hex.EncodeToString(padded))
	if s.length%8 <= 4 {
		return res[:len(res)-1] + "_"
	}
	return res + "_"
}

// Concat returns a new bit string holding the bits of a followed by the bits
// of b.
func Concat(a, b BitString) BitString {
	builder := NewBuilder(a.length + b.length)
	// capacity is exact, writes cannot fail
	_ = builder.WriteBits(a)
	_ = builder.WriteBits(b)
	return builder.BitString()
}
