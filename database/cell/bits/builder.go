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
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// Builder accumulates bits sequentially up to a fixed capacity. All numeric
// writes check that the value fits into the requested width.
type Builder struct {
	data     []byte
	length   int
	capacity int
}

// NewBuilder creates a builder accepting at most capacity bits.
func NewBuilder(capacity int) *Builder {
	return &Builder{
		data:     make([]byte, 0, (capacity+7)/8),
		capacity: capacity,
	}
}

// Len returns the number of bits written so far.
func (b *Builder) Len() int {
	return b.length
}

// Available returns the number of bits that can still be written.
func (b *Builder) Available() int {
	return b.capacity - b.length
}

// BitString returns the bits written so far. The result does not share
// memory with the builder.
func (b *Builder) BitString() BitString {
	data := append([]byte(nil), b.data...)
	return BitString{data: data, length: b.length}
}

// Bytes returns a copy of the written bits. The number of written bits must
// be a multiple of 8.
func (b *Builder) Bytes() ([]byte, error) {
	if b.length%8 != 0 {
		return nil, fmt.Errorf("%w: %d bits are not byte aligned", ErrInvalidLength, b.length)
	}
	return append([]byte(nil), b.data...), nil
}

func (b *Builder) reserve(n int) error {
	if b.length+n > b.capacity {
		return fmt.Errorf("%w: writing %d bits with %d bits left", ErrOverflow, n, b.capacity-b.length)
	}
	return nil
}

// appendBit writes a single bit, capacity must have been checked.
func (b *Builder) appendBit(value bool) {
	if b.length%8 == 0 {
		b.data = append(b.data, 0)
	}
	if value {
		b.data[b.length/8] |= 1 << (7 - b.length%8)
	}
	b.length++
}

// WriteBit appends a single bit.
func (b *Builder) WriteBit(value bool) error {
	if err := b.reserve(1); err != nil {
		return err
	}
	b.appendBit(value)
	return nil
}

// WriteBits appends all bits of the given string.
func (b *Builder) WriteBits(src BitString) error {
	if err := b.reserve(src.Len()); err != nil {
		return err
	}
	for i := 0; i < src.Len(); i++ {
		b.appendBit(src.At(i))
	}
	return nil
}

// WriteBuffer appends all bits of the given bytes.
func (b *Builder) WriteBuffer(src []byte) error {
	if err := b.reserve(len(src) * 8); err != nil {
		return err
	}
	if b.length%8 == 0 {
		b.data = append(b.data, src...)
		b.length += len(src) * 8
		return nil
	}
	for _, cur := range src {
		b.writeRaw(uint64(cur), 8)
	}
	return nil
}

// writeRaw appends the lowest width bits of value, MSB first.
func (b *Builder) writeRaw(value uint64, width int) {
	for i := width - 1; i >= 0; i-- {
		b.appendBit((value>>uint(i))&1 != 0)
	}
}

// WriteUint appends value as an unsigned integer of the given width.
func (b *Builder) WriteUint(value uint64, width int) error {
	if width < 0 || width > 64 {
		return fmt.Errorf("%w: %d bits for a 64-bit integer", ErrInvalidLength, width)
	}
	if width < 64 && value>>uint(width) != 0 {
		return fmt.Errorf("%w: %d does not fit into %d bits", ErrOutOfRange, value, width)
	}
	if err := b.reserve(width); err != nil {
		return err
	}
	b.writeRaw(value, width)
	return nil
}

// WriteInt appends value as a two's complement integer of the given width.
// A width of 1 only admits -1 and 0, a width of 0 only admits 0.
func (b *Builder) WriteInt(value int64, width int) error {
	if width < 0 || width > 64 {
		return fmt.Errorf("%w: %d bits for a 64-bit integer", ErrInvalidLength, width)
	}
	switch width {
	case 0:
		if value != 0 {
			return fmt.Errorf("%w: %d is not zero for 0 bits", ErrOutOfRange, value)
		}
		return nil
	case 1:
		if value != 0 && value != -1 {
			return fmt.Errorf("%w: %d is not 0 or -1 for 1 bit", ErrOutOfRange, value)
		}
		return b.WriteBit(value == -1)
	}
	if width < 64 {
		limit := int64(1) << uint(width-1)
		if value < -limit || value >= limit {
			return fmt.Errorf("%w: %d does not fit into %d bits", ErrOutOfRange, value, width)
		}
	}
	if err := b.reserve(width); err != nil {
		return err
	}
	b.writeRaw(uint64(value), width)
	return nil
}

// WriteBigUint appends a non-negative big integer of the given width.
func (b *Builder) WriteBigUint(value *big.Int, width int) error {
	if width < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLength, width)
	}
	if value.Sign() < 0 || value.BitLen() > width {
		return fmt.Errorf("%w: %s does not fit into %d unsigned bits", ErrOutOfRange, value, width)
	}
	if err := b.reserve(width); err != nil {
		return err
	}
	for i := width - 1; i >= 0; i-- {
		b.appendBit(value.Bit(i) != 0)
	}
	return nil
}

// WriteBigInt appends a big integer in two's complement of the given width.
func (b *Builder) WriteBigInt(value *big.Int, width int) error {
	if width < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLength, width)
	}
	switch width {
	case 0:
		if value.Sign() != 0 {
			return fmt.Errorf("%w: %s is not zero for 0 bits", ErrOutOfRange, value)
		}
		return nil
	case 1:
		if value.Sign() != 0 && value.Cmp(big.NewInt(-1)) != 0 {
			return fmt.Errorf("%w: %s is not 0 or -1 for 1 bit", ErrOutOfRange, value)
		}
		return b.WriteBit(value.Sign() != 0)
	}
	limit := new(big.Int).Lsh(big.NewInt(1), uint(width-1))
	if value.Cmp(new(big.Int).Neg(limit)) < 0 || value.Cmp(limit) >= 0 {
		return fmt.Errorf("%w: %s does not fit into %d signed bits", ErrOutOfRange, value, width)
	}
	unsigned := value
	if value.Sign() < 0 {
		unsigned = new(big.Int).Add(new(big.Int).Lsh(limit, 1), value)
	}
	return b.WriteBigUint(unsigned, width)
}

// WriteUint256 appends a 256-bit unsigned integer using the given width.
func (b *Builder) WriteUint256(value *uint256.Int, width int) error {
	if width < 0 || width > 256 {
		return fmt.Errorf("%w: %d bits for a 256-bit integer", ErrInvalidLength, width)
	}
	if value.BitLen() > width {
		return fmt.Errorf("%w: %s does not fit into %d bits", ErrOutOfRange, value.Dec(), width)
	}
	if err := b.reserve(width); err != nil {
		return err
	}
	words := value.Bytes32()
	for i := 256 - width; i < 256; i++ {
		b.appendBit(words[i/8]&(1<<(7-i%8)) != 0)
	}
	return nil
}

// WriteVarUint appends a length prefix of lenBits bits holding the number of
// bytes of value, followed by value itself.
func (b *Builder) WriteVarUint(value *big.Int, lenBits int) error {
	if value.Sign() < 0 {
		return fmt.Errorf("%w: %s is negative", ErrOutOfRange, value)
	}
	if value.Sign() == 0 {
		return b.WriteUint(0, lenBits)
	}
	size := (value.BitLen() + 7) / 8
	if err := b.WriteUint(uint64(size), lenBits); err != nil {
		return err
	}
	return b.WriteBigUint(value, size*8)
}

// WriteVarInt is the signed counterpart of WriteVarUint.
func (b *Builder) WriteVarInt(value *big.Int, lenBits int) error {
	if value.Sign() == 0 {
		return b.WriteUint(0, lenBits)
	}
	abs := new(big.Int).Abs(value)
	size := (abs.BitLen() + 1 + 7) / 8 // one extra bit for the sign
	if err := b.WriteUint(uint64(size), lenBits); err != nil {
		return err
	}
	return b.WriteBigInt(value, size*8)
}

// WriteCoins appends a coin amount, a variable length unsigned integer with a
// 4-bit byte-length prefix.
func (b *Builder) WriteCoins(amount *big.Int) error {
	return b.WriteVarUint(amount, 4)
}
