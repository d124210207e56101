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
	"math/big"

	"github.com/0xsoniclabs/cellar/database/cell/address"
	"github.com/0xsoniclabs/cellar/database/cell/bits"
	"github.com/holiman/uint256"
)

// Builder assembles the data and references of a new cell. Writes exceeding
// MaxBits or MaxRefs fail and leave the builder unchanged.
type Builder struct {
	bits *bits.Builder
	refs []*Cell
}

func NewBuilder() *Builder {
	return &Builder{bits: bits.NewBuilder(MaxBits)}
}

func (b *Builder) BitsLen() int {
	return b.bits.Len()
}

func (b *Builder) RefsLen() int {
	return len(b.refs)
}

func (b *Builder) AvailableBits() int {
	return b.bits.Available()
}

func (b *Builder) AvailableRefs() int {
	return MaxRefs - len(b.refs)
}

func (b *Builder) Bits() bits.BitString {
	return b.bits.BitString()
}

func (b *Builder) StoreBit(value bool) error {
	return b.bits.WriteBit(value)
}

func (b *Builder) StoreBits(value bits.BitString) error {
	return b.bits.WriteBits(value)
}

func (b *Builder) StoreBuffer(value []byte) error {
	return b.bits.WriteBuffer(value)
}

func (b *Builder) StoreUint(value uint64, width int) error {
	return b.bits.WriteUint(value, width)
}

func (b *Builder) StoreInt(value int64, width int) error {
	return b.bits.WriteInt(value, width)
}

func (b *Builder) StoreBigUint(value *big.Int, width int) error {
	return b.bits.WriteBigUint(value, width)
}

func (b *Builder) StoreBigInt(value *big.Int, width int) error {
	return b.bits.WriteBigInt(value, width)
}

func (b *Builder) StoreUint256(value *uint256.Int, width int) error {
	return b.bits.WriteUint256(value, width)
}

func (b *Builder) StoreVarUint(value *big.Int, lenBits int) error {
	return b.bits.WriteVarUint(value, lenBits)
}

func (b *Builder) StoreVarInt(value *big.Int, lenBits int) error {
	return b.bits.WriteVarInt(value, lenBits)
}

func (b *Builder) StoreCoins(amount *big.Int) error {
	return b.bits.WriteCoins(amount)
}

// StoreAddress writes an internal address, or the empty address if addr is
// nil.
func (b *Builder) StoreAddress(addr *address.Address) error {
	return address.Write(b.bits, addr)
}

// StoreRef appends a reference to the given cell.
func (b *Builder) StoreRef(c *Cell) error {
	if len(b.refs) >= MaxRefs {
		return fmt.Errorf("%w: more than %d references", ErrInvalidRefCount, MaxRefs)
	}
	b.refs = append(b.refs, c)
	return nil
}

// StoreMaybeRef writes a presence bit followed by a reference if c is not
// nil.
func (b *Builder) StoreMaybeRef(c *Cell) error {
	if c == nil {
		return b.StoreBit(false)
	}
	if len(b.refs) >= MaxRefs {
		return fmt.Errorf("%w: more than %d references", ErrInvalidRefCount, MaxRefs)
	}
	if err := b.StoreBit(true); err != nil {
		return err
	}
	return b.StoreRef(c)
}

// StoreSlice copies the remaining bits and references of s. The slice is
// not advanced.
func (b *Builder) StoreSlice(s *Slice) error {
	if s.RemainingRefs() > b.AvailableRefs() {
		return fmt.Errorf("%w: slice has %d references, %d available", ErrInvalidRefCount, s.RemainingRefs(), b.AvailableRefs())
	}
	rest, err := s.reader.PreloadBits(s.RemainingBits())
	if err != nil {
		return err
	}
	if err := b.StoreBits(rest); err != nil {
		return err
	}
	b.refs = append(b.refs, s.refs[s.nextRef:]...)
	return nil
}

// StoreBuilder copies the bits and references of another builder.
func (b *Builder) StoreBuilder(other *Builder) error {
	if other.RefsLen() > b.AvailableRefs() {
		return fmt.Errorf("%w: builder has %d references, %d available", ErrInvalidRefCount, other.RefsLen(), b.AvailableRefs())
	}
	if err := b.StoreBits(other.Bits()); err != nil {
		return err
	}
	b.refs = append(b.refs, other.refs...)
	return nil
}

// EndCell creates an ordinary cell from the builder's content.
func (b *Builder) EndCell() (*Cell, error) {
	return New(b.bits.BitString(), b.refs, false)
}

// EndExoticCell creates an exotic cell from the builder's content, the first
// data byte being the exotic type tag.
func (b *Builder) EndExoticCell() (*Cell, error) {
	return New(b.bits.BitString(), b.refs, true)
}
