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

// Slice reads the data bits and references of a cell sequentially.
type Slice struct {
	reader  *bits.Reader
	refs    []*Cell
	nextRef int
}

func newSlice(c *Cell) *Slice {
	return &Slice{reader: bits.NewReader(c.bits), refs: c.refs}
}

func (s *Slice) RemainingBits() int {
	return s.reader.Remaining()
}

func (s *Slice) RemainingRefs() int {
	return len(s.refs) - s.nextRef
}

func (s *Slice) Offset() int {
	return s.reader.Offset()
}

// Clone creates an independent slice at the same position.
func (s *Slice) Clone() *Slice {
	return &Slice{reader: s.reader.Clone(), refs: s.refs, nextRef: s.nextRef}
}

func (s *Slice) Skip(n int) error {
	return s.reader.Skip(n)
}

func (s *Slice) LoadBit() (bool, error) {
	return s.reader.LoadBit()
}

func (s *Slice) PreloadBit() (bool, error) {
	return s.reader.PreloadBit()
}

func (s *Slice) LoadBits(n int) (bits.BitString, error) {
	return s.reader.LoadBits(n)
}

func (s *Slice) PreloadBits(n int) (bits.BitString, error) {
	return s.reader.PreloadBits(n)
}

func (s *Slice) LoadBuffer(bytes int) ([]byte, error) {
	return s.reader.LoadBuffer(bytes)
}

func (s *Slice) PreloadBuffer(bytes int) ([]byte, error) {
	return s.reader.PreloadBuffer(bytes)
}

func (s *Slice) LoadUint(width int) (uint64, error) {
	return s.reader.LoadUint(width)
}

func (s *Slice) PreloadUint(width int) (uint64, error) {
	return s.reader.PreloadUint(width)
}

func (s *Slice) LoadInt(width int) (int64, error) {
	return s.reader.LoadInt(width)
}

func (s *Slice) PreloadInt(width int) (int64, error) {
	return s.reader.PreloadInt(width)
}

func (s *Slice) LoadBigUint(width int) (*big.Int, error) {
	return s.reader.LoadBigUint(width)
}

func (s *Slice) PreloadBigUint(width int) (*big.Int, error) {
	return s.reader.PreloadBigUint(width)
}

func (s *Slice) LoadBigInt(width int) (*big.Int, error) {
	return s.reader.LoadBigInt(width)
}

func (s *Slice) PreloadBigInt(width int) (*big.Int, error) {
	return s.reader.PreloadBigInt(width)
}

func (s *Slice) LoadUint256(width int) (*uint256.Int, error) {
	return s.reader.LoadUint256(width)
}

func (s *Slice) LoadVarUint(lenBits int) (*big.Int, error) {
	return s.reader.LoadVarUint(lenBits)
}

func (s *Slice) LoadVarInt(lenBits int) (*big.Int, error) {
	return s.reader.LoadVarInt(lenBits)
}

func (s *Slice) LoadCoins() (*big.Int, error) {
	return s.reader.LoadCoins()
}

// LoadAddress reads an internal address. The empty address yields nil.
func (s *Slice) LoadAddress() (*address.Address, error) {
	return address.Read(s.reader)
}

// PreloadRef returns the next reference without consuming it.
func (s *Slice) PreloadRef() (*Cell, error) {
	if s.RemainingRefs() == 0 {
		return nil, fmt.Errorf("%w: no references left", bits.ErrOutOfBounds)
	}
	return s.refs[s.nextRef], nil
}

func (s *Slice) LoadRef() (*Cell, error) {
	res, err := s.PreloadRef()
	if err == nil {
		s.nextRef++
	}
	return res, err
}

// LoadMaybeRef reads a presence bit and, if set, a reference. An absent
// reference yields nil.
func (s *Slice) LoadMaybeRef() (*Cell, error) {
	present, err := s.PreloadBit()
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, s.Skip(1)
	}
	if s.RemainingRefs() == 0 {
		return nil, fmt.Errorf("%w: no references left", bits.ErrOutOfBounds)
	}
	_ = s.Skip(1)
	return s.LoadRef()
}

// EndParse checks that all bits and references have been consumed.
func (s *Slice) EndParse() error {
	if s.RemainingBits() != 0 || s.RemainingRefs() != 0 {
		return fmt.Errorf("%w: %d bits and %d references left", ErrTrailingData, s.RemainingBits(), s.RemainingRefs())
	}
	return nil
}

// ToCell creates an ordinary cell from the remaining bits and references.
func (s *Slice) ToCell() (*Cell, error) {
	b := NewBuilder()
	if err := b.StoreSlice(s); err != nil {
		return nil, err
	}
	return b.EndCell()
}
