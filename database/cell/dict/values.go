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
	"math/big"

	"github.com/0xsoniclabs/cellar/database/cell"
	"github.com/0xsoniclabs/cellar/database/cell/address"
	"github.com/0xsoniclabs/cellar/database/cell/bits"
	"github.com/holiman/uint256"
	"golang.org/x/exp/constraints"
)

type valueCodec[V any] struct {
	serialize func(value V, b *cell.Builder) error
	parse     func(s *cell.Slice) (V, error)
}

func (c valueCodec[V]) Serialize(value V, b *cell.Builder) error {
	return c.serialize(value, b)
}

func (c valueCodec[V]) Parse(s *cell.Slice) (V, error) {
	return c.parse(s)
}

func IntValues[T constraints.Signed](width int) ValueCodec[T] {
	return valueCodec[T]{
		serialize: func(v T, b *cell.Builder) error { return b.StoreInt(int64(v), width) },
		parse: func(s *cell.Slice) (T, error) {
			v, err := s.LoadInt(width)
			if err == nil && int64(T(v)) != v {
				err = fmt.Errorf("%w: %d overflows %T", bits.ErrOutOfRange, v, T(0))
			}
			return T(v), err
		},
	}
}

func UintValues[T constraints.Unsigned](width int) ValueCodec[T] {
	return valueCodec[T]{
		serialize: func(v T, b *cell.Builder) error { return b.StoreUint(uint64(v), width) },
		parse: func(s *cell.Slice) (T, error) {
			v, err := s.LoadUint(width)
			if err == nil && uint64(T(v)) != v {
				err = fmt.Errorf("%w: %d overflows %T", bits.ErrOutOfRange, v, T(0))
			}
			return T(v), err
		},
	}
}

func BigIntValues(width int) ValueCodec[*big.Int] {
	return valueCodec[*big.Int]{
		serialize: func(v *big.Int, b *cell.Builder) error { return b.StoreBigInt(v, width) },
		parse:     func(s *cell.Slice) (*big.Int, error) { return s.LoadBigInt(width) },
	}
}

func BigUintValues(width int) ValueCodec[*big.Int] {
	return valueCodec[*big.Int]{
		serialize: func(v *big.Int, b *cell.Builder) error { return b.StoreBigUint(v, width) },
		parse:     func(s *cell.Slice) (*big.Int, error) { return s.LoadBigUint(width) },
	}
}

func BigVarIntValues(lenBits int) ValueCodec[*big.Int] {
	return valueCodec[*big.Int]{
		serialize: func(v *big.Int, b *cell.Builder) error { return b.StoreVarInt(v, lenBits) },
		parse:     func(s *cell.Slice) (*big.Int, error) { return s.LoadVarInt(lenBits) },
	}
}

func BigVarUintValues(lenBits int) ValueCodec[*big.Int] {
	return valueCodec[*big.Int]{
		serialize: func(v *big.Int, b *cell.Builder) error { return b.StoreVarUint(v, lenBits) },
		parse:     func(s *cell.Slice) (*big.Int, error) { return s.LoadVarUint(lenBits) },
	}
}

// CoinsValues stores amounts as variable length integers with a 4-bit
// length prefix.
func CoinsValues() ValueCodec[*big.Int] {
	return BigVarUintValues(4)
}

func Uint256Values() ValueCodec[*uint256.Int] {
	return valueCodec[*uint256.Int]{
		serialize: func(v *uint256.Int, b *cell.Builder) error { return b.StoreUint256(v, 256) },
		parse:     func(s *cell.Slice) (*uint256.Int, error) { return s.LoadUint256(256) },
	}
}

func BoolValues() ValueCodec[bool] {
	return valueCodec[bool]{
		serialize: func(v bool, b *cell.Builder) error { return b.StoreBit(v) },
		parse:     func(s *cell.Slice) (bool, error) { return s.LoadBit() },
	}
}

func AddressValues() ValueCodec[*address.Address] {
	return valueCodec[*address.Address]{
		serialize: func(v *address.Address, b *cell.Builder) error { return b.StoreAddress(v) },
		parse:     func(s *cell.Slice) (*address.Address, error) { return s.LoadAddress() },
	}
}

// CellValues stores each value as a reference.
func CellValues() ValueCodec[*cell.Cell] {
	return valueCodec[*cell.Cell]{
		serialize: func(v *cell.Cell, b *cell.Builder) error { return b.StoreRef(v) },
		parse:     func(s *cell.Slice) (*cell.Cell, error) { return s.LoadRef() },
	}
}

// RawValues stores the content of each value cell inline. Parsing takes
// everything left in the slice.
func RawValues() ValueCodec[*cell.Cell] {
	return valueCodec[*cell.Cell]{
		serialize: func(v *cell.Cell, b *cell.Builder) error { return b.StoreSlice(v.BeginParse()) },
		parse: func(s *cell.Slice) (*cell.Cell, error) {
			res, err := s.ToCell()
			if err != nil {
				return nil, err
			}
			// consume the remainder
			if _, err := s.LoadBits(s.RemainingBits()); err != nil {
				return nil, err
			}
			for s.RemainingRefs() > 0 {
				if _, err := s.LoadRef(); err != nil {
					return nil, err
				}
			}
			return res, nil
		},
	}
}

func BufferValues(size int) ValueCodec[[]byte] {
	return valueCodec[[]byte]{
		serialize: func(v []byte, b *cell.Builder) error {
			if len(v) != size {
				return fmt.Errorf("%w: value of %d bytes, want %d", bits.ErrInvalidLength, len(v), size)
			}
			return b.StoreBuffer(v)
		},
		parse: func(s *cell.Slice) ([]byte, error) { return s.LoadBuffer(size) },
	}
}

func BitStringValues(width int) ValueCodec[bits.BitString] {
	return valueCodec[bits.BitString]{
		serialize: func(v bits.BitString, b *cell.Builder) error {
			if v.Len() != width {
				return fmt.Errorf("%w: value of %d bits, want %d", bits.ErrInvalidLength, v.Len(), width)
			}
			return b.StoreBits(v)
		},
		parse: func(s *cell.Slice) (bits.BitString, error) { return s.LoadBits(width) },
	}
}

// DictionaryValues nests dictionaries, each stored as an optional
// reference.
func DictionaryValues[K, V any](keys KeyCodec[K], values ValueCodec[V]) ValueCodec[*Dictionary[K, V]] {
	return valueCodec[*Dictionary[K, V]]{
		serialize: func(v *Dictionary[K, V], b *cell.Builder) error { return v.Store(b) },
		parse: func(s *cell.Slice) (*Dictionary[K, V], error) {
			return Load(keys, values, s)
		},
	}
}
