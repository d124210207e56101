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

	"github.com/0xsoniclabs/cellar/database/cell/address"
	"github.com/0xsoniclabs/cellar/database/cell/bits"
	"github.com/holiman/uint256"
	"golang.org/x/exp/constraints"
)

// keyCodec serializes keys by writing them into a bit string of the key
// width and interpreting the result as an unsigned integer.
type keyCodec[K any] struct {
	width int
	write func(b *bits.Builder, key K) error
	read  func(r *bits.Reader) (K, error)
}

func (c keyCodec[K]) Bits() int {
	return c.width
}

func (c keyCodec[K]) Serialize(key K) (*big.Int, error) {
	if isNilKey(key) {
		return nil, ErrNilKey
	}
	b := bits.NewBuilder(c.width)
	if err := c.write(b, key); err != nil {
		return nil, err
	}
	if b.Len() != c.width {
		return nil, fmt.Errorf("%w: key has %d bits, want %d", bits.ErrInvalidLength, b.Len(), c.width)
	}
	return bits.NewReader(b.BitString()).LoadBigUint(c.width)
}

func (c keyCodec[K]) Parse(src *big.Int) (K, error) {
	b := bits.NewBuilder(c.width)
	if err := b.WriteBigUint(src, c.width); err != nil {
		var zero K
		return zero, err
	}
	return c.read(bits.NewReader(b.BitString()))
}

// IntKeys encodes signed integers in two's complement of the given width.
func IntKeys[T constraints.Signed](width int) KeyCodec[T] {
	return keyCodec[T]{
		width: width,
		write: func(b *bits.Builder, key T) error {
			return b.WriteInt(int64(key), width)
		},
		read: func(r *bits.Reader) (T, error) {
			v, err := r.LoadInt(width)
			if err != nil {
				return 0, err
			}
			if int64(T(v)) != v {
				return 0, fmt.Errorf("%w: %d overflows %T", bits.ErrOutOfRange, v, T(0))
			}
			return T(v), nil
		},
	}
}

// UintKeys encodes unsigned integers of the given width.
func UintKeys[T constraints.Unsigned](width int) KeyCodec[T] {
	return keyCodec[T]{
		width: width,
		write: func(b *bits.Builder, key T) error {
			return b.WriteUint(uint64(key), width)
		},
		read: func(r *bits.Reader) (T, error) {
			v, err := r.LoadUint(width)
			if err != nil {
				return 0, err
			}
			if uint64(T(v)) != v {
				return 0, fmt.Errorf("%w: %d overflows %T", bits.ErrOutOfRange, v, T(0))
			}
			return T(v), nil
		},
	}
}

func BigIntKeys(width int) KeyCodec[*big.Int] {
	return keyCodec[*big.Int]{
		width: width,
		write: func(b *bits.Builder, key *big.Int) error { return b.WriteBigInt(key, width) },
		read:  func(r *bits.Reader) (*big.Int, error) { return r.LoadBigInt(width) },
	}
}

func BigUintKeys(width int) KeyCodec[*big.Int] {
	return keyCodec[*big.Int]{
		width: width,
		write: func(b *bits.Builder, key *big.Int) error { return b.WriteBigUint(key, width) },
		read:  func(r *bits.Reader) (*big.Int, error) { return r.LoadBigUint(width) },
	}
}

// Uint256Keys encodes 256-bit words, e.g. account hashes.
func Uint256Keys() KeyCodec[*uint256.Int] {
	return keyCodec[*uint256.Int]{
		width: 256,
		write: func(b *bits.Builder, key *uint256.Int) error { return b.WriteUint256(key, 256) },
		read:  func(r *bits.Reader) (*uint256.Int, error) { return r.LoadUint256(256) },
	}
}

// AddressKeys encodes internal addresses in their 267-bit cell form.
func AddressKeys() KeyCodec[*address.Address] {
	return keyCodec[*address.Address]{
		width: address.Bits,
		write: address.Write,
		read: func(r *bits.Reader) (*address.Address, error) {
			res, err := address.Read(r)
			if err == nil && res == nil {
				err = fmt.Errorf("%w: empty address key", address.ErrInvalidAddress)
			}
			return res, err
		},
	}
}

// BufferKeys encodes byte strings of a fixed length.
func BufferKeys(size int) KeyCodec[[]byte] {
	return keyCodec[[]byte]{
		width: size * 8,
		write: func(b *bits.Builder, key []byte) error {
			if len(key) != size {
				return fmt.Errorf("%w: key of %d bytes, want %d", bits.ErrInvalidLength, len(key), size)
			}
			return b.WriteBuffer(key)
		},
		read: func(r *bits.Reader) ([]byte, error) { return r.LoadBuffer(size) },
	}
}

// BitStringKeys encodes bit strings of a fixed length.
func BitStringKeys(width int) KeyCodec[bits.BitString] {
	return keyCodec[bits.BitString]{
		width: width,
		write: func(b *bits.Builder, key bits.BitString) error {
			if key.Len() != width {
				return fmt.Errorf("%w: key of %d bits, want %d", bits.ErrInvalidLength, key.Len(), width)
			}
			return b.WriteBits(key)
		},
		read: func(r *bits.Reader) (bits.BitString, error) { return r.LoadBits(width) },
	}
}
