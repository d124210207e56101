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

// Reader consumes a bit string sequentially. Load operations advance the
// read position, Preload operations leave it untouched. Reading past the end
// fails with ErrOutOfBounds.
type Reader struct {
	bits   BitString
	offset int
}

func NewReader(bits BitString) *Reader {
	return &Reader{bits: bits}
}

// Offset returns the number of bits consumed so far.
func (r *Reader) Offset() int {
	return r.offset
}

// Remaining returns the number of unread bits.
func (r *Reader) Remaining() int {
	return r.bits.Len() - r.offset
}

// Reset rewinds the reader to the start of the string.
func (r *Reader) Reset() {
	r.offset = 0
}

// Clone creates an independent reader at the same position.
func (r *Reader) Clone() *Reader {
	return &Reader{bits: r.bits, offset: r.offset}
}

func (r *Reader) check(n int) error {
	if n < 0 || n > r.Remaining() {
		return fmt.Errorf("%w: reading %d bits with %d bits left", ErrOutOfBounds, n, r.Remaining())
	}
	return nil
}

// Skip advances the read position by n bits.
func (r *Reader) Skip(n int) error {
	if err := r.check(n); err != nil {
		return err
	}
	r.offset += n
	return nil
}

func (r *Reader) PreloadBit() (bool, error) {
	if err := r.check(1); err != nil {
		return false, err
	}
	return r.bits.At(r.offset), nil
}

func (r *Reader) LoadBit() (bool, error) {
	res, err := r.PreloadBit()
	if err == nil {
		r.offset++
	}
	return res, err
}

func (r *Reader) PreloadBits(n int) (BitString, error) {
	if err := r.check(n); err != nil {
		return BitString{}, err
	}
	return r.bits.Substring(r.offset, n)
}

func (r *Reader) LoadBits(n int) (BitString, error) {
	res, err := r.PreloadBits(n)
	if err == nil {
		r.offset += n
	}
	return res, err
}

func (r *Reader) PreloadBuffer(bytes int) ([]byte, error) {
	bits, err := r.PreloadBits(bytes * 8)
	if err != nil {
		return nil, err
	}
	return bits.Buffer()
}

func (r *Reader) LoadBuffer(bytes int) ([]byte, error) {
	res, err := r.PreloadBuffer(bytes)
	if err == nil {
		r.offset += bytes * 8
	}
	return res, err
}

func (r *Reader) preloadRaw(width int) uint64 {
	var res uint64
	for i := 0; i < width; i++ {
		res <<= 1
		if r.bits.At(r.offset + i) {
			res |= 1
		}
	}
	return res
}

func (r *Reader) PreloadUint(width int) (uint64, error) {
	if width > 64 {
		return 0, fmt.Errorf("%w: %d bits for a 64-bit integer", ErrInvalidLength, width)
	}
	if err := r.check(width); err != nil {
		return 0, err
	}
	return r.preloadRaw(width), nil
}

func (r *Reader) LoadUint(width int) (uint64, error) {
	res, err := r.PreloadUint(width)
	if err == nil {
		r.offset += width
	}
	return res, err
}

func (r *Reader) PreloadInt(width int) (int64, error) {
	raw, err := r.PreloadUint(width)
	if err != nil || width == 0 {
		return 0, err
	}
	// sign extend
	shift := uint(64 - width)
	return int64(raw<<shift) >> shift, nil
}

func (r *Reader) LoadInt(width int) (int64, error) {
	res, err := r.PreloadInt(width)
	if err == nil {
		r.offset += width
	}
	return res, err
}

func (r *Reader) PreloadBigUint(width int) (*big.Int, error) {
	if err := r.check(width); err != nil {
		return nil, err
	}
	res := new(big.Int)
	for i := 0; i < width; i++ {
		res.Lsh(res, 1)
		if r.bits.At(r.offset + i) {
			res.SetBit(res, 0, 1)
		}
	}
	return res, nil
}

func (r *Reader) LoadBigUint(width int) (*big.Int, error) {
	res, err := r.PreloadBigUint(width)
	if err == nil {
		r.offset += width
	}
	return res, err
}

func (r *Reader) PreloadBigInt(width int) (*big.Int, error) {
	res, err := r.PreloadBigUint(width)
	if err != nil || width == 0 {
		return res, err
	}
	if res.Bit(width-1) != 0 {
		res.Sub(res, new(big.Int).Lsh(big.NewInt(1), uint(width)))
	}
	return res, nil
}

func (r *Reader) LoadBigInt(width int) (*big.Int, error) {
	res, err := r.PreloadBigInt(width)
	if err == nil {
		r.offset += width
	}
	return res, err
}

// LoadUint256 reads an unsigned integer of up to 256 bits.
func (r *Reader) LoadUint256(width int) (*uint256.Int, error) {
	if width > 256 {
		return nil, fmt.Errorf("%w: %d bits for a 256-bit integer", ErrInvalidLength, width)
	}
	value, err := r.LoadBigUint(width)
	if err != nil {
		return nil, err
	}
	res, _ := uint256.FromBig(value)
	return res, nil
}

// LoadVarUint reads a value written by Builder.WriteVarUint.
func (r *Reader) LoadVarUint(lenBits int) (*big.Int, error) {
	start := r.offset
	size, err := r.LoadUint(lenBits)
	if err != nil {
		return nil, err
	}
	res, err := r.LoadBigUint(int(size) * 8)
	if err != nil {
		r.offset = start
		return nil, err
	}
	return res, nil
}

// LoadVarInt reads a value written by Builder.WriteVarInt.
func (r *Reader) LoadVarInt(lenBits int) (*big.Int, error) {
	start := r.offset
	size, err := r.LoadUint(lenBits)
	if err != nil {
		return nil, err
	}
	res, err := r.LoadBigInt(int(size) * 8)
	if err != nil {
		r.offset = start
		return nil, err
	}
	return res, nil
}

func (r *Reader) LoadCoins() (*big.Int, error) {
	return r.LoadVarUint(4)
}

// LoadPaddedBits reads n bits, n being a multiple of 8, and strips the
// trailing completion tag, a 1 bit followed by zeros.
func (r *Reader) LoadPaddedBits(n int) (BitString, error) {
	if n%8 != 0 {
		return BitString{}, fmt.Errorf("%w: padded data of %d bits is not byte aligned", ErrInvalidLength, n)
	}
	raw, err := r.PreloadBits(n)
	if err != nil {
		return BitString{}, err
	}
	length := n - 1
	for length >= 0 && !raw.At(length) {
		length--
	}
	if length < 0 {
		return BitString{}, fmt.Errorf("%w: padded data without completion tag", ErrInvalidLength)
	}
	r.offset += n
	return raw.Substring(0, length)
}
