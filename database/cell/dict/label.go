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
	mathbits "math/bits"

	"github.com/0xsoniclabs/cellar/database/cell"
	"github.com/0xsoniclabs/cellar/database/cell/bits"
)

// Edge labels come in three encodings, picking the shortest one:
//
//	short: 0, unary length (n ones and a zero), the label bits
//	long:  10, length in lenBits(m) bits, the label bits
//	same:  11, the repeated bit, length in lenBits(m) bits
//
// where m is the number of key bits left at the edge.
type labelKind uint8

const (
	labelShort labelKind = iota
	labelLong
	labelSame
)

// lenBits is ceil(log2(m+1)), the width of a label length field.
func lenBits(remaining int) int {
	return mathbits.Len(uint(remaining))
}

func shortLabelSize(label bits.BitString) int {
	return 2 + 2*label.Len()
}

func longLabelSize(label bits.BitString, remaining int) int {
	return 2 + lenBits(remaining) + label.Len()
}

func sameLabelSize(remaining int) int {
	return 3 + lenBits(remaining)
}

// isUniform reports whether all bits of the label are equal.
func isUniform(label bits.BitString) bool {
	for i := 1; i < label.Len(); i++ {
		if label.At(i) != label.At(0) {
			return false
		}
	}
	return true
}

func chooseLabel(label bits.BitString, remaining int) labelKind {
	kind, size := labelShort, shortLabelSize(label)
	if long := longLabelSize(label, remaining); long < size {
		kind, size = labelLong, long
	}
	if isUniform(label) && sameLabelSize(remaining) < size {
		kind = labelSame
	}
	return kind
}

// encodeLabel renders the label in its cheapest encoding.
func encodeLabel(label bits.BitString, remaining int) bits.BitString {
	kind := chooseLabel(label, remaining)
	var b *bits.Builder
	// builders are sized exactly, writes cannot fail
	switch kind {
	case labelShort:
		b = bits.NewBuilder(shortLabelSize(label))
		_ = b.WriteBit(false)
		for i := 0; i < label.Len(); i++ {
			_ = b.WriteBit(true)
		}
		_ = b.WriteBit(false)
		_ = b.WriteBits(label)
	case labelLong:
		b = bits.NewBuilder(longLabelSize(label, remaining))
		_ = b.WriteUint(0b10, 2)
		_ = b.WriteUint(uint64(label.Len()), lenBits(remaining))
		_ = b.WriteBits(label)
	default:
		b = bits.NewBuilder(sameLabelSize(remaining))
		_ = b.WriteUint(0b11, 2)
		_ = b.WriteBit(label.Len() > 0 && label.At(0))
		_ = b.WriteUint(uint64(label.Len()), lenBits(remaining))
	}
	return b.BitString()
}

func writeLabel(b *cell.Builder, label bits.BitString, remaining int) error {
	return b.StoreBits(encodeLabel(label, remaining))
}

// readLabel decodes an edge label with remaining key bits left.
func readLabel(s *cell.Slice, remaining int) (bits.BitString, error) {
	res, err := loadLabel(s, remaining)
	if err != nil {
		return bits.BitString{}, fmt.Errorf("%w: %w", ErrInvalidLabel, err)
	}
	if res.Len() > remaining {
		return bits.BitString{}, fmt.Errorf("%w: label of %d bits with %d key bits left", ErrInvalidLabel, res.Len(), remaining)
	}
	return res, nil
}

func loadLabel(s *cell.Slice, remaining int) (bits.BitString, error) {
	long, err := s.LoadBit()
	if err != nil {
		return bits.BitString{}, err
	}
	if !long {
		length := 0
		for {
			one, err := s.LoadBit()
			if err != nil {
				return bits.BitString{}, err
			}
			if !one {
				break
			}
			length++
		}
		return s.LoadBits(length)
	}

	same, err := s.LoadBit()
	if err != nil {
		return bits.BitString{}, err
	}
	if !same {
		length, err := s.LoadUint(lenBits(remaining))
		if err != nil {
			return bits.BitString{}, err
		}
		return s.LoadBits(int(length))
	}

	value, err := s.LoadBit()
	if err != nil {
		return bits.BitString{}, err
	}
	length, err := s.LoadUint(lenBits(remaining))
	if err != nil {
		return bits.BitString{}, err
	}
	if int(length) > remaining {
		return bits.BitString{}, fmt.Errorf("uniform label of %d bits with %d key bits left", length, remaining)
	}
	b := bits.NewBuilder(int(length))
	for i := 0; i < int(length); i++ {
		if err := b.WriteBit(value); err != nil {
			return bits.BitString{}, err
		}
	}
	return b.BitString(), nil
}
