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

import mathbits "math/bits"

// LevelMask records at which Merkle levels a cell carries a distinct hash.
// Bit i set means the cell has a distinct hash at level i+1. Level 0 is
// always present.
type LevelMask uint8

// Level returns the highest Merkle level of the cell.
func (m LevelMask) Level() int {
	return mathbits.Len8(uint8(m))
}

// HashIndex returns the position of the highest level hash among the
// distinct hashes of the cell.
func (m LevelMask) HashIndex() int {
	return mathbits.OnesCount8(uint8(m))
}

// HashCount returns the number of distinct hashes of the cell.
func (m LevelMask) HashCount() int {
	return m.HashIndex() + 1
}

// Apply restricts the mask to the levels below level.
func (m LevelMask) Apply(level int) LevelMask {
	return m & LevelMask((1<<level)-1)
}

// IsSignificant reports whether the cell has a distinct hash at level.
func (m LevelMask) IsSignificant(level int) bool {
	return level == 0 || (m>>(level-1))&1 != 0
}
