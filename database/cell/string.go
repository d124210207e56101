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

import "strings"

// String renders the cell tree in the common text dump format. Each cell is
// printed as x{bits}, or p{bits} for Merkle proofs and pruned branches and
// u{bits} for Merkle updates. References follow on separate lines with one
// more space of indentation.
func (c *Cell) String() string {
	var sb strings.Builder
	c.dump(&sb, "")
	return sb.String()
}

func (c *Cell) dump(sb *strings.Builder, indent string) {
	sb.WriteString(indent)
	switch c.typ {
	case MerkleProof, PrunedBranch:
		sb.WriteByte('p')
	case MerkleUpdate:
		sb.WriteByte('u')
	default:
		sb.WriteByte('x')
	}
	sb.WriteByte('{')
	sb.WriteString(c.bits.String())
	sb.WriteString("}")
	for _, ref := range c.refs {
		sb.WriteByte('\n')
		ref.dump(sb, indent+" ")
	}
}
