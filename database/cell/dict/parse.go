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

	"github.com/0xsoniclabs/cellar/database/cell"
	"github.com/0xsoniclabs/cellar/database/cell/bits"
)

// parseEdge decodes the trie edge starting at s with remaining key bits
// left and reports every entry to emit. Cells owned by the trie must be
// fully consumed by the value codec; the root edge may be followed by
// unrelated data of the enclosing cell.
func parseEdge[V any](
	s *cell.Slice,
	remaining int,
	prefix bits.BitString,
	owned bool,
	values ValueCodec[V],
	emit func(key bits.BitString, value V) error,
) error {
	label, err := readLabel(s, remaining)
	if err != nil {
		return err
	}
	key := bits.Concat(prefix, label)
	remaining -= label.Len()

	if remaining == 0 {
		value, err := values.Parse(s)
		if err != nil {
			return fmt.Errorf("dict: value at %v: %w", key, err)
		}
		if owned {
			if err := s.EndParse(); err != nil {
				return fmt.Errorf("%w: value at %v: %w", ErrTrailingData, key, err)
			}
		}
		return emit(key, value)
	}

	for i := 0; i < 2; i++ {
		child, err := s.LoadRef()
		if err != nil {
			return fmt.Errorf("dict: fork at %v: %w", key, err)
		}
		// pruned branches of Merkle proofs are skipped
		if child.IsExotic() {
			continue
		}
		if err := parseEdge(child.BeginParse(), remaining-1, appendBit(key, i == 1), true, values, emit); err != nil {
			return err
		}
	}
	return nil
}
