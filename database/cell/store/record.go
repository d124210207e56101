// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package store

import (
	"fmt"

	"github.com/0xsoniclabs/cellar/common"
	"github.com/0xsoniclabs/cellar/database/cell"
	"github.com/0xsoniclabs/cellar/database/cell/bits"
)

// record is the persisted form of a single cell: the two descriptor bytes,
// the padded data bytes and the representation hashes of all references.
type record struct {
	exotic bool
	mask   cell.LevelMask
	data   bits.BitString
	refs   []common.Hash
}

func encodeRecord(c *cell.Cell) []byte {
	d1, d2 := c.Descriptors(cell.MaxLevel)
	data := c.Bits().PaddedBytes()
	res := make([]byte, 0, 2+len(data)+len(c.Refs())*common.HashSize)
	res = append(res, d1, d2)
	res = append(res, data...)
	for _, ref := range c.Refs() {
		hash := ref.ReprHash()
		res = append(res, hash[:]...)
	}
	return res
}

func decodeRecord(data []byte) (record, error) {
	if len(data) < 2 {
		return record{}, fmt.Errorf("%w: record of %d bytes", ErrCorrupted, len(data))
	}
	d1, d2 := data[0], data[1]
	refs := int(d1 & 7)
	if refs > cell.MaxRefs {
		return record{}, fmt.Errorf("%w: %d references", ErrCorrupted, refs)
	}
	dataBytes := (int(d2) + 1) / 2
	if want := 2 + dataBytes + refs*common.HashSize; len(data) != want {
		return record{}, fmt.Errorf("%w: record of %d bytes, expected %d", ErrCorrupted, len(data), want)
	}

	reader := bits.NewReader(bits.FromBytes(data[2 : 2+dataBytes]))
	var payload bits.BitString
	var err error
	if d2%2 != 0 {
		payload, err = reader.LoadPaddedBits(dataBytes * 8)
	} else {
		payload, err = reader.LoadBits(dataBytes * 8)
	}
	if err != nil {
		return record{}, fmt.Errorf("%w: %w", ErrCorrupted, err)
	}

	res := record{
		exotic: d1&8 != 0,
		mask:   cell.LevelMask(d1 >> 5),
		data:   payload,
		refs:   make([]common.Hash, refs),
	}
	rest := data[2+dataBytes:]
	for i := range res.refs {
		copy(res.refs[i][:], rest[i*common.HashSize:])
	}
	return res, nil
}
