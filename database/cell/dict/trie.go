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
	"github.com/0xsoniclabs/cellar/database/cell/debuginfo"
)

type trieEntry[V any] struct {
	key   bits.BitString
	value V
}

// node is either a leaf holding a value or a fork with two edges, the left
// one continuing with a 0 bit and the right one with a 1 bit.
type node[V any] struct {
	leaf        bool
	value       V
	left, right *edge[V]
}

// edge leads to a node, consuming the bits of its label.
type edge[V any] struct {
	label bits.BitString
	node  *node[V]
}

// buildEdge builds the trie for entries with keys of equal length. The
// edge label is the longest common prefix of all keys.
func buildEdge[V any](entries []trieEntry[V]) (*edge[V], error) {
	label := commonPrefix(entries)
	rest := make([]trieEntry[V], len(entries))
	for i, e := range entries {
		key, err := e.key.Substring(label.Len(), e.key.Len()-label.Len())
		if err != nil {
			return nil, err
		}
		rest[i] = trieEntry[V]{key: key, value: e.value}
	}
	n, err := buildNode(rest)
	if err != nil {
		return nil, err
	}
	return &edge[V]{label: label, node: n}, nil
}

func buildNode[V any](entries []trieEntry[V]) (*node[V], error) {
	if len(entries) == 1 {
		return &node[V]{leaf: true, value: entries[0].value}, nil
	}
	var left, right []trieEntry[V]
	for _, e := range entries {
		if e.key.Len() == 0 {
			return nil, ErrDuplicateKey
		}
		key, _ := e.key.Substring(1, e.key.Len()-1)
		if e.key.At(0) {
			right = append(right, trieEntry[V]{key: key, value: e.value})
		} else {
			left = append(left, trieEntry[V]{key: key, value: e.value})
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return nil, fmt.Errorf("dict: fork with %d left and %d right entries", len(left), len(right))
	}
	l, err := buildEdge(left)
	if err != nil {
		return nil, err
	}
	r, err := buildEdge(right)
	if err != nil {
		return nil, err
	}
	return &node[V]{left: l, right: r}, nil
}

func commonPrefix[V any](entries []trieEntry[V]) bits.BitString {
	first := entries[0].key
	length := first.Len()
	for _, e := range entries[1:] {
		i := 0
		for i < length && i < e.key.Len() && e.key.At(i) == first.At(i) {
			i++
		}
		length = i
	}
	res, _ := first.Substring(0, length)
	return res
}

func appendBit(prefix bits.BitString, bit bool) bits.BitString {
	b := bits.NewBuilder(1)
	_ = b.WriteBit(bit)
	return bits.Concat(prefix, b.BitString())
}

// leafPosition locates a serialized value within the cell being built.
type leafPosition struct {
	offset int
	key    bits.BitString
}

type writer[V any] struct {
	values      ValueCodec[V]
	annotations *debuginfo.Arena
}

func newWriter[V any](values ValueCodec[V], opts []Option) *writer[V] {
	var o storeOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &writer[V]{values: values, annotations: o.annotations}
}

// writeEdge writes the label and the node of e into b. If the node is a
// leaf, the position of its value is returned.
func (w *writer[V]) writeEdge(b *cell.Builder, e *edge[V], remaining int, prefix bits.BitString) (*leafPosition, error) {
	if err := writeLabel(b, e.label, remaining); err != nil {
		return nil, err
	}
	key := bits.Concat(prefix, e.label)
	if e.node.leaf {
		pos := &leafPosition{offset: b.BitsLen(), key: key}
		return pos, w.values.Serialize(e.node.value, b)
	}
	return nil, w.writeFork(b, e.node, remaining-e.label.Len(), key)
}

// writeFork stores both branches of n as references of b, each in a cell of
// its own.
func (w *writer[V]) writeFork(b *cell.Builder, n *node[V], remaining int, prefix bits.BitString) error {
	for i, child := range []*edge[V]{n.left, n.right} {
		cb := cell.NewBuilder()
		pos, err := w.writeEdge(cb, child, remaining-1, appendBit(prefix, i == 1))
		if err != nil {
			return err
		}
		c, err := cb.EndCell()
		if err != nil {
			return err
		}
		w.annotate(c, pos)
		if err := b.StoreRef(c); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer[V]) annotate(c *cell.Cell, pos *leafPosition) {
	if w.annotations == nil || pos == nil {
		return
	}
	w.annotations.Add(debuginfo.Mapping{
		CellHash: c.Hash(0),
		Offset:   pos.offset,
		Kind:     debuginfo.DictionaryValue,
		Key:      pos.key,
	})
}
