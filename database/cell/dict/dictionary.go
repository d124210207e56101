// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package dict implements dictionaries over cells: typed key/value maps
// serialized as binary Patricia tries with compressed edge labels, and
// Merkle proofs and updates for subsets of their entries.
package dict

import (
	"cmp"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"slices"

	"github.com/0xsoniclabs/cellar/database/cell"
	"github.com/0xsoniclabs/cellar/database/cell/address"
	"github.com/0xsoniclabs/cellar/database/cell/bits"
	"github.com/0xsoniclabs/cellar/database/cell/debuginfo"
	"github.com/holiman/uint256"
)

var (
	ErrMissingKeyCodec   = errors.New("dict: missing key codec")
	ErrMissingValueCodec = errors.New("dict: missing value codec")
	ErrEmptyDirectStore  = errors.New("dict: cannot store empty dictionary directly")
	ErrInvalidLabel      = errors.New("dict: invalid edge label")
	ErrTrailingData      = errors.New("dict: value left unconsumed data")
	ErrDuplicateKey      = errors.New("dict: distinct keys with identical encoding")
	ErrKeyNotFound       = errors.New("dict: key not found")
	ErrNilKey            = errors.New("dict: nil key")
)

// KeyCodec converts keys to and from fixed width unsigned integers.
type KeyCodec[K any] interface {
	// Bits is the width of serialized keys.
	Bits() int
	Serialize(key K) (*big.Int, error)
	Parse(src *big.Int) (K, error)
}

// ValueCodec writes values to and reads values from cells.
type ValueCodec[V any] interface {
	Serialize(value V, b *cell.Builder) error
	Parse(s *cell.Slice) (V, error)
}

type entry[K, V any] struct {
	key   K
	value V
	seq   uint64
}

// Dictionary is an in-memory map which can be stored in and loaded from
// cells. Iteration follows insertion order. Dictionaries are not safe for
// concurrent use.
type Dictionary[K, V any] struct {
	keys    KeyCodec[K]
	values  ValueCodec[V]
	entries map[string]*entry[K, V]
	seq     uint64
}

// New creates an empty dictionary. The codecs may be nil if the dictionary
// is never stored.
func New[K, V any](keys KeyCodec[K], values ValueCodec[V]) *Dictionary[K, V] {
	return &Dictionary[K, V]{
		keys:    keys,
		values:  values,
		entries: map[string]*entry[K, V]{},
	}
}

func (d *Dictionary[K, V]) Len() int {
	return len(d.entries)
}

func (d *Dictionary[K, V]) Get(key K) (V, bool) {
	e, found := d.entries[internalKey(key)]
	if !found {
		var zero V
		return zero, false
	}
	return e.value, true
}

func (d *Dictionary[K, V]) Has(key K) bool {
	_, found := d.entries[internalKey(key)]
	return found
}

// Set adds or replaces an entry. Replacing keeps the position of the key in
// the iteration order.
func (d *Dictionary[K, V]) Set(key K, value V) {
	id := internalKey(key)
	if e, found := d.entries[id]; found {
		e.value = value
		return
	}
	d.seq++
	d.entries[id] = &entry[K, V]{key: key, value: value, seq: d.seq}
}

// Delete removes an entry and reports whether it was present.
func (d *Dictionary[K, V]) Delete(key K) bool {
	id := internalKey(key)
	_, found := d.entries[id]
	delete(d.entries, id)
	return found
}

func (d *Dictionary[K, V]) Clear() {
	clear(d.entries)
}

func (d *Dictionary[K, V]) sorted() []*entry[K, V] {
	res := make([]*entry[K, V], 0, len(d.entries))
	for _, e := range d.entries {
		res = append(res, e)
	}
	slices.SortFunc(res, func(a, b *entry[K, V]) int {
		return cmp.Compare(a.seq, b.seq)
	})
	return res
}

// Range calls fn for every entry in insertion order until fn returns false.
func (d *Dictionary[K, V]) Range(fn func(key K, value V) bool) {
	for _, e := range d.sorted() {
		if !fn(e.key, e.value) {
			return
		}
	}
}

func (d *Dictionary[K, V]) Keys() []K {
	res := make([]K, 0, len(d.entries))
	for _, e := range d.sorted() {
		res = append(res, e.key)
	}
	return res
}

func (d *Dictionary[K, V]) Values() []V {
	res := make([]V, 0, len(d.entries))
	for _, e := range d.sorted() {
		res = append(res, e.value)
	}
	return res
}

// Clone creates a shallow copy sharing codecs, keys, and values.
func (d *Dictionary[K, V]) Clone() *Dictionary[K, V] {
	res := New(d.keys, d.values)
	for _, e := range d.sorted() {
		res.Set(e.key, e.value)
	}
	return res
}

// internalKey maps keys to comparable identities, values of equal content
// share an identity.
func internalKey(key any) string {
	if isNilKey(key) {
		return "nil"
	}
	switch k := key.(type) {
	case *big.Int:
		return "b:" + k.String()
	case *uint256.Int:
		return "b:" + k.Dec()
	case *address.Address:
		return "a:" + k.String()
	case []byte:
		return "f:" + hex.EncodeToString(k)
	case bits.BitString:
		return "B:" + k.String()
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("n:%d", k)
	}
	return fmt.Sprintf("%T:%v", key, key)
}

// isNilKey reports whether key is a nil pointer of one of the supported
// pointer key types. Such keys can be kept in memory but never stored.
func isNilKey(key any) bool {
	switch k := key.(type) {
	case *big.Int:
		return k == nil
	case *uint256.Int:
		return k == nil
	case *address.Address:
		return k == nil
	}
	return false
}

type storeOptions struct {
	annotations *debuginfo.Arena
}

// Option configures how a dictionary is stored.
type Option func(*storeOptions)

// WithAnnotations records the position of every entry value that ends up
// in a cell owned by the dictionary.
func WithAnnotations(arena *debuginfo.Arena) Option {
	return func(o *storeOptions) {
		o.annotations = arena
	}
}

func (d *Dictionary[K, V]) checkCodecs() error {
	if d.keys == nil {
		return ErrMissingKeyCodec
	}
	if d.values == nil {
		return ErrMissingValueCodec
	}
	return nil
}

// Store writes the dictionary as an optional reference: a 0 bit for an
// empty dictionary, otherwise a 1 bit and a reference to the trie root.
func (d *Dictionary[K, V]) Store(b *cell.Builder, opts ...Option) error {
	if len(d.entries) == 0 {
		return b.StoreBit(false)
	}
	if err := d.checkCodecs(); err != nil {
		return err
	}
	root, err := d.rootCell(opts)
	if err != nil {
		return err
	}
	return b.StoreMaybeRef(root)
}

// StoreDirect writes the trie root inline into b.
func (d *Dictionary[K, V]) StoreDirect(b *cell.Builder, opts ...Option) error {
	if len(d.entries) == 0 {
		return ErrEmptyDirectStore
	}
	if err := d.checkCodecs(); err != nil {
		return err
	}
	root, err := d.trie()
	if err != nil {
		return err
	}
	_, err = newWriter(d.values, opts).writeEdge(b, root, d.keys.Bits(), bits.Empty)
	return err
}

// rootCell serializes the trie into a cell of its own.
func (d *Dictionary[K, V]) rootCell(opts []Option) (*cell.Cell, error) {
	root, err := d.trie()
	if err != nil {
		return nil, err
	}
	w := newWriter(d.values, opts)
	b := cell.NewBuilder()
	pos, err := w.writeEdge(b, root, d.keys.Bits(), bits.Empty)
	if err != nil {
		return nil, err
	}
	res, err := b.EndCell()
	if err != nil {
		return nil, err
	}
	w.annotate(res, pos)
	return res, nil
}

// trie builds the edge rooted trie of all entries.
func (d *Dictionary[K, V]) trie() (*edge[V], error) {
	entries := make([]trieEntry[V], 0, len(d.entries))
	for _, e := range d.sorted() {
		key, err := serializeKey(d.keys, e.key)
		if err != nil {
			return nil, err
		}
		entries = append(entries, trieEntry[V]{key: key, value: e.value})
	}
	return buildEdge(entries)
}

func serializeKey[K any](codec KeyCodec[K], key K) (bits.BitString, error) {
	n, err := codec.Serialize(key)
	if err != nil {
		return bits.BitString{}, fmt.Errorf("invalid key %v: %w", key, err)
	}
	b := bits.NewBuilder(codec.Bits())
	if err := b.WriteBigUint(n, codec.Bits()); err != nil {
		return bits.BitString{}, fmt.Errorf("invalid key %v: %w", key, err)
	}
	return b.BitString(), nil
}

// Load reads a dictionary stored by Store. An absent or exotic root yields
// an empty dictionary.
func Load[K, V any](keys KeyCodec[K], values ValueCodec[V], s *cell.Slice) (*Dictionary[K, V], error) {
	root, err := s.LoadMaybeRef()
	if err != nil {
		return nil, err
	}
	if root == nil || root.IsExotic() {
		return New(keys, values), nil
	}
	return LoadDirect(keys, values, root.BeginParse())
}

// LoadFromCell reads a dictionary stored by Store from the start of c. An
// exotic cell yields an empty dictionary.
func LoadFromCell[K, V any](keys KeyCodec[K], values ValueCodec[V], c *cell.Cell) (*Dictionary[K, V], error) {
	if c.IsExotic() {
		return New(keys, values), nil
	}
	return Load(keys, values, c.BeginParse())
}

// LoadDirect reads a dictionary stored by StoreDirect. A nil slice yields an
// empty dictionary.
func LoadDirect[K, V any](keys KeyCodec[K], values ValueCodec[V], s *cell.Slice) (*Dictionary[K, V], error) {
	res := New(keys, values)
	if s == nil {
		return res, nil
	}
	if err := res.checkCodecs(); err != nil {
		return nil, err
	}
	width := keys.Bits()
	err := parseEdge(s, width, bits.Empty, false, values, func(key bits.BitString, value V) error {
		raw, err := bits.NewReader(key).LoadBigUint(width)
		if err != nil {
			return err
		}
		k, err := keys.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid key %v: %w", key, err)
		}
		res.Set(k, value)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
