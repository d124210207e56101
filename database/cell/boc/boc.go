// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package boc implements the bag-of-cells format, the standard binary
// serialization of cell DAGs.
package boc

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"hash/crc32"
	mathbits "math/bits"
	"strings"

	"github.com/0xsoniclabs/cellar/database/cell"
	"github.com/0xsoniclabs/cellar/database/cell/bits"
)

const (
	magicGeneric      = 0xb5ee9c72
	magicIndexed      = 0x68ff65f3
	magicIndexedCrc32 = 0xacc3a728
)

var (
	ErrInvalidBoc       = errors.New("boc: invalid bag of cells")
	ErrChecksumMismatch = errors.New("boc: checksum mismatch")
	ErrInvalidRootCount = errors.New("boc: unexpected number of roots")
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// Options control optional sections of serialized bags of cells.
type Options struct {
	// Index adds a table of cell end offsets after the root list.
	Index bool
	// Checksum appends a CRC32C of the serialized data.
	Checksum bool
}

// DefaultOptions are the options used by Serialize.
var DefaultOptions = Options{Checksum: true}

// Serialize encodes the DAG rooted at root using DefaultOptions.
func Serialize(root *cell.Cell) ([]byte, error) {
	return SerializeRoots([]*cell.Cell{root}, DefaultOptions)
}

// SerializeRoots encodes the DAG reachable from the given roots.
func SerializeRoots(roots []*cell.Cell, opts Options) ([]byte, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("%w: no roots", ErrInvalidRootCount)
	}
	cells, index, err := topologicalSort(roots)
	if err != nil {
		return nil, err
	}

	sizeBytes := byteLen(len(cells))
	ends := make([]int, len(cells))
	total := 0
	for i, c := range cells {
		total += 2 + (c.cell.Bits().Len()+7)/8 + len(c.refs)*sizeBytes
		ends[i] = total
	}
	offBytes := byteLen(total)
	if sizeBytes > 7 || offBytes > 8 {
		return nil, fmt.Errorf("%w: DAG too large", ErrInvalidBoc)
	}

	size := 4 + 1 + 1 + 3*sizeBytes + offBytes + len(roots)*sizeBytes + total
	if opts.Index {
		size += len(cells) * offBytes
	}
	b := bits.NewBuilder(size * 8)

	// header and root list; capacity is exact, writes cannot overflow
	write := func(value uint64, bytes int) {
		_ = b.WriteUint(value, bytes*8)
	}
	write(magicGeneric, 4)
	_ = b.WriteBit(opts.Index)
	_ = b.WriteBit(opts.Checksum)
	_ = b.WriteBit(false) // cache bits
	_ = b.WriteUint(0, 2) // flags
	_ = b.WriteUint(uint64(sizeBytes), 3)
	write(uint64(offBytes), 1)
	write(uint64(len(cells)), sizeBytes)
	write(uint64(len(roots)), sizeBytes)
	write(0, sizeBytes) // absent cells
	write(uint64(total), offBytes)
	for _, root := range roots {
		write(uint64(index[root.ReprHash()]), sizeBytes)
	}
	if opts.Index {
		for _, end := range ends {
			write(uint64(end), offBytes)
		}
	}

	for _, c := range cells {
		d1, d2 := c.cell.Descriptors(cell.MaxLevel)
		write(uint64(d1), 1)
		write(uint64(d2), 1)
		_ = b.WriteBuffer(c.cell.Bits().PaddedBytes())
		for _, ref := range c.refs {
			write(uint64(ref), sizeBytes)
		}
	}

	res, err := b.Bytes()
	if err != nil {
		return nil, err
	}
	if opts.Checksum {
		res = binary.LittleEndian.AppendUint32(res, crc32.Checksum(res, castagnoli))
	}
	return res, nil
}

// byteLen is the number of bytes needed to hold n, at least 1.
func byteLen(n int) int {
	return max((mathbits.Len(uint(n))+7)/8, 1)
}

type header struct {
	sizeBytes     int
	offBytes      int
	cells         int
	roots         []int
	absent        int
	totalCellSize int
	cellData      []byte
}

func parseHeader(data []byte) (*header, error) {
	r := bits.NewReader(bits.FromBytes(data))
	magic, err := r.LoadUint(32)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBoc, err)
	}

	var (
		res      header
		hasIndex bool
		hasCrc   bool
		rootsNum uint64
	)
	switch magic {
	case magicIndexed, magicIndexedCrc32:
		hasIndex = true
		hasCrc = magic == magicIndexedCrc32
		size, err := r.LoadUint(8)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidBoc, err)
		}
		res.sizeBytes = int(size)
	case magicGeneric:
		flags, err := r.LoadUint(8)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidBoc, err)
		}
		hasIndex = flags&0x80 != 0
		hasCrc = flags&0x40 != 0
		res.sizeBytes = int(flags & 0x07)
	default:
		return nil, fmt.Errorf("%w: unknown magic %08x", ErrInvalidBoc, magic)
	}
	if res.sizeBytes < 1 || res.sizeBytes > 4 {
		return nil, fmt.Errorf("%w: reference size of %d bytes", ErrInvalidBoc, res.sizeBytes)
	}

	load := func(bytes int) int {
		if err != nil {
			return 0
		}
		var v uint64
		v, err = r.LoadUint(bytes * 8)
		return int(v)
	}
	res.offBytes = load(1)
	if err == nil && (res.offBytes < 1 || res.offBytes > 8) {
		return nil, fmt.Errorf("%w: offset size of %d bytes", ErrInvalidBoc, res.offBytes)
	}
	res.cells = load(res.sizeBytes)
	rootsNum = uint64(load(res.sizeBytes))
	res.absent = load(res.sizeBytes)
	res.totalCellSize = load(res.offBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: truncated header: %w", ErrInvalidBoc, err)
	}
	if rootsNum == 0 || rootsNum > uint64(res.cells) {
		return nil, fmt.Errorf("%w: %d roots for %d cells", ErrInvalidBoc, rootsNum, res.cells)
	}

	// every cell takes at least its two descriptor bytes
	remaining := uint64(r.Remaining() / 8)
	if uint64(res.cells) > remaining/2 || rootsNum*uint64(res.sizeBytes) > remaining {
		return nil, fmt.Errorf("%w: %d cells and %d roots exceed %d bytes of input", ErrInvalidBoc, res.cells, rootsNum, remaining)
	}

	if magic == magicGeneric {
		res.roots = make([]int, 0, rootsNum)
		for i := uint64(0); i < rootsNum && err == nil; i++ {
			res.roots = append(res.roots, load(res.sizeBytes))
		}
	} else {
		res.roots = []int{0}
	}
	if hasIndex && err == nil {
		err = r.Skip(res.cells * res.offBytes * 8)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: truncated header: %w", ErrInvalidBoc, err)
	}

	res.cellData, err = r.LoadBuffer(res.totalCellSize)
	if err != nil {
		return nil, fmt.Errorf("%w: truncated cell data: %w", ErrInvalidBoc, err)
	}

	if hasCrc {
		end := r.Offset() / 8
		if len(data) < end+4 {
			return nil, fmt.Errorf("%w: missing checksum", ErrInvalidBoc)
		}
		want := binary.LittleEndian.Uint32(data[end : end+4])
		if got := crc32.Checksum(data[:end], castagnoli); got != want {
			return nil, fmt.Errorf("%w: computed %08x, stored %08x", ErrChecksumMismatch, got, want)
		}
	}
	return &res, nil
}

type rawCell struct {
	bits   bits.BitString
	refs   []int
	exotic bool
}

func readCell(r *bits.Reader, sizeBytes int) (rawCell, error) {
	d1, err := r.LoadUint(8)
	if err != nil {
		return rawCell{}, err
	}
	d2, err := r.LoadUint(8)
	if err != nil {
		return rawCell{}, err
	}
	refsCount := int(d1 % 8)
	if refsCount > cell.MaxRefs {
		return rawCell{}, fmt.Errorf("%w: %d references", ErrInvalidBoc, refsCount)
	}
	// skip stored hashes and depths
	if d1&16 != 0 {
		count := cell.LevelMask(d1 >> 5).HashCount()
		if err := r.Skip(count * (32 + 2) * 8); err != nil {
			return rawCell{}, err
		}
	}

	dataBytes := int(d2+1) / 2
	var data bits.BitString
	if d2%2 != 0 {
		data, err = r.LoadPaddedBits(dataBytes * 8)
	} else {
		data, err = r.LoadBits(dataBytes * 8)
	}
	if err != nil {
		return rawCell{}, err
	}

	refs := make([]int, refsCount)
	for i := range refs {
		ref, err := r.LoadUint(sizeBytes * 8)
		if err != nil {
			return rawCell{}, err
		}
		refs[i] = int(ref)
	}
	return rawCell{bits: data, refs: refs, exotic: d1&8 != 0}, nil
}

// Deserialize decodes a bag of cells and returns its roots.
func Deserialize(data []byte) ([]*cell.Cell, error) {
	h, err := parseHeader(data)
	if err != nil {
		return nil, err
	}

	if h.cells > len(h.cellData)/2 {
		return nil, fmt.Errorf("%w: %d cells in %d bytes", ErrInvalidBoc, h.cells, len(h.cellData))
	}
	r := bits.NewReader(bits.FromBytes(h.cellData))
	raw := make([]rawCell, h.cells)
	for i := range raw {
		if raw[i], err = readCell(r, h.sizeBytes); err != nil {
			return nil, fmt.Errorf("%w: cell %d: %w", ErrInvalidBoc, i, err)
		}
	}

	// references always point to later cells, build from the back
	cells := make([]*cell.Cell, h.cells)
	for i := len(raw) - 1; i >= 0; i-- {
		refs := make([]*cell.Cell, len(raw[i].refs))
		for j, ref := range raw[i].refs {
			if ref <= i || ref >= len(cells) {
				return nil, fmt.Errorf("%w: cell %d references cell %d", ErrInvalidBoc, i, ref)
			}
			refs[j] = cells[ref]
		}
		if cells[i], err = cell.New(raw[i].bits, refs, raw[i].exotic); err != nil {
			return nil, fmt.Errorf("%w: cell %d: %w", ErrInvalidBoc, i, err)
		}
	}

	roots := make([]*cell.Cell, len(h.roots))
	for i, index := range h.roots {
		if index < 0 || index >= len(cells) {
			return nil, fmt.Errorf("%w: root index %d out of range", ErrInvalidBoc, index)
		}
		roots[i] = cells[index]
	}
	return roots, nil
}

// DeserializeRoot decodes a bag of cells with exactly one root.
func DeserializeRoot(data []byte) (*cell.Cell, error) {
	roots, err := Deserialize(data)
	if err != nil {
		return nil, err
	}
	if len(roots) != 1 {
		return nil, fmt.Errorf("%w: got %d, want 1", ErrInvalidRootCount, len(roots))
	}
	return roots[0], nil
}

// ToBase64 serializes root using DefaultOptions and encodes it as base64.
func ToBase64(root *cell.Cell) (string, error) {
	data, err := Serialize(root)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// FromBase64 decodes a base64 encoded single-root bag of cells.
func FromBase64(s string) (*cell.Cell, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBoc, err)
	}
	return DeserializeRoot(data)
}

// FromHex decodes a hex encoded single-root bag of cells.
func FromHex(s string) (*cell.Cell, error) {
	data, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBoc, err)
	}
	return DeserializeRoot(data)
}
