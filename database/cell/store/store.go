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
	"errors"
	"fmt"

	"github.com/0xsoniclabs/cellar/backend/depot"
	"github.com/0xsoniclabs/cellar/common"
	"github.com/0xsoniclabs/cellar/database/cell"
	"github.com/ethereum/go-ethereum/log"
)

// ErrCorrupted is returned when a stored record cannot be decoded or does
// not hash to the key it is stored under.
var ErrCorrupted = errors.New("store: corrupted cell record")

// Store persists cell DAGs in a depot. Every distinct cell is stored once,
// keyed by its representation hash. A Store is safe for concurrent use if
// its depot is.
type Store struct {
	depot depot.Depot
}

// New creates a store on top of the given depot. The store takes ownership
// of the depot and closes it on Close.
func New(d depot.Depot) *Store {
	return &Store{depot: d}
}

// Put stores all cells reachable from root and returns the root's
// representation hash. Subtrees already present in the depot are skipped.
func (s *Store) Put(root *cell.Cell) (common.Hash, error) {
	visited := map[common.Hash]struct{}{}
	written := 0
	var put func(c *cell.Cell) error
	put = func(c *cell.Cell) error {
		hash := c.ReprHash()
		if _, found := visited[hash]; found {
			return nil
		}
		visited[hash] = struct{}{}
		present, err := s.depot.Has(hash)
		if err != nil {
			return err
		}
		if present {
			return nil
		}
		for _, ref := range c.Refs() {
			if err := put(ref); err != nil {
				return err
			}
		}
		written++
		return s.depot.Set(hash, encodeRecord(c))
	}
	if err := put(root); err != nil {
		return common.Hash{}, fmt.Errorf("failed to store cell %v: %w", root.ReprHash(), err)
	}
	hash := root.ReprHash()
	log.Debug("Stored cell DAG", "root", hash, "written", written, "visited", len(visited))
	return hash, nil
}

// Get loads the cell with the given representation hash and all cells
// below it. Every loaded cell is re-hashed and checked against its key.
func (s *Store) Get(hash common.Hash) (*cell.Cell, error) {
	loaded := map[common.Hash]*cell.Cell{}
	var get func(hash common.Hash, depth int) (*cell.Cell, error)
	get = func(hash common.Hash, depth int) (*cell.Cell, error) {
		if c, found := loaded[hash]; found {
			return c, nil
		}
		if depth > cell.MaxDepth {
			return nil, fmt.Errorf("%w: cell %v exceeds depth %d", ErrCorrupted, hash, cell.MaxDepth)
		}
		data, err := s.depot.Get(hash)
		if err != nil {
			return nil, err
		}
		rec, err := decodeRecord(data)
		if err != nil {
			return nil, fmt.Errorf("cell %v: %w", hash, err)
		}
		refs := make([]*cell.Cell, len(rec.refs))
		for i, ref := range rec.refs {
			if refs[i], err = get(ref, depth+1); err != nil {
				return nil, err
			}
		}
		c, err := cell.New(rec.data, refs, rec.exotic)
		if err != nil {
			return nil, fmt.Errorf("%w: cell %v: %w", ErrCorrupted, hash, err)
		}
		if got := c.ReprHash(); got != hash {
			return nil, fmt.Errorf("%w: cell stored as %v hashes to %v", ErrCorrupted, hash, got)
		}
		if c.LevelMask() != rec.mask {
			return nil, fmt.Errorf("%w: cell %v has level mask %d, stored %d", ErrCorrupted, hash, c.LevelMask(), rec.mask)
		}
		loaded[hash] = c
		return c, nil
	}
	return get(hash, 0)
}

// Has reports whether a cell with the given hash is stored.
func (s *Store) Has(hash common.Hash) (bool, error) {
	return s.depot.Has(hash)
}

func (s *Store) Flush() error {
	return s.depot.Flush()
}

func (s *Store) Close() error {
	return errors.Join(s.depot.Flush(), s.depot.Close())
}
