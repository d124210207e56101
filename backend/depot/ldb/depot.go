// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package ldb

import (
	"errors"
	"fmt"

	"github.com/0xsoniclabs/cellar/backend"
	"github.com/0xsoniclabs/cellar/backend/depot"
	"github.com/0xsoniclabs/cellar/common"
	"github.com/golang/snappy"
	"github.com/syndtr/goleveldb/leveldb"
)

// Depot is a LevelDB backed depot.Depot implementation. Values are stored
// snappy compressed under keys prefixed by the depot's table space.
type Depot struct {
	db    *leveldb.DB
	table backend.TableSpace
	owned bool
}

// NewDepot creates a depot sharing the given LevelDB instance. Closing the
// depot does not close the database.
func NewDepot(db *leveldb.DB, table backend.TableSpace) *Depot {
	return &Depot{db: db, table: table}
}

// OpenDepot opens a LevelDB instance in the given directory exclusively owned
// by the resulting depot.
func OpenDepot(path string) (*Depot, error) {
	db, err := backend.OpenLevelDb(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open LevelDB in %s: %w", path, err)
	}
	return &Depot{db: db, table: backend.CellTable, owned: true}, nil
}

func (m *Depot) Set(key common.Hash, value []byte) error {
	return m.db.Put(m.table.DbKey(key[:]), snappy.Encode(nil, value), nil)
}

func (m *Depot) Get(key common.Hash) ([]byte, error) {
	data, err := m.db.Get(m.table.DbKey(key[:]), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", depot.ErrNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	value, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress value of %v: %w", key, err)
	}
	return value, nil
}

func (m *Depot) Has(key common.Hash) (bool, error) {
	return m.db.Has(m.table.DbKey(key[:]), nil)
}

// Flush is a no-op, LevelDB persists writes through its journal.
func (m *Depot) Flush() error {
	return nil
}

func (m *Depot) Close() error {
	if !m.owned {
		return nil
	}
	return m.db.Close()
}
