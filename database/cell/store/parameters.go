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
	"os"
	"slices"

	"github.com/0xsoniclabs/cellar/backend/depot"
	"github.com/0xsoniclabs/cellar/backend/depot/cache"
	"github.com/0xsoniclabs/cellar/backend/depot/ldb"
	"github.com/0xsoniclabs/cellar/backend/depot/memory"
	"github.com/0xsoniclabs/cellar/backend/depot/sqlite"
	"github.com/ethereum/go-ethereum/log"
)

// Backend names a depot implementation a store can be opened on.
type Backend string

const (
	Memory  Backend = "memory"
	LevelDb Backend = "ldb"
	Sqlite  Backend = "sqlite"
)

// Parameters configure the store created by Open.
type Parameters struct {
	// Directory holds the persistent data. Ignored by the memory backend.
	Directory string
	// Backend selects the depot implementation, defaults to Memory.
	Backend Backend
	// CacheSize is the number of records kept in an LRU cache in front of
	// the depot. Zero disables the cache.
	CacheSize int
}

type depotFactory func(directory string) (depot.Depot, error)

var backends = map[Backend]depotFactory{
	Memory: func(string) (depot.Depot, error) {
		return memory.NewDepot(), nil
	},
	LevelDb: func(directory string) (depot.Depot, error) {
		return ldb.OpenDepot(directory)
	},
	Sqlite: func(directory string) (depot.Depot, error) {
		return sqlite.OpenDepot(directory)
	},
}

// Backends lists the names of all supported backends in sorted order.
func Backends() []Backend {
	res := make([]Backend, 0, len(backends))
	for name := range backends {
		res = append(res, name)
	}
	slices.Sort(res)
	return res
}

// Open creates a store as described by the given parameters.
func Open(params Parameters) (*Store, error) {
	if params.Backend == "" {
		params.Backend = Memory
	}
	factory, found := backends[params.Backend]
	if !found {
		return nil, fmt.Errorf("unknown backend %q, supported: %v", params.Backend, Backends())
	}
	if params.Backend != Memory {
		if params.Directory == "" {
			return nil, fmt.Errorf("backend %s requires a directory", params.Backend)
		}
		if err := os.MkdirAll(params.Directory, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}
	d, err := factory(params.Directory)
	if err != nil {
		return nil, err
	}
	if params.CacheSize > 0 {
		cached, err := cache.NewDepot(d, params.CacheSize)
		if err != nil {
			return nil, err
		}
		d = cached
	}
	log.Info("Opened cell store", "backend", params.Backend, "directory", params.Directory, "cache", params.CacheSize)
	return New(d), nil
}
