// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package cache

import (
	"fmt"

	"github.com/0xsoniclabs/cellar/backend/depot"
	"github.com/0xsoniclabs/cellar/common"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Depot wraps a depot and keeps recently used values in an LRU cache.
// Writes go to the wrapped depot first and are cached afterwards.
type Depot struct {
	base  depot.Depot
	cache *lru.Cache[common.Hash, []byte]
}

// NewDepot wraps base with a cache holding up to size values.
func NewDepot(base depot.Depot, size int) (*Depot, error) {
	cache, err := lru.New[common.Hash, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create depot cache: %w", err)
	}
	return &Depot{base: base, cache: cache}, nil
}

func (m *Depot) Get(key common.Hash) ([]byte, error) {
	if value, found := m.cache.Get(key); found {
		return value, nil
	}
	value, err := m.base.Get(key)
	if err != nil {
		return nil, err
	}
	m.cache.Add(key, value)
	return value, nil
}

func (m *Depot) Set(key common.Hash, value []byte) error {
	if err := m.base.Set(key, value); err != nil {
		return err
	}
	m.cache.Add(key, append([]byte(nil), value...))
	return nil
}

func (m *Depot) Has(key common.Hash) (bool, error) {
	if m.cache.Contains(key) {
		return true, nil
	}
	return m.base.Has(key)
}

func (m *Depot) Flush() error {
	return m.base.Flush()
}

func (m *Depot) Close() error {
	m.cache.Purge()
	return m.base.Close()
}
