// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package memory

import (
	"fmt"
	"sync"

	"github.com/0xsoniclabs/cellar/backend/depot"
	"github.com/0xsoniclabs/cellar/common"
)

// Depot is an in-memory depot.Depot implementation backed by a map.
type Depot struct {
	data map[common.Hash][]byte
	mu   sync.RWMutex
}

// NewDepot constructs a new, empty instance of Depot.
func NewDepot() *Depot {
	return &Depot{data: map[common.Hash][]byte{}}
}

// Set a value of an item
func (m *Depot) Set(key common.Hash, value []byte) error {
	newValue := make([]byte, len(value))
	copy(newValue, value)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = newValue
	return nil
}

// Get a value of the item or depot.ErrNotFound
func (m *Depot) Get(key common.Hash) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, found := m.data[key]
	if !found {
		return nil, fmt.Errorf("%w: %v", depot.ErrNotFound, key)
	}
	return value, nil
}

func (m *Depot) Has(key common.Hash) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, found := m.data[key]
	return found, nil
}

// Len returns the number of stored items.
func (m *Depot) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Flush the depot
func (m *Depot) Flush() error {
	return nil // no-op for in-memory database
}

// Close the depot
func (m *Depot) Close() error {
	return nil // no-op for in-memory database
}
