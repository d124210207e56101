// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package depot

//go:generate mockgen -source depot.go -destination depot_mocks.go -package depot

import (
	"errors"

	"github.com/0xsoniclabs/cellar/common"
)

// ErrNotFound is returned by Get for keys without a value.
var ErrNotFound = errors.New("depot: entry not found")

// Depot is a content addressed key/value store for variable length values.
// Implementations must copy values passed to Set and may return shared
// slices from Get, which callers must not modify.
type Depot interface {
	// Get returns the value stored for the key or ErrNotFound.
	Get(key common.Hash) ([]byte, error)
	// Set stores the value for the key, replacing any previous value.
	Set(key common.Hash, value []byte) error
	// Has reports whether a value is stored for the key.
	Has(key common.Hash) (bool, error)

	common.FlushAndCloser
}
