// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package common

import "io"

// Flusher is implemented by components buffering writes.
type Flusher interface {
	// Flush writes all buffered data to the underlying medium.
	Flush() error
}

// FlushAndCloser is implemented by persistent components which need to be
// flushed and released at the end of their life cycle.
type FlushAndCloser interface {
	Flusher
	io.Closer
}
