// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package future

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreate_FulfilledValueIsReceived(t *testing.T) {
	promise, f := Create[int]()
	go promise.Fulfill(12)
	require.Equal(t, 12, f.Await())
}

func TestImmediate_ValueIsAvailableWithoutProducer(t *testing.T) {
	require.Equal(t, "cell", Immediate("cell").Await())
}

func TestAwaitContext_ReturnsValueWhenAvailable(t *testing.T) {
	promise, f := Create[int]()
	promise.Fulfill(7)
	got, err := f.AwaitContext(context.Background())
	require.NoError(t, err)
	require.Equal(t, 7, got)
}

func TestAwaitContext_GivesUpOnCancellation(t *testing.T) {
	_, f := Create[int]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got, err := f.AwaitContext(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, got)
}
