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

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHash_StringAndHex_RenderSameBytes(t *testing.T) {
	var h Hash
	h[0] = 0xAB
	h[31] = 0x01
	require.Equal(t, "0xab"+strings.Repeat("00", 30)+"01", h.String())
	require.Equal(t, "AB"+strings.Repeat("00", 30)+"01", h.Hex())
}

func TestHashFromHex_AcceptsBothForms(t *testing.T) {
	var want Hash
	want[0] = 0xAB
	want[31] = 0x01

	got, err := HashFromHex(want.String())
	require.NoError(t, err)
	require.Equal(t, want, got)

	got, err = HashFromHex(want.Hex())
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestHashFromHex_RejectsInvalidInput(t *testing.T) {
	_, err := HashFromHex("0x1234")
	require.Error(t, err)
	_, err = HashFromHex("zz")
	require.Error(t, err)
}

func TestHash_IsZero(t *testing.T) {
	require.True(t, Hash{}.IsZero())
	require.False(t, Hash{1}.IsZero())
}
