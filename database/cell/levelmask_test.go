// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package cell

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevelMask_DerivedProperties(t *testing.T) {
	tests := []struct {
		mask      LevelMask
		level     int
		hashIndex int
	}{
		{0, 0, 0},
		{1, 1, 1},
		{2, 2, 1},
		{3, 2, 2},
		{5, 3, 2},
		{7, 3, 3},
	}
	for _, test := range tests {
		require.Equal(t, test.level, test.mask.Level(), "mask %b", test.mask)
		require.Equal(t, test.hashIndex, test.mask.HashIndex(), "mask %b", test.mask)
		require.Equal(t, test.hashIndex+1, test.mask.HashCount(), "mask %b", test.mask)
	}
}

func TestLevelMask_Apply_KeepsLowerLevels(t *testing.T) {
	m := LevelMask(0b101)
	require.Equal(t, LevelMask(0), m.Apply(0))
	require.Equal(t, LevelMask(1), m.Apply(1))
	require.Equal(t, LevelMask(1), m.Apply(2))
	require.Equal(t, LevelMask(0b101), m.Apply(3))
}

func TestLevelMask_IsSignificant(t *testing.T) {
	m := LevelMask(0b010)
	require.True(t, m.IsSignificant(0))
	require.False(t, m.IsSignificant(1))
	require.True(t, m.IsSignificant(2))
	require.False(t, m.IsSignificant(3))
}
