// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package backend

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTableSpace_DbKey_PrefixesTable(t *testing.T) {
	require.Equal(t, []byte{'C', 1, 2}, CellTable.DbKey([]byte{1, 2}))
	require.Equal(t, []byte{'C'}, CellTable.DbKey(nil))
}

func TestOpenLevelDb_CanReopenDirectory(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()
	db, err := OpenLevelDb(dir, nil)
	require.NoError(err)
	require.NoError(db.Put([]byte("key"), []byte("value"), nil))
	require.NoError(db.Close())

	db, err = OpenLevelDb(dir, nil)
	require.NoError(err)
	value, err := db.Get([]byte("key"), nil)
	require.NoError(err)
	require.Equal([]byte("value"), value)
	require.NoError(db.Close())
}
