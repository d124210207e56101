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
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// TableSpace separates the key spaces of components sharing a single
// LevelDB instance. It is used as the first byte of every key.
type TableSpace byte

// CellTable holds serialized cell records keyed by representation hash.
const CellTable TableSpace = 'C'

// DbKey prefixes key with the table space.
func (t TableSpace) DbKey(key []byte) []byte {
	res := make([]byte, 0, 1+len(key))
	res = append(res, byte(t))
	return append(res, key...)
}

// OpenLevelDb opens or creates a LevelDB instance in the given directory.
// A nil options value selects the defaults with compression disabled since
// depots compress values themselves.
func OpenLevelDb(path string, options *opt.Options) (*leveldb.DB, error) {
	if options == nil {
		options = &opt.Options{Compression: opt.NoCompression}
	}
	return leveldb.OpenFile(path, options)
}
