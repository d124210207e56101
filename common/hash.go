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
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// HashSize is the width of a cell representation hash in bytes.
const HashSize = 32

// Hash is a SHA-256 digest of a cell representation.
type Hash [HashSize]byte

// String renders the hash as 0x-prefixed lower case hex.
func (h Hash) String() string {
	return hexutil.Encode(h[:])
}

// Hex renders the hash as upper case hex without prefix, the form used by
// block explorers and the text dump of cells.
func (h Hash) Hex() string {
	return strings.ToUpper(hex.EncodeToString(h[:]))
}

// Bytes returns a copy of the hash as a byte slice.
func (h Hash) Bytes() []byte {
	return append([]byte(nil), h[:]...)
}

func (h Hash) IsZero() bool {
	return h == Hash{}
}

// HashFromHex parses a hash from hex, with or without 0x prefix.
func HashFromHex(s string) (Hash, error) {
	var res Hash
	s = strings.TrimSpace(s)
	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		data, err = hexutil.Decode(strings.ToLower(s[:2]) + s[2:])
	} else {
		data, err = hex.DecodeString(s)
	}
	if err != nil {
		return res, fmt.Errorf("invalid hash %q: %w", s, err)
	}
	if len(data) != HashSize {
		return res, fmt.Errorf("invalid hash %q: expected %d bytes, got %d", s, HashSize, len(data))
	}
	copy(res[:], data)
	return res, nil
}
