// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package address implements internal account addresses as stored in cells:
// a workchain identifier and a 256-bit account hash.
package address

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/0xsoniclabs/cellar/common"
	"github.com/0xsoniclabs/cellar/database/cell/bits"
)

// Bits is the serialized size of an internal address without anycast.
const Bits = 2 + 1 + 8 + 256

var ErrInvalidAddress = errors.New("address: invalid address")

// Address identifies an account within a workchain.
type Address struct {
	Workchain int8
	Hash      common.Hash
}

func New(workchain int8, hash common.Hash) *Address {
	return &Address{Workchain: workchain, Hash: hash}
}

// String renders the raw form, the workchain and the lower case hex hash
// separated by a colon.
func (a *Address) String() string {
	return fmt.Sprintf("%d:%s", a.Workchain, hex.EncodeToString(a.Hash[:]))
}

func (a *Address) Equal(other *Address) bool {
	return a.Workchain == other.Workchain && a.Hash == other.Hash
}

// ParseRaw parses the form produced by String.
func ParseRaw(s string) (*Address, error) {
	wc, hash, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		return nil, fmt.Errorf("%w: %q lacks workchain separator", ErrInvalidAddress, s)
	}
	workchain, err := strconv.ParseInt(wc, 10, 8)
	if err != nil {
		return nil, fmt.Errorf("%w: workchain %q: %w", ErrInvalidAddress, wc, err)
	}
	h, err := common.HashFromHex(hash)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	return New(int8(workchain), h), nil
}

// Write stores an internal address, tag 10, no anycast, 8-bit workchain and
// the account hash. A nil address is stored as the empty address tag 00.
func Write(b *bits.Builder, addr *Address) error {
	if addr == nil {
		return b.WriteUint(0, 2)
	}
	if b.Available() < Bits {
		return fmt.Errorf("%w: address needs %d bits, %d available", bits.ErrOverflow, Bits, b.Available())
	}
	// capacity was checked, none of the writes below can fail
	_ = b.WriteUint(2, 2)
	_ = b.WriteBit(false)
	_ = b.WriteInt(int64(addr.Workchain), 8)
	return b.WriteBuffer(addr.Hash[:])
}

// Read loads an address written by Write. The empty address yields nil.
// External and variable length addresses are not supported.
func Read(r *bits.Reader) (*Address, error) {
	tag, err := r.PreloadUint(2)
	if err != nil {
		return nil, err
	}
	switch tag {
	case 0:
		return nil, r.Skip(2)
	case 2:
	default:
		return nil, fmt.Errorf("%w: unsupported address tag %02b", ErrInvalidAddress, tag)
	}
	if r.Remaining() < Bits {
		return nil, fmt.Errorf("%w: address needs %d bits, %d left", bits.ErrOutOfBounds, Bits, r.Remaining())
	}
	peek := r.Clone()
	_ = peek.Skip(2)
	if anycast, _ := peek.LoadBit(); anycast {
		return nil, fmt.Errorf("%w: anycast addresses are not supported", ErrInvalidAddress)
	}
	workchain, _ := peek.LoadInt(8)
	hash, _ := peek.LoadBuffer(common.HashSize)
	_ = r.Skip(Bits)

	res := &Address{Workchain: int8(workchain)}
	copy(res.Hash[:], hash)
	return res, nil
}
