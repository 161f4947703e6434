// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/wenruji/decaygame/types"
)

type Key interface {
	Bytes() []byte
}

// KeyDecoder turns stored key bytes back into a key.
type KeyDecoder[K Key] func(raw []byte) (K, error)

// StringKey is a variable length key. Use it as the last component only.
type StringKey string

func (k StringKey) Bytes() []byte { return []byte(k) }

// Uint64Key is encoded big-endian so that iteration follows numeric order.
type Uint64Key uint64

func (k Uint64Key) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(k))
}

func DecodeString(raw []byte) (StringKey, error) {
	return StringKey(raw), nil
}

func DecodeUint64(raw []byte) (Uint64Key, error) {
	if len(raw) != 8 {
		return 0, errors.Errorf("invalid uint64 key length %d", len(raw))
	}
	return Uint64Key(binary.BigEndian.Uint64(raw)), nil
}

func DecodeAddress(raw []byte) (types.Address, error) {
	if len(raw) != types.AddressLength {
		return types.Address{}, errors.Errorf("invalid address key length %d", len(raw))
	}
	return types.BytesToAddress(raw), nil
}
