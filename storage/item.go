// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/wenruji/decaygame/kv"
)

// Item is a single RLP encoded value stored under a fixed key.
type Item[V any] struct {
	store kv.Store
	key   []byte
}

func NewItem[V any](src kv.Store, key string) *Item[V] {
	return &Item[V]{store: src, key: []byte(key)}
}

// Get returns the stored value, or a zero value when absent.
func (i *Item[V]) Get() (V, error) {
	value, _, err := i.MayGet()
	return value, err
}

func (i *Item[V]) MayGet() (V, bool, error) {
	value := newValue[V]()
	raw, err := i.store.Get(i.key)
	if err != nil {
		if i.store.IsNotFound(err) {
			return value, false, nil
		}
		return value, false, errors.Wrapf(err, "item %s get", i.key)
	}
	if err := rlp.DecodeBytes(raw, &value); err != nil {
		return value, false, errors.Wrapf(err, "item %s decode", i.key)
	}
	return value, true, nil
}

func (i *Item[V]) Set(value V) error {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return errors.Wrapf(err, "item %s encode", i.key)
	}
	return i.store.Put(i.key, raw)
}

func (i *Item[V]) Delete() error {
	return i.store.Delete(i.key)
}
