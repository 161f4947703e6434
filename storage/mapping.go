// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/wenruji/decaygame/kv"
)

// Mapping is a typed key/value table living in its own bucket.
// Values are RLP encoded.
type Mapping[K Key, V any] struct {
	store  kv.Store
	decode KeyDecoder[K]
}

func NewMapping[K Key, V any](src kv.Store, bucket kv.Bucket, decode KeyDecoder[K]) *Mapping[K, V] {
	return &Mapping[K, V]{store: bucket.NewStore(src), decode: decode}
}

func newValue[V any]() (value V) {
	if reflect.ValueOf(value).Kind() == reflect.Ptr {
		value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
	}
	return
}

// Get returns the value for key, or a zero value when absent.
// Pointer values are never nil.
func (m *Mapping[K, V]) Get(key K) (V, error) {
	value, _, err := m.MayGet(key)
	return value, err
}

// MayGet returns the value and whether it was present.
func (m *Mapping[K, V]) MayGet(key K) (V, bool, error) {
	value := newValue[V]()
	raw, err := m.store.Get(key.Bytes())
	if err != nil {
		if m.store.IsNotFound(err) {
			return value, false, nil
		}
		return value, false, errors.Wrap(err, "mapping get")
	}
	if err := rlp.DecodeBytes(raw, &value); err != nil {
		return value, false, errors.Wrap(err, "mapping decode")
	}
	return value, true, nil
}

func (m *Mapping[K, V]) Has(key K) (bool, error) {
	return m.store.Has(key.Bytes())
}

func (m *Mapping[K, V]) Set(key K, value V) error {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return errors.Wrap(err, "mapping encode")
	}
	return m.store.Put(key.Bytes(), raw)
}

func (m *Mapping[K, V]) Delete(key K) error {
	return m.store.Delete(key.Bytes())
}

// Iterate visits entries in ascending key order until fn returns false.
func (m *Mapping[K, V]) Iterate(fn func(key K, value V) (bool, error)) error {
	return m.iterate(kv.Range{}, fn)
}

// IteratePrefix visits entries whose key starts with prefix.
func (m *Mapping[K, V]) IteratePrefix(prefix []byte, fn func(key K, value V) (bool, error)) error {
	return m.iterate(kv.PrefixRange(prefix), fn)
}

func (m *Mapping[K, V]) iterate(r kv.Range, fn func(key K, value V) (bool, error)) error {
	it := m.store.Iterate(r)
	defer it.Release()
	for it.Next() {
		key, err := m.decode(it.Key())
		if err != nil {
			return err
		}
		value := newValue[V]()
		if err := rlp.DecodeBytes(it.Value(), &value); err != nil {
			return errors.Wrap(err, "mapping decode")
		}
		cont, err := fn(key, value)
		if err != nil {
			return err
		}
		if !cont {
			break
		}
	}
	return it.Error()
}

// Keys returns all keys in ascending order.
func (m *Mapping[K, V]) Keys() ([]K, error) {
	var keys []K
	it := m.store.Iterate(kv.Range{})
	defer it.Release()
	for it.Next() {
		key, err := m.decode(it.Key())
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, it.Error()
}

// Clear deletes every entry of the mapping.
func (m *Mapping[K, V]) Clear() error {
	keys, err := m.Keys()
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := m.Delete(key); err != nil {
			return err
		}
	}
	return nil
}
