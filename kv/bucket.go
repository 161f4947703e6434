// Copyright (c) 2021 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import "bytes"

// Bucket is a key prefix that carves a namespace out of a store. Buckets
// nest: a bucket store over another bucket store prefixes both.
type Bucket string

func (b Bucket) key(key []byte) []byte {
	k := make([]byte, 0, len(b)+len(key))
	return append(append(k, b...), key...)
}

// NewStore returns the view of src restricted to the bucket. Keys seen
// through the view have the prefix stripped.
func (b Bucket) NewStore(src Store) Store {
	return &bucketStore{b: b, src: src}
}

type bucketStore struct {
	b   Bucket
	src Store
}

func (s *bucketStore) Get(key []byte) ([]byte, error) { return s.src.Get(s.b.key(key)) }
func (s *bucketStore) Has(key []byte) (bool, error)   { return s.src.Has(s.b.key(key)) }
func (s *bucketStore) Put(key, val []byte) error      { return s.src.Put(s.b.key(key), val) }
func (s *bucketStore) Delete(key []byte) error        { return s.src.Delete(s.b.key(key)) }
func (s *bucketStore) IsNotFound(err error) bool      { return s.src.IsNotFound(err) }

func (s *bucketStore) Bulk() Bulk {
	return &bucketBulk{b: s.b, src: s.src.Bulk()}
}

func (s *bucketStore) Iterate(r Range) Iterator {
	full := Range{Start: s.b.key(r.Start)}
	if len(r.Limit) == 0 {
		full.Limit = PrefixRange([]byte(s.b)).Limit
	} else {
		full.Limit = s.b.key(r.Limit)
	}
	return &bucketIter{n: len(s.b), Iterator: s.src.Iterate(full)}
}

type bucketBulk struct {
	b   Bucket
	src Bulk
}

func (w *bucketBulk) Put(key, val []byte) error { return w.src.Put(w.b.key(key), val) }
func (w *bucketBulk) Delete(key []byte) error   { return w.src.Delete(w.b.key(key)) }
func (w *bucketBulk) Write() error              { return w.src.Write() }

// bucketIter strips the bucket from the keys of the wrapped iterator.
type bucketIter struct {
	Iterator
	n int
}

func (it *bucketIter) Key() []byte {
	return bytes.Clone(it.Iterator.Key()[it.n:])
}
