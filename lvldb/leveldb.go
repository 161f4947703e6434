// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package lvldb is the goleveldb backed kv.Store holding every contract's state.
package lvldb

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/wenruji/decaygame/kv"
	"github.com/wenruji/decaygame/metrics"
)

var _ kv.Store = (*LevelDB)(nil)

var metricOps = metrics.LazyLoadCounterVec("lvldb_ops_count", []string{"op"})

const minCacheMiB = 16

// Options tunes the underlying level db. Zero values pick the minimum.
type Options struct {
	CacheSize              int // MiB
	OpenFilesCacheCapacity int
}

func (o Options) toLevelDB() *opt.Options {
	cache := max(o.CacheSize, minCacheMiB)
	return &opt.Options{
		OpenFilesCacheCapacity: max(o.OpenFilesCacheCapacity, minCacheMiB),
		BlockCacheCapacity:     cache / 2 * opt.MiB,
		WriteBuffer:            cache / 4 * opt.MiB,
		Filter:                 filter.NewBloomFilter(10),
	}
}

// LevelDB is a kv.Store over goleveldb. Single writes are not synced;
// bulk writes are, since a bulk is the unit a committed call lands as.
type LevelDB struct {
	db  *leveldb.DB
	stg storage.Storage
}

// New opens the level db at path, creating it when absent.
func New(path string, opts Options) (*LevelDB, error) {
	stg, err := storage.OpenFile(path, false)
	if err != nil {
		return nil, errors.Wrap(err, "open level db storage")
	}
	return open(stg, opts)
}

// NewMem creates a level db in memory.
func NewMem() (*LevelDB, error) {
	return open(storage.NewMemStorage(), Options{})
}

func open(stg storage.Storage, opts Options) (*LevelDB, error) {
	db, err := leveldb.Open(stg, opts.toLevelDB())
	if err != nil {
		stg.Close()
		return nil, errors.Wrap(err, "open level db")
	}
	return &LevelDB{db: db, stg: stg}, nil
}

// IsNotFound reports whether err is the missing key error of Get.
func (ldb *LevelDB) IsNotFound(err error) bool {
	return errors.Is(err, leveldb.ErrNotFound)
}

func (ldb *LevelDB) Get(key []byte) ([]byte, error) {
	metricOps().AddWithLabel(1, map[string]string{"op": "get"})
	return ldb.db.Get(key, nil)
}

func (ldb *LevelDB) Has(key []byte) (bool, error) {
	metricOps().AddWithLabel(1, map[string]string{"op": "has"})
	return ldb.db.Has(key, nil)
}

func (ldb *LevelDB) Put(key, value []byte) error {
	metricOps().AddWithLabel(1, map[string]string{"op": "put"})
	return ldb.db.Put(key, value, nil)
}

func (ldb *LevelDB) Delete(key []byte) error {
	metricOps().AddWithLabel(1, map[string]string{"op": "delete"})
	return ldb.db.Delete(key, nil)
}

// Close closes the db and releases its storage, file lock included.
// Later operations all fail.
func (ldb *LevelDB) Close() error {
	err := ldb.db.Close()
	if serr := ldb.stg.Close(); err == nil {
		err = serr
	}
	return err
}

// Bulk creates an atomic batch.
func (ldb *LevelDB) Bulk() kv.Bulk {
	return &levelDBBulk{db: ldb.db, batch: new(leveldb.Batch)}
}

// Iterate iterates the keys in [r.Start, r.Limit). Nil bounds are open.
func (ldb *LevelDB) Iterate(r kv.Range) kv.Iterator {
	metricOps().AddWithLabel(1, map[string]string{"op": "iterate"})
	return ldb.db.NewIterator(&util.Range{Start: r.Start, Limit: r.Limit}, nil)
}

type levelDBBulk struct {
	db    *leveldb.DB
	batch *leveldb.Batch
}

func (b *levelDBBulk) Put(key, value []byte) error {
	b.batch.Put(key, value)
	return nil
}

func (b *levelDBBulk) Delete(key []byte) error {
	b.batch.Delete(key)
	return nil
}

// Len returns the number of queued ops.
func (b *levelDBBulk) Len() int {
	return b.batch.Len()
}

// Write applies the queued ops atomically and syncs them to disk.
func (b *levelDBBulk) Write() error {
	metricOps().AddWithLabel(int64(b.batch.Len()), map[string]string{"op": "bulk"})
	if err := b.db.Write(b.batch, &opt.WriteOptions{Sync: true}); err != nil {
		return errors.Wrap(err, "write bulk")
	}
	b.batch.Reset()
	return nil
}
