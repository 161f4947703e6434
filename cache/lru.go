// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package cache holds typed in-memory caches for immutable data, such as
// archived round snapshots.
package cache

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/wenruji/decaygame/metrics"
)

var metricLookups = metrics.LazyLoadCounterVec("cache_lookups_count", []string{"cache", "result"})

// LRU is a typed LRU cache over golang-lru. Lookups through GetOrLoad are
// counted per cache name.
type LRU[K comparable, V any] struct {
	name  string
	cache *lru.Cache
}

// NewLRU creates a cache holding at most maxSize entries.
// maxSize should be > 0, or an error returned.
func NewLRU[K comparable, V any](name string, maxSize int) (*LRU[K, V], error) {
	cache, err := lru.New(maxSize)
	if err != nil {
		return nil, err
	}
	return &LRU[K, V]{name: name, cache: cache}, nil
}

func (l *LRU[K, V]) Get(key K) (V, bool) {
	if v, ok := l.cache.Get(key); ok {
		return v.(V), true
	}
	var zero V
	return zero, false
}

func (l *LRU[K, V]) Add(key K, value V) {
	l.cache.Add(key, value)
}

// GetOrLoad returns the cached value of key, or loads and caches it.
// Failed loads are not cached.
func (l *LRU[K, V]) GetOrLoad(key K, loader func(key K) (V, error)) (V, error) {
	if v, ok := l.Get(key); ok {
		metricLookups().AddWithLabel(1, map[string]string{"cache": l.name, "result": "hit"})
		return v, nil
	}
	metricLookups().AddWithLabel(1, map[string]string{"cache": l.name, "result": "miss"})
	v, err := loader(key)
	if err != nil {
		var zero V
		return zero, err
	}
	l.Add(key, v)
	return v, nil
}
