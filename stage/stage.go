// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stage buffers writes against a kv.Store so that one invocation
// either commits all of its mutations or none of them.
package stage

import (
	"bytes"
	"sort"

	"github.com/pkg/errors"

	"github.com/wenruji/decaygame/kv"
	"github.com/wenruji/decaygame/stackedmap"
)

var errNotFound = errors.New("stage: not found")

var _ kv.Store = (*Stage)(nil)

type entry struct {
	data    []byte
	deleted bool
}

// Stage is a transactional overlay on top of a base store.
// Reads see staged writes first, then the base.
type Stage struct {
	base kv.Store
	sm   *stackedmap.StackedMap[string, entry]
}

// New creates a stage over base.
func New(base kv.Store) *Stage {
	s := &Stage{base: base}
	s.sm = stackedmap.New(func(key string) (entry, bool, error) {
		v, err := base.Get([]byte(key))
		if err != nil {
			if base.IsNotFound(err) {
				return entry{}, false, nil
			}
			return entry{}, false, err
		}
		return entry{data: v}, true, nil
	})
	s.sm.Push()
	return s
}

// IsNotFound reports whether err means the key is absent.
func (s *Stage) IsNotFound(err error) bool {
	return errors.Is(err, errNotFound) || s.base.IsNotFound(err)
}

func (s *Stage) Get(key []byte) ([]byte, error) {
	e, ok, err := s.sm.Get(string(key))
	if err != nil {
		return nil, err
	}
	if !ok || e.deleted {
		return nil, errNotFound
	}
	return e.data, nil
}

func (s *Stage) Has(key []byte) (bool, error) {
	e, ok, err := s.sm.Get(string(key))
	if err != nil {
		return false, err
	}
	return ok && !e.deleted, nil
}

func (s *Stage) Put(key, val []byte) error {
	s.sm.Put(string(key), entry{data: bytes.Clone(val)})
	return nil
}

func (s *Stage) Delete(key []byte) error {
	s.sm.Put(string(key), entry{deleted: true})
	return nil
}

// Bulk returns a bulk that lands in the stage on Write.
func (s *Stage) Bulk() kv.Bulk {
	return &stageBulk{stage: s}
}

// Discard drops all staged writes.
func (s *Stage) Discard() {
	s.sm.PopTo(0)
	s.sm.Push()
}

// Changes returns the number of distinct keys touched.
func (s *Stage) Changes() int {
	return len(s.latest())
}

func (s *Stage) latest() map[string]entry {
	changes := make(map[string]entry)
	s.sm.Journal(func(key string, e entry) bool {
		changes[key] = e
		return true
	})
	return changes
}

// Commit writes all staged changes to the base store in a single bulk,
// then clears the stage.
func (s *Stage) Commit() error {
	changes := s.latest()
	if len(changes) == 0 {
		return nil
	}
	keys := make([]string, 0, len(changes))
	for k := range changes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	bulk := s.base.Bulk()
	for _, k := range keys {
		e := changes[k]
		var err error
		if e.deleted {
			err = bulk.Delete([]byte(k))
		} else {
			err = bulk.Put([]byte(k), e.data)
		}
		if err != nil {
			return errors.Wrap(err, "stage commit")
		}
	}
	if err := bulk.Write(); err != nil {
		return errors.Wrap(err, "stage commit")
	}
	s.Discard()
	return nil
}

// Iterate merges the base range with staged writes. Staged deletes hide base keys.
func (s *Stage) Iterate(r kv.Range) kv.Iterator {
	changes := s.latest()
	overlay := make([]pair, 0, len(changes))
	for k, e := range changes {
		key := []byte(k)
		if bytes.Compare(key, r.Start) < 0 {
			continue
		}
		if len(r.Limit) > 0 && bytes.Compare(key, r.Limit) >= 0 {
			continue
		}
		overlay = append(overlay, pair{key: key, entry: e})
	}
	sort.Slice(overlay, func(i, j int) bool { return bytes.Compare(overlay[i].key, overlay[j].key) < 0 })

	return &mergedIter{base: s.base.Iterate(r), overlay: overlay}
}

type pair struct {
	key []byte
	entry
}

type mergedIter struct {
	base    kv.Iterator
	baseOK  bool
	started bool
	overlay []pair
	pos     int
	key     []byte
	value   []byte
}

func (it *mergedIter) Next() bool {
	if !it.started {
		it.baseOK = it.base.Next()
		it.started = true
	}
	for {
		var baseKey []byte
		if it.baseOK {
			baseKey = it.base.Key()
		}
		switch {
		case it.pos < len(it.overlay) && (!it.baseOK || bytes.Compare(it.overlay[it.pos].key, baseKey) <= 0):
			p := it.overlay[it.pos]
			it.pos++
			if it.baseOK && bytes.Equal(p.key, baseKey) {
				it.baseOK = it.base.Next()
			}
			if p.deleted {
				continue
			}
			it.key, it.value = p.key, p.data
			return true
		case it.baseOK:
			it.key = bytes.Clone(baseKey)
			it.value = bytes.Clone(it.base.Value())
			it.baseOK = it.base.Next()
			return true
		default:
			it.key, it.value = nil, nil
			return false
		}
	}
}

func (it *mergedIter) Key() []byte   { return it.key }
func (it *mergedIter) Value() []byte { return it.value }
func (it *mergedIter) Release()      { it.base.Release() }
func (it *mergedIter) Error() error  { return it.base.Error() }

type stageBulk struct {
	stage *Stage
	ops   []pair
}

func (b *stageBulk) Put(key, val []byte) error {
	b.ops = append(b.ops, pair{key: bytes.Clone(key), entry: entry{data: bytes.Clone(val)}})
	return nil
}

func (b *stageBulk) Delete(key []byte) error {
	b.ops = append(b.ops, pair{key: bytes.Clone(key), entry: entry{deleted: true}})
	return nil
}

func (b *stageBulk) Write() error {
	for _, op := range b.ops {
		b.stage.sm.Put(string(op.key), op.entry)
	}
	b.ops = b.ops[:0]
	return nil
}
