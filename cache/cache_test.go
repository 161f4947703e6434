// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU(t *testing.T) {
	_, err := NewLRU[int, string]("test", 0)
	assert.Error(t, err)

	c, err := NewLRU[uint64, string]("test", 2)
	require.NoError(t, err)

	loads := 0
	loader := func(k uint64) (string, error) {
		loads++
		if k == 0 {
			return "", errors.New("missing")
		}
		return "v" + string(rune('0'+k)), nil
	}

	v, err := c.GetOrLoad(1, loader)
	require.NoError(t, err)
	assert.Equal(t, "v1", v)
	v, err = c.GetOrLoad(1, loader)
	require.NoError(t, err)
	assert.Equal(t, "v1", v)
	assert.Equal(t, 1, loads)

	_, err = c.GetOrLoad(0, loader)
	assert.Error(t, err)
	_, ok := c.Get(0)
	assert.False(t, ok, "failed loads are not cached")

	c.Add(2, "two")
	c.Add(3, "three")
	_, ok = c.Get(1)
	assert.False(t, ok, "least recently used entry evicted")
	for k, want := range map[uint64]string{2: "two", 3: "three"} {
		v, ok := c.Get(k)
		assert.True(t, ok)
		assert.Equal(t, want, v)
	}

	v, err = c.GetOrLoad(3, loader)
	require.NoError(t, err)
	assert.Equal(t, "three", v, "added entries are served without loading")
	assert.Equal(t, 2, loads)
}
