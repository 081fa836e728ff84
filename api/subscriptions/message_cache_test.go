// Copyright (c) 2026 The Lodestake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageCacheGetOrAdd(t *testing.T) {
	mc := newMessageCache(16)

	calls := 0
	create := func() ([]byte, error) {
		calls++
		return []byte("payload"), nil
	}

	msg, added, err := mc.GetOrAdd(1, create)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, []byte("payload"), msg)

	msg, added, err = mc.GetOrAdd(1, create)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, []byte("payload"), msg)
	assert.Equal(t, 1, calls)

	_, _, err = mc.GetOrAdd(2, func() ([]byte, error) {
		return nil, errors.New("marshal failed")
	})
	assert.Error(t, err)
}

func TestMessageCacheConcurrent(t *testing.T) {
	mc := newMessageCache(16)

	var mu sync.Mutex
	calls := 0

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			msg, _, err := mc.GetOrAdd(7, func() ([]byte, error) {
				mu.Lock()
				calls++
				mu.Unlock()
				return []byte("once"), nil
			})
			assert.NoError(t, err)
			assert.Equal(t, []byte("once"), msg)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, calls)
}

func TestMessageCacheSizeBounds(t *testing.T) {
	assert.NotPanics(t, func() { newMessageCache(0) })
	assert.NotPanics(t, func() { newMessageCache(5000) })
}
