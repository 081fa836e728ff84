// Copyright (c) 2026 The Lodestake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"fmt"
	"strconv"
	"sync"

	lru "github.com/hashicorp/golang-lru"
)

// messageCache keeps marshaled event messages so concurrent subscribers
// encode each event once.
type messageCache struct {
	cache *lru.Cache
	mu    sync.RWMutex
}

func newMessageCache(cacheSize uint32) *messageCache {
	if cacheSize > 1000 {
		cacheSize = 1000
	}
	if cacheSize == 0 {
		cacheSize = 1
	}
	cache, err := lru.New(int(cacheSize))
	if err != nil {
		// lru.New only throws an error if the number is less than 1
		panic(fmt.Errorf("failed to create message cache: %v", err))
	}
	return &messageCache{
		cache: cache,
	}
}

// GetOrAdd returns the message for the sequence number, generating and
// caching it on first use. The second return value indicates whether the
// message is newly generated.
func (mc *messageCache) GetOrAdd(seq uint64, createMessage func() ([]byte, error)) ([]byte, bool, error) {
	key := strconv.FormatUint(seq, 10)
	mc.mu.RLock()
	msg, ok := mc.cache.Get(key)
	mc.mu.RUnlock()
	if ok {
		return msg.([]byte), false, nil
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()
	msg, ok = mc.cache.Get(key)
	if ok {
		return msg.([]byte), false, nil
	}

	msg, err := createMessage()
	if err != nil {
		return nil, false, err
	}
	mc.cache.Add(key, msg)
	return msg.([]byte), true, nil
}
