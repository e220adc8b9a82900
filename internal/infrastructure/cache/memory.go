package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a simple in-memory key-value store with expiration
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*memoryItem
	ttl   time.Duration
	done  chan struct{}
}

type memoryItem struct {
	value      string
	expireTime time.Time
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	store := &MemoryStore{
		items: make(map[string]*memoryItem),
		ttl:   ttl,
		done:  make(chan struct{}),
	}

	// Start cleanup goroutine to remove expired items
	go store.cleanupExpired()

	return store
}

// Get retrieves a value by key (returns false if not found or expired)
func (ms *MemoryStore) Get(_ context.Context, key string) (string, bool) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	item, exists := ms.items[resultsKey(key)]
	if !exists {
		return "", false
	}

	if time.Now().After(item.expireTime) {
		return "", false
	}

	return item.value, true
}

// Set stores a key-value pair with the configured expiration
func (ms *MemoryStore) Set(_ context.Context, key string, value string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.items[resultsKey(key)] = &memoryItem{
		value:      value,
		expireTime: time.Now().Add(ms.ttl),
	}
}

// Invalidate removes a key
func (ms *MemoryStore) Invalidate(_ context.Context, key string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.items, resultsKey(key))
}

// Close stops the cleanup goroutine
func (ms *MemoryStore) Close() {
	close(ms.done)
}

// cleanupExpired periodically removes expired items until Close is called
func (ms *MemoryStore) cleanupExpired() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ms.done:
			return
		case <-ticker.C:
			ms.mu.Lock()
			now := time.Now()
			for key, item := range ms.items {
				if now.After(item.expireTime) {
					delete(ms.items, key)
				}
			}
			ms.mu.Unlock()
		}
	}
}
