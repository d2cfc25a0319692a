package cache

import (
	"context"
	"sync"
	"time"
)

type item struct {
	value     []byte
	expiresAt time.Time
}

// Memory is a process-local ListCache.
type Memory struct {
	mu    sync.RWMutex
	items map[string]item
	gen   int64
	ttl   time.Duration
	now   func() time.Time
}

// NewMemory creates an in-memory list cache. A non-positive ttl means DefaultTTL.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{items: make(map[string]item), ttl: ttl, now: time.Now}
}

func (m *Memory) Version(context.Context) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gen
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, ok := m.items[key]
	if !ok || m.now().After(it.expiresAt) {
		return nil, false
	}
	return it.value, true
}

func (m *Memory) Set(_ context.Context, version int64, key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if version != m.gen {
		return
	}
	m.items[key] = item{value: value, expiresAt: m.now().Add(m.ttl)}
}

func (m *Memory) Invalidate(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	clear(m.items)
}
