package ratelimit

import (
	"context"
	"sync"
	"time"
)

const sweepInterval = 10 * time.Minute

type entry struct {
	count   int
	resetAt time.Time
}

// Memory is a process-local limiter. Counters are lost on restart.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time

	stopCh chan struct{}
	once   sync.Once
}

// NewMemory creates a limiter that keeps its windows in process memory.
func NewMemory() *Memory {
	m := &Memory{
		entries: make(map[string]entry),
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	go m.sweepLoop()
	return m
}

func (m *Memory) Allow(_ context.Context, key string, p Policy) Decision {
	if p.Limit <= 0 {
		return Decision{Allowed: true}
	}
	key = p.Key(key)
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || now.After(e.resetAt) {
		e = entry{count: 1, resetAt: now.Add(p.Window)}
		m.entries[key] = e
		return Decision{Allowed: true, Remaining: remaining(p.Limit, e.count), ResetAt: e.resetAt}
	}
	if e.count >= p.Limit {
		return Decision{Allowed: false, Remaining: 0, ResetAt: e.resetAt}
	}
	e.count++
	m.entries[key] = e
	return Decision{Allowed: true, Remaining: remaining(p.Limit, e.count), ResetAt: e.resetAt}
}

func (m *Memory) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.sweep(m.now())
		case <-m.stopCh:
			return
		}
	}
}

// sweep drops entries whose window has passed.
func (m *Memory) sweep(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, e := range m.entries {
		if now.After(e.resetAt) {
			delete(m.entries, key)
		}
	}
}

func (m *Memory) Close() error {
	m.once.Do(func() {
		close(m.stopCh)
	})
	return nil
}
