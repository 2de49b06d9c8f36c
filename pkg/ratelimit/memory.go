package ratelimit

import (
	"context"
	"sync"
	"time"
)

const sweepInterval = 5 * time.Minute

type window struct {
	count int
	end   time.Time
}

// Memory is an in-process Limiter. Counters are lost on restart and are not
// shared between replicas.
type Memory struct {
	mu      sync.Mutex
	entries map[string]window
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

var _ Limiter = (*Memory)(nil)

// NewMemory starts a Memory limiter with a background sweeper. Call Close to
// stop it.
func NewMemory() *Memory {
	m := &Memory{
		entries: make(map[string]window),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go m.sweepLoop()

	return m
}

func (m *Memory) Allow(_ context.Context, key string, limit int, win time.Duration) Decision {
	unlimited, win := normalize(limit, win)
	if unlimited {
		return Decision{Allowed: true, Limit: limit}
	}

	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.entries[key]
	if !ok || !now.Before(w.end) {
		w = window{count: 1, end: now.Add(win)}
		m.entries[key] = w

		return Decision{Allowed: true, Count: 1, Limit: limit, ResetAt: w.end}
	}
	if w.count >= limit {
		return Decision{Allowed: false, Count: w.count, Limit: limit, ResetAt: w.end}
	}

	w.count++
	m.entries[key] = w

	return Decision{Allowed: true, Count: w.count, Limit: limit, ResetAt: w.end}
}

func (m *Memory) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.sweep()
		case <-m.stop:
			return
		}
	}
}

func (m *Memory) sweep() {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, w := range m.entries {
		if !now.Before(w.end) {
			delete(m.entries, key)
		}
	}
}

func (m *Memory) Close() error {
	m.once.Do(func() { close(m.stop) })

	return nil
}
