package ratelimit

import "time"

// SetClock replaces the time source of a Memory limiter.
func (m *Memory) SetClock(now func() time.Time) { m.now = now }

// Sweep runs a single cleanup pass.
func (m *Memory) Sweep() { m.sweep() }

// Len returns the number of tracked keys.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.entries)
}
