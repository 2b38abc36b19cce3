package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter counts requests per key in fixed windows. A key's window
// opens with its first request and admits max requests until it closes;
// the next request after that opens a fresh window. Closed windows are
// dropped on the next sweep.
type MemoryLimiter struct {
	mu        sync.Mutex
	windows   map[string]*window
	max       int
	length    time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type window struct {
	start time.Time
	count int
}

var _ Limiter = (*MemoryLimiter)(nil)

func NewMemoryLimiter(max int, length time.Duration) *MemoryLimiter {
	if max <= 0 {
		max = DefaultMax
	}
	if length <= 0 {
		length = DefaultWindow
	}
	return &MemoryLimiter{
		windows: make(map[string]*window),
		max:     max,
		length:  length,
		now:     time.Now,
	}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweep(now)

	w, ok := m.windows[key]
	if !ok || m.closed(w, now) {
		w = &window{start: now}
		m.windows[key] = w
	}
	w.count++

	return w.count <= m.max, nil
}

func (m *MemoryLimiter) closed(w *window, now time.Time) bool {
	return !now.Before(w.start.Add(m.length))
}

func (m *MemoryLimiter) sweep(now time.Time) {
	if now.Sub(m.lastSweep) < m.length {
		return
	}
	m.lastSweep = now
	for key, w := range m.windows {
		if m.closed(w, now) {
			delete(m.windows, key)
		}
	}
}
