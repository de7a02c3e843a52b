// Package store – in-memory implementation.
package store

import (
	"context"
	"strconv"
	"sync"
	"time"
)

type memEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// Memory is a process-local Store used in tests and as the degraded mode
// when Redis is unreachable at startup. TTLs are honored lazily on read.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memEntry
	zsets   map[string]map[string]float64
	now     func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memEntry),
		zsets:   make(map[string]map[string]float64),
		now:     time.Now,
	}
}

// Get returns the value for key, or ErrMiss if absent or expired.
func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return "", ErrMiss
	}
	if !e.expiresAt.IsZero() && m.now().After(e.expiresAt) {
		delete(m.entries, key)
		return "", ErrMiss
	}
	return e.value, nil
}

// Set stores value under key with the given TTL (<= 0 means no expiry).
func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := memEntry{value: value}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}

// Incr increments the integer counter at key, starting from 0.
func (m *Memory) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, _ := strconv.ParseInt(m.entries[key].value, 10, 64)
	n++
	m.entries[key] = memEntry{value: strconv.FormatInt(n, 10)}
	return n, nil
}

// Del removes key.
func (m *Memory) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// ZIncr increments member's score by one in the sorted set at key.
func (m *Memory) ZIncr(_ context.Context, key, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	z, ok := m.zsets[key]
	if !ok {
		z = make(map[string]float64)
		m.zsets[key] = z
	}
	z[member]++
	return nil
}

// Score returns member's score in the sorted set at key. Test helper.
func (m *Memory) Score(key, member string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.zsets[key][member]
}
