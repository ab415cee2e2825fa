package cache

import (
	"context"
	"sync"
	"time"
)

const (
	defaultMaxEntries = 10000
	defaultTTL        = 30 * time.Minute
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// Memory is a bounded in-memory cache. When full it evicts the oldest entry,
// so a pathological discovery cannot grow it without limit.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	order      []string
	maxEntries int
	ttl        time.Duration

	now func() time.Time
}

// NewMemory creates a bounded cache. Non-positive maxEntries or ttl fall
// back to the defaults.
func NewMemory(maxEntries int, ttl time.Duration) *Memory {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}

	if ttl <= 0 {
		ttl = defaultTTL
	}

	return &Memory{
		entries:    make(map[string]memoryEntry),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}

	if m.now().After(entry.expiresAt) {
		delete(m.entries, key)

		return "", false, nil
	}

	return entry.value, true, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists {
		for len(m.entries) >= m.maxEntries && len(m.order) > 0 {
			oldest := m.order[0]
			m.order = m.order[1:]

			delete(m.entries, oldest)
		}

		m.order = append(m.order, key)
	}

	m.entries[key] = memoryEntry{value: value, expiresAt: m.now().Add(m.ttl)}

	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)

	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]memoryEntry)
	m.order = nil

	return nil
}
