package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
	tags      []string
}

// Memory is an in-process Store for single node deployments and tests.
type Memory struct {
	mu       sync.Mutex
	entries  map[string]memoryEntry
	byTag    map[string]map[string]struct{}
	versions map[string]int64
	now      func() time.Time
}

// NewMemory creates an empty in-process store.
func NewMemory() *Memory {
	return &Memory{
		entries:  make(map[string]memoryEntry),
		byTag:    make(map[string]map[string]struct{}),
		versions: make(map[string]int64),
		now:      time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		m.removeLocked(key)
		return nil, false, nil
	}
	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration, tags ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.setLocked(key, value, ttl, tags)
	return nil
}

func (m *Memory) Version(_ context.Context, tags ...string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.versionLocked(tags), nil
}

func (m *Memory) SetIfVersion(_ context.Context, key string, value []byte, ttl time.Duration, version string, tags ...string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.versionLocked(tags) != version {
		return false, nil
	}
	m.setLocked(key, value, ttl, tags)
	return true, nil
}

func (m *Memory) versionLocked(tags []string) string {
	unique := uniqueTags(tags)
	counters := make([]int64, len(unique))
	for i, tag := range unique {
		counters[i] = m.versions[tag]
	}
	return formatVersion(unique, counters)
}

func (m *Memory) setLocked(key string, value []byte, ttl time.Duration, tags []string) {
	m.removeLocked(key)

	entry := memoryEntry{value: append([]byte(nil), value...), tags: uniqueTags(tags)}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.entries[key] = entry
	for _, tag := range entry.tags {
		keys, ok := m.byTag[tag]
		if !ok {
			keys = make(map[string]struct{})
			m.byTag[tag] = keys
		}
		keys[key] = struct{}{}
	}
}

func (m *Memory) Invalidate(_ context.Context, tags ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, tag := range uniqueTags(tags) {
		m.versions[tag]++
		for key := range m.byTag[tag] {
			m.removeLocked(key)
		}
		delete(m.byTag, tag)
	}
	return nil
}

// Len reports the number of live entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) removeLocked(key string) {
	entry, ok := m.entries[key]
	if !ok {
		return
	}
	delete(m.entries, key)
	for _, tag := range entry.tags {
		if keys, ok := m.byTag[tag]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(m.byTag, tag)
			}
		}
	}
}
