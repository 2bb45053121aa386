package store

import (
	"context"
	"sync"
)

// Memory is an in-process store. The zero value is not usable; call
// NewMemory.
type Memory struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemory allocates an empty memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]Record)}
}

func (m *Memory) Lookup(_ context.Context, key string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[key]
	if !ok {
		return Record{}, ErrNotFound
	}
	return r, nil
}

func (m *Memory) Save(_ context.Context, key string, r Record) error {
	if err := validate(key, r); err != nil {
		return err
	}
	m.mu.Lock()
	m.records[key] = r
	m.mu.Unlock()
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.records, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Keys(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.records))
	for k := range m.records {
		keys = append(keys, k)
	}
	return sorted(keys), nil
}
