package persist

import (
	"encoding/json"
	"sync"
)

// MemoryStore keeps encoded documents in a map. It round-trips through JSON so
// it behaves like DiskStore for time fields and aliasing.
type MemoryStore struct {
	mu    sync.RWMutex
	docs  map[string][]byte
	saves int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: map[string][]byte{}}
}

func (m *MemoryStore) Save(key string, v any) error {
	if key == "" {
		return ErrEmptyKey
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key] = b
	m.saves++
	return nil
}

func (m *MemoryStore) Load(key string, v any) (bool, error) {
	m.mu.RLock()
	b, ok := m.docs[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, v)
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, key)
	return nil
}

// Raw returns the stored document for key.
func (m *MemoryStore) Raw(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.docs[key]
	return b, ok
}

// Saves counts successful writes.
func (m *MemoryStore) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}
