package cart

import (
	"context"
	"sync"
)

type MemoryStorage struct {
	mu sync.RWMutex
	m  map[string][]byte
}

func NewMemoryStorage() *MemoryStorage { return &MemoryStorage{m: map[string][]byte{}} }

func (m *MemoryStorage) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.m[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStorage) Put(_ context.Context, key string, payload []byte) error {
	m.mu.Lock()
	m.m[key] = append([]byte(nil), payload...)
	m.mu.Unlock()
	return nil
}
