package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-process ObjectStore for tests and local runs.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	types   map[string]string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *MemoryStore) Get(_ context.Context, bucket, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.objects[URI(bucket, key)]
	if !ok {
		return nil, fmt.Errorf("failed to get object: %s not found", URI(bucket, key))
	}
	return append([]byte(nil), b...), nil
}

func (m *MemoryStore) Put(_ context.Context, bucket, key, contentType string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[URI(bucket, key)] = append([]byte(nil), body...)
	m.types[URI(bucket, key)] = contentType
	return nil
}

// ContentType returns the content type recorded for an object.
func (m *MemoryStore) ContentType(bucket, key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.types[URI(bucket, key)]
}
