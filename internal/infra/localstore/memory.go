package localstore

import (
	"context"
	"sync"
)

// MemoryKV is a process-local slot store, lost on restart.
type MemoryKV struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{slots: map[string][]byte{}}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	raw, ok := m.slots[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), raw...), nil
}

func (m *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[key] = append([]byte(nil), value...)
	return nil
}
