package session

import (
	"context"
	"sync"
)

// MemoryCredentials holds the admin password hash when no database is configured.
// A change of password does not survive a restart.
type MemoryCredentials struct {
	mu   sync.RWMutex
	hash []byte
}

func NewMemoryCredentials() *MemoryCredentials {
	return &MemoryCredentials{}
}

func (c *MemoryCredentials) PasswordHash(context.Context) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.hash == nil {
		return nil, nil
	}
	return append([]byte(nil), c.hash...), nil
}

func (c *MemoryCredentials) SetPasswordHash(_ context.Context, hash []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hash = append([]byte(nil), hash...)
	return nil
}
