package kv

import (
	"context"
	"sync"

	"github.com/pbaille/thoughts/internal/domain"
)

// Memory is an in-process Store, used by tests and the "memory" backend
type Memory struct {
	mu    sync.RWMutex
	slots map[string][]byte
	hub   *hub
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{slots: make(map[string][]byte), hub: newHub()}
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.slots[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	m.slots[key] = append([]byte(nil), value...)
	m.mu.Unlock()

	m.hub.publish(key, value)
	return nil
}

func (m *Memory) Subscribe(key string) (<-chan []byte, func()) {
	return m.hub.subscribe(key)
}

func (m *Memory) Close() error {
	m.hub.closeAll()
	return nil
}
