// Package kv provides named key-value slots holding JSON documents.
//
// A slot is read and replaced as a whole; the last write wins. Subscribers
// are notified with the newest value after every write.
package kv

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
)

// Store is a set of named slots
type Store interface {
	// Get returns the slot value or domain.ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)
	// Set replaces the slot value and notifies subscribers
	Set(ctx context.Context, key string, value []byte) error
	// Subscribe delivers the latest value after each Set on key.
	// The returned func cancels the subscription.
	Subscribe(key string) (<-chan []byte, func())
	Close() error
}

// Open creates the backend named by backend under dataDir
func Open(backend, dataDir string) (Store, error) {
	switch backend {
	case "", "sqlite":
		return OpenSQLite(filepath.Join(dataDir, "thoughts.db"))
	case "badger":
		return OpenBadger(filepath.Join(dataDir, "badger"))
	case "memory":
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown backend: %s", backend)
}

// hub fans slot writes out to subscribers
type hub struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]chan []byte
}

func newHub() *hub {
	return &hub{subs: make(map[string]map[int]chan []byte)}
}

func (h *hub) subscribe(key string) (<-chan []byte, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan []byte, 1)
	id := h.next
	h.next++
	if h.subs[key] == nil {
		h.subs[key] = make(map[int]chan []byte)
	}
	h.subs[key][id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subs[key][id]; ok {
				delete(h.subs[key], id)
				close(ch)
			}
		})
	}
}

// publish never blocks: a pending value nobody read yet is replaced
func (h *hub) publish(key string, value []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs[key] {
		v := append([]byte(nil), value...)
		select {
		case ch <- v:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- v
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for key, subs := range h.subs {
		for id, ch := range subs {
			close(ch)
			delete(subs, id)
		}
		delete(h.subs, key)
	}
}
