package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/pbaille/thoughts/internal/domain"
	"github.com/pbaille/thoughts/internal/kv"
)

// Slot names, shared with any other client of the same data directory
const (
	ThoughtsSlot = "thoughts-data"
	TodosSlot    = "todos-data"
	NotionSlot   = "settings/notion"
	apiKeyPrefix = "settings/api_key/"
)

// slot is a JSON array of records stored under one key.
// mu serializes read-modify-write cycles within the process only.
type slot[T any] struct {
	kv  kv.Store
	key string
	mu  sync.Mutex
}

func (s *slot[T]) load(ctx context.Context) ([]T, error) {
	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.key, err)
	}
	return records, nil
}

func (s *slot[T]) save(ctx context.Context, records []T) error {
	if records == nil {
		records = []T{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.key, err)
	}
	return s.kv.Set(ctx, s.key, data)
}

// all returns a snapshot of the records
func (s *slot[T]) all(ctx context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// modify loads the records, applies fn and saves the result
func (s *slot[T]) modify(ctx context.Context, fn func([]T) ([]T, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return err
	}
	records, err = fn(records)
	if err != nil {
		return err
	}
	return s.save(ctx, records)
}
