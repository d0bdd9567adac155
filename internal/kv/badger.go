package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/pbaille/thoughts/internal/domain"
)

// Badger keeps slots in a BadgerDB directory
type Badger struct {
	db  *badger.DB
	hub *hub
}

// OpenBadger opens the BadgerDB at dir
func OpenBadger(dir string) (*Badger, error) {
	opts := badger.DefaultOptions(dir).
		WithLoggingLevel(badger.ERROR)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Badger{db: db, hub: newHub()}, nil
}

func (b *Badger) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get slot %s: %w", key, err)
	}
	return value, nil
}

func (b *Badger) Set(ctx context.Context, key string, value []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("set slot %s: %w", key, err)
	}

	b.hub.publish(key, value)
	return nil
}

func (b *Badger) Subscribe(key string) (<-chan []byte, func()) {
	return b.hub.subscribe(key)
}

func (b *Badger) Close() error {
	b.hub.closeAll()
	return b.db.Close()
}
