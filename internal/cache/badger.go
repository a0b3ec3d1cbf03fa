// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/rocksky-relay/internal/logging"
)

const badgerGCRatio = 0.5

// BadgerStore is a Store backed by an embedded BadgerDB. Expiry is delegated
// to badger entry TTLs. An empty path runs badger fully in memory.
type BadgerStore struct {
	db       *badger.DB
	inMemory bool
}

// OpenBadgerStore opens (or creates) a badger database at path.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	inMemory := path == ""
	if inMemory {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().Str("path", path).Bool("in_memory", inMemory).Msg("badger cache opened")
	return &BadgerStore{db: db, inMemory: inMemory}, nil
}

// Get implements Store.
func (b *BadgerStore) Get(_ context.Context, key string) (string, bool, error) {
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
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("badger get %s: %w", key, err)
	}
	return string(value), true, nil
}

// SetWithExpiry implements Store.
func (b *BadgerStore) SetWithExpiry(_ context.Context, key, value string, ttl time.Duration) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), []byte(value)).WithTTL(ttl))
	})
	if err != nil {
		return fmt.Errorf("badger set %s: %w", key, err)
	}
	return nil
}

// Ping implements Store.
func (b *BadgerStore) Ping(context.Context) error {
	if b.db.IsClosed() {
		return errors.New("badger cache is closed")
	}
	return nil
}

// Close implements Store.
func (b *BadgerStore) Close() error {
	return b.db.Close()
}

// RunGC reclaims value log space left behind by expired entries. It is a
// no-op for in-memory stores.
func (b *BadgerStore) RunGC() error {
	if b.inMemory {
		return nil
	}
	for {
		err := b.db.RunValueLogGC(badgerGCRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run badger GC: %w", err)
		}
	}
}
