package store

import (
	"context"
	"errors"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/fxamacker/cbor/v2"
)

// PebbleStore is the embedded, crash-durable backend for OrderSnapshot
// and RulesSnapshot: omsd uses one PebbleStore per DTO, both rooted at
// the same on-disk directory but separated by the "order:"/"rules:"
// key prefixes buildStores assigns, so order state and account rules
// survive a process restart without an external dependency.
type PebbleStore[T any] struct {
	db     *pebble.DB
	mu     sync.RWMutex
	closed bool
	prefix []byte
}

// PebbleStoreConfig configures the Pebble store
type PebbleStoreConfig struct {
	Path   string
	Prefix string // key prefix, e.g. "order:" or "rules:" (required to share a DB path between DTOs)
	Opts   *pebble.Options
}

// NewPebbleStore opens (or creates) the Pebble DB at config.Path and
// scopes all keys under config.Prefix.
func NewPebbleStore[T any](config PebbleStoreConfig) (*PebbleStore[T], error) {
	opts := config.Opts
	if opts == nil {
		opts = &pebble.Options{
			ErrorIfExists: false,
		}
	}

	db, err := pebble.Open(config.Path, opts)
	if err != nil {
		return nil, err
	}

	prefix := []byte(config.Prefix)
	if len(prefix) == 0 {
		prefix = []byte("data:")
	}

	return &PebbleStore[T]{
		db:     db,
		prefix: prefix,
	}, nil
}

// makeKey turns an order or account ID into the Pebble key it is
// stored under, e.g. "order:o1" or "rules:acct1".
func (p *PebbleStore[T]) makeKey(key string) []byte {
	fullKey := make([]byte, len(p.prefix)+len(key))
	copy(fullKey, p.prefix)
	copy(fullKey[len(p.prefix):], key)
	return fullKey
}

// Save persists an OrderSnapshot or RulesSnapshot as CBOR. Decimal
// fields are plain strings on the DTO rather than shopspring/decimal
// values precisely so cbor.Marshal has something to see: Decimal
// keeps its digits in unexported fields, which CBOR (like JSON) drops
// silently, turning every persisted amount into zero.
func (p *PebbleStore[T]) Save(ctx context.Context, key string, value T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrStoreClosed
	}
	p.mu.RUnlock()

	data, err := cbor.Marshal(value)
	if err != nil {
		return err
	}

	fullKey := p.makeKey(key)
	return p.db.Set(fullKey, data, pebble.Sync)
}

// Load fetches and decodes the snapshot stored under key, returning
// ErrNotFound if no order or account rules are on record for it.
func (p *PebbleStore[T]) Load(ctx context.Context, key string) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return zero, ErrStoreClosed
	}
	p.mu.RUnlock()

	fullKey := p.makeKey(key)
	data, closer, err := p.db.Get(fullKey)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return zero, ErrNotFound
		}
		return zero, err
	}
	defer closer.Close()

	var value T
	if err := cbor.Unmarshal(data, &value); err != nil {
		return zero, err
	}

	return value, nil
}

// Delete removes the snapshot stored under key, e.g. once an order is
// terminal and has been archived elsewhere.
func (p *PebbleStore[T]) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrStoreClosed
	}
	p.mu.RUnlock()

	fullKey := p.makeKey(key)
	return p.db.Delete(fullKey, pebble.Sync)
}

// Exists reports whether a snapshot is on record for key.
func (p *PebbleStore[T]) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return false, ErrStoreClosed
	}
	p.mu.RUnlock()

	fullKey := p.makeKey(key)
	_, closer, err := p.db.Get(fullKey)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	closer.Close()
	return true, nil
}

// List returns every order or account ID under this store's prefix,
// with the prefix itself stripped back off.
func (p *PebbleStore[T]) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return nil, ErrStoreClosed
	}
	p.mu.RUnlock()

	var keys []string

	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: p.prefix,
		UpperBound: append(p.prefix, 0xff),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		key := iter.Key()
		keyStr := string(key[len(p.prefix):])
		keys = append(keys, keyStr)
	}

	if err := iter.Error(); err != nil {
		return nil, err
	}

	return keys, nil
}

// Close flushes and closes the underlying Pebble DB.
func (p *PebbleStore[T]) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrStoreClosed
	}

	p.closed = true
	return p.db.Close()
}

// Count returns the number of orders or accounts under this store's prefix.
func (p *PebbleStore[T]) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return 0, ErrStoreClosed
	}
	p.mu.RUnlock()

	var count int64

	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: p.prefix,
		UpperBound: append(p.prefix, 0xff),
	})
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		count++
	}

	if err := iter.Error(); err != nil {
		return 0, err
	}

	return count, nil
}
