// Package badger provides a durable core.Backend implementation backed by
// BadgerDB. Content survives process restarts and is shared by every thread
// routed to the same store.
package badger

import (
	"context"
	"errors"

	badgerdb "github.com/dgraph-io/badger/v3"

	"github.com/hupe1980/deeprun/backend"
	"github.com/hupe1980/deeprun/core"
)

// Options configures the badger-backed store.
type Options struct {
	// InMemory runs badger without a directory. Useful for tests.
	InMemory bool
	// SyncWrites forces fsync on every write at the cost of latency.
	SyncWrites bool
}

// Store is a durable core.Backend persisting content in a BadgerDB
// instance. Writes are last-write-wins per path; atomicity holds per single
// path, never across a batch of writes.
type Store struct {
	db *badgerdb.DB
}

var _ core.Backend = (*Store)(nil)

// New opens (or creates) a badger store rooted at dir.
func New(dir string, optFns ...func(o *Options)) (*Store, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	badgerOpts := badgerdb.DefaultOptions(dir)
	if opts.InMemory {
		badgerOpts = badgerdb.DefaultOptions("").WithInMemory(true)
	}
	badgerOpts = badgerOpts.WithSyncWrites(opts.SyncWrites).WithLogger(nil)

	db, err := badgerdb.Open(badgerOpts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// NewFromDB wraps an existing badger database. The caller keeps ownership
// of the database lifecycle.
func NewFromDB(db *badgerdb.DB) *Store {
	return &Store{db: db}
}

// Close releases the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying database so other components (e.g. the
// checkpoint store) can share one instance.
func (s *Store) DB() *badgerdb.DB { return s.db }

// Read returns the content bound to path or core.ErrNotFound.
func (s *Store) Read(_ context.Context, p string) ([]byte, error) {
	key := []byte(backend.NormalizePath(p))

	var content []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		content, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return content, nil
}

// Write stores (or overwrites) the content for path in one transaction.
func (s *Store) Write(_ context.Context, p string, content []byte) error {
	key := []byte(backend.NormalizePath(p))
	return s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(key, content)
	})
}

// Delete removes the content if present or returns core.ErrNotFound.
func (s *Store) Delete(_ context.Context, p string) error {
	key := []byte(backend.NormalizePath(p))
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return core.ErrNotFound
	}
	return err
}

// List returns the ordered entry names directly under path, or
// core.ErrNotFound when the path does not exist as a container.
func (s *Store) List(_ context.Context, p string) ([]string, error) {
	var keys []string
	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().Key()))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	names := backend.ChildNames(keys, p)
	if names == nil {
		if backend.NormalizePath(p) == "/" {
			return []string{}, nil
		}
		return nil, core.ErrNotFound
	}
	return names, nil
}
