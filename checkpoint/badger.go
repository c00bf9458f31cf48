package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v3"

	"github.com/hupe1980/deeprun/core"
)

// keyPrefix namespaces checkpoint entries so the store can share a badger
// database with a durable file backend.
const keyPrefix = "checkpoint/"

// BadgerStore persists checkpoints in a badger database. Each Put happens
// inside a single update transaction, so an interrupted process leaves
// either the previous checkpoint or the new one, never a torn write.
type BadgerStore struct {
	db *badgerdb.DB
}

var _ core.CheckpointStore = (*BadgerStore)(nil)

// NewBadgerStore wraps an open badger database. The caller retains
// ownership of the database and is responsible for closing it.
func NewBadgerStore(db *badgerdb.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func checkpointKey(threadID string) []byte {
	return []byte(keyPrefix + threadID)
}

// Put serializes and writes the checkpoint in one transaction.
func (s *BadgerStore) Put(_ context.Context, threadID string, cp *core.Checkpoint) error {
	raw, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}
	err = s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(checkpointKey(threadID), raw)
	})
	if err != nil {
		return fmt.Errorf("write checkpoint %q: %w", threadID, err)
	}
	return nil
}

// Get loads the checkpoint for the thread, or core.ErrNotFound.
func (s *BadgerStore) Get(_ context.Context, threadID string) (*core.Checkpoint, error) {
	var raw []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(checkpointKey(threadID))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("read checkpoint %q: %w", threadID, err)
	}
	var cp core.Checkpoint
	if err := json.Unmarshal(raw, &cp); err != nil {
		return nil, fmt.Errorf("unmarshal checkpoint %q: %w", threadID, err)
	}
	return &cp, nil
}

// Delete removes the checkpoint. An absent key is not an error.
func (s *BadgerStore) Delete(_ context.Context, threadID string) error {
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete(checkpointKey(threadID))
	})
	if err != nil {
		return fmt.Errorf("delete checkpoint %q: %w", threadID, err)
	}
	return nil
}
