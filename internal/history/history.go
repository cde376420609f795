// Package history maintains the per-slot input history cache: a bounded,
// deduplicated, most-recent-first list of values previously typed into a
// free-text slot. Entries leave the cache only by truncation past the
// capacity bound.
package history

import (
	"errors"

	pebblestore "github.com/LeoDT/log-majin/internal/storage/pebble"
	"github.com/LeoDT/log-majin/pkg/codec"
)

// DefaultCapacity bounds the history list per slot.
const DefaultCapacity = 8

var histPrefix = []byte("hist/")

func key(slotID string) []byte {
	k := make([]byte, 0, len(histPrefix)+len(slotID))
	k = append(k, histPrefix...)
	k = append(k, slotID...)
	return k
}

// entry is the persisted record, keyed by slot id.
type entry struct {
	SlotID  string   `cbor:"slotId"`
	History []string `cbor:"history"`
}

// Store persists input histories under hist/{slotId}.
type Store struct {
	db       *pebblestore.DB
	capacity int
}

// NewStore returns a Store over db. capacity <= 0 selects DefaultCapacity.
func NewStore(db *pebblestore.DB, capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{db: db, capacity: capacity}
}

// Record stages value at the head of the slot's history on txn, dropping any
// existing duplicate (case-sensitive exact match) and truncating to the
// capacity bound.
func (s *Store) Record(txn *pebblestore.Txn, slotID, value string) error {
	prev, err := s.readTxn(txn, slotID)
	if err != nil {
		return err
	}

	next := make([]string, 0, len(prev)+1)
	next = append(next, value)
	for _, v := range prev {
		if v == value {
			continue
		}
		next = append(next, v)
	}
	if len(next) > s.capacity {
		next = next[:s.capacity]
	}

	b, err := codec.Marshal(entry{SlotID: slotID, History: next})
	if err != nil {
		return err
	}
	return txn.Set(key(slotID), b)
}

// Get returns the slot's history, most recent first, or an empty list when
// nothing has been recorded. The result is a point-in-time copy.
func (s *Store) Get(slotID string) ([]string, error) {
	b, err := s.db.Get(key(slotID))
	if err != nil {
		if errors.Is(err, pebblestore.ErrNotFound) {
			return []string{}, nil
		}
		return nil, err
	}
	var e entry
	if err := codec.Unmarshal(b, &e); err != nil {
		return nil, err
	}
	if e.History == nil {
		return []string{}, nil
	}
	return e.History, nil
}

func (s *Store) readTxn(txn *pebblestore.Txn, slotID string) ([]string, error) {
	b, err := txn.Get(key(slotID))
	if err != nil {
		if errors.Is(err, pebblestore.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var e entry
	if err := codec.Unmarshal(b, &e); err != nil {
		return nil, err
	}
	return e.History, nil
}
