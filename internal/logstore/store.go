package logstore

import (
	"errors"
	"time"

	"github.com/cockroachdb/pebble"

	pebblestore "github.com/LeoDT/log-majin/internal/storage/pebble"
	"github.com/LeoDT/log-majin/pkg/codec"
)

// ErrNotFound is returned when a log id resolves to nothing.
var ErrNotFound = errors.New("log not found")

// SlotValue is one filled slot in a log.
type SlotValue struct {
	SlotID string `json:"slotId" cbor:"slotId"`
	Value  string `json:"value" cbor:"value"`
}

// Log is one immutable, timestamped filled-in instance of a template, bound
// to the revision that was current at write time. Logs are append-only:
// never mutated or deleted.
type Log struct {
	ID                 string      `json:"id" cbor:"id"`
	CreateAtMs         int64       `json:"createAtMs" cbor:"createAtMs"`
	TemplateID         string      `json:"templateId" cbor:"templateId"`
	TemplateRevisionID string      `json:"templateRevisionId" cbor:"templateRevisionId"`
	SlotValues         []SlotValue `json:"slotValues" cbor:"slotValues"`
	Content            string      `json:"content" cbor:"content"`
}

// Store persists log records plus the two secondary indexes: global
// reverse-chronological (for the pager) and per-template (for revision
// resolution). All writes go through a Txn so a log and its index entries
// land atomically with the revision and history updates of one commit.
type Store struct {
	db *pebblestore.DB
}

// NewStore returns a Store over db.
func NewStore(db *pebblestore.DB) *Store { return &Store{db: db} }

// Append stages the log record and both index entries on txn. Put-semantics
// on the id; callers generate a fresh id per commit.
func (s *Store) Append(txn *pebblestore.Txn, l Log) error {
	b, err := codec.Marshal(l)
	if err != nil {
		return err
	}
	if err := txn.Set(KeyRecord(l.ID), b); err != nil {
		return err
	}
	idVal := []byte(l.ID)
	if err := txn.Set(KeyGlobalIndex(l.CreateAtMs, l.ID), idVal); err != nil {
		return err
	}
	return txn.Set(KeyTemplateIndex(l.TemplateID, l.CreateAtMs, l.ID), idVal)
}

// Get loads a log by id.
func (s *Store) Get(logID string) (Log, error) {
	b, err := s.db.Get(KeyRecord(logID))
	if err != nil {
		if errors.Is(err, pebblestore.ErrNotFound) {
			return Log{}, ErrNotFound
		}
		return Log{}, err
	}
	var l Log
	if err := codec.Unmarshal(b, &l); err != nil {
		return Log{}, err
	}
	return l, nil
}

// FindLastByTemplate returns the most recently created log for a template
// with createAtMs <= before, reading through txn so logs staged in the same
// transaction are visible. Answered by a single reverse seek on the
// per-template index; never a scan over records.
func (s *Store) FindLastByTemplate(txn *pebblestore.Txn, templateID string, before time.Time) (Log, bool, error) {
	lower, upper := TemplateIndexBounds(templateID, before.UnixMilli())
	it, err := txn.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return Log{}, false, err
	}
	defer it.Close()

	if !it.Last() {
		return Log{}, false, nil
	}
	logID := string(it.Value())
	b, err := txn.Get(KeyRecord(logID))
	if err != nil {
		return Log{}, false, err
	}
	var l Log
	if err := codec.Unmarshal(b, &l); err != nil {
		return Log{}, false, err
	}
	return l, true, nil
}

// DecodeRecord decodes a stored log record value. Used by readers that
// iterate indexes and fetch records themselves.
func DecodeRecord(b []byte) (Log, error) {
	var l Log
	if err := codec.Unmarshal(b, &l); err != nil {
		return Log{}, err
	}
	return l, nil
}
