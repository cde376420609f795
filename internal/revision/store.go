package revision

import (
	"encoding/binary"
	"errors"
	"time"

	"github.com/LeoDT/log-majin/internal/logstore"
	pebblestore "github.com/LeoDT/log-majin/internal/storage/pebble"
	"github.com/LeoDT/log-majin/internal/template"
	"github.com/LeoDT/log-majin/pkg/codec"
	"github.com/LeoDT/log-majin/pkg/id"
	logpkg "github.com/LeoDT/log-majin/pkg/log"
)

// ErrNotFound is returned when a revision id resolves to nothing.
var ErrNotFound = errors.New("template revision not found")

var (
	sep          = byte('/')
	recordPrefix = []byte("rev/")
	tplIdxPrefix = []byte("rev/i/tpl/")
)

// KeyRecord builds the revision record key.
func KeyRecord(revisionID string) []byte {
	k := make([]byte, 0, len(recordPrefix)+len(revisionID))
	k = append(k, recordPrefix...)
	k = append(k, revisionID...)
	return k
}

// KeyTemplateIndex builds the per-template revision index key.
func KeyTemplateIndex(templateID string, createAtMs int64, revisionID string) []byte {
	k := make([]byte, 0, len(tplIdxPrefix)+len(templateID)+10+len(revisionID))
	k = append(k, tplIdxPrefix...)
	k = append(k, templateID...)
	k = append(k, sep)
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(createAtMs))
	k = append(k, b[:]...)
	k = append(k, sep)
	k = append(k, revisionID...)
	return k
}

// Store persists immutable template revisions under rev/{id} plus a
// per-template creation index. Revisions are only ever created — never
// rewritten or deleted — and only by the commit path.
type Store struct {
	db     *pebblestore.DB
	logs   *logstore.Store
	gen    *id.Generator
	logger logpkg.Logger
}

// NewStore returns a Store over db. The log store answers "last log for
// template" during resolution.
func NewStore(db *pebblestore.DB, logs *logstore.Store, gen *id.Generator, logger logpkg.Logger) *Store {
	if logger == nil {
		logger = logpkg.NewLogger().WithComponent("revision")
	}
	return &Store{db: db, logs: logs, gen: gen, logger: logger}
}

// Put stages a revision record and its index entry on txn.
func (s *Store) Put(txn *pebblestore.Txn, r template.Revision) error {
	b, err := codec.Marshal(r)
	if err != nil {
		return err
	}
	if err := txn.Set(KeyRecord(r.ID), b); err != nil {
		return err
	}
	return txn.Set(KeyTemplateIndex(r.TemplateID, r.CreateAtMs, r.ID), []byte(r.ID))
}

// Get loads a revision by id.
func (s *Store) Get(revisionID string) (template.Revision, error) {
	b, err := s.db.Get(KeyRecord(revisionID))
	if err != nil {
		if errors.Is(err, pebblestore.ErrNotFound) {
			return template.Revision{}, ErrNotFound
		}
		return template.Revision{}, err
	}
	var r template.Revision
	if err := codec.Unmarshal(b, &r); err != nil {
		return template.Revision{}, err
	}
	return r, nil
}

func (s *Store) getTxn(txn *pebblestore.Txn, revisionID string) (template.Revision, error) {
	b, err := txn.Get(KeyRecord(revisionID))
	if err != nil {
		if errors.Is(err, pebblestore.ErrNotFound) {
			return template.Revision{}, ErrNotFound
		}
		return template.Revision{}, err
	}
	var r template.Revision
	if err := codec.Unmarshal(b, &r); err != nil {
		return template.Revision{}, err
	}
	return r, nil
}

// Resolve returns the revision a new log for t should reference, staging a
// new revision on txn when needed:
//
//  1. no prior log for the template: mint and persist a fresh revision;
//  2. prior log references a missing revision: warn and mint a replacement
//     (self-healing, never fails the commit);
//  3. template content unchanged since the prior log: reuse that revision,
//     nothing persisted;
//  4. content changed: mint and persist a new revision; the superseded one
//     stays untouched for older logs.
func (s *Store) Resolve(txn *pebblestore.Txn, t template.Template, now time.Time) (template.Revision, error) {
	last, ok, err := s.logs.FindLastByTemplate(txn, t.ID, now)
	if err != nil {
		return template.Revision{}, err
	}
	if !ok {
		return s.mint(txn, t, now)
	}

	current, err := s.getTxn(txn, last.TemplateRevisionID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return template.Revision{}, err
		}
		// A log referencing a missing revision is an invariant violation;
		// repair by snapping the template as it stands now.
		s.logger.Warn("revision referenced by last log is missing, creating replacement",
			logpkg.Str("template_id", t.ID),
			logpkg.Str("revision_id", last.TemplateRevisionID),
			logpkg.Str("log_id", last.ID),
		)
		return s.mint(txn, t, now)
	}

	if t.Hash() == current.Hash() {
		return current, nil
	}
	return s.mint(txn, t, now)
}

func (s *Store) mint(txn *pebblestore.Txn, t template.Template, now time.Time) (template.Revision, error) {
	r := template.NewRevision(t, s.gen.Next().String(), now)
	if err := s.Put(txn, r); err != nil {
		return template.Revision{}, err
	}
	return r, nil
}
