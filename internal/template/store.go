package template

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cockroachdb/pebble"

	pebblestore "github.com/LeoDT/log-majin/internal/storage/pebble"
	"github.com/LeoDT/log-majin/pkg/codec"
)

// ErrNotFound is returned when a template id resolves to nothing.
var ErrNotFound = errors.New("template not found")

var tplPrefix = []byte("tpl/")

func key(templateID string) []byte {
	k := make([]byte, 0, len(tplPrefix)+len(templateID))
	k = append(k, tplPrefix...)
	k = append(k, templateID...)
	return k
}

// Store persists the mutable template collection under tpl/{id}. The editing
// surface owns these records; the store only reads and rewrites whole
// documents.
type Store struct {
	db *pebblestore.DB
}

// NewStore returns a Store over db.
func NewStore(db *pebblestore.DB) *Store { return &Store{db: db} }

// Put writes (or overwrites) a template record.
func (s *Store) Put(t Template) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("put template: %w", err)
	}
	b, err := codec.Marshal(t)
	if err != nil {
		return err
	}
	return s.db.Set(key(t.ID), b)
}

// Get loads a template by id.
func (s *Store) Get(templateID string) (Template, error) {
	b, err := s.db.Get(key(templateID))
	if err != nil {
		if errors.Is(err, pebblestore.ErrNotFound) {
			return Template{}, ErrNotFound
		}
		return Template{}, err
	}
	var t Template
	if err := codec.Unmarshal(b, &t); err != nil {
		return Template{}, err
	}
	return t, nil
}

// List returns all templates in creation order. Archived templates are
// included when includeArchived is set.
func (s *Store) List(includeArchived bool) ([]Template, error) {
	upper := append(append([]byte(nil), tplPrefix...), 0xff)
	it, err := s.db.NewIter(&pebble.IterOptions{LowerBound: tplPrefix, UpperBound: upper})
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var out []Template
	for it.First(); it.Valid(); it.Next() {
		var t Template
		if err := codec.Unmarshal(it.Value(), &t); err != nil {
			return nil, err
		}
		if t.Archived() && !includeArchived {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreateAtMs < out[j].CreateAtMs })
	return out, nil
}

// Archive stamps the template as archived. Idempotent.
func (s *Store) Archive(templateID string, at time.Time) (Template, error) {
	t, err := s.Get(templateID)
	if err != nil {
		return Template{}, err
	}
	if t.Archived() {
		return t, nil
	}
	t.ArchiveAtMs = at.UnixMilli()
	if err := s.Put(t); err != nil {
		return Template{}, err
	}
	return t, nil
}
