package pager

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"

	"github.com/LeoDT/log-majin/internal/logstore"
	pebblestore "github.com/LeoDT/log-majin/internal/storage/pebble"
)

// DefaultPageSize is used when the caller asks for no particular size.
const DefaultPageSize = 20

// State is the pager lifecycle state.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// ErrNotInitialized is returned by LoadNextPage before Init.
var ErrNotInitialized = errors.New("pager not initialized")

// Pager reads logs newest-first in bounded pages over the global
// chronological index. It carries an exclusive upper bound — the index key
// of the oldest item handed out so far — so consecutive pages never overlap
// and never skip, even when newer logs are appended between calls (appends
// land above the bound and cannot disturb a backward scan).
//
// A Pager is not safe for concurrent use; each reader owns its own.
type Pager struct {
	db       *pebblestore.DB
	pageSize int
	filter   celFilter

	state       State
	initialized bool
	exhausted   bool
	upper       []byte // exclusive scan bound; nil = start from the newest log
	oldestMs    int64  // createAtMs of the oldest log handed out
}

// Option configures a Pager.
type Option func(*Pager) error

// WithPageSize sets the page size. Non-positive selects DefaultPageSize.
func WithPageSize(n int) Option {
	return func(p *Pager) error {
		if n > 0 {
			p.pageSize = n
		}
		return nil
	}
}

// WithFilter compiles a CEL expression evaluated against each log; logs
// failing the filter are skipped without shrinking the scan's progress.
// An empty expression disables filtering.
func WithFilter(expr string) Option {
	return func(p *Pager) error {
		f, err := newCELFilter(expr)
		if err != nil {
			return fmt.Errorf("pager filter: %w", err)
		}
		p.filter = f
		return nil
	}
}

// New returns an uninitialized Pager.
func New(db *pebblestore.DB, opts ...Option) (*Pager, error) {
	p := &Pager{db: db, pageSize: DefaultPageSize, state: StateUninitialized}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// State returns the current lifecycle state.
func (p *Pager) State() State { return p.state }

// Init loads the first page. It must be called once per Pager; calling it
// again is a no-op returning no items, so racing renders cannot double-load.
func (p *Pager) Init(ctx context.Context) ([]logstore.Log, error) {
	if p.initialized {
		return nil, nil
	}
	p.initialized = true
	p.upper = nil
	p.exhausted = false
	p.oldestMs = 0
	return p.load(ctx)
}

// LoadNextPage returns the next page strictly older than everything handed
// out before. After exhaustion it idempotently returns empty pages.
func (p *Pager) LoadNextPage(ctx context.Context) ([]logstore.Log, error) {
	if !p.initialized {
		return nil, ErrNotInitialized
	}
	if p.exhausted {
		return []logstore.Log{}, nil
	}
	return p.load(ctx)
}

// Reset clears accumulated state so the next Init starts from the newest
// log again. Callers invoke this when they observe the head of the
// collection changed (a new log was committed) and want a fresh view;
// inserts anywhere else cannot happen in an append-only store.
func (p *Pager) Reset() {
	p.initialized = false
	p.exhausted = false
	p.upper = nil
	p.oldestMs = 0
	p.state = StateUninitialized
}

// OldestSeenMs returns the createAtMs of the oldest log handed out so far,
// or 0 before any page was loaded.
func (p *Pager) OldestSeenMs() int64 { return p.oldestMs }

func (p *Pager) load(ctx context.Context) ([]logstore.Log, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.state = StateLoading

	lower, fullUpper := logstore.GlobalIndexBounds()
	upper := p.upper
	if upper == nil {
		upper = fullUpper
	}

	it, err := p.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		p.state = StateReady
		return nil, err
	}
	defer it.Close()

	page := make([]logstore.Log, 0, p.pageSize)
	ok := it.Last()
	for ; ok && len(page) < p.pageSize; ok = it.Prev() {
		// advance the bound past this entry whether or not it survives the
		// filter, so the next page resumes strictly below it
		p.upper = append(p.upper[:0], it.Key()...)

		record, err := p.db.Get(logstore.KeyRecord(string(it.Value())))
		if err != nil {
			p.state = StateReady
			return nil, fmt.Errorf("pager: load log %q: %w", it.Value(), err)
		}
		l, err := logstore.DecodeRecord(record)
		if err != nil {
			p.state = StateReady
			return nil, err
		}
		if !p.filter.Eval(l) {
			continue
		}
		page = append(page, l)
		p.oldestMs = l.CreateAtMs
	}
	if !ok {
		p.exhausted = true
	}
	p.state = StateReady
	return page, nil
}

// Cursor serializes the pager's resume position for stateless transports.
// Empty means "from the newest log".
func (p *Pager) Cursor() string {
	if p.upper == nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(p.upper)
}

// Resume positions the pager at a cursor previously returned by Cursor and
// marks it initialized, so LoadNextPage continues from there.
func (p *Pager) Resume(cursor string) error {
	if cursor == "" {
		p.Reset()
		p.initialized = true
		return nil
	}
	b, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return fmt.Errorf("pager: bad cursor: %w", err)
	}
	p.Reset()
	p.initialized = true
	p.upper = b
	return nil
}
