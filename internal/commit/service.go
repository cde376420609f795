package commit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LeoDT/log-majin/internal/history"
	"github.com/LeoDT/log-majin/internal/logstore"
	"github.com/LeoDT/log-majin/internal/revision"
	pebblestore "github.com/LeoDT/log-majin/internal/storage/pebble"
	"github.com/LeoDT/log-majin/internal/template"
	"github.com/LeoDT/log-majin/pkg/id"
	logpkg "github.com/LeoDT/log-majin/pkg/log"
)

// ErrNeedsInput is returned by CommitNoInput when the template has at least
// one slot requiring input. It signals a caller bug, not a retryable
// condition.
var ErrNeedsInput = errors.New("template has slots that need input")

// ErrInvalidSlotValues is wrapped by ValidateSlotValues failures.
var ErrInvalidSlotValues = errors.New("invalid slot values")

// ErrTemplateArchived is returned when committing against an archived
// template. Archived templates stay readable for old logs but accept no new
// ones.
var ErrTemplateArchived = errors.New("template is archived")

// Service is the single transactional entry point for writing logs. One
// Commit resolves the template revision, appends the log, and records input
// history as one atomic storage transaction: either all of it becomes
// visible or none of it.
//
// The store assumes a single logical writer; callers serialize commits.
type Service struct {
	db        *pebblestore.DB
	logs      *logstore.Store
	revisions *revision.Store
	hist      *history.Store
	gen       *id.Generator
	logger    logpkg.Logger
	now       func() time.Time
}

// New returns a Service using a default logger.
func New(db *pebblestore.DB, logs *logstore.Store, revisions *revision.Store, hist *history.Store, gen *id.Generator) *Service {
	return NewWithLogger(db, logs, revisions, hist, gen, nil)
}

// NewWithLogger returns a Service with an injected logger.
func NewWithLogger(db *pebblestore.DB, logs *logstore.Store, revisions *revision.Store, hist *history.Store, gen *id.Generator, logger logpkg.Logger) *Service {
	if logger == nil {
		logger = logpkg.NewLogger().WithComponent("commit")
	}
	return &Service{
		db:        db,
		logs:      logs,
		revisions: revisions,
		hist:      hist,
		gen:       gen,
		logger:    logger,
		now:       time.Now,
	}
}

// ValidateSlotValues is the pure pre-commit predicate: every value must
// reference a slot of the template, and every input-needing slot must carry
// a non-empty value. Callers use it to gate confirmation before starting a
// transaction; Commit itself accepts empty values so intentionally blank
// slots round-trip verbatim.
func ValidateSlotValues(t template.Template, values []logstore.SlotValue) error {
	byID := make(map[string]string, len(values))
	for _, v := range values {
		if _, ok := t.Slots.ByID(v.SlotID); !ok {
			return fmt.Errorf("%w: value for unknown slot %q", ErrInvalidSlotValues, v.SlotID)
		}
		byID[v.SlotID] = v.Value
	}
	for _, s := range t.Slots {
		if !s.Kind().NeedsInput() {
			continue
		}
		v, ok := byID[s.SlotID()]
		if !ok {
			return fmt.Errorf("%w: slot %q has no value", ErrInvalidSlotValues, s.SlotID())
		}
		if v == "" {
			return fmt.Errorf("%w: slot %q is empty", ErrInvalidSlotValues, s.SlotID())
		}
	}
	return nil
}

// Commit writes one log for the supplied template snapshot and slot values.
// Values are joined in caller order to form the display content; callers
// supply them in slot order. The returned log is durable when Commit
// returns nil.
func (s *Service) Commit(ctx context.Context, t template.Template, values []logstore.SlotValue) (logstore.Log, error) {
	if t.Archived() {
		return logstore.Log{}, fmt.Errorf("%w: %q", ErrTemplateArchived, t.ID)
	}
	now := s.now()

	txn := s.db.BeginTxn()
	defer txn.Close()

	rev, err := s.revisions.Resolve(txn, t, now)
	if err != nil {
		return logstore.Log{}, fmt.Errorf("resolve revision: %w", err)
	}

	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.Value
	}

	l := logstore.Log{
		ID:                 s.gen.Next().String(),
		CreateAtMs:         now.UnixMilli(),
		TemplateID:         t.ID,
		TemplateRevisionID: rev.ID,
		SlotValues:         values,
		Content:            strings.Join(parts, " "),
	}
	if err := s.logs.Append(txn, l); err != nil {
		return logstore.Log{}, fmt.Errorf("append log: %w", err)
	}

	for _, v := range values {
		slot, ok := t.Slots.ByID(v.SlotID)
		if !ok || !slot.Kind().NeedsHistory() {
			continue
		}
		if err := s.hist.Record(txn, v.SlotID, v.Value); err != nil {
			return logstore.Log{}, fmt.Errorf("record history: %w", err)
		}
	}

	if err := txn.Commit(ctx); err != nil {
		return logstore.Log{}, fmt.Errorf("commit: %w", err)
	}

	s.logger.Debug("log committed",
		logpkg.Str("log_id", l.ID),
		logpkg.Str("template_id", t.ID),
		logpkg.Str("revision_id", rev.ID),
	)
	return l, nil
}

// CommitNoInput writes one log for a template whose slots all render static
// text, synthesizing each slot's value from its name. Calling it on a
// template with input-needing slots returns ErrNeedsInput and writes
// nothing.
func (s *Service) CommitNoInput(ctx context.Context, t template.Template) (logstore.Log, error) {
	if !t.IsNoInput() {
		return logstore.Log{}, fmt.Errorf("%w: template %q", ErrNeedsInput, t.ID)
	}
	values := make([]logstore.SlotValue, len(t.Slots))
	for i, slot := range t.Slots {
		values[i] = logstore.SlotValue{SlotID: slot.SlotID(), Value: slot.SlotName()}
	}
	return s.Commit(ctx, t, values)
}
