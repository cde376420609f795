package logstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	pebblestore "github.com/LeoDT/log-majin/internal/storage/pebble"
)

func newTestDB(t *testing.T) *pebblestore.DB {
	t.Helper()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeNever})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func mustAppend(t *testing.T, db *pebblestore.DB, s *Store, l Log) {
	t.Helper()
	txn := db.BeginTxn()
	defer txn.Close()
	if err := s.Append(txn, l); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := txn.Commit(context.Background()); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestAppendGet(t *testing.T) {
	db := newTestDB(t)
	s := NewStore(db)

	l := Log{
		ID:                 "log-1",
		CreateAtMs:         1000,
		TemplateID:         "tpl-1",
		TemplateRevisionID: "rev-1",
		SlotValues:         []SlotValue{{SlotID: "s1", Value: "water"}},
		Content:            "Drank water",
	}
	mustAppend(t, db, s, l)

	got, err := s.Get("log-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Content != l.Content || got.TemplateRevisionID != "rev-1" {
		t.Fatalf("round-trip mismatch: %#v", got)
	}
	if len(got.SlotValues) != 1 || got.SlotValues[0].Value != "water" {
		t.Fatalf("slot values lost: %#v", got.SlotValues)
	}
	if _, err := s.Get("missing"); err != ErrNotFound {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestFindLastByTemplate(t *testing.T) {
	db := newTestDB(t)
	s := NewStore(db)

	for i := 1; i <= 3; i++ {
		mustAppend(t, db, s, Log{
			ID:         fmt.Sprintf("log-%d", i),
			CreateAtMs: int64(i * 1000),
			TemplateID: "tpl-1",
		})
	}
	mustAppend(t, db, s, Log{ID: "other", CreateAtMs: 9999, TemplateID: "tpl-2"})

	txn := db.BeginTxn()
	defer txn.Close()

	last, ok, err := s.FindLastByTemplate(txn, "tpl-1", time.UnixMilli(10000))
	if err != nil || !ok {
		t.Fatalf("find: ok=%v err=%v", ok, err)
	}
	if last.ID != "log-3" {
		t.Fatalf("want log-3, got %s", last.ID)
	}

	// bound is inclusive of the exact timestamp
	last, ok, err = s.FindLastByTemplate(txn, "tpl-1", time.UnixMilli(2000))
	if err != nil || !ok {
		t.Fatalf("find at bound: ok=%v err=%v", ok, err)
	}
	if last.ID != "log-2" {
		t.Fatalf("want log-2, got %s", last.ID)
	}

	_, ok, err = s.FindLastByTemplate(txn, "tpl-1", time.UnixMilli(500))
	if err != nil {
		t.Fatalf("find before first: %v", err)
	}
	if ok {
		t.Fatalf("found a log before any were written")
	}

	_, ok, err = s.FindLastByTemplate(txn, "unknown", time.UnixMilli(10000))
	if err != nil || ok {
		t.Fatalf("unknown template: ok=%v err=%v", ok, err)
	}
}

func TestFindLastSameMillisecond(t *testing.T) {
	db := newTestDB(t)
	s := NewStore(db)

	// same timestamp; monotonic ids break the tie
	mustAppend(t, db, s, Log{ID: "a-1", CreateAtMs: 5000, TemplateID: "tpl-1"})
	mustAppend(t, db, s, Log{ID: "a-2", CreateAtMs: 5000, TemplateID: "tpl-1"})

	txn := db.BeginTxn()
	defer txn.Close()
	last, ok, err := s.FindLastByTemplate(txn, "tpl-1", time.UnixMilli(5000))
	if err != nil || !ok {
		t.Fatalf("find: ok=%v err=%v", ok, err)
	}
	if last.ID != "a-2" {
		t.Fatalf("want a-2, got %s", last.ID)
	}
}

func TestFindLastSeesStagedWrites(t *testing.T) {
	db := newTestDB(t)
	s := NewStore(db)

	txn := db.BeginTxn()
	defer txn.Close()
	if err := s.Append(txn, Log{ID: "staged", CreateAtMs: 7000, TemplateID: "tpl-1"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	last, ok, err := s.FindLastByTemplate(txn, "tpl-1", time.UnixMilli(7000))
	if err != nil || !ok {
		t.Fatalf("staged log invisible: ok=%v err=%v", ok, err)
	}
	if last.ID != "staged" {
		t.Fatalf("want staged, got %s", last.ID)
	}
}
