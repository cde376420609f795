package revision

import (
	"context"
	"testing"
	"time"

	"github.com/LeoDT/log-majin/internal/logstore"
	pebblestore "github.com/LeoDT/log-majin/internal/storage/pebble"
	"github.com/LeoDT/log-majin/internal/template"
	"github.com/LeoDT/log-majin/pkg/id"
)

func newTestStore(t *testing.T) (*pebblestore.DB, *logstore.Store, *Store) {
	t.Helper()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeNever})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	logs := logstore.NewStore(db)
	return db, logs, NewStore(db, logs, id.NewGenerator(), nil)
}

func testTemplate() template.Template {
	return template.Template{
		ID:   "tpl-1",
		Name: "Drank",
		Slots: template.Slots{
			template.TextSlot{ID: "s1", Name: "Drank"},
			template.TextInputSlot{ID: "s2", Name: "what"},
		},
		Color:      "#123456",
		CreateAtMs: 1000,
	}
}

// appendLog writes a committed log referencing revisionID so Resolve sees it
// as the template's last log.
func appendLog(t *testing.T, db *pebblestore.DB, logs *logstore.Store, logID, revisionID string, atMs int64) {
	t.Helper()
	txn := db.BeginTxn()
	defer txn.Close()
	err := logs.Append(txn, logstore.Log{
		ID:                 logID,
		CreateAtMs:         atMs,
		TemplateID:         "tpl-1",
		TemplateRevisionID: revisionID,
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := txn.Commit(context.Background()); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestResolveMintsWhenNoPriorLog(t *testing.T) {
	db, _, s := newTestStore(t)
	tpl := testTemplate()

	txn := db.BeginTxn()
	defer txn.Close()
	rev, err := s.Resolve(txn, tpl, time.UnixMilli(2000))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if rev.ID == "" || rev.Hash() != tpl.Hash() {
		t.Fatalf("minted revision wrong: %#v", rev)
	}
	if err := txn.Commit(context.Background()); err != nil {
		t.Fatalf("commit: %v", err)
	}

	// the minted revision is persisted, not just returned
	got, err := s.Get(rev.ID)
	if err != nil {
		t.Fatalf("get minted: %v", err)
	}
	if got.TemplateID != tpl.ID {
		t.Fatalf("persisted revision wrong: %#v", got)
	}
}

func TestResolveReusesUnchangedRevision(t *testing.T) {
	db, logs, s := newTestStore(t)
	tpl := testTemplate()

	txn := db.BeginTxn()
	first, err := s.Resolve(txn, tpl, time.UnixMilli(2000))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if err := txn.Commit(context.Background()); err != nil {
		t.Fatalf("commit: %v", err)
	}
	txn.Close()
	appendLog(t, db, logs, "log-1", first.ID, 2000)

	txn2 := db.BeginTxn()
	defer txn2.Close()
	second, err := s.Resolve(txn2, tpl, time.UnixMilli(3000))
	if err != nil {
		t.Fatalf("resolve again: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("unchanged template minted a new revision: %s vs %s", second.ID, first.ID)
	}
}

func TestResolveMintsOnContentChange(t *testing.T) {
	db, logs, s := newTestStore(t)
	tpl := testTemplate()

	txn := db.BeginTxn()
	first, err := s.Resolve(txn, tpl, time.UnixMilli(2000))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if err := txn.Commit(context.Background()); err != nil {
		t.Fatalf("commit: %v", err)
	}
	txn.Close()
	appendLog(t, db, logs, "log-1", first.ID, 2000)

	tpl.Name = "Sipped"
	txn2 := db.BeginTxn()
	second, err := s.Resolve(txn2, tpl, time.UnixMilli(3000))
	if err != nil {
		t.Fatalf("resolve changed: %v", err)
	}
	if err := txn2.Commit(context.Background()); err != nil {
		t.Fatalf("commit: %v", err)
	}
	txn2.Close()
	if second.ID == first.ID {
		t.Fatalf("content change reused old revision")
	}

	// the superseded revision stays untouched
	old, err := s.Get(first.ID)
	if err != nil {
		t.Fatalf("old revision gone: %v", err)
	}
	if old.Name != "Drank" {
		t.Fatalf("old revision mutated: %#v", old)
	}
}

func TestResolveRepairsMissingRevision(t *testing.T) {
	db, logs, s := newTestStore(t)
	tpl := testTemplate()

	// last log points at a revision that was never written
	appendLog(t, db, logs, "log-1", "ghost-rev", 2000)

	txn := db.BeginTxn()
	defer txn.Close()
	rev, err := s.Resolve(txn, tpl, time.UnixMilli(3000))
	if err != nil {
		t.Fatalf("resolve should repair, got: %v", err)
	}
	if rev.ID == "ghost-rev" || rev.ID == "" {
		t.Fatalf("replacement revision missing: %#v", rev)
	}
	if rev.Hash() != tpl.Hash() {
		t.Fatalf("replacement snapped wrong content")
	}
}
