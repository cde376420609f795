package runtime

import (
	"context"
	"testing"
	"time"

	cfgpkg "github.com/LeoDT/log-majin/internal/config"
	"github.com/LeoDT/log-majin/internal/logstore"
	pebblestore "github.com/LeoDT/log-majin/internal/storage/pebble"
	"github.com/LeoDT/log-majin/internal/template"
)

func openTestRuntime(t *testing.T, dir string) *Runtime {
	t.Helper()
	rt, err := Open(Options{DataDir: dir, Fsync: pebblestore.FsyncModeNever, Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return rt
}

func TestRuntimeEndToEnd(t *testing.T) {
	dir := t.TempDir()
	rt := openTestRuntime(t, dir)

	if err := rt.CheckHealth(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}

	tpl := template.Default(rt.IDs(), time.Now())
	if err := rt.Templates().Put(tpl); err != nil {
		t.Fatalf("put template: %v", err)
	}

	values := make([]logstore.SlotValue, len(tpl.Slots))
	for i, s := range tpl.Slots {
		values[i] = logstore.SlotValue{SlotID: s.SlotID(), Value: "v"}
	}
	l, err := rt.Committer().Commit(context.Background(), tpl, values)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	if err := rt.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// everything survives reopen
	rt2 := openTestRuntime(t, dir)
	defer rt2.Close()

	got, err := rt2.Logs().Get(l.ID)
	if err != nil {
		t.Fatalf("log lost across restart: %v", err)
	}
	if got.TemplateRevisionID != l.TemplateRevisionID {
		t.Fatalf("revision binding lost: %#v", got)
	}
	if _, err := rt2.Revisions().Get(l.TemplateRevisionID); err != nil {
		t.Fatalf("revision lost: %v", err)
	}
	if _, err := rt2.Templates().Get(tpl.ID); err != nil {
		t.Fatalf("template lost: %v", err)
	}

	p, err := rt2.NewPager()
	if err != nil {
		t.Fatalf("pager: %v", err)
	}
	page, err := p.Init(context.Background())
	if err != nil || len(page) != 1 {
		t.Fatalf("page after restart: %v len=%d", err, len(page))
	}
}
