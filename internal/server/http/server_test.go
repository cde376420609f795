package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	cfgpkg "github.com/LeoDT/log-majin/internal/config"
	"github.com/LeoDT/log-majin/internal/logstore"
	"github.com/LeoDT/log-majin/internal/runtime"
	pebblestore "github.com/LeoDT/log-majin/internal/storage/pebble"
	"github.com/LeoDT/log-majin/internal/template"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	rt, err := runtime.Open(runtime.Options{
		DataDir: t.TempDir(),
		Fsync:   pebblestore.FsyncModeNever,
		Config:  cfgpkg.Default(),
	})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })
	ts := httptest.NewServer(New(rt, nil).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, ts *httptest.Server, path string, body any, out any) int {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("post %s: %v", path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return resp.StatusCode
}

func getJSON(t *testing.T, ts *httptest.Server, path string, out any) int {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("get %s: %v", path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	var out map[string]string
	if code := getJSON(t, ts, "/v1/healthz", &out); code != http.StatusOK {
		t.Fatalf("health status %d", code)
	}
	if out["status"] != "ok" {
		t.Fatalf("health body: %v", out)
	}
}

func TestTemplateLifecycle(t *testing.T) {
	ts := newTestServer(t)

	// empty create provisions the starter template
	var starter template.Template
	if code := postJSON(t, ts, "/v1/templates/create", map[string]any{}, &starter); code != http.StatusOK {
		t.Fatalf("create status %d", code)
	}
	if starter.ID == "" || len(starter.Slots) == 0 {
		t.Fatalf("starter template empty: %#v", starter)
	}

	var custom template.Template
	code := postJSON(t, ts, "/v1/templates/create", map[string]any{
		"name": "Drank",
		"slots": []map[string]any{
			{"kind": "text", "id": "s1", "name": "Drank"},
			{"kind": "text-input", "id": "s2", "name": "what"},
		},
	}, &custom)
	if code != http.StatusOK {
		t.Fatalf("create custom status %d", code)
	}
	if custom.Name != "Drank" || len(custom.Slots) != 2 {
		t.Fatalf("custom template wrong: %#v", custom)
	}

	// update renames; server preserves creation stamp
	custom.Name = "Sipped"
	var updated template.Template
	if code := postJSON(t, ts, "/v1/templates/update", custom, &updated); code != http.StatusOK {
		t.Fatalf("update status %d", code)
	}
	if updated.Name != "Sipped" || updated.CreateAtMs != custom.CreateAtMs {
		t.Fatalf("update wrong: %#v", updated)
	}

	if code := postJSON(t, ts, "/v1/templates/archive", map[string]string{"templateId": starter.ID}, nil); code != http.StatusOK {
		t.Fatalf("archive status %d", code)
	}

	var listed struct {
		Templates []template.Template `json:"templates"`
	}
	if code := getJSON(t, ts, "/v1/templates/list", &listed); code != http.StatusOK {
		t.Fatalf("list status %d", code)
	}
	if len(listed.Templates) != 1 || listed.Templates[0].ID != custom.ID {
		t.Fatalf("archived template still listed: %#v", listed.Templates)
	}
	if code := getJSON(t, ts, "/v1/templates/list?includeArchived=true", &listed); code != http.StatusOK {
		t.Fatalf("list all status %d", code)
	}
	if len(listed.Templates) != 2 {
		t.Fatalf("includeArchived lost templates: %#v", listed.Templates)
	}

	if code := postJSON(t, ts, "/v1/templates/archive", map[string]string{"templateId": "missing"}, nil); code != http.StatusNotFound {
		t.Fatalf("archive missing status %d", code)
	}
}

func createTemplate(t *testing.T, ts *httptest.Server, body map[string]any) template.Template {
	t.Helper()
	var tpl template.Template
	if code := postJSON(t, ts, "/v1/templates/create", body, &tpl); code != http.StatusOK {
		t.Fatalf("create template status %d", code)
	}
	return tpl
}

func TestCommitAndPage(t *testing.T) {
	ts := newTestServer(t)
	tpl := createTemplate(t, ts, map[string]any{
		"name": "Drank",
		"slots": []map[string]any{
			{"kind": "text", "id": "s1", "name": "Drank"},
			{"kind": "text-input", "id": "s2", "name": "what"},
		},
	})

	for i := 1; i <= 5; i++ {
		var l logstore.Log
		code := postJSON(t, ts, "/v1/logs/commit", map[string]any{
			"templateId": tpl.ID,
			"slotValues": []map[string]string{
				{"slotId": "s1", "value": "Drank"},
				{"slotId": "s2", "value": fmt.Sprintf("water %d", i)},
			},
		}, &l)
		if code != http.StatusOK {
			t.Fatalf("commit %d status %d", i, code)
		}
		if l.Content != fmt.Sprintf("Drank water %d", i) {
			t.Fatalf("content = %q", l.Content)
		}
	}

	// commit with a blank required value is rejected before any write
	code := postJSON(t, ts, "/v1/logs/commit", map[string]any{
		"templateId": tpl.ID,
		"slotValues": []map[string]string{
			{"slotId": "s1", "value": "Drank"},
			{"slotId": "s2", "value": ""},
		},
	}, nil)
	if code != http.StatusBadRequest {
		t.Fatalf("blank commit status %d", code)
	}

	var page pageResponse
	if code := getJSON(t, ts, "/v1/logs/page?size=3", &page); code != http.StatusOK {
		t.Fatalf("page status %d", code)
	}
	if len(page.Logs) != 3 || page.Exhausted {
		t.Fatalf("first page wrong: %d exhausted=%v", len(page.Logs), page.Exhausted)
	}
	if page.Logs[0].Content != "Drank water 5" {
		t.Fatalf("newest first broken: %q", page.Logs[0].Content)
	}

	var rest pageResponse
	if code := getJSON(t, ts, "/v1/logs/page?size=3&cursor="+url.QueryEscape(page.Cursor), &rest); code != http.StatusOK {
		t.Fatalf("page 2 status %d", code)
	}
	if len(rest.Logs) != 2 || !rest.Exhausted {
		t.Fatalf("second page wrong: %d exhausted=%v", len(rest.Logs), rest.Exhausted)
	}
	if rest.Logs[len(rest.Logs)-1].Content != "Drank water 1" {
		t.Fatalf("oldest missing: %q", rest.Logs[len(rest.Logs)-1].Content)
	}

	// revision referenced by the logs is servable
	if code := getJSON(t, ts, "/v1/revisions/get?id="+url.QueryEscape(page.Logs[0].TemplateRevisionID), nil); code != http.StatusOK {
		t.Fatalf("revision get status %d", code)
	}

	// free-text history accumulated, deduped, most recent first
	var hist struct {
		History []string `json:"history"`
	}
	if code := getJSON(t, ts, "/v1/history/get?slotId=s2", &hist); code != http.StatusOK {
		t.Fatalf("history status %d", code)
	}
	if len(hist.History) != 5 || hist.History[0] != "water 5" {
		t.Fatalf("history wrong: %v", hist.History)
	}
}

func TestCommitNoInputEndpoint(t *testing.T) {
	ts := newTestServer(t)
	static := createTemplate(t, ts, map[string]any{
		"name": "Woke up",
		"slots": []map[string]any{
			{"kind": "text", "id": "t1", "name": "Woke"},
			{"kind": "text", "id": "t2", "name": "up"},
		},
	})
	input := createTemplate(t, ts, map[string]any{
		"name": "Drank",
		"slots": []map[string]any{
			{"kind": "text-input", "id": "s1", "name": "what"},
		},
	})

	var l logstore.Log
	if code := postJSON(t, ts, "/v1/logs/commit-no-input", map[string]string{"templateId": static.ID}, &l); code != http.StatusOK {
		t.Fatalf("no-input commit status %d", code)
	}
	if l.Content != "Woke up" {
		t.Fatalf("content = %q", l.Content)
	}

	if code := postJSON(t, ts, "/v1/logs/commit-no-input", map[string]string{"templateId": input.ID}, nil); code != http.StatusBadRequest {
		t.Fatalf("no-input on input template status %d", code)
	}

	// archived templates accept no new logs
	if code := postJSON(t, ts, "/v1/templates/archive", map[string]string{"templateId": static.ID}, nil); code != http.StatusOK {
		t.Fatalf("archive status %d", code)
	}
	if code := postJSON(t, ts, "/v1/logs/commit-no-input", map[string]string{"templateId": static.ID}, nil); code != http.StatusConflict {
		t.Fatalf("commit on archived template status %d", code)
	}
}

func TestPageFilter(t *testing.T) {
	ts := newTestServer(t)
	a := createTemplate(t, ts, map[string]any{
		"name":  "A",
		"slots": []map[string]any{{"kind": "text", "id": "x", "name": "A"}},
	})
	b := createTemplate(t, ts, map[string]any{
		"name":  "B",
		"slots": []map[string]any{{"kind": "text", "id": "y", "name": "B"}},
	})
	for i := 0; i < 2; i++ {
		postJSON(t, ts, "/v1/logs/commit-no-input", map[string]string{"templateId": a.ID}, nil)
		postJSON(t, ts, "/v1/logs/commit-no-input", map[string]string{"templateId": b.ID}, nil)
	}

	filter := fmt.Sprintf("template_id == %q", b.ID)
	var page pageResponse
	if code := getJSON(t, ts, "/v1/logs/page?filter="+url.QueryEscape(filter), &page); code != http.StatusOK {
		t.Fatalf("filtered page status %d", code)
	}
	if len(page.Logs) != 2 {
		t.Fatalf("filter returned %d logs", len(page.Logs))
	}
	for _, l := range page.Logs {
		if l.TemplateID != b.ID {
			t.Fatalf("filter leaked %q", l.TemplateID)
		}
	}

	if code := getJSON(t, ts, "/v1/logs/page?filter="+url.QueryEscape("content =="), nil); code != http.StatusBadRequest {
		t.Fatalf("bad filter status %d", code)
	}
}

func TestCommitValidation(t *testing.T) {
	ts := newTestServer(t)
	if code := postJSON(t, ts, "/v1/logs/commit", map[string]any{"slotValues": []map[string]string{}}, nil); code != http.StatusBadRequest {
		t.Fatalf("missing templateId status %d", code)
	}
	if code := postJSON(t, ts, "/v1/logs/commit", map[string]any{"templateId": "missing"}, nil); code != http.StatusNotFound {
		t.Fatalf("unknown template status %d", code)
	}
}
