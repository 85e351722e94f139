package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archboard/pkg/buildinfo"
	"github.com/matzehuels/archboard/pkg/diagram"
	"github.com/matzehuels/archboard/pkg/editor"
	errs "github.com/matzehuels/archboard/pkg/errors"
	"github.com/matzehuels/archboard/pkg/idgen"
	"github.com/matzehuels/archboard/pkg/persist"
)

func newTestServer(t *testing.T) (*httptest.Server, *editor.Editor) {
	t.Helper()
	logger := log.New(io.Discard)
	ed := editor.New(nil, editor.Options{Generator: idgen.NewSequence(), Logger: logger})
	ts := httptest.NewServer(New(ed, logger).Handler())
	t.Cleanup(ts.Close)
	return ts, ed
}

func do(t *testing.T, ts *httptest.Server, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := do(t, ts, http.MethodGet, "/healthz", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	got := decodeBody[healthResponse](t, resp)
	if got.Status != "ok" || got.Busy {
		t.Errorf("healthz = %+v, want ok and idle", got)
	}
	if got.Build != buildinfo.Get() {
		t.Errorf("build = %+v, want %+v", got.Build, buildinfo.Get())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)
	do(t, ts, http.MethodGet, "/api/kinds", "")
	resp := do(t, ts, http.MethodGet, "/metrics", "")
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `archboard_http_requests_total{method="GET",route="/api/kinds",status="200"}`) {
		t.Error("/metrics is missing the request counter for /api/kinds")
	}
}

func TestKinds(t *testing.T) {
	ts, _ := newTestServer(t)
	got := decodeBody[kindsResponse](t, do(t, ts, http.MethodGet, "/api/kinds", ""))
	if len(got.Nodes) != len(diagram.NodeTypes) || len(got.Edges) != len(diagram.EdgeTypes) {
		t.Fatalf("kinds = %+v", got)
	}
	if got.Nodes[1] != (kindInfo{Type: diagram.NodeDB, Label: "Database"}) {
		t.Errorf("Nodes[1] = %+v", got.Nodes[1])
	}
}

func TestDiagram(t *testing.T) {
	ts, ed := newTestServer(t)
	resp := do(t, ts, http.MethodGet, "/api/diagram", "")
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	d, err := persist.Decode(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !diagram.NodesEqual(d.Nodes, ed.Nodes()) {
		t.Error("GET /api/diagram does not match the editor")
	}
}

func TestAddNodeAndConnect(t *testing.T) {
	ts, ed := newTestServer(t)

	resp := do(t, ts, http.MethodPost, "/api/nodes", `{"kind":"worker"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add node status = %d", resp.StatusCode)
	}
	n := decodeBody[diagram.Node](t, resp)
	if n.ID != "worker-1" || n.Name != "Worker" {
		t.Errorf("node = %+v", n)
	}

	resp = do(t, ts, http.MethodPost, "/api/edges", `{"source":"svc","target":"worker-1","type":"publish","label":"jobs"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("connect status = %d", resp.StatusCode)
	}
	e := decodeBody[diagram.Edge](t, resp)
	if e.ID != "e-svc-worker-1" || e.Type != diagram.EdgePublish || e.Label != "jobs" {
		t.Errorf("edge = %+v", e)
	}
	if len(ed.Edges()) != 1 {
		t.Errorf("editor edges = %d", len(ed.Edges()))
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   errs.Code
	}{
		{"unknown kind", http.MethodPost, "/api/nodes", `{"kind":"box"}`, http.StatusBadRequest, errs.ErrCodeInvalidInput},
		{"bad json", http.MethodPost, "/api/nodes", `{"kind":`, http.StatusBadRequest, errs.ErrCodeInvalidInput},
		{"unknown field", http.MethodPost, "/api/nodes", `{"type":"db"}`, http.StatusBadRequest, errs.ErrCodeInvalidInput},
		{"self edge", http.MethodPost, "/api/edges", `{"source":"svc","target":"svc"}`, http.StatusBadRequest, errs.ErrCodeInvalidEndpoint},
		{"missing endpoint", http.MethodPost, "/api/edges", `{"source":"svc","target":"nope"}`, http.StatusBadRequest, errs.ErrCodeInvalidEndpoint},
		{"relabel missing node", http.MethodPatch, "/api/nodes/nope/label", `{"label":"x"}`, http.StatusNotFound, errs.ErrCodeNotFound},
		{"control chars", http.MethodPatch, "/api/nodes/svc/label", `{"label":"a\u0000b"}`, http.StatusBadRequest, errs.ErrCodeInvalidInput},
		{"bad export format", http.MethodGet, "/api/export/pdf", "", http.StatusBadRequest, errs.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, _ := newTestServer(t)
			resp := do(t, ts, tt.method, tt.path, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			got := decodeBody[errorResponse](t, resp)
			if got.Code != tt.code || got.Error == "" {
				t.Errorf("body = %+v, want code %s", got, tt.code)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errs.Code
		want int
	}{
		{errs.ErrCodeInvalidInput, http.StatusBadRequest},
		{errs.ErrCodeInvalidPath, http.StatusBadRequest},
		{errs.ErrCodeNotFound, http.StatusNotFound},
		{errs.ErrCodeBusy, http.StatusConflict},
		{errs.ErrCodeIDCollision, http.StatusInternalServerError},
		{errs.ErrCodeInternal, http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.code); got != tt.want {
			t.Errorf("statusFor(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestSelectionRelabelDelete(t *testing.T) {
	ts, ed := newTestServer(t)
	do(t, ts, http.MethodPost, "/api/edges", `{"source":"svc","target":"db"}`)

	sel := decodeBody[selectionResponse](t, do(t, ts, http.MethodPost, "/api/selection", `{"nodes":["svc"],"edges":[]}`))
	if sel.Active != "svc" || len(sel.Nodes) != 1 {
		t.Errorf("selection = %+v", sel)
	}

	// only the active node can be relabelled
	got := decodeBody[changedResponse](t, do(t, ts, http.MethodPatch, "/api/nodes/db/label", `{"label":"Orders"}`))
	if got.Changed {
		t.Error("relabel of an inactive node reported a change")
	}
	got = decodeBody[changedResponse](t, do(t, ts, http.MethodPatch, "/api/nodes/svc/label", `{"label":"API"}`))
	if !got.Changed {
		t.Error("relabel of the active node reported no change")
	}
	if n, _ := ed.Selected(); n.Name != "API" {
		t.Errorf("name = %q", n.Name)
	}

	del := decodeBody[deleteResponse](t, do(t, ts, http.MethodPost, "/api/delete-selected", ""))
	if del.Nodes != 1 || del.Edges != 1 {
		t.Errorf("deleted = %+v", del)
	}
	sel = decodeBody[selectionResponse](t, do(t, ts, http.MethodGet, "/api/selection", ""))
	if sel.Active != "" || len(sel.Nodes) != 0 || sel.Edges == nil {
		t.Errorf("selection after delete = %+v", sel)
	}
}

func TestChanges(t *testing.T) {
	ts, ed := newTestServer(t)
	body := `{"nodes":[{"type":"position","id":"svc","position":{"x":5,"y":6}},{"type":"select","id":"q","selected":true}],"edges":[]}`
	got := decodeBody[changedResponse](t, do(t, ts, http.MethodPost, "/api/changes", body))
	if !got.Changed {
		t.Error("changed = false")
	}
	if p := ed.Snapshot().NodeByID("svc").Position; p != (diagram.Position{X: 5, Y: 6}) {
		t.Errorf("svc position = %+v", p)
	}
	if ed.SelectedID() != "q" {
		t.Errorf("SelectedID() = %q", ed.SelectedID())
	}
}

func TestReset(t *testing.T) {
	ts, ed := newTestServer(t)
	ed.AddNode(context.Background(), diagram.NodeQueue)
	resp := do(t, ts, http.MethodPost, "/api/reset", "")
	d, err := persist.Decode(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !diagram.NodesEqual(d.Nodes, diagram.StarterNodes()) {
		t.Errorf("nodes after reset = %d", len(d.Nodes))
	}
}

func TestImport(t *testing.T) {
	ts, ed := newTestServer(t)

	got := decodeBody[importResponse](t, do(t, ts, http.MethodPost, "/api/import", `{"nodes": "nope", "edges": []}`))
	if got.Imported {
		t.Error("malformed import reported success")
	}
	if len(ed.Nodes()) != 4 {
		t.Error("malformed import changed the diagram")
	}

	got = decodeBody[importResponse](t, do(t, ts, http.MethodPost, "/api/import", `{"nodes": [], "edges": []}`))
	if !got.Imported || len(ed.Nodes()) != 0 {
		t.Errorf("import = %+v, nodes = %d", got, len(ed.Nodes()))
	}

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/import",
		strings.NewReader("nodes:\n  - {id: a, type: db, name: A, properties: {}, position: {x: 1, y: 2}}\nedges: []\n"))
	req.Header.Set("Content-Type", "application/yaml")
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if got := decodeBody[importResponse](t, resp); !got.Imported {
		t.Error("YAML import failed")
	}
	if ed.Snapshot().NodeByID("a") == nil {
		t.Error("YAML import did not replace the diagram")
	}
}

func TestExport(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := do(t, ts, http.MethodGet, "/api/export/json", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != `attachment; filename="diagram.json"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if _, err := persist.Decode(resp.Body); err != nil {
		t.Errorf("export is not importable: %v", err)
	}

	resp = do(t, ts, http.MethodGet, "/api/export/yml", "")
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "yaml") {
		t.Errorf("Content-Type = %q", ct)
	}

	// the test editor has no rasterizer
	resp = do(t, ts, http.MethodGet, "/api/export/png", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("png status = %d, want 204", resp.StatusCode)
	}
}

func TestRecovery(t *testing.T) {
	s := New(nil, log.New(io.Discard))
	rec := httptest.NewRecorder()
	// nil editor panics inside the handler
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/diagram", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	var body errorResponse
	json.NewDecoder(rec.Body).Decode(&body)
	if body.Code != errs.ErrCodeInternal {
		t.Errorf("code = %q", body.Code)
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	ed := editor.New(nil, editor.Options{Logger: log.New(io.Discard)})
	s := New(ed, log.New(io.Discard))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.ListenAndServe(ctx, "127.0.0.1:0"); err != nil {
		t.Errorf("ListenAndServe() = %v, want nil after cancel", err)
	}
}
