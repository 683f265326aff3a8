package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/kottinov/website-builder/pkg/engine"
	"github.com/kottinov/website-builder/pkg/errors"
	"github.com/kottinov/website-builder/pkg/store"
)

func newTestServer(t *testing.T) (*Server, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	var n atomic.Int64
	eng := engine.New(mem, nil, engine.WithIDFunc(func() string {
		return fmt.Sprintf("C%03d", n.Add(1))
	}))
	return New(eng, nil, Options{Page: "site/home.json"}), mem
}

func do(t *testing.T, s *Server, method, target, body string) (int, map[string]any, []any) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var v any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	}
	obj, _ := v.(map[string]any)
	arr, _ := v.([]any)
	return rec.Code, obj, arr
}

func TestComponentRoutes(t *testing.T) {
	s, mem := newTestServer(t)

	code, section, _ := do(t, s, http.MethodPost, "/components",
		`{"kind": "SECTION", "left": 0, "top": 0, "width": 1300, "height": 500}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "C001", section["id"])
	assert.NotNil(t, mem.Bytes("site/home.json"), "default page is used")

	code, text, _ := do(t, s, http.MethodPost, "/components?format=detailed",
		`{"kind": "TEXT", "parent_id": "C001", "left": 100, "top": 40, "width": 300, "height": 60, "text": "Welcome"}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "C001", text["relIn"].(map[string]any)["id"])

	code, _, rows := do(t, s, http.MethodGet, "/components", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, rows, 2)

	code, _, rows = do(t, s, http.MethodGet, "/components?parent_id=null", "")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, rows, 1)
	assert.Equal(t, "C001", rows[0].(map[string]any)["id"])

	code, _, rows = do(t, s, http.MethodGet, "/components?q=welcome&fields=id", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{map[string]any{"id": "C002"}}, rows)

	code, got, _ := do(t, s, http.MethodGet, "/components/C002", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Welcome", got["title"])

	code, edited, _ := do(t, s, http.MethodPatch, "/components/C002?format=detailed", `{"text": "Hello"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Hello", edited["text"])

	code, removed, _ := do(t, s, http.MethodDelete, "/components/C001", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, removed["removed"])

	code, _, rows = do(t, s, http.MethodGet, "/components", "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, rows)
}

func TestBatchRoute(t *testing.T) {
	s, mem := newTestServer(t)

	code, _, rows := do(t, s, http.MethodPost, "/batch", `{"operations": [
		{"op": "create", "alias": "hero", "payload": {"kind": "SECTION", "left": 0, "top": 0, "width": 1300, "height": 400}},
		{"op": "create", "payload": {"kind": "TEXT", "width": 200, "height": 40}, "auto_position": {"parent_id": "hero"}}
	]}`)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, rows, 2)
	assert.Equal(t, "C001", rows[1].(map[string]any)["parentId"])

	before := mem.Bytes("site/home.json")
	code, body, _ := do(t, s, http.MethodPost, "/batch", `{"operations": [
		{"op": "create", "payload": {"kind": "SECTION", "left": 0, "top": 400, "width": 1300, "height": 400}},
		{"op": "edit", "id": "MISSING", "payload": {"text": "x"}}
	]}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, string(errors.ErrCodeBatchFailed), body["error"].(map[string]any)["code"])
	assert.Equal(t, before, mem.Bytes("site/home.json"))
}

func TestErrorStatuses(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		method, target, body string
		want                 int
	}{
		{http.MethodGet, "/components/NOPE", "", http.StatusNotFound},
		{http.MethodPatch, "/components/NOPE", `{"text": "x"}`, http.StatusNotFound},
		{http.MethodPatch, "/components/A", `{"component_id": "B"}`, http.StatusBadRequest},
		{http.MethodPost, "/components", `{"kind": "TEXT"}`, http.StatusBadRequest},
		{http.MethodPost, "/components", `[1, 2]`, http.StatusBadRequest},
		{http.MethodPost, "/batch", `{"operations": "all"}`, http.StatusBadRequest},
		{http.MethodGet, "/components?page=../../etc/passwd", "", http.StatusBadRequest},
		{http.MethodGet, "/components?format=loud", "", http.StatusBadRequest},
		{http.MethodPost, "/tools/drop_tables", `{}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			code, body, _ := do(t, s, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.want, code)
			assert.Contains(t, body, "error")
		})
	}
}

func TestPageOutsideStoreIsRejected(t *testing.T) {
	notes := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("precious user data"), 0o644))

	eng := engine.New(store.NewFile(t.TempDir()), nil)
	s := New(eng, nil, Options{Page: "site/home.json"})

	for _, target := range []string{
		"/components?page=" + url.QueryEscape(notes),
		"/check?page=" + url.QueryEscape(notes),
	} {
		code, body, _ := do(t, s, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, code, target)
		assert.Contains(t, body, "error")
	}

	data, err := os.ReadFile(notes)
	require.NoError(t, err)
	assert.Equal(t, "precious user data", string(data))
}

func TestToolRoutes(t *testing.T) {
	s, _ := newTestServer(t)

	code, _, defs := do(t, s, http.MethodGet, "/tools", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, defs, 9)

	code, _, _ = do(t, s, http.MethodPost, "/tools/create_component",
		`{"kind": "SECTION", "left": 0, "top": 0, "width": 1300, "height": 300}`)
	require.Equal(t, http.StatusOK, code)

	code, _, rows := do(t, s, http.MethodPost, "/tools/list_components", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, rows, 1)
}

func TestCheckAndOutline(t *testing.T) {
	s, _ := newTestServer(t)
	do(t, s, http.MethodPost, "/components", `{"kind": "SECTION", "left": 0, "top": 0, "width": 1300, "height": 300}`)

	code, body, _ := do(t, s, http.MethodGet, "/check", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, []any{}, body["violations"])

	req := httptest.NewRequest(http.MethodGet, "/outline", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "graphviz")
	assert.Contains(t, rec.Body.String(), "digraph")
}

func TestHealthAndVersion(t *testing.T) {
	s, _ := newTestServer(t)

	code, body, _ := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])

	code, body, _ = do(t, s, http.MethodGet, "/version", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "version")
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusFor(errors.ErrCodeInvalidReference))
	assert.Equal(t, http.StatusServiceUnavailable, StatusFor(errors.ErrCodeStorage))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(""))
}

func TestServeShutsDown(t *testing.T) {
	defer goleak.VerifyNone(t)

	s, _ := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	require.Eventually(t, func() bool {
		resp, err := client.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, ln.Addr(), s.Addr())
	client.CloseIdleConnections()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
