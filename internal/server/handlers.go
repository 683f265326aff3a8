package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kottinov/website-builder/pkg/buildinfo"
	"github.com/kottinov/website-builder/pkg/document"
	"github.com/kottinov/website-builder/pkg/engine"
	"github.com/kottinov/website-builder/pkg/errors"
	"github.com/kottinov/website-builder/pkg/outline"
	"github.com/kottinov/website-builder/pkg/schema"
	"github.com/kottinov/website-builder/pkg/tools"
)

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

// call runs a tool with args, filling in the page and response format from
// the request unless args already carry them.
func (s *Server) call(w http.ResponseWriter, r *http.Request, status int, name string, args map[string]any) {
	key, err := s.pageKey(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := s.verbosity(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, ok := args[schema.KeyFilePath]; !ok {
		args[schema.KeyFilePath] = key
	}
	if _, ok := args[schema.KeyResponseFormat]; !ok {
		args[schema.KeyResponseFormat] = string(v)
	}
	out, err := tools.Call(r.Context(), s.engine, name, args)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, status, out)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	args := map[string]any{}
	if ids := splitParam(q["ids"]); len(ids) > 0 {
		args["ids"] = ids
	}
	if kinds := splitParam(q["kinds"]); len(kinds) > 0 {
		args["kinds"] = kinds
	}
	if fields := splitParam(q["fields"]); len(fields) > 0 {
		args["fields"] = fields
	}
	if q.Has(schema.KeyParentID) {
		if p := q.Get(schema.KeyParentID); p == "" || p == "null" {
			args[schema.KeyParentID] = nil
		} else {
			args[schema.KeyParentID] = p
		}
	}
	if text := q.Get("q"); text != "" {
		args["text_contains"] = text
	}

	if len(args) == 0 {
		s.call(w, r, http.StatusOK, tools.ListComponents, args)
		return
	}
	s.call(w, r, http.StatusOK, tools.GetComponents, args)
}

// splitParam accepts both ?ids=a,b and ?ids=a&ids=b.
func splitParam(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.call(w, r, http.StatusOK, tools.GetComponent, map[string]any{
		schema.KeyComponentID: chi.URLParam(r, "id"),
	})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.call(w, r, http.StatusCreated, tools.CreateComponent, body)
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	key, err := s.pageKey(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := s.verbosity(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	body, err := decodeBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	if other, ok := body[schema.KeyComponentID].(string); ok && other != id {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "component_id %q does not match the URL id %q", other, id))
		return
	}
	body[schema.KeyComponentID] = id

	c, err := s.engine.Edit(r.Context(), key, body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if c == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "component %s not found", id))
		return
	}
	writeJSON(w, http.StatusOK, engine.View(c, v))
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	s.call(w, r, http.StatusOK, tools.RemoveComponent, map[string]any{
		schema.KeyComponentID: chi.URLParam(r, "id"),
	})
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.call(w, r, http.StatusOK, tools.ReorderComponents, body)
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, ok := body["operations"].([]any); !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "operations must be an array"))
		return
	}
	s.call(w, r, http.StatusOK, tools.MutateComponents, body)
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	key, err := s.pageKey(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	violations, err := s.engine.Check(r.Context(), key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if violations == nil {
		violations = []document.Violation{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": len(violations) == 0, "violations": violations})
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	key, err := s.pageKey(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := outline.Options{
		Detailed: r.URL.Query().Get("detailed") == "true",
		Anchors:  s.opts.Anchors,
	}
	var dot string
	err = s.engine.View(r.Context(), key, func(d *document.Document) error {
		dot = outline.ToDOT(d, opts)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if r.URL.Query().Get("as") != "svg" {
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
		_, _ = w.Write([]byte(dot))
		return
	}
	svg, err := outline.RenderSVG(r.Context(), dot)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

func (s *Server) handleTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, tools.Definitions())
}

func (s *Server) handleToolCall(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if _, ok := tools.Lookup(name); !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "unknown tool %q", name))
		return
	}
	body, err := decodeBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.call(w, r, http.StatusOK, name, body)
}
