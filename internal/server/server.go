// Package server exposes the page engine as an HTTP JSON API.
//
// Every route takes an optional ?page= query parameter naming the page key;
// without it the server's default page is used. Responses use the same
// concise or detailed shapes as the tools (?format=detailed).
//
//	GET    /healthz
//	GET    /version
//	GET    /components                  list, or filter with ids, parent_id, kinds, q
//	GET    /components/{id}
//	POST   /components                  create
//	PATCH  /components/{id}             edit
//	DELETE /components/{id}             remove
//	POST   /components/reorder          {"parent_id": "...", "order_ids": [...]}
//	POST   /batch                       {"operations": [...]}
//	GET    /check
//	GET    /outline                     DOT, or SVG with ?as=svg
//	GET    /tools
//	POST   /tools/{name}                call a tool with a JSON object of arguments
//
// Errors are returned as {"error": {"code": "...", "message": "..."}} with a
// status derived from the error code.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kottinov/website-builder/pkg/engine"
	"github.com/kottinov/website-builder/pkg/errors"
	"github.com/kottinov/website-builder/pkg/page"
)

// maxBody bounds request bodies.
const maxBody = 4 << 20

// Options configures a Server.
type Options struct {
	// Addr is the listen address, e.g. "127.0.0.1:8787".
	Addr string
	// Page is the page key used when a request does not name one.
	Page string
	// Anchors are passed to the outline renderer.
	Anchors []string
	// Verbosity is the default response format.
	Verbosity engine.Verbosity
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
}

// Server serves the HTTP API.
type Server struct {
	engine *engine.Engine
	logger *log.Logger
	opts   Options
	router chi.Router

	mu   sync.Mutex
	addr net.Addr
}

// New builds a server around eng. A nil logger discards output.
func New(eng *engine.Engine, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.Page == "" {
		opts.Page = page.DefaultPath
	}
	if opts.Verbosity == "" {
		opts.Verbosity = engine.Concise
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}
	if len(opts.Anchors) == 0 {
		opts.Anchors = eng.Anchors()
	}
	s := &Server{engine: eng, logger: logger, opts: opts}
	s.router = s.routes()
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Addr returns the bound address once Run is listening, or nil.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Run listens on opts.Addr and serves until ctx is done, then shuts down
// gracefully. It returns nil after a clean shutdown.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "listen on %s", s.opts.Addr)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String(), "page", s.opts.Page)
		if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Debug("server stopped")
	return <-errc
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Content-Type", "application/json"))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/version", s.handleVersion)

	r.Route("/components", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Post("/reorder", s.handleReorder)
		r.Get("/{id}", s.handleGet)
		r.Patch("/{id}", s.handleEdit)
		r.Delete("/{id}", s.handleRemove)
	})
	r.Post("/batch", s.handleBatch)
	r.Get("/check", s.handleCheck)
	r.Get("/outline", s.handleOutline)

	r.Get("/tools", s.handleTools)
	r.Post("/tools/{name}", s.handleToolCall)
	return r
}

// =============================================================================
// Responses
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	status := StatusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "code", code, "err", err)
	}
	writeJSON(w, status, map[string]errorBody{"error": {Code: code, Message: err.Error()}})
}

// StatusFor maps an error code to an HTTP status.
func StatusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidReference:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeBatchFailed:
		return http.StatusConflict
	case errors.ErrCodeInvalidDocument:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case errors.ErrCodeStorage:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// =============================================================================
// Request helpers
// =============================================================================

func (s *Server) pageKey(r *http.Request) (string, error) {
	key := r.URL.Query().Get("page")
	if key == "" {
		return s.opts.Page, nil
	}
	if err := errors.ValidatePagePath(key); err != nil {
		return "", err
	}
	return key, nil
}

func (s *Server) verbosity(r *http.Request) (engine.Verbosity, error) {
	f := r.URL.Query().Get("format")
	if f == "" {
		return s.opts.Verbosity, nil
	}
	return engine.ParseVerbosity(f)
}

// decodeBody reads a JSON object body. An empty body yields an empty map.
func decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	out := map[string]any{}
	if len(data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "request body must be a JSON object")
	}
	return out, nil
}
