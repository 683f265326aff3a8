package engine

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/kottinov/website-builder/pkg/document"
	"github.com/kottinov/website-builder/pkg/errors"
	"github.com/kottinov/website-builder/pkg/layout"
	"github.com/kottinov/website-builder/pkg/observability"
	"github.com/kottinov/website-builder/pkg/page"
	"github.com/kottinov/website-builder/pkg/store"
)

// Engine applies operations to pages held in a store.
//
// Every call loads the page once, works on the in-memory copy and saves at
// most once. Calls for the same page key are serialized; different pages
// proceed in parallel. An Engine is safe for concurrent use.
type Engine struct {
	Store  store.Store
	Logger *log.Logger

	newID      func() string
	anchors    []string
	templateID string
	defaultGap int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithIDFunc replaces the component id generator (upper-case UUID v4 by
// default). Page and template ids always come from [NewID].
func WithIDFunc(fn func() string) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// WithAnchors sets the ids relTo may reference without existing on the
// page. The first one is the chaining target for a page's first section.
func WithAnchors(ids ...string) Option {
	return func(e *Engine) {
		var kept []string
		for _, id := range ids {
			if id = strings.TrimSpace(id); id != "" {
				kept = append(kept, id)
			}
		}
		if len(kept) > 0 {
			e.anchors = kept
		}
	}
}

// WithTemplateID sets the templateId written into newly created pages.
// Without it each new page gets a fresh id.
func WithTemplateID(id string) Option {
	return func(e *Engine) { e.templateID = id }
}

// WithDefaultGap sets the auto_position gap used when a request gives none.
func WithDefaultGap(px int) Option {
	return func(e *Engine) { e.defaultGap = px }
}

// New creates an engine over st. A nil logger discards output.
func New(st store.Store, logger *log.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	e := &Engine{
		Store:      st,
		Logger:     logger,
		newID:      NewID,
		anchors:    []string{layout.AnchorID},
		defaultGap: layout.DefaultGap,
		locks:      make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewID returns a new upper-case UUID v4.
func NewID() string {
	return strings.ToUpper(uuid.NewString())
}

// Anchors returns the ids relTo may reference without existing on the page.
func (e *Engine) Anchors() []string {
	return append([]string(nil), e.anchors...)
}

func (e *Engine) isAnchor(id string) bool {
	for _, a := range e.anchors {
		if a == id {
			return true
		}
	}
	return false
}

// lock serializes work on one page key and returns the unlock function.
func (e *Engine) lock(key string) func() {
	e.mu.Lock()
	l, ok := e.locks[key]
	if !ok {
		l = &sync.Mutex{}
		e.locks[key] = l
	}
	e.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// pageKey returns the canonical form of key, so that spellings of the same
// path share one lock and one stored page.
func pageKey(key string) string {
	if key == "" {
		return page.DefaultPath
	}
	return filepath.ToSlash(filepath.Clean(key))
}

// load reads the page under key. A missing or unreadable page is replaced
// by a new empty one and created reports true. Structurally invalid pages
// are returned as errors and never replaced.
func (e *Engine) load(ctx context.Context, key string) (doc *document.Document, created bool, err error) {
	p, err := e.Store.Load(ctx, key)
	switch {
	case errors.Is(err, errors.ErrCodeInvalidDocument):
		e.Logger.Warn("page is unreadable, starting a new one", "page", key, "err", errors.UserMessage(err))
	case err != nil:
		return nil, false, err
	}

	if p == nil {
		templateID := e.templateID
		if templateID == "" {
			templateID = NewID()
		}
		p = page.New(NewID(), templateID)
		created = true
		observability.Engine().OnPageCreated(ctx, key)
		e.Logger.Debug("created page", "page", key, "id", p.ID)
	}
	return document.New(p), created, nil
}

// View loads the page under key and passes it to fn without saving, except
// that a page created on first access is persisted.
func (e *Engine) View(ctx context.Context, key string, fn func(*document.Document) error) error {
	key = pageKey(key)
	unlock := e.lock(key)
	defer unlock()

	doc, created, err := e.load(ctx, key)
	if err != nil {
		return err
	}
	if created {
		if err := e.Store.Save(ctx, key, doc.Page()); err != nil {
			return err
		}
	}
	return fn(doc)
}

// List returns the concise view of every component.
func (e *Engine) List(ctx context.Context, key string) ([]document.Summary, error) {
	var out []document.Summary
	err := e.View(ctx, key, func(d *document.Document) error {
		out = d.List()
		return nil
	})
	return out, err
}

// Get returns a copy of the component with id, or nil when there is none.
func (e *Engine) Get(ctx context.Context, key, id string) (*page.Component, error) {
	var out *page.Component
	err := e.View(ctx, key, func(d *document.Document) error {
		if c := d.Find(id); c != nil {
			out = c.Clone()
		}
		return nil
	})
	return out, err
}

// Find returns the components whose visible text contains q.
func (e *Engine) Find(ctx context.Context, key, q string) ([]document.Match, error) {
	var out []document.Match
	err := e.View(ctx, key, func(d *document.Document) error {
		out = d.FindText(q)
		return nil
	})
	return out, err
}

// Query returns copies of the components matching f.
func (e *Engine) Query(ctx context.Context, key string, f document.Filter) ([]*page.Component, error) {
	var out []*page.Component
	err := e.View(ctx, key, func(d *document.Document) error {
		for _, c := range d.Query(f) {
			out = append(out, c.Clone())
		}
		return nil
	})
	return out, err
}

// Check reports every invariant the stored page breaks.
func (e *Engine) Check(ctx context.Context, key string) ([]document.Violation, error) {
	var out []document.Violation
	err := e.View(ctx, key, func(d *document.Document) error {
		out = d.Check(e.anchors...)
		return nil
	})
	return out, err
}

// Page returns a copy of the whole stored page.
func (e *Engine) Page(ctx context.Context, key string) (*page.Page, error) {
	var out *page.Page
	err := e.View(ctx, key, func(d *document.Document) error {
		data, err := page.Encode(d.Page())
		if err != nil {
			return err
		}
		out, err = page.Decode(data)
		return err
	})
	return out, err
}

// Batch applies ops in order to one snapshot of the page under key.
//
// The policy is all or nothing: the first failing operation aborts the
// batch, nothing is saved, and the error (code BATCH_FAILED) names the
// operation's index and type. On success the page is renumbered and saved
// exactly once, and the results follow the input order. An empty batch is
// rejected without touching the page.
func (e *Engine) Batch(ctx context.Context, key string, ops []Operation) ([]Result, error) {
	if len(ops) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "operations must contain at least one operation")
	}
	return e.run(ctx, key, ops, false)
}

// Create adds one component. See [Engine.Batch] for the payload rules.
func (e *Engine) Create(ctx context.Context, key string, payload map[string]any) (*page.Component, error) {
	res, err := e.run(ctx, key, []Operation{{Type: OpCreate, Payload: payload}}, true)
	if err != nil {
		return nil, err
	}
	return res[0].Component(), nil
}

// Edit merges payload into the component named by payload["component_id"].
// It returns nil and no error when the component does not exist.
func (e *Engine) Edit(ctx context.Context, key string, payload map[string]any) (*page.Component, error) {
	res, err := e.run(ctx, key, []Operation{{Type: OpEdit, Payload: payload}}, true)
	if errors.Is(err, errors.ErrCodeNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return res[0].Component(), nil
}

// Remove deletes id and its descendants and reports whether anything was
// removed.
func (e *Engine) Remove(ctx context.Context, key, id string) (bool, error) {
	res, err := e.run(ctx, key, []Operation{{Type: OpRemove, Payload: map[string]any{"component_id": id}}}, true)
	if err != nil {
		return false, err
	}
	return res[0].Removed, nil
}

// Reorder rearranges the children of parentID ("" for top-level components)
// and returns the group in its new order.
func (e *Engine) Reorder(ctx context.Context, key, parentID string, ids []string) ([]*page.Component, error) {
	order := make([]any, len(ids))
	for i, id := range ids {
		order[i] = id
	}
	payload := map[string]any{keyOrderIDs: order}
	if parentID != "" {
		payload["parent_id"] = parentID
	}
	res, err := e.run(ctx, key, []Operation{{Type: OpReorder, Payload: payload}}, true)
	if err != nil {
		return nil, err
	}
	return res[0].Components, nil
}

// run executes ops as one transaction. single reports errors of a lone
// operation unwrapped.
func (e *Engine) run(ctx context.Context, key string, ops []Operation, single bool) (results []Result, err error) {
	key = pageKey(key)
	unlock := e.lock(key)
	defer unlock()

	start := time.Now()
	observability.Engine().OnBatchStart(ctx, key, len(ops))
	defer func() {
		observability.Engine().OnBatchComplete(ctx, key, len(ops), time.Since(start), err)
	}()

	doc, _, err := e.load(ctx, key)
	if err != nil {
		return nil, err
	}

	t := newTx(e, doc)
	prepared, err := t.prepare(ops)
	if err != nil {
		if single {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeBatchFailed, err, "batch rejected before execution; nothing was changed")
	}

	results = make([]Result, 0, len(prepared))
	for i, op := range prepared {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeBatchFailed, err, "batch cancelled at operation %d; all changes rolled back", i)
		}
		res, err := t.apply(op)
		if err != nil {
			e.Logger.Debug("operation failed", "page", key, "index", i, "op", op.Type, "err", errors.UserMessage(err))
			if single {
				return nil, err
			}
			return nil, errors.Wrap(errors.ErrCodeBatchFailed, err,
				"operation %d (%s) failed; all changes rolled back", i, op.Type)
		}
		results = append(results, res)
	}

	doc.Renumber()
	if err := e.Store.Save(ctx, key, doc.Page()); err != nil {
		return nil, err
	}
	e.Logger.Debug("batch committed", "page", key, "ops", len(ops), "duration", time.Since(start).Round(time.Microsecond))
	return results, nil
}
