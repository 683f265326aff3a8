// Package pkg provides the libraries behind wsb, the WSB page editor.
//
// # Overview
//
// A WSB page is one JSON document holding a flat list of components. Each
// component is placed inside a parent (relIn, with offsets from the parent's
// edges) and below a preceding sibling (relTo). The pkg directory is
// organized around that document:
//
//  1. [page] - The document model and its byte-stable JSON codec
//  2. [document] - Indexed view of a page: lookup, queries, invariant checks
//  3. [layout] - Geometry: relIn offsets, relTo chaining, auto-placement
//  4. [engine] - Atomic create, edit, remove, reorder and batch operations
//  5. [store] - Page persistence (file, memory, SQLite, Redis, MongoDB)
//  6. [tools] - The operations as model tool definitions and dispatch
//
// # Architecture
//
// Every change flows the same way:
//
//	tool call / CLI / HTTP request
//	         ↓
//	    [schema] package (validate the payload)
//	         ↓
//	    [engine] package (lock the page, apply to a snapshot)
//	         ↓
//	    [layout] + [document] packages (place, renumber, check)
//	         ↓
//	    [store] package (save once, or not at all)
//
// # Quick Start
//
//	st, _ := store.Open(ctx, store.Options{Backend: store.BackendFile})
//	defer st.Close()
//
//	eng := engine.New(st, logger)
//	sec, _ := eng.Create(ctx, "static/wsb/page.json", map[string]any{
//	    "kind": "SECTION", "left": 0, "top": 0, "width": 1300, "height": 600,
//	})
//	_, _ = eng.Create(ctx, "static/wsb/page.json", map[string]any{
//	    "kind": "TEXT", "parent_id": sec.ID, "text": "Welcome",
//	    "left": 40, "top": 40, "width": 400, "height": 80,
//	})
//
// # Supporting Packages
//
// [style] normalizes CSS-like style maps. [outline] draws the hierarchy as
// Graphviz DOT or SVG. [cache] keeps rendered outlines. [watch] reports
// changes to a page file. [config] loads wsb.toml. [errors] carries the
// error codes every layer returns. [observability] exposes hooks for
// metrics. [buildinfo] reports the version.
//
// [page]: https://pkg.go.dev/github.com/kottinov/website-builder/pkg/page
// [document]: https://pkg.go.dev/github.com/kottinov/website-builder/pkg/document
// [layout]: https://pkg.go.dev/github.com/kottinov/website-builder/pkg/layout
// [engine]: https://pkg.go.dev/github.com/kottinov/website-builder/pkg/engine
// [store]: https://pkg.go.dev/github.com/kottinov/website-builder/pkg/store
// [tools]: https://pkg.go.dev/github.com/kottinov/website-builder/pkg/tools
// [schema]: https://pkg.go.dev/github.com/kottinov/website-builder/pkg/schema
// [style]: https://pkg.go.dev/github.com/kottinov/website-builder/pkg/style
// [outline]: https://pkg.go.dev/github.com/kottinov/website-builder/pkg/outline
// [cache]: https://pkg.go.dev/github.com/kottinov/website-builder/pkg/cache
// [watch]: https://pkg.go.dev/github.com/kottinov/website-builder/pkg/watch
// [config]: https://pkg.go.dev/github.com/kottinov/website-builder/pkg/config
// [errors]: https://pkg.go.dev/github.com/kottinov/website-builder/pkg/errors
// [observability]: https://pkg.go.dev/github.com/kottinov/website-builder/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/kottinov/website-builder/pkg/buildinfo
package pkg
