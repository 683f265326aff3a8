// Package tools describes the page operations as LLM tool definitions and
// dispatches tool calls to an engine.
//
// Definitions are built from the component field table on first use and
// cached for the life of the process; [ResetCache] drops the cache so tests
// can observe a rebuild.
package tools

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/kottinov/website-builder/pkg/document"
	"github.com/kottinov/website-builder/pkg/engine"
	"github.com/kottinov/website-builder/pkg/errors"
	"github.com/kottinov/website-builder/pkg/layout"
	"github.com/kottinov/website-builder/pkg/schema"
)

// Tool names.
const (
	ListComponents    = "list_components"
	GetComponent      = "get_component"
	FindComponents    = "find_components"
	GetComponents     = "get_components"
	CreateComponent   = "create_component"
	EditComponent     = "edit_component"
	RemoveComponent   = "remove_component"
	ReorderComponents = "reorder_components"
	MutateComponents  = "mutate_components"
)

// Definition is one tool as presented to a model.
type Definition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

var cache struct {
	mu     sync.Mutex
	defs   []Definition
	builds int
}

// Definitions returns every tool definition. The first call builds them;
// later calls reuse the cached list. The returned slice is a copy.
func Definitions() []Definition {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	if cache.defs == nil {
		cache.defs = build()
		cache.builds++
	}
	return slices.Clone(cache.defs)
}

// Lookup returns the definition named name.
func Lookup(name string) (Definition, bool) {
	for _, d := range Definitions() {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}

// ResetCache discards the cached definitions.
func ResetCache() {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.defs = nil
}

func builds() int {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	return cache.builds
}

func build() []Definition {
	filePath := prop("string", "Page JSON path; defaults to static/wsb/page.json.")
	format := map[string]any{
		"type":        "string",
		"enum":        []string{string(engine.Concise), string(engine.Detailed)},
		"description": "concise (id, kind, orderIndex, parentId, title) or detailed (full record).",
	}
	idList := map[string]any{"type": "array", "items": map[string]any{"type": "string"}}

	return []Definition{
		{
			Name:        ListComponents,
			Description: "List every component on the page as concise rows (id, kind, orderIndex, parentId, title).",
			InputSchema: obj(map[string]any{schema.KeyFilePath: filePath}),
		},
		{
			Name:        GetComponent,
			Description: "Get one component by id.",
			InputSchema: obj(map[string]any{
				schema.KeyFilePath:       filePath,
				schema.KeyComponentID:    prop("string", "The component id."),
				schema.KeyResponseFormat: format,
			}, schema.KeyComponentID),
		},
		{
			Name:        FindComponents,
			Description: "Find components whose text, content, title or name contains the query (case-insensitive).",
			InputSchema: obj(map[string]any{
				schema.KeyFilePath: filePath,
				"query":            prop("string", "Text to search for."),
			}, "query"),
		},
		{
			Name: GetComponents,
			Description: "Query components with optional filters (ids, parent_id, kinds, text_contains) combined with AND. " +
				"parent_id null selects top-level components. fields projects the output and overrides response_format.",
			InputSchema: obj(map[string]any{
				schema.KeyFilePath:       filePath,
				"ids":                    idList,
				schema.KeyParentID:       map[string]any{"type": []string{"string", "null"}, "description": "Children of this parent; null for top level."},
				"kinds":                  idList,
				"text_contains":          prop("string", "Substring searched in text, content, title and name."),
				"fields":                 idList,
				schema.KeyResponseFormat: format,
			}),
		},
		{
			Name: CreateComponent,
			Description: "Create one component. SECTIONs are top-level (relIn null) and chain to the previous section with relTo; " +
				"every other kind needs relIn.id or parent_id naming an existing parent. Give absolute left, top, width and height; " +
				"relIn offsets are derived. auto_position computes the placement from a strategy instead.",
			InputSchema: schema.CreateSchema(),
		},
		{
			Name:        EditComponent,
			Description: "Change fields of an existing component. Only the given fields change; null clears a field. id, parent_id and kind cannot change.",
			InputSchema: schema.EditSchema(),
		},
		{
			Name:        RemoveComponent,
			Description: "Remove a component and everything nested under it.",
			InputSchema: obj(map[string]any{
				schema.KeyFilePath:    filePath,
				schema.KeyComponentID: prop("string", "The component to remove."),
			}, schema.KeyComponentID),
		},
		{
			Name:        ReorderComponents,
			Description: "Reorder the children of parent_id (omit for top-level). Listed ids come first; unlisted siblings follow in their current order.",
			InputSchema: obj(map[string]any{
				schema.KeyFilePath:       filePath,
				schema.KeyParentID:       map[string]any{"type": []string{"string", "null"}},
				"order_ids":              idList,
				schema.KeyResponseFormat: format,
			}, "order_ids"),
		},
		{
			Name:        MutateComponents,
			Description: mutateDescription,
			InputSchema: obj(map[string]any{
				schema.KeyFilePath: filePath,
				"operations": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"op":            map[string]any{"type": "string", "enum": []string{"create", "edit", "remove", "reorder"}},
							"alias":         prop("string", "Name for a created component that later operations may use as an id."),
							"id":            prop("string", "Target of edit or remove."),
							"payload":       map[string]any{"type": "object"},
							"parent_id":     map[string]any{"type": []string{"string", "null"}},
							"order_ids":     idList,
							"auto_position": map[string]any{"type": "object"},
						},
						"required": []string{"op"},
					},
				},
				schema.KeyResponseFormat: format,
			}, "operations"),
		},
	}
}

var mutateDescription = `Apply create, edit, remove and reorder operations as one all-or-nothing batch.

Operations run in order. If any operation fails, none of the changes are saved and the error names the failing operation.

CREATE: {"op": "create", "alias": "hero", "payload": {...}, "auto_position": {...}}
  auto_position: {parent_id, strategy, gap_px, sibling_id}; strategy is one of ` + strategiesList + `.
  Without parent_id, auto_position uses the last SECTION created earlier in the batch.
EDIT:    {"op": "edit", "id": "...", "payload": {...}}
REMOVE:  {"op": "remove", "id": "..."}
REORDER: {"op": "reorder", "parent_id": "...", "order_ids": [...]}

Any id field may name an alias of a CREATE in the same batch.`

var strategiesList = strings.Join(layout.Strategies, ", ")

func prop(typ, desc string) map[string]any {
	return map[string]any{"type": typ, "description": desc}
}

func obj(props map[string]any, required ...string) map[string]any {
	if required == nil {
		required = []string{}
	}
	return map[string]any{"type": "object", "properties": props, "required": required}
}

// Call runs the tool name with args against eng and returns a JSON-ready
// result.
func Call(ctx context.Context, eng *engine.Engine, name string, args map[string]any) (any, error) {
	if args == nil {
		args = map[string]any{}
	}
	key := str(args, schema.KeyFilePath)
	if key != "" {
		if err := errors.ValidatePagePath(key); err != nil {
			return nil, err
		}
	}
	verbosity, err := engine.ParseVerbosity(str(args, schema.KeyResponseFormat))
	if err != nil {
		return nil, err
	}

	switch name {
	case ListComponents:
		return eng.List(ctx, key)

	case GetComponent:
		id := str(args, schema.KeyComponentID)
		c, err := eng.Get(ctx, key, id)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, errors.New(errors.ErrCodeNotFound, "component %s not found (use list_components to see existing ids)", id)
		}
		return engine.View(c, verbosity), nil

	case FindComponents:
		return eng.Find(ctx, key, str(args, "query"))

	case GetComponents:
		f := document.Filter{
			IDs:          strs(args, "ids"),
			Kinds:        strs(args, "kinds"),
			TextContains: str(args, "text_contains"),
		}
		if v, ok := args[schema.KeyParentID]; ok {
			if v == nil {
				f.TopLevel = true
			} else {
				f.ParentID = str(args, schema.KeyParentID)
			}
		}
		found, err := eng.Query(ctx, key, f)
		if err != nil {
			return nil, err
		}
		fields := strs(args, "fields")
		out := make([]any, len(found))
		for i, c := range found {
			if len(fields) > 0 {
				out[i] = document.Project(c, fields)
			} else {
				out[i] = engine.View(c, verbosity)
			}
		}
		return out, nil

	case CreateComponent:
		c, err := eng.Create(ctx, key, args)
		if err != nil {
			return nil, err
		}
		return engine.View(c, verbosity), nil

	case EditComponent:
		c, err := eng.Edit(ctx, key, args)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return map[string]any{"op": "edit", "id": str(args, schema.KeyComponentID), "error": "Component not found"}, nil
		}
		return engine.View(c, verbosity), nil

	case RemoveComponent:
		id := str(args, schema.KeyComponentID)
		removed, err := eng.Remove(ctx, key, id)
		if err != nil {
			return nil, err
		}
		return engine.Result{Op: engine.OpRemove, ID: id, Removed: removed}.Render(verbosity), nil

	case ReorderComponents:
		parentID := str(args, schema.KeyParentID)
		group, err := eng.Reorder(ctx, key, parentID, strs(args, "order_ids"))
		if err != nil {
			return nil, err
		}
		return engine.Result{Op: engine.OpReorder, ParentID: parentID, Components: group}.Render(verbosity), nil

	case MutateComponents:
		raw, _ := args["operations"].([]any)
		ops, err := engine.ParseOperations(raw)
		if err != nil {
			return nil, err
		}
		results, err := eng.Batch(ctx, key, ops)
		if err != nil {
			return nil, err
		}
		return engine.RenderAll(results, verbosity), nil

	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unknown tool %q", name)
	}
}

func str(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// strs reads a string list, accepting a single string as a list of one.
func strs(args map[string]any, key string) []string {
	switch v := args[key].(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, x := range v {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
