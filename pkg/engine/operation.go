package engine

import (
	"strings"

	"github.com/kottinov/website-builder/pkg/document"
	"github.com/kottinov/website-builder/pkg/errors"
	"github.com/kottinov/website-builder/pkg/page"
)

// OpType selects what an [Operation] does.
type OpType string

const (
	OpCreate  OpType = "CREATE"
	OpEdit    OpType = "EDIT"
	OpRemove  OpType = "REMOVE"
	OpReorder OpType = "REORDER"
)

// Operation is one step of a batch.
type Operation struct {
	Type    OpType         `json:"op"`
	Payload map[string]any `json:"payload"`

	// Alias names a CREATE so later operations in the same batch can refer
	// to the new component before its id is known.
	Alias string `json:"alias,omitempty"`
}

// Payload keys used outside the component schema.
const (
	keyOrderIDs      = "order_ids"
	keyOrderIDsCamel = "orderIds"
)

// ParseOperations decodes operations from their JSON form. Each entry is an
// object with "op" (case-insensitive), "payload" and an optional "alias".
// For convenience, "id", "parent_id", "order_ids" and "auto_position" given
// next to the payload are folded into it.
func ParseOperations(raw []any) ([]Operation, error) {
	ops := make([]Operation, 0, len(raw))
	for i, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "operation %d must be an object", i)
		}
		name, _ := m["op"].(string)
		if name == "" {
			name, _ = m["operationType"].(string)
		}
		op := Operation{Type: OpType(strings.ToUpper(name))}
		switch op.Type {
		case OpCreate, OpEdit, OpRemove, OpReorder:
		default:
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"operation %d: unknown op %q (use CREATE, EDIT, REMOVE or REORDER)", i, name)
		}

		payload := map[string]any{}
		if p, ok := m["payload"].(map[string]any); ok {
			payload = page.Canonical(p).(map[string]any)
		} else if v, present := m["payload"]; present && v != nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "operation %d: payload must be an object", i)
		}
		if id, ok := m["id"].(string); ok && op.Type != OpCreate {
			payload["component_id"] = id
		}
		for _, k := range []string{"parent_id", keyOrderIDs, keyOrderIDsCamel, "auto_position"} {
			if v, ok := m[k]; ok {
				if _, set := payload[k]; !set {
					payload[k] = page.Canonical(v)
				}
			}
		}
		if alias, ok := m["alias"].(string); ok {
			op.Alias = alias
		}
		op.Payload = payload
		ops = append(ops, op)
	}
	return ops, nil
}

// Verbosity selects how results are rendered.
type Verbosity string

const (
	// Concise renders {id, kind, orderIndex, parentId, title}.
	Concise Verbosity = "concise"
	// Detailed renders the full component record.
	Detailed Verbosity = "detailed"
)

// ParseVerbosity maps a response_format value to a Verbosity. Empty means
// concise.
func ParseVerbosity(s string) (Verbosity, error) {
	if s == "" {
		return Concise, nil
	}
	if err := errors.ValidateOneOf("response_format", s, string(Concise), string(Detailed)); err != nil {
		return "", err
	}
	return Verbosity(s), nil
}

// Result is the outcome of one operation.
type Result struct {
	Op OpType
	ID string

	// Removed reports whether a REMOVE deleted anything.
	Removed bool

	// ParentID is the sibling group a REORDER worked on ("" for top level).
	ParentID string

	// Components holds the created or edited component, or the reordered
	// group. Components are live records; render them after the batch has
	// been renumbered.
	Components []*page.Component
}

// Component returns the single affected component, or nil.
func (r Result) Component() *page.Component {
	if len(r.Components) == 0 {
		return nil
	}
	return r.Components[0]
}

// Render converts r into its JSON-ready form.
func (r Result) Render(v Verbosity) any {
	switch r.Op {
	case OpRemove:
		return map[string]any{"op": "remove", "id": r.ID, "removed": r.Removed}
	case OpReorder:
		views := make([]any, len(r.Components))
		for i, c := range r.Components {
			views[i] = View(c, v)
		}
		var parent any
		if r.ParentID != "" {
			parent = r.ParentID
		}
		return map[string]any{"op": "reorder", "parent_id": parent, "result": views}
	default:
		return View(r.Component(), v)
	}
}

// View renders c at verbosity v. A nil component renders as nil.
func View(c *page.Component, v Verbosity) any {
	if c == nil {
		return nil
	}
	if v == Detailed {
		return c
	}
	return document.Summarize(c)
}

// RenderAll renders results in order.
func RenderAll(results []Result, v Verbosity) []any {
	out := make([]any, len(results))
	for i, r := range results {
		out[i] = r.Render(v)
	}
	return out
}
