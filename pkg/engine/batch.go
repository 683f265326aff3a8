package engine

import (
	"github.com/kottinov/website-builder/pkg/document"
	"github.com/kottinov/website-builder/pkg/errors"
	"github.com/kottinov/website-builder/pkg/page"
	"github.com/kottinov/website-builder/pkg/schema"
)

// tx is one batch in flight: a loaded document, the alias table and the
// state carried from one operation to the next.
type tx struct {
	e   *Engine
	doc *document.Document

	aliases map[string]string

	// lastSection is the most recent SECTION created in this batch.
	lastSection string
}

func newTx(e *Engine, doc *document.Document) *tx {
	return &tx{e: e, doc: doc, aliases: make(map[string]string)}
}

// prepare copies every payload, assigns ids to creates, builds the alias
// table and rewrites alias references to real ids. The caller's operations
// are not modified.
func (t *tx) prepare(ops []Operation) ([]Operation, error) {
	out := make([]Operation, len(ops))
	aliasAt := make(map[string]int)

	for i, op := range ops {
		payload := map[string]any{}
		if op.Payload != nil {
			payload = page.Canonical(op.Payload).(map[string]any)
		}
		if v, ok := payload[keyOrderIDsCamel]; ok {
			if _, set := payload[keyOrderIDs]; !set {
				payload[keyOrderIDs] = v
			}
			delete(payload, keyOrderIDsCamel)
		}

		if op.Type == OpCreate {
			id, _ := payload["id"].(string)
			if id == "" {
				id = t.e.newID()
				payload["id"] = id
			}
			if op.Alias != "" {
				if prev, dup := aliasAt[op.Alias]; dup {
					return nil, errors.New(errors.ErrCodeInvalidInput,
						"alias %q is used by operations %d and %d; aliases must be unique within a batch", op.Alias, prev, i)
				}
				aliasAt[op.Alias] = i
				t.aliases[op.Alias] = id
			}
		}
		out[i] = Operation{Type: op.Type, Payload: payload, Alias: op.Alias}
	}

	if len(t.aliases) > 0 {
		for _, op := range out {
			t.resolve(op.Payload)
		}
	}
	return out, nil
}

// resolve rewrites every reference field of payload through the alias table.
func (t *tx) resolve(payload map[string]any) {
	for _, k := range []string{schema.KeyParentID, schema.KeyBeforeID, schema.KeyAfterID, schema.KeyComponentID} {
		t.rewrite(payload, k)
	}
	for _, k := range []string{"relIn", "relTo"} {
		if m, ok := payload[k].(map[string]any); ok {
			t.rewrite(m, "id")
		}
	}
	if auto, ok := payload[schema.KeyAutoPosition].(map[string]any); ok {
		t.rewrite(auto, schema.KeyParentID)
		t.rewrite(auto, "sibling_id")
	}
	if ids, ok := payload[keyOrderIDs].([]any); ok {
		for i, v := range ids {
			if s, ok := v.(string); ok {
				if id, hit := t.aliases[s]; hit {
					ids[i] = id
				}
			}
		}
	}
}

func (t *tx) rewrite(m map[string]any, key string) {
	if s, ok := m[key].(string); ok {
		if id, hit := t.aliases[s]; hit {
			m[key] = id
		}
	}
}

func (t *tx) apply(op Operation) (Result, error) {
	switch op.Type {
	case OpCreate:
		c, err := t.create(op.Payload)
		if err != nil {
			return Result{}, err
		}
		return Result{Op: OpCreate, ID: c.ID, Components: []*page.Component{c}}, nil
	case OpEdit:
		c, err := t.edit(op.Payload)
		if err != nil {
			return Result{}, err
		}
		return Result{Op: OpEdit, ID: c.ID, Components: []*page.Component{c}}, nil
	case OpRemove:
		return t.renumbered(t.remove(op.Payload))
	case OpReorder:
		return t.renumbered(t.reorder(op.Payload))
	default:
		return Result{}, errors.New(errors.ErrCodeInvalidInput,
			"unknown op %q (use CREATE, EDIT, REMOVE or REORDER)", op.Type)
	}
}

// renumbered closes the gaps a remove or reorder leaves, so later creates in
// the same batch see the final orderIndex of every sibling.
func (t *tx) renumbered(res Result, err error) (Result, error) {
	if err != nil {
		return Result{}, err
	}
	t.doc.Renumber()
	return res, nil
}

// checkRelTo reports an error unless the relTo target exists on the page or is a
// known anchor.
func (t *tx) checkRelTo(c *page.Component) error {
	if c.RelTo == nil || c.RelTo.ID == "" {
		return nil
	}
	switch {
	case c.RelTo.ID == c.ID:
		return errors.New(errors.ErrCodeInvalidReference, "component %s cannot be relTo itself", c.ID)
	case t.doc.Has(c.RelTo.ID), t.e.isAnchor(c.RelTo.ID):
		return nil
	default:
		return errors.New(errors.ErrCodeInvalidReference,
			"relTo.id %s does not exist on the page (use list_components to find a sibling id)", c.RelTo.ID)
	}
}
