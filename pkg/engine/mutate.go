package engine

import (
	"slices"

	"github.com/kottinov/website-builder/pkg/errors"
	"github.com/kottinov/website-builder/pkg/layout"
	"github.com/kottinov/website-builder/pkg/page"
	"github.com/kottinov/website-builder/pkg/schema"
	"github.com/kottinov/website-builder/pkg/style"
)

// Relation keys keep an explicit null when cleared; other keys are dropped.
var nullableOnEdit = []string{"relIn", "relTo", "relPage", "relPara"}

var geometryOnEdit = []string{"left", "top", "right", "bottom", "width", "height"}

// edit merges the updates into a copy of the target, checks the result and
// only then writes it back.
func (t *tx) edit(payload map[string]any) (*page.Component, error) {
	in, err := schema.ValidateEdit(payload)
	if err != nil {
		return nil, err
	}
	target := t.doc.Find(in.ComponentID)
	if target == nil {
		return nil, errors.New(errors.ErrCodeNotFound,
			"component %s not found (use list_components to see existing ids)", in.ComponentID)
	}
	if kind := target.EffectiveKind(); in.Kind != "" && in.Kind != kind {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"kind cannot change: %s is %s, not %s; remove it and create a new component instead", target.ID, kind, in.Kind)
	}

	m := target.ToMap()
	delete(m, "items")
	geometryChanged := false
	for k, v := range in.Updates {
		switch {
		case k == "orderIndex":
			continue
		case v == nil && slices.Contains(nullableOnEdit, k):
			m[k] = nil
		case v == nil:
			delete(m, k)
		case k == "relIn":
			if rel, ok := v.(map[string]any); ok {
				if id, _ := rel["id"].(string); id == "" && target.ParentID() != "" {
					rel["id"] = target.ParentID()
				}
			}
			m[k] = v
		default:
			m[k] = v
		}
		if slices.Contains(geometryOnEdit, k) {
			geometryChanged = true
		}
	}
	style.Normalize(m)

	updated, err := page.FromMap(m)
	if err != nil {
		return nil, err
	}

	_, relInGiven := in.Updates["relIn"]
	if geometryChanged && !relInGiven && !updated.IsSection() && updated.RelIn != nil {
		if parent := t.doc.Find(updated.RelIn.ID); parent != nil {
			rel := &page.RelIn{ID: updated.RelIn.ID}
			layout.FillRelIn(rel, layout.BoxOf(updated), layout.BoxOf(parent))
			updated.RelIn = rel
		}
	}

	if err := schema.CheckComponent(updated); err != nil {
		return nil, err
	}
	if pid := updated.ParentID(); pid != "" && pid != target.ParentID() {
		if pid == target.ID || slices.Contains(t.doc.Descendants(target.ID), pid) {
			return nil, errors.New(errors.ErrCodeInvalidReference,
				"relIn.id %s would make %s its own ancestor", pid, target.ID)
		}
		if !t.doc.Has(pid) {
			return nil, errors.New(errors.ErrCodeInvalidReference, "parent %s does not exist", pid)
		}
	}
	if err := t.checkRelTo(updated); err != nil {
		return nil, err
	}

	updated.Items = target.Items
	updated.OrderIndex = target.OrderIndex
	*target = *updated
	t.doc.Invalidate()
	return target, nil
}

func (t *tx) remove(payload map[string]any) (Result, error) {
	id, _ := payload[schema.KeyComponentID].(string)
	if id == "" {
		id, _ = payload["id"].(string)
	}
	if id == "" {
		return Result{}, errors.New(errors.ErrCodeInvalidInput, "component_id is required")
	}
	if err := errors.ValidateID(schema.KeyComponentID, id); err != nil {
		return Result{}, err
	}

	removed := t.doc.Remove(id)
	if !removed {
		t.e.Logger.Debug("remove: component not found", "id", id)
	}
	return Result{Op: OpRemove, ID: id, Removed: removed}, nil
}

func (t *tx) reorder(payload map[string]any) (Result, error) {
	parentID, _ := payload[schema.KeyParentID].(string)
	raw, present := payload[keyOrderIDs]
	if !present || raw == nil {
		return Result{}, errors.New(errors.ErrCodeInvalidInput, "order_ids is required")
	}
	list, ok := raw.([]any)
	if !ok {
		return Result{}, errors.New(errors.ErrCodeInvalidInput, "order_ids must be an array of component ids")
	}
	ids := make([]string, 0, len(list))
	for i, v := range list {
		s, ok := v.(string)
		if !ok {
			return Result{}, errors.New(errors.ErrCodeInvalidInput, "order_ids[%d] must be a string", i)
		}
		ids = append(ids, s)
	}

	group := t.doc.Reorder(parentID, ids)
	return Result{Op: OpReorder, ParentID: parentID, Components: group}, nil
}
