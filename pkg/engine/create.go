package engine

import (
	"github.com/kottinov/website-builder/pkg/errors"
	"github.com/kottinov/website-builder/pkg/layout"
	"github.com/kottinov/website-builder/pkg/page"
	"github.com/kottinov/website-builder/pkg/schema"
	"github.com/kottinov/website-builder/pkg/style"
)

// create validates payload, positions the new component and inserts it.
func (t *tx) create(payload map[string]any) (*page.Component, error) {
	if auto, ok := payload[schema.KeyAutoPosition].(map[string]any); ok {
		if err := t.prepareAuto(payload, auto); err != nil {
			return nil, err
		}
	}

	in, err := schema.ValidateCreate(payload)
	if err != nil {
		return nil, err
	}
	c := in.Component
	if t.doc.Has(c.ID) {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"component id %s already exists; omit id to have one generated", c.ID)
	}

	switch {
	case in.AutoPosition != nil:
		if err := t.placeAuto(c, in.AutoPosition); err != nil {
			return nil, err
		}
	case c.IsSection():
		c.RelTo = layout.ChainSection(t.doc, page.Deref(c.Top), c.RelTo, t.e.anchors[0])
	default:
		if err := t.placeManual(c); err != nil {
			return nil, err
		}
	}

	schema.ApplyDefaults(c.Kind, c.Props)
	for k, v := range map[string]any{"inTemplate": false, "wrap": false, "relPage": nil, "relPara": nil} {
		if _, ok := c.Props[k]; !ok {
			c.Props[k] = v
		}
	}

	if err := schema.CheckComponent(c); err != nil {
		return nil, err
	}
	if err := t.checkRelTo(c); err != nil {
		return nil, err
	}
	style.Normalize(c.Props)

	// Provisional index; the batch renumbers once at the end.
	c.OrderIndex = len(t.doc.Groups()[c.ParentID()])

	for _, ref := range []string{in.BeforeID, in.AfterID} {
		if ref != "" && !t.doc.Has(ref) {
			t.e.Logger.Debug("insertion hint not found, appending", "id", c.ID, "hint", ref)
		}
	}
	t.doc.Insert(c, in.BeforeID, in.AfterID)

	if c.IsSection() {
		t.lastSection = c.ID
	}
	return c, nil
}

// prepareAuto settles the parent of an auto-positioned create before
// validation. Supplied relIn and relTo are replaced by the computed ones.
func (t *tx) prepareAuto(payload, auto map[string]any) error {
	if kind, _ := payload["kind"].(string); kind == page.Section {
		return errors.New(errors.ErrCodeInvalidInput,
			"auto_position cannot place a SECTION; sections are top-level and chain with relTo")
	}

	parent, _ := auto[schema.KeyParentID].(string)
	if parent == "" {
		parent, _ = payload[schema.KeyParentID].(string)
	}
	if parent == "" {
		parent = t.lastSection
	}
	if parent == "" {
		return errors.New(errors.ErrCodeInvalidInput,
			"auto_position requires parent_id of an existing parent; create a parent section first in this batch or set auto_position.parent_id to a real section id")
	}
	if given, _ := payload[schema.KeyParentID].(string); given != "" && given != parent {
		return errors.New(errors.ErrCodeInvalidInput,
			"parent_id %q does not match auto_position.parent_id %q; give one parent", given, parent)
	}

	auto[schema.KeyParentID] = parent
	payload[schema.KeyParentID] = parent
	delete(payload, "relIn")
	delete(payload, "relTo")
	return nil
}

func (t *tx) placeAuto(c *page.Component, auto map[string]any) error {
	if c.Width == nil || c.Height == nil {
		return errors.New(errors.ErrCodeInvalidInput, "auto_position requires width and height in payload")
	}

	req := layout.Request{
		Strategy: layout.BelowLastChild,
		Width:    *c.Width,
		Height:   *c.Height,
		Gap:      t.e.defaultGap,
	}
	req.ParentID, _ = auto[schema.KeyParentID].(string)
	req.SiblingID, _ = auto["sibling_id"].(string)
	if s, ok := auto["strategy"].(string); ok && s != "" {
		req.Strategy = s
	}
	if v, ok := auto["gap_px"]; ok && v != nil {
		gap, ok := page.Int(v)
		if !ok {
			return errors.New(errors.ErrCodeInvalidInput, "auto_position.gap_px must be an integer")
		}
		req.Gap = gap
	}

	pl, err := layout.Auto(t.doc, req)
	if err != nil {
		return err
	}
	c.RelIn = pl.RelIn
	c.RelTo = pl.RelTo
	c.Left = page.IntPtr(pl.Left)
	c.Top = page.IntPtr(pl.Top)
	c.Width = page.IntPtr(pl.Width)
	c.Height = page.IntPtr(pl.Height)
	c.Right, c.Bottom = nil, nil
	return nil
}

// placeManual checks the parent of a non-section component and derives any
// geometry the caller left out: absolute left/top from relIn offsets, then
// the missing relIn offsets from the absolute box.
func (t *tx) placeManual(c *page.Component) error {
	parent := t.doc.Find(c.RelIn.ID)
	if parent == nil {
		return errors.New(errors.ErrCodeInvalidReference,
			"parent %s does not exist; relIn.id must name an existing component (use list_components)", c.RelIn.ID)
	}
	pb := layout.BoxOf(parent)

	if c.Width != nil && c.Height != nil && (c.Left == nil || c.Top == nil) && c.RelIn.HasOffset() {
		b := layout.Resolve(pb, c.RelIn, *c.Width, *c.Height)
		if c.Left == nil {
			c.Left = page.IntPtr(b.Left)
		}
		if c.Top == nil {
			c.Top = page.IntPtr(b.Top)
		}
	}
	if c.Left != nil && c.Top != nil && c.Width != nil && c.Height != nil {
		layout.FillRelIn(c.RelIn, layout.BoxOf(c), pb)
	}
	return nil
}
