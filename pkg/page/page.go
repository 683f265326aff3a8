package page

import (
	"bytes"
	"encoding/json"

	"github.com/kottinov/website-builder/pkg/errors"
)

// Page envelope defaults.
const (
	PageType    = "web.data.components.Page"
	DefaultName = "Generated Page"

	// DefaultPath is where the page document lives unless configured otherwise.
	DefaultPath = "static/wsb/page.json"
)

// Page is the persisted document: an envelope around the flat component list.
type Page struct {
	ID                              string
	Type                            string
	Name                            string
	TemplateID                      string
	Items                           []*Component
	ShareHeaderAndFirstSectionBgImg bool
	ShareBgImgOffsetTop             int

	// Extra preserves envelope keys this package does not model.
	Extra map[string]any
}

var pageKeys = []string{
	"id", "type", "name", "templateId", "items",
	"shareHeaderAndFirstSectionBgImg", "shareBgImgOffsetTop",
}

// New returns an empty page with the default envelope.
func New(id, templateID string) *Page {
	return &Page{
		ID:         id,
		Type:       PageType,
		Name:       DefaultName,
		TemplateID: templateID,
		Items:      []*Component{},
	}
}

// MarshalJSON encodes the page with a stable key order.
func (p *Page) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := p.appendJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (p *Page) appendJSON(buf *bytes.Buffer) error {
	w := objectWriter{buf: buf}
	w.open()
	fields := []struct {
		key string
		val any
	}{
		{"id", p.ID},
		{"type", p.Type},
		{"name", p.Name},
		{"templateId", p.TemplateID},
	}
	for _, f := range fields {
		if err := w.field(f.key, f.val); err != nil {
			return err
		}
	}

	w.key("items")
	buf.WriteByte('[')
	for i, c := range p.Items {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := c.appendJSON(buf); err != nil {
			return err
		}
	}
	buf.WriteByte(']')

	if err := w.field("shareHeaderAndFirstSectionBgImg", p.ShareHeaderAndFirstSectionBgImg); err != nil {
		return err
	}
	if err := w.field("shareBgImgOffsetTop", p.ShareBgImgOffsetTop); err != nil {
		return err
	}
	for _, k := range orderedKeys(p.Extra, nil) {
		if err := w.field(k, p.Extra[k]); err != nil {
			return err
		}
	}
	w.close()
	return nil
}

// UnmarshalJSON decodes a page document. Unknown envelope keys are kept in
// Extra.
func (p *Page) UnmarshalJSON(data []byte) error {
	var m map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		return err
	}
	if m == nil {
		return errors.New(errors.ErrCodeInvalidDocument, "page must be a JSON object")
	}
	decoded, err := fromMap(m)
	if err != nil {
		return err
	}
	*p = *decoded
	return nil
}

func fromMap(m map[string]any) (*Page, error) {
	p := &Page{Items: []*Component{}}
	known := make(map[string]bool, len(pageKeys))
	for _, k := range pageKeys {
		known[k] = true
	}

	p.ID, _ = m["id"].(string)
	p.Type, _ = m["type"].(string)
	p.Name, _ = m["name"].(string)
	p.TemplateID, _ = m["templateId"].(string)
	p.ShareHeaderAndFirstSectionBgImg, _ = m["shareHeaderAndFirstSectionBgImg"].(bool)
	if n, ok := Int(m["shareBgImgOffsetTop"]); ok {
		p.ShareBgImgOffsetTop = n
	}

	if raw, ok := m["items"]; ok && raw != nil {
		list, ok := raw.([]any)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "page items must be an array")
		}
		for i, entry := range list {
			cm, ok := entry.(map[string]any)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidInput, "page items[%d] must be an object", i)
			}
			c, err := FromMap(cm)
			if err != nil {
				return nil, err
			}
			p.Items = append(p.Items, c)
		}
	}

	for k, v := range m {
		if known[k] {
			continue
		}
		if p.Extra == nil {
			p.Extra = make(map[string]any)
		}
		p.Extra[k] = Canonical(v)
	}
	return p, nil
}

// Walk visits every component depth-first, including legacy nested items.
// Returning false from fn stops the walk.
func (p *Page) Walk(fn func(c *Component) bool) {
	walk(p.Items, fn)
}

func walk(items []*Component, fn func(c *Component) bool) bool {
	for _, c := range items {
		if !fn(c) {
			return false
		}
		if !walk(c.Items, fn) {
			return false
		}
	}
	return true
}
