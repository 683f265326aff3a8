package page

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/kottinov/website-builder/pkg/errors"
)

// Section is the kind of top-level page components.
const Section = "SECTION"

// RelIn anchors a component inside its parent: the parent id plus the
// offsets of each edge relative to the parent's matching edge.
type RelIn struct {
	ID     string `json:"id"`
	Left   *int   `json:"left"`
	Top    *int   `json:"top"`
	Right  *int   `json:"right"`
	Bottom *int   `json:"bottom"`
}

// HasOffset reports whether at least one edge offset is set.
func (r *RelIn) HasOffset() bool {
	return r.Left != nil || r.Top != nil || r.Right != nil || r.Bottom != nil
}

// Clone returns a copy of r that shares no pointers with it.
func (r *RelIn) Clone() *RelIn {
	if r == nil {
		return nil
	}
	out := &RelIn{ID: r.ID}
	if r.Left != nil {
		out.Left = IntPtr(*r.Left)
	}
	if r.Top != nil {
		out.Top = IntPtr(*r.Top)
	}
	if r.Right != nil {
		out.Right = IntPtr(*r.Right)
	}
	if r.Bottom != nil {
		out.Bottom = IntPtr(*r.Bottom)
	}
	return out
}

// RelTo stacks a component below a sibling by a pixel gap.
type RelTo struct {
	ID    string `json:"id"`
	Below int    `json:"below"`
}

// Component is one element of a page.
//
// The structural fields are typed; every other field lives in Props and is
// flattened into the same JSON object when encoded.
type Component struct {
	ID         string
	Kind       string
	OrderIndex int
	RelIn      *RelIn
	RelTo      *RelTo

	Left, Top, Right, Bottom, Width, Height *int

	// Props holds presentation and content fields keyed by their JSON name.
	Props map[string]any

	// Items holds legacy nested children. New components never populate it.
	Items []*Component
}

// structural keys in their encoding order; everything else is sorted after them.
var leadingKeys = []string{
	"id", "kind", "type", "orderIndex", "inTemplate", "wrap",
	"relIn", "relTo", "relPage", "relPara",
	"left", "top", "right", "bottom", "width", "height",
}

var geometryKeys = []string{"left", "top", "right", "bottom", "width", "height"}

// EffectiveKind returns Kind, falling back to the legacy "type" prop.
func (c *Component) EffectiveKind() string {
	if c.Kind != "" {
		return c.Kind
	}
	if s, ok := c.Props["type"].(string); ok {
		return s
	}
	return ""
}

// IsSection reports whether c is a SECTION.
func (c *Component) IsSection() bool {
	return c.EffectiveKind() == Section
}

// ParentID returns relIn.id, or "" for top-level components.
func (c *Component) ParentID() string {
	if c.RelIn == nil {
		return ""
	}
	return c.RelIn.ID
}

// String returns the prop value under key when it is a string.
func (c *Component) String(key string) string {
	s, _ := c.Props[key].(string)
	return s
}

// geometry returns pointers to the six geometry fields keyed by JSON name.
func (c *Component) geometry() map[string]**int {
	return map[string]**int{
		"left": &c.Left, "top": &c.Top, "right": &c.Right,
		"bottom": &c.Bottom, "width": &c.Width, "height": &c.Height,
	}
}

// ToMap flattens c into a fresh map using JSON field names. Nested legacy
// items are included under "items" only when present. Prop values are
// deep-copied.
func (c *Component) ToMap() map[string]any {
	m := make(map[string]any, len(c.Props)+12)
	for k, v := range c.Props {
		m[k] = Canonical(v)
	}
	if c.ID != "" {
		m["id"] = c.ID
	}
	if c.Kind != "" {
		m["kind"] = c.Kind
	}
	m["orderIndex"] = c.OrderIndex
	m["relIn"] = relInMap(c.RelIn)
	m["relTo"] = relToMap(c.RelTo)
	geom := c.geometry()
	for _, k := range geometryKeys {
		if p := *geom[k]; p != nil {
			m[k] = *p
		}
	}
	if len(c.Items) > 0 {
		items := make([]any, len(c.Items))
		for i, child := range c.Items {
			items[i] = child.ToMap()
		}
		m["items"] = items
	}
	return m
}

func relInMap(r *RelIn) any {
	if r == nil {
		return nil
	}
	m := map[string]any{"id": r.ID, "left": nil, "top": nil, "right": nil, "bottom": nil}
	if r.Left != nil {
		m["left"] = *r.Left
	}
	if r.Top != nil {
		m["top"] = *r.Top
	}
	if r.Right != nil {
		m["right"] = *r.Right
	}
	if r.Bottom != nil {
		m["bottom"] = *r.Bottom
	}
	return m
}

func relToMap(r *RelTo) any {
	if r == nil {
		return nil
	}
	return map[string]any{"id": r.ID, "below": r.Below}
}

// FromMap builds a component from its flattened JSON form. The input map is
// not retained.
func FromMap(m map[string]any) (*Component, error) {
	c := &Component{Props: make(map[string]any)}
	for k, raw := range m {
		v := Canonical(raw)
		switch k {
		case "id":
			s, ok := v.(string)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidInput, "component id must be a string, got %T", raw)
			}
			c.ID = s
		case "kind":
			if v == nil {
				continue
			}
			s, ok := v.(string)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidInput, "component %s: kind must be a string", c.ID)
			}
			c.Kind = s
		case "orderIndex":
			if v == nil {
				continue
			}
			n, ok := v.(int)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidInput, "component %s: orderIndex must be an integer", c.ID)
			}
			c.OrderIndex = n
		case "relIn":
			r, err := ParseRelIn(v)
			if err != nil {
				return nil, err
			}
			c.RelIn = r
		case "relTo":
			r, err := ParseRelTo(v)
			if err != nil {
				return nil, err
			}
			c.RelTo = r
		case "left", "top", "right", "bottom", "width", "height":
			if v == nil {
				continue
			}
			n, ok := v.(int)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidInput, "component %s: %s must be an integer", c.ID, k)
			}
			*c.geometry()[k] = IntPtr(n)
		case "items":
			if v == nil {
				continue
			}
			list, ok := v.([]any)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidInput, "component %s: items must be an array", c.ID)
			}
			for _, entry := range list {
				cm, ok := entry.(map[string]any)
				if !ok {
					return nil, errors.New(errors.ErrCodeInvalidInput, "component %s: items entries must be objects", c.ID)
				}
				child, err := FromMap(cm)
				if err != nil {
					return nil, err
				}
				c.Items = append(c.Items, child)
			}
		default:
			c.Props[k] = v
		}
	}
	return c, nil
}

// ParseRelIn decodes a relIn value (nil or object).
func ParseRelIn(v any) (*RelIn, error) {
	if v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "relIn must be an object or null")
	}
	r := &RelIn{}
	if id, ok := m["id"].(string); ok {
		r.ID = id
	}
	for key, dst := range map[string]**int{"left": &r.Left, "top": &r.Top, "right": &r.Right, "bottom": &r.Bottom} {
		raw, present := m[key]
		if !present || raw == nil {
			continue
		}
		n, ok := Int(raw)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "relIn.%s must be an integer", key)
		}
		*dst = IntPtr(n)
	}
	return r, nil
}

// ParseRelTo decodes a relTo value (nil or object). A missing or null
// below decodes as 0.
func ParseRelTo(v any) (*RelTo, error) {
	if v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "relTo must be an object or null")
	}
	r := &RelTo{}
	if id, ok := m["id"].(string); ok {
		r.ID = id
	}
	if raw, present := m["below"]; present && raw != nil {
		n, ok := Int(raw)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "relTo.below must be an integer")
		}
		r.Below = n
	}
	return r, nil
}

// Clone returns a deep copy of c.
func (c *Component) Clone() *Component {
	out, err := FromMap(c.ToMap())
	if err != nil {
		// ToMap only produces values FromMap accepts.
		panic(err)
	}
	return out
}

// MarshalJSON encodes c as one flat object with a stable key order.
func (c *Component) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.appendJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a flat component object.
func (c *Component) UnmarshalJSON(data []byte) error {
	var m map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		return err
	}
	if m == nil {
		return errors.New(errors.ErrCodeInvalidInput, "component must be an object")
	}
	decoded, err := FromMap(m)
	if err != nil {
		return err
	}
	*c = *decoded
	return nil
}

func (c *Component) appendJSON(buf *bytes.Buffer) error {
	m := c.ToMap()
	items := c.Items
	delete(m, "items")
	m["relIn"] = c.RelIn
	m["relTo"] = c.RelTo

	w := objectWriter{buf: buf}
	w.open()
	for _, k := range orderedKeys(m, leadingKeys) {
		if err := w.field(k, m[k]); err != nil {
			return err
		}
	}
	if len(items) > 0 {
		w.key("items")
		buf.WriteByte('[')
		for i, child := range items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := child.appendJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	}
	w.close()
	return nil
}

// orderedKeys returns the keys of m: leading keys first (when present),
// then the rest sorted.
func orderedKeys(m map[string]any, leading []string) []string {
	keys := make([]string, 0, len(m))
	seen := make(map[string]bool, len(leading))
	for _, k := range leading {
		if _, ok := m[k]; ok {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	rest := make([]string, 0, len(m))
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// objectWriter emits a JSON object field by field without HTML escaping.
type objectWriter struct {
	buf *bytes.Buffer
	n   int
}

func (w *objectWriter) open()  { w.buf.WriteByte('{') }
func (w *objectWriter) close() { w.buf.WriteByte('}') }

func (w *objectWriter) key(k string) {
	if w.n > 0 {
		w.buf.WriteByte(',')
	}
	w.n++
	kb, _ := json.Marshal(k)
	w.buf.Write(kb)
	w.buf.WriteByte(':')
}

func (w *objectWriter) field(k string, v any) error {
	w.key(k)
	return writeValue(w.buf, v)
}

func writeValue(buf *bytes.Buffer, v any) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode value")
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}
