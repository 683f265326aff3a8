package document

import (
	"strings"

	"github.com/kottinov/website-builder/pkg/page"
)

// Summary is the concise view of a component.
type Summary struct {
	ID         string  `json:"id"`
	Kind       string  `json:"kind"`
	OrderIndex int     `json:"orderIndex"`
	ParentID   *string `json:"parentId"`
	Title      *string `json:"title"`
}

// titleFields are tried in order for [Summary.Title].
var titleFields = []string{"title", "name", "text", "content"}

// textFields are searched by [Document.FindText] and [Filter.TextContains].
var textFields = []string{"text", "content", "title", "name"}

// Summarize returns the concise view of c. Kind falls back to the legacy
// "type" prop; the title is the first non-empty of title, name, text and
// content.
func Summarize(c *page.Component) Summary {
	s := Summary{ID: c.ID, Kind: c.EffectiveKind(), OrderIndex: c.OrderIndex}
	if pid := c.ParentID(); pid != "" {
		s.ParentID = &pid
	}
	for _, f := range titleFields {
		if v := c.String(f); v != "" {
			s.Title = &v
			break
		}
	}
	return s
}

// List returns the concise view of every component in depth-first order.
func (d *Document) List() []Summary {
	out := make([]Summary, 0)
	d.page.Walk(func(c *page.Component) bool {
		out = append(out, Summarize(c))
		return true
	})
	return out
}

// Match is one hit of a text search.
type Match struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	MatchField string `json:"matchField"`
}

// FindText returns every component whose text, content, title or name
// contains q, ignoring case. MatchField names the first field that matched.
func (d *Document) FindText(q string) []Match {
	out := make([]Match, 0)
	needle := strings.ToLower(q)
	d.page.Walk(func(c *page.Component) bool {
		if f := matchField(c, needle); f != "" {
			out = append(out, Match{ID: c.ID, Kind: c.EffectiveKind(), MatchField: f})
		}
		return true
	})
	return out
}

func matchField(c *page.Component, needle string) string {
	for _, f := range textFields {
		if v := c.String(f); v != "" && strings.Contains(strings.ToLower(v), needle) {
			return f
		}
	}
	return ""
}

// Filter selects components for [Document.Query]. Zero fields do not
// filter.
type Filter struct {
	IDs []string

	// ParentID restricts results to children of a parent. TopLevel selects
	// components without relIn instead and wins over ParentID.
	ParentID string
	TopLevel bool

	Kinds        []string
	TextContains string
}

// Query returns the components matching f, in depth-first order.
func (d *Document) Query(f Filter) []*page.Component {
	ids := set(f.IDs)
	kinds := set(f.Kinds)
	needle := strings.ToLower(f.TextContains)

	out := make([]*page.Component, 0)
	d.page.Walk(func(c *page.Component) bool {
		switch {
		case ids != nil && !ids[c.ID]:
		case f.TopLevel && c.ParentID() != "":
		case !f.TopLevel && f.ParentID != "" && c.ParentID() != f.ParentID:
		case kinds != nil && !kinds[c.EffectiveKind()]:
		case f.TextContains != "" && matchField(c, needle) == "":
		default:
			out = append(out, c)
		}
		return true
	})
	return out
}

// Project returns the named fields of c; missing fields map to nil.
func Project(c *page.Component, fields []string) map[string]any {
	m := c.ToMap()
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		out[f] = m[f]
	}
	return out
}

func set(values []string) map[string]bool {
	if values == nil {
		return nil
	}
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}
