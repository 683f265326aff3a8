package document

import (
	"slices"

	"github.com/kottinov/website-builder/pkg/page"
)

// Document is an in-memory page with an id index and a parent→children
// adjacency index derived from relIn references.
//
// The component list stays flat; hierarchy lives entirely in relIn.id.
// Legacy nested items arrays are still searched, renumbered and pruned so
// older pages keep working.
//
// Both indexes are rebuilt lazily after any structural change made through
// Document methods. Callers that rewrite a component's id or relIn directly
// must call [Document.Invalidate].
//
// The zero value is not usable - use New. Document is not safe for concurrent
// use without external synchronization.
type Document struct {
	page *page.Page

	built    bool
	byID     map[string]*page.Component   // first match in depth-first order
	children map[string][]*page.Component // relIn.id -> children in list order
}

// New wraps p. The document takes ownership of p and mutates it in place.
func New(p *page.Page) *Document {
	return &Document{page: p}
}

// Page returns the underlying page.
func (d *Document) Page() *page.Page { return d.page }

// Invalidate drops the indexes so the next lookup rebuilds them.
func (d *Document) Invalidate() {
	d.built = false
	d.byID = nil
	d.children = nil
}

func (d *Document) index() {
	if d.built {
		return
	}
	d.byID = make(map[string]*page.Component)
	d.children = make(map[string][]*page.Component)
	d.page.Walk(func(c *page.Component) bool {
		if _, dup := d.byID[c.ID]; !dup {
			d.byID[c.ID] = c
		}
		if pid := c.ParentID(); pid != "" {
			d.children[pid] = append(d.children[pid], c)
		}
		return true
	})
	d.built = true
}

// Find returns the component with id, searching the flat list and any legacy
// nested items depth-first. It returns nil when no component matches.
func (d *Document) Find(id string) *page.Component {
	if id == "" {
		return nil
	}
	d.index()
	return d.byID[id]
}

// Has reports whether a component with id exists.
func (d *Document) Has(id string) bool { return d.Find(id) != nil }

// Len returns the number of components, nested ones included.
func (d *Document) Len() int {
	n := 0
	d.page.Walk(func(*page.Component) bool { n++; return true })
	return n
}

// All returns every component in depth-first list order.
func (d *Document) All() []*page.Component {
	var out []*page.Component
	d.page.Walk(func(c *page.Component) bool {
		out = append(out, c)
		return true
	})
	return out
}

// Children returns the components whose relIn.id is parentID, in list order.
func (d *Document) Children(parentID string) []*page.Component {
	d.index()
	return slices.Clone(d.children[parentID])
}

// Sections returns the top-level SECTION components in list order.
func (d *Document) Sections() []*page.Component {
	var out []*page.Component
	for _, c := range d.page.Items {
		if c.IsSection() {
			out = append(out, c)
		}
	}
	return out
}

// Insert places c in the top-level list. When beforeID or afterID names a
// top-level entry, c is spliced next to the first entry matching either;
// otherwise c is appended. Parent linkage is carried by c.RelIn and does not
// depend on list position.
func (d *Document) Insert(c *page.Component, beforeID, afterID string) {
	defer d.Invalidate()

	if beforeID != "" || afterID != "" {
		for i, item := range d.page.Items {
			switch {
			case beforeID != "" && item.ID == beforeID:
				d.page.Items = slices.Insert(d.page.Items, i, c)
				return
			case afterID != "" && item.ID == afterID:
				d.page.Items = slices.Insert(d.page.Items, i+1, c)
				return
			}
		}
	}
	d.page.Items = append(d.page.Items, c)
}

// Descendants returns the ids of every component whose relIn chain leads to
// id, plus anything nested in a legacy items array underneath, breadth first.
// id itself is not included. Cycles in relIn are tolerated.
func (d *Document) Descendants(id string) []string {
	root := d.Find(id)
	if root == nil {
		return nil
	}

	seen := map[string]bool{id: true}
	queue := []*page.Component{root}
	var out []string
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]

		next := d.Children(c.ID)
		next = append(next, c.Items...)
		for _, k := range next {
			if seen[k.ID] {
				continue
			}
			seen[k.ID] = true
			out = append(out, k.ID)
			queue = append(queue, k)
		}
	}
	return out
}

// Remove deletes id together with all of its descendants and reports whether
// anything was removed.
//
// A surviving component stacked below a removed one (relTo.id) is moved up
// the chain: it takes the removed component's relTo target and keeps its own
// gap, or loses relTo when the chain ends.
func (d *Document) Remove(id string) bool {
	if d.Find(id) == nil {
		return false
	}
	defer d.Invalidate()

	doomed := map[string]bool{id: true}
	for _, did := range d.Descendants(id) {
		doomed[did] = true
	}
	chain := make(map[string]*page.RelTo, len(doomed))
	for did := range doomed {
		if c := d.byID[did]; c != nil && c.RelTo != nil {
			chain[did] = c.RelTo
		}
	}

	d.page.Items = prune(d.page.Items, doomed)

	d.page.Walk(func(c *page.Component) bool {
		if c.RelTo == nil || !doomed[c.RelTo.ID] {
			return true
		}
		target := successor(c.RelTo.ID, chain, doomed)
		if target == "" {
			c.RelTo = nil
		} else {
			c.RelTo = &page.RelTo{ID: target, Below: c.RelTo.Below}
		}
		return true
	})
	return true
}

// successor follows relTo links from a removed component until it reaches
// one that survives. It returns "" when the chain ends or loops.
func successor(id string, chain map[string]*page.RelTo, doomed map[string]bool) string {
	visited := map[string]bool{}
	for doomed[id] && !visited[id] {
		visited[id] = true
		rt := chain[id]
		if rt == nil {
			return ""
		}
		id = rt.ID
	}
	if doomed[id] {
		return ""
	}
	return id
}

func prune(items []*page.Component, doomed map[string]bool) []*page.Component {
	out := items[:0]
	for _, c := range items {
		if doomed[c.ID] {
			continue
		}
		if len(c.Items) > 0 {
			c.Items = prune(c.Items, doomed)
		}
		out = append(out, c)
	}
	// Clear the tail so pruned components can be collected.
	clear(items[len(out):])
	return out
}

// Reorder rearranges the sibling group of parentID ("" for the top level).
//
// Siblings named in ids come first in that order; the others follow in their
// previous relative order. Ids outside the group are ignored. The group
// members swap list slots among themselves, so components outside the group
// never move. Order indexes are left to [Document.Renumber]. An empty group
// yields an empty result and no change.
func (d *Document) Reorder(parentID string, ids []string) []*page.Component {
	type slot struct {
		list []*page.Component
		i    int
	}
	var slots []slot
	var group []*page.Component

	var walk func(items []*page.Component, container string)
	walk = func(items []*page.Component, container string) {
		for i, c := range items {
			if groupKey(c, container) == parentID {
				slots = append(slots, slot{items, i})
				group = append(group, c)
			}
			walk(c.Items, c.ID)
		}
	}
	walk(d.page.Items, "")
	if len(group) == 0 {
		return []*page.Component{}
	}

	byID := make(map[string]*page.Component, len(group))
	for _, c := range group {
		if _, dup := byID[c.ID]; !dup {
			byID[c.ID] = c
		}
	}
	ordered := make([]*page.Component, 0, len(group))
	placed := make(map[*page.Component]bool, len(group))
	for _, id := range ids {
		if c, ok := byID[id]; ok && !placed[c] {
			ordered = append(ordered, c)
			placed[c] = true
		}
	}
	for _, c := range group {
		if !placed[c] {
			ordered = append(ordered, c)
		}
	}

	for i, s := range slots {
		s.list[s.i] = ordered[i]
	}
	d.Invalidate()
	return ordered
}

// Renumber assigns contiguous orderIndex values from 0 within every sibling
// group, following list order. A sibling group shares a relIn.id; components
// without one belong to their legacy container, or to the top level.
func (d *Document) Renumber() {
	next := make(map[string]int)
	var walk func(items []*page.Component, container string)
	walk = func(items []*page.Component, container string) {
		for _, c := range items {
			key := groupKey(c, container)
			c.OrderIndex = next[key]
			next[key]++
			walk(c.Items, c.ID)
		}
	}
	walk(d.page.Items, "")
}

// Groups returns every sibling group keyed by parent id ("" for the top
// level), each in list order.
func (d *Document) Groups() map[string][]*page.Component {
	out := make(map[string][]*page.Component)
	var walk func(items []*page.Component, container string)
	walk = func(items []*page.Component, container string) {
		for _, c := range items {
			key := groupKey(c, container)
			out[key] = append(out[key], c)
			walk(c.Items, c.ID)
		}
	}
	walk(d.page.Items, "")
	return out
}

func groupKey(c *page.Component, container string) string {
	if pid := c.ParentID(); pid != "" {
		return pid
	}
	return container
}
