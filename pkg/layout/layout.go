// Package layout converts between absolute component geometry and the
// relative relIn/relTo representation stored on WSB pages.
//
// Everything here is integer arithmetic over boxes; no layout solving
// happens. Placement strategies read the current page through [Lookup] and
// never modify it.
package layout

import (
	"github.com/kottinov/website-builder/pkg/page"
	"github.com/kottinov/website-builder/pkg/schema"
)

// AnchorID is the well-known header anchor the first section chains to.
const AnchorID = "22FC8C5B-CD71-42B7-9DF2-486F577581A9"

// Lookup is the read-only view of a page the positioning code needs.
type Lookup interface {
	// Find returns the component with id, or nil.
	Find(id string) *page.Component
	// Children returns the components whose relIn.id is parentID.
	Children(parentID string) []*page.Component
	// Sections returns the top-level SECTION components in list order.
	Sections() []*page.Component
}

// Box is an absolute rectangle in page pixels.
type Box struct {
	Left, Top, Width, Height int
}

// Bottom returns the y coordinate of the box's lower edge.
func (b Box) Bottom() int { return b.Top + b.Height }

// BoxOf reads a component's absolute geometry. Unset fields count as 0.
func BoxOf(c *page.Component) Box {
	return Box{
		Left:   page.Deref(c.Left),
		Top:    page.Deref(c.Top),
		Width:  page.Deref(c.Width),
		Height: page.Deref(c.Height),
	}
}

// FillRelIn derives the offsets of child relative to parent and stores each
// one in rel only when rel leaves it unset. Offsets already present are
// authoritative and also feed the derivation of right and bottom.
func FillRelIn(rel *page.RelIn, child, parent Box) {
	if rel.Left == nil {
		rel.Left = page.IntPtr(child.Left - parent.Left)
	}
	if rel.Top == nil {
		rel.Top = page.IntPtr(child.Top - parent.Top)
	}
	if rel.Right == nil {
		rel.Right = page.IntPtr(-(parent.Width - (*rel.Left + child.Width)))
	}
	if rel.Bottom == nil {
		rel.Bottom = page.IntPtr(-(parent.Height - (*rel.Top + child.Height)))
	}
}

// Resolve rebuilds a child's absolute box from its parent box and relIn
// offsets. A missing left or top is recovered from right or bottom; when
// both are missing the child sits at the parent's origin on that axis.
func Resolve(parent Box, rel *page.RelIn, width, height int) Box {
	out := Box{Left: parent.Left, Top: parent.Top, Width: width, Height: height}
	if rel == nil {
		return out
	}
	switch {
	case rel.Left != nil:
		out.Left = parent.Left + *rel.Left
	case rel.Right != nil:
		out.Left = parent.Left + parent.Width + *rel.Right - width
	}
	switch {
	case rel.Top != nil:
		out.Top = parent.Top + *rel.Top
	case rel.Bottom != nil:
		out.Top = parent.Top + parent.Height + *rel.Bottom - height
	}
	return out
}

// ChainSection decides the relTo of a new top-level section whose top edge
// is at top.
//
// An explicit relTo with a real id is returned unchanged. A placeholder id
// is replaced by anchor, keeping the caller's gap. Without an id the
// section chains to the last existing section (highest orderIndex, later in
// the list on ties) with the gap between that section's bottom and top, or
// to anchor with gap 0 when the page has no section yet. An empty anchor
// means [AnchorID].
func ChainSection(src Lookup, top int, relTo *page.RelTo, anchor string) *page.RelTo {
	if anchor == "" {
		anchor = AnchorID
	}
	if relTo != nil && relTo.ID != "" {
		if schema.IsPlaceholderID(relTo.ID) {
			return &page.RelTo{ID: anchor, Below: relTo.Below}
		}
		return &page.RelTo{ID: relTo.ID, Below: relTo.Below}
	}

	last := LastSection(src)
	if last == nil {
		below := 0
		if relTo != nil {
			below = relTo.Below
		}
		return &page.RelTo{ID: anchor, Below: below}
	}
	if relTo != nil {
		return &page.RelTo{ID: last.ID, Below: relTo.Below}
	}
	return &page.RelTo{ID: last.ID, Below: top - BoxOf(last).Bottom()}
}

// LastSection returns the section with the highest orderIndex, or nil.
func LastSection(src Lookup) *page.Component {
	var last *page.Component
	for _, s := range src.Sections() {
		if last == nil || s.OrderIndex >= last.OrderIndex {
			last = s
		}
	}
	return last
}
