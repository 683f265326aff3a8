// Package outline draws the component hierarchy of a page as a Graphviz
// diagram.
//
// # Usage
//
//	dot := outline.ToDOT(doc, outline.Options{Anchors: []string{layout.AnchorID}})
//	svg, err := outline.RenderSVG(ctx, dot)
//
// Parent links (relIn) are solid arrows, sibling chains (relTo) dashed
// arrows labelled with the gap, and legacy nested items arrows with an
// open-circle head. References to ids missing from the page are drawn in
// red, which makes the outline a quick visual companion to Document.Check.
//
// # Dependencies
//
// Rendering uses [github.com/goccy/go-graphviz], which runs Graphviz
// in-process; no external dot binary is needed.
package outline
