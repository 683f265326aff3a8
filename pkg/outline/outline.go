package outline

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/kottinov/website-builder/pkg/document"
	"github.com/kottinov/website-builder/pkg/errors"
	"github.com/kottinov/website-builder/pkg/page"
)

// Options configures outline generation.
type Options struct {
	// Detailed adds geometry and relIn offsets to node labels.
	// When false, labels show kind, id and title only.
	Detailed bool

	// Anchors are relTo targets drawn as a diamond when a component
	// chains to them.
	Anchors []string
}

// ToDOT converts the component hierarchy of d to Graphviz DOT.
//
// relIn parent links are solid edges from parent to child; relTo sibling
// links are dashed edges from the sibling to the component stacked below it.
// Components referencing an id that is not on the page get a red dotted
// edge to a placeholder node so broken references stand out.
func ToDOT(d *document.Document, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	anchors := make(map[string]bool, len(opts.Anchors))
	for _, a := range opts.Anchors {
		anchors[a] = true
	}
	all := d.All()
	used := make(map[string]bool)
	missing := make(map[string]bool)
	for _, c := range all {
		if c.RelTo != nil && anchors[c.RelTo.ID] {
			used[c.RelTo.ID] = true
		}
	}
	for _, a := range opts.Anchors {
		if used[a] {
			fmt.Fprintf(&buf, "  %q [label=%q, shape=diamond, style=filled, fillcolor=lightgrey];\n", a, "anchor")
		}
	}

	for _, c := range all {
		fmt.Fprintf(&buf, "  %q [%s];\n", c.ID, strings.Join(fmtAttrs(c, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, c := range all {
		if pid := c.ParentID(); pid != "" {
			if !d.Has(pid) {
				missing[pid] = true
				fmt.Fprintf(&buf, "  %q -> %q [color=red, style=dotted];\n", pid, c.ID)
			} else {
				fmt.Fprintf(&buf, "  %q -> %q;\n", pid, c.ID)
			}
		}
		for _, child := range c.Items {
			fmt.Fprintf(&buf, "  %q -> %q [arrowhead=odot];\n", c.ID, child.ID)
		}
		if c.RelTo == nil || c.RelTo.ID == "" {
			continue
		}
		switch {
		case d.Has(c.RelTo.ID), anchors[c.RelTo.ID]:
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed, label=%q, constraint=false];\n", c.RelTo.ID, c.ID, strconv.Itoa(c.RelTo.Below))
		default:
			missing[c.RelTo.ID] = true
			fmt.Fprintf(&buf, "  %q -> %q [color=red, style=dotted];\n", c.RelTo.ID, c.ID)
		}
	}
	for _, id := range slices.Sorted(maps.Keys(missing)) {
		fmt.Fprintf(&buf, "  %q [label=%q, color=red, fontcolor=red, style=dashed];\n", id, "missing\n"+id)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(c *page.Component, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(c, detailed))}
	if c.IsSection() {
		attrs = append(attrs, "fillcolor=\"#e8f0fe\"", "penwidth=2")
	}
	return attrs
}

func fmtLabel(c *page.Component, detailed bool) string {
	s := document.Summarize(c)
	lines := []string{s.Kind + " " + shortID(c.ID)}
	if s.Title != nil {
		lines = append(lines, truncate(*s.Title, 32))
	}
	if detailed {
		b := fmt.Sprintf("%d,%d %dx%d", page.Deref(c.Left), page.Deref(c.Top), page.Deref(c.Width), page.Deref(c.Height))
		lines = append(lines, b, fmt.Sprintf("order: %d", c.OrderIndex))
		if r := c.RelIn; r != nil {
			lines = append(lines, fmt.Sprintf("relIn: %s %s %s %s", fmtOffset(r.Left), fmtOffset(r.Top), fmtOffset(r.Right), fmtOffset(r.Bottom)))
		}
	}
	return strings.Join(lines, "\n")
}

func fmtOffset(p *int) string {
	if p == nil {
		return "-"
	}
	return strconv.Itoa(*p)
}

// shortID keeps the first block of a UUID-style id.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 && len(id) > 12 {
		return id[:i]
	}
	return id
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render outline")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales from its
// viewBox origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
