package layout

import (
	"slices"

	"github.com/kottinov/website-builder/pkg/errors"
	"github.com/kottinov/website-builder/pkg/page"
)

// Auto-positioning strategies.
const (
	BelowLastChild  = "below_last_child"
	AboveFirstChild = "above_first_child"
	Centered        = "centered"
	FillWidth       = "fill_width"
	StackBelow      = "stack_below"
)

// DefaultGap is the gap in pixels used when a request does not give one.
const DefaultGap = 20

// Strategies lists the supported strategy names.
var Strategies = []string{BelowLastChild, AboveFirstChild, Centered, FillWidth, StackBelow}

// Request asks for an automatic placement inside ParentID.
type Request struct {
	Strategy  string
	ParentID  string
	Width     int
	Height    int
	Gap       int
	SiblingID string // stack_below only
}

// Placement is the computed position of a new component.
type Placement struct {
	RelIn *page.RelIn
	RelTo *page.RelTo

	// Absolute box implied by the parent and RelIn. Width differs from the
	// request only for fill_width.
	Left, Top, Width, Height int
}

// Auto computes a placement with one of the named strategies.
func Auto(src Lookup, req Request) (*Placement, error) {
	if !slices.Contains(Strategies, req.Strategy) {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"unknown positioning strategy %q (use one of %v)", req.Strategy, Strategies)
	}
	parent := src.Find(req.ParentID)
	if parent == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "parent component %s not found", req.ParentID)
	}
	p := BoxOf(parent)
	w, h, gap := req.Width, req.Height, req.Gap

	switch req.Strategy {
	case BelowLastChild:
		lowest := lowestChild(src.Children(req.ParentID))
		if lowest == nil {
			return atTop(req.ParentID, p, w, h, gap), nil
		}
		top := BoxOf(lowest).Bottom() + gap - p.Top
		return place(req.ParentID, p, 0, top, w, h, &page.RelTo{ID: lowest.ID, Below: gap}), nil

	case AboveFirstChild:
		return atTop(req.ParentID, p, w, h, gap), nil

	case Centered:
		return place(req.ParentID, p, floorDiv(p.Width-w, 2), floorDiv(p.Height-h, 2), w, h, nil), nil

	case FillWidth:
		return place(req.ParentID, p, gap, gap, p.Width-2*gap, h, nil), nil

	default: // StackBelow
		if req.SiblingID == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "stack_below needs sibling_id")
		}
		sib := src.Find(req.SiblingID)
		if sib == nil {
			return nil, errors.New(errors.ErrCodeNotFound, "sibling component %s not found", req.SiblingID)
		}
		if sib.ParentID() != req.ParentID {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"sibling %s is not a child of %s (its parent is %q); stack only within one parent",
				sib.ID, req.ParentID, sib.ParentID())
		}
		s := BoxOf(sib)
		return place(req.ParentID, p, s.Left-p.Left, s.Bottom()+gap-p.Top, w, h, &page.RelTo{ID: sib.ID, Below: gap}), nil
	}
}

func atTop(parentID string, p Box, w, h, gap int) *Placement {
	return place(parentID, p, 0, gap, w, h, nil)
}

// place builds a placement from left/top offsets within the parent box.
func place(parentID string, p Box, left, top, w, h int, relTo *page.RelTo) *Placement {
	rel := &page.RelIn{ID: parentID, Left: page.IntPtr(left), Top: page.IntPtr(top)}
	FillRelIn(rel, Box{Left: p.Left + left, Top: p.Top + top, Width: w, Height: h}, p)
	return &Placement{
		RelIn:  rel,
		RelTo:  relTo,
		Left:   p.Left + left,
		Top:    p.Top + top,
		Width:  w,
		Height: h,
	}
}

// lowestChild returns the child whose bottom edge is lowest; the first one
// wins ties.
func lowestChild(children []*page.Component) *page.Component {
	var lowest *page.Component
	best := 0
	for _, c := range children {
		if b := BoxOf(c).Bottom(); lowest == nil || b > best {
			lowest, best = c, b
		}
	}
	return lowest
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
