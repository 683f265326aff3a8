package layout

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kottinov/website-builder/pkg/errors"
	"github.com/kottinov/website-builder/pkg/page"
)

// fakePage is a minimal Lookup over a flat component list.
type fakePage []*page.Component

func (f fakePage) Find(id string) *page.Component {
	for _, c := range f {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (f fakePage) Children(parentID string) []*page.Component {
	var out []*page.Component
	for _, c := range f {
		if c.ParentID() == parentID {
			out = append(out, c)
		}
	}
	return out
}

func (f fakePage) Sections() []*page.Component {
	var out []*page.Component
	for _, c := range f {
		if c.IsSection() {
			out = append(out, c)
		}
	}
	return out
}

func section(id string, order, top, height int) *page.Component {
	return &page.Component{
		ID: id, Kind: page.Section, OrderIndex: order,
		Left: page.IntPtr(0), Top: page.IntPtr(top),
		Width: page.IntPtr(1300), Height: page.IntPtr(height),
	}
}

func child(id, parent string, left, top, w, h int) *page.Component {
	return &page.Component{
		ID: id, Kind: "TEXT", RelIn: &page.RelIn{ID: parent, Left: page.IntPtr(0)},
		Left: page.IntPtr(left), Top: page.IntPtr(top),
		Width: page.IntPtr(w), Height: page.IntPtr(h),
	}
}

func offsets(l, t, r, b int) *page.RelIn {
	return &page.RelIn{Left: page.IntPtr(l), Top: page.IntPtr(t), Right: page.IntPtr(r), Bottom: page.IntPtr(b)}
}

func TestFillRelInParentOffsets(t *testing.T) {
	rel := &page.RelIn{ID: "S1"}
	FillRelIn(rel, Box{Left: 185, Top: 250, Width: 680, Height: 260}, Box{Left: 0, Top: 90, Width: 1300, Height: 760})

	want := offsets(185, 160, -435, -340)
	want.ID = "S1"
	if diff := cmp.Diff(want, rel); diff != "" {
		t.Errorf("relIn mismatch (-want +got):\n%s", diff)
	}
}

func TestFillRelInKeepsSuppliedOffsets(t *testing.T) {
	rel := &page.RelIn{ID: "S1", Left: page.IntPtr(40), Bottom: page.IntPtr(-1)}
	FillRelIn(rel, Box{Left: 185, Top: 250, Width: 680, Height: 260}, Box{Top: 90, Width: 1300, Height: 760})

	assert.Equal(t, 40, *rel.Left)
	assert.Equal(t, 160, *rel.Top)
	assert.Equal(t, -(1300 - (40 + 680)), *rel.Right)
	assert.Equal(t, -1, *rel.Bottom)
}

func TestRoundTripOffsets(t *testing.T) {
	parents := []Box{
		{Left: 0, Top: 90, Width: 1300, Height: 760},
		{Left: 40, Top: 0, Width: 200, Height: 100},
		{Left: -20, Top: 15, Width: 0, Height: 0},
	}
	children := []Box{
		{Left: 185, Top: 250, Width: 680, Height: 260},
		{Left: 0, Top: 0, Width: 10, Height: 10},
		{Left: -50, Top: 900, Width: 2000, Height: 1},
	}
	for _, p := range parents {
		for _, c := range children {
			rel := &page.RelIn{}
			FillRelIn(rel, c, p)
			assert.Equal(t, c, Resolve(p, rel, c.Width, c.Height), "parent %+v child %+v", p, c)

			// Right and bottom alone determine the same box.
			edges := &page.RelIn{Right: rel.Right, Bottom: rel.Bottom}
			assert.Equal(t, c, Resolve(p, edges, c.Width, c.Height))
		}
	}
}

func TestChainSection(t *testing.T) {
	t.Run("first section chains to anchor", func(t *testing.T) {
		got := ChainSection(fakePage{}, 90, nil, "")
		assert.Equal(t, &page.RelTo{ID: AnchorID, Below: 0}, got)
	})

	t.Run("second section chains to last", func(t *testing.T) {
		doc := fakePage{section("S1", 0, 90, 600)}
		got := ChainSection(doc, 690, nil, "")
		assert.Equal(t, &page.RelTo{ID: "S1", Below: 0}, got)
	})

	t.Run("highest orderIndex wins", func(t *testing.T) {
		doc := fakePage{section("S2", 1, 690, 500), section("S1", 0, 90, 600)}
		got := ChainSection(doc, 1250, nil, "")
		assert.Equal(t, &page.RelTo{ID: "S2", Below: 60}, got)
	})

	t.Run("placeholder replaced keeps gap", func(t *testing.T) {
		doc := fakePage{section("S1", 0, 90, 600)}
		got := ChainSection(doc, 700, &page.RelTo{ID: "<last-section>", Below: 12}, "HEADER")
		assert.Equal(t, &page.RelTo{ID: "HEADER", Below: 12}, got)
	})

	t.Run("explicit relTo kept", func(t *testing.T) {
		doc := fakePage{section("S1", 0, 90, 600)}
		got := ChainSection(doc, 700, &page.RelTo{ID: "S1", Below: 5}, "")
		assert.Equal(t, &page.RelTo{ID: "S1", Below: 5}, got)
	})
}

func TestAuto(t *testing.T) {
	parent := section("S1", 0, 100, 500)
	doc := fakePage{
		parent,
		child("A", "S1", 20, 120, 300, 50), // bottom 170
		child("B", "S1", 40, 200, 300, 80), // bottom 280
		section("S2", 1, 600, 400),
	}

	tests := []struct {
		name  string
		req   Request
		rel   *page.RelIn
		relTo *page.RelTo
		left  int
		top   int
		width int
	}{
		{
			name: "below last child",
			req:  Request{Strategy: BelowLastChild, ParentID: "S1", Width: 100, Height: 40, Gap: 20},
			rel:  offsets(0, 200, -1200, -260), relTo: &page.RelTo{ID: "B", Below: 20},
			left: 0, top: 300, width: 100,
		},
		{
			name: "below last child of empty parent",
			req:  Request{Strategy: BelowLastChild, ParentID: "S2", Width: 100, Height: 40, Gap: 20},
			rel:  offsets(0, 20, -1200, -340),
			left: 0, top: 620, width: 100,
		},
		{
			name: "above first child ignores children",
			req:  Request{Strategy: AboveFirstChild, ParentID: "S1", Width: 100, Height: 40, Gap: 10},
			rel:  offsets(0, 10, -1200, -450),
			left: 0, top: 110, width: 100,
		},
		{
			name: "centered floors",
			req:  Request{Strategy: Centered, ParentID: "S1", Width: 301, Height: 101},
			rel:  offsets(499, 199, -500, -200),
			left: 499, top: 299, width: 301,
		},
		{
			name: "fill width",
			req:  Request{Strategy: FillWidth, ParentID: "S1", Width: 5, Height: 60, Gap: 30},
			rel:  offsets(30, 30, -30, -410),
			left: 30, top: 130, width: 1240,
		},
		{
			name: "stack below sibling",
			req:  Request{Strategy: StackBelow, ParentID: "S1", SiblingID: "A", Width: 200, Height: 30, Gap: 15},
			rel:  offsets(20, 85, -1080, -385), relTo: &page.RelTo{ID: "A", Below: 15},
			left: 20, top: 185, width: 200,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Auto(doc, tt.req)
			require.NoError(t, err)
			tt.rel.ID = tt.req.ParentID
			if diff := cmp.Diff(tt.rel, got.RelIn); diff != "" {
				t.Errorf("relIn mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.relTo, got.RelTo)
			assert.Equal(t, tt.left, got.Left)
			assert.Equal(t, tt.top, got.Top)
			assert.Equal(t, tt.width, got.Width)

			box := Resolve(BoxOf(doc.Find(tt.req.ParentID)), got.RelIn, got.Width, got.Height)
			assert.Equal(t, Box{Left: got.Left, Top: got.Top, Width: got.Width, Height: got.Height}, box)
		})
	}
}

func TestAutoErrors(t *testing.T) {
	doc := fakePage{
		section("S1", 0, 0, 500),
		section("S2", 1, 500, 500),
		child("A", "S2", 0, 510, 10, 10),
	}

	tests := []struct {
		name string
		req  Request
		code errors.Code
	}{
		{"unknown strategy", Request{Strategy: "diagonal", ParentID: "S1"}, errors.ErrCodeInvalidInput},
		{"unknown parent", Request{Strategy: Centered, ParentID: "nope"}, errors.ErrCodeNotFound},
		{"stack without sibling", Request{Strategy: StackBelow, ParentID: "S1"}, errors.ErrCodeInvalidInput},
		{"stack unknown sibling", Request{Strategy: StackBelow, ParentID: "S1", SiblingID: "Z"}, errors.ErrCodeNotFound},
		{"stack across parents", Request{Strategy: StackBelow, ParentID: "S1", SiblingID: "A"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Auto(doc, tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
}

func TestFloorDiv(t *testing.T) {
	assert.Equal(t, 2, floorDiv(5, 2))
	assert.Equal(t, -3, floorDiv(-5, 2))
	assert.Equal(t, -2, floorDiv(-4, 2))
	assert.Equal(t, 0, floorDiv(0, 2))
}
