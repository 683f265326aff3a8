package page

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kottinov/website-builder/pkg/errors"
)

const sampleDoc = `{
  "id": "P1",
  "type": "web.data.components.Page",
  "name": "Generated Page",
  "templateId": "T1",
  "items": [
    {
      "id": "S1",
      "kind": "SECTION",
      "orderIndex": 0,
      "inTemplate": false,
      "wrap": false,
      "relIn": null,
      "relTo": {
        "id": "22FC8C5B-CD71-42B7-9DF2-486F577581A9",
        "below": 0
      },
      "relPage": null,
      "relPara": null,
      "left": 0,
      "top": 90,
      "width": 1300,
      "height": 600,
      "selectedTheme": "White",
      "stretch": true
    },
    {
      "id": "X1",
      "kind": "TEXT",
      "orderIndex": 0,
      "relIn": {
        "id": "S1",
        "left": 185,
        "top": 160,
        "right": -435,
        "bottom": -340
      },
      "relTo": null,
      "content": "<p>Hello & welcome</p>",
      "lineHeight": 1.5
    }
  ],
  "shareHeaderAndFirstSectionBgImg": false,
  "shareBgImgOffsetTop": 0,
  "version": 3
}
`

func TestDecodeEncodeStable(t *testing.T) {
	p, err := Decode([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	out, err := Encode(p)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if diff := cmp.Diff(sampleDoc, string(out)); diff != "" {
		t.Errorf("re-encoded document differs (-want +got):\n%s", diff)
	}
}

func TestDecodeTypedFields(t *testing.T) {
	p, err := Decode([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(p.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(p.Items))
	}

	sec := p.Items[0]
	if !sec.IsSection() {
		t.Errorf("IsSection() = false for %s", sec.ID)
	}
	if sec.RelIn != nil {
		t.Errorf("section relIn = %+v, want nil", sec.RelIn)
	}
	if sec.RelTo == nil || sec.RelTo.Below != 0 {
		t.Errorf("section relTo = %+v", sec.RelTo)
	}
	if Deref(sec.Top) != 90 || Deref(sec.Height) != 600 {
		t.Errorf("section geometry top=%d height=%d", Deref(sec.Top), Deref(sec.Height))
	}

	text := p.Items[1]
	if text.ParentID() != "S1" {
		t.Errorf("ParentID() = %q, want S1", text.ParentID())
	}
	if got := Deref(text.RelIn.Bottom); got != -340 {
		t.Errorf("relIn.bottom = %d, want -340", got)
	}
	if text.Top != nil {
		t.Errorf("text top = %v, want nil", *text.Top)
	}
	if got, ok := text.Props["lineHeight"].(float64); !ok || got != 1.5 {
		t.Errorf("lineHeight = %#v, want 1.5", text.Props["lineHeight"])
	}
	if got := p.Extra["version"]; got != 3 {
		t.Errorf("extra version = %#v, want 3", got)
	}
}

func TestEncodeDoesNotEscapeHTML(t *testing.T) {
	p := New("P", "T")
	p.Items = append(p.Items, &Component{
		ID:    "A",
		Kind:  "TEXT",
		Props: map[string]any{"content": "<b>a & b</b>"},
	})
	out, err := Encode(p)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Contains(out, []byte(`"content": "<b>a & b</b>"`)) {
		t.Errorf("content was escaped:\n%s", out)
	}
}

func TestNewPageEnvelope(t *testing.T) {
	out, err := Encode(New("P", "T"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := `{
  "id": "P",
  "type": "web.data.components.Page",
  "name": "Generated Page",
  "templateId": "T",
  "items": [],
  "shareHeaderAndFirstSectionBgImg": false,
  "shareBgImgOffsetTop": 0
}
`
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Errorf("envelope (-want +got):\n%s", diff)
	}
}

func TestLegacyNestedItems(t *testing.T) {
	doc := `{"id":"P","items":[{"id":"A","type":"CONTAINER","items":[{"id":"B","kind":"TEXT","items":[{"id":"C","kind":"TEXT"}]}]}]}`
	p, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	var ids []string
	p.Walk(func(c *Component) bool {
		ids = append(ids, c.ID)
		return true
	})
	if diff := cmp.Diff([]string{"A", "B", "C"}, ids); diff != "" {
		t.Errorf("walk order (-want +got):\n%s", diff)
	}
	if got := p.Items[0].EffectiveKind(); got != "CONTAINER" {
		t.Errorf("EffectiveKind() = %q, want CONTAINER", got)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code errors.Code
	}{
		{"empty", "", errors.ErrCodeInvalidDocument},
		{"whitespace", "  \n", errors.ErrCodeInvalidDocument},
		{"syntax", "{not json", errors.ErrCodeInvalidDocument},
		{"array", "[]", errors.ErrCodeInvalidDocument},
		{"null", "null", errors.ErrCodeInvalidDocument},
		{"items not array", `{"items": 3}`, errors.ErrCodeInvalidInput},
		{"bad relIn", `{"items": [{"id": "A", "relIn": "S1"}]}`, errors.ErrCodeInvalidInput},
		{"fractional geometry", `{"items": [{"id": "A", "top": 1.5}]}`, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc))
			if err == nil {
				t.Fatal("Decode() error = nil")
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %v, want %v (%v)", got, tt.code, err)
			}
		})
	}
}

func TestCanonical(t *testing.T) {
	in := map[string]any{
		"a": 16.0,
		"b": 1.5,
		"c": []any{2.0, map[string]any{"d": float32(3)}},
		"e": "x",
	}
	want := map[string]any{
		"a": 16,
		"b": 1.5,
		"c": []any{2, map[string]any{"d": 3}},
		"e": "x",
	}
	if diff := cmp.Diff(want, Canonical(in)); diff != "" {
		t.Errorf("Canonical (-want +got):\n%s", diff)
	}
	if in["a"] != 16.0 {
		t.Error("Canonical mutated its input")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	orig := &Component{
		ID:    "A",
		Kind:  "TEXT",
		RelIn: &RelIn{ID: "S", Left: IntPtr(1)},
		Props: map[string]any{"style": map[string]any{"color": "red"}},
	}
	cp := orig.Clone()
	*cp.RelIn.Left = 99
	cp.Props["style"].(map[string]any)["color"] = "blue"

	if *orig.RelIn.Left != 1 {
		t.Error("clone shares relIn offsets")
	}
	if orig.Props["style"].(map[string]any)["color"] != "red" {
		t.Error("clone shares nested props")
	}
}

func TestExportImportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "static", "wsb", "page.json")
	p := New("P", "T")
	p.Items = append(p.Items, &Component{ID: "S1", Kind: Section, Top: IntPtr(0)})

	if err := ExportJSON(p, path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	got, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].ID != "S1" {
		t.Errorf("imported items = %+v", got.Items)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".page-") {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}
}
