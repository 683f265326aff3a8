package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kottinov/website-builder/pkg/errors"
	"github.com/kottinov/website-builder/pkg/page"
)

func textPayload() map[string]any {
	return map[string]any{
		"kind":    "TEXT",
		"relIn":   map[string]any{"id": "S1"},
		"left":    10,
		"top":     20,
		"width":   300,
		"height":  40,
		"content": "<p>Hello</p>",
	}
}

func TestValidateCreateText(t *testing.T) {
	in, err := ValidateCreate(textPayload())
	require.NoError(t, err)

	c := in.Component
	assert.Equal(t, "TEXT", c.Kind)
	assert.Equal(t, "S1", c.ParentID())
	assert.Equal(t, 300, page.Deref(c.Width))
	assert.Equal(t, "<p>Hello</p>", c.String("content"))
	assert.Empty(t, c.ID)
}

func TestValidateCreateHints(t *testing.T) {
	p := textPayload()
	delete(p, "relIn")
	p["parent_id"] = "S1"
	p["after_id"] = "S0"
	p["response_format"] = "detailed"
	p["file_path"] = "site/page.json"

	in, err := ValidateCreate(p)
	require.NoError(t, err)
	assert.Equal(t, "S1", in.ParentID)
	assert.Equal(t, "S0", in.AfterID)
	assert.Equal(t, "detailed", in.ResponseFormat)
	assert.Equal(t, "site/page.json", in.FilePath)
	assert.Equal(t, "S1", in.Component.ParentID())
	assert.NotContains(t, in.Component.Props, "parent_id")
	assert.NotContains(t, in.Component.Props, "file_path")
}

func TestValidateCreateDoesNotMutateInput(t *testing.T) {
	p := textPayload()
	p["parent_id"] = "S1"
	_, err := ValidateCreate(p)
	require.NoError(t, err)
	assert.Contains(t, p, "parent_id")
}

func TestValidateCreateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(map[string]any)
		wantMsg string
	}{
		{"missing kind", func(m map[string]any) { delete(m, "kind") }, "kind is required"},
		{"lowercase kind", func(m map[string]any) { m["kind"] = "text" }, "kind"},
		{"unknown field", func(m map[string]any) { m["colour"] = "red" }, "unknown fields for create: colour"},
		{"items", func(m map[string]any) { m["items"] = []any{} }, "items is not allowed"},
		{"cdata", func(m map[string]any) { m["content"] = "<![CDATA[<p>x</p>]]>" }, "CDATA"},
		{"wrong type", func(m map[string]any) { m["width"] = "wide" }, "width must be an integer"},
		{"fractional geometry", func(m map[string]any) { m["left"] = 1.5 }, "left must be an integer"},
		{"no parent", func(m map[string]any) { delete(m, "relIn") }, "need a parent"},
		{"placeholder parent", func(m map[string]any) { m["relIn"] = map[string]any{"id": "<section-id>"} }, "looks like a placeholder"},
		{"parent mismatch", func(m map[string]any) { m["parent_id"] = "S2" }, "does not match relIn.id"},
		{"unknown relIn key", func(m map[string]any) { m["relIn"] = map[string]any{"id": "S1", "x": 1} }, "unknown fields in relIn: x"},
		{"relTo below null", func(m map[string]any) { m["relTo"] = map[string]any{"id": "X0", "below": nil} }, "relTo.below must be a number"},
		{"relTo without id", func(m map[string]any) { m["relTo"] = map[string]any{"below": 10} }, "relTo.id is required"},
		{"relTo placeholder", func(m map[string]any) { m["relTo"] = map[string]any{"id": "temp-1", "below": 10} }, "placeholder"},
		{"relPara incomplete", func(m map[string]any) { m["relPara"] = map[string]any{"index": 0} }, "relPara.offset is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := textPayload()
			tt.mutate(p)
			_, err := ValidateCreate(p)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "code = %s", errors.GetCode(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidateCreateSection(t *testing.T) {
	section := map[string]any{
		"kind":   "SECTION",
		"left":   0,
		"top":    0,
		"width":  1300,
		"height": 600,
	}
	in, err := ValidateCreate(section)
	require.NoError(t, err)
	assert.Nil(t, in.Component.RelIn)

	section["relTo"] = map[string]any{"id": "anchor", "below": 0}
	_, err = ValidateCreate(section)
	require.NoError(t, err, "section relTo placeholders are replaced later, not rejected")

	section["relIn"] = map[string]any{"id": "S0", "top": 0}
	_, err = ValidateCreate(section)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot have relIn")

	delete(section, "relIn")
	section["parent_id"] = "S0"
	_, err = ValidateCreate(section)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot have parent_id")
}

func TestValidateEdit(t *testing.T) {
	in, err := ValidateEdit(map[string]any{
		"component_id": "X1",
		"kind":         "TEXT",
		"content":      "<p>Updated</p>",
		"left":         nil,
	})
	require.NoError(t, err)
	assert.Equal(t, "X1", in.ComponentID)
	assert.Equal(t, "TEXT", in.Kind)
	assert.Equal(t, map[string]any{"content": "<p>Updated</p>", "left": nil}, in.Updates)
}

func TestValidateEditErrors(t *testing.T) {
	tests := []struct {
		name    string
		in      map[string]any
		wantMsg string
	}{
		{"missing id", map[string]any{"content": "x"}, "component_id is required"},
		{"forbidden", map[string]any{"component_id": "X1", "id": "X2", "parent_id": "S1"}, "not editable: id, parent_id"},
		{"unknown", map[string]any{"component_id": "X1", "bogus": 1}, "unknown fields for edit: bogus"},
		{"empty", map[string]any{"component_id": "X1"}, "changes nothing"},
		{"cdata", map[string]any{"component_id": "X1", "text": "<![CDATA[x]]>"}, "CDATA"},
		{"items", map[string]any{"component_id": "X1", "items": []any{}}, "items is not allowed"},
		{"below null", map[string]any{"component_id": "X1", "relTo": map[string]any{"id": "X0"}}, "relTo.below"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateEdit(tt.in)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestCheckComponent(t *testing.T) {
	c := &page.Component{
		ID:     "X1",
		Kind:   "TEXT",
		RelIn:  &page.RelIn{ID: "S1", Left: page.IntPtr(0)},
		Left:   page.IntPtr(0),
		Top:    page.IntPtr(0),
		Width:  page.IntPtr(10),
		Height: page.IntPtr(10),
	}
	require.NoError(t, CheckComponent(c))

	missing := c.Clone()
	missing.Width, missing.Top = nil, nil
	err := CheckComponent(missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required layout fields: top, width")

	noOffset := c.Clone()
	noOffset.RelIn = &page.RelIn{ID: "S1"}
	require.Error(t, CheckComponent(noOffset))

	section := c.Clone()
	section.Kind = page.Section
	require.Error(t, CheckComponent(section))
	section.RelIn = nil
	require.NoError(t, CheckComponent(section))

	badProp := c.Clone()
	badProp.Props = map[string]any{"fontSize": "big"}
	require.Error(t, CheckComponent(badProp))
}

func TestIsPlaceholderID(t *testing.T) {
	for id, want := range map[string]bool{
		"<section-id>":                         true,
		"TEMP_1":                               true,
		"my-anchor":                            true,
		"FixMe":                                true,
		"mock-section":                         true,
		"8A3F1E22-5B6C-4D7E-9F01-23456789ABCD": false,
		"S1":                                   false,
	} {
		assert.Equal(t, want, IsPlaceholderID(id), id)
	}
}

func TestApplyDefaultsKeepsSuppliedValues(t *testing.T) {
	props := map[string]any{"fontSize": 24, "text": nil}
	ApplyDefaults("TEXT", props)

	assert.Equal(t, 24, props["fontSize"])
	assert.Equal(t, "", props["text"])
	assert.Equal(t, 1.5, props["lineHeight"])
	assert.Equal(t, "GLOBAL_TEXT_STYLE_DEFAULT", props["globalStyleId"])

	// Defaults are freshly allocated per call.
	a, b := Defaults("BUTTON"), Defaults("BUTTON")
	a["corners"].(map[string]any)["radius"] = 9
	assert.Equal(t, 5, b["corners"].(map[string]any)["radius"])

	unknown := map[string]any{}
	ApplyDefaults("IMAGE", unknown)
	assert.Empty(t, unknown)
}

func TestSchemas(t *testing.T) {
	create := CreateSchema()
	assert.Equal(t, false, create["additionalProperties"])
	assert.Equal(t, []string{"kind"}, create["required"])

	props := create["properties"].(map[string]any)
	relIn := props["relIn"].(map[string]any)
	assert.Equal(t, false, relIn["additionalProperties"])
	assert.Contains(t, relIn["properties"], "bottom")
	assert.Equal(t, []string{"integer", "null"}, props["width"].(map[string]any)["type"])

	edit := EditSchema()
	editProps := edit["properties"].(map[string]any)
	assert.Contains(t, editProps, "component_id")
	assert.NotContains(t, editProps, "parent_id")
	assert.NotContains(t, editProps, "id")
}
