package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kottinov/website-builder/pkg/errors"
	"github.com/kottinov/website-builder/pkg/page"
)

const cdataPrefix = "<![CDATA["

// CreateInput is a structurally valid create request.
type CreateInput struct {
	// Component is the draft record built from the payload. Its ID is empty
	// unless the caller supplied one; derived positioning and kind defaults
	// are not applied yet.
	Component *page.Component

	ParentID       string
	BeforeID       string
	AfterID        string
	FilePath       string
	ResponseFormat string

	// AutoPosition is the raw auto_position object, nil when absent.
	AutoPosition map[string]any
}

// EditInput is a structurally valid edit request.
type EditInput struct {
	ComponentID    string
	Kind           string
	FilePath       string
	ResponseFormat string

	// Updates maps field names to new values; a nil value clears the field.
	Updates map[string]any
}

// ValidateCreate checks a create payload against the closed component
// schema and returns the draft component plus insertion hints.
//
// Checks that depend on the page (reference existence, derived offsets,
// required geometry) run later through [CheckComponent] and the engine.
func ValidateCreate(in map[string]any) (*CreateInput, error) {
	if in == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "create payload is required")
	}
	in = page.Canonical(in).(map[string]any)

	if err := checkKnown(in, createIndex, "create"); err != nil {
		return nil, err
	}
	if err := checkTypes(in, createIndex); err != nil {
		return nil, err
	}
	if v, ok := in["items"]; ok && v != nil {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"items is not allowed: the page is a flat list, create each child separately with relIn.id (or parent_id) pointing at its parent")
	}
	if err := checkCDATA(in); err != nil {
		return nil, err
	}

	kind, _ := in["kind"].(string)
	if kind == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "kind is required (e.g. SECTION, TEXT, BUTTON)")
	}
	if err := errors.ValidateKind(kind); err != nil {
		return nil, err
	}

	out := &CreateInput{}
	hints := map[string]*string{
		KeyParentID:       &out.ParentID,
		KeyBeforeID:       &out.BeforeID,
		KeyAfterID:        &out.AfterID,
		KeyFilePath:       &out.FilePath,
		KeyResponseFormat: &out.ResponseFormat,
	}
	for key, dst := range hints {
		if s, ok := in[key].(string); ok {
			*dst = s
		}
		delete(in, key)
	}
	if auto, ok := in[KeyAutoPosition].(map[string]any); ok {
		out.AutoPosition = auto
	}
	delete(in, KeyAutoPosition)

	for _, ref := range []struct{ field, id string }{
		{KeyParentID, out.ParentID}, {KeyBeforeID, out.BeforeID}, {KeyAfterID, out.AfterID},
	} {
		if ref.id == "" {
			continue
		}
		if err := errors.ValidateID(ref.field, ref.id); err != nil {
			return nil, err
		}
	}
	if id, ok := in["id"].(string); ok {
		if err := errors.ValidateID("id", id); err != nil {
			return nil, err
		}
	}

	if kind == page.Section {
		if in["relIn"] != nil {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"SECTION components are top-level and cannot have relIn; set relIn to null and chain sections with relTo")
		}
		if out.ParentID != "" {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"SECTION components are top-level and cannot have parent_id %q", out.ParentID)
		}
	} else if err := resolveParent(in, out.ParentID, kind); err != nil {
		return nil, err
	}

	if rt, ok := in["relTo"].(map[string]any); ok {
		if _, err := checkBelow(rt); err != nil {
			return nil, err
		}
		id, _ := rt["id"].(string)
		if kind != page.Section {
			if id == "" {
				return nil, errors.New(errors.ErrCodeInvalidInput, "relTo.id is required when relTo is set")
			}
			if IsPlaceholderID(id) {
				return nil, placeholderError("relTo.id", id)
			}
		}
	}

	c, err := page.FromMap(in)
	if err != nil {
		return nil, err
	}
	out.Component = c
	return out, nil
}

// resolveParent reconciles parent_id with relIn.id for non-section kinds:
// parent_id fills relIn when relIn is absent, and the two must agree when
// both are given.
func resolveParent(in map[string]any, parentID, kind string) error {
	rel, _ := in["relIn"].(map[string]any)
	relID, _ := rel["id"].(string)

	switch {
	case rel == nil && parentID == "":
		return errors.New(errors.ErrCodeInvalidInput,
			"%s components need a parent: set relIn.id or parent_id to an existing component id (use list_components to find one)", kind)
	case rel == nil:
		in["relIn"] = map[string]any{"id": parentID}
		relID = parentID
	case relID == "" && parentID != "":
		rel["id"] = parentID
		relID = parentID
	case relID == "":
		return errors.New(errors.ErrCodeInvalidInput, "relIn.id is required for %s components", kind)
	case parentID != "" && parentID != relID:
		return errors.New(errors.ErrCodeInvalidInput,
			"parent_id %q does not match relIn.id %q; give one parent", parentID, relID)
	}

	if IsPlaceholderID(relID) {
		return placeholderError("relIn.id", relID)
	}
	return nil
}

// ValidateEdit checks an edit payload. Insertion-only keys are rejected
// before the closed-schema check so the caller learns why.
func ValidateEdit(in map[string]any) (*EditInput, error) {
	if in == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "edit payload is required")
	}
	in = page.Canonical(in).(map[string]any)

	var forbidden []string
	for _, k := range forbiddenOnEdit {
		if v, ok := in[k]; ok && v != nil {
			forbidden = append(forbidden, k)
		}
	}
	if len(forbidden) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"these fields are not editable: %s (ids and insertion hints are fixed at creation)", strings.Join(forbidden, ", "))
	}
	for _, k := range forbiddenOnEdit {
		delete(in, k)
	}

	if err := checkKnown(in, editIndex, "edit"); err != nil {
		return nil, err
	}
	if err := checkTypes(in, editIndex); err != nil {
		return nil, err
	}

	out := &EditInput{}
	out.ComponentID, _ = in[KeyComponentID].(string)
	if out.ComponentID == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "component_id is required")
	}
	if err := errors.ValidateID(KeyComponentID, out.ComponentID); err != nil {
		return nil, err
	}
	out.Kind, _ = in["kind"].(string)
	out.FilePath, _ = in[KeyFilePath].(string)
	out.ResponseFormat, _ = in[KeyResponseFormat].(string)
	for _, k := range []string{KeyComponentID, "kind", KeyFilePath, KeyResponseFormat} {
		delete(in, k)
	}

	if v, ok := in["items"]; ok && v != nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "items is not allowed: the page is a flat list")
	}
	if err := checkCDATA(in); err != nil {
		return nil, err
	}
	if rt, ok := in["relTo"].(map[string]any); ok {
		if _, err := checkBelow(rt); err != nil {
			return nil, err
		}
	}
	if len(in) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "edit of %s changes nothing: pass at least one field", out.ComponentID)
	}

	out.Updates = in
	return out, nil
}

// CheckComponent enforces the record-level invariants on a component after
// positioning and defaults have been applied (create) or after updates have
// been merged (edit). Reference existence is checked by the caller.
func CheckComponent(c *page.Component) error {
	kind := c.EffectiveKind()
	if kind == "" {
		return errors.New(errors.ErrCodeInvalidInput, "component %s has no kind", c.ID)
	}

	var missing []string
	for _, g := range []struct {
		name string
		v    *int
	}{{"left", c.Left}, {"top", c.Top}, {"width", c.Width}, {"height", c.Height}} {
		if g.v == nil {
			missing = append(missing, g.name)
		}
	}
	if len(missing) > 0 {
		return errors.New(errors.ErrCodeInvalidInput,
			"missing required layout fields: %s (every component needs numeric left, top, width and height)", strings.Join(missing, ", "))
	}

	if kind == page.Section {
		if c.RelIn != nil {
			return errors.New(errors.ErrCodeInvalidInput, "SECTION %s cannot have relIn", c.ID)
		}
	} else {
		if c.RelIn == nil || c.RelIn.ID == "" {
			return errors.New(errors.ErrCodeInvalidInput, "%s %s needs relIn.id naming its parent", kind, c.ID)
		}
		if IsPlaceholderID(c.RelIn.ID) {
			return placeholderError("relIn.id", c.RelIn.ID)
		}
	}
	if c.RelIn != nil && !c.RelIn.HasOffset() {
		return errors.New(errors.ErrCodeInvalidInput,
			"relIn needs at least one numeric offset among left, top, right, bottom")
	}
	if len(c.Items) > 0 {
		return errors.New(errors.ErrCodeInvalidInput, "component %s has nested items; the page must stay flat", c.ID)
	}

	props := make(map[string]any, len(c.Props))
	for k, v := range c.Props {
		if _, known := createIndex[k]; known {
			props[k] = v
		}
	}
	if err := checkTypes(props, createIndex); err != nil {
		return err
	}
	return checkCDATA(c.Props)
}

func checkKnown(in map[string]any, allowed map[string]Field, op string) error {
	var unknown []string
	for k := range in {
		if _, ok := allowed[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return errors.New(errors.ErrCodeInvalidInput,
		"unknown fields for %s: %s (only documented component fields are accepted)", op, strings.Join(unknown, ", "))
}

func checkTypes(in map[string]any, fields map[string]Field) error {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := in[k]
		f, ok := fields[k]
		if !ok || v == nil {
			continue
		}
		if !accepts(f.Type, v) {
			return errors.New(errors.ErrCodeInvalidInput, "%s must be %s, got %s", k, describe(f.Type), jsonType(v))
		}
		sub, nested := nestedFields[k]
		if !nested {
			continue
		}
		m, _ := v.(map[string]any)
		if m == nil {
			continue
		}
		subIndex := index(sub)
		var unknown []string
		for sk := range m {
			if _, ok := subIndex[sk]; !ok {
				unknown = append(unknown, sk)
			}
		}
		if len(unknown) > 0 {
			sort.Strings(unknown)
			return errors.New(errors.ErrCodeInvalidInput, "unknown fields in %s: %s", k, strings.Join(unknown, ", "))
		}
		for _, sf := range sub {
			sv, present := m[sf.Name]
			if !present || sv == nil {
				if k == "relPara" {
					return errors.New(errors.ErrCodeInvalidInput, "%s.%s is required", k, sf.Name)
				}
				continue
			}
			if !accepts(sf.Type, sv) {
				return errors.New(errors.ErrCodeInvalidInput, "%s.%s must be %s, got %s", k, sf.Name, describe(sf.Type), jsonType(sv))
			}
		}
	}
	return nil
}

// checkBelow requires relTo.below to be present and numeric.
func checkBelow(relTo map[string]any) (int, error) {
	v, ok := relTo["below"]
	if !ok || v == nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "relTo.below must be a number (the pixel gap below relTo.id), not null")
	}
	n, ok := page.Int(v)
	if !ok {
		return 0, errors.New(errors.ErrCodeInvalidInput, "relTo.below must be an integer, got %v", v)
	}
	return n, nil
}

func checkCDATA(in map[string]any) error {
	for _, k := range []string{"content", "text"} {
		if s, ok := in[k].(string); ok && strings.Contains(s, cdataPrefix) {
			return errors.New(errors.ErrCodeInvalidInput, "%s must be plain HTML without CDATA wrappers", k)
		}
	}
	return nil
}

func placeholderError(field, id string) error {
	return errors.New(errors.ErrCodeInvalidInput,
		"%s %q looks like a placeholder, not a real component id; call list_components and use an existing id", field, id)
}

func accepts(t Type, v any) bool {
	switch v.(type) {
	case string:
		return t&TypeString != 0
	case bool:
		return t&TypeBool != 0
	case int:
		return t&(TypeInt|TypeNumber) != 0
	case float64:
		return t&TypeNumber != 0
	case map[string]any:
		return t&TypeObject != 0
	case []any:
		return t&TypeArray != 0
	default:
		return false
	}
}

func describe(t Type) string {
	var names []string
	for _, n := range []struct {
		t    Type
		name string
	}{
		{TypeString, "a string"}, {TypeInt, "an integer"}, {TypeNumber, "a number"},
		{TypeBool, "a boolean"}, {TypeObject, "an object"}, {TypeArray, "an array"},
	} {
		if t&n.t != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, " or ")
}

func jsonType(v any) string {
	switch x := v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case int:
		return "integer"
	case float64:
		return fmt.Sprintf("number %v", x)
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}
