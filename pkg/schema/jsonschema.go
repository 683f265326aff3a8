package schema

// JSON Schema fragments built from the field table, for tool definitions.

// CreateSchema returns the closed JSON Schema for create payloads.
func CreateSchema() map[string]any {
	props := properties(insertionFields, componentFields)
	return object(props, []string{"kind"})
}

// EditSchema returns the closed JSON Schema for edit payloads.
func EditSchema() map[string]any {
	props := make(map[string]any, len(editIndex))
	for name, f := range editIndex {
		props[name] = property(f)
	}
	return object(props, []string{KeyComponentID})
}

func properties(groups ...[]Field) map[string]any {
	out := make(map[string]any)
	for _, g := range groups {
		for _, f := range g {
			out[f.Name] = property(f)
		}
	}
	return out
}

func property(f Field) map[string]any {
	p := map[string]any{
		"type":        typeNames(f.Type),
		"description": f.Description,
	}
	if sub, ok := nestedFields[f.Name]; ok {
		p["properties"] = properties(sub)
		p["additionalProperties"] = false
	}
	return p
}

func object(props map[string]any, required []string) map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

// typeNames maps a Type bit set to JSON Schema type names; null is always
// allowed.
func typeNames(t Type) []string {
	var names []string
	for _, n := range []struct {
		t    Type
		name string
	}{
		{TypeString, "string"}, {TypeInt, "integer"}, {TypeNumber, "number"},
		{TypeBool, "boolean"}, {TypeObject, "object"}, {TypeArray, "array"},
	} {
		if t&n.t != 0 {
			names = append(names, n.name)
		}
	}
	return append(names, "null")
}
