// Package style canonicalizes the key casing of component style payloads.
//
// Style-bearing fields accept CSS-like fragments from callers, which mix
// kebab-case ("background-color"), snake_case ("font_size") and camelCase
// keys. [Normalize] rewrites every key of those fragments to camelCase so
// consumers see one spelling.
package style

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Fields lists the component fields whose values are style fragments.
var Fields = []string{
	"style",
	"styles",
	"hover",
	"onHover",
	"press",
	"imageStyle",
	"captionBoxStyle",
	"captionTitleTextStyle",
	"captionDescriptionTextStyle",
	"captionStyle",
	"textStyleMeta",
}

// Camelize converts a kebab-case or snake_case key to camelCase. Keys
// without separators are returned unchanged.
//
//	Camelize("background-color") // "backgroundColor"
//	Camelize("font_size")        // "fontSize"
//	Camelize("BORDER-TOP-width") // "BORDERTopWidth"
func Camelize(key string) string {
	parts := strings.Split(strings.ReplaceAll(key, "_", "-"), "-")
	if len(parts) == 1 {
		return key
	}
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		b.WriteString(capitalize(p))
	}
	return b.String()
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// Normalize rewrites the style fields of a flattened component in place.
// Only [Fields] are touched; for "styles" only map entries are rewritten.
// Normalize is idempotent.
func Normalize(props map[string]any) {
	for _, field := range Fields {
		v, ok := props[field]
		if !ok || v == nil {
			continue
		}
		if field == "styles" {
			if list, ok := v.([]any); ok {
				out := make([]any, len(list))
				for i, entry := range list {
					if m, ok := entry.(map[string]any); ok {
						out[i] = rewrite(m)
					} else {
						out[i] = entry
					}
				}
				props[field] = out
				continue
			}
		}
		props[field] = rewrite(v)
	}
}

// rewrite returns a copy of v with every map key camelized, recursing into
// nested maps and lists.
func rewrite(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		// Keys already in canonical form win over converted duplicates.
		for _, k := range keys {
			if Camelize(k) == k {
				out[k] = rewrite(x[k])
			}
		}
		for _, k := range keys {
			ck := Camelize(k)
			if _, taken := out[ck]; ck != k && !taken {
				out[ck] = rewrite(x[k])
			}
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = rewrite(e)
		}
		return out
	default:
		return v
	}
}
