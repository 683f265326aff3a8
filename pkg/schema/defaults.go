package schema

// Defaults returns the kind-specific default fields for a new component.
// The result is freshly allocated on every call.
func Defaults(kind string) map[string]any {
	switch kind {
	case "SECTION":
		return map[string]any{
			"stretch":               true,
			"pin":                   0,
			"selectedTheme":         "White",
			"selectedGradientTheme": nil,
			"selectedBorderTheme":   nil,
			"mobileSettings":        map[string]any{"size": "cover"},
		}
	case "CONTAINER":
		return map[string]any{
			"wrap": false,
		}
	case "TEXT":
		return map[string]any{
			"fontSize":              16,
			"lineHeight":            1.5,
			"text":                  "",
			"styles":                []any{},
			"paras":                 []any{},
			"links":                 []any{},
			"mobileDown":            false,
			"mobileHide":            false,
			"mobileSettings":        map[string]any{"align": nil, "font": 0},
			"verticalAlignment":     "top",
			"globalStyleId":         "GLOBAL_TEXT_STYLE_DEFAULT",
			"themeShadowBlurRadius": 3,
			"themeShadowOffsetX":    3,
			"themeShadowOffsetY":    3,
			"themeShadowColor":      nil,
		}
	case "BUTTON":
		return map[string]any{
			"corners":             map[string]any{"radius": 5},
			"fontSize":            16,
			"bold":                true,
			"mobileDown":          false,
			"mobileHide":          false,
			"mobileSettings":      map[string]any{"align": "justify"},
			"buttonThemeSelected": "primary",
			"style": map[string]any{
				"border":     nil,
				"background": nil,
				"globalId":   "BUTTON_STYLE_DEFAULT",
				"globalName": "[button.default]",
				"type":       "web.data.styles.StyleButton",
				"text":       map[string]any{"size": nil},
			},
		}
	default:
		return map[string]any{}
	}
}

// ApplyDefaults fills kind defaults into props for every key that is
// missing or null. Supplied values are never replaced.
func ApplyDefaults(kind string, props map[string]any) {
	for k, v := range Defaults(kind) {
		if cur, ok := props[k]; !ok || cur == nil {
			props[k] = v
		}
	}
}
