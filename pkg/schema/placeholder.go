package schema

import "strings"

// placeholderPatterns are substrings that mark an id as invented rather
// than copied from the page.
var placeholderPatterns = []string{
	"temp",
	"anchor",
	"placeholder",
	"dummy",
	"fake",
	"mock",
	"todo",
	"fixme",
}

// IsPlaceholderID reports whether id looks like a stand-in rather than a
// real component id: it contains one of the placeholder words
// (case-insensitive) or angle brackets as in "<section-id>".
func IsPlaceholderID(id string) bool {
	if strings.ContainsAny(id, "<>") {
		return true
	}
	lower := strings.ToLower(id)
	for _, p := range placeholderPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
