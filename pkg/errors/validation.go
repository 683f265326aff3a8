package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateID validates a component id supplied by a caller.
// Ids are opaque, but empty strings, control characters and surrounding
// whitespace never name a real component.
func ValidateID(field, id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "%s cannot be empty", field)
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "%s too long (max 256 characters)", field)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s contains invalid control characters", field)
		}
	}

	if strings.TrimSpace(id) != id {
		return New(ErrCodeInvalidInput, "%s has leading or trailing whitespace: %q", field, id)
	}

	return nil
}

// ValidateKind validates a component kind tag.
// Kinds are upper-case identifiers such as SECTION, TEXT or BUTTON.
func ValidateKind(kind string) error {
	if kind == "" {
		return New(ErrCodeInvalidInput, "kind cannot be empty")
	}

	for _, r := range kind {
		if !(unicode.IsUpper(r) || unicode.IsDigit(r) || r == '_' || r == '.') {
			return New(ErrCodeInvalidInput, "invalid kind %q: use upper-case identifiers like SECTION or TEXT", kind)
		}
	}

	return nil
}

// ValidateOneOf validates that value is one of allowed.
func ValidateOneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "invalid %s %q (expected one of: %s)", field, value, strings.Join(allowed, ", "))
}

// ValidatePagePath validates a page key supplied by a caller. Keys are
// relative to the store directory: absolute paths and ".." segments are
// rejected.
func ValidatePagePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "page path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "page path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "page path contains invalid characters")
		}
	}

	if filepath.IsAbs(path) || filepath.VolumeName(path) != "" || strings.HasPrefix(path, "/") || strings.HasPrefix(path, `\`) {
		return New(ErrCodeInvalidInput, "page path must be relative to the store directory")
	}

	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return New(ErrCodeInvalidInput, "page path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}
