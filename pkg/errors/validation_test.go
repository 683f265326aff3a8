package errors

import (
	"testing"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"uuid", "22FC8C5B-CD71-42B7-9DF2-486F577581A9", false},
		{"short", "hero", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
		{"leading space", " hero", true},
		{"trailing space", "hero ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID("component_id", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateKind(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"section", "SECTION", false},
		{"with underscore", "TEXT_BLOCK", false},
		{"dotted", "web.data.components.Text", true},
		{"lowercase", "text", true},
		{"empty", "", true},
		{"space", "MY KIND", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKind(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateKind(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateOneOf(t *testing.T) {
	if err := ValidateOneOf("format", "concise", "concise", "detailed"); err != nil {
		t.Errorf("ValidateOneOf(concise) error = %v", err)
	}
	err := ValidateOneOf("format", "verbose", "concise", "detailed")
	if err == nil {
		t.Fatal("ValidateOneOf(verbose) error = nil, want error")
	}
	if !Is(err, ErrCodeInvalidInput) {
		t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidInput)
	}
}

func TestValidatePagePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"default", "static/wsb/page.json", false},
		{"dotted file", "static/wsb/page..json", false},
		{"dot segment", "./site/page.json", false},

		{"empty", "", true},
		{"traversal", "static/../../etc/passwd", true},
		{"backslash traversal", `static\..\..\notes.txt`, true},
		{"absolute", "/srv/pages/home.json", true},
		{"backslash root", `\srv\home.json`, true},
		{"null byte", "page\x00.json", true},
		{"too long", string(make([]byte, 600)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePagePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePagePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
