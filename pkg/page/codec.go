package page

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kottinov/website-builder/pkg/errors"
)

// Encode renders p as 2-space indented JSON terminated by a newline.
func Encode(p *Page) ([]byte, error) {
	var compact bytes.Buffer
	if err := p.appendJSON(&compact); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "indent page")
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// Decode parses a page document. Empty or syntactically invalid input
// yields an INVALID_DOCUMENT error; a well-formed document with wrongly
// typed structural fields yields INVALID_INPUT.
func Decode(data []byte) (*Page, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "page document is empty")
	}
	var p Page
	if err := json.Unmarshal(data, &p); err != nil {
		if errors.GetCode(err) != "" {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "parse page")
	}
	return &p, nil
}

// WriteJSON encodes p and writes it to w.
func WriteJSON(p *Page, w io.Writer) error {
	data, err := Encode(p)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// ReadJSON decodes a page from r.
func ReadJSON(r io.Reader) (*Page, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return Decode(data)
}

// ExportJSON writes p to path atomically: the document is written to a
// temporary file in the same directory and renamed over the target.
func ExportJSON(p *Page, path string) error {
	data, err := Encode(p)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".page-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

// ImportJSON reads a page from path.
func ImportJSON(path string) (*Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
