package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/kottinov/website-builder/pkg/errors"
	"github.com/kottinov/website-builder/pkg/observability"
	"github.com/kottinov/website-builder/pkg/page"
)

// File stores each page as an indented JSON file. Keys are file paths
// relative to the base directory and never resolve outside it.
type File struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFile creates a file store. An empty baseDir resolves relative keys
// against the working directory.
func NewFile(baseDir string) *File {
	return &File{baseDir: baseDir}
}

// Path returns the file path used for key.
func (s *File) Path(key string) string {
	if key == "" {
		key = page.DefaultPath
	}
	if s.baseDir == "" {
		return filepath.Clean(key)
	}
	return filepath.Join(s.baseDir, key)
}

// resolve validates key and returns its path inside the base directory.
func (s *File) resolve(key string) (string, error) {
	if key != "" {
		if err := errors.ValidatePagePath(key); err != nil {
			return "", err
		}
	}
	path := s.Path(key)
	base := s.baseDir
	if base == "" {
		base = "."
	}
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.New(errors.ErrCodeInvalidInput, "page path %q resolves outside the store directory", key)
	}
	return path, nil
}

func (s *File) Load(ctx context.Context, key string) (*page.Page, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := time.Now()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			observability.Store().OnLoad(ctx, BackendFile, path, false, time.Since(start), nil)
			return nil, nil
		}
		err = errors.Wrap(errors.ErrCodeStorage, err, "read page file %s", path)
		observability.Store().OnLoad(ctx, BackendFile, path, false, time.Since(start), err)
		return nil, err
	}

	p, err := page.Decode(data)
	observability.Store().OnLoad(ctx, BackendFile, path, true, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *File) Save(ctx context.Context, key string, p *page.Page) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	if err := page.ExportJSON(p, path); err != nil {
		err = errors.Wrap(errors.ErrCodeStorage, err, "write page file %s", path)
		observability.Store().OnSave(ctx, BackendFile, path, 0, time.Since(start), err)
		return err
	}
	size := 0
	if fi, err := os.Stat(path); err == nil {
		size = int(fi.Size())
	}
	observability.Store().OnSave(ctx, BackendFile, path, size, time.Since(start), nil)
	return nil
}

func (s *File) Close() error { return nil }

var _ Store = (*File)(nil)
