// Package store persists WSB pages.
//
// A page is always read and written as a whole document. Every backend
// stores the exact bytes produced by [page.Encode], so an unchanged page
// round-trips byte for byte whatever the backend:
//   - file: JSON files on disk (the default; keys are paths)
//   - memory: process-local map, for tests and dry runs
//   - sqlite: one row per page in a local database
//   - redis: one string value per page
//   - mongo: one document per page
//
// # Usage
//
//	st, err := store.Open(ctx, store.Options{Backend: store.BackendFile})
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//
//	p, err := st.Load(ctx, "static/wsb/page.json")
//	if p == nil && err == nil {
//	    // page does not exist yet
//	}
//
// Load returns decode failures unchanged so callers can tell an unreadable
// document (INVALID_DOCUMENT) from a storage fault (STORAGE).
package store

import (
	"context"
	"time"

	"github.com/kottinov/website-builder/pkg/errors"
	"github.com/kottinov/website-builder/pkg/observability"
	"github.com/kottinov/website-builder/pkg/page"
)

// Store loads and saves whole pages by key.
type Store interface {
	// Load returns the page stored under key, or nil and no error when
	// nothing is stored there.
	Load(ctx context.Context, key string) (*page.Page, error)

	// Save replaces the page stored under key.
	Save(ctx context.Context, key string, p *page.Page) error

	// Close releases the backend's resources.
	Close() error
}

// Backend names accepted by [Open].
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Backends lists every backend name.
var Backends = []string{BackendFile, BackendMemory, BackendSQLite, BackendRedis, BackendMongo}

// Options selects and configures a backend.
type Options struct {
	Backend string

	// BaseDir resolves relative keys for the file backend.
	BaseDir string

	SQLitePath string

	RedisURL    string
	RedisPrefix string

	MongoURI        string
	MongoDatabase   string
	MongoCollection string
}

// Open creates the backend named by opts.Backend ("" means file).
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendFile:
		return NewFile(opts.BaseDir), nil
	case BackendMemory:
		return NewMemory(), nil
	case BackendSQLite:
		return OpenSQLite(opts.SQLitePath)
	case BackendRedis:
		return OpenRedis(ctx, opts.RedisURL, opts.RedisPrefix)
	case BackendMongo:
		return OpenMongo(ctx, opts.MongoURI, opts.MongoDatabase, opts.MongoCollection)
	default:
		return nil, errors.ValidateOneOf("store backend", opts.Backend, Backends...)
	}
}

// blobs is the raw byte access shared by the key/value backends.
type blobs interface {
	get(ctx context.Context, key string) ([]byte, bool, error)
	put(ctx context.Context, key string, data []byte) error
}

func loadBlob(ctx context.Context, backend string, b blobs, key string) (*page.Page, error) {
	start := time.Now()
	data, found, err := b.get(ctx, key)
	if err != nil {
		err = errors.Wrap(errors.ErrCodeStorage, err, "load page %s from %s", key, backend)
		observability.Store().OnLoad(ctx, backend, key, false, time.Since(start), err)
		return nil, err
	}
	if !found {
		observability.Store().OnLoad(ctx, backend, key, false, time.Since(start), nil)
		return nil, nil
	}
	p, err := page.Decode(data)
	observability.Store().OnLoad(ctx, backend, key, true, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func saveBlob(ctx context.Context, backend string, b blobs, key string, p *page.Page) error {
	start := time.Now()
	data, err := page.Encode(p)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode page %s", key)
	}
	if err := b.put(ctx, key, data); err != nil {
		err = errors.Wrap(errors.ErrCodeStorage, err, "save page %s to %s", key, backend)
		observability.Store().OnSave(ctx, backend, key, len(data), time.Since(start), err)
		return err
	}
	observability.Store().OnSave(ctx, backend, key, len(data), time.Since(start), nil)
	return nil
}
