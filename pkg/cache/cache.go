// Package cache stores rendered artifacts, such as outline SVGs, keyed by a
// hash of their input so an unchanged page is not rendered twice.
//
//	c, err := cache.NewFileCache(dir)
//	if err != nil {
//	    return err
//	}
//	key := cache.Key("outline-svg", dot)
//	if svg, ok, _ := c.Get(ctx, key); ok {
//	    return svg, nil
//	}
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
