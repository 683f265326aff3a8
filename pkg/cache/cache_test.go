package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNull(t *testing.T) {
	ctx := context.Background()
	c := NewNull()
	defer c.Close()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Hour))
	data, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, data)
	assert.NoError(t, c.Delete(ctx, "k"))
}

func TestKeyAndHash(t *testing.T) {
	assert.Equal(t, Hash([]byte("hello")), Hash([]byte("hello")))
	assert.NotEqual(t, Hash([]byte("hello")), Hash([]byte("world")))
	assert.Len(t, Hash([]byte("hello")), 64)

	k := Key("outline-svg", "digraph G {}")
	assert.Equal(t, k, Key("outline-svg", "digraph G {}"))
	assert.NotEqual(t, k, Key("outline-svg", "digraph H {}"))
	assert.NotEqual(t, k, Key("outline-dot", "digraph G {}"))
	assert.Regexp(t, `^outline-svg:[0-9a-f]{64}$`, k)
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "nested", "cache"))
	require.NoError(t, err)
	defer c.Close()

	_, hit, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "svg", []byte("<svg/>"), 0))
	data, hit, err := c.Get(ctx, "svg")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []byte("<svg/>"), data)

	require.NoError(t, c.Delete(ctx, "svg"))
	require.NoError(t, c.Delete(ctx, "svg"), "deleting twice is fine")
	_, hit, _ = c.Get(ctx, "svg")
	assert.False(t, hit)
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	_, hit, _ := c.Get(ctx, "k")
	assert.True(t, hit)

	now = now.Add(2 * time.Minute)
	_, hit, _ = c.Get(ctx, "k")
	assert.False(t, hit)
	assert.NoFileExists(t, c.path("k"), "expired entries are removed")
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)

	path := c.path("k")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoFileExists(t, path)
}
