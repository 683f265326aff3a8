package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/kottinov/website-builder/pkg/errors"
	"github.com/kottinov/website-builder/pkg/observability"
	"github.com/kottinov/website-builder/pkg/page"
)

func samplePage() *page.Page {
	p := page.New("P1", "T1")
	p.Items = []*page.Component{{
		ID: "S1", Kind: page.Section,
		RelTo: &page.RelTo{ID: "A", Below: 0},
		Top:   page.IntPtr(90), Height: page.IntPtr(600),
		Props: map[string]any{"selectedTheme": "White"},
	}}
	return p
}

// exercise runs the shared contract against any store.
func exercise(t *testing.T, s Store, key string) {
	t.Helper()
	ctx := context.Background()

	got, err := s.Load(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, got, "missing page loads as nil")

	want := samplePage()
	require.NoError(t, s.Save(ctx, key, want))

	got, err = s.Load(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, got)

	wantBytes, err := page.Encode(want)
	require.NoError(t, err)
	gotBytes, err := page.Encode(got)
	require.NoError(t, err)
	assert.Equal(t, string(wantBytes), string(gotBytes))

	got.Name = "Renamed"
	require.NoError(t, s.Save(ctx, key, got))
	again, err := s.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", again.Name)
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	s := NewFile(dir)
	exercise(t, s, "static/wsb/page.json")

	data, err := os.ReadFile(filepath.Join(dir, "static", "wsb", "page.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"items\": [\n")
}

func TestFileStorePath(t *testing.T) {
	s := NewFile("/srv/site")
	assert.Equal(t, "/srv/site/static/wsb/page.json", s.Path(""))
	assert.Equal(t, "page.json", NewFile("").Path("./page.json"))
}

func TestFileStoreErrors(t *testing.T) {
	dir := t.TempDir()
	s := NewFile(dir)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644))
	_, err := s.Load(ctx, "broken.json")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidDocument, errors.GetCode(err))

	_, err = s.Load(ctx, "../escape.json")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
}

func TestFileStoreStaysInBaseDir(t *testing.T) {
	outside := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep me"), 0o644))

	s := NewFile(t.TempDir())
	ctx := context.Background()
	for _, key := range []string{outside, "a/../../notes.txt", `..\notes.txt`} {
		_, err := s.Load(ctx, key)
		assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err), key)
		err = s.Save(ctx, key, page.New("P", "T"))
		assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err), key)
	}

	data, err := os.ReadFile(outside)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))
}

func TestMemoryStore(t *testing.T) {
	m := NewMemory()
	exercise(t, m, "page")

	before := m.Bytes("page")
	before[0] = 'x'
	assert.Equal(t, byte('{'), m.Bytes("page")[0], "Bytes returns a copy")

	m.Put("raw", []byte("[]"))
	_, err := m.Load(context.Background(), "raw")
	assert.Equal(t, errors.ErrCodeInvalidDocument, errors.GetCode(err))
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "db", "pages.db"))
	require.NoError(t, err)
	defer s.Close()

	exercise(t, s, "home")
	require.NoError(t, s.Save(context.Background(), "about", samplePage()))

	keys, err := s.Keys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"about", "home"}, keys)
}

func TestRedisKey(t *testing.T) {
	assert.Equal(t, "wsb:page:home", NewRedis(nil, "").Key("home"))
	assert.Equal(t, "site:home", NewRedis(nil, "site:").Key("home"))
	assert.NoError(t, NewRedis(nil, "").Close(), "borrowed clients are not closed")
}

func TestMongoDocument(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))
	doc := newPageDoc("home", []byte(`{"id":"P"}`), at)

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)

	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))
	assert.Equal(t, "home", m["_id"])
	assert.Equal(t, `{"id":"P"}`, m["body"])

	var back pageDoc
	require.NoError(t, bson.Unmarshal(raw, &back))
	assert.Equal(t, at.UTC(), back.UpdatedAt.UTC())
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{})
	require.NoError(t, err)
	assert.IsType(t, &File{}, s)

	s, err = Open(ctx, Options{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	_, err = Open(ctx, Options{Backend: "s3"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
}

type recordingHooks struct {
	observability.NoopStoreHooks
	mu    sync.Mutex
	loads []bool
	saves int
}

func (h *recordingHooks) OnLoad(_ context.Context, _, _ string, found bool, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loads = append(h.loads, found)
}

func (h *recordingHooks) OnSave(context.Context, string, string, int, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.saves++
}

func TestStoreHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetStoreHooks(hooks)
	defer observability.Reset()

	m := NewMemory()
	ctx := context.Background()
	_, _ = m.Load(ctx, "k")
	require.NoError(t, m.Save(ctx, "k", samplePage()))
	_, _ = m.Load(ctx, "k")

	assert.Equal(t, []bool{false, true}, hooks.loads)
	assert.Equal(t, 1, hooks.saves)
}
