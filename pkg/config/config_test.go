package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kottinov/website-builder/pkg/engine"
	"github.com/kottinov/website-builder/pkg/errors"
	"github.com/kottinov/website-builder/pkg/store"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// isolate runs the test in an empty working directory with no WSB_* values
// and a config dir that holds nothing.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("HOME", dir)
	for _, name := range []string{
		"WSB_PAGE", "WSB_STORE", "WSB_LOG_LEVEL", "WSB_DEFAULT_GAP",
		"WSB_ANCHORS", "WSB_REDIS_URL", "WSB_VERBOSITY",
	} {
		t.Setenv(name, "")
	}
	return dir
}

func TestDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Source)
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, store.BackendFile, cfg.StoreOptions().Backend)
	assert.Equal(t, engine.Concise, cfg.Verbosity())
}

func TestLoadTOML(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, FileName, `
[page]
path = "site/home.json"
anchors = ["FOOTER-ANCHOR"]
default_gap = 32
verbosity = "detailed"

[store]
backend = "sqlite"
sqlite_path = "pages.db"

[server]
listen = ":9000"
shutdown_timeout = "2s"
`)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, FileName, cfg.Source)
	assert.Equal(t, "site/home.json", cfg.Page.Path)
	assert.Equal(t, 32, cfg.Page.DefaultGap)
	assert.Equal(t, engine.Detailed, cfg.Verbosity())
	assert.Equal(t, []string{Default().Page.AnchorID, "FOOTER-ANCHOR"}, cfg.AllAnchors())
	assert.Equal(t, ":9000", cfg.Server.Listen)
	assert.Equal(t, 2*time.Second, cfg.Server.ShutdownTimeout)

	opts := cfg.StoreOptions()
	assert.Equal(t, store.BackendSQLite, opts.Backend)
	assert.Equal(t, "pages.db", opts.SQLitePath)
	assert.Len(t, cfg.EngineOptions(), 3)
}

func TestLoadYAML(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "wsb.yaml", `
page:
  path: landing.json
store:
  backend: redis
  redis_url: redis://localhost:6379/2
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "landing.json", cfg.Page.Path)
	assert.Equal(t, store.BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "redis://localhost:6379/2", cfg.Store.RedisURL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestEnvOverrides(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, FileName, "[store]\nbackend = \"sqlite\"\n")
	writeFile(t, dir, ".env", "WSB_LOG_LEVEL=warn\n")
	require.NoError(t, os.Unsetenv("WSB_LOG_LEVEL"))
	t.Setenv("WSB_STORE", "memory")
	t.Setenv("WSB_DEFAULT_GAP", "8")
	t.Setenv("WSB_ANCHORS", " A1 , ,B2")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, store.BackendMemory, cfg.Store.Backend, "env wins over file")
	assert.Equal(t, 8, cfg.Page.DefaultGap)
	assert.Equal(t, []string{"A1", "B2"}, cfg.Page.Anchors)
	assert.Equal(t, "warn", cfg.Log.Level, "read from .env")
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
		env  map[string]string
	}{
		{name: "bad toml", file: FileName, body: "[page\n"},
		{name: "unknown backend", file: FileName, body: "[store]\nbackend = \"s3\"\n"},
		{name: "negative gap", file: FileName, body: "[page]\ndefault_gap = -4\n"},
		{name: "bad verbosity", file: FileName, body: "[page]\nverbosity = \"loud\"\n"},
		{name: "path traversal", file: FileName, body: "[page]\npath = \"../outside.json\"\n"},
		{name: "bad log level", file: "wsb.yml", body: "log:\n  level: trace\n"},
		{name: "gap not a number", env: map[string]string{"WSB_DEFAULT_GAP": "wide"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			path := ""
			if tt.file != "" {
				path = writeFile(t, dir, tt.file, tt.body)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(path)
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeInvalidConfig, errors.GetCode(err))
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "nope.toml"))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))
}
