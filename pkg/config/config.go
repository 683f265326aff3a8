// Package config loads wsb settings from a config file, a .env file and
// WSB_* environment variables, in increasing order of precedence.
//
// Config files are TOML by default; a .yaml or .yml extension selects YAML.
// Without an explicit path, Load looks for wsb.toml in the working directory
// and then for wsb/config.toml under the user config directory. A missing
// file is not an error: defaults apply.
//
//	[page]
//	path = "static/wsb/page.json"
//	default_gap = 24
//
//	[store]
//	backend = "sqlite"
//	sqlite_path = ".wsb/pages.db"
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kottinov/website-builder/pkg/engine"
	"github.com/kottinov/website-builder/pkg/errors"
	"github.com/kottinov/website-builder/pkg/layout"
	"github.com/kottinov/website-builder/pkg/page"
	"github.com/kottinov/website-builder/pkg/store"
)

// FileName is the config file looked up in the working directory.
const FileName = "wsb.toml"

// Config is the complete set of wsb settings.
type Config struct {
	Page   Page   `toml:"page" yaml:"page"`
	Store  Store  `toml:"store" yaml:"store"`
	Server Server `toml:"server" yaml:"server"`
	Log    Log    `toml:"log" yaml:"log"`

	// Source is the config file that was read, empty when none was found.
	Source string `toml:"-" yaml:"-"`
}

// Page holds page and engine defaults.
type Page struct {
	Path       string `toml:"path" yaml:"path"`
	TemplateID string `toml:"template_id" yaml:"template_id"`

	// AnchorID is the relTo target of a page's first section. Anchors are
	// further ids relTo may name without existing on the page.
	AnchorID string   `toml:"anchor_id" yaml:"anchor_id"`
	Anchors  []string `toml:"anchors" yaml:"anchors"`

	DefaultGap int    `toml:"default_gap" yaml:"default_gap"`
	Verbosity  string `toml:"verbosity" yaml:"verbosity"`
}

// Store selects the persistence backend.
type Store struct {
	Backend         string `toml:"backend" yaml:"backend"`
	BaseDir         string `toml:"base_dir" yaml:"base_dir"`
	SQLitePath      string `toml:"sqlite_path" yaml:"sqlite_path"`
	RedisURL        string `toml:"redis_url" yaml:"redis_url"`
	RedisPrefix     string `toml:"redis_prefix" yaml:"redis_prefix"`
	MongoURI        string `toml:"mongo_uri" yaml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database" yaml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection" yaml:"mongo_collection"`
}

// Server configures wsb serve.
type Server struct {
	Listen          string        `toml:"listen" yaml:"listen"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" yaml:"shutdown_timeout"`
	Watch           bool          `toml:"watch" yaml:"watch"`
}

// Log configures logging.
type Log struct {
	Level string `toml:"level" yaml:"level"`
}

// Log levels accepted in config.
var Levels = []string{"debug", "info", "warn", "error"}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Page: Page{
			Path:       page.DefaultPath,
			AnchorID:   layout.AnchorID,
			DefaultGap: layout.DefaultGap,
			Verbosity:  string(engine.Concise),
		},
		Store: Store{Backend: store.BackendFile},
		Server: Server{
			Listen:          "127.0.0.1:8787",
			ShutdownTimeout: 5 * time.Second,
		},
		Log: Log{Level: "info"},
	}
}

// Load reads the config file at path (or the first default location that
// exists when path is empty), loads .env from the working directory,
// applies WSB_* overrides and validates the result.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read .env")
	}

	cfg := Default()
	if path == "" {
		path = findFile()
	}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
		cfg.Source = path
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findFile() string {
	candidates := []string{FileName}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "wsb", "config.toml"))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		_, err = toml.Decode(string(data), c)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	return nil
}

// applyEnv overlays WSB_* variables read through lookup.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"WSB_PAGE":          &c.Page.Path,
		"WSB_TEMPLATE_ID":   &c.Page.TemplateID,
		"WSB_ANCHOR_ID":     &c.Page.AnchorID,
		"WSB_VERBOSITY":     &c.Page.Verbosity,
		"WSB_STORE":         &c.Store.Backend,
		"WSB_BASE_DIR":      &c.Store.BaseDir,
		"WSB_SQLITE_PATH":   &c.Store.SQLitePath,
		"WSB_REDIS_URL":     &c.Store.RedisURL,
		"WSB_REDIS_PREFIX":  &c.Store.RedisPrefix,
		"WSB_MONGO_URI":     &c.Store.MongoURI,
		"WSB_MONGO_DB":      &c.Store.MongoDatabase,
		"WSB_LISTEN":        &c.Server.Listen,
		"WSB_LOG_LEVEL":     &c.Log.Level,
	}
	for name, dst := range strs {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	if v, ok := lookup("WSB_ANCHORS"); ok && v != "" {
		c.Page.Anchors = splitList(v)
	}
	if v, ok := lookup("WSB_DEFAULT_GAP"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "WSB_DEFAULT_GAP must be an integer")
		}
		c.Page.DefaultGap = n
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks every setting and reports the first problem as an
// INVALID_CONFIG error.
func (c *Config) Validate() error {
	checks := []func() error{
		func() error { return errors.ValidatePagePath(c.Page.Path) },
		func() error { return errors.ValidateID("page.anchor_id", c.Page.AnchorID) },
		func() error {
			for _, a := range c.Page.Anchors {
				if err := errors.ValidateID("page.anchors", a); err != nil {
					return err
				}
			}
			return nil
		},
		func() error {
			if c.Page.DefaultGap < 0 {
				return errors.New(errors.ErrCodeInvalidInput, "page.default_gap cannot be negative")
			}
			return nil
		},
		func() error { _, err := engine.ParseVerbosity(c.Page.Verbosity); return err },
		func() error { return errors.ValidateOneOf("store.backend", c.Store.Backend, store.Backends...) },
		func() error { return errors.ValidateOneOf("log.level", strings.ToLower(c.Log.Level), Levels...) },
		func() error {
			if c.Server.ShutdownTimeout < 0 {
				return errors.New(errors.ErrCodeInvalidInput, "server.shutdown_timeout cannot be negative")
			}
			return nil
		},
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid config")
		}
	}
	return nil
}

// StoreOptions converts the store settings for [store.Open].
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Backend:         c.Store.Backend,
		BaseDir:         c.Store.BaseDir,
		SQLitePath:      c.Store.SQLitePath,
		RedisURL:        c.Store.RedisURL,
		RedisPrefix:     c.Store.RedisPrefix,
		MongoURI:        c.Store.MongoURI,
		MongoDatabase:   c.Store.MongoDatabase,
		MongoCollection: c.Store.MongoCollection,
	}
}

// EngineOptions converts the page settings into engine options.
func (c *Config) EngineOptions() []engine.Option {
	return []engine.Option{
		engine.WithAnchors(c.AllAnchors()...),
		engine.WithTemplateID(c.Page.TemplateID),
		engine.WithDefaultGap(c.Page.DefaultGap),
	}
}

// AllAnchors returns the anchor id followed by the extra anchors.
func (c *Config) AllAnchors() []string {
	return append([]string{c.Page.AnchorID}, c.Page.Anchors...)
}

// Verbosity returns the configured default response format.
func (c *Config) Verbosity() engine.Verbosity {
	v, err := engine.ParseVerbosity(c.Page.Verbosity)
	if err != nil {
		return engine.Concise
	}
	return v
}
