// Package cli implements the wsb command-line interface.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/kottinov/website-builder/pkg/buildinfo"
	"github.com/kottinov/website-builder/pkg/config"
	"github.com/kottinov/website-builder/pkg/engine"
	"github.com/kottinov/website-builder/pkg/errors"
	"github.com/kottinov/website-builder/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "wsb"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Out receives command results; tests swap it for a buffer.
	Out io.Writer
	// In is read by commands that accept a payload on stdin.
	In io.Reader

	flags globalFlags
	cfg   *config.Config

	// openStore overrides store.Open, for tests.
	openStore func(ctx context.Context, opts store.Options) (store.Store, error)
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string // explicit config file
	page       string // page key, overrides config
	backend    string // store backend, overrides config
	output     string // text, json or yaml
	format     string // concise or detailed, overrides config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:    newLogger(w, level),
		Out:       os.Stdout,
		In:        os.Stdin,
		openStore: store.Open,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "wsb edits WSB page documents",
		Long: `wsb creates, inspects, edits, reorders and removes the components of a WSB page:
a JSON document whose components are positioned relative to a parent (relIn) and
a preceding sibling (relTo). Every change is validated and applied atomically.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return c.loadConfig() },
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.configPath, "config", "", "config file (default ./wsb.toml)")
	pf.StringVarP(&c.flags.page, "page", "p", "", "page key or path (default from config)")
	pf.StringVar(&c.flags.backend, "store", "", "store backend: file, memory, sqlite, redis, mongo")
	pf.StringVarP(&c.flags.output, "output", "o", outputText, "output: text, json, yaml")
	pf.StringVar(&c.flags.format, "format", "", "response format: concise, detailed")

	// Register all subcommands
	root.AddCommand(c.listCommand())
	root.AddCommand(c.getCommand())
	root.AddCommand(c.findCommand())
	root.AddCommand(c.queryCommand())
	root.AddCommand(c.createCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.removeCommand())
	root.AddCommand(c.reorderCommand())
	root.AddCommand(c.batchCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.toolsCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.mcpCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config and Engine
// =============================================================================

// loadConfig reads the config file and applies the global flag overrides.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.flags.configPath)
	if err != nil {
		return err
	}
	if c.flags.page != "" {
		cfg.Page.Path = c.flags.page
	}
	if c.flags.backend != "" {
		cfg.Store.Backend = c.flags.backend
	}
	if c.flags.format != "" {
		cfg.Page.Verbosity = c.flags.format
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := errors.ValidateOneOf("output", c.flags.output, outputs...); err != nil {
		return err
	}
	if lvl, err := log.ParseLevel(cfg.Log.Level); err == nil && c.Logger.GetLevel() > lvl {
		c.Logger.SetLevel(lvl)
	}
	if cfg.Source != "" {
		c.Logger.Debug("loaded config", "file", cfg.Source)
	}
	c.cfg = cfg
	return nil
}

// settings returns the loaded config, or the defaults before PersistentPreRunE
// has run.
func (c *CLI) settings() *config.Config {
	if c.cfg == nil {
		return config.Default()
	}
	return c.cfg
}

// pageKey returns the page the command operates on.
func (c *CLI) pageKey() string {
	return c.settings().Page.Path
}

// verbosity returns the configured response format.
func (c *CLI) verbosity() engine.Verbosity {
	return c.settings().Verbosity()
}

// openEngine opens the configured store and wraps it in an engine. The
// returned close function releases the store.
func (c *CLI) openEngine(ctx context.Context) (*engine.Engine, func(), error) {
	cfg := c.settings()
	st, err := c.openStore(ctx, cfg.StoreOptions())
	if err != nil {
		return nil, nil, err
	}
	c.Logger.Debug("opened store", "backend", cfg.Store.Backend, "page", cfg.Page.Path)
	eng := engine.New(st, c.Logger, cfg.EngineOptions()...)
	return eng, func() {
		if err := st.Close(); err != nil {
			c.Logger.Warn("close store", "err", err)
		}
	}, nil
}

// withEngine runs fn with an open engine and closes the store afterwards.
func (c *CLI) withEngine(ctx context.Context, fn func(*engine.Engine) error) error {
	eng, closeFn, err := c.openEngine(ctx)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(eng)
}
