package cli

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/kottinov/website-builder/pkg/engine"
	"github.com/kottinov/website-builder/pkg/errors"
	"github.com/kottinov/website-builder/pkg/store"
	"github.com/kottinov/website-builder/pkg/watch"
)

// watchCommand re-checks the page every time its file changes.
func (c *CLI) watchCommand() *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-check the page whenever its file changes",
		Long: `Watch the page file and run every structural check after each change. Only the
file store can be watched. Stop with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEngine(cmd.Context(), func(eng *engine.Engine) error {
				w, err := c.newWatcher(debounce)
				if err != nil {
					return err
				}
				printInfo(c.Out, "Watching %s", StyleValue.Render(w.Path()))
				return w.Run(cmd.Context(), c.checkOnChange(eng, c.Out))
			})
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before a change is checked")
	return cmd
}

// newWatcher watches the file behind the configured page.
func (c *CLI) newWatcher(debounce time.Duration) (*watch.Watcher, error) {
	cfg := c.settings()
	if cfg.Store.Backend != store.BackendFile && cfg.Store.Backend != "" {
		return nil, errors.New(errors.ErrCodeUnsupported, "only the file store can be watched (store is %q)", cfg.Store.Backend)
	}
	path := store.NewFile(cfg.Store.BaseDir).Path(c.pageKey())
	return watch.New(path, c.Logger, watch.WithDebounce(debounce))
}

// checkOnChange returns a handler that checks the page and reports to w.
func (c *CLI) checkOnChange(eng *engine.Engine, w io.Writer) watch.Handler {
	key := c.pageKey()
	return func(ctx context.Context, ev watch.Event) {
		if ev.Op == watch.OpRemove {
			printWarning(w, "%s was removed", key)
			return
		}
		vs, err := eng.Check(ctx, key)
		switch {
		case err != nil:
			printError(w, "%s: %s", key, errors.UserMessage(err))
		case len(vs) == 0:
			printSuccess(w, "%s %s", key, StyleDim.Render("("+ev.At.Format(time.TimeOnly)+")"))
		default:
			printViolations(w, key, vs)
		}
	}
}
