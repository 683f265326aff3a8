package cli

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kottinov/website-builder/internal/server"
	"github.com/kottinov/website-builder/pkg/engine"
	"github.com/kottinov/website-builder/pkg/watch"
)

// serveOpts holds the flags of the serve command.
type serveOpts struct {
	listen string
	watch  bool
}

// serveCommand runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the page operations over HTTP",
		Long: `Serve the page operations as a JSON HTTP API until interrupted.

With --watch (or server.watch in the config) the page file is also watched and
re-checked after every outside change.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.settings()
			if opts.listen != "" {
				cfg.Server.Listen = opts.listen
			}
			watching := opts.watch || cfg.Server.Watch

			return c.withEngine(cmd.Context(), func(eng *engine.Engine) error {
				srv := server.New(eng, c.Logger, server.Options{
					Addr:            cfg.Server.Listen,
					Page:            cfg.Page.Path,
					Anchors:         eng.Anchors(),
					Verbosity:       cfg.Verbosity(),
					ShutdownTimeout: cfg.Server.ShutdownTimeout,
				})

				var w *watch.Watcher
				if watching {
					var err error
					if w, err = c.newWatcher(watch.DefaultDebounce); err != nil {
						return err
					}
				}

				g, ctx := errgroup.WithContext(cmd.Context())
				g.Go(func() error { return srv.Run(ctx) })
				if w != nil {
					g.Go(func() error { return w.Run(ctx, c.checkOnChange(eng, c.Out)) })
					printInfo(c.Out, "Watching %s", StyleValue.Render(w.Path()))
				}

				printSuccess(c.Out, "Serving %s on %s", cfg.Page.Path, StyleHighlight.Render("http://"+cfg.Server.Listen))
				printNextStep(c.Out, "List components", "curl http://"+cfg.Server.Listen+"/components")
				if err := g.Wait(); err != nil {
					return err
				}
				c.Logger.Info("server stopped")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&opts.listen, "listen", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "re-check the page file on outside changes")
	return cmd
}
