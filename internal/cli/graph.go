package cli

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kottinov/website-builder/pkg/cache"
	"github.com/kottinov/website-builder/pkg/document"
	"github.com/kottinov/website-builder/pkg/engine"
	"github.com/kottinov/website-builder/pkg/errors"
	"github.com/kottinov/website-builder/pkg/outline"
)

// graphOpts holds the flags of the graph command.
type graphOpts struct {
	file     string
	svg      bool
	detailed bool
	noCache  bool
}

// graphCommand draws the component hierarchy as Graphviz DOT or SVG.
func (c *CLI) graphCommand() *cobra.Command {
	var opts graphOpts
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Draw the component hierarchy",
		Long: `Draw the page as a graph: solid edges for relIn parents, dashed edges for relTo
chains and red dotted edges for references to missing components.

DOT is written to stdout unless --file is given. A .svg file (or --svg) is
rendered with Graphviz.`,
		Example: `  wsb graph | dot -Tpng > page.png
  wsb graph --detailed -f outline.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.EqualFold(filepath.Ext(opts.file), ".svg") {
				opts.svg = true
			}
			var dot string
			err := c.withEngine(cmd.Context(), func(eng *engine.Engine) error {
				return eng.View(cmd.Context(), c.pageKey(), func(d *document.Document) error {
					dot = outline.ToDOT(d, outline.Options{Detailed: opts.detailed, Anchors: eng.Anchors()})
					return nil
				})
			})
			if err != nil {
				return err
			}

			data := []byte(dot)
			if opts.svg {
				if data, err = c.renderSVG(cmd, dot, !opts.noCache); err != nil {
					return err
				}
			}
			if opts.file == "" {
				_, err := c.Out.Write(data)
				return err
			}
			if err := os.WriteFile(opts.file, data, 0o644); err != nil {
				return errors.Wrap(errors.ErrCodeStorage, err, "write %s", opts.file)
			}
			printFile(c.Out, opts.file)
			if !opts.svg {
				printNextStep(c.Out, "Render it with Graphviz", "dot -Tsvg "+opts.file)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "write to this file instead of stdout")
	cmd.Flags().BoolVar(&opts.svg, "svg", false, "render SVG instead of DOT")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include geometry and relIn offsets in labels")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "render even when an identical outline was rendered before")
	return cmd
}

// svgTTL bounds how long a rendered outline is reused.
const svgTTL = 7 * 24 * time.Hour

// renderSVG renders dot, reusing an earlier rendering of identical DOT.
func (c *CLI) renderSVG(cmd *cobra.Command, dot string, useCache bool) ([]byte, error) {
	ctx := cmd.Context()
	rc := c.outlineCache(useCache)
	defer rc.Close()

	key := cache.Key("outline-svg", dot)
	if svg, ok, err := rc.Get(ctx, key); err != nil {
		c.Logger.Warn("read outline cache", "err", err)
	} else if ok {
		c.Logger.Debug("outline cache hit", "key", key)
		return svg, nil
	}

	spin := newSpinner(ctx, cmd.ErrOrStderr(), "Rendering outline...")
	spin.Start()
	svg, err := outline.RenderSVG(ctx, dot)
	if err != nil {
		spin.StopWithError("Rendering failed")
		return nil, err
	}
	spin.Stop()

	if err := rc.Set(ctx, key, svg, svgTTL); err != nil {
		c.Logger.Warn("write outline cache", "err", err)
	}
	return svg, nil
}

// outlineCache opens the per-user render cache, or a null cache when
// caching is off or unavailable.
func (c *CLI) outlineCache(enabled bool) cache.Cache {
	if !enabled {
		return cache.NewNull()
	}
	dir, err := cache.DefaultDir(appName)
	if err == nil {
		var fc *cache.FileCache
		if fc, err = cache.NewFileCache(filepath.Join(dir, "outline")); err == nil {
			return fc
		}
	}
	c.Logger.Debug("outline cache disabled", "err", err)
	return cache.NewNull()
}
