package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kottinov/website-builder/pkg/document"
	"github.com/kottinov/website-builder/pkg/engine"
	"github.com/kottinov/website-builder/pkg/errors"
	"github.com/kottinov/website-builder/pkg/page"
)

// listCommand lists every component as concise rows.
func (c *CLI) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List every component on the page",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEngine(cmd.Context(), func(eng *engine.Engine) error {
				rows, err := eng.List(cmd.Context(), c.pageKey())
				if err != nil {
					return err
				}
				return c.emit(rows, func(w io.Writer) { printSummaries(w, rows) })
			})
		},
	}
}

// getCommand prints one component.
func (c *CLI) getCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one component",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEngine(cmd.Context(), func(eng *engine.Engine) error {
				comp, err := eng.Get(cmd.Context(), c.pageKey(), args[0])
				if err != nil {
					return err
				}
				if comp == nil {
					return errors.New(errors.ErrCodeNotFound, "component %s not found (run `wsb list` to see existing ids)", args[0])
				}
				view := engine.View(comp, c.verbosity())
				return c.emit(view, func(w io.Writer) { printComponent(w, comp, view) })
			})
		},
	}
}

// printComponent prints a component as key/value lines, or as indented JSON
// for the detailed view.
func printComponent(w io.Writer, comp *page.Component, view any) {
	s, ok := view.(document.Summary)
	if !ok {
		_ = writeJSON(w, comp)
		return
	}
	printKeyValue(w, "id", s.ID)
	printKeyValue(w, "kind", s.Kind)
	printKeyValue(w, "orderIndex", fmt.Sprint(s.OrderIndex))
	printKeyValue(w, "parentId", deref(s.ParentID, "-"))
	printKeyValue(w, "title", deref(s.Title, "-"))
}

// findCommand searches component text.
func (c *CLI) findCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "find <text>",
		Short: "Find components whose text, content, title or name contains text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := strings.Join(args, " ")
			return c.withEngine(cmd.Context(), func(eng *engine.Engine) error {
				matches, err := eng.Find(cmd.Context(), c.pageKey(), q)
				if err != nil {
					return err
				}
				return c.emit(matches, func(w io.Writer) {
					if len(matches) == 0 {
						printInfo(w, "nothing matches %q", q)
						return
					}
					for _, m := range matches {
						printInfo(w, "%s %s %s", m.ID, styleKind.Render(m.Kind), StyleDim.Render("("+m.MatchField+")"))
					}
				})
			})
		},
	}
}

// queryOpts holds the filters of the query command.
type queryOpts struct {
	ids      []string // exact ids
	parentID string   // children of this parent
	topLevel bool     // components without a parent
	kinds    []string // component kinds
	text     string   // substring of text, content, title or name
	fields   []string // projection
}

// queryCommand filters components.
func (c *CLI) queryCommand() *cobra.Command {
	var opts queryOpts
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Select components by id, parent, kind or text",
		Long: `Select components with filters combined with AND.

--fields projects each result to the named fields and overrides --format.`,
		Example: `  wsb query --top-level --kinds SECTION
  wsb query --parent 6F1C... --fields id,kind,top`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := document.Filter{
				IDs:          opts.ids,
				ParentID:     opts.parentID,
				TopLevel:     opts.topLevel,
				Kinds:        opts.kinds,
				TextContains: opts.text,
			}
			return c.withEngine(cmd.Context(), func(eng *engine.Engine) error {
				found, err := eng.Query(cmd.Context(), c.pageKey(), f)
				if err != nil {
					return err
				}
				out := make([]any, len(found))
				rows := make([]document.Summary, len(found))
				for i, comp := range found {
					rows[i] = document.Summarize(comp)
					if len(opts.fields) > 0 {
						out[i] = document.Project(comp, opts.fields)
					} else {
						out[i] = engine.View(comp, c.verbosity())
					}
				}
				var text func(io.Writer)
				if len(opts.fields) == 0 && c.verbosity() == engine.Concise {
					text = func(w io.Writer) { printSummaries(w, rows) }
				}
				return c.emit(out, text)
			})
		},
	}

	cmd.Flags().StringSliceVar(&opts.ids, "ids", nil, "component ids (comma-separated)")
	cmd.Flags().StringVar(&opts.parentID, "parent", "", "children of this parent id")
	cmd.Flags().BoolVar(&opts.topLevel, "top-level", false, "only components without a parent")
	cmd.Flags().StringSliceVar(&opts.kinds, "kinds", nil, "component kinds (comma-separated)")
	cmd.Flags().StringVar(&opts.text, "text", "", "text contained in text, content, title or name")
	cmd.Flags().StringSliceVar(&opts.fields, "fields", nil, "fields to output (comma-separated)")
	cmd.MarkFlagsMutuallyExclusive("parent", "top-level")
	return cmd
}

// checkCommand validates every page invariant.
func (c *CLI) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check the page against every structural invariant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := c.pageKey()
			return c.withEngine(cmd.Context(), func(eng *engine.Engine) error {
				vs, err := eng.Check(cmd.Context(), key)
				if err != nil {
					return err
				}
				if vs == nil {
					vs = []document.Violation{}
				}
				if err := c.emit(vs, func(w io.Writer) { printViolations(w, key, vs) }); err != nil {
					return err
				}
				if len(vs) > 0 {
					return errors.New(errors.ErrCodeInvalidDocument, "%s breaks %d invariant(s)", key, len(vs))
				}
				return nil
			})
		},
	}
}
