package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kottinov/website-builder/pkg/engine"
	"github.com/kottinov/website-builder/pkg/errors"
	"github.com/kottinov/website-builder/pkg/schema"
)

// createCommand creates one component from a payload.
func (c *CLI) createCommand() *cobra.Command {
	var payload payloadFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a component",
		Long: `Create one component from a JSON or YAML payload.

SECTIONs are top-level and chain below the previous section. Other kinds need
parent_id (or relIn.id) naming an existing component. Give absolute left, top,
width and height; relIn offsets are derived.`,
		Example: `  wsb create --json '{"kind": "SECTION", "left": 0, "top": 0, "width": 1300, "height": 600}'
  wsb create -f hero-title.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := payload.readObject(c.In)
			if err != nil {
				return err
			}
			return c.withEngine(cmd.Context(), func(eng *engine.Engine) error {
				comp, err := eng.Create(cmd.Context(), c.pageKey(), m)
				if err != nil {
					return err
				}
				return c.emit(engine.View(comp, c.verbosity()), func(w io.Writer) {
					printSuccess(w, "Created %s %s", styleKind.Render(comp.Kind), comp.ID)
					if pid := comp.ParentID(); pid != "" {
						printDetail(w, "in %s at order %d", pid, comp.OrderIndex)
					}
				})
			})
		},
	}
	payload.register(cmd)
	return cmd
}

// editCommand changes fields of an existing component.
func (c *CLI) editCommand() *cobra.Command {
	var payload payloadFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a component",
		Long: `Change fields of an existing component. Only the fields in the payload change;
null clears a field.`,
		Example: `  wsb edit 6F1C... --json '{"text": "Pricing", "style": {"font-weight": 700}}'`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := payload.readObject(c.In)
			if err != nil {
				return err
			}
			if other, ok := m[schema.KeyComponentID].(string); ok && other != args[0] {
				return errors.New(errors.ErrCodeInvalidInput, "payload component_id %q does not match %q", other, args[0])
			}
			m[schema.KeyComponentID] = args[0]

			return c.withEngine(cmd.Context(), func(eng *engine.Engine) error {
				comp, err := eng.Edit(cmd.Context(), c.pageKey(), m)
				if err != nil {
					return err
				}
				if comp == nil {
					return errors.New(errors.ErrCodeNotFound, "component %s not found", args[0])
				}
				return c.emit(engine.View(comp, c.verbosity()), func(w io.Writer) {
					printSuccess(w, "Updated %s %s", styleKind.Render(comp.Kind), comp.ID)
				})
			})
		},
	}
	payload.register(cmd)
	return cmd
}

// removeCommand removes a component and its descendants.
func (c *CLI) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a component and everything nested under it",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return c.withEngine(cmd.Context(), func(eng *engine.Engine) error {
				removed, err := eng.Remove(cmd.Context(), c.pageKey(), id)
				if err != nil {
					return err
				}
				res := engine.Result{Op: engine.OpRemove, ID: id, Removed: removed}
				return c.emit(res.Render(c.verbosity()), func(w io.Writer) {
					if removed {
						printSuccess(w, "Removed %s", id)
					} else {
						printWarning(w, "%s was not on the page; nothing removed", id)
					}
				})
			})
		},
	}
}

// reorderCommand reorders the children of a parent.
func (c *CLI) reorderCommand() *cobra.Command {
	var parentID string
	cmd := &cobra.Command{
		Use:   "reorder <id>...",
		Short: "Reorder the children of a parent",
		Long: `Put the listed components first, in the given order. Siblings that are not
listed keep their relative order after them. Without --parent the top-level
components (sections) are reordered.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEngine(cmd.Context(), func(eng *engine.Engine) error {
				group, err := eng.Reorder(cmd.Context(), c.pageKey(), parentID, args)
				if err != nil {
					return err
				}
				res := engine.Result{Op: engine.OpReorder, ParentID: parentID, Components: group}
				return c.emit(res.Render(c.verbosity()), func(w io.Writer) {
					printSuccess(w, "Reordered %d component(s)", len(group))
					for _, comp := range group {
						printDetail(w, "%d  %s %s", comp.OrderIndex, comp.Kind, comp.ID)
					}
				})
			})
		},
	}
	cmd.Flags().StringVar(&parentID, "parent", "", "parent id (default: top level)")
	return cmd
}

// batchCommand applies a list of operations atomically.
func (c *CLI) batchCommand() *cobra.Command {
	var (
		payload payloadFlags
		dryRun  bool
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Apply create, edit, remove and reorder operations atomically",
		Long: `Apply a list of operations as one all-or-nothing batch. The payload is either an
array of operations or an object with an "operations" array:

  [{"op": "create", "alias": "hero", "payload": {"kind": "SECTION", ...}},
   {"op": "create", "payload": {"kind": "TEXT", "parent_id": "hero", ...}},
   {"op": "reorder", "parent_id": "hero", "order_ids": [...]}]

If any operation fails nothing is saved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := payload.read(c.In)
			if err != nil {
				return err
			}
			raw, err := operationList(v)
			if err != nil {
				return err
			}
			ops, err := engine.ParseOperations(raw)
			if err != nil {
				return err
			}
			if dryRun {
				return c.emit(ops, func(w io.Writer) {
					printSuccess(w, "%d operation(s) parsed", len(ops))
					for i, op := range ops {
						printDetail(w, "%d  %s %s", i, op.Type, op.Alias)
					}
				})
			}

			prog := newProgress(c.Logger)
			return c.withEngine(cmd.Context(), func(eng *engine.Engine) error {
				results, err := eng.Batch(cmd.Context(), c.pageKey(), ops)
				if err != nil {
					return err
				}
				prog.done(fmt.Sprintf("Applied %d operation(s) to %s", len(results), c.pageKey()))
				return c.emit(engine.RenderAll(results, c.verbosity()), func(w io.Writer) {
					for _, r := range results {
						printResult(w, r)
					}
				})
			})
		},
	}
	payload.register(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and print the operations without applying them")
	return cmd
}

func operationList(v any) ([]any, error) {
	switch v := v.(type) {
	case []any:
		return v, nil
	case map[string]any:
		if ops, ok := v["operations"].([]any); ok {
			return ops, nil
		}
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, `payload must be an array of operations or {"operations": [...]}`)
}

func printResult(w io.Writer, r engine.Result) {
	switch r.Op {
	case engine.OpRemove:
		if r.Removed {
			printSuccess(w, "remove  %s", r.ID)
		} else {
			printWarning(w, "remove  %s (not found)", r.ID)
		}
	case engine.OpReorder:
		printSuccess(w, "reorder %d component(s)", len(r.Components))
	default:
		comp := r.Component()
		if comp == nil {
			printSuccess(w, "%-7s %s", strings.ToLower(string(r.Op)), r.ID)
			return
		}
		printSuccess(w, "%-7s %s %s", strings.ToLower(string(r.Op)), styleKind.Render(comp.Kind), comp.ID)
	}
}
