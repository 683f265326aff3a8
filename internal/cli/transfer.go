package cli

import (
	"bytes"

	"github.com/spf13/cobra"

	"github.com/kottinov/website-builder/pkg/document"
	"github.com/kottinov/website-builder/pkg/engine"
	"github.com/kottinov/website-builder/pkg/errors"
	"github.com/kottinov/website-builder/pkg/page"
)

// exportCommand copies the page out of the configured store.
func (c *CLI) exportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write the page document to a file or stdout",
		Long: `Write the stored page document, byte for byte, to a file or to stdout. Together
with import this moves a page between stores.`,
		Example: `  wsb export --store redis - | wsb import --store file -`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEngine(cmd.Context(), func(eng *engine.Engine) error {
				p, err := eng.Page(cmd.Context(), c.pageKey())
				if err != nil {
					return err
				}
				if len(args) == 0 || args[0] == "-" {
					return page.WriteJSON(p, c.Out)
				}
				if err := page.ExportJSON(p, args[0]); err != nil {
					return errors.Wrap(errors.ErrCodeStorage, err, "export page")
				}
				printSuccess(c.Out, "Exported %d component(s)", len(p.Items))
				printFile(c.Out, args[0])
				return nil
			})
		},
	}
}

// importCommand replaces the stored page with a document from a file.
func (c *CLI) importCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the page with a document from a file or stdin",
		Long: `Replace the stored page with the document in file ("-" reads stdin). The
document is checked first; a page that breaks an invariant is refused unless
--force is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				p   *page.Page
				err error
			)
			if args[0] == "-" {
				p, err = page.ReadJSON(c.In)
			} else {
				p, err = page.ImportJSON(args[0])
			}
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidDocument, err, "read %s", args[0])
			}

			cfg := c.settings()
			if vs := document.New(p).Check(cfg.AllAnchors()...); len(vs) > 0 {
				var buf bytes.Buffer
				printViolations(&buf, args[0], vs)
				if !force {
					_, _ = c.Out.Write(buf.Bytes())
					return errors.New(errors.ErrCodeInvalidDocument, "%s breaks %d invariant(s); use --force to import anyway", args[0], len(vs))
				}
				c.Logger.Warn("importing a page that breaks invariants", "violations", len(vs))
			}

			st, err := c.openStore(cmd.Context(), cfg.StoreOptions())
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Save(cmd.Context(), c.pageKey(), p); err != nil {
				return err
			}
			printSuccess(c.Out, "Imported %d component(s) into %s", len(p.Items), c.pageKey())
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "import even if the page breaks invariants")
	return cmd
}
