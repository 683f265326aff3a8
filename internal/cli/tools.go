package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/kottinov/website-builder/pkg/engine"
	"github.com/kottinov/website-builder/pkg/errors"
	"github.com/kottinov/website-builder/pkg/schema"
	"github.com/kottinov/website-builder/pkg/tools"
)

// toolsCommand lists the tool definitions and calls tools by name.
func (c *CLI) toolsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools [name]",
		Short: "Show the tool definitions exposed to models",
		Long: `Show the tool definitions served over MCP and HTTP. With a name, the full
input schema of that tool is printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				def, ok := tools.Lookup(args[0])
				if !ok {
					return errors.New(errors.ErrCodeNotFound, "unknown tool %q (run `wsb tools` to list them)", args[0])
				}
				return c.emit(def, nil)
			}
			defs := tools.Definitions()
			return c.emit(defs, func(w io.Writer) {
				for _, d := range defs {
					printInfo(w, "%s", styleCommand.Render(d.Name))
					printDetail(w, "%s", truncate(firstLine(d.Description), 90))
				}
			})
		},
	}
	cmd.AddCommand(c.toolCallCommand())
	return cmd
}

// toolCallCommand invokes one tool with a JSON argument object.
func (c *CLI) toolCallCommand() *cobra.Command {
	var payload payloadFlags
	cmd := &cobra.Command{
		Use:     "call <name>",
		Short:   "Call a tool with JSON arguments",
		Example: `  wsb tools call find_components --json '{"query": "pricing"}'`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := tools.Lookup(args[0]); !ok {
				return errors.New(errors.ErrCodeNotFound, "unknown tool %q", args[0])
			}
			toolArgs := map[string]any{}
			if payload.inline != "" || payload.file != "" {
				m, err := payload.readObject(c.In)
				if err != nil {
					return err
				}
				toolArgs = m
			}
			return c.withEngine(cmd.Context(), func(eng *engine.Engine) error {
				out, err := tools.Call(cmd.Context(), eng, args[0], c.toolDefaults(toolArgs))
				if err != nil {
					return err
				}
				if c.flags.output == outputYAML {
					return writeYAML(c.Out, out)
				}
				return writeJSON(c.Out, out)
			})
		},
	}
	payload.register(cmd)
	return cmd
}

// toolDefaults fills file_path and response_format from the config when the
// caller left them out.
func (c *CLI) toolDefaults(args map[string]any) map[string]any {
	if args == nil {
		args = map[string]any{}
	}
	if _, ok := args[schema.KeyFilePath]; !ok {
		args[schema.KeyFilePath] = c.pageKey()
	}
	if _, ok := args[schema.KeyResponseFormat]; !ok {
		args[schema.KeyResponseFormat] = string(c.verbosity())
	}
	return args
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
