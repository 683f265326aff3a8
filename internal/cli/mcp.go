package cli

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/kottinov/website-builder/pkg/buildinfo"
	"github.com/kottinov/website-builder/pkg/engine"
	"github.com/kottinov/website-builder/pkg/errors"
	"github.com/kottinov/website-builder/pkg/tools"
)

// mcpCommand serves the tools to an MCP client over stdio.
func (c *CLI) mcpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the page tools over MCP (stdio)",
		Long: `Run a Model Context Protocol server on stdin/stdout exposing every tool shown
by "wsb tools". Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEngine(cmd.Context(), func(eng *engine.Engine) error {
				s := c.newMCPServer(eng)
				c.Logger.Info("serving MCP on stdio", "page", c.pageKey(), "tools", len(tools.Definitions()))
				err := server.NewStdioServer(s).Listen(cmd.Context(), c.In, c.Out)
				if cmd.Context().Err() != nil {
					return nil
				}
				return err
			})
		},
	}
}

// newMCPServer registers every tool definition on a new MCP server.
func (c *CLI) newMCPServer(eng *engine.Engine) *server.MCPServer {
	s := server.NewMCPServer(
		appName,
		buildinfo.Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)
	for _, def := range tools.Definitions() {
		raw, err := json.Marshal(def.InputSchema)
		if err != nil {
			c.Logger.Warn("skip tool", "name", def.Name, "err", err)
			continue
		}
		s.AddTool(mcp.NewToolWithRawSchema(def.Name, def.Description, raw), c.mcpHandler(eng, def.Name))
	}
	return s
}

// mcpHandler calls the named tool. Tool failures are reported to the model
// as error results rather than protocol errors.
func (c *CLI) mcpHandler(eng *engine.Engine, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out, err := tools.Call(ctx, eng, name, c.toolDefaults(req.GetArguments()))
		if err != nil {
			c.Logger.Debug("tool failed", "name", name, "code", errors.GetCode(err), "err", err)
			return mcp.NewToolResultError(errors.UserMessage(err)), nil
		}
		data, err := json.Marshal(out)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode %s result", name)
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}
