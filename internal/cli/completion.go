package cli

import (
	"github.com/spf13/cobra"

	"github.com/kottinov/website-builder/pkg/errors"
)

// completionCommand generates shell completion scripts.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for wsb.

Bash:
  $ source <(wsb completion bash)
  $ wsb completion bash > /etc/bash_completion.d/wsb

Zsh (with compinit enabled):
  $ wsb completion zsh > "${fpath[1]}/_wsb"

Fish:
  $ wsb completion fish > ~/.config/fish/completions/wsb.fish

PowerShell:
  PS> wsb completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		// Completion must work without a readable config.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(c.Out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(c.Out)
			case "fish":
				return cmd.Root().GenFishCompletion(c.Out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(c.Out)
			}
			return errors.New(errors.ErrCodeInvalidInput, "unsupported shell %q", args[0])
		},
	}
}
