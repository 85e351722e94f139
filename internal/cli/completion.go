package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/archboard/pkg/persist"
	"github.com/matzehuels/archboard/pkg/store"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for archboard.

To load completions:

Bash:
  $ source <(archboard completion bash)

Zsh:
  $ archboard completion zsh > "${fpath[1]}/_archboard"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ archboard completion fish > ~/.config/fish/completions/archboard.fish

PowerShell:
  PS> archboard completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		// completion must work without a readable config
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			out := c.Out
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

func completeFormats(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	names := make([]string, len(persist.Formats))
	for i, f := range persist.Formats {
		names[i] = string(f)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func completeBackends(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return store.Backends, cobra.ShellCompDirectiveNoFileComp
}
