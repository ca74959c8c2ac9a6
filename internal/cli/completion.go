package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

// completionCommand prints a completion script for the ordering commands
// and their --mode and --leaf selectors.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion <shell>",
		Short: "Print a shell completion script",
		Long: `Print a completion script covering the ndorder commands and the
values of --mode (sym, row, col) and --leaf.

Install it once per shell:

  bash        ndorder completion bash > ~/.local/share/bash-completion/completions/ndorder
  zsh         ndorder completion zsh > "${fpath[1]}/_ndorder"
  fish        ndorder completion fish > ~/.config/fish/completions/ndorder.fish
  powershell  ndorder completion powershell >> $PROFILE

or load it into the current session, e.g. source <(ndorder completion bash).`,
		DisableFlagsInUseLine: true,
		ValidArgs:             completionShells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, w := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(w, true)
			case "zsh":
				return root.GenZshCompletion(w)
			case "fish":
				return root.GenFishCompletion(w, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(w)
			}
			return fmt.Errorf("unsupported shell %q", args[0])
		},
	}
}
