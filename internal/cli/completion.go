package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilupskalvis/vimlantis/internal/config"
	"github.com/kilupskalvis/vimlantis/internal/models"
	"github.com/kilupskalvis/vimlantis/internal/tree"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion script for vimlantis.

Besides commands and flags, the scripts complete project paths: files for
"vimlantis open" and directories for "vimlantis layout --path".

To load completions:

Bash:
  $ source <(vimlantis completion bash)

Zsh:
  $ vimlantis completion zsh > "${fpath[1]}/_vimlantis"

Fish:
  $ vimlantis completion fish > ~/.config/fish/completions/vimlantis.fish

PowerShell:
  PS> vimlantis completion powershell | Out-String | Invoke-Expression
`,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	DisableFlagsInUseLine: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeCompletion(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)

	completeFile := func(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return completeProjectPaths(toComplete, false), cobra.ShellCompDirectiveNoFileComp
	}
	openCmd.ValidArgsFunction = completeFile
	showCmd.ValidArgsFunction = completeFile

	completeDir := func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return completeProjectPaths(toComplete, true), cobra.ShellCompDirectiveNoFileComp
	}
	_ = layoutCmd.RegisterFlagCompletionFunc("path", completeDir)
	_ = sailCmd.RegisterFlagCompletionFunc("path", completeDir)
}

func writeCompletion(w io.Writer, shell string) error {
	switch shell {
	case "bash":
		return rootCmd.GenBashCompletionV2(w, true)
	case "zsh":
		return rootCmd.GenZshCompletion(w)
	case "fish":
		return rootCmd.GenFishCompletion(w, true)
	case "powershell":
		return rootCmd.GenPowerShellCompletionWithDesc(w)
	default:
		return fmt.Errorf("unsupported shell %q", shell)
	}
}

// completeProjectPaths lists tree paths of the working directory that start
// with prefix, honoring the configured ignore list.
func completeProjectPaths(prefix string, dirsOnly bool) []string {
	wd, err := os.Getwd()
	if err != nil {
		return nil
	}
	cfg, err := config.Discover(wd)
	if err != nil {
		cfg = config.Default()
	}
	nodes, err := tree.NewProvider(wd, ignoreList(cfg), newLogger(io.Discard, "error", "text")).Tree()
	if err != nil {
		return nil
	}
	return matchPaths(nodes, prefix, dirsOnly)
}

func matchPaths(nodes []models.TreeNode, prefix string, dirsOnly bool) []string {
	var out []string
	for _, n := range nodes {
		if n.IsDir() {
			if strings.HasPrefix(n.Path, prefix) {
				out = append(out, n.Path+"/")
			}
			if strings.HasPrefix(prefix, n.Path+"/") || strings.HasPrefix(n.Path, prefix) {
				out = append(out, matchPaths(n.Children, prefix, dirsOnly)...)
			}
			continue
		}
		if !dirsOnly && strings.HasPrefix(n.Path, prefix) {
			out = append(out, n.Path)
		}
	}
	return out
}
