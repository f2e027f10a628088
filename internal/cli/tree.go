package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kilupskalvis/vimlantis/internal/config"
	"github.com/kilupskalvis/vimlantis/internal/models"
	"github.com/kilupskalvis/vimlantis/internal/tree"
)

var treeDepth int

var treeCmd = &cobra.Command{
	Use:   "tree [dir]",
	Short: "Print the file tree the ocean is built from",
	Long: `Print the filtered file tree of a directory, the same one the server
hands to the viewer. Ignored names (.git, node_modules, build output and
any extra patterns from the config) are left out.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runTree,
}

func init() {
	treeCmd.Flags().IntVarP(&treeDepth, "depth", "L", 0, "Descend at most this many levels (0 = all)")
}

func runTree(_ *cobra.Command, args []string) {
	root, err := projectDir(args)
	if err != nil {
		exitError("%v", err)
	}
	cfg, err := config.Discover(root)
	if err != nil {
		exitError("%v", err)
	}

	nodes, err := tree.NewProvider(root, ignoreList(cfg), newLogger(os.Stderr, "error", "text")).Tree()
	if err != nil {
		exitError("failed to build file tree: %v", err)
	}

	color.New(color.FgCyan, color.Bold).Println(root)
	dirs, files := printTree(os.Stdout, nodes, "", 1, treeDepth)
	fmt.Printf("\n%d directories, %d files\n", dirs, files)
}

// printTree writes nodes with box drawing guides and returns how many
// directories and files it printed.
func printTree(w io.Writer, nodes []models.TreeNode, prefix string, level, maxDepth int) (dirs, files int) {
	dirColor := color.New(color.FgCyan, color.Bold)

	for i, n := range nodes {
		branch, indent := "├── ", "│   "
		if i == len(nodes)-1 {
			branch, indent = "└── ", "    "
		}

		if !n.IsDir() {
			fmt.Fprintf(w, "%s%s%s\n", prefix, branch, n.Name)
			files++
			continue
		}

		fmt.Fprintf(w, "%s%s%s\n", prefix, branch, dirColor.Sprint(n.Name+"/"))
		dirs++
		if maxDepth > 0 && level >= maxDepth {
			continue
		}
		d, f := printTree(w, n.Children, prefix+indent, level+1, maxDepth)
		dirs += d
		files += f
	}
	return dirs, files
}
