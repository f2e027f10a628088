package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kilupskalvis/vimlantis/internal/client"
	"github.com/kilupskalvis/vimlantis/internal/config"
	"github.com/kilupskalvis/vimlantis/internal/explorer"
	"github.com/kilupskalvis/vimlantis/internal/models"
	"github.com/kilupskalvis/vimlantis/internal/sail"
	"github.com/kilupskalvis/vimlantis/internal/scene"
	"github.com/kilupskalvis/vimlantis/internal/tree"
)

var (
	layoutPath    string
	layoutURL     string
	layoutSeed    uint64
	layoutMinimap int
)

var layoutCmd = &cobra.Command{
	Use:   "layout [dir]",
	Short: "Show where markers are placed for a directory",
	Long: `Lay out the entries of one directory the way the viewer does and print
each marker with its position. The same seed always gives the same layout.

Examples:
  vimlantis layout
  vimlantis layout --path internal/server --seed 7
  vimlantis layout --minimap 40
  vimlantis layout --url http://localhost:3000`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLayout,
}

func init() {
	f := layoutCmd.Flags()
	f.StringVar(&layoutPath, "path", "", "Directory inside the project to lay out (slash separated)")
	f.StringVar(&layoutURL, "url", "", "Lay out the tree served by a running server instead of a local directory")
	f.Uint64Var(&layoutSeed, "seed", 1, "Placement seed")
	f.IntVar(&layoutMinimap, "minimap", 0, "Also draw a minimap this many cells wide (0 = off)")
}

func runLayout(_ *cobra.Command, args []string) {
	logger := newLogger(os.Stderr, "error", "text")
	nodes, err := layoutTree(args, logger)
	if err != nil {
		exitError("%v", err)
	}

	session := explorer.NewSession(nodes, nil, explorer.Options{
		Rand:   rand.New(rand.NewPCG(layoutSeed, layoutSeed)),
		Logger: logger,
	})
	defer session.Close()

	if err := session.NavigateTo(layoutPath); err != nil {
		exitError("%v", err)
	}

	fmt.Println(sail.Breadcrumbs(session.Breadcrumbs()))
	printLayout(os.Stdout, session.Markers())

	if layoutMinimap > 0 {
		fmt.Println()
		fmt.Print(sail.RenderMinimap(session, layoutMinimap))
	}
}

// layoutTree returns the tree from --url when set, else the filtered tree of
// the project directory.
func layoutTree(args []string, logger *slog.Logger) ([]models.TreeNode, error) {
	if layoutURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), clientTimeout)
		defer cancel()
		c := client.New(layoutURL)
		c.SetTimeout(clientTimeout)
		return c.FetchTree(ctx)
	}

	root, err := projectDir(args)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Discover(root)
	if err != nil {
		return nil, err
	}
	nodes, err := tree.NewProvider(root, ignoreList(cfg), logger).Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to build file tree: %w", err)
	}
	return nodes, nil
}

func printLayout(w io.Writer, markers []*scene.PlacedMarker) {
	if len(markers) == 0 {
		fmt.Fprintln(w, "(empty directory)")
		return
	}

	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)

	for _, m := range markers {
		shape := red.Sprintf("%-10s", m.Shape)
		if m.Shape == scene.ShapeLighthouse {
			shape = yellow.Sprintf("%-10s", m.Shape)
		}
		line := fmt.Sprintf("%s %8.2f %8.2f  %6.2f  %s", shape, m.X, m.Z, m.DistanceToOrigin(), m.Label.Text)
		if m.Fallback {
			line += " (fallback)"
		}
		fmt.Fprintln(w, line)
	}
}
