package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kilupskalvis/vimlantis/internal/client"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what a running server is serving",
	Long: `Connect to a running vimlantis server and report the size of the served
tree, whether the ocean shaders are available and the last opened file.`,
	Args: cobra.NoArgs,
	Run:  runStatus,
}

var showCmd = &cobra.Command{
	Use:   "show <path>",
	Short: "Print a served file",
	Long: `Print the content of a file below the served directory, read through a
running vimlantis server.`,
	Args: cobra.ExactArgs(1),
	Run:  runShow,
}

func init() {
	for _, cmd := range []*cobra.Command{statusCmd, showCmd} {
		cmd.Flags().StringVar(&clientURL, "url", os.Getenv("VIMLANTIS_URL"),
			"Server base URL (default: http://localhost:<configured port>)")
	}
}

func runStatus(_ *cobra.Command, _ []string) {
	ctx, cancel := context.WithTimeout(context.Background(), clientTimeout)
	defer cancel()

	if err := writeStatus(ctx, os.Stdout, newClient()); err != nil {
		exitError("%v", err)
	}
}

// writeStatus reports on the server behind c. Only an unreachable tree is an
// error; missing shaders and history are reported as such.
func writeStatus(ctx context.Context, w io.Writer, c *client.HTTPClient) error {
	nodes, err := c.FetchTree(ctx)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	fmt.Fprintf(w, "Serving %s\n", c.BaseURL())
	dirs, files := printTree(io.Discard, nodes, "", 1, 0)
	fmt.Fprintf(w, "Tree: %d directories, %d files\n", dirs, files)

	if _, err := c.LoadShaders(ctx); err != nil {
		fmt.Fprintf(w, "Shaders: %s\n", yellow.Sprint("unavailable, plain water"))
	} else {
		fmt.Fprintf(w, "Shaders: %s\n", green.Sprint("ok"))
	}

	entries, err := c.History(ctx)
	switch {
	case err != nil:
		fmt.Fprintf(w, "History: %s\n", yellow.Sprint("unavailable"))
	case len(entries) == 0:
		fmt.Fprintln(w, "History: nothing opened yet")
	default:
		last := entries[0]
		fmt.Fprintf(w, "Last opened: %s (%s)\n", last.Path, last.OpenedAt.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runShow(_ *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), clientTimeout)
	defer cancel()

	file, err := newClient().ReadFile(ctx, args[0])
	if err != nil {
		exitError("%v", err)
	}
	fmt.Print(file.Content)
}
