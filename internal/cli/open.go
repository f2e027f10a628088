package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kilupskalvis/vimlantis/internal/client"
	"github.com/kilupskalvis/vimlantis/internal/config"
	"github.com/kilupskalvis/vimlantis/internal/explorer"
	"github.com/kilupskalvis/vimlantis/internal/models"
	"github.com/kilupskalvis/vimlantis/internal/scene"
	"github.com/kilupskalvis/vimlantis/internal/tree"
)

var (
	clientURL     string
	historyLimit  int
	clientTimeout = 10 * time.Second
)

var openCmd = &cobra.Command{
	Use:   "open <path>",
	Short: "Ask a running server to open a file",
	Long: `Open a file through a running vimlantis server, exactly as clicking a buoy
in the viewer does. The path is relative to the served directory and must
be part of the served tree.`,
	Args: cobra.ExactArgs(1),
	Run:  runOpen,
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Print open and tree change events as they happen",
	Long: `Follow the push channel of a running vimlantis server and print every
event it sends to viewers. The connection is re-established with backoff
if the server restarts.`,
	Args: cobra.NoArgs,
	Run:  runEvents,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently opened files",
	Args:  cobra.NoArgs,
	Run:   runHistory,
}

func init() {
	for _, cmd := range []*cobra.Command{openCmd, historyCmd, eventsCmd} {
		cmd.Flags().StringVar(&clientURL, "url", os.Getenv("VIMLANTIS_URL"),
			"Server base URL (default: http://localhost:<configured port>)")
	}
	historyCmd.Flags().IntVarP(&historyLimit, "n", "n", 20, "Number of entries to show")
}

// serverURL returns --url, or the local server address from the config.
func serverURL() string {
	if clientURL != "" {
		return clientURL
	}
	port := config.DefaultPort
	if wd, err := os.Getwd(); err == nil {
		if cfg, err := config.Discover(wd); err == nil {
			port = cfg.Port
		}
	}
	return fmt.Sprintf("http://localhost:%d", port)
}

func runOpen(_ *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), clientTimeout)
	defer cancel()

	logger := newLogger(os.Stderr, envOrDefault("VIMLANTIS_LOG_LEVEL", "error"), "text")
	n, err := openThroughSession(ctx, newClient(), args[0], logger)
	if err != nil {
		exitError("%v", err)
	}
	if n.Err != nil {
		exitError("%s: %v", n.Message, n.Err)
	}

	color.New(color.FgGreen).Print(n.Message)
	if n.Editor != "" {
		fmt.Printf(" (%s)", n.Editor)
	}
	fmt.Println()
}

// newClient returns a client for the configured server.
func newClient() *client.HTTPClient {
	c := client.New(serverURL())
	c.SetTimeout(clientTimeout)
	return c
}

// openThroughSession finds rel in the served tree, sails a headless session
// to its directory and activates its buoy, the same way a click in the
// viewer does. It returns the notification the open produced.
func openThroughSession(ctx context.Context, c *client.HTTPClient, rel string, logger *slog.Logger) (*explorer.Notification, error) {
	nodes, err := c.FetchTree(ctx)
	if err != nil {
		return nil, err
	}

	rel = path.Clean(filepath.ToSlash(rel))
	node, ok := tree.Find(nodes, rel)
	if !ok {
		return nil, fmt.Errorf("%s is not in the served tree", rel)
	}
	if node.IsDir() {
		return nil, fmt.Errorf("%s is a directory", rel)
	}

	session := explorer.NewSession(nodes, c, explorer.Options{Logger: logger})
	defer session.Close()

	dir := path.Dir(rel)
	if dir == "." {
		dir = ""
	}
	if err := session.NavigateTo(dir); err != nil {
		return nil, err
	}

	var buoy *scene.PlacedMarker
	for _, m := range session.Markers() {
		if m.Node.Path == node.Path {
			buoy = m
			break
		}
	}
	if buoy == nil {
		return nil, fmt.Errorf("no buoy for %s", rel)
	}
	if err := session.Activate(buoy); err != nil {
		return nil, err
	}

	session.Wait()
	session.Tick(explorer.Input{})
	n := session.Notification()
	if n == nil {
		return nil, fmt.Errorf("open %s: no result", rel)
	}
	return n, nil
}

func runHistory(_ *cobra.Command, _ []string) {
	ctx, cancel := context.WithTimeout(context.Background(), clientTimeout)
	defer cancel()

	entries, err := newClient().History(ctx)
	if err != nil {
		exitError("%v", err)
	}
	if len(entries) == 0 {
		fmt.Println("Nothing opened yet")
		return
	}

	yellow := color.New(color.FgYellow)
	for i, e := range entries {
		if historyLimit > 0 && i >= historyLimit {
			break
		}
		yellow.Printf("%s ", e.OpenedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("%s", e.Path)
		if e.Editor != "" {
			fmt.Printf("  [%s]", e.Editor)
		}
		fmt.Println()
	}
}

func runEvents(_ *cobra.Command, _ []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	url := serverURL()
	logger := newLogger(os.Stderr, envOrDefault("VIMLANTIS_LOG_LEVEL", "info"), "text")
	fmt.Printf("Following %s\n", url)

	err := client.New(url).Follow(ctx, client.DefaultRetryConfig(), logger, func(ev models.Event) {
		fmt.Println(formatEvent(time.Now(), ev))
	})
	if err != nil {
		exitError("%v", err)
	}
}

// formatEvent renders one push event as a single line.
func formatEvent(at time.Time, ev models.Event) string {
	stamp := color.New(color.FgYellow).Sprint(at.Format("15:04:05"))
	switch ev.Type {
	case models.EventOpenFile:
		return fmt.Sprintf("%s open  %s", stamp, ev.Path)
	case models.EventTreeChanged:
		return fmt.Sprintf("%s tree changed", stamp)
	default:
		return fmt.Sprintf("%s %s %s", stamp, ev.Type, ev.Path)
	}
}
