package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kilupskalvis/vimlantis/internal/client"
	"github.com/kilupskalvis/vimlantis/internal/explorer"
	"github.com/kilupskalvis/vimlantis/internal/models"
	"github.com/kilupskalvis/vimlantis/internal/sail"
)

var (
	sailTheme     string
	sailSpeed     float32
	sailNoMinimap bool
	sailPath      string
)

var sailCmd = &cobra.Command{
	Use:   "sail",
	Short: "Explore a running server's ocean in the terminal",
	Long: `Sail the ocean of a running vimlantis server without a browser. Steer
with w/a/s/d or the arrow keys, press space near a buoy to open it in the
server's editor and near a lighthouse to sail into it. The view reloads
whenever the served tree changes.`,
	Args: cobra.NoArgs,
	Run:  runSail,
}

func init() {
	f := sailCmd.Flags()
	f.StringVar(&clientURL, "url", os.Getenv("VIMLANTIS_URL"),
		"Server base URL (default: http://localhost:<configured port>)")
	f.StringVar(&sailTheme, "theme", string(explorer.ThemeBlue), "Ocean theme (blue, teal, purple, sunset)")
	f.Float32Var(&sailSpeed, "speed", 1, "Boat speed factor")
	f.BoolVar(&sailNoMinimap, "no-minimap", false, "Hide the minimap")
	f.StringVar(&sailPath, "path", "", "Directory to start in (slash separated)")
}

func runSail(_ *cobra.Command, _ []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The terminal belongs to the viewer; logs are dropped unless asked for.
	logger := newLogger(io.Discard, "error", "text")
	if os.Getenv("VIMLANTIS_LOG_LEVEL") != "" {
		logger = newLogger(os.Stderr, os.Getenv("VIMLANTIS_LOG_LEVEL"), "text")
	}

	c := newClient()
	fetchCtx, cancel := context.WithTimeout(ctx, clientTimeout)
	nodes, err := c.FetchTree(fetchCtx)
	cancel()
	if err != nil {
		exitError("%v", err)
	}

	if sh, err := c.LoadShaders(ctx); err != nil {
		logger.Warn("ocean shaders unavailable, using plain water", "error", err)
	} else {
		logger.Debug("ocean shaders loaded", "vertex_bytes", len(sh.Vertex), "fragment_bytes", len(sh.Fragment))
	}

	session := explorer.NewSession(nodes, c, explorer.Options{
		Settings: sailSettings(),
		Logger:   logger,
	})
	defer session.Close()
	if err := session.NavigateTo(sailPath); err != nil {
		exitError("%v", err)
	}

	p := tea.NewProgram(sail.New(session, c.FetchTree, logger), tea.WithAltScreen(), tea.WithMouseCellMotion())

	go func() {
		err := c.Follow(ctx, client.DefaultRetryConfig(), logger, func(ev models.Event) {
			p.Send(sail.EventMsg(ev))
		})
		if err != nil && ctx.Err() == nil {
			logger.Warn("stopped following server events", "error", err)
		}
	}()

	if _, err := p.Run(); err != nil {
		exitError("%v", err)
	}
	stop()
	session.Wait()
	fmt.Println("Back on shore")
}

// sailSettings builds the viewer preferences from the sail flags.
func sailSettings() *explorer.Settings {
	settings := explorer.DefaultSettings()
	settings.OceanTheme = explorer.Theme(sailTheme)
	if sailSpeed > 0 {
		settings.BoatSpeed = sailSpeed
	}
	settings.ShowMinimap = !sailNoMinimap
	return &settings
}
