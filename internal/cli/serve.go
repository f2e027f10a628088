package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kilupskalvis/vimlantis/internal/config"
	"github.com/kilupskalvis/vimlantis/internal/editor"
	"github.com/kilupskalvis/vimlantis/internal/server"
	"github.com/kilupskalvis/vimlantis/internal/store"
	"github.com/kilupskalvis/vimlantis/internal/tree"
)

var (
	serveCwd       string
	servePort      int
	serveEditor    string
	serveServer    string
	serveOpen      bool
	servePublic    string
	serveDataDir   string
	serveLogLevel  string
	serveLogFormat string
	serveNoWatch   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a directory as an ocean",
	Long: `Start the vimlantis server for a project directory.

The server exposes the filtered file tree, opens files in your editor and
pushes open events to every connected browser tab. Settings are read from
.vimlantis.toml in the project or a parent directory, then from
~/.vimlantis/config.toml. Flags and VIMLANTIS_* environment variables win
over the file.

Examples:
  vimlantis serve
  vimlantis serve --cwd ~/src/app --port 4000 --open
  vimlantis serve --editor "code --wait"
  vimlantis serve --server /tmp/nvim.sock`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveCwd, "cwd", envOrDefault("VIMLANTIS_CWD", "."), "Project directory to serve")
	f.IntVar(&servePort, "port", envIntOrDefault("VIMLANTIS_PORT", config.DefaultPort), "Listen port")
	f.StringVar(&serveEditor, "editor", os.Getenv("VIMLANTIS_EDITOR"), "Editor command (default: $VISUAL, $EDITOR, nvim, vim, vi)")
	f.StringVar(&serveServer, "server", os.Getenv("VIMLANTIS_EDITOR_SERVER"), "Address of a running nvim to open files in")
	f.BoolVar(&serveOpen, "open", os.Getenv("VIMLANTIS_OPEN") != "", "Open the browser once the server is up")
	f.StringVar(&servePublic, "public", os.Getenv("VIMLANTIS_PUBLIC"), "Directory with the viewer files")
	f.StringVar(&serveDataDir, "data-dir", os.Getenv("VIMLANTIS_DATA_DIR"), "Directory for the open history")
	f.StringVar(&serveLogLevel, "log-level", envOrDefault("VIMLANTIS_LOG_LEVEL", "info"), "Log level (debug|info|warn|error)")
	f.StringVar(&serveLogFormat, "log-format", envOrDefault("VIMLANTIS_LOG_FORMAT", "text"), "Log format (json|text)")
	f.BoolVar(&serveNoWatch, "no-watch", os.Getenv("VIMLANTIS_NO_WATCH") != "", "Do not watch the project for changes")
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

// overridden reports whether a flag was set on the command line or through
// its environment variable.
func overridden(cmd *cobra.Command, flag, env string) bool {
	return cmd.Flags().Changed(flag) || os.Getenv(env) != ""
}

// applyServeFlags layers the serve flags over the loaded file config.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	if overridden(cmd, "port", "VIMLANTIS_PORT") {
		cfg.Port = servePort
	}
	if overridden(cmd, "editor", "VIMLANTIS_EDITOR") {
		cfg.Editor = serveEditor
	}
	if overridden(cmd, "server", "VIMLANTIS_EDITOR_SERVER") {
		cfg.EditorServer = serveServer
	}
	if overridden(cmd, "open", "VIMLANTIS_OPEN") {
		cfg.OpenBrowser = serveOpen
	}
	if overridden(cmd, "public", "VIMLANTIS_PUBLIC") {
		cfg.PublicDir = servePublic
	}
	if overridden(cmd, "data-dir", "VIMLANTIS_DATA_DIR") {
		cfg.DataDir = serveDataDir
	}
	if overridden(cmd, "log-level", "VIMLANTIS_LOG_LEVEL") {
		cfg.LogLevel = serveLogLevel
	}
	if overridden(cmd, "log-format", "VIMLANTIS_LOG_FORMAT") {
		cfg.LogFormat = serveLogFormat
	}
	if overridden(cmd, "no-watch", "VIMLANTIS_NO_WATCH") {
		cfg.Watch = !serveNoWatch
	}
}

func runServe(cmd *cobra.Command, _ []string) {
	root, err := projectDir([]string{serveCwd})
	if err != nil {
		exitError("invalid --cwd: %v", err)
	}

	cfg, err := config.Discover(root)
	if err != nil {
		exitError("%v", err)
	}
	applyServeFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		exitError("%v", err)
	}

	logger := newLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if cfg.Path() != "" {
		logger.Debug("loaded config", "path", cfg.Path())
	}

	ignore := ignoreList(cfg)
	logger.Debug("ignoring entries", "patterns", ignore.Patterns())
	provider := tree.NewProvider(root, ignore, logger)
	hub := server.NewHub(logger)
	provider.OnChange(hub.NotifyTreeChanged)

	scfg := server.DefaultConfig()
	scfg.Hub = hub
	scfg.History = openHistory(cfg, logger)
	defer scfg.History.Close()

	launcher, err := editor.New(editor.Options{
		Editor: cfg.Editor,
		Server: cfg.EditorServer,
		Dir:    root,
		Logger: logger,
	})
	switch {
	case errors.Is(err, editor.ErrNoEditor):
		logger.Warn("no editor found, opens are only broadcast to viewers")
	case err != nil:
		exitError("%v", err)
	default:
		scfg.Editor = launcher
	}

	public, err := cfg.PublicPath()
	if err != nil {
		exitError("%v", err)
	}
	if public == "" {
		public = defaultPublicDir()
	}
	scfg.PublicDir = public

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Watch {
		if err := provider.Watch(ctx); err != nil {
			logger.Warn("file watching disabled", "error", err)
		}
	}

	h, handlerCleanup := server.Handler(provider, scfg, logger)
	defer handlerCleanup()

	addr := net.JoinHostPort("", strconv.Itoa(cfg.Port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	url := fmt.Sprintf("http://localhost:%d", cfg.Port)
	go func() {
		logger.Info("starting vimlantis", "listen", addr, "root", root, "public", public)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Printf("Vimlantis server running at %s\n", url)
	fmt.Printf("Serving files from: %s\n", root)

	if cfg.OpenBrowser {
		fmt.Printf("Opening browser: %s\n", url)
		if err := openBrowser(url); err != nil {
			logger.Warn("failed to open browser", "error", err)
		}
	}

	sig := <-done
	logger.Info("shutting down", "signal", sig.String())
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("server stopped")
}

// openHistory opens the history store, or returns nil with a warning.
func openHistory(cfg *config.Config, logger *slog.Logger) *store.History {
	dataDir, err := cfg.DataPath()
	if err != nil || dataDir == "" {
		logger.Warn("open history disabled", "error", err)
		return nil
	}
	history, err := store.OpenDir(dataDir)
	if err != nil {
		logger.Warn("open history disabled", "error", err, "data_dir", dataDir)
		return nil
	}
	history.SetMaxEntries(cfg.HistorySize)

	ctx := context.Background()
	n, err := history.Count(ctx)
	if err != nil {
		logger.Warn("open history unreadable", "error", err, "data_dir", dataDir)
		return history
	}
	last, err := history.Last(ctx)
	switch {
	case err == nil:
		logger.Info("open history loaded", "data_dir", dataDir, "entries", n, "last_opened", last.Path)
	case errors.Is(err, store.ErrNotFound):
		logger.Debug("open history is empty", "data_dir", dataDir)
	default:
		logger.Warn("open history unreadable", "error", err, "data_dir", dataDir)
	}
	return history
}

// defaultPublicDir looks for the viewer next to the executable.
func defaultPublicDir() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	base := filepath.Dir(exe)
	for _, dir := range []string{
		filepath.Join(base, "public"),
		filepath.Join(base, "..", "share", "vimlantis", "public"),
	} {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return ""
}

// browserCommand returns the command that opens url on goos.
func browserCommand(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "cmd", []string{"/c", "start", "", url}
	default:
		return "xdg-open", []string{url}
	}
}

func openBrowser(url string) error {
	name, args := browserCommand(runtime.GOOS, url)
	if err := exec.Command(name, args...).Start(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
