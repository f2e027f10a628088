// Package server implements the vimlantis HTTP API, the push channel and
// static hosting of the viewer.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/kilupskalvis/vimlantis/internal/models"
	"github.com/kilupskalvis/vimlantis/internal/store"
)

// TreeSource provides the filtered file tree of the served root.
type TreeSource interface {
	Root() string
	Tree() ([]models.TreeNode, error)
}

// Launcher opens a resolved path in an editor.
type Launcher interface {
	Name() string
	Open(ctx context.Context, fullPath string) error
}

// Config holds the optional collaborators and limits of the server.
type Config struct {
	Editor    Launcher       // nil: opens are only broadcast
	History   *store.History // nil: history disabled
	Hub       *Hub           // nil: a private hub is created
	PublicDir string         // static viewer files, "" to serve none

	MaxRequestBody        int64 // bytes, for JSON endpoints
	MaxFileSize           int64 // bytes, for GET /api/file
	OpenRequestsPerMinute int   // per-client limit on POST /api/open
	HistoryLimit          int   // default page size of GET /api/history
}

// DefaultConfig returns reasonable defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxRequestBody:        64 * 1024,
		MaxFileSize:           4 * 1024 * 1024,
		OpenRequestsPerMinute: 120,
		HistoryLimit:          50,
	}
}

// withDefaults returns a copy of cfg with unset limits taken from
// DefaultConfig. A nil cfg yields DefaultConfig.
func (cfg *Config) withDefaults() *Config {
	def := DefaultConfig()
	if cfg == nil {
		return def
	}
	c := *cfg
	if c.MaxRequestBody <= 0 {
		c.MaxRequestBody = def.MaxRequestBody
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = def.MaxFileSize
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = def.HistoryLimit
	}
	return &c
}

// Handler creates the HTTP handler with all routes and middleware.
// Zero limits in cfg fall back to DefaultConfig; OpenRequestsPerMinute <= 0
// disables rate limiting. The returned cleanup function stops background
// goroutines and disconnects viewers; call it on shutdown.
func Handler(tree TreeSource, cfg *Config, logger *slog.Logger) (http.Handler, func()) {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	hub := cfg.Hub
	if hub == nil {
		hub = NewHub(logger)
	}

	api := &api{
		tree:    tree,
		editor:  cfg.Editor,
		history: cfg.History,
		hub:     hub,
		cfg:     cfg,
		logger:  logger,
	}
	rl := newRateLimiter(cfg.OpenRequestsPerMinute)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /api/filetree", api.handleFileTree)
	mux.HandleFunc("GET /api/file", api.handleFile)
	mux.Handle("POST /api/open", rl.middleware(http.HandlerFunc(api.handleOpen)))
	mux.HandleFunc("GET /api/history", api.handleHistory)
	mux.Handle("GET /ws", hub)
	if cfg.PublicDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(cfg.PublicDir)))
	}

	// Execution order: request ID -> recovery -> logging -> CORS -> mux
	handler := applyMiddleware(mux,
		requestIDMiddleware,
		recoveryMiddleware(logger),
		loggingMiddleware(logger),
		corsMiddleware,
	)

	cleanup := func() {
		rl.Stop()
		hub.Close()
	}
	return handler, cleanup
}

// applyMiddleware applies middleware in reverse order so the first in the list runs first.
func applyMiddleware(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
