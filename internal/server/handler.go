package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/kilupskalvis/vimlantis/internal/models"
	"github.com/kilupskalvis/vimlantis/internal/store"
)

type api struct {
	tree    TreeSource
	editor  Launcher
	history *store.History
	hub     *Hub
	cfg     *Config
	logger  *slog.Logger
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (a *api) handleFileTree(w http.ResponseWriter, r *http.Request) {
	nodes, err := a.tree.Tree()
	if err != nil {
		a.logger.Error("build file tree", "error", err, "request_id", requestID(r))
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to build file tree")
		return
	}
	if nodes == nil {
		nodes = []models.TreeNode{}
	}
	writeJSON(w, http.StatusOK, nodes)
}

func (a *api) handleFile(w http.ResponseWriter, r *http.Request) {
	rel := r.URL.Query().Get("path")
	if rel == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "Path parameter required")
		return
	}

	full, err := resolvePath(a.tree.Root(), rel)
	if err != nil {
		writeError(w, http.StatusForbidden, "forbidden", "Access denied")
		return
	}
	info, err := statResolved(full)
	if err != nil {
		a.writePathError(w, r, err)
		return
	}
	if info.IsDir() {
		writeError(w, http.StatusBadRequest, "bad_request", "Path is a directory")
		return
	}
	if info.Size() > a.cfg.MaxFileSize {
		writeError(w, http.StatusRequestEntityTooLarge, "too_large",
			fmt.Sprintf("file exceeds %d bytes", a.cfg.MaxFileSize))
		return
	}

	data, err := os.ReadFile(full)
	if err != nil {
		a.logger.Error("read file", "path", full, "error", err, "request_id", requestID(r))
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to read file")
		return
	}
	writeJSON(w, http.StatusOK, &models.FileContent{Content: string(data), Path: rel})
}

func (a *api) handleOpen(w http.ResponseWriter, r *http.Request) {
	var req models.OpenRequest
	if err := readJSON(r, a.cfg.MaxRequestBody, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "Path required")
		return
	}
	if req.Type != "" {
		if _, err := models.ParseKind(req.Type); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
	}

	full, err := resolvePath(a.tree.Root(), req.Path)
	if err != nil {
		a.logger.Warn("rejected path outside root", "path", req.Path, "request_id", requestID(r))
		writeError(w, http.StatusForbidden, "forbidden", "Access denied")
		return
	}
	if _, err := statResolved(full); err != nil {
		a.writePathError(w, r, err)
		return
	}

	var editorName string
	if a.editor != nil {
		editorName = a.editor.Name()
		if err := a.editor.Open(r.Context(), full); err != nil {
			a.logger.Error("launch editor", "path", full, "editor", editorName, "error", err,
				"request_id", requestID(r))
			writeError(w, http.StatusInternalServerError, "editor_failed", err.Error())
			return
		}
	}

	if err := a.history.Record(r.Context(), &models.HistoryEntry{
		Path:     req.Path,
		FullPath: full,
		Editor:   editorName,
	}); err != nil {
		a.logger.Warn("record history", "path", req.Path, "error", err)
	}

	n := a.hub.Broadcast(models.Event{Type: models.EventOpenFile, Path: req.Path, FullPath: full})
	a.logger.Info("opened file", "path", req.Path, "editor", editorName, "viewers", n)

	writeJSON(w, http.StatusOK, &models.OpenResponse{Success: true, Editor: editorName})
}

func (a *api) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := a.cfg.HistoryLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "bad_request", "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	entries, err := a.history.Recent(r.Context(), limit)
	if err != nil {
		a.logger.Error("read history", "error", err, "request_id", requestID(r))
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to read history")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (a *api) writePathError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "File not found")
		return
	}
	a.logger.Error("stat path", "error", err, "request_id", requestID(r))
	writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, &models.ErrorResponse{Error: code, Message: message})
}

func readJSON(r *http.Request, maxSize int64, v interface{}) error {
	limited := io.LimitReader(r.Body, maxSize)
	if err := json.NewDecoder(limited).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}
