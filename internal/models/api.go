package models

import "time"

// OpenRequest asks the server to open a path in the configured editor.
type OpenRequest struct {
	Path string `json:"path"`
	Type string `json:"type,omitempty"`
}

// OpenResponse is returned after a successful editor launch.
type OpenResponse struct {
	Success bool   `json:"success"`
	Editor  string `json:"editor"`
}

// FileContent is the body of GET /api/file.
type FileContent struct {
	Content string `json:"content"`
	Path    string `json:"path"`
}

// ErrorResponse is the JSON error body used by every endpoint.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Event types pushed over the socket channel.
const (
	EventOpenFile    = "open_file"
	EventTreeChanged = "tree_changed"
)

// Event is a message broadcast to every connected viewer.
type Event struct {
	Type     string `json:"type"`
	Path     string `json:"path,omitempty"`
	FullPath string `json:"fullPath,omitempty"`
}

// HistoryEntry records one successful open.
type HistoryEntry struct {
	Path     string    `json:"path"`
	FullPath string    `json:"fullPath"`
	Editor   string    `json:"editor"`
	OpenedAt time.Time `json:"openedAt"`
}
