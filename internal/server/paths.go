package server

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	errAccessDenied = errors.New("access denied")
	errNotFound     = errors.New("not found")
)

// resolvePath joins rel to root and rejects results outside root. It does
// not touch the filesystem.
func resolvePath(root, rel string) (string, error) {
	cleanRoot := filepath.Clean(root)
	full := filepath.Join(cleanRoot, filepath.FromSlash(rel))

	if full == cleanRoot {
		return full, nil
	}
	prefix := cleanRoot
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	if !strings.HasPrefix(full, prefix) {
		return "", fmt.Errorf("%s: %w", rel, errAccessDenied)
	}
	return full, nil
}

// statResolved returns the file info of a resolved path.
func statResolved(full string) (os.FileInfo, error) {
	info, err := os.Stat(full)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", full, errNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", full, err)
	}
	return info, nil
}
