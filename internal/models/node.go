// Package models holds the data types shared between the tree provider,
// the HTTP server, and the client-side explorer.
package models

import (
	"encoding/json"
	"fmt"
)

// Kind distinguishes files from directories.
type Kind int

const (
	KindFile Kind = iota
	KindDirectory
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind converts a wire name into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "file":
		return KindFile, nil
	case "directory":
		return KindDirectory, nil
	default:
		return 0, fmt.Errorf("unknown node type %q", s)
	}
}

// MarshalJSON encodes the kind as "file" or "directory".
func (k Kind) MarshalJSON() ([]byte, error) {
	switch k {
	case KindFile, KindDirectory:
		return json.Marshal(k.String())
	default:
		return nil, fmt.Errorf("invalid kind %d", int(k))
	}
}

// UnmarshalJSON decodes "file" or "directory".
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// TreeNode is one entry of a file tree snapshot.
// Path is relative to the served root and always '/'-joined.
type TreeNode struct {
	Name     string     `json:"name"`
	Path     string     `json:"path"`
	Kind     Kind       `json:"type"`
	Children []TreeNode `json:"children,omitempty"`
}

// MarshalJSON always emits a children array for directories, even when
// empty, and never for files.
func (n TreeNode) MarshalJSON() ([]byte, error) {
	type wireNode struct {
		Name     string      `json:"name"`
		Path     string      `json:"path"`
		Kind     Kind        `json:"type"`
		Children *[]TreeNode `json:"children,omitempty"`
	}
	w := wireNode{Name: n.Name, Path: n.Path, Kind: n.Kind}
	if n.IsDir() {
		children := n.Children
		if children == nil {
			children = []TreeNode{}
		}
		w.Children = &children
	}
	return json.Marshal(w)
}

// IsDir reports whether the node is a directory.
func (n TreeNode) IsDir() bool {
	return n.Kind == KindDirectory
}

// Same reports whether two nodes refer to the same tree entry.
func (n TreeNode) Same(other TreeNode) bool {
	return n.Path == other.Path && n.Kind == other.Kind
}

// CountNodes returns the number of nodes in the given forest.
func CountNodes(nodes []TreeNode) int {
	count := 0
	for _, n := range nodes {
		count++
		if n.IsDir() {
			count += CountNodes(n.Children)
		}
	}
	return count
}
