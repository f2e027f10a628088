// Package tree builds filtered file-tree snapshots of a served directory and
// keeps the most recent one cached until the filesystem changes.
package tree

import (
	"fmt"
	"path"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/kilupskalvis/vimlantis/internal/models"
)

// Build walks fsys from its root and returns the top-level entries.
// Entries matching ignore are skipped along with everything below them.
// Only regular files and directories are reported.
func Build(fsys billy.Filesystem, ignore *IgnoreList) ([]models.TreeNode, error) {
	return buildDir(fsys, "", ignore)
}

func buildDir(fsys billy.Filesystem, rel string, ignore *IgnoreList) ([]models.TreeNode, error) {
	infos, err := fsys.ReadDir("/" + rel)
	if err != nil {
		return nil, fmt.Errorf("read directory %q: %w", displayPath(rel), err)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })

	nodes := make([]models.TreeNode, 0, len(infos))
	for _, info := range infos {
		name := info.Name()
		if ignore.Match(name) {
			continue
		}
		childRel := path.Join(rel, name)

		switch {
		case info.IsDir():
			children, err := buildDir(fsys, childRel, ignore)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, models.TreeNode{
				Name:     name,
				Path:     childRel,
				Kind:     models.KindDirectory,
				Children: children,
			})
		case info.Mode().IsRegular():
			nodes = append(nodes, models.TreeNode{
				Name: name,
				Path: childRel,
				Kind: models.KindFile,
			})
		}
	}
	return nodes, nil
}

func displayPath(rel string) string {
	if rel == "" {
		return "."
	}
	return rel
}

// Find returns the node at the given relative path.
func Find(nodes []models.TreeNode, rel string) (models.TreeNode, bool) {
	for _, n := range nodes {
		if n.Path == rel {
			return n, true
		}
		if n.IsDir() && len(rel) > len(n.Path) && rel[:len(n.Path)] == n.Path && rel[len(n.Path)] == '/' {
			return Find(n.Children, rel)
		}
	}
	return models.TreeNode{}, false
}
