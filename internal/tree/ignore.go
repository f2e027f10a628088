package tree

import (
	"sort"
	"strings"
)

// DefaultIgnorePatterns are the names never shown in the ocean: version control
// metadata, dependency caches, build output and OS clutter. A leading '*'
// marks a suffix match.
var DefaultIgnorePatterns = []string{
	".git",
	"node_modules",
	".DS_Store",
	".nvim",
	".vscode",
	".idea",
	"dist",
	"build",
	"target",
	"__pycache__",
	"*.pyc",
	".next",
}

// IgnoreList matches entry names against exact names and suffixes.
// A nil *IgnoreList matches nothing.
type IgnoreList struct {
	exact    map[string]struct{}
	suffixes []string
}

// NewIgnoreList builds a list from patterns. "*.ext" is a suffix pattern,
// anything else must match the entry name exactly.
func NewIgnoreList(patterns ...string) *IgnoreList {
	l := &IgnoreList{exact: make(map[string]struct{})}
	l.Add(patterns...)
	return l
}

// DefaultIgnoreList returns a list seeded with DefaultIgnorePatterns.
func DefaultIgnoreList() *IgnoreList {
	return NewIgnoreList(DefaultIgnorePatterns...)
}

// Add appends patterns to the list. Blank patterns are skipped.
func (l *IgnoreList) Add(patterns ...string) {
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		switch {
		case p == "" || p == "*":
			continue
		case strings.HasPrefix(p, "*"):
			l.suffixes = append(l.suffixes, p[1:])
		default:
			l.exact[p] = struct{}{}
		}
	}
}

// Match reports whether name should be skipped.
func (l *IgnoreList) Match(name string) bool {
	if l == nil {
		return false
	}
	if _, ok := l.exact[name]; ok {
		return true
	}
	for _, s := range l.suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// Patterns returns the patterns in a stable order.
func (l *IgnoreList) Patterns() []string {
	if l == nil {
		return nil
	}
	out := make([]string, 0, len(l.exact)+len(l.suffixes))
	for name := range l.exact {
		out = append(out, name)
	}
	for _, s := range l.suffixes {
		out = append(out, "*"+s)
	}
	sort.Strings(out)
	return out
}
