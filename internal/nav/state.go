// Package nav tracks where the viewer is inside a file tree snapshot.
//
// The state is a stack of visited directories (the root is implicit and never
// on the stack) and the entries currently on display. The displayed entries
// are always the children of the top of the stack, or the root entries when
// the stack is empty.
package nav

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kilupskalvis/vimlantis/internal/models"
)

var (
	// ErrNotDirectory is returned when descending into a file.
	ErrNotDirectory = errors.New("not a directory")

	// ErrNotInCurrent is returned when descending into a node that is not
	// one of the displayed entries.
	ErrNotInCurrent = errors.New("not in current entries")

	// ErrBreadcrumbRange is returned for a breadcrumb index outside the stack.
	ErrBreadcrumbRange = errors.New("breadcrumb index out of range")
)

// RootLabel is the breadcrumb text of the tree root.
const RootLabel = "root"

// Breadcrumb is one element of the path display.
type Breadcrumb struct {
	Label  string
	Path   string
	Index  int // -1 for the root crumb, otherwise the stack index
	Active bool
}

// State is the navigation state machine. It is not safe for concurrent use;
// all transitions are expected to come from one loop.
type State struct {
	root    []models.TreeNode
	stack   []models.TreeNode
	current []models.TreeNode
}

// New returns a state positioned at the root of the given tree.
func New(root []models.TreeNode) *State {
	return &State{root: root, current: root}
}

// Root returns the top-level entries.
func (s *State) Root() []models.TreeNode {
	return s.root
}

// Current returns the displayed entries.
func (s *State) Current() []models.TreeNode {
	return s.current
}

// Path returns a copy of the directory stack, outermost first.
func (s *State) Path() []models.TreeNode {
	out := make([]models.TreeNode, len(s.stack))
	copy(out, s.stack)
	return out
}

// Depth returns the stack length; 0 means the root is displayed.
func (s *State) Depth() int {
	return len(s.stack)
}

// CurrentDir returns the directory on display and false at the root.
func (s *State) CurrentDir() (models.TreeNode, bool) {
	if len(s.stack) == 0 {
		return models.TreeNode{}, false
	}
	return s.stack[len(s.stack)-1], true
}

// DescendInto pushes dir onto the stack. dir must be a directory among the
// current entries.
func (s *State) DescendInto(dir models.TreeNode) error {
	switch dir.Kind {
	case models.KindDirectory:
	case models.KindFile:
		return fmt.Errorf("descend into %q: %w", dir.Path, ErrNotDirectory)
	default:
		return fmt.Errorf("descend into %q: unknown kind %v", dir.Path, dir.Kind)
	}

	member, ok := s.lookup(dir)
	if !ok {
		return fmt.Errorf("descend into %q: %w", dir.Path, ErrNotInCurrent)
	}

	s.stack = append(s.stack, member)
	s.current = member.Children
	return nil
}

// DescendPath jumps to the root and then descends through each '/'-separated
// component of rel. On error the state is left at the root.
func (s *State) DescendPath(rel string) error {
	s.JumpToRoot()
	if rel == "" || rel == "." {
		return nil
	}
	for _, name := range strings.Split(strings.Trim(rel, "/"), "/") {
		var next *models.TreeNode
		for i := range s.current {
			if s.current[i].Name == name {
				next = &s.current[i]
				break
			}
		}
		if next == nil {
			s.JumpToRoot()
			return fmt.Errorf("descend path %q: %q: %w", rel, name, ErrNotInCurrent)
		}
		if err := s.DescendInto(*next); err != nil {
			s.JumpToRoot()
			return err
		}
	}
	return nil
}

// AscendOne pops the stack. It reports false, and changes nothing, at the root.
func (s *State) AscendOne() bool {
	if len(s.stack) == 0 {
		return false
	}
	s.stack = s.stack[:len(s.stack)-1]
	s.refresh()
	return true
}

// JumpToRoot clears the stack.
func (s *State) JumpToRoot() {
	s.stack = nil
	s.current = s.root
}

// JumpToBreadcrumb truncates the stack so that stack[i] is on top.
func (s *State) JumpToBreadcrumb(i int) error {
	if i < 0 || i >= len(s.stack) {
		return fmt.Errorf("jump to breadcrumb %d (depth %d): %w", i, len(s.stack), ErrBreadcrumbRange)
	}
	s.stack = s.stack[:i+1]
	s.refresh()
	return nil
}

// Breadcrumbs returns the root crumb followed by one crumb per stack entry.
// The last crumb is the active one.
func (s *State) Breadcrumbs() []Breadcrumb {
	crumbs := make([]Breadcrumb, 0, len(s.stack)+1)
	crumbs = append(crumbs, Breadcrumb{
		Label:  RootLabel,
		Index:  -1,
		Active: len(s.stack) == 0,
	})
	for i, dir := range s.stack {
		crumbs = append(crumbs, Breadcrumb{
			Label:  dir.Name,
			Path:   dir.Path,
			Index:  i,
			Active: i == len(s.stack)-1,
		})
	}
	return crumbs
}

// SelectBreadcrumb applies a breadcrumb click: the root crumb jumps to the
// root, any other crumb jumps to its stack index.
func (s *State) SelectBreadcrumb(c Breadcrumb) error {
	if c.Index < 0 {
		s.JumpToRoot()
		return nil
	}
	return s.JumpToBreadcrumb(c.Index)
}

func (s *State) refresh() {
	if len(s.stack) == 0 {
		s.current = s.root
		return
	}
	s.current = s.stack[len(s.stack)-1].Children
}

func (s *State) lookup(n models.TreeNode) (models.TreeNode, bool) {
	for _, e := range s.current {
		if e.Same(n) {
			return e, true
		}
	}
	return models.TreeNode{}, false
}
