package nav

import (
	"testing"

	"github.com/kilupskalvis/vimlantis/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func file(path, name string) models.TreeNode {
	return models.TreeNode{Name: name, Path: path, Kind: models.KindFile}
}

func dir(path, name string, children ...models.TreeNode) models.TreeNode {
	if children == nil {
		children = []models.TreeNode{}
	}
	return models.TreeNode{Name: name, Path: path, Kind: models.KindDirectory, Children: children}
}

func sampleTree() []models.TreeNode {
	return []models.TreeNode{
		dir("src", "src",
			file("src/main.go", "main.go"),
			dir("src/internal", "internal",
				dir("src/internal/nav", "nav",
					file("src/internal/nav/state.go", "state.go"),
				),
				dir("src/internal/empty", "empty"),
			),
		),
		dir("docs", "docs", file("docs/index.md", "index.md")),
		file("README.md", "README.md"),
	}
}

// walkDirs visits every directory reachable from the state's current entries,
// descending and ascending around each visit.
func walkDirs(t *testing.T, s *State, visit func()) {
	t.Helper()
	for _, n := range s.Current() {
		if !n.IsDir() {
			continue
		}
		require.NoError(t, s.DescendInto(n))
		visit()
		walkDirs(t, s, visit)
		require.True(t, s.AscendOne())
	}
}

func TestNew_StartsAtRoot(t *testing.T) {
	tree := sampleTree()
	s := New(tree)

	assert.Equal(t, 0, s.Depth())
	assert.Equal(t, tree, s.Current())
	_, ok := s.CurrentDir()
	assert.False(t, ok)
}

func TestDescendInto_ShowsChildren(t *testing.T) {
	s := New(sampleTree())

	require.NoError(t, s.DescendInto(s.Current()[0]))
	assert.Equal(t, 1, s.Depth())
	assert.Equal(t, []string{"main.go", "internal"}, []string{s.Current()[0].Name, s.Current()[1].Name})

	cur, ok := s.CurrentDir()
	require.True(t, ok)
	assert.Equal(t, "src", cur.Path)
}

func TestDescendInto_RoundTripForEveryDirectory(t *testing.T) {
	s := New(sampleTree())

	var checked int
	var check func()
	check = func() {
		beforePath := s.Path()
		beforeCurrent := s.Current()
		for _, n := range beforeCurrent {
			if !n.IsDir() {
				continue
			}
			require.NoError(t, s.DescendInto(n))
			require.True(t, s.AscendOne())
			assert.Equal(t, beforePath, s.Path())
			assert.Equal(t, beforeCurrent, s.Current())
			checked++
		}
	}
	check()
	walkDirs(t, s, check)

	assert.Equal(t, 5, checked)
	assert.Equal(t, 0, s.Depth())
}

func TestDescendInto_RejectsFile(t *testing.T) {
	s := New(sampleTree())

	err := s.DescendInto(s.Current()[2])
	assert.ErrorIs(t, err, ErrNotDirectory)
	assert.Equal(t, 0, s.Depth())
}

func TestDescendInto_RejectsNonMember(t *testing.T) {
	s := New(sampleTree())

	err := s.DescendInto(dir("src/internal", "internal"))
	assert.ErrorIs(t, err, ErrNotInCurrent)
	assert.Equal(t, 0, s.Depth())
}

func TestAscendOne_AtRootIsNoop(t *testing.T) {
	tree := sampleTree()
	s := New(tree)

	assert.False(t, s.AscendOne())
	assert.Equal(t, tree, s.Current())
}

func TestJumpToRoot_FromAnyDepth(t *testing.T) {
	tree := sampleTree()
	s := New(tree)

	walkDirs(t, s, func() {
		depth := s.Depth()
		path := s.Path()

		s.JumpToRoot()
		assert.Empty(t, s.Path())
		assert.Equal(t, tree, s.Current())

		// restore so the walk can continue
		for _, d := range path {
			require.NoError(t, s.DescendInto(d))
		}
		assert.Equal(t, depth, s.Depth())
	})
}

func TestJumpToBreadcrumb(t *testing.T) {
	s := New(sampleTree())
	require.NoError(t, s.DescendPath("src/internal/nav"))
	require.Equal(t, 3, s.Depth())

	require.NoError(t, s.JumpToBreadcrumb(0))
	assert.Equal(t, 1, s.Depth())
	cur, _ := s.CurrentDir()
	assert.Equal(t, "src", cur.Path)
	assert.Equal(t, cur.Children, s.Current())

	assert.ErrorIs(t, s.JumpToBreadcrumb(1), ErrBreadcrumbRange)
	assert.ErrorIs(t, s.JumpToBreadcrumb(-1), ErrBreadcrumbRange)
	assert.Equal(t, 1, s.Depth())
}

func TestBreadcrumbs_LengthTracksDepth(t *testing.T) {
	s := New(sampleTree())

	crumbs := s.Breadcrumbs()
	require.Len(t, crumbs, 1)
	assert.Equal(t, RootLabel, crumbs[0].Label)
	assert.True(t, crumbs[0].Active)

	walkDirs(t, s, func() {
		crumbs := s.Breadcrumbs()
		require.Len(t, crumbs, s.Depth()+1)
		assert.False(t, crumbs[0].Active)
		assert.True(t, crumbs[len(crumbs)-1].Active)
		for i, d := range s.Path() {
			assert.Equal(t, d.Name, crumbs[i+1].Label)
			assert.Equal(t, i, crumbs[i+1].Index)
		}
	})
}

func TestSelectBreadcrumb(t *testing.T) {
	s := New(sampleTree())
	require.NoError(t, s.DescendPath("src/internal"))

	crumbs := s.Breadcrumbs()
	require.NoError(t, s.SelectBreadcrumb(crumbs[1]))
	assert.Equal(t, 1, s.Depth())

	require.NoError(t, s.SelectBreadcrumb(crumbs[0]))
	assert.Equal(t, 0, s.Depth())
}

func TestDescendPath(t *testing.T) {
	s := New(sampleTree())

	require.NoError(t, s.DescendPath("src/internal/empty"))
	assert.Equal(t, 3, s.Depth())
	assert.Empty(t, s.Current())

	err := s.DescendPath("src/missing")
	assert.ErrorIs(t, err, ErrNotInCurrent)
	assert.Equal(t, 0, s.Depth())

	err = s.DescendPath("README.md")
	assert.ErrorIs(t, err, ErrNotDirectory)
	assert.Equal(t, 0, s.Depth())

	require.NoError(t, s.DescendPath(""))
	assert.Equal(t, 0, s.Depth())
}
