package tree

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/kilupskalvis/vimlantis/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemFS(t *testing.T, files ...string) billy.Filesystem {
	t.Helper()
	fsys := memfs.New()
	for _, f := range files {
		if f[len(f)-1] == '/' {
			require.NoError(t, fsys.MkdirAll(f, 0755))
			continue
		}
		require.NoError(t, util.WriteFile(fsys, f, []byte("x"), 0644))
	}
	return fsys
}

func names(nodes []models.TreeNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func TestBuild_FiltersIgnoredEntries(t *testing.T) {
	fsys := newMemFS(t,
		".git/HEAD",
		"node_modules/left-pad/index.js",
		"a.txt",
	)

	nodes, err := Build(fsys, DefaultIgnoreList())
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, models.TreeNode{Name: "a.txt", Path: "a.txt", Kind: models.KindFile}, nodes[0])
}

func TestBuild_NestedPathsAndOrder(t *testing.T) {
	fsys := newMemFS(t,
		"src/main.go",
		"src/util/strings.go",
		"src/util/cache.pyc",
		"docs/",
		"README.md",
	)

	nodes, err := Build(fsys, DefaultIgnoreList())
	require.NoError(t, err)
	assert.Equal(t, []string{"README.md", "docs", "src"}, names(nodes))

	docs := nodes[1]
	assert.Equal(t, models.KindDirectory, docs.Kind)
	assert.Empty(t, docs.Children)

	src := nodes[2]
	assert.Equal(t, []string{"main.go", "util"}, names(src.Children))
	utilDir := src.Children[1]
	assert.Equal(t, "src/util", utilDir.Path)
	require.Len(t, utilDir.Children, 1)
	assert.Equal(t, "src/util/strings.go", utilDir.Children[0].Path)
}

func TestBuild_NilIgnoreKeepsEverything(t *testing.T) {
	fsys := newMemFS(t, ".git/HEAD", "a.txt")

	nodes, err := Build(fsys, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{".git", "a.txt"}, names(nodes))
}

func TestIgnoreList_Match(t *testing.T) {
	l := NewIgnoreList("vendor", "*.log", "  ", "*")

	assert.True(t, l.Match("vendor"))
	assert.True(t, l.Match("debug.log"))
	assert.False(t, l.Match("vendored"))
	assert.False(t, l.Match("log"))
	assert.Equal(t, []string{"*.log", "vendor"}, l.Patterns())

	var none *IgnoreList
	assert.False(t, none.Match(".git"))
}

func TestDefaultIgnoreList(t *testing.T) {
	l := DefaultIgnoreList()
	for _, name := range []string{".git", "node_modules", ".DS_Store", "dist", "__pycache__", "x.pyc", ".next"} {
		assert.True(t, l.Match(name), name)
	}
	assert.False(t, l.Match("main.go"))
}

func TestFind(t *testing.T) {
	fsys := newMemFS(t, "a/b/c.txt", "ab.txt")
	nodes, err := Build(fsys, nil)
	require.NoError(t, err)

	n, ok := Find(nodes, "a/b/c.txt")
	require.True(t, ok)
	assert.Equal(t, "c.txt", n.Name)

	n, ok = Find(nodes, "a/b")
	require.True(t, ok)
	assert.True(t, n.IsDir())

	_, ok = Find(nodes, "a/x")
	assert.False(t, ok)
}

func TestProvider_CachesUntilInvalidated(t *testing.T) {
	fsys := newMemFS(t, "a.txt")
	p := NewProviderFS(fsys, DefaultIgnoreList(), nil)

	first, err := p.Tree()
	require.NoError(t, err)
	require.Len(t, first, 1)

	require.NoError(t, util.WriteFile(fsys, "b.txt", []byte("y"), 0644))

	cached, err := p.Tree()
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	p.Invalidate()
	fresh, err := p.Tree()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, names(fresh))
}

func TestProvider_WatchRequiresDiskRoot(t *testing.T) {
	p := NewProviderFS(memfs.New(), nil, nil)
	assert.Error(t, p.Watch(context.Background()))
}

func TestProvider_WatchInvalidatesOnCreate(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0644))

	p := NewProvider(root, DefaultIgnoreList(), nil)
	nodes, err := p.Tree()
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	var changes atomic.Int32
	p.OnChange(func() { changes.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, p.Watch(ctx))

	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0755))

	assert.Eventually(t, func() bool { return changes.Load() > 0 }, 5*time.Second, 20*time.Millisecond)

	nodes, err = p.Tree()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "sub"}, names(nodes))
}
