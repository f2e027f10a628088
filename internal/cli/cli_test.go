package cli

import (
	"bytes"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilupskalvis/vimlantis/internal/config"
	"github.com/kilupskalvis/vimlantis/internal/models"
	"github.com/kilupskalvis/vimlantis/internal/scene"
)

func init() {
	color.NoColor = true
}

func sampleNodes() []models.TreeNode {
	return []models.TreeNode{
		{Name: "cmd", Path: "cmd", Kind: models.KindDirectory, Children: []models.TreeNode{
			{Name: "main.go", Path: "cmd/main.go", Kind: models.KindFile},
		}},
		{Name: "go.mod", Path: "go.mod", Kind: models.KindFile},
	}
}

func TestPrintTree(t *testing.T) {
	var buf bytes.Buffer
	dirs, files := printTree(&buf, sampleNodes(), "", 1, 0)

	assert.Equal(t, 1, dirs)
	assert.Equal(t, 2, files)
	assert.Equal(t, "├── cmd/\n│   └── main.go\n└── go.mod\n", buf.String())
}

func TestPrintTree_Depth(t *testing.T) {
	var buf bytes.Buffer
	dirs, files := printTree(&buf, sampleNodes(), "", 1, 1)

	assert.Equal(t, 1, dirs)
	assert.Equal(t, 1, files)
	assert.NotContains(t, buf.String(), "main.go")
}

func TestPrintLayout(t *testing.T) {
	var buf bytes.Buffer
	printLayout(&buf, nil)
	assert.Equal(t, "(empty directory)\n", buf.String())

	buf.Reset()
	markers := scene.Populate(sampleNodes(), rand.New(rand.NewPCG(1, 1)))
	printLayout(&buf, markers)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "lighthouse"))
	assert.True(t, strings.HasSuffix(lines[0], "cmd"))
	assert.True(t, strings.HasPrefix(lines[1], "buoy"))
}

func TestBrowserCommand(t *testing.T) {
	name, args := browserCommand("darwin", "http://localhost:3000")
	assert.Equal(t, "open", name)
	assert.Equal(t, []string{"http://localhost:3000"}, args)

	name, args = browserCommand("windows", "http://localhost:3000")
	assert.Equal(t, "cmd", name)
	assert.Equal(t, "http://localhost:3000", args[len(args)-1])

	name, _ = browserCommand("linux", "http://localhost:3000")
	assert.Equal(t, "xdg-open", name)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "warn", "json")
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"k":"v"`)

	buf.Reset()
	newLogger(&buf, "bogus", "text").Info("plain")
	assert.Contains(t, buf.String(), "msg=plain")
}

func TestProjectDir(t *testing.T) {
	dir := t.TempDir()
	got, err := projectDir([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	file := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	_, err = projectDir([]string{file})
	assert.Error(t, err)

	_, err = projectDir([]string{filepath.Join(dir, "missing")})
	assert.Error(t, err)
}

func TestIgnoreList(t *testing.T) {
	cfg := config.Default()
	cfg.Ignore = []string{"vendor"}
	ignore := ignoreList(cfg)
	assert.True(t, ignore.Match("vendor"))
	assert.True(t, ignore.Match(".git"))
	assert.False(t, ignore.Match("main.go"))
}

func TestApplyServeFlags(t *testing.T) {
	for _, env := range []string{"VIMLANTIS_PORT", "VIMLANTIS_EDITOR", "VIMLANTIS_NO_WATCH", "VIMLANTIS_LOG_LEVEL"} {
		t.Setenv(env, "")
	}
	cfg := config.Default()
	cfg.Editor = "from-file"
	cfg.Port = 4000

	require.NoError(t, serveCmd.Flags().Set("port", "5000"))
	require.NoError(t, serveCmd.Flags().Set("no-watch", "true"))
	t.Cleanup(func() {
		serveCmd.Flags().Set("port", "3000")
		serveCmd.Flags().Set("no-watch", "false")
		serveCmd.Flags().Lookup("port").Changed = false
		serveCmd.Flags().Lookup("no-watch").Changed = false
	})

	applyServeFlags(serveCmd, cfg)
	assert.Equal(t, 5000, cfg.Port)
	assert.False(t, cfg.Watch)
	assert.Equal(t, "from-file", cfg.Editor, "unset flags keep the file value")
}

func TestFormatEvent(t *testing.T) {
	at := time.Date(2024, 1, 2, 13, 4, 5, 0, time.UTC)

	assert.Equal(t, "13:04:05 open  src/main.go",
		formatEvent(at, models.Event{Type: models.EventOpenFile, Path: "src/main.go"}))
	assert.Equal(t, "13:04:05 tree changed",
		formatEvent(at, models.Event{Type: models.EventTreeChanged}))
}

func TestMatchPaths(t *testing.T) {
	nodes := sampleNodes()

	assert.Equal(t, []string{"cmd/", "cmd/main.go", "go.mod"}, matchPaths(nodes, "", false))
	assert.Equal(t, []string{"cmd/"}, matchPaths(nodes, "", true))
	assert.Equal(t, []string{"cmd/main.go"}, matchPaths(nodes, "cmd/m", false))
	assert.Empty(t, matchPaths(nodes, "zzz", false))
}

func TestWriteCompletion(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		var buf bytes.Buffer
		require.NoError(t, writeCompletion(&buf, shell), shell)
		assert.Contains(t, buf.String(), "vimlantis", shell)
	}
	assert.Error(t, writeCompletion(io.Discard, "tcsh"))
}
