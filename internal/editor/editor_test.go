package editor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	wait bool
	dir  string
	name string
	args []string
}

type fakeRunner struct {
	mu       sync.Mutex
	calls    []call
	runErr   error
	startErr error
}

func (f *fakeRunner) Run(_ context.Context, dir, name string, args ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{wait: true, dir: dir, name: name, args: args})
	return f.runErr
}

func (f *fakeRunner) Start(dir, name string, args ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{dir: dir, name: name, args: args})
	return f.startErr
}

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func onPath(names ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, n := range names {
			if n == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", errors.New("not found")
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestResolve_Order(t *testing.T) {
	all := env(map[string]string{"VISUAL": "emacs", "EDITOR": "nano"})

	cmd, err := Resolve("hx", all, onPath())
	require.NoError(t, err)
	assert.Equal(t, []string{"hx"}, cmd)

	cmd, err = Resolve("", all, onPath())
	require.NoError(t, err)
	assert.Equal(t, []string{"emacs"}, cmd)

	cmd, err = Resolve("", env(map[string]string{"EDITOR": "nano"}), onPath())
	require.NoError(t, err)
	assert.Equal(t, []string{"nano"}, cmd)

	cmd, err = Resolve("", env(nil), onPath("vi", "vim"))
	require.NoError(t, err)
	assert.Equal(t, []string{"vim"}, cmd)
}

func TestResolve_ParsesArguments(t *testing.T) {
	cmd, err := Resolve(`code --wait --user-data-dir "/tmp/my dir"`, env(nil), onPath())
	require.NoError(t, err)
	assert.Equal(t, []string{"code", "--wait", "--user-data-dir", "/tmp/my dir"}, cmd)
}

func TestResolve_NoEditor(t *testing.T) {
	_, err := Resolve("  ", env(nil), onPath())
	assert.ErrorIs(t, err, ErrNoEditor)
}

func TestResolve_BadQuoting(t *testing.T) {
	_, err := Resolve(`code "unterminated`, env(nil), onPath())
	assert.Error(t, err)
}

func TestLauncher_SpawnsEditor(t *testing.T) {
	runner := &fakeRunner{}
	l, err := New(Options{
		Editor: "code --wait",
		Dir:    "/repo",
		Runner: runner,
		Logger: quietLogger(),
	})
	require.NoError(t, err)
	assert.Equal(t, "code", l.Name())

	require.NoError(t, l.Open(context.Background(), "/repo/main.go"))
	require.Len(t, runner.calls, 1)
	assert.Equal(t, call{dir: "/repo", name: "code", args: []string{"--wait", "/repo/main.go"}}, runner.calls[0])

	// the fixed arguments are not modified by earlier opens
	require.NoError(t, l.Open(context.Background(), "/repo/b.go"))
	assert.Equal(t, []string{"--wait", "/repo/b.go"}, runner.calls[1].args)
	assert.Equal(t, []string{"code", "--wait"}, l.Command())
}

func TestLauncher_RemoteNvim(t *testing.T) {
	runner := &fakeRunner{}
	l, err := New(Options{
		Editor: "nvim",
		Server: "/tmp/nvim.sock",
		Dir:    "/repo",
		Runner: runner,
		Logger: quietLogger(),
	})
	require.NoError(t, err)

	require.NoError(t, l.Open(context.Background(), "/repo/main.go"))
	require.Len(t, runner.calls, 1)
	c := runner.calls[0]
	assert.True(t, c.wait)
	assert.Equal(t, "nvim", c.name)
	assert.Equal(t, []string{"--server", "/tmp/nvim.sock", "--remote", "/repo/main.go"}, c.args)
}

func TestLauncher_RemoteFailureFallsBack(t *testing.T) {
	runner := &fakeRunner{runErr: errors.New("connection refused")}
	l, err := New(Options{
		Editor: "/usr/local/bin/nvim",
		Server: "127.0.0.1:6666",
		Runner: runner,
		Logger: quietLogger(),
	})
	require.NoError(t, err)

	require.NoError(t, l.Open(context.Background(), "/repo/main.go"))
	require.Len(t, runner.calls, 2)
	assert.True(t, runner.calls[0].wait)
	assert.False(t, runner.calls[1].wait)
	assert.Equal(t, []string{"/repo/main.go"}, runner.calls[1].args)
}

func TestLauncher_ServerIgnoredForOtherEditors(t *testing.T) {
	runner := &fakeRunner{}
	l, err := New(Options{Editor: "vim", Server: "/tmp/nvim.sock", Runner: runner, Logger: quietLogger()})
	require.NoError(t, err)

	require.NoError(t, l.Open(context.Background(), "/repo/a.txt"))
	require.Len(t, runner.calls, 1)
	assert.False(t, runner.calls[0].wait)
}

func TestLauncher_StartFailure(t *testing.T) {
	runner := &fakeRunner{startErr: errors.New("exec: not found")}
	l, err := New(Options{Editor: "nvim", Runner: runner, Logger: quietLogger()})
	require.NoError(t, err)

	err = l.Open(context.Background(), "/repo/a.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "launch nvim")
}

func TestNew_NoEditor(t *testing.T) {
	_, err := New(Options{Getenv: env(nil), LookPath: onPath()})
	assert.ErrorIs(t, err, ErrNoEditor)
}
