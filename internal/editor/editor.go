// Package editor launches the user's editor on files picked in the ocean.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-shellwords"
)

// ErrNoEditor is returned when no editor is configured and none of the
// fallback editors is installed.
var ErrNoEditor = errors.New("no editor found")

// fallbackEditors are tried in order when neither an override nor the
// environment names an editor.
var fallbackEditors = []string{"nvim", "vim", "vi"}

const remoteTimeout = 5 * time.Second

// Runner starts external processes.
type Runner interface {
	// Run executes the command and waits for it to exit.
	Run(ctx context.Context, dir, name string, args ...string) error
	// Start launches the command without waiting for it.
	Start(dir, name string, args ...string) error
}

// ExecRunner runs processes with os/exec, attached to the server's terminal.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Start implements Runner. The child is reaped in the background.
func (ExecRunner) Start(dir, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// Options configure a Launcher.
type Options struct {
	// Editor overrides $VISUAL and $EDITOR. It may carry arguments,
	// e.g. "code --wait".
	Editor string
	// Server is the address of a running nvim instance to send files to.
	Server string
	// Dir is the working directory of spawned editors.
	Dir string

	Runner   Runner
	Logger   *slog.Logger
	Getenv   func(string) string
	LookPath func(string) (string, error)
}

// Launcher opens files in the resolved editor.
type Launcher struct {
	command []string
	server  string
	dir     string
	runner  Runner
	logger  *slog.Logger
}

// New resolves the editor and returns a launcher for it.
func New(opts Options) (*Launcher, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	lookPath := opts.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	command, err := Resolve(opts.Editor, getenv, lookPath)
	if err != nil {
		return nil, err
	}

	runner := opts.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Launcher{
		command: command,
		server:  opts.Server,
		dir:     opts.Dir,
		runner:  runner,
		logger:  logger,
	}, nil
}

// Resolve picks the editor command: override, then $VISUAL, then $EDITOR,
// then the first of nvim, vim and vi found on PATH.
func Resolve(override string, getenv func(string) string, lookPath func(string) (string, error)) ([]string, error) {
	for _, candidate := range []string{override, getenv("VISUAL"), getenv("EDITOR")} {
		if strings.TrimSpace(candidate) == "" {
			continue
		}
		args, err := shellwords.Parse(candidate)
		if err != nil {
			return nil, fmt.Errorf("parse editor command %q: %w", candidate, err)
		}
		if len(args) > 0 {
			return args, nil
		}
	}

	for _, name := range fallbackEditors {
		if _, err := lookPath(name); err == nil {
			return []string{name}, nil
		}
	}
	return nil, ErrNoEditor
}

// Name returns the editor executable name, e.g. "nvim".
func (l *Launcher) Name() string {
	return filepath.Base(l.command[0])
}

// Command returns the editor command and its fixed arguments.
func (l *Launcher) Command() []string {
	return append([]string(nil), l.command...)
}

// Open opens fullPath. With a remote server address and nvim as the
// editor the file is sent to the running instance; if that fails, or in
// any other case, a new editor process is started.
func (l *Launcher) Open(ctx context.Context, fullPath string) error {
	if l.server != "" && l.isNvim() {
		rctx, cancel := context.WithTimeout(ctx, remoteTimeout)
		err := l.runner.Run(rctx, l.dir, l.command[0], "--server", l.server, "--remote", fullPath)
		cancel()
		if err == nil {
			l.logger.Debug("sent file to remote editor", "server", l.server, "path", fullPath)
			return nil
		}
		l.logger.Warn("remote editor unavailable, starting a new one",
			"server", l.server, "error", err)
	}

	args := append(l.command[1:len(l.command):len(l.command)], fullPath)
	if err := l.runner.Start(l.dir, l.command[0], args...); err != nil {
		return fmt.Errorf("launch %s: %w", l.Name(), err)
	}
	l.logger.Debug("started editor", "editor", l.Name(), "path", fullPath)
	return nil
}

func (l *Launcher) isNvim() bool {
	return strings.TrimSuffix(l.Name(), ".exe") == "nvim"
}
