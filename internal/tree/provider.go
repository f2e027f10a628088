package tree

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/kilupskalvis/vimlantis/internal/models"
)

const debounceDelay = 200 * time.Millisecond

// Provider serves tree snapshots of one root directory. The last snapshot is
// cached and rebuilt on the next Tree call after Invalidate.
type Provider struct {
	root   string
	fs     billy.Filesystem
	ignore *IgnoreList
	logger *slog.Logger

	mu    sync.Mutex
	tree  []models.TreeNode
	valid bool
	subs  []func()
}

// NewProvider creates a provider for a directory on the local disk.
func NewProvider(root string, ignore *IgnoreList, logger *slog.Logger) *Provider {
	p := NewProviderFS(osfs.New(root), ignore, logger)
	p.root = root
	return p
}

// NewProviderFS creates a provider over an arbitrary billy filesystem.
// Watch is unavailable for providers without an on-disk root.
func NewProviderFS(fsys billy.Filesystem, ignore *IgnoreList, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{fs: fsys, ignore: ignore, logger: logger}
}

// Root returns the on-disk root, or "" for in-memory providers.
func (p *Provider) Root() string {
	return p.root
}

// FS returns the filesystem the provider reads from.
func (p *Provider) FS() billy.Filesystem {
	return p.fs
}

// Ignore returns the ignore list applied to every snapshot.
func (p *Provider) Ignore() *IgnoreList {
	return p.ignore
}

// Tree returns the current snapshot, building it if needed.
func (p *Provider) Tree() ([]models.TreeNode, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.valid {
		return p.tree, nil
	}

	start := time.Now()
	nodes, err := Build(p.fs, p.ignore)
	if err != nil {
		return nil, err
	}
	p.tree = nodes
	p.valid = true
	p.logger.Debug("built file tree", "nodes", models.CountNodes(nodes), "elapsed_ms", time.Since(start).Milliseconds())
	return nodes, nil
}

// Invalidate drops the cached snapshot.
func (p *Provider) Invalidate() {
	p.mu.Lock()
	p.valid = false
	p.tree = nil
	p.mu.Unlock()
}

// OnChange registers fn to run after the watcher invalidates the cache.
// Callbacks run on the watcher goroutine.
func (p *Provider) OnChange(fn func()) {
	p.mu.Lock()
	p.subs = append(p.subs, fn)
	p.mu.Unlock()
}

func (p *Provider) notify() {
	p.mu.Lock()
	subs := make([]func(), len(p.subs))
	copy(subs, p.subs)
	p.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// Watch invalidates the cache whenever an entry under the root is created,
// removed or renamed. It returns once the watcher is running; watching stops
// when ctx is cancelled.
func (p *Provider) Watch(ctx context.Context) error {
	if p.root == "" {
		return fmt.Errorf("watch: provider has no on-disk root")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(p.root); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", p.root, err)
	}
	p.addWatchTree(watcher, p.root)

	go p.watchLoop(ctx, watcher)
	return nil
}

func (p *Provider) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()

	var (
		mu      sync.Mutex
		timer   *time.Timer
		stopped bool
	)
	defer func() {
		mu.Lock()
		stopped = true
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if p.ignore.Match(filepath.Base(event.Name)) {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					p.addWatchTree(watcher, event.Name)
				}
			}

			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceDelay, func() {
				mu.Lock()
				done := stopped
				mu.Unlock()
				if done {
					return
				}
				p.Invalidate()
				p.logger.Info("file tree changed", "root", p.root)
				p.notify()
			})
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Warn("watcher error", "error", err)
		}
	}
}

// addWatchTree adds every non-ignored directory below dir to the watcher.
func (p *Provider) addWatchTree(watcher *fsnotify.Watcher, dir string) {
	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && p.ignore.Match(d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			p.logger.Debug("watch directory", "path", path, "error", err)
		}
		return nil
	})
}
