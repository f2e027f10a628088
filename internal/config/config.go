// Package config loads vimlantis settings from a TOML file.
// A project file in the working directory or one of its parents wins over
// the per-user file in the home directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
)

const (
	ProjectFile = ".vimlantis.toml"
	UserDir     = "~/.vimlantis"
	UserFile    = "config.toml"
	DefaultPort = 3000

	DefaultHistorySize = 500
)

// Config represents the vimlantis configuration
type Config struct {
	Port         int      `toml:"port"`
	Editor       string   `toml:"editor,omitempty"`        // editor command, may carry arguments
	EditorServer string   `toml:"editor_server,omitempty"` // address of a running nvim
	OpenBrowser  bool     `toml:"open_browser"`
	Ignore       []string `toml:"ignore,omitempty"` // names hidden in addition to the defaults
	PublicDir    string   `toml:"public_dir,omitempty"`
	DataDir      string   `toml:"data_dir"`
	HistorySize  int      `toml:"history_size"` // opens kept on disk, 0 keeps all
	LogLevel     string   `toml:"log_level"`
	LogFormat    string   `toml:"log_format"`
	Watch        bool     `toml:"watch"`
	path         string   // file the config was loaded from
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:        DefaultPort,
		DataDir:     UserDir,
		HistorySize: DefaultHistorySize,
		LogLevel:    "info",
		LogFormat:   "text",
		Watch:       true,
	}
}

// UserConfigPath returns the per-user config file location.
func UserConfigPath() (string, error) {
	dir, err := homedir.Expand(UserDir)
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(dir, UserFile), nil
}

// Find looks for .vimlantis.toml by walking up from start, then for the
// per-user file. It returns "" when neither exists.
func Find(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, ProjectFile)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	user, err := UserConfigPath()
	if err != nil {
		return "", nil
	}
	if _, err := os.Stat(user); err == nil {
		return user, nil
	}
	return "", nil
}

// Load reads the configuration at path on top of the defaults. A missing
// file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.path = path
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Discover finds and loads the configuration that applies to dir.
func Discover(dir string) (*Config, error) {
	path, err := Find(dir)
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// Save writes the configuration back to the file it was loaded from.
func (c *Config) Save() error {
	if c.path == "" {
		return errors.New("config has no file path")
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(c.path, data, 0644)
}

// Path returns the file the config was loaded from, or "".
func (c *Config) Path() string {
	return c.path
}

// SetPath changes where Save writes.
func (c *Config) SetPath(path string) {
	c.path = path
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.HistorySize < 0 {
		return fmt.Errorf("history_size %d must not be negative", c.HistorySize)
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log_format %q", c.LogFormat)
	}
	return nil
}

// DataPath returns the data directory with ~ expanded.
func (c *Config) DataPath() (string, error) {
	return ExpandPath(c.DataDir)
}

// PublicPath returns the front-end directory with ~ expanded.
func (c *Config) PublicPath() (string, error) {
	return ExpandPath(c.PublicDir)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	expanded, err := homedir.Expand(p)
	if err != nil {
		return "", fmt.Errorf("expand %q: %w", p, err)
	}
	return expanded, nil
}
