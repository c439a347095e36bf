// Package config loads project settings from .treeflat/config.yaml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/treeflat/pkg/node"
	"github.com/vanderheijden86/treeflat/pkg/treestate"
)

const (
	// DirName is the project directory holding the document, config and state.
	DirName = ".treeflat"
	// FileName is the config file inside DirName.
	FileName = "config.yaml"
	// DefaultDocument is the tree document used when none is configured.
	DefaultDocument = "tree.yaml"
	// DefaultDebounce is the quiet period before a changed document reloads.
	DefaultDebounce = 250 * time.Millisecond
)

// Config represents a project configuration file (.treeflat/config.yaml)
type Config struct {
	// Document is the tree document, relative to the .treeflat directory or
	// absolute (default: tree.yaml)
	Document string `yaml:"document,omitempty" json:"document,omitempty"`

	// Preview is the default preview size for preview_enabled nodes
	// (default: 6). Negative shows every child, zero never previews.
	Preview *int `yaml:"preview,omitempty" json:"preview,omitempty"`

	// StateFile is where expand state is persisted, relative to the
	// .treeflat directory or absolute (default: tree-state.json)
	StateFile string `yaml:"state_file,omitempty" json:"state_file,omitempty"`

	// Watch reloads the view when the document changes on disk (default: true)
	Watch *bool `yaml:"watch,omitempty" json:"watch,omitempty"`

	// Debounce is the quiet period before a reload, e.g. "250ms"
	Debounce time.Duration `yaml:"debounce,omitempty" json:"debounce,omitempty"`

	// root is the project directory containing .treeflat
	root string
}

// Default returns the configuration used when no file exists.
func Default(root string) *Config {
	return &Config{root: root}
}

// Root returns the project directory the config was loaded for.
func (c *Config) Root() string {
	return c.root
}

// Dir returns the .treeflat directory.
func (c *Config) Dir() string {
	return filepath.Join(c.root, DirName)
}

// DocumentPath returns the effective tree document path.
func (c *Config) DocumentPath() string {
	return c.resolve(c.Document, DefaultDocument)
}

// StatePath returns the effective state file path.
func (c *Config) StatePath() string {
	return c.resolve(c.StateFile, treestate.FileName)
}

// PreviewCount returns the effective default preview size.
func (c *Config) PreviewCount() int {
	if c.Preview == nil {
		return node.DefaultPreviewCount
	}
	return *c.Preview
}

// WatchEnabled returns whether document changes trigger a reload.
func (c *Config) WatchEnabled() bool {
	if c.Watch == nil {
		return true
	}
	return *c.Watch
}

// DebounceDuration returns the effective reload debounce.
func (c *Config) DebounceDuration() time.Duration {
	if c.Debounce <= 0 {
		return DefaultDebounce
	}
	return c.Debounce
}

func (c *Config) resolve(path, fallback string) string {
	if path == "" {
		path = fallback
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.Debounce < 0 {
		return fmt.Errorf("debounce must not be negative, got %s", c.Debounce)
	}
	if filepath.Ext(c.Document) != "" && c.Document == c.StateFile {
		return fmt.Errorf("document and state_file must differ, both are %q", c.Document)
	}
	return nil
}

// Load reads root/.treeflat/config.yaml. A missing file yields defaults.
func Load(root string) (*Config, error) {
	path := filepath.Join(root, DirName, FileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(root), nil
	}
	if err != nil {
		return nil, err
	}

	cfg := Default(root)
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to root/.treeflat/config.yaml.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(c.Dir(), 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.Dir(), FileName), data, 0o644)
}
