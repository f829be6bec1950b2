// Package config handles configuration loading and validation for taskroll.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/taskroll/internal/core/todo"
)

// Config holds the application configuration.
type Config struct {
	Root                  string          `yaml:"root"`
	AggregateFilename     string          `yaml:"aggregate_filename"`
	ExcludeFilePattern    string          `yaml:"exclude_file_pattern"`
	ExcludeFolderFilename string          `yaml:"exclude_folder_filename"`
	UseFullFilepath       bool            `yaml:"use_full_filepath"`
	Include               todo.Include    `yaml:"include"`
	Documents             DocumentsConfig `yaml:"documents"`
	Scan                  ScanConfig      `yaml:"scan"`
	Watch                 WatchConfig     `yaml:"watch"`
	History               HistoryConfig   `yaml:"history"`
	DataDir               string          `yaml:"-"` // set by caller, not from config file
}

// DocumentsConfig selects which files in the root are source documents.
type DocumentsConfig struct {
	Include []string `yaml:"include"` // doublestar globs
	Ignore  []string `yaml:"ignore"`  // doublestar globs
}

// ScanConfig tunes document scanning.
type ScanConfig struct {
	Workers int `yaml:"workers"`
}

// WatchConfig tunes the file watcher.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// HistoryConfig controls the run history database.
type HistoryConfig struct {
	Enabled bool `yaml:"enabled"`
	Keep    int  `yaml:"keep"` // runs retained after each record, 0 keeps all
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Root:                  ".",
		AggregateFilename:     "TODO.md",
		ExcludeFilePattern:    "<!-- exclude TODO -->",
		ExcludeFolderFilename: ".exclude_todos",
		Include: todo.Include{
			NotStarted: true,
			InProgress: true,
		},
		Documents: DocumentsConfig{
			Include: []string{"**/*.md"},
			Ignore:  []string{".git/**", ".obsidian/**", ".trash/**"},
		},
		Scan: ScanConfig{
			Workers: 8,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
		History: HistoryConfig{
			Enabled: true,
			Keep:    500,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Root == "" {
		c.Root = defaults.Root
	}
	if c.AggregateFilename == "" {
		c.AggregateFilename = defaults.AggregateFilename
	}
	if len(c.Documents.Include) == 0 {
		c.Documents.Include = defaults.Documents.Include
	}
	if c.Scan.Workers == 0 {
		c.Scan.Workers = defaults.Scan.Workers
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = defaults.Watch.Debounce
	}
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	if c.AggregateFilename == "" {
		return fmt.Errorf("aggregate_filename cannot be empty")
	}

	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.Scan.Workers < 1 {
		return fmt.Errorf("scan.workers must be at least 1")
	}

	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce cannot be negative")
	}

	if c.History.Keep < 0 {
		return fmt.Errorf("history.keep cannot be negative")
	}

	return nil
}

// FormatOptions returns the aggregate rendering options.
func (c *Config) FormatOptions() todo.FormatOptions {
	return todo.FormatOptions{
		Include:      c.Include,
		UseFullPaths: c.UseFullFilepath,
	}
}

// RootDir returns the absolute vault root, expanding a leading "~".
func (c *Config) RootDir() (string, error) {
	root := c.Root
	if len(root) > 0 && root[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		root = filepath.Join(home, root[1:])
	}
	return filepath.Abs(root)
}

// HistoryFile returns the path to the run history database.
func (c *Config) HistoryFile() string {
	return filepath.Join(c.DataDir, "taskroll.db")
}
