package initcmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/taskroll/internal/core/config"
	"github.com/colonyops/taskroll/internal/core/todo"
)

const configHeader = `# taskroll configuration
# Generated by 'taskroll init'. Run 'taskroll config validate' after editing.
#
# Settings not listed here use their defaults. A .taskroll.yaml file in the
# vault root overrides this file for that vault.

`

// Answers are the choices collected by the wizard.
type Answers struct {
	Root                  string
	AggregateFilename     string
	ExcludeFilePattern    string
	ExcludeFolderFilename string
	UseFullFilepath       bool
	Include               todo.Include
	History               bool
}

// DefaultAnswers returns the answers matching the built-in defaults.
func DefaultAnswers() Answers {
	cfg := config.DefaultConfig()
	return Answers{
		Root:                  cfg.Root,
		AggregateFilename:     cfg.AggregateFilename,
		ExcludeFilePattern:    cfg.ExcludeFilePattern,
		ExcludeFolderFilename: cfg.ExcludeFolderFilename,
		UseFullFilepath:       cfg.UseFullFilepath,
		Include:               cfg.Include,
		History:               cfg.History.Enabled,
	}
}

// fileConfig is the subset of config.Config written by init, in file order.
type fileConfig struct {
	Root                  string               `yaml:"root"`
	AggregateFilename     string               `yaml:"aggregate_filename"`
	ExcludeFilePattern    string               `yaml:"exclude_file_pattern"`
	ExcludeFolderFilename string               `yaml:"exclude_folder_filename"`
	UseFullFilepath       bool                 `yaml:"use_full_filepath"`
	Include               todo.Include         `yaml:"include"`
	History               config.HistoryConfig `yaml:"history"`
}

// GenerateConfig renders answers as a commented YAML config file.
func GenerateConfig(a Answers) ([]byte, error) {
	fc := fileConfig{
		Root:                  a.Root,
		AggregateFilename:     a.AggregateFilename,
		ExcludeFilePattern:    a.ExcludeFilePattern,
		ExcludeFolderFilename: a.ExcludeFolderFilename,
		UseFullFilepath:       a.UseFullFilepath,
		Include:               a.Include,
		History: config.HistoryConfig{
			Enabled: a.History,
			Keep:    config.DefaultConfig().History.Keep,
		},
	}

	var buf bytes.Buffer
	buf.WriteString(configHeader)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fc); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteConfig writes data to configPath, creating parent directories.
func WriteConfig(data []byte, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(configPath, data, 0o644)
}
