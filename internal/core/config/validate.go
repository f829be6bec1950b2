package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration including
// glob syntax, marker names, and file accessibility. The configPath argument
// specifies the config file location to validate (empty string skips config file check).
// This calls Validate() first for basic structural validation, then adds I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		c.validateFilenames(),
		c.validateGlobs(),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	inc := c.Include
	if !inc.NotStarted && !inc.InProgress && !inc.WontDo && !inc.Done {
		warnings = append(warnings, ValidationWarning{
			Category: "Include",
			Message:  "no task types are included, the aggregate document will always be empty",
		})
	}

	if inc.NotStarted && inc.InProgress && inc.WontDo && inc.Done {
		warnings = append(warnings, ValidationWarning{
			Category: "Include",
			Message:  "all task types are included, status edits in the aggregate document are never synced back",
		})
	}

	return warnings
}

// validateFileAccess checks the config file and the root and data directories.
func (c *Config) validateFileAccess(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("root", c.Root, c.rootIsDirectory),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

func (c *Config) validateFilenames() error {
	var errs criterio.FieldErrorsBuilder

	if strings.ContainsAny(c.AggregateFilename, `/\`) {
		errs = errs.Append("aggregate_filename", fmt.Errorf("must be a file name, not a path: %q", c.AggregateFilename))
	}

	if c.ExcludeFolderFilename == "" {
		errs = errs.Append("exclude_folder_filename", fmt.Errorf("cannot be empty"))
	} else if strings.ContainsAny(c.ExcludeFolderFilename, `/\`) {
		errs = errs.Append("exclude_folder_filename", fmt.Errorf("must be a file name, not a path: %q", c.ExcludeFolderFilename))
	}

	return errs.ToError()
}

// validateGlobs checks document include and ignore patterns are valid doublestar globs.
func (c *Config) validateGlobs() error {
	var errs criterio.FieldErrorsBuilder
	for i, pattern := range c.Documents.Include {
		if !doublestar.ValidatePattern(pattern) {
			errs = errs.Append(fmt.Sprintf("documents.include[%d]", i), fmt.Errorf("invalid glob %q", pattern))
		}
	}
	for i, pattern := range c.Documents.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			errs = errs.Append(fmt.Sprintf("documents.ignore[%d]", i), fmt.Errorf("invalid glob %q", pattern))
		}
	}
	return errs.ToError()
}

func (c *Config) rootIsDirectory(string) error {
	dir, err := c.RootDir()
	if err != nil {
		return err
	}
	return isDirectory(dir)
}

// isDirectory validates that a path exists and is a directory.
func isDirectory(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}
