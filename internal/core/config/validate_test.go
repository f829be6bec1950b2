package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskroll/internal/core/todo"
)

// validConfig returns a Config with all required fields set for testing.
func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Root = t.TempDir()
	cfg.DataDir = t.TempDir()
	return &cfg
}

func fieldNames(errs criterio.FieldErrors) []string {
	names := make([]string, 0, len(errs))
	for _, fe := range errs {
		names = append(names, fe.Field)
	}
	return names
}

func TestValidateDeep_ValidConfig(t *testing.T) {
	cfg := validConfig(t)

	err := cfg.ValidateDeep("")
	assert.NoError(t, err, "expected valid config")
}

func TestValidateDeep_InvalidGlobs(t *testing.T) {
	cfg := validConfig(t)
	cfg.Documents.Include = []string{"**/*.md", "notes/[a"}
	cfg.Documents.Ignore = []string{"{unclosed"}

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.ElementsMatch(t, []string{"documents.include[1]", "documents.ignore[0]"}, fieldNames(fieldErrs))
	assert.Contains(t, fieldErrs[0].Err.Error(), "invalid glob")
}

func TestValidateDeep_FilenamesMustNotBePaths(t *testing.T) {
	cfg := validConfig(t)
	cfg.AggregateFilename = "notes/TODO.md"
	cfg.ExcludeFolderFilename = ""

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.ElementsMatch(t, []string{"aggregate_filename", "exclude_folder_filename"}, fieldNames(fieldErrs))
}

func TestValidateDeep_RootMustBeDirectory(t *testing.T) {
	cfg := validConfig(t)
	file := filepath.Join(t.TempDir(), "file.md")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	cfg.Root = file

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, []string{"root"}, fieldNames(fieldErrs))
	assert.Contains(t, fieldErrs[0].Err.Error(), "not a directory")
}

func TestValidateDeep_ConfigFileIsDirectory(t *testing.T) {
	cfg := validConfig(t)

	err := cfg.ValidateDeep(t.TempDir())

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, []string{"config_file"}, fieldNames(fieldErrs))
}

func TestValidateDeep_StructuralErrorFirst(t *testing.T) {
	cfg := validConfig(t)
	cfg.Scan.Workers = 0

	err := cfg.ValidateDeep("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scan.workers")
}

func TestWarnings(t *testing.T) {
	tests := []struct {
		name    string
		include todo.Include
		want    int
	}{
		{name: "defaults", include: DefaultConfig().Include, want: 0},
		{name: "nothing included", include: todo.Include{}, want: 1},
		{name: "everything included", include: todo.Include{NotStarted: true, InProgress: true, WontDo: true, Done: true}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			cfg.Include = tt.include
			assert.Len(t, cfg.Warnings(), tt.want)
		})
	}
}
