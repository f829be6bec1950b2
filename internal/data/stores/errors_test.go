package stores

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskroll/internal/data/db"
)

func TestIsNotFoundError(t *testing.T) {
	assert.True(t, IsNotFoundError(fmt.Errorf("get: %w", sql.ErrNoRows)))
	assert.False(t, IsNotFoundError(errors.New("other")))
}

func TestIsCorruptionError(t *testing.T) {
	assert.False(t, IsCorruptionError(nil))
	assert.True(t, IsCorruptionError(errors.New("file is not a database (26)")))
	assert.False(t, IsCorruptionError(errors.New("disk full")))
}

func TestRecoverFromCorruption(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taskroll.db")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))
	require.NoError(t, os.WriteFile(path+"-wal", []byte("garbage"), 0o644))

	require.NoError(t, RecoverFromCorruption(path))

	assert.NoFileExists(t, path)
	assert.NoFileExists(t, path+"-wal")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "database and WAL are moved aside")
}

func TestRecoverFromCorruption_Missing(t *testing.T) {
	assert.NoError(t, RecoverFromCorruption(filepath.Join(t.TempDir(), "taskroll.db")))
}

func TestOpen_RecoversCorruptDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskroll.db")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("not a database ", 1024)), 0o644))

	database, err := Open(path, db.DefaultOpenOptions(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	_, err = database.Conn().Exec("SELECT 1 FROM runs LIMIT 0")
	assert.NoError(t, err)
}
