package doctor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskroll/internal/core/config"
	"github.com/colonyops/taskroll/internal/core/docstore/memstore"
	"github.com/colonyops/taskroll/internal/core/history"
)

func TestConfigCheck(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Root = t.TempDir()
		cfg.DataDir = t.TempDir()

		result := NewConfigCheck(&cfg, "").Run(context.Background())
		require.Len(t, result.Items, 1)
		assert.Equal(t, StatusPass, result.Items[0].Status)
	})

	t.Run("field errors", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Root = t.TempDir()
		cfg.DataDir = t.TempDir()
		cfg.AggregateFilename = "notes/TODO.md"

		result := NewConfigCheck(&cfg, "").Run(context.Background())
		require.Len(t, result.Items, 1)
		assert.Equal(t, StatusFail, result.Items[0].Status)
		assert.Equal(t, "aggregate_filename", result.Items[0].Label)
	})

	t.Run("warnings", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Root = t.TempDir()
		cfg.DataDir = t.TempDir()
		cfg.Include.NotStarted = false
		cfg.Include.InProgress = false

		result := NewConfigCheck(&cfg, "").Run(context.Background())
		require.Len(t, result.Items, 2)
		assert.Equal(t, StatusPass, result.Items[0].Status)
		assert.Equal(t, StatusWarn, result.Items[1].Status)
	})
}

func TestVaultCheck(t *testing.T) {
	t.Run("documents found", func(t *testing.T) {
		s := memstore.New().AddDocument("a.md", "- [ ] one", time.Time{})

		result := NewVaultCheck(t.TempDir(), s).Run(context.Background())
		require.Len(t, result.Items, 2)
		assert.Equal(t, StatusPass, result.Items[1].Status)
		assert.Equal(t, "1 found", result.Items[1].Detail)
	})

	t.Run("empty vault", func(t *testing.T) {
		result := NewVaultCheck(t.TempDir(), memstore.New()).Run(context.Background())
		require.Len(t, result.Items, 2)
		assert.Equal(t, StatusWarn, result.Items[1].Status)
	})

	t.Run("missing root", func(t *testing.T) {
		result := NewVaultCheck("/nonexistent/vault/abc123", memstore.New()).Run(context.Background())
		require.Len(t, result.Items, 1)
		assert.Equal(t, StatusFail, result.Items[0].Status)
		assert.Contains(t, result.Items[0].Detail, "does not exist")
	})

	t.Run("root is a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "vault")
		require.NoError(t, os.WriteFile(file, nil, 0o644))

		result := NewVaultCheck(file, memstore.New()).Run(context.Background())
		require.Len(t, result.Items, 1)
		assert.Equal(t, StatusFail, result.Items[0].Status)
		assert.Contains(t, result.Items[0].Detail, "not a directory")
	})
}

func TestAggregateCheck(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		store       *memstore.Store
		autofix     bool
		wantStatus  Status
		wantFixable bool
	}{
		{
			name:       "exists",
			store:      memstore.New().AddDocument("TODO.md", "", time.Time{}),
			wantStatus: StatusPass,
		},
		{
			name:        "missing",
			store:       memstore.New(),
			wantStatus:  StatusWarn,
			wantFixable: true,
		},
		{
			name:       "missing with autofix",
			store:      memstore.New(),
			autofix:    true,
			wantStatus: StatusPass,
		},
		{
			name:       "folder",
			store:      memstore.New().AddFolder("TODO.md"),
			wantStatus: StatusFail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewAggregateCheck(tt.store, "TODO.md", tt.autofix).Run(ctx)
			require.Len(t, result.Items, 1)
			assert.Equal(t, tt.wantStatus, result.Items[0].Status)
			assert.Equal(t, tt.wantFixable, result.Items[0].Fixable)
		})
	}

	t.Run("autofix creates the document", func(t *testing.T) {
		s := memstore.New()
		NewAggregateCheck(s, "TODO.md", true).Run(ctx)
		assert.True(t, s.Exists(ctx, "TODO.md"))
	})
}

type fakeHistory struct {
	history.Store
	runs []history.Run
	err  error
}

func (f fakeHistory) List(context.Context, int) ([]history.Run, error) {
	return f.runs, f.err
}

func TestHistoryCheck(t *testing.T) {
	started := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		store      history.Store
		wantItems  int
		wantStatus Status
		wantDetail string
	}{
		{
			name:       "disabled",
			store:      nil,
			wantItems:  1,
			wantStatus: StatusPass,
			wantDetail: "disabled",
		},
		{
			name:       "unreadable",
			store:      fakeHistory{err: errors.New("database is locked")},
			wantItems:  1,
			wantStatus: StatusFail,
			wantDetail: "database is locked",
		},
		{
			name:       "empty",
			store:      fakeHistory{},
			wantItems:  2,
			wantStatus: StatusPass,
			wantDetail: "no runs recorded",
		},
		{
			name: "last run failed",
			store: fakeHistory{runs: []history.Run{{
				Kind:      history.KindAggregate,
				Trigger:   history.TriggerWatch,
				StartedAt: started,
				Error:     "path is a folder",
			}}},
			wantItems:  2,
			wantStatus: StatusWarn,
			wantDetail: "aggregate watch at 2024-01-01T12:00:00Z: path is a folder",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewHistoryCheck(tt.store, "/data/taskroll.db").Run(context.Background())
			require.Len(t, result.Items, tt.wantItems)
			last := result.Items[len(result.Items)-1]
			assert.Equal(t, tt.wantStatus, last.Status)
			assert.Contains(t, last.Detail, tt.wantDetail)
		})
	}
}

type versionedHistory struct {
	fakeHistory
	version int
}

func (f versionedHistory) SchemaVersion(context.Context) (int, error) {
	return f.version, nil
}

func TestHistoryCheck_SchemaVersion(t *testing.T) {
	result := NewHistoryCheck(versionedHistory{version: 2}, "/data/taskroll.db").Run(context.Background())
	require.Len(t, result.Items, 2)
	assert.Equal(t, StatusPass, result.Items[0].Status)
	assert.Equal(t, "schema v2", result.Items[0].Detail)
}
