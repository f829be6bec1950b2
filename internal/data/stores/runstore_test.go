package stores

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskroll/internal/core/history"
	"github.com/colonyops/taskroll/internal/data/db"
)

func newRunStore(t *testing.T) *RunStore {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "taskroll.db"), db.DefaultOpenOptions())
	require.NoError(t, err, "Open")
	t.Cleanup(func() { _ = database.Close() })
	return NewRunStore(database)
}

func TestRunStore(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("record and get", func(t *testing.T) {
		store := newRunStore(t)

		run := history.Run{
			ID:        "run-1",
			Kind:      history.KindSync,
			Trigger:   history.TriggerWatch,
			StartedAt: base,
			Duration:  1500 * time.Millisecond,
			Documents: 3,
			Patched:   2,
			Error:     "write a.md: permission denied",
		}
		require.NoError(t, store.Record(ctx, run))

		got, err := store.Get(ctx, "run-1")
		require.NoError(t, err)
		assert.Equal(t, run.Kind, got.Kind)
		assert.Equal(t, run.Trigger, got.Trigger)
		assert.True(t, run.StartedAt.Equal(got.StartedAt))
		assert.Equal(t, run.Duration, got.Duration)
		assert.Equal(t, 3, got.Documents)
		assert.Equal(t, 2, got.Patched)
		assert.True(t, got.Failed())
	})

	t.Run("get not found", func(t *testing.T) {
		store := newRunStore(t)

		_, err := store.Get(ctx, "missing")
		assert.ErrorIs(t, err, history.ErrNotFound)
	})

	t.Run("record assigns id", func(t *testing.T) {
		store := newRunStore(t)

		require.NoError(t, store.Record(ctx, history.Run{Kind: history.KindAggregate, StartedAt: base}))

		runs, err := store.List(ctx, 0)
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.NotEmpty(t, runs[0].ID)
	})

	t.Run("list newest first with limit", func(t *testing.T) {
		store := newRunStore(t)

		for i, id := range []string{"first", "second", "third"} {
			require.NoError(t, store.Record(ctx, history.Run{
				ID:        id,
				Kind:      history.KindAggregate,
				Trigger:   history.TriggerManual,
				StartedAt: base.Add(time.Duration(i) * time.Minute),
				Todos:     i,
			}))
		}

		runs, err := store.List(ctx, 2)
		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.Equal(t, "third", runs[0].ID)
		assert.Equal(t, "second", runs[1].ID)

		all, err := store.List(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("prune keeps newest", func(t *testing.T) {
		store := newRunStore(t)

		for i := range 5 {
			require.NoError(t, store.Record(ctx, history.Run{
				Kind:      history.KindAggregate,
				StartedAt: base.Add(time.Duration(i) * time.Second),
				Todos:     i,
			}))
		}

		removed, err := store.Prune(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(3), removed)

		runs, err := store.List(ctx, 0)
		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.Equal(t, 4, runs[0].Todos)
		assert.Equal(t, 3, runs[1].Todos)

		removed, err = store.Prune(ctx, 0)
		require.NoError(t, err)
		assert.Zero(t, removed, "keep 0 retains everything")

		removed, err = store.Prune(ctx, 5)
		require.NoError(t, err)
		assert.Zero(t, removed, "nothing to prune below the limit")
	})

	t.Run("reset removes every run", func(t *testing.T) {
		store := newRunStore(t)

		for i := range 3 {
			require.NoError(t, store.Record(ctx, history.Run{
				Kind:      history.KindSync,
				StartedAt: base.Add(time.Duration(i) * time.Second),
			}))
		}

		require.NoError(t, store.Reset(ctx))

		version, err := store.SchemaVersion(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, version, "reset migrates back to the latest schema")

		runs, err := store.List(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, runs)

		require.NoError(t, store.Record(ctx, history.Run{Kind: history.KindAggregate, StartedAt: base}))
		runs, err = store.List(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, runs, 1)
	})
}
