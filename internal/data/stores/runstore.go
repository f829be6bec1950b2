package stores

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/colonyops/taskroll/internal/core/history"
	"github.com/colonyops/taskroll/internal/data/db"
)

const (
	recordRetries = 3
	recordBackoff = 50 * time.Millisecond
)

// RunStore implements history.Store using SQLite.
type RunStore struct {
	db *db.DB
}

var _ history.Store = (*RunStore)(nil)

// NewRunStore creates a new SQLite-backed run store.
func NewRunStore(db *db.DB) *RunStore {
	return &RunStore{db: db}
}

// Record saves a run, retrying briefly when another process holds the lock.
func (s *RunStore) Record(ctx context.Context, run history.Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	var err error
	wait := recordBackoff
	for range recordRetries {
		_, err = s.db.Conn().ExecContext(ctx, `
			INSERT OR REPLACE INTO runs
				(id, kind, triggered_by, started_at, duration_ns, documents, todos, patched, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, string(run.Kind), string(run.Trigger), run.StartedAt.UnixNano(),
			int64(run.Duration), run.Documents, run.Todos, run.Patched, run.Error,
		)
		if err == nil || !IsBusyError(err) {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
			wait *= 2
		}
	}
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	return nil
}

// Get returns a run by ID. Returns history.ErrNotFound if not found.
func (s *RunStore) Get(ctx context.Context, id string) (history.Run, error) {
	row := s.db.Conn().QueryRowContext(ctx, `
		SELECT id, kind, triggered_by, started_at, duration_ns, documents, todos, patched, error
		FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if IsNotFoundError(err) {
		return history.Run{}, history.ErrNotFound
	}
	if err != nil {
		return history.Run{}, fmt.Errorf("get run: %w", err)
	}

	return run, nil
}

// List returns up to limit runs ordered by newest first.
func (s *RunStore) List(ctx context.Context, limit int) ([]history.Run, error) {
	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}

	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT id, kind, triggered_by, started_at, duration_ns, documents, todos, patched, error
		FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []history.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// Prune keeps the newest keep runs. A keep of 0 or less removes nothing.
func (s *RunStore) Prune(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}

	var removed int64
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var total int64
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&total); err != nil {
			return err
		}
		if total <= int64(keep) {
			return nil
		}

		res, err := tx.ExecContext(ctx, `
			DELETE FROM runs WHERE id NOT IN (
				SELECT id FROM runs ORDER BY started_at DESC, id LIMIT ?
			)`, keep)
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}

	return removed, nil
}

// Reset deletes every run by rebuilding the schema from its migrations.
func (s *RunStore) Reset(ctx context.Context) error {
	if err := s.db.Reset(ctx); err != nil {
		return fmt.Errorf("reset history: %w", err)
	}
	return nil
}

// SchemaVersion reports the applied schema version of the history database.
func (s *RunStore) SchemaVersion(ctx context.Context) (int, error) {
	return s.db.SchemaVersion(ctx)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (history.Run, error) {
	var (
		run       history.Run
		kind      string
		trigger   string
		startedAt int64
		duration  int64
	)

	err := row.Scan(&run.ID, &kind, &trigger, &startedAt, &duration,
		&run.Documents, &run.Todos, &run.Patched, &run.Error)
	if err != nil {
		return history.Run{}, err
	}

	run.Kind = history.Kind(kind)
	run.Trigger = history.Trigger(trigger)
	run.StartedAt = time.Unix(0, startedAt)
	run.Duration = time.Duration(duration)
	return run, nil
}
