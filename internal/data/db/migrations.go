package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"slices"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrationFileRe matches NNNN_name.up.sql and NNNN_name.down.sql.
var migrationFileRe = regexp.MustCompile(`^(\d{4})_([a-z0-9_]+)\.(up|down)\.sql$`)

// Migration is one schema version with the SQL that applies and reverts it.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// migrationFile is a parsed migration file name.
type migrationFile struct {
	version int
	name    string
	up      bool
}

func parseMigrationFile(filename string) (migrationFile, error) {
	m := migrationFileRe.FindStringSubmatch(filename)
	if m == nil {
		return migrationFile{}, fmt.Errorf("want NNNN_name.up.sql or NNNN_name.down.sql")
	}

	version, _ := strconv.Atoi(m[1])
	if version == 0 {
		return migrationFile{}, fmt.Errorf("version must be positive")
	}

	return migrationFile{version: version, name: m[2], up: m[3] == "up"}, nil
}

// loadMigrations reads the embedded migration files, ordered by version.
// Every version needs exactly one up and one down file with the same name.
func loadMigrations() ([]Migration, error) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	byVersion := map[int]*Migration{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		f, err := parseMigrationFile(entry.Name())
		if err != nil {
			return nil, fmt.Errorf("migration %q: %w", entry.Name(), err)
		}

		body, err := fs.ReadFile(migrationsFS, "migrations/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}

		m, ok := byVersion[f.version]
		if !ok {
			m = &Migration{Version: f.version, Name: f.name}
			byVersion[f.version] = m
		}
		if m.Name != f.name {
			return nil, fmt.Errorf("migration %04d has files named %q and %q", f.version, m.Name, f.name)
		}

		slot := &m.Down
		if f.up {
			slot = &m.Up
		}
		if *slot != "" {
			return nil, fmt.Errorf("migration %04d has more than one %s file", f.version, direction(f.up))
		}
		*slot = string(body)
	}

	out := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.Up == "" || m.Down == "" {
			return nil, fmt.Errorf("migration %04d (%s) needs both up and down files", m.Version, m.Name)
		}
		out = append(out, *m)
	}

	slices.SortFunc(out, func(a, b Migration) int { return a.Version - b.Version })
	return out, nil
}

func direction(up bool) string {
	if up {
		return "up"
	}
	return "down"
}

// Migrate applies every pending migration in version order.
func (db *DB) Migrate(ctx context.Context) error {
	migrations, applied, err := db.migrationState(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}

		log.Debug().Int("version", m.Version).Str("name", m.Name).Msg("applying migration")
		err := db.WithTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, m.Up); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx,
				"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
				m.Version, m.Name, time.Now().UnixNano())
			return err
		})
		if err != nil {
			return fmt.Errorf("apply migration %04d (%s): %w", m.Version, m.Name, err)
		}
	}

	return nil
}

// Rollback reverts the newest n applied migrations, newest first.
func (db *DB) Rollback(ctx context.Context, n int) error {
	if n <= 0 {
		return fmt.Errorf("rollback count must be positive, got %d", n)
	}

	migrations, applied, err := db.migrationState(ctx)
	if err != nil {
		return err
	}

	var revert []Migration
	for _, m := range slices.Backward(migrations) {
		if applied[m.Version] {
			revert = append(revert, m)
		}
	}
	if n > len(revert) {
		return fmt.Errorf("cannot roll back %d migrations, %d applied", n, len(revert))
	}

	for _, m := range revert[:n] {
		log.Info().Int("version", m.Version).Str("name", m.Name).Msg("reverting migration")
		err := db.WithTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, m.Down); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, "DELETE FROM schema_migrations WHERE version = ?", m.Version)
			return err
		})
		if err != nil {
			return fmt.Errorf("revert migration %04d (%s): %w", m.Version, m.Name, err)
		}
	}

	return nil
}

// Reset reverts every applied migration and applies them again, leaving an
// empty database at the current schema.
func (db *DB) Reset(ctx context.Context) error {
	version, err := db.appliedCount(ctx)
	if err != nil {
		return err
	}
	if version > 0 {
		if err := db.Rollback(ctx, version); err != nil {
			return err
		}
	}
	return db.Migrate(ctx)
}

// SchemaVersion returns the highest applied migration version, or 0.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	if err := db.ensureMigrationsTable(ctx); err != nil {
		return 0, err
	}

	var version int
	err := db.conn.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

func (db *DB) appliedCount(ctx context.Context) (int, error) {
	_, applied, err := db.migrationState(ctx)
	return len(applied), err
}

// migrationState returns the known migrations and the set of applied versions.
func (db *DB) migrationState(ctx context.Context) ([]Migration, map[int]bool, error) {
	migrations, err := loadMigrations()
	if err != nil {
		return nil, nil, err
	}

	if err := db.ensureMigrationsTable(ctx); err != nil {
		return nil, nil, err
	}

	rows, err := db.conn.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, nil, fmt.Errorf("read applied migrations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	applied := map[int]bool{}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, nil, fmt.Errorf("read applied migrations: %w", err)
		}
		applied[v] = true
	}

	return migrations, applied, rows.Err()
}

func (db *DB) ensureMigrationsTable(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at INTEGER NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	return nil
}
