package stores

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/colonyops/taskroll/internal/data/db"
)

// Open opens the database at path. A corrupted database is moved aside and
// replaced with an empty one; history is disposable.
func Open(path string, opts db.OpenOptions, log zerolog.Logger) (*db.DB, error) {
	database, err := db.Open(path, opts)
	if err == nil {
		return database, nil
	}
	if !IsCorruptionError(err) {
		return nil, err
	}

	log.Warn().Err(err).Str("path", path).Msg("history database corrupted, starting a new one")
	if rerr := RecoverFromCorruption(path); rerr != nil {
		return nil, fmt.Errorf("recover database: %w", rerr)
	}

	return db.Open(path, opts)
}
