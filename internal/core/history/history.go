// Package history defines run history domain types and interfaces.
package history

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("run not found")

// Kind is the job a run performed.
type Kind string

const (
	KindAggregate Kind = "aggregate"
	KindSync      Kind = "sync"
)

// Trigger is what started a run.
type Trigger string

const (
	TriggerManual Trigger = "manual"
	TriggerWatch  Trigger = "watch"
)

// Run represents one recorded aggregation or sync run.
type Run struct {
	ID        string        `json:"id"`
	Kind      Kind          `json:"kind"`
	Trigger   Trigger       `json:"trigger"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Documents int           `json:"documents"` // documents scanned or synced
	Todos     int           `json:"todos"`     // todos written to the aggregate document
	Patched   int           `json:"patched"`   // source lines patched by a sync
	Error     string        `json:"error,omitempty"`
}

// Failed returns true if the run ended with an error.
func (r *Run) Failed() bool {
	return r.Error != ""
}

// Store persists runs.
type Store interface {
	// Record saves a run. Runs without an ID are assigned one.
	Record(ctx context.Context, run Run) error
	// Get returns a run by ID. Returns ErrNotFound if not found.
	Get(ctx context.Context, id string) (Run, error)
	// List returns up to limit runs, newest first. A limit of 0 returns all.
	List(ctx context.Context, limit int) ([]Run, error)
	// Prune deletes all but the newest keep runs and returns how many were removed.
	Prune(ctx context.Context, keep int) (int64, error)
	// Reset deletes every run.
	Reset(ctx context.Context) error
}
