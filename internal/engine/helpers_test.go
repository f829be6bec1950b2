package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/taskroll/internal/core/config"
	"github.com/colonyops/taskroll/internal/core/docstore"
	"github.com/colonyops/taskroll/internal/core/docstore/memstore"
	"github.com/colonyops/taskroll/internal/core/history"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return epoch.Add(time.Duration(minutes) * time.Minute)
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Scan.Workers = 4
	return &cfg
}

func newTestApp(store docstore.Store, hist history.Store) *App {
	return NewApp(testConfig(), store, hist, nil, zerolog.Nop())
}

// faultyStore wraps a memstore and injects failures.
type faultyStore struct {
	*memstore.Store
	readErr   map[string]error
	createErr error
}

func (s *faultyStore) Read(ctx context.Context, ref docstore.Ref) (string, error) {
	if err, ok := s.readErr[ref.Path]; ok {
		return "", err
	}
	return s.Store.Read(ctx, ref)
}

func (s *faultyStore) Create(ctx context.Context, p string) (docstore.Ref, error) {
	if s.createErr != nil {
		return docstore.Ref{}, s.createErr
	}
	return s.Store.Create(ctx, p)
}

// memHistory is an in-memory history.Store.
type memHistory struct {
	mu        sync.Mutex
	runs      []history.Run
	recordErr error
	pruned    []int
}

func (h *memHistory) Record(_ context.Context, run history.Run) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.recordErr != nil {
		return h.recordErr
	}
	h.runs = append(h.runs, run)
	return nil
}

func (h *memHistory) Get(_ context.Context, id string) (history.Run, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range h.runs {
		if r.ID == id {
			return r, nil
		}
	}
	return history.Run{}, history.ErrNotFound
}

func (h *memHistory) List(_ context.Context, limit int) ([]history.Run, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]history.Run, 0, len(h.runs))
	for i := len(h.runs) - 1; i >= 0; i-- {
		out = append(out, h.runs[i])
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (h *memHistory) Prune(_ context.Context, keep int) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pruned = append(h.pruned, keep)
	return 0, nil
}

func (h *memHistory) Reset(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.runs = nil
	return nil
}

func (h *memHistory) Runs() []history.Run {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]history.Run, len(h.runs))
	copy(out, h.runs)
	return out
}

var errDisk = errors.New("disk on fire")

// newAppWithConfig rebuilds app's components after its config was edited.
func newAppWithConfig(store docstore.Store, app *App) *App {
	return NewApp(app.Config, store, app.History, app.Bus, zerolog.Nop())
}
