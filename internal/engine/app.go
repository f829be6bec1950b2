package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/colonyops/taskroll/internal/core/config"
	"github.com/colonyops/taskroll/internal/core/docstore"
	"github.com/colonyops/taskroll/internal/core/eventbus"
	"github.com/colonyops/taskroll/internal/core/exclusion"
	"github.com/colonyops/taskroll/internal/core/history"
)

// App is the central entry point for all taskroll operations.
// Commands consume App instead of cherry-picking raw dependencies.
type App struct {
	Config  *config.Config
	Store   docstore.Store
	Bus     *eventbus.EventBus
	History history.Store // nil when history is disabled

	Scanner    *Scanner
	Aggregator *Aggregator
	Syncer     *Syncer
	Runner     *Runner

	log zerolog.Logger
}

// NewApp wires the engine from explicit dependencies. hist may be nil.
func NewApp(
	cfg *config.Config,
	store docstore.Store,
	hist history.Store,
	bus *eventbus.EventBus,
	log zerolog.Logger,
) *App {
	scanner := NewScanner(store, ScanOptions{
		Exclusion: exclusion.Options{
			AggregateFilename: cfg.AggregateFilename,
			FolderMarker:      cfg.ExcludeFolderFilename,
		},
		InlineMarker: cfg.ExcludeFilePattern,
		Workers:      cfg.Scan.Workers,
	}, log)

	aggregator := NewAggregator(store, scanner, cfg.AggregateFilename, cfg.FormatOptions(), log)
	syncer := NewSyncer(store, cfg.AggregateFilename, cfg.Include, log)

	runner := NewRunner(aggregator, syncer, hist, bus, RunnerOptions{
		AggregateFilename: cfg.AggregateFilename,
		HistoryKeep:       cfg.History.Keep,
	}, log)

	return &App{
		Config:     cfg,
		Store:      store,
		Bus:        bus,
		History:    hist,
		Scanner:    scanner,
		Aggregator: aggregator,
		Syncer:     syncer,
		Runner:     runner,
		log:        log,
	}
}

// Watch syncs and aggregates once, then re-runs on every relevant change
// under the vault root until ctx is cancelled. The bus must be running.
func (a *App) Watch(ctx context.Context) error {
	root, err := a.Config.RootDir()
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}

	w, err := NewWatcher(root, WatchOptions{
		Debounce:     a.Config.Watch.Debounce,
		FolderMarker: a.Config.ExcludeFolderFilename,
		Ignore:       a.Config.Documents.Ignore,
	}, a.Bus, a.log)
	if err != nil {
		return err
	}

	a.Runner.Subscribe(ctx)

	if _, err := a.Runner.RunOnce(ctx, history.TriggerWatch, true); err != nil {
		a.log.Warn().Err(err).Msg("initial run failed, continuing to watch")
	}

	a.log.Info().Str("root", root).Msg("watching for changes")
	return w.Run(ctx)
}
