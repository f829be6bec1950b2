package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/colonyops/taskroll/internal/core/docstore"
	"github.com/colonyops/taskroll/internal/core/eventbus"
	"github.com/colonyops/taskroll/internal/core/history"
	"github.com/colonyops/taskroll/internal/core/logging"
)

// Outcome is the result of one RunOnce call.
type Outcome struct {
	Sync      *SyncResult // nil when no sync was requested
	Aggregate AggregateResult
}

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	AggregateFilename string
	HistoryKeep       int // runs kept after each record, 0 keeps all
}

// Runner executes sync and aggregation jobs one at a time and records each
// run. The history store and the bus are optional.
type Runner struct {
	aggregator *Aggregator
	syncer     *Syncer
	history    history.Store
	bus        *eventbus.EventBus
	opts       RunnerOptions
	log        zerolog.Logger

	mu  sync.Mutex
	now func() time.Time
}

// NewRunner constructs a Runner.
func NewRunner(
	aggregator *Aggregator,
	syncer *Syncer,
	hist history.Store,
	bus *eventbus.EventBus,
	opts RunnerOptions,
	log zerolog.Logger,
) *Runner {
	return &Runner{
		aggregator: aggregator,
		syncer:     syncer,
		history:    hist,
		bus:        bus,
		opts:       opts,
		log:        log.With().Str("component", "runner").Logger(),
		now:        time.Now,
	}
}

// Subscribe re-runs on every document.changed event until ctx is cancelled.
// When the aggregate document itself changed, edits in it are synced back to
// the sources before aggregating.
func (r *Runner) Subscribe(ctx context.Context) {
	if r.bus == nil {
		return
	}

	r.bus.SubscribeDocumentChanged(func(p eventbus.DocumentChangedPayload) {
		if ctx.Err() != nil {
			return
		}

		syncFirst := r.touchesAggregate(p)
		r.log.Debug().
			Strs("paths", p.Paths()).
			Bool("sync", syncFirst).
			Msg("documents changed")

		// Errors are recorded in history and logged by RunOnce.
		_, _ = r.RunOnce(ctx, history.TriggerWatch, syncFirst)
	})
}

// RunOnce optionally syncs, then aggregates. A failed sync aborts the run
// before aggregation so unsynced edits are not overwritten.
func (r *Runner) RunOnce(ctx context.Context, trigger history.Trigger, sync bool) (Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out Outcome
	if sync {
		res, err := r.sync(ctx, trigger)
		if err != nil {
			return out, err
		}
		out.Sync = &res
	}

	res, err := r.aggregate(ctx, trigger)
	out.Aggregate = res
	return out, err
}

// Sync runs reverse sync alone.
func (r *Runner) Sync(ctx context.Context, trigger history.Trigger) (SyncResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sync(ctx, trigger)
}

func (r *Runner) sync(ctx context.Context, trigger history.Trigger) (SyncResult, error) {
	ctx, run := r.begin(ctx, history.KindSync, trigger)

	res, err := r.syncer.Sync(ctx)
	run.Documents = len(res.Documents)
	run.Patched = res.Patched()

	r.finish(ctx, run, err)
	return res, err
}

func (r *Runner) aggregate(ctx context.Context, trigger history.Trigger) (AggregateResult, error) {
	ctx, run := r.begin(ctx, history.KindAggregate, trigger)

	res, err := r.aggregator.Aggregate(ctx)
	run.Documents = res.Documents
	run.Todos = res.Todos

	r.finish(ctx, run, err)
	return res, err
}

func (r *Runner) begin(ctx context.Context, kind history.Kind, trigger history.Trigger) (context.Context, *history.Run) {
	run := &history.Run{
		ID:        uuid.NewString(),
		Kind:      kind,
		Trigger:   trigger,
		StartedAt: r.now(),
	}

	ctx = logging.WithRunID(ctx, run.ID)
	ctx = logging.WithTrigger(ctx, string(trigger))
	return ctx, run
}

func (r *Runner) finish(ctx context.Context, run *history.Run, err error) {
	run.Duration = r.now().Sub(run.StartedAt)
	if err != nil {
		run.Error = err.Error()
		r.log.Error().Ctx(ctx).Err(err).Str("kind", string(run.Kind)).Msg("run failed")
	} else {
		r.log.Debug().Ctx(ctx).
			Str("kind", string(run.Kind)).
			Dur("duration", run.Duration).
			Msg("run completed")
	}

	r.record(ctx, *run)

	if r.bus != nil {
		r.bus.PublishRunCompleted(eventbus.RunCompletedPayload{Run: *run})
	}
}

// record saves a run. History failures never fail the run.
func (r *Runner) record(ctx context.Context, run history.Run) {
	if r.history == nil {
		return
	}

	// A cancelled run is still recorded.
	ctx = context.WithoutCancel(ctx)

	if err := r.history.Record(ctx, run); err != nil {
		r.log.Warn().Ctx(ctx).Err(err).Msg("failed to record run")
		return
	}

	if r.opts.HistoryKeep > 0 {
		if _, err := r.history.Prune(ctx, r.opts.HistoryKeep); err != nil {
			r.log.Warn().Ctx(ctx).Err(err).Msg("failed to prune history")
		}
	}
}

func (r *Runner) touchesAggregate(p eventbus.DocumentChangedPayload) bool {
	target := docstore.Clean(r.opts.AggregateFilename)
	for _, c := range p.Changes {
		if docstore.Clean(c.Path) == target {
			return true
		}
	}
	return false
}
