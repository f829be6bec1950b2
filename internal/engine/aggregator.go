package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/colonyops/taskroll/internal/core/docstore"
	"github.com/colonyops/taskroll/internal/core/todo"
)

var (
	// ErrAggregateUnresolvable is returned when the aggregate document can be
	// neither found nor created.
	ErrAggregateUnresolvable = errors.New("aggregate document cannot be resolved")
	// ErrAggregateIsFolder is returned when the aggregate path names a folder.
	ErrAggregateIsFolder = errors.New("aggregate path is a folder")
)

// AggregateResult summarizes one aggregation run.
type AggregateResult struct {
	Documents int  // documents scanned
	Excluded  int  // documents excluded from the scan
	Todos     int  // todos written to the aggregate document
	Sections  int  // source document headings written
	Written   bool // false when the aggregate document was already up to date
}

// Aggregator rebuilds the aggregate document from a scan.
type Aggregator struct {
	store    docstore.Store
	scanner  *Scanner
	filename string
	format   todo.FormatOptions
	log      zerolog.Logger
}

// NewAggregator returns an aggregator writing to the document named filename
// at the root of store.
func NewAggregator(store docstore.Store, scanner *Scanner, filename string, format todo.FormatOptions, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		store:    store,
		scanner:  scanner,
		filename: filename,
		format:   format,
		log:      log.With().Str("component", "aggregator").Logger(),
	}
}

// Render scans the store and returns the aggregate document text without
// writing it.
func (a *Aggregator) Render(ctx context.Context) (string, AggregateResult, error) {
	scan, err := a.scanner.Scan(ctx)
	if err != nil {
		return "", AggregateResult{}, err
	}

	groups := todo.GroupTodos(scan.Todos(), a.format.Include)
	res := AggregateResult{
		Documents: len(scan.Documents),
		Excluded:  scan.Excluded,
		Sections:  len(groups),
	}
	for _, g := range groups {
		res.Todos += len(g.Todos)
	}

	return todo.Render(groups, a.format.UseFullPaths), res, nil
}

// Aggregate rebuilds the aggregate document. The document is created when
// missing and left untouched when its content would not change.
func (a *Aggregator) Aggregate(ctx context.Context) (AggregateResult, error) {
	target, err := ResolveAggregate(ctx, a.store, a.filename)
	if err != nil {
		return AggregateResult{}, err
	}

	content, res, err := a.Render(ctx)
	if err != nil {
		return AggregateResult{}, err
	}

	if err := ctx.Err(); err != nil {
		return AggregateResult{}, err
	}

	current, err := a.store.Read(ctx, target)
	if err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return AggregateResult{}, fmt.Errorf("read %s: %w", target.Path, err)
	}
	if err == nil && current == content {
		a.log.Debug().Ctx(ctx).Str("path", target.Path).Msg("aggregate document unchanged")
		return res, nil
	}

	if err := a.store.Write(ctx, target, content); err != nil {
		return AggregateResult{}, fmt.Errorf("write %s: %w", target.Path, err)
	}
	res.Written = true

	a.log.Info().Ctx(ctx).
		Str("path", target.Path).
		Int("todos", res.Todos).
		Int("sections", res.Sections).
		Msg("aggregate document written")

	return res, nil
}

// ResolveAggregate returns the aggregate document, creating it when missing.
func ResolveAggregate(ctx context.Context, store docstore.Store, filename string) (docstore.Ref, error) {
	ref, err := store.Resolve(ctx, filename)
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		ref, err = store.Create(ctx, filename)
		if err != nil {
			return docstore.Ref{}, fmt.Errorf("%w: %s: %w", ErrAggregateUnresolvable, filename, err)
		}
	case err != nil:
		return docstore.Ref{}, fmt.Errorf("%w: %s: %w", ErrAggregateUnresolvable, filename, err)
	}

	if ref.Folder {
		return docstore.Ref{}, fmt.Errorf("%w: %s", ErrAggregateIsFolder, filename)
	}

	return ref, nil
}
