// Package engine runs aggregation and reverse sync over a document store.
package engine

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/colonyops/taskroll/internal/core/docstore"
	"github.com/colonyops/taskroll/internal/core/exclusion"
	"github.com/colonyops/taskroll/internal/core/todo"
)

// ScanOptions configures document scanning.
type ScanOptions struct {
	Exclusion exclusion.Options
	// InlineMarker excludes a document containing it as a whole (trimmed)
	// line. Empty disables the check.
	InlineMarker string
	Workers      int
}

// Document is a scanned source document and its task lines.
type Document struct {
	Ref   docstore.Ref
	Todos []todo.Todo
}

// ScanResult is the outcome of one scan.
type ScanResult struct {
	Documents []Document // surviving documents in list order
	Listed    int
	Excluded  int
	// Verdicts is the number of folder and document exclusion verdicts
	// memoized during the scan.
	Verdicts int
}

// Todos returns every task line of every document with Source set.
func (r ScanResult) Todos() []todo.Todo {
	var out []todo.Todo
	for i := range r.Documents {
		doc := &r.Documents[i]
		for _, t := range doc.Todos {
			t.Source = &doc.Ref
			out = append(out, t)
		}
	}
	return out
}

// Scanner lists candidate documents, drops excluded ones, and extracts task
// lines from the rest.
type Scanner struct {
	store docstore.Store
	opts  ScanOptions
	log   zerolog.Logger
}

// NewScanner returns a scanner over store.
func NewScanner(store docstore.Store, opts ScanOptions, log zerolog.Logger) *Scanner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Scanner{
		store: store,
		opts:  opts,
		log:   log.With().Str("component", "scanner").Logger(),
	}
}

// Scan reads every non-excluded document concurrently. Exclusion verdicts are
// memoized for the duration of the scan only. A document that cannot be read
// fails the scan.
func (s *Scanner) Scan(ctx context.Context) (ScanResult, error) {
	refs, err := s.store.List(ctx)
	if err != nil {
		return ScanResult{}, fmt.Errorf("list documents: %w", err)
	}

	resolver := exclusion.NewResolver(s.store, s.opts.Exclusion, exclusion.NewCache())
	docs := make([]*Document, len(refs))
	var excluded atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)

	for i, ref := range refs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			if resolver.ShouldExclude(gctx, ref) {
				s.log.Debug().Ctx(ctx).Str("path", ref.Path).Msg("excluded by name or folder marker")
				excluded.Add(1)
				return nil
			}

			content, err := s.store.Read(gctx, ref)
			if err != nil {
				return fmt.Errorf("scan %s: %w", ref.Path, err)
			}

			if s.inlineExcluded(content) {
				s.log.Debug().Ctx(ctx).Str("path", ref.Path).Msg("excluded by inline marker")
				excluded.Add(1)
				return nil
			}

			fm := todo.ParseFrontmatter(content)
			if fm.ExcludeTodos {
				s.log.Debug().Ctx(ctx).Str("path", ref.Path).Msg("excluded by front matter")
				excluded.Add(1)
				return nil
			}
			if !fm.Created.IsZero() {
				ref.Created = fm.Created
			}

			docs[i] = &Document{Ref: ref, Todos: todo.Parse(content)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return ScanResult{}, err
	}

	res := ScanResult{
		Listed:   len(refs),
		Excluded: int(excluded.Load()),
		Verdicts: resolver.Cache().Len(),
	}
	for _, d := range docs {
		if d != nil {
			res.Documents = append(res.Documents, *d)
		}
	}

	s.log.Debug().Ctx(ctx).
		Int("listed", res.Listed).
		Int("excluded", res.Excluded).
		Int("verdicts", res.Verdicts).
		Msg("scan complete")

	return res, nil
}

func (s *Scanner) inlineExcluded(content string) bool {
	if s.opts.InlineMarker == "" {
		return false
	}
	for _, line := range todo.SplitLines(content) {
		if strings.TrimSpace(line) == s.opts.InlineMarker {
			return true
		}
	}
	return false
}
