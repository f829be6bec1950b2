package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/colonyops/taskroll/internal/core/docstore"
	"github.com/colonyops/taskroll/internal/core/todo"
)

// SyncedDocument reports the patches applied to one source document.
type SyncedDocument struct {
	Path    string `json:"path"`
	Patched int    `json:"patched"`
}

// SyncResult summarizes one reverse sync.
type SyncResult struct {
	Documents []SyncedDocument `json:"documents"`
}

// Patched returns the total number of source lines changed.
func (r SyncResult) Patched() int {
	n := 0
	for _, d := range r.Documents {
		n += d.Patched
	}
	return n
}

// Syncer propagates status edits made in the aggregate document back to the
// source documents.
type Syncer struct {
	store    docstore.Store
	filename string
	include  todo.Include
	log      zerolog.Logger
}

// NewSyncer returns a syncer reading the aggregate document named filename.
// Todos whose task type is not in include are written back.
func NewSyncer(store docstore.Store, filename string, include todo.Include, log zerolog.Logger) *Syncer {
	return &Syncer{
		store:    store,
		filename: filename,
		include:  include,
		log:      log.With().Str("component", "syncer").Logger(),
	}
}

// Sync patches source documents from the aggregate document. Sections whose
// source cannot be resolved, or resolves to a folder, are skipped.
func (s *Syncer) Sync(ctx context.Context) (SyncResult, error) {
	target, err := ResolveAggregate(ctx, s.store, s.filename)
	if err != nil {
		return SyncResult{}, err
	}

	content, err := s.store.Read(ctx, target)
	if err != nil {
		return SyncResult{}, fmt.Errorf("read %s: %w", target.Path, err)
	}

	var res SyncResult
	for _, section := range todo.ParseAggregate(content) {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		pending := section.Pending(s.include)
		if len(pending) == 0 {
			continue
		}

		patched, err := s.patch(ctx, section.Path, pending)
		if err != nil {
			return res, err
		}
		if patched > 0 {
			res.Documents = append(res.Documents, SyncedDocument{Path: section.Path, Patched: patched})
		}
	}

	return res, nil
}

func (s *Syncer) patch(ctx context.Context, path string, pending []todo.Todo) (int, error) {
	ref, err := s.store.Resolve(ctx, path)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			s.log.Debug().Ctx(ctx).Str("path", path).Msg("source document not found, skipping")
			return 0, nil
		}
		return 0, fmt.Errorf("resolve %s: %w", path, err)
	}
	if ref.Folder {
		s.log.Debug().Ctx(ctx).Str("path", path).Msg("source path is a folder, skipping")
		return 0, nil
	}

	original, err := s.store.Read(ctx, ref)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", ref.Path, err)
	}

	content, patched := todo.PatchMarkers(original, pending)
	if content == original {
		return 0, nil
	}

	if err := s.store.Write(ctx, ref, content); err != nil {
		return 0, fmt.Errorf("write %s: %w", ref.Path, err)
	}

	s.log.Info().Ctx(ctx).Str("path", ref.Path).Int("patched", patched).Msg("source document synced")
	return patched, nil
}
