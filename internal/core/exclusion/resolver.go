// Package exclusion decides which documents are left out of the aggregate
// document.
package exclusion

import (
	"context"
	"path"

	"golang.org/x/sync/singleflight"

	"github.com/colonyops/taskroll/internal/core/docstore"
)

// Options names the files that trigger exclusion.
type Options struct {
	// AggregateFilename is the generated document's name. It is always excluded.
	AggregateFilename string
	// FolderMarker is a file name whose presence excludes its folder and all
	// descendants.
	FolderMarker string
}

// Resolver answers whether a document is excluded by name or by a folder
// marker in any ancestor folder. Verdicts are memoized per folder in the
// injected cache, and concurrent lookups of the same folder share one check.
type Resolver struct {
	store   docstore.Existence
	opts    Options
	cache   *Cache
	flights singleflight.Group
}

// NewResolver returns a resolver that checks markers through store and
// memoizes into cache. A nil cache starts empty.
func NewResolver(store docstore.Existence, opts Options, cache *Cache) *Resolver {
	if cache == nil {
		cache = NewCache()
	}
	return &Resolver{store: store, opts: opts, cache: cache}
}

// Cache returns the resolver's verdict cache.
func (r *Resolver) Cache() *Cache {
	return r.cache
}

// ShouldExclude reports whether ref must be omitted from aggregation.
func (r *Resolver) ShouldExclude(ctx context.Context, ref docstore.Ref) bool {
	if ref.Name == r.opts.AggregateFilename {
		return true
	}

	if excluded, ok := r.cache.Get(key(ref.Path)); ok && excluded {
		return true
	}

	if ref.Parent == nil {
		return false
	}

	parentKey := key(ref.Parent.Path)
	if excluded, ok := r.cache.Get(parentKey); ok {
		return excluded
	}

	v, _, _ := r.flights.Do(parentKey, func() (any, error) {
		// Another flight may have finished between the cache miss and Do.
		if excluded, ok := r.cache.Get(parentKey); ok {
			return excluded, nil
		}
		return r.checkFolder(ctx, *ref.Parent, parentKey), nil
	})
	return v.(bool)
}

func (r *Resolver) checkFolder(ctx context.Context, folder docstore.Ref, folderKey string) bool {
	excluded := r.opts.FolderMarker != "" &&
		r.store.Exists(ctx, path.Join(folderKey, r.opts.FolderMarker))

	// A distant ancestor's marker excludes everything below it.
	if !excluded {
		excluded = r.ShouldExclude(ctx, folder)
	}

	r.cache.Set(folderKey, excluded)
	return excluded
}

func key(p string) string {
	return path.Join("/", docstore.Clean(p))
}
