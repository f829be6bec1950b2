package exclusion

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskroll/internal/core/docstore"
	"github.com/colonyops/taskroll/internal/core/docstore/memstore"
)

var testOpts = Options{AggregateFilename: "TODO.md", FolderMarker: ".exclude_todos"}

func resolve(t *testing.T, s *memstore.Store, p string) docstore.Ref {
	t.Helper()
	ref, err := s.Resolve(context.Background(), p)
	require.NoError(t, err)
	return ref
}

func TestResolver_ShouldExclude(t *testing.T) {
	now := time.Now()
	s := memstore.New().
		AddDocument("test.md", "- [ ] task item", now).
		AddDocument("TODO.md", "...", now).
		AddDocument("Folder/ExcludeParent.md", "- [ ] excluded task item", now).
		AddDocument("Folder/.exclude_todos", "", now).
		AddDocument("Folder/NestedFolder/DeeplyNested.md", "- [ ] excluded task item", now).
		AddDocument("Other/Deep/Deeper/kept.md", "", now).
		AddDocument("Marked/A/B/C/hidden.md", "", now).
		AddDocument("Marked/.exclude_todos", "", now)

	tests := []struct {
		path string
		want bool
	}{
		{"test.md", false},
		{"TODO.md", true},
		{"Folder/ExcludeParent.md", true},
		{"Folder/NestedFolder/DeeplyNested.md", true},
		{"Other/Deep/Deeper/kept.md", false},
		{"Marked/A/B/C/hidden.md", true},
	}

	r := NewResolver(s, testOpts, nil)
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, r.ShouldExclude(context.Background(), resolve(t, s, tt.path)))
		})
	}
}

func TestResolver_AggregateNameInSubfolder(t *testing.T) {
	s := memstore.New().AddDocument("Projects/TODO.md", "", time.Now())
	r := NewResolver(s, testOpts, nil)

	assert.True(t, r.ShouldExclude(context.Background(), resolve(t, s, "Projects/TODO.md")))
}

func TestResolver_RootMarkerExcludesVault(t *testing.T) {
	now := time.Now()
	s := memstore.New().
		AddDocument(".exclude_todos", "", now).
		AddDocument("a.md", "", now).
		AddDocument("Folder/b.md", "", now)
	r := NewResolver(s, testOpts, nil)
	ctx := context.Background()

	assert.True(t, r.ShouldExclude(ctx, resolve(t, s, "a.md")))
	assert.True(t, r.ShouldExclude(ctx, resolve(t, s, "Folder/b.md")))
}

func TestResolver_SiblingsHitCache(t *testing.T) {
	now := time.Now()
	s := memstore.New().
		AddDocument("Folder/a.md", "", now).
		AddDocument("Folder/b.md", "", now).
		AddDocument("Folder/c.md", "", now)
	r := NewResolver(s, testOpts, nil)
	ctx := context.Background()

	for _, p := range []string{"Folder/a.md", "Folder/b.md", "Folder/c.md"} {
		assert.False(t, r.ShouldExclude(ctx, resolve(t, s, p)))
	}

	assert.Equal(t, 1, s.ExistsCalls("Folder/.exclude_todos"))
	assert.Equal(t, 1, s.ExistsCalls(".exclude_todos"))

	excluded, ok := r.Cache().Get("/Folder")
	assert.True(t, ok)
	assert.False(t, excluded)
}

func TestResolver_ConcurrentSiblingsShareCheck(t *testing.T) {
	now := time.Now()
	s := memstore.New().AddDocument("Folder/Nested/.exclude_todos", "", now)
	for i := range 16 {
		s.AddDocument(fmt.Sprintf("Folder/Nested/n%02d.md", i), "", now)
		s.AddDocument(fmt.Sprintf("Folder/f%02d.md", i), "", now)
	}
	r := NewResolver(s, testOpts, nil)
	ctx := context.Background()

	refs, err := s.List(ctx)
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		excluded int
	)
	for _, ref := range refs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.ShouldExclude(ctx, ref) {
				mu.Lock()
				excluded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 16, excluded)
	assert.Equal(t, 1, s.ExistsCalls("Folder/Nested/.exclude_todos"))
	assert.Equal(t, 1, s.ExistsCalls("Folder/.exclude_todos"))
	assert.Equal(t, 1, s.ExistsCalls(".exclude_todos"))
}

func TestResolver_CachedDocumentVerdict(t *testing.T) {
	s := memstore.New().AddDocument("a.md", "", time.Now())
	cache := NewCache()
	cache.Set("/a.md", true)

	r := NewResolver(s, testOpts, cache)

	assert.True(t, r.ShouldExclude(context.Background(), resolve(t, s, "a.md")))
	assert.Zero(t, s.ExistsCalls(".exclude_todos"))
}

func TestResolver_RootHasNoParent(t *testing.T) {
	s := memstore.New()
	r := NewResolver(s, testOpts, nil)

	assert.False(t, r.ShouldExclude(context.Background(), resolve(t, s, docstore.RootPath)))
	assert.Zero(t, r.Cache().Len())
}
