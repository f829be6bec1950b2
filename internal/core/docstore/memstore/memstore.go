// Package memstore provides an in-memory docstore.Store for tests and dry runs.
package memstore

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/colonyops/taskroll/internal/core/docstore"
)

type node struct {
	folder  bool
	content string
	created time.Time
}

// Store is an in-memory document tree. Only ".md" documents are listed;
// other documents, such as folder marker files, are visible through Exists
// and Resolve. Safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	nodes  map[string]*node
	order  []string
	exists map[string]int
	writes map[string]int
}

// New returns an empty store containing only the root folder.
func New() *Store {
	return &Store{
		nodes:  map[string]*node{docstore.RootPath: {folder: true}},
		exists: map[string]int{},
		writes: map[string]int{},
	}
}

// AddFolder adds a folder and any missing parents.
func (s *Store) AddFolder(p string) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addFolder(docstore.Clean(p))
	return s
}

// AddDocument adds a document, creating parent folders as needed.
func (s *Store) AddDocument(p, content string, created time.Time) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	p = docstore.Clean(p)
	s.addFolder(docstore.ParentPath(p))
	if _, ok := s.nodes[p]; !ok {
		s.order = append(s.order, p)
	}
	s.nodes[p] = &node{content: content, created: created}
	return s
}

// Remove deletes a document or folder and everything below it.
func (s *Store) Remove(p string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p = docstore.Clean(p)
	for k := range s.nodes {
		if k == p || strings.HasPrefix(k, p+"/") {
			delete(s.nodes, k)
		}
	}
}

// Content returns the current content of a document, or "" when absent.
func (s *Store) Content(p string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.nodes[docstore.Clean(p)]; ok {
		return n.content
	}
	return ""
}

// ExistsCalls returns how many times Exists was called for p.
func (s *Store) ExistsCalls(p string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exists[docstore.Clean(p)]
}

// Writes returns how many times Write was called for p.
func (s *Store) Writes(p string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes[docstore.Clean(p)]
}

func (s *Store) List(_ context.Context) ([]docstore.Ref, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var refs []docstore.Ref
	for _, p := range s.order {
		n, ok := s.nodes[p]
		if !ok || n.folder || !strings.HasSuffix(p, ".md") {
			continue
		}
		refs = append(refs, s.ref(p))
	}
	return refs, nil
}

func (s *Store) Read(_ context.Context, ref docstore.Ref) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[docstore.Clean(ref.Path)]
	switch {
	case !ok:
		return "", fmt.Errorf("read %s: %w", ref.Path, docstore.ErrNotFound)
	case n.folder:
		return "", fmt.Errorf("read %s: %w", ref.Path, docstore.ErrIsFolder)
	}
	return n.content, nil
}

func (s *Store) Write(_ context.Context, ref docstore.Ref, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := docstore.Clean(ref.Path)
	n, ok := s.nodes[p]
	switch {
	case !ok:
		return fmt.Errorf("write %s: %w", ref.Path, docstore.ErrNotFound)
	case n.folder:
		return fmt.Errorf("write %s: %w", ref.Path, docstore.ErrIsFolder)
	}

	n.content = content
	s.writes[p]++
	return nil
}

func (s *Store) Exists(_ context.Context, p string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p = docstore.Clean(p)
	s.exists[p]++
	_, ok := s.nodes[p]
	return ok
}

func (s *Store) Resolve(_ context.Context, p string) (docstore.Ref, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p = docstore.Clean(p)
	if _, ok := s.nodes[p]; !ok {
		return docstore.Ref{}, fmt.Errorf("resolve %s: %w", p, docstore.ErrNotFound)
	}
	return s.ref(p), nil
}

func (s *Store) Create(_ context.Context, p string) (docstore.Ref, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p = docstore.Clean(p)
	if n, ok := s.nodes[p]; ok {
		if n.folder {
			return docstore.Ref{}, fmt.Errorf("create %s: %w", p, docstore.ErrIsFolder)
		}
		return s.ref(p), nil
	}

	s.addFolder(docstore.ParentPath(p))
	s.nodes[p] = &node{created: time.Now()}
	s.order = append(s.order, p)
	return s.ref(p), nil
}

func (s *Store) addFolder(p string) {
	if p == docstore.RootPath {
		return
	}
	if _, ok := s.nodes[p]; ok {
		return
	}
	s.addFolder(docstore.ParentPath(p))
	s.nodes[p] = &node{folder: true}
}

func (s *Store) ref(p string) docstore.Ref {
	n := s.nodes[p]
	if p == docstore.RootPath {
		return docstore.Ref{Path: p, Name: p, Basename: p, Folder: true}
	}

	parent := s.ref(docstore.ParentPath(p))
	name, basename := docstore.Split(p)
	if n.folder {
		basename = name
	}

	return docstore.Ref{
		Path:     p,
		Name:     name,
		Basename: basename,
		Parent:   &parent,
		Created:  n.created,
		Folder:   n.folder,
	}
}
