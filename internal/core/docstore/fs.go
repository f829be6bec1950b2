package docstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/djherbis/times"
	"github.com/rs/zerolog"
)

// FSOptions configures which files an FSStore lists.
type FSOptions struct {
	Include []string // doublestar globs relative to the root
	Ignore  []string // doublestar globs relative to the root
}

// FSStore is a Store backed by a directory tree on disk.
type FSStore struct {
	root string
	opts FSOptions
	log  zerolog.Logger
}

// NewFSStore returns a store rooted at dir.
func NewFSStore(dir string, opts FSOptions, log zerolog.Logger) *FSStore {
	if len(opts.Include) == 0 {
		opts.Include = []string{"**/*.md"}
	}
	return &FSStore{
		root: dir,
		opts: opts,
		log:  log.With().Str("component", "docstore").Logger(),
	}
}

// Root returns the directory the store is rooted at.
func (s *FSStore) Root() string {
	return s.root
}

// List walks the include globs and returns every matching file that is not ignored.
func (s *FSStore) List(ctx context.Context) ([]Ref, error) {
	fsys := os.DirFS(s.root)
	seen := map[string]bool{}
	folders := map[string]*Ref{}

	var refs []Ref
	for _, pattern := range s.opts.Include {
		err := doublestar.GlobWalk(fsys, pattern, func(p string, d fs.DirEntry) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if seen[p] || s.Ignored(p) {
				return nil
			}
			seen[p] = true

			info, err := d.Info()
			if err != nil {
				s.log.Debug().Err(err).Str("path", p).Msg("skipping unreadable file")
				return nil
			}

			refs = append(refs, s.ref(p, info, folders))
			return nil
		}, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("list %q: %w", pattern, err)
		}
	}

	slices.SortFunc(refs, func(a, b Ref) int {
		return strings.Compare(a.Path, b.Path)
	})

	return refs, nil
}

// Ignored reports whether a root-relative path matches an ignore glob.
func (s *FSStore) Ignored(p string) bool {
	for _, pattern := range s.opts.Ignore {
		if ok, _ := doublestar.Match(pattern, p); ok {
			return true
		}
	}
	return false
}

func (s *FSStore) Read(_ context.Context, ref Ref) (string, error) {
	if ref.Folder {
		return "", fmt.Errorf("read %s: %w", ref.Path, ErrIsFolder)
	}

	data, err := os.ReadFile(s.abs(ref.Path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("read %s: %w", ref.Path, ErrNotFound)
		}
		return "", fmt.Errorf("read %s: %w", ref.Path, err)
	}
	return string(data), nil
}

func (s *FSStore) Write(_ context.Context, ref Ref, content string) error {
	if ref.Folder {
		return fmt.Errorf("write %s: %w", ref.Path, ErrIsFolder)
	}

	mode := fs.FileMode(0o644)
	if info, err := os.Stat(s.abs(ref.Path)); err == nil {
		mode = info.Mode().Perm()
	}

	if err := os.WriteFile(s.abs(ref.Path), []byte(content), mode); err != nil {
		return fmt.Errorf("write %s: %w", ref.Path, err)
	}
	return nil
}

func (s *FSStore) Exists(_ context.Context, p string) bool {
	_, err := os.Stat(s.abs(p))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.log.Debug().Err(err).Str("path", p).Msg("existence check failed")
	}
	return err == nil
}

func (s *FSStore) Resolve(_ context.Context, p string) (Ref, error) {
	p = Clean(p)
	info, err := os.Stat(s.abs(p))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Ref{}, fmt.Errorf("resolve %s: %w", p, ErrNotFound)
		}
		return Ref{}, fmt.Errorf("resolve %s: %w", p, err)
	}
	if p == RootPath {
		return *s.folder(p, map[string]*Ref{}), nil
	}
	return s.ref(p, info, map[string]*Ref{}), nil
}

func (s *FSStore) Create(ctx context.Context, p string) (Ref, error) {
	p = Clean(p)
	abs := s.abs(p)

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return Ref{}, fmt.Errorf("create %s: %w", p, err)
	}

	f, err := os.OpenFile(abs, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	switch {
	case errors.Is(err, fs.ErrExist):
		return s.Resolve(ctx, p)
	case err != nil:
		return Ref{}, fmt.Errorf("create %s: %w", p, err)
	}
	_ = f.Close()

	return s.Resolve(ctx, p)
}

func (s *FSStore) abs(p string) string {
	p = Clean(p)
	if p == RootPath {
		return s.root
	}
	return filepath.Join(s.root, filepath.FromSlash(p))
}

func (s *FSStore) ref(p string, info fs.FileInfo, folders map[string]*Ref) Ref {
	name, basename := Split(p)
	return Ref{
		Path:     p,
		Name:     name,
		Basename: basename,
		Parent:   s.folder(ParentPath(p), folders),
		Created:  createdAt(s.abs(p), info),
		Folder:   info.IsDir(),
	}
}

// folder builds the ref chain for a folder path, sharing parents through folders.
func (s *FSStore) folder(p string, folders map[string]*Ref) *Ref {
	if f, ok := folders[p]; ok {
		return f
	}

	f := &Ref{Path: p, Name: p, Basename: p, Folder: true}
	if p != RootPath {
		f.Name, _ = Split(p)
		f.Basename = f.Name
		f.Parent = s.folder(ParentPath(p), folders)
		if info, err := os.Stat(s.abs(p)); err == nil {
			f.Created = createdAt(s.abs(p), info)
		}
	}

	folders[p] = f
	return f
}

// createdAt returns the birth time of the file at abs when the platform and
// filesystem report one, and its modification time otherwise.
func createdAt(abs string, info fs.FileInfo) time.Time {
	ts, err := times.Stat(abs)
	if err != nil || !ts.HasBirthTime() {
		return info.ModTime()
	}
	return ts.BirthTime()
}
