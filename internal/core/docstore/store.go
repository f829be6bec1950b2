// Package docstore abstracts the hierarchical document store that task lines
// are collected from.
package docstore

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"
)

// RootPath is the path of the store's root folder.
const RootPath = "/"

var (
	// ErrNotFound is returned when no document or folder exists at a path.
	ErrNotFound = errors.New("document not found")
	// ErrIsFolder is returned when a document operation is given a folder.
	ErrIsFolder = errors.New("path is a folder")
)

// Ref identifies a document or folder in the store.
type Ref struct {
	Path     string // unique key, slash separated, relative to the root
	Name     string // base name with extension
	Basename string // display name, Name without its extension
	Parent   *Ref   // nil only for the root folder
	Created  time.Time
	Folder   bool
}

// Existence checks whether a path exists in a store.
type Existence interface {
	Exists(ctx context.Context, path string) bool
}

// Store is the set of operations the aggregation engine needs from a
// document store.
type Store interface {
	// List returns every candidate document. Folders are reachable through
	// Parent but are not listed.
	List(ctx context.Context) ([]Ref, error)

	// Read returns the full content of a document.
	Read(ctx context.Context, ref Ref) (string, error)

	// Write replaces the full content of a document.
	Write(ctx context.Context, ref Ref, content string) error

	// Exists reports whether a document or folder exists at path. Any
	// failure to check is reported as false.
	Exists(ctx context.Context, path string) bool

	// Resolve returns the document or folder at path, or ErrNotFound.
	Resolve(ctx context.Context, path string) (Ref, error)

	// Create creates an empty document at path and returns it.
	Create(ctx context.Context, path string) (Ref, error)
}

// Clean normalizes a store path to its slash separated, root-relative form.
// The root folder cleans to RootPath.
func Clean(p string) string {
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	if p == "" {
		return RootPath
	}
	return p
}

// Split returns the base name and display name of a store path.
func Split(p string) (name, basename string) {
	name = path.Base(p)
	return name, strings.TrimSuffix(name, path.Ext(name))
}

// ParentPath returns the cleaned path of the folder containing p.
func ParentPath(p string) string {
	dir := path.Dir("/" + Clean(p))
	return Clean(dir)
}
