package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/colonyops/taskroll/internal/core/eventbus"
)

// WatchOptions configures a Watcher.
type WatchOptions struct {
	Debounce     time.Duration
	FolderMarker string   // marker files are relevant even though they are not Markdown
	Ignore       []string // doublestar globs relative to the root
}

// Watcher watches the vault root recursively and publishes one
// document.changed event per debounced burst of relevant changes.
type Watcher struct {
	watcher *fsnotify.Watcher
	root    string
	opts    WatchOptions
	bus     *eventbus.EventBus
	log     zerolog.Logger
}

// NewWatcher starts watching root and every directory below it that is not
// hidden or ignored.
func NewWatcher(root string, opts WatchOptions, bus *eventbus.EventBus, log zerolog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		watcher: fw,
		root:    root,
		opts:    opts,
		bus:     bus,
		log:     log.With().Str("component", "watcher").Logger(),
	}

	if err := w.addRecursive(root); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}

	return w, nil
}

// Run delivers events until ctx is cancelled, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.watcher.Close() }()

	var (
		pending []eventbus.Change
		index   = map[string]int{}
		timer   *time.Timer
		fire    <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}

			w.log.Debug().
				Str("path", event.Name).
				Str("op", event.Op.String()).
				Msg("file system event")

			// Track new directories for recursive watching
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.addRecursive(event.Name)
				}
			}

			change, ok := w.classify(event)
			if !ok {
				continue
			}

			// The last event for a path wins.
			if i, seen := index[change.Path]; seen {
				pending[i] = change
			} else {
				index[change.Path] = len(pending)
				pending = append(pending, change)
			}

			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
			} else {
				timer.Reset(w.opts.Debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if err := w.bus.PublishDocumentChanged(ctx, eventbus.DocumentChangedPayload{Changes: pending}); err != nil {
				return nil
			}
			pending = nil
			index = map[string]int{}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Error().Err(err).Msg("watcher error")
		}
	}
}

// classify maps a raw event to a root-relative change, or reports false when
// the event cannot affect the aggregate document.
func (w *Watcher) classify(event fsnotify.Event) (eventbus.Change, bool) {
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return eventbus.Change{}, false
	}
	rel = filepath.ToSlash(rel)

	if !w.relevant(rel) {
		return eventbus.Change{}, false
	}

	var kind eventbus.ChangeKind
	switch {
	case event.Has(fsnotify.Remove):
		kind = eventbus.ChangeDeleted
	case event.Has(fsnotify.Rename):
		kind = eventbus.ChangeRenamed
	case event.Has(fsnotify.Create):
		kind = eventbus.ChangeCreated
	case event.Has(fsnotify.Write):
		kind = eventbus.ChangeModified
	default:
		return eventbus.Change{}, false
	}

	return eventbus.Change{Path: rel, Kind: kind}, true
}

// relevant reports whether a root-relative path can change the aggregate:
// Markdown documents, folder marker files, and extensionless paths, which are
// usually folders being created, moved, or removed.
func (w *Watcher) relevant(rel string) bool {
	if w.ignored(rel) {
		return false
	}

	base := filepath.Base(rel)
	if w.opts.FolderMarker != "" && base == w.opts.FolderMarker {
		return true
	}

	if strings.HasPrefix(base, ".") {
		return false
	}

	for _, ext := range []string{".tmp", ".lock", ".swp", ".swx", "~"} {
		if strings.HasSuffix(base, ext) {
			return false
		}
	}

	ext := filepath.Ext(base)
	return ext == ".md" || ext == ""
}

func (w *Watcher) ignored(rel string) bool {
	for _, pattern := range w.opts.Ignore {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func (w *Watcher) addRecursive(path string) error {
	return filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			w.log.Debug().Err(err).Str("path", p).Msg("skipping path during walk")
			return nil
		}
		if !d.IsDir() {
			return nil
		}

		if p != w.root {
			rel, _ := filepath.Rel(w.root, p)
			if strings.HasPrefix(d.Name(), ".") || w.ignored(filepath.ToSlash(rel)) {
				return filepath.SkipDir
			}
		}

		return w.watcher.Add(p)
	})
}
