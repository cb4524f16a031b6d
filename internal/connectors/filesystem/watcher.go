// Package filesystem watches a drop directory and submits files that appear
// in it for ingestion.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/custodia-labs/hybridq/internal/logger"
)

// DefaultDebounce is the quiet period before pending files are submitted.
const DefaultDebounce = 500 * time.Millisecond

// Submitter starts ingestion of a batch of files.
type Submitter interface {
	Submit(ctx context.Context, paths []string) (string, error)
}

// Options configures a Watcher.
type Options struct {
	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration

	// IncludeExisting submits files already present when Run starts.
	IncludeExisting bool

	// OnSubmit is called after each successful submission.
	OnSubmit func(jobID string, paths []string)
}

// Watcher batches created and written files under root into ingestion jobs.
// Hidden files and directories are ignored. New subdirectories are watched
// as they appear.
type Watcher struct {
	root   string
	submit Submitter
	opts   Options
	ready  chan struct{}
}

// NewWatcher creates a watcher for root, which may be a file:// URI.
func NewWatcher(root string, submit Submitter, opts Options) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	return &Watcher{
		root:   ResolvePath(root),
		submit: submit,
		opts:   opts,
		ready:  make(chan struct{}),
	}
}

// Root returns the watched directory.
func (w *Watcher) Root() string {
	return w.root
}

// Ready is closed once the initial watches are in place.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches until ctx is cancelled. Files still pending are submitted
// before it returns.
func (w *Watcher) Run(ctx context.Context) error {
	info, err := os.Stat(w.root)
	if err != nil {
		return fmt.Errorf("watch %s: %w", w.root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch %s: not a directory", w.root)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	pending := make(map[string]struct{})
	existing, err := w.addTree(fw, w.root)
	if err != nil {
		return err
	}
	if w.opts.IncludeExisting {
		for _, p := range existing {
			pending[p] = struct{}{}
		}
	}
	close(w.ready)
	logger.Zap().Info("watching directory", zap.String("root", w.root))

	timer := time.NewTimer(w.opts.Debounce)
	defer timer.Stop()
	if len(pending) == 0 {
		timer.Stop()
	}

	for {
		select {
		case <-ctx.Done():
			w.flush(context.WithoutCancel(ctx), pending)
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			path, isDir, ok := w.handleFsEvent(ev)
			if !ok {
				continue
			}
			if isDir {
				// Files may land before the watch is added; the walk picks them up.
				files, err := w.addTree(fw, path)
				if err != nil {
					logger.Zap().Warn("watch subdirectory", zap.String("path", path), zap.Error(err))
				}
				for _, p := range files {
					pending[p] = struct{}{}
				}
			} else {
				pending[path] = struct{}{}
			}
			if len(pending) > 0 {
				timer.Reset(w.opts.Debounce)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Zap().Warn("watcher error", zap.Error(err))

		case <-timer.C:
			w.flush(ctx, pending)
		}
	}
}

// handleFsEvent decides whether an event names a file to ingest or a new
// directory to watch.
func (w *Watcher) handleFsEvent(ev fsnotify.Event) (path string, isDir, ok bool) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return "", false, false
	}
	if isHidden(w.root, ev.Name) {
		return "", false, false
	}

	info, err := os.Stat(ev.Name)
	if err != nil {
		return "", false, false
	}
	if info.IsDir() {
		return ev.Name, true, ev.Has(fsnotify.Create)
	}
	if !info.Mode().IsRegular() {
		return "", false, false
	}
	return ev.Name, false, true
}

// addTree watches dir and its visible subdirectories and returns the regular
// files found.
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if p != w.root && isHidden(w.root, p) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if err := fw.Add(p); err != nil {
				return fmt.Errorf("watch %s: %w", p, err)
			}
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, p)
		}
		return nil
	})
	return files, err
}

// flush submits and clears the pending set.
func (w *Watcher) flush(ctx context.Context, pending map[string]struct{}) {
	if len(pending) == 0 {
		return
	}

	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	clear(pending)

	jobID, err := w.submit.Submit(ctx, paths)
	if err != nil {
		logger.Zap().Error("submit watched files", zap.Int("files", len(paths)), zap.Error(err))
		return
	}
	logger.Zap().Info("submitted watched files", zap.String("job_id", jobID), zap.Int("files", len(paths)))
	if w.opts.OnSubmit != nil {
		w.opts.OnSubmit(jobID, paths)
	}
}
