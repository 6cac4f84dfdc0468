// Package watch rebuilds a project whenever its sources change.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/arthur-debert/webrig/pkg/build"
	"github.com/arthur-debert/webrig/pkg/errors"
	"github.com/arthur-debert/webrig/pkg/logging"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is how long the watcher waits for changes to settle
const DefaultDebounce = 100 * time.Millisecond

// Builder runs one build
type Builder interface {
	Run(ctx context.Context) (*build.Result, error)
}

// Options configures a watch session
type Options struct {
	// Root is watched recursively
	Root string
	// Ignore lists directories never watched, typically the output directory
	Ignore   []string
	Debounce time.Duration
	// OnBuild is called after every build, failed or not
	OnBuild func(*build.Result, error)
}

type watcher struct {
	fs     *fsnotify.Watcher
	opts   Options
	logger zerolog.Logger
}

// Run builds once, then again after every burst of changes under
// opts.Root, until ctx is cancelled. Build errors are reported and never
// stop the session.
func Run(ctx context.Context, b Builder, opts Options) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return errors.Wrapf(err, errors.ErrInvalidInput, "invalid watch root %s", opts.Root)
	}
	opts.Root = root
	ignore := make([]string, 0, len(opts.Ignore))
	for _, dir := range opts.Ignore {
		if abs, err := filepath.Abs(dir); err == nil {
			ignore = append(ignore, abs)
		}
	}
	opts.Ignore = ignore

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to create file watcher")
	}
	defer func() { _ = fsw.Close() }()

	w := &watcher{fs: fsw, opts: opts, logger: logging.GetLogger("watch")}
	if err := w.addTree(root); err != nil {
		return err
	}
	w.logger.Info().Str("root", root).Int("dirs", len(fsw.WatchList())).Msg("Watching for changes")

	w.build(ctx, b)

	timer := time.NewTimer(opts.Debounce)
	timer.Stop()
	changed := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Stopped watching")
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						w.logger.Warn().Err(err).Str("dir", event.Name).Msg("Failed to watch new directory")
					}
				}
			}
			w.logger.Trace().Str("file", event.Name).Str("op", event.Op.String()).Msg("Change detected")
			changed[event.Name] = true
			timer.Reset(opts.Debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("Watcher error")

		case <-timer.C:
			w.logger.Info().Strs("files", w.rels(changed)).Msg("Rebuilding")
			clear(changed)
			w.build(ctx, b)
		}
	}
}

func (w *watcher) build(ctx context.Context, b Builder) {
	result, err := b.Run(ctx)
	if err != nil && ctx.Err() == nil {
		w.logger.Error().Err(err).Msg("Build failed")
	}
	if w.opts.OnBuild != nil && ctx.Err() == nil {
		w.opts.OnBuild(result, err)
	}
}

// addTree watches dir and every directory below it that is not skipped
func (w *watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.skipDir(path) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			return errors.Wrapf(err, errors.ErrFileRead, "failed to watch %s", path).
				WithDetail("path", path)
		}
		return nil
	})
}

func (w *watcher) skipDir(path string) bool {
	if path == w.opts.Root {
		return false
	}
	name := filepath.Base(path)
	if name == "node_modules" || strings.HasPrefix(name, ".") {
		return true
	}
	for _, ignored := range w.opts.Ignore {
		if path == ignored {
			return true
		}
	}
	return false
}

// relevant drops events below skipped directories and pure chmods
func (w *watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	for _, ignored := range w.opts.Ignore {
		if event.Name == ignored || strings.HasPrefix(event.Name, ignored+string(filepath.Separator)) {
			return false
		}
	}
	rel, err := filepath.Rel(w.opts.Root, event.Name)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if part == "node_modules" || (strings.HasPrefix(part, ".") && part != "." && part != "..") {
			return false
		}
	}
	return true
}

func (w *watcher) rels(files map[string]bool) []string {
	out := make([]string, 0, len(files))
	for f := range files {
		rel, err := filepath.Rel(w.opts.Root, f)
		if err != nil {
			rel = f
		}
		out = append(out, filepath.ToSlash(rel))
	}
	sort.Strings(out)
	return out
}
