package upload

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/yildizm/qupid/internal/logger"
)

// DefaultDebounce coalesces the burst of events a screenshot tool produces
const DefaultDebounce = 300 * time.Millisecond

// Watcher rescans a screenshot directory whenever its contents change.
// With recursive discovery every non-hidden subdirectory is watched too,
// including ones created while the watcher runs.
type Watcher struct {
	dir      string
	opts     DiscoverOptions
	debounce time.Duration
	fsw      *fsnotify.Watcher
	log      *logger.Logger
}

// NewWatcher starts watching dir. Close must be called to release the watch.
func NewWatcher(dir string, opts DiscoverOptions, log *logger.Logger) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("directory does not exist: %s", dir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}

	w := &Watcher{
		dir:      dir,
		opts:     opts,
		debounce: DefaultDebounce,
		fsw:      fsw,
		log:      log.WithComponent("watcher"),
	}
	if err := w.watchTree(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch directory: %w", err)
	}
	return w, nil
}

// watchTree adds root and, for recursive discovery, the subdirectories
// Discover would descend into.
func (w *Watcher) watchTree(root string) error {
	if !w.opts.Recursive {
		return w.fsw.Add(root)
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			w.log.Debug("skipping %s: %v", path, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// Watched lists the directories currently under watch
func (w *Watcher) Watched() []string {
	return w.fsw.WatchList()
}

// Dir is the watched directory
func (w *Watcher) Dir() string {
	return w.dir
}

// SetDebounce overrides the quiet period before a rescan
func (w *Watcher) SetDebounce(d time.Duration) {
	if d > 0 {
		w.debounce = d
	}
}

// Scan discovers the directory's current screenshots
func (w *Watcher) Scan() ([]*File, error) {
	files, err := Discover([]string{w.dir}, w.opts)
	if errors.Is(err, ErrNoImages) {
		return files, nil
	}
	return files, err
}

// Run blocks until ctx is done, calling onChange after each debounced burst
// of filesystem events. An initial scan is delivered before any event.
func (w *Watcher) Run(ctx context.Context, onChange func([]*File, error)) error {
	onChange(w.Scan())

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			if event.Has(fsnotify.Create) && w.opts.Recursive {
				w.watchCreatedDir(event.Name)
			}
			w.log.DebugWithFields("filesystem event", []logger.Field{
				logger.F("op", event.Op.String()),
				logger.F("path", event.Name),
			})
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerCh = timer.C

		case <-timerCh:
			timerCh = nil
			files, err := w.Scan()
			w.log.InfoWithFields("selection rescanned", []logger.Field{logger.Count(len(files))})
			onChange(files, err)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.WarnWithFields("watcher error", []logger.Field{logger.Error(err)})
		}
	}
}

func (w *Watcher) watchCreatedDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || strings.HasPrefix(info.Name(), ".") {
		return
	}
	if err := w.watchTree(path); err != nil {
		w.log.WarnWithFields("failed to watch new directory", []logger.Field{
			logger.F("path", path),
			logger.Error(err),
		})
	}
}

// Close stops the underlying watch
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func relevant(event fsnotify.Event) bool {
	return event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Remove) ||
		event.Has(fsnotify.Rename)
}
