package plugin

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses bursts of file events into one run.
const DefaultDebounce = 300 * time.Millisecond

// WatchOptions configures Watch.
type WatchOptions struct {
	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Watch validates root once, then again after every burst of changes
// below it, passing each report to fn. It returns when ctx is done.
func Watch(ctx context.Context, root string, opts WatchOptions, fn func(*Report)) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	report, err := Validate(root)
	if err != nil {
		return err
	}
	fn(report)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := addTree(watcher, root); err != nil {
		return err
	}
	logger.Info("watching marketplace", "root", root)

	timer := time.NewTimer(opts.Debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher closed")
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(watcher, event.Name); err != nil {
						logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
					}
				}
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			logger.Debug("marketplace changed", "path", event.Name, "op", event.Op.String())
			timer.Reset(opts.Debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher closed")
			}
			logger.Error("filesystem watcher error", "error", err)

		case <-timer.C:
			report, err := Validate(root)
			if err != nil {
				logger.Error("validation failed", "root", root, "error", err)
				continue
			}
			fn(report)
		}
	}
}

// addTree watches dir and every non-hidden directory below it. fsnotify
// does not recurse on its own.
func addTree(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && isHidden(d.Name()) && d.Name() != ManifestDir {
			return filepath.SkipDir
		}
		return w.Add(p)
	})
}
