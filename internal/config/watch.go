package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// ReloadFunc receives a freshly loaded configuration, or the error that
// prevented loading it.
type ReloadFunc func(cfg *Config, err error)

// Watch reloads path whenever it is written or replaced and passes the
// result to fn, until ctx is cancelled. fn runs on the watcher's
// goroutine. The directory is watched rather than the file so that
// editors that save by rename are seen.
func Watch(ctx context.Context, path string, fn ReloadFunc) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				if _, err := os.Stat(abs); err != nil {
					continue
				}
				fn(Load(abs))
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				fn(nil, err)
			}
		}
	}()
	return nil
}
