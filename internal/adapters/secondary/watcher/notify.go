package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/fredcamaral/slidedeck/internal/domain/ports"
)

// NotifyWatcher watches one file through OS notifications.
//
// The parent directory is watched rather than the file so that editors which
// save by writing a temp file and renaming it over the original keep working.
// Bursts of notifications are coalesced for the debounce window and a change
// is only reported when the content checksum differs.
type NotifyWatcher struct {
	debounce time.Duration
	logger   zerolog.Logger
	fsw      *fsnotify.Watcher
	events   chan ports.FileChangeEvent
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewNotifyWatcher creates a notification based watcher
func NewNotifyWatcher(debounce time.Duration, logger zerolog.Logger) (*NotifyWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &NotifyWatcher{
		debounce: debounce,
		logger:   logger.With().Str("component", "watcher").Logger(),
		fsw:      fsw,
		events:   make(chan ports.FileChangeEvent, 10),
		stopCh:   make(chan struct{}),
	}, nil
}

// Watch starts watching path; the file must exist
func (w *NotifyWatcher) Watch(ctx context.Context, path string) (<-chan ports.FileChangeEvent, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	checksum, err := fileChecksum(absPath)
	if err != nil {
		return nil, fmt.Errorf("initial scan: %w", err)
	}

	if err := w.fsw.Add(filepath.Dir(absPath)); err != nil {
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(absPath), err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.loop(ctx, absPath, checksum)
	}()

	return w.events, nil
}

// Stop stops the watcher and closes the events channel
func (w *NotifyWatcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopCh)
		err = w.fsw.Close()
		w.wg.Wait()
		close(w.events)
	})
	return err
}

func (w *NotifyWatcher) loop(ctx context.Context, path, lastChecksum string) {
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Str("path", path).Msg("watch error")

		case <-fire:
			fire = nil

			change := ports.Modified
			checksum, err := fileChecksum(path)
			switch {
			case os.IsNotExist(err):
				change = ports.Deleted
				checksum = ""
			case err != nil:
				w.logger.Warn().Err(err).Str("path", path).Msg("checksum failed")
				continue
			case checksum == lastChecksum:
				continue
			case lastChecksum == "":
				change = ports.Created
			}
			if change == ports.Deleted && lastChecksum == "" {
				continue
			}
			lastChecksum = checksum

			w.logger.Debug().Str("path", path).Stringer("change", change).Msg("file changed")

			select {
			case w.events <- ports.FileChangeEvent{Path: path, Type: change, Timestamp: time.Now()}:
			case <-ctx.Done():
				return
			case <-w.stopCh:
				return
			}
		}
	}
}

var _ ports.FileWatcher = (*NotifyWatcher)(nil)
