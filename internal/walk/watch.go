package treewalk

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchEvent represents a filesystem event type.
type WatchEvent string

// Watch event types.
const (
	EventCreate WatchEvent = "create"
	EventModify WatchEvent = "modify"
	EventDelete WatchEvent = "delete"
	EventRename WatchEvent = "rename"
	EventChmod  WatchEvent = "chmod"
)

// WatchOptions defines options for watching filesystem changes.
type WatchOptions struct {
	// Events to report. Empty means all events.
	Events []WatchEvent

	// Recursive watches the whole tree beneath the root. The existing
	// subdirectories are discovered with a Walker; directories created
	// while watching are added as their create events arrive.
	Recursive bool

	// Timeout stops the watch after the given duration. Zero means no
	// timeout.
	Timeout time.Duration

	// Logger receives debug records for watch registration. Nil disables
	// logging.
	Logger *zap.Logger
}

// WatchMessage describes a single filesystem event.
type WatchMessage struct {
	Path  string     // Full path of the affected entry
	Name  string     // Base name of the affected entry
	Dir   string     // Directory containing the entry
	Size  int64      // Size in bytes (0 for deleted entries)
	Time  time.Time  // Modification time, or event time for deletions
	IsDir bool       // Whether the entry is a directory
	Event WatchEvent // Event type
}

// WatchResult is one watch event or a watch-level error.
type WatchResult struct {
	Message WatchMessage
	Error   error
}

// WatchHandler processes watch events.
type WatchHandler func(ctx context.Context, result WatchResult) error

// defaultWatchHandler prints events to stdout and errors to stderr.
func defaultWatchHandler() WatchHandler {
	return func(ctx context.Context, result WatchResult) error {
		if result.Error != nil {
			fmt.Fprintln(os.Stderr, result.Error)
			return nil
		}
		fmt.Printf("%s: %s\n", strings.ToUpper(string(result.Message.Event)), result.Message.Path)
		return nil
	}
}

// Watch monitors root for filesystem changes until ctx is canceled or the
// configured timeout expires.
func Watch(ctx context.Context, root string, opts WatchOptions, handler WatchHandler) error {
	if handler == nil {
		handler = defaultWatchHandler()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("treewalk: creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(root); err != nil {
		return fmt.Errorf("treewalk: watching %s: %w", root, err)
	}
	logger.Debug("watching", zap.String("path", root))

	// fsnotify watches a single directory, so a recursive watch registers
	// every directory already in the tree.
	if opts.Recursive {
		tw, err := NewWithOptions(root, Options{Logger: logger})
		if err != nil {
			return err
		}
		defer tw.Close()
		for tw.Next() {
			if err := tw.Err(); err != nil {
				handler(ctx, WatchResult{Error: err})
				continue
			}
			entry := tw.Entry()
			if !entry.IsDir() {
				continue
			}
			if err := watcher.Add(entry.Path); err != nil {
				handler(ctx, WatchResult{
					Error: fmt.Errorf("treewalk: watching %s: %w", entry.Path, err),
				})
				continue
			}
			logger.Debug("watching", zap.String("path", entry.Path))
		}
	}

	wanted := eventSet(opts.Events)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				eventType, ok := classify(event)
				if !ok || !wanted[eventType] {
					continue
				}

				msg := WatchMessage{
					Path:  event.Name,
					Name:  filepath.Base(event.Name),
					Dir:   filepath.Dir(event.Name),
					Time:  time.Now(),
					Event: eventType,
				}

				if !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
					info, err := os.Stat(event.Name)
					if err != nil {
						handler(ctx, WatchResult{
							Error: fmt.Errorf("treewalk: stat %s: %w", event.Name, err),
						})
						continue
					}
					msg.Size = info.Size()
					msg.IsDir = info.IsDir()
					msg.Time = info.ModTime()

					// Newly created directories join the watch so
					// events inside them are not missed.
					if opts.Recursive && info.IsDir() && event.Has(fsnotify.Create) {
						if err := watcher.Add(event.Name); err != nil {
							handler(ctx, WatchResult{
								Error: fmt.Errorf("treewalk: watching %s: %w", event.Name, err),
							})
						}
					}
				}

				if err := handler(ctx, WatchResult{Message: msg}); err != nil {
					logger.Warn("handler failed", zap.String("path", msg.Path), zap.Error(err))
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				handler(ctx, WatchResult{Error: fmt.Errorf("treewalk: watcher: %w", err)})

			case <-ctx.Done():
				return
			}
		}
	}()

	<-ctx.Done()
	wg.Wait()
	return nil
}

// eventSet expands the requested events into a lookup set, defaulting to all.
func eventSet(events []WatchEvent) map[WatchEvent]bool {
	set := make(map[WatchEvent]bool, 5)
	if len(events) == 0 {
		for _, e := range []WatchEvent{EventCreate, EventModify, EventDelete, EventRename, EventChmod} {
			set[e] = true
		}
		return set
	}
	for _, e := range events {
		set[e] = true
	}
	return set
}

// classify maps an fsnotify event onto a WatchEvent.
func classify(event fsnotify.Event) (WatchEvent, bool) {
	switch {
	case event.Has(fsnotify.Create):
		return EventCreate, true
	case event.Has(fsnotify.Write):
		return EventModify, true
	case event.Has(fsnotify.Remove):
		return EventDelete, true
	case event.Has(fsnotify.Rename):
		return EventRename, true
	case event.Has(fsnotify.Chmod):
		return EventChmod, true
	}
	return "", false
}
