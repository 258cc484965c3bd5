package arrayfile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/joshuapare/arraykit/pkg/types"
)

// DefaultWatchInterval is the minimum time between two snapshots taken by Watch.
const DefaultWatchInterval = 100 * time.Millisecond

// WatchOptions configure Watch.
type WatchOptions struct {
	Signature []byte
	Interval  time.Duration // 0 means DefaultWatchInterval
	Logger    *slog.Logger
}

// Watch peeks at the file at path once, then again whenever it is written,
// and passes each result to fn. A burst of writes yields one snapshot taken
// after the burst; a snapshot taken in the middle of another process's update
// may fail to decode, in which case fn gets the error.
//
// Watch returns nil when ctx is done and an error if the file is removed or
// renamed or cannot be watched.
func Watch(ctx context.Context, path string, opts WatchOptions, fn func(*Snapshot, error)) error {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultWatchInterval
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(path); err != nil {
		return types.New(types.KindOf(err), path, err)
	}

	lim := rate.NewLimiter(rate.Every(interval), 1)
	peek := func() {
		_ = lim.Wait(ctx) // only fails once ctx is done
		if ctx.Err() != nil {
			return
		}
		// Fold writes that arrived while waiting into this snapshot.
		for drained := false; !drained; {
			select {
			case <-w.Events:
			default:
				drained = true
			}
		}
		fn(Peek(path, opts.Signature))
	}

	peek()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			switch {
			case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
				return types.New(types.KindNotFound, path, fmt.Errorf("watched file went away (%s)", ev.Op))
			case ev.Has(fsnotify.Write):
				log.Debug("file written", "path", ev.Name)
				peek()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "path", path, "error", err)
		}
	}
}
