package inputs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/fieldsweep/internal/logging"
	"github.com/aretw0/fieldsweep/pkg/domain"
	"github.com/fsnotify/fsnotify"
)

// DeclineFile is the file name that, dropped into the watched directory, declines.
const DeclineFile = "DECLINE"

// Watcher answers input requests from a drop folder.
// The first *.fdf file created or written in the folder after the request is
// the answer, once it has been quiet for the debounce window.
type Watcher struct {
	dir      string
	debounce time.Duration
	logger   *slog.Logger
}

// WatcherOption configures the Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets how long a file must stay unchanged before it is accepted.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithWatcherLogger configures a logger for the Watcher.
func WithWatcherLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// NewWatcher creates a Watcher on dir.
func NewWatcher(dir string, opts ...WatcherOption) *Watcher {
	w := &Watcher{dir: dir, debounce: 250 * time.Millisecond, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string { return w.dir }

func (w *Watcher) RequestInput(ctx context.Context, req domain.InputRequest) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create drop folder: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return "", fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.dir); err != nil {
		return "", fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	w.logger.Info("waiting for corrected input",
		"index", req.Index,
		"drop_folder", w.dir,
		"decline_file", DeclineFile,
	)

	var (
		candidate string
		timer     *time.Timer
		fire      <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()

		case ev, ok := <-fw.Events:
			if !ok {
				return "", fmt.Errorf("watcher closed")
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			name := filepath.Base(ev.Name)
			if name == DeclineFile {
				_ = os.Remove(ev.Name)
				return "", domain.ErrInputDeclined
			}
			if !strings.EqualFold(filepath.Ext(name), ".fdf") {
				continue
			}
			candidate = ev.Name
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			return candidate, nil

		case err, ok := <-fw.Errors:
			if !ok {
				return "", fmt.Errorf("watcher closed")
			}
			w.logger.Warn("watcher error", "err", err)
		}
	}
}
