package curriculum

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yungbote/eduverse-backend/internal/pkg/logger"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher refreshes a Store when files in its directory change.
type Watcher struct {
	store    *Store
	log      *logger.Logger
	fsw      *fsnotify.Watcher
	debounce time.Duration
}

func NewWatcher(store *Store, log *logger.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(store.Dir()); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", store.Dir(), err)
	}
	return &Watcher{
		store:    store,
		log:      log.With("component", "CurriculumWatcher"),
		fsw:      fsw,
		debounce: defaultDebounce,
	}, nil
}

// Run blocks until ctx is done, then releases the underlying watcher.
// Bursts of events collapse into one Refresh after the debounce window.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	var (
		timer *time.Timer
		fire  <-chan time.Time
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
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !isCurriculumFile(ev.Name) || ev.Op == fsnotify.Chmod {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("Curriculum watcher error", "error", err)
		case <-fire:
			fire = nil
			if err := w.store.Refresh(); err != nil {
				w.log.Error("Curriculum reload failed; keeping previous snapshot", "error", err)
			}
		}
	}
}
