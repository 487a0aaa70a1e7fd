package watcher

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"mipmapgen/config"
	"mipmapgen/icons"
)

// Regenerator rebuilds the icon set from the source image
type Regenerator interface {
	Generate() ([]icons.Result, error)
}

// Event reports one regeneration triggered by a change to the source image
type Event struct {
	FilePath string
	Results  []icons.Result
	Err      error
}

// Watcher regenerates icons whenever the source image changes
type Watcher struct {
	cfg     *config.Config
	gen     Regenerator
	source  string
	watcher *fsnotify.Watcher
	events  chan Event
	trigger chan struct{}
	quit    chan struct{}
	wg      sync.WaitGroup

	mu       sync.Mutex
	timer    *time.Timer
	stopped  bool
	stopOnce sync.Once
}

// NewWatcher creates a new source image watcher
func NewWatcher(cfg *config.Config, gen Regenerator) (*Watcher, error) {
	source, err := filepath.Abs(cfg.Source)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve source path")
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	return &Watcher{
		cfg:     cfg,
		gen:     gen,
		source:  source,
		watcher: fsWatcher,
		events:  make(chan Event, 16),
		trigger: make(chan struct{}, 1),
		quit:    make(chan struct{}),
	}, nil
}

// Start begins monitoring the directory holding the source image
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.source)
	if err := w.watcher.Add(dir); err != nil {
		return errors.Wrapf(err, "failed to watch folder %s", dir)
	}
	logrus.Infof("Watching %s for changes", w.source)

	w.wg.Add(2)
	go w.processEvents()
	go w.worker()

	return nil
}

// processEvents filters fsnotify events down to the source image and
// debounces bursts into a single regeneration
func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			name, err := filepath.Abs(event.Name)
			if err != nil || name != w.source {
				continue
			}

			// Rename and Remove on the source name mean it is gone
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}

			w.schedule()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logrus.Errorf("Watcher error: %v", err)
		}
	}
}

// schedule (re)arms the debounce timer
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.cfg.Watch.Debounce, w.kick)
}

// kick queues a regeneration. A change seen while one is queued is folded
// into it.
func (w *Watcher) kick() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// worker runs regenerations one at a time
func (w *Watcher) worker() {
	defer w.wg.Done()

	for {
		select {
		case <-w.quit:
			return
		case <-w.trigger:
			w.regenerate()
		}
	}
}

// regenerate rebuilds the icon set and publishes the outcome
func (w *Watcher) regenerate() {
	logrus.Infof("Source changed: %s", w.source)

	results, err := w.gen.Generate()
	if err != nil {
		logrus.Errorf("Failed to regenerate icons: %v", err)
	} else {
		logrus.Infof("Regenerated %d densities", len(results))
	}

	select {
	case w.events <- Event{FilePath: w.source, Results: results, Err: err}:
	default:
		logrus.Warn("Event channel full, dropping regeneration event")
	}
}

// Events returns the event channel
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Stop stops the watcher, waits for a regeneration in progress to finish
// and closes the event channel
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		w.mu.Lock()
		w.stopped = true
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()

		close(w.quit)
		err = w.watcher.Close()
		w.wg.Wait()
		close(w.events)
	})
	return err
}
