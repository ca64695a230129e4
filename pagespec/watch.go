package pagespec

import (
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settle is how long a page file must stay quiet after its last change
// before the change is reported.
const settle = 100 * time.Millisecond

// Watcher reports changed page files (.yaml and .yml) in a set of
// directories. Each burst of writes to one file is reported once, after the
// file has settled. Changed paths arrive on Events and watcher failures on
// Errors; Close closes both.
type Watcher struct {
	fs     *fsnotify.Watcher
	settle time.Duration

	Events chan string
	Errors chan error

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewWatcher starts watching dirs. It fails if any directory cannot be
// watched.
func NewWatcher(dirs ...string) (*Watcher, error) {
	return newWatcher(settle, dirs...)
}

func newWatcher(quiet time.Duration, dirs ...string) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if err := fs.Add(dir); err != nil {
			_ = fs.Close()
			return nil, err
		}
	}

	w := &Watcher{
		fs:     fs,
		settle: quiet,
		Events: make(chan string, 16),
		Errors: make(chan error, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Close stops the watcher and closes Events and Errors. Changes still
// settling are dropped. Calling Close again returns nil.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.stop)
		err = w.fs.Close()
		<-w.done
		close(w.Events)
		close(w.Errors)
	})
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)

	// due holds, per file, the time its latest change settles.
	due := make(map[string]time.Time)
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 || !isSpecFile(ev.Name) {
				continue
			}
			due[ev.Name] = time.Now().Add(w.settle)
			timer.Reset(w.settle)

		case <-timer.C:
			now := time.Now()
			var ready []string
			next := time.Duration(0)
			for name, at := range due {
				if wait := at.Sub(now); wait > 0 {
					if next == 0 || wait < next {
						next = wait
					}
					continue
				}
				ready = append(ready, name)
			}
			slices.Sort(ready)
			for _, name := range ready {
				delete(due, name)
				select {
				case w.Events <- name:
				case <-w.stop:
					return
				}
			}
			if next > 0 {
				timer.Reset(next)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}

		case <-w.stop:
			return
		}
	}
}

func isSpecFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
