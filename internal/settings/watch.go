package settings

import (
	"time"

	"github.com/fsnotify/fsnotify"
)

// Change represents a detected change to a settings file.
type Change struct {
	File string // Absolute path of the changed file.
}

// Watcher monitors a settings directory for file changes using fsnotify.
// Events for the same file arriving within the debounce window collapse
// into a single Change, so editors that write-then-rename do not trigger
// duplicate reloads.
type Watcher struct {
	Dir     string
	Changes <-chan Change // Read-only external channel

	changes chan Change // Internal write channel
	done    chan struct{}
	watcher *fsnotify.Watcher
}

// NewWatcher creates a new watcher for the given settings directory.
func NewWatcher(dir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan Change, 16)
	w := &Watcher{
		Dir:     dir,
		Changes: ch,
		changes: ch,
		done:    make(chan struct{}),
		watcher: fw,
	}
	return w, nil
}

// Start begins watching the settings directory for changes.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.Dir); err != nil {
		return err
	}

	go w.loop()
	return nil
}

// Stop closes the watcher and channels.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done // Wait for loop to exit
	close(w.changes)
}

func (w *Watcher) loop() {
	defer close(w.done)

	// Debounce: track last event time per file.
	const debounce = 200 * time.Millisecond
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				for file := range pending {
					w.emit(file)
				}
				return
			}

			if !recognizedExt(event.Name) {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending[event.Name] = time.Now()
			}

		case now, ok := <-ticker.C:
			if !ok {
				return
			}
			for file, last := range pending {
				if now.Sub(last) >= debounce {
					delete(pending, file)
					w.emit(file)
				}
			}
		}
	}
}

func (w *Watcher) emit(file string) {
	select {
	case w.changes <- Change{File: file}:
	default:
		// Drop when the consumer is behind; the next reload reads the
		// whole directory anyway.
	}
}
