// Package watch reports image files that appear or change in a directory.
package watch

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// quiet is how long a file must go without writes before it is reported.
// Screenshot tools and editors usually write a file in several steps.
const quiet = 250 * time.Millisecond
// Watcher emits paths of image files created or written in the watched
// directories, once per burst of writes, after the writes settle.
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan string
	Errors  chan error
	skip    func(string) bool
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// New watches dirs. Paths for which skip returns true are never reported.
func New(skip func(path string) bool, dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	if skip == nil {
		skip = func(string) bool { return false }
	}
	watcher := &Watcher{
		watcher: w,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		skip:    skip,
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Close stops watching and closes Events and Errors.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
		close(w.Events)
		close(w.Errors)
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)

	// Last event time per path still waiting to settle.
	pending := make(map[string]time.Time)
	var ticker *time.Ticker
	var tick <-chan time.Time
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			// Rename reports the old name; a file moved in arrives as Create.
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !IsImageFile(event.Name) || w.skip(event.Name) {
				continue
			}
			pending[event.Name] = time.Now()
			if ticker == nil {
				ticker = time.NewTicker(quiet / 5)
				tick = ticker.C
			}
		case now := <-tick:
			for path, last := range pending {
				if now.Sub(last) < quiet {
					continue
				}
				delete(pending, path)
				select {
				case w.Events <- path:
				case <-w.closeCh:
					return
				}
			}
			if len(pending) == 0 {
				ticker.Stop()
				ticker, tick = nil, nil
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

// IsImageFile reports whether path has an extension of a decodable image.
func IsImageFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tif", ".tiff":
		return true
	}
	return false
}
