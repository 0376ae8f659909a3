// Package watcher turns viewpoint files dropped into a directory into apply requests.
package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/philipparndt/gobcf/internal/logging"
	"github.com/philipparndt/gobcf/pkg/bcf"
)

// Inbox watches a directory for *.json viewpoint files
type Inbox struct {
	watcher  *fsnotify.Watcher
	dir      string
	debounce time.Duration
	callback func(path string, vp *bcf.Viewpoint)

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

// NewInbox creates an inbox for dir. callback runs once per settled file change
// with the parsed viewpoint; files that do not parse are logged and skipped.
func NewInbox(dir string, debounce time.Duration, callback func(path string, vp *bcf.Viewpoint)) (*Inbox, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", dir, err)
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create inbox %s: %w", absDir, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(absDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", absDir, err)
	}

	return &Inbox{
		watcher:  watcher,
		dir:      absDir,
		debounce: debounce,
		callback: callback,
		timers:   make(map[string]*time.Timer),
	}, nil
}

// Dir returns the watched directory
func (in *Inbox) Dir() string { return in.dir }

// Start begins watching for file changes
func (in *Inbox) Start() {
	go func() {
		for {
			select {
			case event, ok := <-in.watcher.Events:
				if !ok {
					return
				}

				// Only trigger on write or create events
				if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
					in.handleFileChange(event.Name)
				}

			case err, ok := <-in.watcher.Errors:
				if !ok {
					return
				}
				logging.Logger().Error("Inbox watcher error", "dir", in.dir, "error", err)
			}
		}
	}()
}

// handleFileChange debounces changes per file, editors and copies write in bursts
func (in *Inbox) handleFileChange(path string) {
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		return
	}

	if timer, exists := in.timers[path]; exists {
		timer.Stop()
	}
	in.timers[path] = time.AfterFunc(in.debounce, func() {
		in.mu.Lock()
		delete(in.timers, path)
		closed := in.closed
		in.mu.Unlock()
		if !closed {
			in.load(path)
		}
	})
}

func (in *Inbox) load(path string) {
	f, err := os.Open(path)
	if err != nil {
		logging.Logger().Warn("Cannot open viewpoint file", "path", path, "error", err)
		return
	}
	defer f.Close()

	vp, err := bcf.Read(f)
	if err != nil {
		logging.Logger().Warn("Ignoring invalid viewpoint file", "path", path, "error", err)
		return
	}
	logging.Logger().Info("Viewpoint received", "path", path, "guid", vp.GUID)
	in.callback(path, vp)
}

// Close stops the watcher and drops pending changes
func (in *Inbox) Close() error {
	in.mu.Lock()
	in.closed = true
	for _, timer := range in.timers {
		timer.Stop()
	}
	in.timers = make(map[string]*time.Timer)
	in.mu.Unlock()

	return in.watcher.Close()
}
