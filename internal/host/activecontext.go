// Package host provides the concrete providers the tracker samples:
// the active file via a filesystem watcher and build/debug state via the
// process table. Editors integrate by other means; these providers make the
// engine useful standalone.
package host

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/op/go-logging"

	"github.com/devtick/devtick/internal/store"
	"github.com/devtick/devtick/internal/tracker"
)

var log = logging.MustGetLogger("devtick.host")

// ErrNoActiveFile is returned before any file write has been observed.
var ErrNoActiveFile = errors.New("no active file observed yet")

// ActiveFileWatcher approximates the host editor's active document: the most
// recently written file under the workspace. The cursor is reported as the
// end of that file.
type ActiveFileWatcher struct {
	workDir        string
	ignorePatterns []string
	watcher        *fsnotify.Watcher

	mu      sync.Mutex
	current tracker.EditorState
	seen    bool
	closed  chan struct{}
}

// NewActiveFileWatcher starts a recursive watch on workDir. Events matching
// an ignore pattern, hidden directories, and non-regular files are skipped.
func NewActiveFileWatcher(workDir string, ignorePatterns []string) (*ActiveFileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &ActiveFileWatcher{
		workDir:        workDir,
		ignorePatterns: ignorePatterns,
		watcher:        watcher,
		closed:         make(chan struct{}),
	}

	// Walk the directory tree and add a watch for every subdirectory.
	err = filepath.WalkDir(workDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); name != "." && strings.HasPrefix(name, ".") && path != workDir {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
	if err != nil {
		watcher.Close()
		return nil, err
	}

	go w.run()
	return w, nil
}

// run consumes watcher events until Close.
func (w *ActiveFileWatcher) run() {
	for {
		select {
		case <-w.closed:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if w.isIgnored(event.Name) {
				continue
			}
			info, err := os.Stat(event.Name)
			if err != nil {
				continue
			}
			if info.IsDir() {
				// Watch newly created directories too.
				if event.Has(fsnotify.Create) {
					_ = w.watcher.Add(event.Name)
				}
				continue
			}
			w.record(event.Name)

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watcher errors are non-fatal; keep watching.
		}
	}
}

// record reads the written file and updates the active-document snapshot.
func (w *ActiveFileWatcher) record(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Debugf("reading %s: %v", path, err)
		return
	}

	w.mu.Lock()
	w.current = tracker.EditorState{
		FilePath:  path,
		Cursor:    endOfFile(data),
		DocLength: len(data),
	}
	w.seen = true
	w.mu.Unlock()
}

// ActiveContext returns the last observed active-document state.
func (w *ActiveFileWatcher) ActiveContext() (tracker.EditorState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.seen {
		return tracker.EditorState{}, ErrNoActiveFile
	}
	return w.current, nil
}

// Close stops the watch loop and releases the watcher.
func (w *ActiveFileWatcher) Close() error {
	close(w.closed)
	return w.watcher.Close()
}

// isIgnored reports whether path matches any configured glob pattern,
// checked against the base name, the workdir-relative path, and the full path.
func (w *ActiveFileWatcher) isIgnored(path string) bool {
	rel := path
	if w.workDir != "" {
		if r, err := filepath.Rel(w.workDir, path); err == nil {
			rel = r
		}
	}
	base := filepath.Base(path)

	for _, pattern := range w.ignorePatterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, rel); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, path); matched {
			return true
		}
	}
	return false
}

// endOfFile computes the position just past the last character of data:
// line = number of line breaks, character = length of the final line.
func endOfFile(data []byte) store.Position {
	line := bytes.Count(data, []byte("\n"))
	lastBreak := bytes.LastIndexByte(data, '\n')
	return store.Position{
		Line:      line,
		Character: len(data) - lastBreak - 1,
	}
}
