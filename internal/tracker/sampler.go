package tracker

import (
	"strings"
	"time"

	"github.com/devtick/devtick/internal/store"
)

// Sampler turns host state into heartbeat records.
type Sampler struct {
	active ActiveContextProvider
	tasks  TaskStateProvider
	debug  DebugStateProvider

	// excludePath is the tracking data file itself. Samples of it are
	// discarded so the tool never records edits to its own log.
	excludePath string
}

// NewSampler wires the three host providers together. excludePath should be
// the store's data file path.
func NewSampler(active ActiveContextProvider, tasks TaskStateProvider, debug DebugStateProvider, excludePath string) *Sampler {
	return &Sampler{
		active:      active,
		tasks:       tasks,
		debug:       debug,
		excludePath: excludePath,
	}
}

// Sample reads the host's current activity and returns a heartbeat stamped
// with now and the given keystroke counter value. It returns (nil, nil) when
// the active file is the tracking data file.
func (s *Sampler) Sample(now time.Time, keystrokes int) (*store.Heartbeat, error) {
	state, err := s.active.ActiveContext()
	if err != nil {
		return nil, err
	}
	if state.FilePath == s.excludePath {
		return nil, nil
	}

	tasks, err := s.tasks.Tasks()
	if err != nil {
		return nil, err
	}

	debugging, err := s.debug.Debugging()
	if err != nil {
		return nil, err
	}

	return &store.Heartbeat{
		Timestamp:      now,
		FilePath:       state.FilePath,
		CursorPosition: state.Cursor,
		IsTaskRunning:  anyBackground(tasks),
		IsCompiling:    anyCompileTask(tasks),
		IsDebugging:    debugging,
		KeystrokeCount: keystrokes,
	}, nil
}

// DocLength returns the active document's current text length, used by the
// keystroke tick to compute a net character delta.
func (s *Sampler) DocLength() (int, error) {
	state, err := s.active.ActiveContext()
	if err != nil {
		return 0, err
	}
	return state.DocLength, nil
}

func anyBackground(tasks []Task) bool {
	for _, t := range tasks {
		if t.IsBackground {
			return true
		}
	}
	return false
}

// anyCompileTask reports whether any task looks like a compile or build step,
// matched by case-insensitive substring on the task name.
func anyCompileTask(tasks []Task) bool {
	for _, t := range tasks {
		name := strings.ToLower(t.Name)
		if strings.Contains(name, "compile") || strings.Contains(name, "build") {
			return true
		}
	}
	return false
}
