package tracker

import "github.com/devtick/devtick/internal/store"

// EditorState describes the host's currently active document.
type EditorState struct {
	FilePath  string
	Cursor    store.Position
	DocLength int
}

// ActiveContextProvider reports the active file, cursor position, and
// document text length. Implementations are read-only queries with no side
// effects on the engine.
type ActiveContextProvider interface {
	ActiveContext() (EditorState, error)
}

// Task is one outstanding background or build task reported by the host.
type Task struct {
	Name         string
	IsBackground bool
}

// TaskStateProvider lists the host's outstanding tasks.
type TaskStateProvider interface {
	Tasks() ([]Task, error)
}

// DebugStateProvider reports whether a debug session is active.
type DebugStateProvider interface {
	Debugging() (bool, error)
}
