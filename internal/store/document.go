package store

import "time"

// DataFileName is the fixed name of the tracking data file.
const DataFileName = "vscode-timetracking-data.json"

// Position is a cursor location inside a document.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Heartbeat is a point-in-time sample of editor, build, and debug activity.
// Heartbeats are immutable once written; the log only ever grows.
type Heartbeat struct {
	Timestamp      time.Time `json:"timestamp"`
	FilePath       string    `json:"filePath"`
	CursorPosition Position  `json:"cursorPosition"`
	IsTaskRunning  bool      `json:"isTaskRunning"`
	IsCompiling    bool      `json:"isCompiling"`
	IsDebugging    bool      `json:"isDebugging"`
	KeystrokeCount int       `json:"keystrokeCount"`
}

// Document is the full persisted tracking state: the current session fields
// plus the complete heartbeat history. Every write replaces the whole
// document; partial updates are not allowed.
type Document struct {
	IsOpen bool `json:"isOpen"`
	// EditTime is the session start instant in RFC 3339, or "" when no
	// session has ever been started. It keeps its last value after a stop.
	EditTime       string      `json:"editTime"`
	TotalDuration  string      `json:"totalDuration"`
	KeystrokeCount int         `json:"keystrokeCount"`
	Heartbeats     []Heartbeat `json:"heartbeats"`
}

// DefaultDocument returns the empty document used when nothing has been
// persisted yet.
func DefaultDocument() Document {
	return Document{
		IsOpen:         false,
		EditTime:       "",
		TotalDuration:  "00:00:00",
		KeystrokeCount: 0,
		Heartbeats:     []Heartbeat{},
	}
}
