package host

import (
	"bufio"
	"bytes"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/devtick/devtick/internal/tracker"
)

// defaultTaskPatterns match process names that indicate outstanding build work.
var defaultTaskPatterns = []string{"compile", "build", "make", "cmake", "ninja", "cargo", "javac", "tsc", "webpack"}

// debuggerNames are process names that indicate an active debug session.
var debuggerNames = []string{"dlv", "gdb", "lldb", "delve"}

// ProcessTaskState reports outstanding build-like work by scanning the
// process table. Every matched process is reported as a background task.
type ProcessTaskState struct {
	// Patterns overrides the default process-name substrings.
	Patterns []string
}

func (p *ProcessTaskState) Tasks() ([]tracker.Task, error) {
	names, err := processNames()
	if err != nil {
		return nil, err
	}
	patterns := p.Patterns
	if len(patterns) == 0 {
		patterns = defaultTaskPatterns
	}
	return matchTasks(names, patterns), nil
}

// ProcessDebugState reports a debug session when a known debugger process is
// running.
type ProcessDebugState struct{}

func (ProcessDebugState) Debugging() (bool, error) {
	names, err := processNames()
	if err != nil {
		return false, err
	}
	for _, name := range names {
		base := strings.ToLower(filepath.Base(name))
		for _, dbg := range debuggerNames {
			if base == dbg {
				return true, nil
			}
		}
	}
	return false, nil
}

// matchTasks returns one task per process name containing any pattern,
// case-insensitively.
func matchTasks(names, patterns []string) []tracker.Task {
	var tasks []tracker.Task
	for _, name := range names {
		lower := strings.ToLower(name)
		for _, pattern := range patterns {
			if strings.Contains(lower, strings.ToLower(pattern)) {
				tasks = append(tasks, tracker.Task{Name: name, IsBackground: true})
				break
			}
		}
	}
	return tasks
}

// processNames lists the command names of all running processes via ps.
func processNames() ([]string, error) {
	cmd := exec.Command("ps", "-axo", "comm=")
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, err
	}

	var names []string
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name != "" {
			names = append(names, name)
		}
	}
	return names, scanner.Err()
}
