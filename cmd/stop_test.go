package cmd

import (
	"strings"
	"testing"

	"github.com/devtick/devtick/internal/store"
)

// TestStopWithoutSession verifies that "stop" while idle is an informational
// no-op, not an error.
func TestStopWithoutSession(t *testing.T) {
	isolate(t)

	out, err := executeCommand(rootCmd, "stop")
	if err != nil {
		t.Fatalf("stop should not error while idle, got: %v", err)
	}
	if !strings.Contains(out, "tracking not active") {
		t.Errorf("expected %q in output, got: %q", "tracking not active", out)
	}
}

func TestStartThenStop(t *testing.T) {
	tmp := isolate(t)

	if _, err := executeCommand(rootCmd, "start"); err != nil {
		t.Fatalf("start: %v", err)
	}
	out, err := executeCommand(rootCmd, "stop")
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if !strings.Contains(out, "tracking stopped") {
		t.Errorf("expected %q in output, got: %q", "tracking stopped", out)
	}

	st, err := store.New(tmp)
	if err != nil {
		t.Fatal(err)
	}
	doc := st.Read()
	if doc.IsOpen {
		t.Error("expected persisted isOpen=false after stop")
	}
	if doc.TotalDuration == "" {
		t.Error("expected a persisted totalDuration after stop")
	}
}

// TestDoubleStop verifies stop idempotence across processes: the second stop
// reports "tracking not active" and leaves the document alone.
func TestDoubleStop(t *testing.T) {
	tmp := isolate(t)

	if _, err := executeCommand(rootCmd, "start"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := executeCommand(rootCmd, "stop"); err != nil {
		t.Fatalf("first stop: %v", err)
	}

	st, err := store.New(tmp)
	if err != nil {
		t.Fatal(err)
	}
	before := st.Read()

	out, err := executeCommand(rootCmd, "stop")
	if err != nil {
		t.Fatalf("second stop: %v", err)
	}
	if !strings.Contains(out, "tracking not active") {
		t.Errorf("expected %q in output, got: %q", "tracking not active", out)
	}

	after := st.Read()
	if after.TotalDuration != before.TotalDuration {
		t.Errorf("second stop changed totalDuration: %q -> %q", before.TotalDuration, after.TotalDuration)
	}
	if len(after.Heartbeats) != len(before.Heartbeats) {
		t.Errorf("second stop changed heartbeat count: %d -> %d", len(before.Heartbeats), len(after.Heartbeats))
	}
}
