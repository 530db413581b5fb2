package store_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/devtick/devtick/internal/store"
)

// generateTime produces an arbitrary time.Time value.
// Truncated to second precision to match RFC3339 round-trip fidelity.
func generateTime(t *rapid.T) time.Time {
	sec := rapid.Int64Range(0, 1_700_000_000).Draw(t, "unix_sec")
	return time.Unix(sec, 0).UTC()
}

// generateHeartbeat produces an arbitrary Heartbeat.
func generateHeartbeat(t *rapid.T, label string) store.Heartbeat {
	return store.Heartbeat{
		Timestamp: generateTime(t),
		FilePath:  rapid.StringN(1, 100, -1).Draw(t, label+"_path"),
		CursorPosition: store.Position{
			Line:      rapid.IntRange(0, 10_000).Draw(t, label+"_line"),
			Character: rapid.IntRange(0, 500).Draw(t, label+"_char"),
		},
		IsTaskRunning:  rapid.Bool().Draw(t, label+"_task"),
		IsCompiling:    rapid.Bool().Draw(t, label+"_compile"),
		IsDebugging:    rapid.Bool().Draw(t, label+"_debug"),
		KeystrokeCount: rapid.IntRange(0, 1_000_000).Draw(t, label+"_keystrokes"),
	}
}

// generateDocument produces an arbitrary valid tracking document.
func generateDocument(t *rapid.T) store.Document {
	doc := store.Document{
		IsOpen:         rapid.Bool().Draw(t, "is_open"),
		TotalDuration:  "00:00:00",
		KeystrokeCount: rapid.IntRange(0, 1_000_000).Draw(t, "keystrokes"),
		Heartbeats:     []store.Heartbeat{},
	}
	if rapid.Bool().Draw(t, "has_edit_time") {
		doc.EditTime = generateTime(t).Format(time.RFC3339)
	}
	n := rapid.IntRange(0, 5).Draw(t, "num_heartbeats")
	for i := 0; i < n; i++ {
		doc.Heartbeats = append(doc.Heartbeats, generateHeartbeat(t, "hb"))
	}
	return doc
}

// TestDocumentRoundTripFixedPoint verifies that writing then reading is a
// fixed point: Read(Write(doc)) yields an equal document.
func TestDocumentRoundTripFixedPoint(t *testing.T) {
	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rapid.Check(t, func(rt *rapid.T) {
		original := generateDocument(rt)

		if err := st.Write(original); err != nil {
			rt.Fatalf("Write: %v", err)
		}
		loaded := st.Read()

		if loaded.IsOpen != original.IsOpen {
			rt.Errorf("IsOpen mismatch: got %v, want %v", loaded.IsOpen, original.IsOpen)
		}
		if loaded.EditTime != original.EditTime {
			rt.Errorf("EditTime mismatch: got %q, want %q", loaded.EditTime, original.EditTime)
		}
		if loaded.TotalDuration != original.TotalDuration {
			rt.Errorf("TotalDuration mismatch: got %q, want %q", loaded.TotalDuration, original.TotalDuration)
		}
		if loaded.KeystrokeCount != original.KeystrokeCount {
			rt.Errorf("KeystrokeCount mismatch: got %d, want %d", loaded.KeystrokeCount, original.KeystrokeCount)
		}
		if len(loaded.Heartbeats) != len(original.Heartbeats) {
			rt.Fatalf("Heartbeats length mismatch: got %d, want %d", len(loaded.Heartbeats), len(original.Heartbeats))
		}
		for i, hb := range original.Heartbeats {
			got := loaded.Heartbeats[i]
			if !got.Timestamp.Equal(hb.Timestamp) {
				rt.Errorf("Heartbeats[%d].Timestamp mismatch: got %v, want %v", i, got.Timestamp, hb.Timestamp)
			}
			got.Timestamp = hb.Timestamp
			if !reflect.DeepEqual(got, hb) {
				rt.Errorf("Heartbeats[%d] mismatch: got %+v, want %+v", i, got, hb)
			}
		}
	})
}

// TestReadMissingFileReturnsDefault verifies the empty default document when
// nothing has been persisted yet.
func TestReadMissingFileReturnsDefault(t *testing.T) {
	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	doc := st.Read()
	if doc.IsOpen {
		t.Error("expected IsOpen=false for default document")
	}
	if doc.EditTime != "" {
		t.Errorf("expected empty EditTime, got %q", doc.EditTime)
	}
	if doc.TotalDuration != "00:00:00" {
		t.Errorf("expected TotalDuration %q, got %q", "00:00:00", doc.TotalDuration)
	}
	if doc.KeystrokeCount != 0 {
		t.Errorf("expected KeystrokeCount 0, got %d", doc.KeystrokeCount)
	}
	if doc.Heartbeats == nil || len(doc.Heartbeats) != 0 {
		t.Errorf("expected empty heartbeat slice, got %#v", doc.Heartbeats)
	}
}

// TestReadMalformedFileReturnsDefault verifies that a corrupt data file is
// treated as "no heartbeats yet" instead of failing.
func TestReadMalformedFileReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	st, err := store.New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, store.DataFileName), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seeding malformed file: %v", err)
	}

	doc := st.Read()
	if doc.IsOpen || len(doc.Heartbeats) != 0 {
		t.Errorf("expected default document for malformed file, got %+v", doc)
	}

	// The next write effectively resets the document.
	doc.IsOpen = true
	if err := st.Write(doc); err != nil {
		t.Fatalf("Write after malformed read: %v", err)
	}
	if got := st.Read(); !got.IsOpen {
		t.Error("expected document to be valid again after rewrite")
	}
}

// TestAppendHeartbeatIsAppendOnly verifies that after N appends the log has
// grown by exactly N and no existing entry changed.
func TestAppendHeartbeatIsAppendOnly(t *testing.T) {
	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rapid.Check(t, func(rt *rapid.T) {
		prior := st.Read().Heartbeats

		n := rapid.IntRange(1, 5).Draw(rt, "n")
		appended := make([]store.Heartbeat, n)
		for i := 0; i < n; i++ {
			appended[i] = generateHeartbeat(rt, "new")
			if err := st.AppendHeartbeat(appended[i]); err != nil {
				rt.Fatalf("AppendHeartbeat: %v", err)
			}
		}

		got := st.Read().Heartbeats
		if len(got) != len(prior)+n {
			rt.Fatalf("heartbeat count: got %d, want %d", len(got), len(prior)+n)
		}
		for i, hb := range prior {
			if !reflect.DeepEqual(normalize(got[i]), normalize(hb)) {
				rt.Errorf("existing heartbeat %d changed: got %+v, want %+v", i, got[i], hb)
			}
		}
		for i, hb := range appended {
			if !reflect.DeepEqual(normalize(got[len(prior)+i]), normalize(hb)) {
				rt.Errorf("appended heartbeat %d mismatch: got %+v, want %+v", i, got[len(prior)+i], hb)
			}
		}
	})
}

// normalize strips monotonic clock readings and timezone representation so
// DeepEqual compares wall-clock instants.
func normalize(hb store.Heartbeat) store.Heartbeat {
	hb.Timestamp = hb.Timestamp.Round(0).UTC()
	return hb
}

// TestWritePrettyPrintsWithFourSpaceIndent pins down the on-disk format.
func TestWritePrettyPrintsWithFourSpaceIndent(t *testing.T) {
	dir := t.TempDir()
	st, err := store.New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := st.Write(store.DefaultDocument()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, store.DataFileName))
	if err != nil {
		t.Fatalf("reading data file: %v", err)
	}
	if !strings.Contains(string(data), "\n    \"isOpen\"") {
		t.Errorf("expected 4-space-indented isOpen key, got:\n%s", data)
	}
	if !json.Valid(data) {
		t.Error("data file is not valid JSON")
	}
}

// TestUpdatePreservesHeartbeats verifies that a session-field update via
// Update keeps the full heartbeat history intact.
func TestUpdatePreservesHeartbeats(t *testing.T) {
	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	hb := store.Heartbeat{Timestamp: time.Now().UTC(), FilePath: "main.go"}
	if err := st.AppendHeartbeat(hb); err != nil {
		t.Fatalf("AppendHeartbeat: %v", err)
	}

	if err := st.Update(func(doc *store.Document) {
		doc.IsOpen = true
		doc.KeystrokeCount = 42
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	doc := st.Read()
	if !doc.IsOpen || doc.KeystrokeCount != 42 {
		t.Errorf("session fields not updated: %+v", doc)
	}
	if len(doc.Heartbeats) != 1 || doc.Heartbeats[0].FilePath != "main.go" {
		t.Errorf("heartbeat history lost on update: %+v", doc.Heartbeats)
	}
}
