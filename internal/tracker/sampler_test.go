package tracker

import (
	"testing"
	"time"

	"github.com/devtick/devtick/internal/store"
)

// TestSampleSelfExclusion verifies that a sample of the tracking data file
// itself is discarded.
func TestSampleSelfExclusion(t *testing.T) {
	dataFile := "/data/" + store.DataFileName
	active := &fakeActive{states: []EditorState{{FilePath: dataFile, DocLength: 10}}}
	sampler := NewSampler(active, &fakeTasks{}, &fakeDebug{}, dataFile)

	hb, err := sampler.Sample(time.Now(), 0)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if hb != nil {
		t.Errorf("expected nil heartbeat for the data file itself, got %+v", hb)
	}
}

func TestSampleTaskDerivation(t *testing.T) {
	tests := []struct {
		name          string
		tasks         []Task
		wantRunning   bool
		wantCompiling bool
	}{
		{"no tasks", nil, false, false},
		{"foreground test task", []Task{{Name: "run tests"}}, false, false},
		{"background watcher", []Task{{Name: "watch sass", IsBackground: true}}, true, false},
		{"compile by name", []Task{{Name: "Compile: watch", IsBackground: true}}, true, true},
		{"build by name, case-insensitive", []Task{{Name: "GO BUILD ./..."}}, false, true},
		{"mixed", []Task{{Name: "serve docs", IsBackground: true}, {Name: "rebuild assets"}}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			active := &fakeActive{states: []EditorState{{FilePath: "main.go", DocLength: 1}}}
			sampler := NewSampler(active, &fakeTasks{tasks: tt.tasks}, &fakeDebug{}, "/data/track.json")

			hb, err := sampler.Sample(time.Now(), 7)
			if err != nil {
				t.Fatalf("Sample: %v", err)
			}
			if hb == nil {
				t.Fatal("expected a heartbeat")
			}
			if hb.IsTaskRunning != tt.wantRunning {
				t.Errorf("IsTaskRunning = %v, want %v", hb.IsTaskRunning, tt.wantRunning)
			}
			if hb.IsCompiling != tt.wantCompiling {
				t.Errorf("IsCompiling = %v, want %v", hb.IsCompiling, tt.wantCompiling)
			}
			if hb.KeystrokeCount != 7 {
				t.Errorf("KeystrokeCount = %d, want 7", hb.KeystrokeCount)
			}
		})
	}
}

func TestSampleCarriesEditorState(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	active := &fakeActive{states: []EditorState{{
		FilePath:  "internal/tracker/tracker.go",
		Cursor:    store.Position{Line: 80, Character: 12},
		DocLength: 4096,
	}}}
	sampler := NewSampler(active, &fakeTasks{}, &fakeDebug{on: true}, "/data/track.json")

	hb, err := sampler.Sample(now, 99)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if !hb.Timestamp.Equal(now) {
		t.Errorf("Timestamp = %v, want %v", hb.Timestamp, now)
	}
	if hb.FilePath != "internal/tracker/tracker.go" {
		t.Errorf("FilePath = %q", hb.FilePath)
	}
	if hb.CursorPosition != (store.Position{Line: 80, Character: 12}) {
		t.Errorf("CursorPosition = %+v", hb.CursorPosition)
	}
	if !hb.IsDebugging {
		t.Error("expected IsDebugging")
	}
}
