// Package store persists the tracking document to disk. All reads and writes
// go through a single mutex so concurrent timer firings cannot interleave a
// read-modify-write and lose a heartbeat.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("devtick.store")

// Store owns the tracking document on disk.
type Store interface {
	// Read loads the document. A missing or malformed file yields the
	// default document; read failures are logged, never propagated.
	Read() Document
	// Write replaces the whole document on disk.
	Write(doc Document) error
	// Update applies mutate to the current document and writes the result
	// back, all under the store lock.
	Update(mutate func(*Document)) error
	// AppendHeartbeat appends hb to the heartbeat log via read-modify-write.
	AppendHeartbeat(hb Heartbeat) error
	// Path returns the full path of the backing data file.
	Path() string
}

// diskStore is the concrete Store writing pretty-printed JSON.
type diskStore struct {
	mu   sync.Mutex
	path string
}

// New returns a Store backed by dir/DataFileName, creating dir if needed.
func New(dir string) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &diskStore{path: filepath.Join(dir, DataFileName)}, nil
}

// DefaultDir returns the devtick-specific XDG data directory.
// Path: $XDG_DATA_HOME/devtick or ~/.local/share/devtick
func DefaultDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "devtick"), nil
}

func (d *diskStore) Path() string {
	return d.path
}

func (d *diskStore) Read() Document {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readLocked()
}

// readLocked loads the document without taking the lock. A missing file is
// normal on first run; anything else unreadable is logged and treated as "no
// heartbeats yet" so a corrupt file never takes the tracker down.
func (d *diskStore) readLocked() Document {
	data, err := os.ReadFile(d.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warningf("reading tracking document %s: %v", d.path, err)
		}
		return DefaultDocument()
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Warningf("malformed tracking document %s, starting fresh: %v", d.path, err)
		return DefaultDocument()
	}
	if doc.Heartbeats == nil {
		doc.Heartbeats = []Heartbeat{}
	}
	if doc.TotalDuration == "" {
		doc.TotalDuration = "00:00:00"
	}
	return doc
}

func (d *diskStore) Write(doc Document) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeLocked(doc)
}

// writeLocked serializes doc and replaces the data file atomically via a temp
// file + os.Rename, so a failed write never corrupts a previously-valid
// document.
func (d *diskStore) writeLocked(doc Document) error {
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to persist tracking document: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(d.path), "tracking-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to persist tracking document: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up the temp file on any error path.
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to persist tracking document: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to persist tracking document: %w", err)
	}

	if err = os.Rename(tmpName, d.path); err != nil {
		return fmt.Errorf("failed to persist tracking document: %w", err)
	}
	return nil
}

func (d *diskStore) Update(mutate func(*Document)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	doc := d.readLocked()
	mutate(&doc)
	return d.writeLocked(doc)
}

func (d *diskStore) AppendHeartbeat(hb Heartbeat) error {
	return d.Update(func(doc *Document) {
		doc.Heartbeats = append(doc.Heartbeats, hb)
	})
}
