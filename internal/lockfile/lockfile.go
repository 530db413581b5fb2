// Package lockfile enforces a single running engine per data directory.
package lockfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
)

// LockFileName sits next to the tracking data file.
const LockFileName = "devtick.lock"

// ErrLocked is returned when another live process holds the lock.
var ErrLocked = errors.New("another tracking process holds the lock")

// Record is the persisted lock content.
type Record struct {
	PID         int       `json:"pid"`
	HolderNonce string    `json:"holder_nonce"`
	AcquiredAt  time.Time `json:"acquired_at"`
}

// Lock is a held lock; callers must Release it on teardown.
type Lock struct {
	path  string
	nonce string
}

// Acquire takes the lock in dir. A lock held by a dead process is broken and
// re-acquired; a lock held by a live process yields ErrLocked.
func Acquire(dir string) (*Lock, error) {
	path := filepath.Join(dir, LockFileName)

	for attempt := 0; attempt < 2; attempt++ {
		lock, err := tryCreate(path)
		if err == nil {
			return lock, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, err
		}

		rec, readErr := readRecord(path)
		if readErr == nil && pidAlive(rec.PID) {
			return nil, fmt.Errorf("%w (pid %d since %s)", ErrLocked, rec.PID, rec.AcquiredAt.Format(time.RFC3339))
		}
		// Stale or unreadable lock: break it and retry once.
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return nil, fmt.Errorf("breaking stale lock: %w", rmErr)
		}
	}
	return nil, ErrLocked
}

// tryCreate writes a fresh lock record with O_EXCL.
func tryCreate(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, err
	}

	rec := Record{
		PID:         os.Getpid(),
		HolderNonce: uuid.New().String(),
		AcquiredAt:  time.Now(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, err
	}
	return &Lock{path: path, nonce: rec.HolderNonce}, nil
}

// Release removes the lock file, but only while this holder still owns it.
func (l *Lock) Release() error {
	rec, err := readRecord(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if rec.HolderNonce != l.nonce {
		return nil // someone else broke and re-took the lock
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("releasing lock: %w", err)
	}
	return nil
}

func readRecord(path string) (Record, error) {
	var rec Record
	data, err := os.ReadFile(path)
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, err
	}
	return rec, nil
}

// pidAlive reports whether the process exists, via signal 0.
func pidAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	return errors.Is(err, syscall.EPERM)
}
