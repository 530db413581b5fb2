// Package tracker implements the session engine: a two-state machine
// (idle/tracking) plus the periodic ticks that refresh the running duration,
// sample heartbeats, and accumulate keystroke deltas.
package tracker

import (
	"errors"
	"sync"
	"time"

	"github.com/op/go-logging"

	"github.com/devtick/devtick/internal/store"
)

var log = logging.MustGetLogger("devtick.tracker")

// ErrAlreadyTracking is returned by Start when a session is already open.
// ErrNotTracking is returned by Stop and Resume when none is. Both are
// informational no-ops, not failures.
var (
	ErrAlreadyTracking = errors.New("tracking already active")
	ErrNotTracking     = errors.New("tracking not active")
)

// Session is the in-memory tracking state. It is owned by the Tracker and
// mutated only under its lock.
type Session struct {
	IsOpen bool
	// EditTime is the start instant of the current session. It keeps its
	// last value after a stop but is only meaningful while IsOpen.
	EditTime      time.Time
	TotalDuration string
	Keystrokes    int
}

// Options configures the tick cadences. Zero values fall back to 10 seconds.
type Options struct {
	DurationInterval  time.Duration
	HeartbeatInterval time.Duration
	KeystrokeInterval time.Duration
}

const defaultInterval = 10 * time.Second

func (o *Options) fillDefaults() {
	if o.DurationInterval <= 0 {
		o.DurationInterval = defaultInterval
	}
	if o.HeartbeatInterval <= 0 {
		o.HeartbeatInterval = defaultInterval
	}
	if o.KeystrokeInterval <= 0 {
		o.KeystrokeInterval = defaultInterval
	}
}

// Tracker is the session state machine. All transitions complete in memory
// first; persistence failures are logged and retried on the next tick, never
// propagated into the transition logic.
type Tracker struct {
	mu      sync.Mutex
	clock   Clock
	store   store.Store
	sampler *Sampler
	sched   *Scheduler
	opts    Options

	sess Session

	// prevDocLen anchors the keystroke delta. The first observation after a
	// start only sets the baseline; it contributes no delta.
	prevDocLen   int
	prevLenValid bool
}

// New builds a Tracker over st, seeding the session from the persisted
// document so the keystroke counter and an open session survive a restart.
// sampler may be nil, in which case only the duration tick runs.
func New(st store.Store, sampler *Sampler, clock Clock, opts Options) *Tracker {
	opts.fillDefaults()

	doc := st.Read()
	sess := Session{
		IsOpen:        doc.IsOpen,
		TotalDuration: doc.TotalDuration,
		Keystrokes:    doc.KeystrokeCount,
	}
	if doc.EditTime != "" {
		if ts, err := time.Parse(time.RFC3339, doc.EditTime); err == nil {
			sess.EditTime = ts
		} else {
			log.Warningf("unparseable editTime %q in tracking document: %v", doc.EditTime, err)
		}
	}

	return &Tracker{
		clock:   clock,
		store:   st,
		sampler: sampler,
		sched:   NewScheduler(),
		opts:    opts,
		sess:    sess,
	}
}

// Snapshot returns a copy of the current in-memory session.
func (t *Tracker) Snapshot() Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sess
}

// Tracking reports whether a session is currently open.
func (t *Tracker) Tracking() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sess.IsOpen
}

// Start opens a session: records the start instant, persists a snapshot, and
// begins the periodic ticks. Returns ErrAlreadyTracking if one is open.
func (t *Tracker) Start() error {
	t.mu.Lock()
	if t.sess.IsOpen {
		t.mu.Unlock()
		return ErrAlreadyTracking
	}
	t.sess.IsOpen = true
	t.sess.EditTime = t.clock.Now()
	t.prevLenValid = false
	t.mu.Unlock()

	t.persist()
	t.startTicks()
	return nil
}

// Resume restarts the periodic ticks for a session that was left open on
// disk, keeping its original start instant. Returns ErrNotTracking when the
// persisted session is closed.
func (t *Tracker) Resume() error {
	t.mu.Lock()
	if !t.sess.IsOpen {
		t.mu.Unlock()
		return ErrNotTracking
	}
	t.prevLenValid = false
	t.mu.Unlock()

	t.startTicks()
	return nil
}

// Stop closes the session: computes the final total duration from the
// original start instant, persists a snapshot, and cancels all ticks.
// Returns ErrNotTracking if no session is open; a second Stop in a row does
// not change the stored duration or append heartbeats.
func (t *Tracker) Stop() error {
	t.mu.Lock()
	if !t.sess.IsOpen {
		t.mu.Unlock()
		return ErrNotTracking
	}
	t.sess.TotalDuration = Elapsed(t.sess.EditTime, t.clock.Now())
	t.sess.IsOpen = false
	t.mu.Unlock()

	t.persist()
	t.sched.StopAll()
	return nil
}

// Shutdown cancels all ticks without a state transition. Used on process
// teardown when the session should stay open on disk.
func (t *Tracker) Shutdown() {
	t.sched.StopAll()
}

func (t *Tracker) startTicks() {
	t.sched.Every(TickDuration, t.opts.DurationInterval, t.tickDuration)
	if t.sampler != nil {
		t.sched.Every(TickHeartbeat, t.opts.HeartbeatInterval, t.tickHeartbeat)
		t.sched.Every(TickKeystroke, t.opts.KeystrokeInterval, t.tickKeystroke)
	}
}

// persist writes the session fields into the document, preserving the
// heartbeat log already on disk. Failures are logged; the in-memory state is
// the source of truth and the next tick retries.
func (t *Tracker) persist() {
	t.mu.Lock()
	snap := t.sess
	t.mu.Unlock()

	err := t.store.Update(func(doc *store.Document) {
		doc.IsOpen = snap.IsOpen
		if !snap.EditTime.IsZero() {
			doc.EditTime = snap.EditTime.Format(time.RFC3339)
		}
		doc.TotalDuration = snap.TotalDuration
		doc.KeystrokeCount = snap.Keystrokes
	})
	if err != nil {
		log.Errorf("persisting session snapshot: %v", err)
	}
}

// tickDuration recomputes the running total from the original session start.
// The total replaces the previous value; it is never accumulated from deltas.
func (t *Tracker) tickDuration() {
	t.mu.Lock()
	if !t.sess.IsOpen {
		t.mu.Unlock()
		return
	}
	t.sess.TotalDuration = Elapsed(t.sess.EditTime, t.clock.Now())
	t.mu.Unlock()

	t.persist()
}

// tickHeartbeat samples the host and appends one heartbeat. A nil sample
// means the active file was the data file itself and is skipped.
func (t *Tracker) tickHeartbeat() {
	t.mu.Lock()
	open := t.sess.IsOpen
	keystrokes := t.sess.Keystrokes
	t.mu.Unlock()
	if !open {
		return
	}

	hb, err := t.sampler.Sample(t.clock.Now(), keystrokes)
	if err != nil {
		log.Warningf("sampling heartbeat: %v", err)
		return
	}
	if hb == nil {
		return
	}
	if err := t.store.AppendHeartbeat(*hb); err != nil {
		log.Errorf("appending heartbeat: %v", err)
	}
}

// tickKeystroke adds the net change in active-document length to the
// keystroke counter. The delta may be negative on deletions; the counter is a
// length-diff proxy, not an input-event count, and never drops below zero.
func (t *Tracker) tickKeystroke() {
	t.mu.Lock()
	if !t.sess.IsOpen {
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	length, err := t.sampler.DocLength()
	if err != nil {
		log.Warningf("reading document length: %v", err)
		return
	}

	t.mu.Lock()
	if !t.prevLenValid {
		t.prevDocLen = length
		t.prevLenValid = true
		t.mu.Unlock()
		return
	}
	delta := length - t.prevDocLen
	t.prevDocLen = length
	t.sess.Keystrokes += delta
	if t.sess.Keystrokes < 0 {
		t.sess.Keystrokes = 0
	}
	t.mu.Unlock()

	t.persist()
}
