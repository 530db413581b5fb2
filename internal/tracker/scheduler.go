package tracker

import (
	"sync"
	"time"
)

// Tick identifies one of the scheduler's periodic jobs.
type Tick string

const (
	TickDuration  Tick = "duration"
	TickHeartbeat Tick = "heartbeat"
	TickKeystroke Tick = "keystroke"
)

// Scheduler drives periodic ticks, each independently cancelable. It replaces
// a pile of free-running timers with one owner so the engine can stop every
// tick on teardown.
type Scheduler struct {
	mu    sync.Mutex
	ticks map[Tick]chan struct{}
	wg    sync.WaitGroup
}

// NewScheduler returns an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{ticks: make(map[Tick]chan struct{})}
}

// Every runs fn on a fixed period until Cancel(id) or StopAll. Starting an id
// that is already running is a no-op.
func (s *Scheduler) Every(id Tick, period time.Duration, fn func()) {
	s.mu.Lock()
	if _, running := s.ticks[id]; running {
		s.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	s.ticks[id] = stop
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
}

// Cancel stops the tick with the given id, if running.
func (s *Scheduler) Cancel(id Tick) {
	s.mu.Lock()
	stop, ok := s.ticks[id]
	if ok {
		delete(s.ticks, id)
	}
	s.mu.Unlock()
	if ok {
		close(stop)
	}
}

// StopAll cancels every running tick and waits for the tick goroutines to
// finish, so no tick fires after StopAll returns.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	for id, stop := range s.ticks {
		close(stop)
		delete(s.ticks, id)
	}
	s.mu.Unlock()
	s.wg.Wait()
}
