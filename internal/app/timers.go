package app

import (
	"strings"
	"time"
)

// Timer is a cancellable scheduled callback
type Timer interface {
	Stop() bool
}

// Scheduler creates timers. The host's scheduler delivers callbacks onto
// its event loop so they never run concurrently with message handlers.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer registry keys
const (
	timerPhase = "phase" // read delay, input countdown and reveal cadence
	timerGrace = "grace:"
)

type timerEntry struct {
	t Timer
}

// timerRegistry holds every live timer under a key. Scheduling a key cancels
// whatever was scheduled under it before, and a callback whose entry has
// been replaced or cancelled does nothing when it fires.
type timerRegistry struct {
	sched  Scheduler
	timers map[string]*timerEntry
}

func newTimerRegistry(sched Scheduler) *timerRegistry {
	return &timerRegistry{sched: sched, timers: make(map[string]*timerEntry)}
}

func (r *timerRegistry) schedule(key string, d time.Duration, f func()) {
	r.cancel(key)
	e := &timerEntry{}
	e.t = r.sched.AfterFunc(d, func() {
		if r.timers[key] != e {
			return
		}
		delete(r.timers, key)
		f()
	})
	r.timers[key] = e
}

func (r *timerRegistry) cancel(key string) {
	if e, ok := r.timers[key]; ok {
		e.t.Stop()
		delete(r.timers, key)
	}
}

func (r *timerRegistry) cancelPrefix(prefix string) {
	for key := range r.timers {
		if strings.HasPrefix(key, prefix) {
			r.cancel(key)
		}
	}
}

func (r *timerRegistry) cancelAll() {
	for key := range r.timers {
		r.cancel(key)
	}
}

func (r *timerRegistry) active(key string) bool {
	_, ok := r.timers[key]
	return ok
}

func (r *timerRegistry) count() int {
	return len(r.timers)
}
