package history

import (
	"sync"
	"time"

	"wordmark/models"
)

// DefaultDebounce is the quiet period before an edit is pushed to history
const DefaultDebounce = 500 * time.Millisecond

// Task is a scheduled function that can be canceled before it runs
type Task interface {
	Stop() bool
}

// Scheduler runs f once after d
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Task
}

// TimerScheduler schedules with time.AfterFunc
type TimerScheduler struct{}

// AfterFunc implements Scheduler
func (TimerScheduler) AfterFunc(d time.Duration, f func()) Task {
	return time.AfterFunc(d, f)
}

// AutoSaver collapses bursts of edits into a single push. Every edit that
// changes the design cancels the pending push and schedules a new one; the
// push happens only once edits have been quiet for the debounce interval.
type AutoSaver struct {
	mu        sync.Mutex
	scheduler Scheduler
	delay     time.Duration
	push      func(models.Snapshot)

	previous *models.Snapshot
	pending  Task
	gen      uint64
	latest   models.Snapshot
}

// NewAutoSaver creates an AutoSaver calling push after delay of quiet.
// A nil scheduler uses real timers.
func NewAutoSaver(scheduler Scheduler, delay time.Duration, push func(models.Snapshot)) *AutoSaver {
	if scheduler == nil {
		scheduler = TimerScheduler{}
	}
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &AutoSaver{scheduler: scheduler, delay: delay, push: push}
}

// Observe is called with the live design state after every edit. It returns
// true when a push was (re)scheduled.
func (a *AutoSaver) Observe(cur models.Snapshot) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !models.HasChanged(a.previous, cur) {
		return false
	}
	c := cur.Clone()
	a.previous = &c
	a.latest = c

	if a.pending != nil {
		a.pending.Stop()
	}
	a.gen++
	gen := a.gen
	a.pending = a.scheduler.AfterFunc(a.delay, func() {
		a.fire(gen)
	})
	return true
}

// Prime records s as already saved without scheduling a push
func (a *AutoSaver) Prime(s models.Snapshot) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c := s.Clone()
	a.previous = &c
}

// Pending reports whether a push is scheduled
func (a *AutoSaver) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending != nil
}

// Flush runs a scheduled push immediately. It returns false if nothing was pending.
func (a *AutoSaver) Flush() bool {
	a.mu.Lock()
	if a.pending == nil {
		a.mu.Unlock()
		return false
	}
	a.pending.Stop()
	a.pending = nil
	snap := a.latest
	a.mu.Unlock()

	a.push(snap)
	return true
}

// Stop cancels a scheduled push
func (a *AutoSaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pending != nil {
		a.pending.Stop()
		a.pending = nil
	}
}

func (a *AutoSaver) fire(gen uint64) {
	a.mu.Lock()
	// a newer edit or Flush/Stop already replaced this task
	if a.pending == nil || a.gen != gen {
		a.mu.Unlock()
		return
	}
	a.pending = nil
	snap := a.latest
	a.mu.Unlock()

	a.push(snap)
}
