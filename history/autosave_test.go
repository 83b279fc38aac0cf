package history

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordmark/models"
)

type fakeTask struct {
	f       func()
	delay   time.Duration
	stopped bool
}

func (t *fakeTask) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeScheduler struct {
	mu    sync.Mutex
	tasks []*fakeTask
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	task := &fakeTask{f: f, delay: d}
	s.tasks = append(s.tasks, task)
	return task
}

// fireAll runs every task that has not been stopped, like timers expiring
func (s *fakeScheduler) fireAll() {
	s.mu.Lock()
	tasks := append([]*fakeTask(nil), s.tasks...)
	s.mu.Unlock()
	for _, t := range tasks {
		if !t.stopped {
			t.stopped = true
			t.f()
		}
	}
}

func newTestAutoSaver() (*AutoSaver, *fakeScheduler, *[]models.Snapshot) {
	sched := &fakeScheduler{}
	var pushed []models.Snapshot
	a := NewAutoSaver(sched, 0, func(s models.Snapshot) {
		pushed = append(pushed, s)
	})
	return a, sched, &pushed
}

func TestAutoSaverCollapsesBursts(t *testing.T) {
	a, sched, pushed := newTestAutoSaver()

	for _, txt := range []string{"W", "Wo", "Wor", "Word"} {
		assert.True(t, a.Observe(snap(txt)))
	}
	require.Len(t, sched.tasks, 4)
	assert.Equal(t, DefaultDebounce, sched.tasks[0].delay)
	for _, task := range sched.tasks[:3] {
		assert.True(t, task.stopped, "earlier tasks are canceled")
	}

	sched.fireAll()
	require.Len(t, *pushed, 1)
	assert.Equal(t, "Word", (*pushed)[0].Text.Text)
	assert.False(t, a.Pending())
}

func TestAutoSaverIgnoresTimestampOnlyChanges(t *testing.T) {
	a, sched, pushed := newTestAutoSaver()
	a.Prime(snap("same"))

	later := snap("same").WithTimestamp(base.Add(time.Minute))
	assert.False(t, a.Observe(later))
	assert.Empty(t, sched.tasks)

	sched.fireAll()
	assert.Empty(t, *pushed)
}

func TestAutoSaverStaleTaskDoesNotPush(t *testing.T) {
	a, sched, pushed := newTestAutoSaver()
	a.Observe(snap("one"))
	stale := sched.tasks[0]
	a.Observe(snap("two"))

	// a timer that already started running when it was stopped
	stale.f()
	assert.Empty(t, *pushed)

	sched.fireAll()
	require.Len(t, *pushed, 1)
	assert.Equal(t, "two", (*pushed)[0].Text.Text)
}

func TestAutoSaverFlushAndStop(t *testing.T) {
	a, sched, pushed := newTestAutoSaver()

	assert.False(t, a.Flush())

	a.Observe(snap("flushed"))
	assert.True(t, a.Pending())
	assert.True(t, a.Flush())
	require.Len(t, *pushed, 1)
	assert.Equal(t, "flushed", (*pushed)[0].Text.Text)

	sched.fireAll()
	assert.Len(t, *pushed, 1)

	a.Observe(snap("dropped"))
	a.Stop()
	assert.False(t, a.Pending())
	sched.fireAll()
	assert.Len(t, *pushed, 1)
}

func TestAutoSaverWithRealTimers(t *testing.T) {
	done := make(chan models.Snapshot, 1)
	a := NewAutoSaver(nil, 10*time.Millisecond, func(s models.Snapshot) { done <- s })
	a.Observe(snap("timer"))

	select {
	case s := <-done:
		assert.Equal(t, "timer", s.Text.Text)
	case <-time.After(2 * time.Second):
		t.Fatal("auto-save did not fire")
	}
}
