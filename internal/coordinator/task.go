package coordinator

import (
	"sync"
	"time"
)

// taskSlot holds at most one pending timer-driven task. Scheduling a new
// task always cancels the previous one in the same slot, which is the
// contract both the search debounce and the periodic refresh rely on.
type taskSlot struct {
	mu    sync.Mutex
	timer *time.Timer
}

// Schedule arms fn to run after d, replacing any previously scheduled task.
func (s *taskSlot) Schedule(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(d, fn)
}

// Cancel stops the pending task, if any. A task already running is not
// interrupted; callers guard against stale runs with their own generation
// checks.
func (s *taskSlot) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
