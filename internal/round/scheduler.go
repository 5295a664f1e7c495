package round

import (
	"sort"
	"sync"
	"time"
)

// Task is a scheduled callback that can be cancelled.
type Task interface {
	Stop() bool
}

// Scheduler runs callbacks later or repeatedly.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Task
	Every(d time.Duration, f func()) Task
	Now() time.Time
}

// Clock schedules on wall-clock time.
type Clock struct{}

// AfterFunc runs f once after d.
func (Clock) AfterFunc(d time.Duration, f func()) Task {
	return time.AfterFunc(d, f)
}

// Every runs f every d until stopped.
func (Clock) Every(d time.Duration, f func()) Task {
	t := &ticker{stopCh: make(chan struct{})}
	tk := time.NewTicker(d)
	go func() {
		defer tk.Stop()
		for {
			select {
			case <-t.stopCh:
				return
			case <-tk.C:
				f()
			}
		}
	}()
	return t
}

// Now returns the current time.
func (Clock) Now() time.Time {
	return time.Now()
}

type ticker struct {
	once   sync.Once
	stopCh chan struct{}
}

func (t *ticker) Stop() bool {
	stopped := false
	t.once.Do(func() {
		close(t.stopCh)
		stopped = true
	})
	return stopped
}

// ManualScheduler advances time only when told to. Callbacks run
// synchronously inside Advance, in due order.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Time
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	s       *ManualScheduler
	at      time.Time
	every   time.Duration
	seq     int
	f       func()
	stopped bool
}

func (t *manualTask) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// NewManualScheduler starts the clock at the given time.
func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{now: start}
}

func (s *ManualScheduler) add(d, every time.Duration, f func()) Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &manualTask{s: s, at: s.now.Add(d), every: every, seq: s.seq, f: f}
	s.tasks = append(s.tasks, t)
	return t
}

// AfterFunc schedules f once after d.
func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) Task {
	return s.add(d, 0, f)
}

// Every schedules f every d.
func (s *ManualScheduler) Every(d time.Duration, f func()) Task {
	return s.add(d, d, f)
}

// Now returns the simulated time.
func (s *ManualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending returns the number of live tasks.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Advance moves time forward by d, firing every task that falls due.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()

	for {
		s.mu.Lock()
		next := s.next(target)
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		s.now = next.at
		if next.every > 0 {
			next.at = next.at.Add(next.every)
		} else {
			next.stopped = true
		}
		f := next.f
		s.mu.Unlock()

		f()
	}
}

// next returns the earliest live task due by target and prunes stopped ones.
// Callers hold s.mu.
func (s *ManualScheduler) next(target time.Time) *manualTask {
	live := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.stopped {
			live = append(live, t)
		}
	}
	s.tasks = live

	sort.SliceStable(s.tasks, func(i, j int) bool {
		if s.tasks[i].at.Equal(s.tasks[j].at) {
			return s.tasks[i].seq < s.tasks[j].seq
		}
		return s.tasks[i].at.Before(s.tasks[j].at)
	})

	if len(s.tasks) == 0 || s.tasks[0].at.After(target) {
		return nil
	}
	return s.tasks[0]
}
