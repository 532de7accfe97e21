// Package scheduler provides a priority task queue: lower class first,
// FIFO within a class. With only two classes, two FIFO queues polled in
// fixed priority order replace a general heap.
package scheduler

import (
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned by Submit after Close.
var ErrClosed = errors.New("scheduler: closed")

// Scheduler orders pending tasks by priority class, then creation order.
// Safe for many concurrent submitters and takers.
type Scheduler struct {
	mu     sync.Mutex
	judge  []Task
	search []Task
	closed bool

	// notify wakes one blocked taker. Buffered so a submit with no waiting
	// taker is not lost; pop re-signals while tasks remain so coalesced
	// signals cannot strand a taker past a single poll interval.
	notify chan struct{}
}

// New creates an empty scheduler.
func New() *Scheduler {
	return &Scheduler{notify: make(chan struct{}, 1)}
}

// Submit enqueues a task. Fails only after Close.
func (s *Scheduler) Submit(t Task) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	switch t.Class {
	case ClassJudge:
		s.judge = append(s.judge, t)
	default:
		s.search = append(s.search, t)
	}
	s.mu.Unlock()

	s.signal()
	return nil
}

// TakeNext returns the next task by priority, waiting up to timeout when
// the queue is empty. ok is false if nothing arrived in time; that is not
// an error, it lets the caller recheck its completion predicate.
func (s *Scheduler) TakeNext(timeout time.Duration) (Task, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		if t, ok := s.pop(); ok {
			return t, true
		}
		select {
		case <-s.notify:
		case <-timer.C:
			return Task{}, false
		}
	}
}

// Len returns the number of pending tasks.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.judge) + len(s.search)
}

// Empty reports whether no tasks are pending.
func (s *Scheduler) Empty() bool {
	return s.Len() == 0
}

// Close stops accepting submissions. Pending tasks can still be taken.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.signal()
}

func (s *Scheduler) pop() (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var t Task
	switch {
	case len(s.judge) > 0:
		t = s.judge[0]
		s.judge = s.judge[1:]
	case len(s.search) > 0:
		t = s.search[0]
		s.search = s.search[1:]
	default:
		return Task{}, false
	}

	if len(s.judge)+len(s.search) > 0 {
		s.signal()
	}
	return t, true
}

func (s *Scheduler) signal() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}
