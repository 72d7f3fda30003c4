// Package uiloop is the single-threaded task queue of the display loop.
//
// Exactly one goroutine (the one that locked the main OS thread for SDL)
// runs queued tasks with RunPending. Any goroutine may Post tasks or Raise
// signals. Raised signals wait in their own list, so raising never blocks,
// even on the UI goroutine with a full task queue.
package uiloop

import (
	"context"
	"sync"
	"time"
)

const defaultCapacity = 256

// Loop is a FIFO of tasks executed on the UI goroutine.
type Loop struct {
	tasks chan func()
	wake  chan struct{}

	mu    sync.Mutex
	ready []*Signal

	closeOnce sync.Once
	done      chan struct{}
}

// New creates a loop whose queue holds capacity tasks before Post blocks.
func New(capacity int) *Loop {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Loop{
		tasks: make(chan func(), capacity),
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// Post queues task for the UI goroutine. Safe from any goroutine. Posting to
// a closed loop drops the task.
func (l *Loop) Post(task func()) {
	select {
	case <-l.done:
		return
	default:
	}
	select {
	case l.tasks <- task:
	case <-l.done:
		return
	}
	l.poke()
}

func (l *Loop) poke() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// RunPending runs the tasks that are queued right now, in order, then the
// signals raised before the call, and returns how many ran. Work queued
// while running waits for the next call so one busy producer cannot starve
// the frame.
func (l *Loop) RunPending() int {
	l.mu.Lock()
	signals := l.ready
	l.ready = nil
	l.mu.Unlock()

	n := len(l.tasks)
	ran := 0
drain:
	for i := 0; i < n; i++ {
		select {
		case task := <-l.tasks:
			task()
			ran++
		default:
			break drain
		}
	}
	for _, s := range signals {
		select {
		case <-l.done:
			return ran
		default:
		}
		s.run()
		ran++
	}
	return ran
}

// Pending returns the number of queued tasks and raised signals.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks) + len(l.ready)
}

// Wait blocks until a task is posted or a signal raised, the timeout passes
// or ctx ends.
func (l *Loop) Wait(ctx context.Context, timeout time.Duration) {
	if l.Pending() > 0 {
		return
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-l.wake:
	case <-timer.C:
	case <-ctx.Done():
	case <-l.done:
	}
}

// Close stops accepting tasks. Already queued tasks are discarded.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
	})
	l.mu.Lock()
	l.ready = nil
	l.mu.Unlock()
	for {
		select {
		case <-l.tasks:
		default:
			return
		}
	}
}

// Signal is a parameterless task that is queued at most once at a time.
// Raising it while it is already queued is a no-op; raising it while it runs
// queues exactly one more run.
type Signal struct {
	loop  *Loop
	fn    func()
	token chan struct{}
}

// NewSignal binds fn to the loop. fn runs on the UI goroutine.
func (l *Loop) NewSignal(fn func()) *Signal {
	return &Signal{
		loop:  l,
		fn:    fn,
		token: make(chan struct{}, 1),
	}
}

// Raise queues the signal unless it is already queued. Safe from any
// goroutine and never blocks: the held token bounds the ready list to one
// entry per signal.
func (s *Signal) Raise() {
	select {
	case <-s.loop.done:
		return
	default:
	}
	select {
	case s.token <- struct{}{}:
	default:
		return
	}
	l := s.loop
	l.mu.Lock()
	l.ready = append(l.ready, s)
	l.mu.Unlock()
	l.poke()
}

// queued reports whether a run is waiting in the loop.
func (s *Signal) queued() bool {
	return len(s.token) > 0
}

func (s *Signal) run() {
	select {
	case <-s.token:
	default:
	}
	s.fn()
}
