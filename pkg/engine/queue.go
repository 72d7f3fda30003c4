package engine

import (
	"sync"
	"time"
)

// Queue is a goroutine-safe FIFO of engine events with a wakeup callback.
// Engine implementations push from their worker goroutines; the player polls
// with Wait.
type Queue struct {
	mu      sync.Mutex
	events  []Event
	wakeup  func()
	arrived chan struct{}
	closed  bool
}

func NewQueue() *Queue {
	return &Queue{arrived: make(chan struct{}, 1)}
}

// SetWakeup replaces the wakeup callback. nil unregisters; once this returns
// the previous callback is no longer invoked by later pushes.
func (q *Queue) SetWakeup(fn func()) {
	q.mu.Lock()
	q.wakeup = fn
	q.mu.Unlock()
}

// Push appends an event and fires the wakeup callback.
func (q *Queue) Push(ev Event) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.events = append(q.events, ev)
	wake := q.wakeup
	q.mu.Unlock()

	select {
	case q.arrived <- struct{}{}:
	default:
	}
	if wake != nil {
		wake()
	}
}

// Wait pops the oldest event, waiting up to timeout for one to arrive.
func (q *Queue) Wait(timeout time.Duration) Event {
	if ev, ok := q.pop(); ok {
		return ev
	}
	if timeout <= 0 {
		return None
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case <-q.arrived:
			if ev, ok := q.pop(); ok {
				return ev
			}
		case <-timer.C:
			if ev, ok := q.pop(); ok {
				return ev
			}
			return None
		}
	}
}

func (q *Queue) pop() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) == 0 {
		return None, false
	}
	ev := q.events[0]
	q.events[0] = Event{}
	q.events = q.events[1:]
	return ev, true
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Close drops queued events and the wakeup callback; later pushes are ignored.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.events = nil
	q.wakeup = nil
	q.mu.Unlock()
}
