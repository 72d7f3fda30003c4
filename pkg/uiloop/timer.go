package uiloop

import (
	"sync"
	"time"
)

// Timer repeatedly runs a check on the UI goroutine until the check reports
// success or the timer is stopped.
type Timer struct {
	signal   *Signal
	stopOnce sync.Once
	stop     chan struct{}
	stopped  chan struct{}
}

// Every starts a repeating timer. check runs on the UI goroutine once per
// interval; returning true cancels the timer. Ticks that arrive while a
// check is still queued are coalesced.
func (l *Loop) Every(interval time.Duration, check func() bool) *Timer {
	t := &Timer{
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	t.signal = l.NewSignal(func() {
		if t.Done() {
			return
		}
		if check() {
			t.Stop()
		}
	})

	go func() {
		defer close(t.stopped)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-l.done:
				return
			case <-ticker.C:
				t.signal.Raise()
			}
		}
	}()
	return t
}

// Stop cancels the timer. Safe to call more than once and from any goroutine.
func (t *Timer) Stop() {
	t.stopOnce.Do(func() {
		close(t.stop)
	})
}

// Done reports whether the timer was stopped.
func (t *Timer) Done() bool {
	select {
	case <-t.stop:
		return true
	default:
		return false
	}
}

// Stopped is closed once the ticking goroutine has exited.
func (t *Timer) Stopped() <-chan struct{} {
	return t.stopped
}
