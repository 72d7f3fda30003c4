package clock

import (
	"sync"
	"time"
)

// Clock is a monotonic elapsed-time source used for scheduling decisions.
type Clock interface {
	// Elapsed returns the time since the clock was started.
	Elapsed() time.Duration
}

// Monotonic measures elapsed time with the runtime's monotonic reading.
type Monotonic struct {
	start time.Time
}

// NewMonotonic starts a clock at zero.
func NewMonotonic() *Monotonic {
	return &Monotonic{start: time.Now()}
}

func (m *Monotonic) Elapsed() time.Duration {
	return time.Since(m.start)
}

// Manual is a clock that only moves when told to.
type Manual struct {
	mu  sync.Mutex
	now time.Duration
}

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d. Negative values are ignored.
func (m *Manual) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	m.now += d
	m.mu.Unlock()
}

// Set jumps to an absolute reading. The clock never goes backwards.
func (m *Manual) Set(d time.Duration) {
	m.mu.Lock()
	if d > m.now {
		m.now = d
	}
	m.mu.Unlock()
}
