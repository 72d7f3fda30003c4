package performance

import (
	"sync"
	"time"
)

// RollingAverage maintains a rolling average of durations over a fixed window
type RollingAverage struct {
	samples    []time.Duration
	maxSamples int
	sum        time.Duration
	index      int
	filled     bool
	mu         sync.RWMutex
}

// NewRollingAverage creates a rolling average tracker with specified window size
func NewRollingAverage(windowSize int) *RollingAverage {
	if windowSize <= 0 {
		windowSize = 1
	}
	return &RollingAverage{
		samples:    make([]time.Duration, windowSize),
		maxSamples: windowSize,
	}
}

// Add records a new sample, evicting the oldest once the window is full
func (r *RollingAverage) Add(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.filled {
		r.sum -= r.samples[r.index]
	}
	r.samples[r.index] = d
	r.sum += d

	r.index++
	if r.index >= r.maxSamples {
		r.index = 0
		r.filled = true
	}
}

// Average returns the current rolling average
func (r *RollingAverage) Average() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := r.countLocked()
	if count == 0 {
		return 0
	}
	return r.sum / time.Duration(count)
}

// Count returns the number of samples currently tracked
func (r *RollingAverage) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.countLocked()
}

func (r *RollingAverage) countLocked() int {
	if r.filled {
		return r.maxSamples
	}
	return r.index
}

// Reset clears all samples
func (r *RollingAverage) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sum = 0
	r.index = 0
	r.filled = false
	r.samples = make([]time.Duration, r.maxSamples)
}

// RenderMonitor tracks the draw/flip handshake between the render bridge
// and the engine.
type RenderMonitor struct {
	drawTimes *RollingAverage

	requests   int
	coalesced  int
	asyncFlips int
	syncFlips  int
	drawErrors int
	startTime  time.Time
	mu         sync.RWMutex
}

// RenderReport contains aggregated handshake metrics
type RenderReport struct {
	AvgDrawMs     float64 // Average engine draw call time in milliseconds
	Requests      int     // Redraw requests that reached the UI loop
	Coalesced     int     // Requests absorbed by an in-flight handshake
	AsyncFlips    int     // Flips reported after a scheduled paint and swap
	SyncFlips     int     // Flips reported by the hidden-surface fallback
	DrawErrors    int     // Engine draw calls that returned an error
	UptimeSeconds int64   // Seconds since monitor started
}

// Flips returns the total number of flip reports.
func (r RenderReport) Flips() int {
	return r.AsyncFlips + r.SyncFlips
}

// NewRenderMonitor creates a monitor averaging over windowSize draws
func NewRenderMonitor(windowSize int) *RenderMonitor {
	return &RenderMonitor{
		drawTimes: NewRollingAverage(windowSize),
		startTime: time.Now(),
	}
}

// RecordRequest counts a redraw request; coalesced requests piggyback on a
// handshake that is already in flight.
func (m *RenderMonitor) RecordRequest(coalesced bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests++
	if coalesced {
		m.coalesced++
	}
}

// RecordDraw records the duration of one engine draw call
func (m *RenderMonitor) RecordDraw(d time.Duration, err error) {
	m.drawTimes.Add(d)
	if err != nil {
		m.mu.Lock()
		m.drawErrors++
		m.mu.Unlock()
	}
}

// RecordFlip counts a flip report by the path that produced it
func (m *RenderMonitor) RecordFlip(synchronous bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if synchronous {
		m.syncFlips++
	} else {
		m.asyncFlips++
	}
}

// GetReport generates a report with current metrics
func (m *RenderMonitor) GetReport() RenderReport {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return RenderReport{
		AvgDrawMs:     float64(m.drawTimes.Average().Microseconds()) / 1000.0,
		Requests:      m.requests,
		Coalesced:     m.coalesced,
		AsyncFlips:    m.asyncFlips,
		SyncFlips:     m.syncFlips,
		DrawErrors:    m.drawErrors,
		UptimeSeconds: int64(time.Since(m.startTime).Seconds()),
	}
}

// Reset clears all metrics
func (m *RenderMonitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.drawTimes.Reset()
	m.requests = 0
	m.coalesced = 0
	m.asyncFlips = 0
	m.syncFlips = 0
	m.drawErrors = 0
	m.startTime = time.Now()
}
