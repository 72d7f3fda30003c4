// Package danmaku schedules and animates scrolling comment overlays.
package danmaku

import (
	"math/rand"
	"time"

	"danmaku-player/pkg/clock"
)

const (
	// ChannelCount is the number of horizontal lanes on the play surface.
	ChannelCount = 24

	// Speed is the horizontal travel speed in pixels per millisecond.
	Speed = 0.17

	// BufferMs is added to every occupancy estimate so consecutive comments
	// in one lane keep a gap.
	BufferMs = 100

	// ExitMargin is how far past the left edge a comment travels before it
	// is removed.
	ExitMargin = 500
)

// Channel identifies a display lane in [0, ChannelCount).
type Channel int

// Valid reports whether c is a lane index.
func (c Channel) Valid() bool {
	return c >= 0 && c < ChannelCount
}

// EstimateDuration returns how long, in milliseconds, a comment of the given
// rendered width keeps its lane busy.
func EstimateDuration(widthPx float64) float64 {
	return widthPx/Speed + BufferMs
}

// TravelDuration returns how long, in milliseconds, a comment takes to cross
// a surface of the given width and leave it by ExitMargin pixels.
func TravelDuration(surfaceWidth int32) float64 {
	return float64(surfaceWidth+ExitMargin) / Speed
}

// Scheduler allocates lanes to new comments. It is owned by the UI loop and
// not safe for concurrent use.
type Scheduler struct {
	clock     clock.Clock
	rng       *rand.Rand
	busyUntil [ChannelCount]time.Duration
}

// NewScheduler creates a scheduler with every lane free. rng drives the
// saturation fallback; pass a seeded source for reproducible runs.
func NewScheduler(c clock.Clock, rng *rand.Rand) *Scheduler {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Scheduler{clock: c, rng: rng}
}

// Allocate returns the lowest lane whose previous comment has left the
// screen. When every lane is busy a random lane is reused and the overlap is
// accepted. The chosen lane stays busy for estimatedDurationMs.
func (s *Scheduler) Allocate(estimatedDurationMs int) Channel {
	now := s.clock.Elapsed()

	ch := Channel(-1)
	for i := 0; i < ChannelCount; i++ {
		if s.busyUntil[i] <= now {
			ch = Channel(i)
			break
		}
	}
	if ch < 0 {
		ch = Channel(s.rng.Intn(ChannelCount))
	}

	s.busyUntil[ch] = now + time.Duration(estimatedDurationMs)*time.Millisecond
	return ch
}

// BusyUntil returns when lane ch is expected to be free again.
func (s *Scheduler) BusyUntil(ch Channel) time.Duration {
	if !ch.Valid() {
		return 0
	}
	return s.busyUntil[ch]
}

// free returns the number of lanes available right now.
func (s *Scheduler) free() int {
	now := s.clock.Elapsed()
	n := 0
	for _, until := range s.busyUntil {
		if until <= now {
			n++
		}
	}
	return n
}
