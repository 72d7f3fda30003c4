package local

import (
	"log"
	"sync"
	"time"

	"danmaku-player/pkg/performance"
)

// SkipMode is how many decoded frames the engine drops per presented frame.
type SkipMode int

const (
	ModeNormal SkipMode = iota // present every frame
	ModeSkip2                  // present every 2nd frame
	ModeSkip3                  // present every 3rd frame
)

func (m SkipMode) String() string {
	switch m {
	case ModeNormal:
		return "Normal"
	case ModeSkip2:
		return "Skip2"
	case ModeSkip3:
		return "Skip3"
	default:
		return "Unknown"
	}
}

// FrameSkipper decides which decoded frames are handed to the UI. Decoding
// never stops, so playback time keeps pace with the clock; only the redraw
// requests are thinned when flips come back slower than the frame interval.
type FrameSkipper struct {
	mu sync.Mutex

	latency *performance.RollingAverage
	mode    SkipMode
	counter uint64

	consecutiveSlow int
	consecutiveGood int

	slow time.Duration // average flip latency above this is slow
	good time.Duration // average flip latency below this is good

	enterSkip2After   int
	enterSkip3After   int
	exitToNormalAfter int
	exitToSkip2After  int
}

// NewFrameSkipper sizes its thresholds from the frame interval: a flip that
// takes longer than two intervals is slow, one under a single interval is good.
func NewFrameSkipper(interval time.Duration) *FrameSkipper {
	return &FrameSkipper{
		latency:           performance.NewRollingAverage(30),
		slow:              2 * interval,
		good:              interval,
		enterSkip2After:   3,
		enterSkip3After:   5,
		exitToNormalAfter: 60,
		exitToSkip2After:  30,
	}
}

// Observe records how long the UI took to flip the last presented frame.
func (f *FrameSkipper) Observe(latency time.Duration) {
	f.latency.Add(latency)
	avg := f.latency.Average()

	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case avg > f.slow:
		f.consecutiveSlow++
		f.consecutiveGood = 0
	case avg < f.good:
		f.consecutiveGood++
		f.consecutiveSlow = 0
	default:
		f.consecutiveSlow = 0
		f.consecutiveGood = 0
	}

	switch f.mode {
	case ModeNormal:
		if f.consecutiveSlow >= f.enterSkip2After {
			f.setModeLocked(ModeSkip2)
		}
	case ModeSkip2:
		if f.consecutiveSlow >= f.enterSkip3After {
			f.setModeLocked(ModeSkip3)
		} else if f.consecutiveGood >= f.exitToNormalAfter {
			f.setModeLocked(ModeNormal)
		}
	case ModeSkip3:
		if f.consecutiveGood >= f.exitToSkip2After {
			f.setModeLocked(ModeSkip2)
		}
	}
}

func (f *FrameSkipper) setModeLocked(m SkipMode) {
	log.Printf("FrameSkipper: %s -> %s (avg flip %v)", f.mode, m, f.latency.Average())
	f.mode = m
	f.consecutiveSlow = 0
	f.consecutiveGood = 0
}

// Present reports whether the next decoded frame should be handed to the UI.
func (f *FrameSkipper) Present() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counter++
	switch f.mode {
	case ModeSkip2:
		return f.counter%2 == 0
	case ModeSkip3:
		return f.counter%3 == 0
	default:
		return true
	}
}

// Mode returns the current skip mode.
func (f *FrameSkipper) Mode() SkipMode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

// Reset returns to presenting every frame, e.g. after a seek.
func (f *FrameSkipper) Reset() {
	f.latency.Reset()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mode = ModeNormal
	f.counter = 0
	f.consecutiveSlow = 0
	f.consecutiveGood = 0
}
