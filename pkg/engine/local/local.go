// Package local is an in-process engine for local files. A render goroutine
// decodes frames at the source frame rate, asks the UI for a redraw and
// waits for the flip report before decoding the next one. When flips lag,
// a FrameSkipper thins the redraw requests.
package local

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"sync"
	"time"

	"danmaku-player/pkg/engine"
)

// FlipTimeout bounds how long the render goroutine waits for a flip report
// before it moves on to the next frame.
const FlipTimeout = 250 * time.Millisecond

// Source produces RGBA frames. mpeg.Decoder implements it.
type Source interface {
	Next() (pix []byte, pts float64, err error)
	Seek(seconds float64) error
	Size() (w, h int)
	FPS() float64
	Duration() float64
	Close() error
}

// Options tune an Engine.
type Options struct {
	// Loop restarts the source at end of file.
	Loop bool
	// Paused starts the engine paused.
	Paused bool
	// Interval overrides the frame interval derived from the source FPS.
	Interval time.Duration
}

// Engine implements engine.Core and engine.RenderContext.
type Engine struct {
	src   Source
	opts  Options
	queue *engine.Queue

	mu       sync.Mutex
	update   func()
	frame    []byte
	position float64
	paused   bool
	volume   float64
	muted    bool
	observed map[string]bool
	seekTo   *float64
	skipper  *FrameSkipper

	flipped   chan struct{}
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// Factory opens a source and starts an engine on it.
func Factory(open func() (Source, error), opts Options) engine.Factory {
	return func() (engine.Handle, error) {
		src, err := open()
		if err != nil {
			return engine.Handle{}, fmt.Errorf("%w: %w", engine.ErrCreate, err)
		}
		e := New(src, opts)
		return engine.Handle{Core: e, Render: e}, nil
	}
}

// New starts the render goroutine on src. The engine owns src.
func New(src Source, opts Options) *Engine {
	e := &Engine{
		src:      src,
		opts:     opts,
		queue:    engine.NewQueue(),
		paused:   opts.Paused,
		volume:   100,
		observed: make(map[string]bool),
		flipped:  make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	e.skipper = NewFrameSkipper(e.interval())
	go e.run()
	return e
}

func (e *Engine) interval() time.Duration {
	if e.opts.Interval > 0 {
		return e.opts.Interval
	}
	fps := e.src.FPS()
	if fps <= 0 {
		fps = 30
	}
	return time.Duration(float64(time.Second) / fps)
}

func (e *Engine) run() {
	defer close(e.done)
	ticker := time.NewTicker(e.interval())
	defer ticker.Stop()

	for {
		select {
		case <-e.stop:
			return
		case <-ticker.C:
		}

		e.mu.Lock()
		paused := e.paused
		seek := e.seekTo
		e.seekTo = nil
		e.mu.Unlock()

		if seek != nil {
			if err := e.src.Seek(*seek); err != nil {
				log.Printf("local.run: %v", err)
			}
			e.skipper.Reset()
		}
		if paused && seek == nil {
			continue
		}

		pix, pts, err := e.src.Next()
		if errors.Is(err, io.EOF) {
			e.queue.Push(engine.Other(engine.EventEndFile))
			if !e.opts.Loop {
				e.setPaused(true)
				continue
			}
			if err := e.src.Seek(0); err != nil {
				log.Printf("local.run: rewind failed: %v", err)
				e.setPaused(true)
			}
			continue
		}
		if err != nil {
			log.Printf("local.run: %v", err)
			continue
		}

		e.mu.Lock()
		e.frame = pix
		e.position = pts
		update := e.update
		observePos := e.observed[engine.PropTimePos]
		e.mu.Unlock()

		if observePos {
			e.queue.Push(engine.PropertyChange(engine.PropTimePos, engine.Double(pts)))
		}
		if update == nil || !e.skipper.Present() {
			continue
		}
		e.dropStaleFlip()
		requested := time.Now()
		update()

		select {
		case <-e.flipped:
			e.skipper.Observe(time.Since(requested))
		case <-time.After(FlipTimeout):
			e.skipper.Observe(FlipTimeout)
		case <-e.stop:
			return
		}
	}
}

// dropStaleFlip discards a flip report that arrived after its frame timed
// out, so the next wait measures the next frame.
func (e *Engine) dropStaleFlip() {
	select {
	case <-e.flipped:
	default:
	}
}

func (e *Engine) setPaused(p bool) {
	e.mu.Lock()
	changed := e.paused != p
	e.paused = p
	notify := changed && e.observed[engine.PropPause]
	e.mu.Unlock()
	if notify {
		e.queue.Push(engine.PropertyChange(engine.PropPause, engine.Bool(p)))
	}
}

func (e *Engine) SetProperty(name string, v engine.Value) error {
	switch name {
	case engine.PropPause:
		e.setPaused(v.AsBool())
	case engine.PropMute:
		e.mu.Lock()
		e.muted = v.AsBool()
		e.mu.Unlock()
	case engine.PropVolume:
		n, ok := v.AsInt()
		if !ok {
			return fmt.Errorf("set %s to %q: not a number", name, v.String())
		}
		e.mu.Lock()
		e.volume = float64(n)
		e.mu.Unlock()
	case engine.PropTimePos:
		f, err := strconv.ParseFloat(v.String(), 64)
		if err != nil {
			return fmt.Errorf("set %s: %w", name, err)
		}
		e.seek(f)
	default:
		return fmt.Errorf("set %s: %w", name, engine.ErrUnknownProperty)
	}
	return nil
}

func (e *Engine) GetProperty(name string) engine.Value {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch name {
	case engine.PropVideoW, engine.PropVideoH:
		if e.frame == nil {
			return engine.Absent()
		}
		w, h := e.src.Size()
		if name == engine.PropVideoW {
			return engine.Int(int64(w))
		}
		return engine.Int(int64(h))
	case engine.PropDuration:
		if d := e.src.Duration(); d > 0 {
			return engine.Double(d)
		}
	case engine.PropTimePos:
		return engine.Double(e.position)
	case engine.PropPause:
		return engine.Bool(e.paused)
	case engine.PropMute:
		return engine.Bool(e.muted)
	case engine.PropVolume:
		return engine.Double(e.volume)
	}
	return engine.Absent()
}

func (e *Engine) seek(seconds float64) {
	e.mu.Lock()
	e.seekTo = &seconds
	e.mu.Unlock()
}

// Command supports the subset the player issues: seek, cycle, set, quit.
func (e *Engine) Command(args ...string) error {
	if len(args) == 0 {
		return errors.New("empty command")
	}
	switch args[0] {
	case "seek":
		if len(args) < 2 {
			return errors.New("seek: missing target")
		}
		f, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("seek: %w", err)
		}
		if len(args) < 3 || args[2] == "relative" {
			e.mu.Lock()
			f += e.position
			e.mu.Unlock()
		}
		e.seek(f)
	case "cycle":
		if len(args) < 2 {
			return errors.New("cycle: missing property")
		}
		name := args[1]
		if name == "mute" {
			name = engine.PropMute
		}
		return e.SetProperty(name, engine.Bool(!e.GetProperty(name).AsBool()))
	case "set":
		if len(args) < 3 {
			return errors.New("set: missing value")
		}
		return e.SetProperty(args[1], engine.String(args[2]))
	case "quit", "stop":
		e.setPaused(true)
		e.queue.Push(engine.Other(engine.EventShutdown))
	default:
		return fmt.Errorf("unsupported command %q", args[0])
	}
	return nil
}

// ObserveProperty subscribes to name; like libmpv, the current value is
// delivered right away when there is one.
func (e *Engine) ObserveProperty(name string) error {
	e.mu.Lock()
	e.observed[name] = true
	e.mu.Unlock()

	if v := e.GetProperty(name); !v.IsAbsent() {
		e.queue.Push(engine.PropertyChange(name, v))
	}
	return nil
}

func (e *Engine) SetWakeupCallback(fn func()) {
	e.queue.SetWakeup(fn)
}

func (e *Engine) WaitEvent(timeout time.Duration) engine.Event {
	return e.queue.Wait(timeout)
}

func (e *Engine) SetUpdateCallback(fn func()) {
	e.mu.Lock()
	e.update = fn
	e.mu.Unlock()
}

// Draw blits the latest frame. Frames are decoded top-down, so they are
// mirrored only for a bottom-up destination (h > 0).
func (e *Engine) Draw(fb engine.Framebuffer, w, h int32) error {
	e.mu.Lock()
	pix := e.frame
	e.mu.Unlock()
	if pix == nil || fb == nil {
		return nil
	}
	vw, vh := e.src.Size()
	flipY := h > 0
	if h < 0 {
		h = -h
	}
	return fb.Blit(pix, vw, vh, w, h, flipY)
}

// ReportFlip releases the render goroutine waiting on the last frame.
func (e *Engine) ReportFlip() {
	select {
	case e.flipped <- struct{}{}:
	default:
	}
}

func (e *Engine) UninitGL() {
	e.mu.Lock()
	e.frame = nil
	e.mu.Unlock()
}

// Destroy stops the render goroutine and closes the source.
func (e *Engine) Destroy() {
	e.closeOnce.Do(func() {
		close(e.stop)
		<-e.done
		e.queue.Close()
		if err := e.src.Close(); err != nil {
			log.Printf("local.Destroy: close source: %v", err)
		}
	})
}
