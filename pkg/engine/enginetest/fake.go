// Package enginetest provides an in-memory engine for exercising the player
// without libmpv or FFmpeg.
package enginetest

import (
	"sync"
	"time"

	"danmaku-player/pkg/engine"
)

// Core is a scripted engine.Core. Events are pushed by tests (from any
// goroutine) and polled by the code under test.
type Core struct {
	Queue *engine.Queue

	mu        sync.Mutex
	props     map[string]engine.Value
	observed  []string
	commands  [][]string
	polls     int
	destroyed bool
}

func NewCore() *Core {
	return &Core{
		Queue: engine.NewQueue(),
		props: make(map[string]engine.Value),
	}
}

// Emit queues an event and fires the wakeup callback on the caller's goroutine.
func (c *Core) Emit(ev engine.Event) {
	c.Queue.Push(ev)
}

func (c *Core) SetProperty(name string, v engine.Value) error {
	c.mu.Lock()
	c.props[name] = v
	c.mu.Unlock()
	return nil
}

func (c *Core) GetProperty(name string) engine.Value {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.props[name]
}

func (c *Core) Command(args ...string) error {
	c.mu.Lock()
	c.commands = append(c.commands, append([]string(nil), args...))
	c.mu.Unlock()
	return nil
}

func (c *Core) ObserveProperty(name string) error {
	c.mu.Lock()
	c.observed = append(c.observed, name)
	c.mu.Unlock()
	return nil
}

func (c *Core) SetWakeupCallback(fn func()) {
	c.Queue.SetWakeup(fn)
}

func (c *Core) WaitEvent(timeout time.Duration) engine.Event {
	c.mu.Lock()
	c.polls++
	c.mu.Unlock()
	return c.Queue.Wait(timeout)
}

func (c *Core) Destroy() {
	c.mu.Lock()
	c.destroyed = true
	c.mu.Unlock()
	c.Queue.Close()
}

func (c *Core) Observed() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.observed...)
}

func (c *Core) Commands() [][]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]string(nil), c.commands...)
}

// Polls counts WaitEvent calls.
func (c *Core) Polls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.polls
}

func (c *Core) Destroyed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.destroyed
}

// Render is a recording engine.RenderContext.
type Render struct {
	mu      sync.Mutex
	update  func()
	draws   []Draw
	flips   int
	uninit  bool
	log     []string
	drawErr error
}

// Draw records the arguments of one Draw call.
type Draw struct {
	W, H int32
}

func NewRender() *Render {
	return &Render{}
}

// Frame simulates the render goroutine announcing a new frame.
func (r *Render) Frame() {
	r.mu.Lock()
	fn := r.update
	r.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (r *Render) SetUpdateCallback(fn func()) {
	r.mu.Lock()
	r.update = fn
	if fn == nil {
		r.log = append(r.log, "unregister")
	}
	r.mu.Unlock()
}

func (r *Render) Draw(fb engine.Framebuffer, w, h int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.draws = append(r.draws, Draw{W: w, H: h})
	r.log = append(r.log, "draw")
	if r.drawErr != nil {
		return r.drawErr
	}
	if fb != nil {
		return fb.Blit(nil, 0, 0, w, h, h > 0)
	}
	return nil
}

func (r *Render) ReportFlip() {
	r.mu.Lock()
	r.flips++
	r.log = append(r.log, "flip")
	r.mu.Unlock()
}

func (r *Render) UninitGL() {
	r.mu.Lock()
	r.uninit = true
	r.log = append(r.log, "uninit")
	r.mu.Unlock()
}

// FailDraws makes subsequent Draw calls return err.
func (r *Render) FailDraws(err error) {
	r.mu.Lock()
	r.drawErr = err
	r.mu.Unlock()
}

func (r *Render) Draws() []Draw {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Draw(nil), r.draws...)
}

func (r *Render) Flips() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flips
}

func (r *Render) Uninitialized() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.uninit
}

func (r *Render) Registered() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.update != nil
}

// Log returns the ordered list of draw/flip/unregister/uninit calls.
func (r *Render) Log() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.log...)
}
