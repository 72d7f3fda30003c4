package bridge

import (
	"fmt"
	"log"
	"time"

	"danmaku-player/pkg/engine"
	"danmaku-player/pkg/performance"
	"danmaku-player/pkg/uiloop"
)

// State is the draw/swap/flip handshake position of a render bridge.
type State int

const (
	Idle State = iota
	DrawRequested
	SwapPending
	FlipPending
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case DrawRequested:
		return "DrawRequested"
	case SwapPending:
		return "SwapPending"
	case FlipPending:
		return "FlipPending"
	default:
		return "Unknown"
	}
}

// Surface is the display side the bridge draws into. All methods are called
// on the UI loop.
type Surface interface {
	// Visible is false while the window is minimized or hidden; the display
	// system then never delivers swap completions.
	Visible() bool
	// FramebufferSize returns the drawable size in pixels.
	FramebufferSize() (w, h int32)
	Framebuffer() engine.Framebuffer
	MakeCurrent() error
	DoneCurrent()
	// Swap presents the drawn frame synchronously.
	Swap() error
	// ScheduleUpdate asks the host to call Paint and then Swapped on its
	// next frame.
	ScheduleUpdate()
}

// Overlay draws on top of the video frame after the engine draw call.
type Overlay func(w, h int32)

// RenderBridge drives the engine's render context from the UI loop.
type RenderBridge struct {
	rc      engine.RenderContext
	surface Surface
	overlay Overlay
	monitor *performance.RenderMonitor

	update *uiloop.Signal
	state  State
	again  bool
	closed bool
}

// NewRenderBridge registers the update callback on rc. The bridge holds rc
// without owning it; Close must run before the engine is destroyed.
func NewRenderBridge(loop *uiloop.Loop, rc engine.RenderContext, surface Surface, monitor *performance.RenderMonitor) *RenderBridge {
	if monitor == nil {
		monitor = performance.NewRenderMonitor(120)
	}
	b := &RenderBridge{
		rc:      rc,
		surface: surface,
		monitor: monitor,
	}
	b.update = loop.NewSignal(b.maybeUpdate)
	rc.SetUpdateCallback(b.RequestRedraw)
	return b
}

// SetOverlay installs the painter that runs after every engine draw.
func (b *RenderBridge) SetOverlay(o Overlay) {
	b.overlay = o
}

// RequestRedraw is the engine render goroutine's entry point. It only queues
// an update; at most one is outstanding.
func (b *RenderBridge) RequestRedraw() {
	b.update.Raise()
}

// State returns the current handshake state.
func (b *RenderBridge) State() State {
	return b.state
}

// Monitor exposes handshake metrics.
func (b *RenderBridge) Monitor() *performance.RenderMonitor {
	return b.monitor
}

func (b *RenderBridge) maybeUpdate() {
	if b.closed {
		return
	}
	if b.state != Idle {
		// The handshake in flight will draw; run once more when it finishes
		// so the most recent frame gets drawn.
		b.again = true
		b.monitor.RecordRequest(true)
		return
	}
	b.monitor.RecordRequest(false)
	b.state = DrawRequested

	if !b.surface.Visible() {
		b.paintSync()
		return
	}
	b.surface.ScheduleUpdate()
}

// paintSync draws, swaps and reports the flip without waiting for a swap
// notification that a hidden surface would never deliver.
func (b *RenderBridge) paintSync() {
	if err := b.surface.MakeCurrent(); err != nil {
		log.Printf("paintSync: make current failed: %v", err)
	}
	b.draw()
	b.state = SwapPending
	if err := b.surface.Swap(); err != nil {
		log.Printf("paintSync: swap failed: %v", err)
	}
	b.state = FlipPending
	b.flip(true)
	b.surface.DoneCurrent()
}

// Paint draws the current engine frame and the overlay. The host calls it
// from its frame loop; repaints without a pending request draw but leave
// the handshake alone.
func (b *RenderBridge) Paint() error {
	if b.closed {
		return nil
	}
	err := b.draw()
	if b.state == DrawRequested {
		b.state = SwapPending
	}
	return err
}

// Swapped is called by the host after the painted frame was presented.
func (b *RenderBridge) Swapped() {
	if b.closed || b.state != SwapPending {
		return
	}
	b.state = FlipPending
	b.flip(false)
}

func (b *RenderBridge) draw() error {
	w, h := b.surface.FramebufferSize()
	start := time.Now()
	err := b.rc.Draw(b.surface.Framebuffer(), w, -h)
	b.monitor.RecordDraw(time.Since(start), err)
	if err != nil {
		err = fmt.Errorf("engine draw: %w", err)
	}
	if b.overlay != nil {
		b.overlay(w, h)
	}
	return err
}

func (b *RenderBridge) flip(synchronous bool) {
	b.rc.ReportFlip()
	b.monitor.RecordFlip(synchronous)
	b.state = Idle

	if b.again {
		b.again = false
		b.update.Raise()
	}
}

// Close unregisters the update callback and releases the engine's render
// resources while the surface is current. UI loop only; call before the
// engine handle is destroyed.
func (b *RenderBridge) Close() {
	if b.closed {
		return
	}
	b.closed = true
	b.rc.SetUpdateCallback(nil)
	if err := b.surface.MakeCurrent(); err != nil {
		log.Printf("RenderBridge.Close: make current failed: %v", err)
	}
	b.rc.UninitGL()
	b.surface.DoneCurrent()
}
