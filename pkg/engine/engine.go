package engine

import "time"

// Observed properties, fixed at player construction.
const (
	PropDuration = "duration"
	PropTimePos  = "time-pos"
	PropVideoW   = "video-params/w"
	PropVideoH   = "video-params/h"
	PropPause    = "pause"
	PropMute     = "ao-mute"
	PropVolume   = "ao-volume"
)

// Core is the command/property surface of a playback engine. Apart from
// SetWakeupCallback's callback, which the engine invokes from its own
// goroutines, every method is called from the UI loop.
type Core interface {
	SetProperty(name string, v Value) error
	GetProperty(name string) Value
	Command(args ...string) error
	ObserveProperty(name string) error
	// SetWakeupCallback registers fn to be called from an arbitrary engine
	// goroutine whenever new events are queued. nil unregisters.
	SetWakeupCallback(fn func())
	// WaitEvent returns the next queued event, waiting up to timeout.
	// A zero timeout polls.
	WaitEvent(timeout time.Duration) Event
	Destroy()
}

// Framebuffer is the display-side destination of a render call.
type Framebuffer interface {
	// Blit draws an RGBA image of width x height pixels into a w x h box.
	// flipY mirrors the image vertically.
	Blit(pix []byte, width, height int, w, h int32, flipY bool) error
}

// RenderContext is the render side of an engine. The update callback is
// invoked from the engine's render goroutine; the rest from the UI loop.
type RenderContext interface {
	SetUpdateCallback(fn func())
	// Draw renders the current frame. A negative h means the destination is
	// top-down and the engine must flip its bottom-up output.
	Draw(fb Framebuffer, w, h int32) error
	// ReportFlip acknowledges that the drawn frame reached the screen.
	ReportFlip()
	// UninitGL releases render-side resources. The surface must be current.
	UninitGL()
}

// Handle is what an engine factory hands to the player. Render is nil for
// headless engines.
type Handle struct {
	Core   Core
	Render RenderContext
}

// Factory creates an engine handle. It is called once per player.
type Factory func() (Handle, error)
