// Package bridge moves engine notifications from engine goroutines onto the
// UI loop.
package bridge

import (
	"danmaku-player/pkg/engine"
	"danmaku-player/pkg/uiloop"
)

// Observer receives playback notifications on the UI loop.
type Observer interface {
	PositionChanged(seconds float64)
	DurationChanged(seconds float64)
}

// EndObserver is implemented by observers that also want to know when the
// engine stops playing. reason is the engine event name.
type EndObserver interface {
	PlaybackEnded(reason string)
}

// EventBridge turns the engine's wakeup callback into one coalesced drain
// task on the UI loop.
type EventBridge struct {
	core     engine.Core
	observer Observer
	drain    *uiloop.Signal
}

// NewEventBridge registers the wakeup callback on core. The bridge does not
// own core; Detach must run before core is destroyed.
func NewEventBridge(loop *uiloop.Loop, core engine.Core, observer Observer) *EventBridge {
	b := &EventBridge{
		core:     core,
		observer: observer,
	}
	b.drain = loop.NewSignal(b.Drain)
	core.SetWakeupCallback(b.Notify)
	return b
}

// Notify is the wakeup entry point. It may be called from any goroutine and
// only queues a drain.
func (b *EventBridge) Notify() {
	b.drain.Raise()
}

// Drain processes every pending engine event. UI loop only.
func (b *EventBridge) Drain() {
	for b.core != nil {
		ev := b.core.WaitEvent(0)
		if ev.Kind == engine.KindNone {
			break
		}
		b.handle(ev)
	}
}

func (b *EventBridge) handle(ev engine.Event) {
	switch ev.Kind {
	case engine.KindPropertyChange:
		v, ok := ev.Value.Double()
		if !ok || b.observer == nil {
			return
		}
		switch ev.Name {
		case engine.PropTimePos:
			b.observer.PositionChanged(v)
		case engine.PropDuration:
			b.observer.DurationChanged(v)
		}
	case engine.KindOther:
		if ev.Name != engine.EventEndFile && ev.Name != engine.EventShutdown {
			return
		}
		if eo, ok := b.observer.(EndObserver); ok {
			eo.PlaybackEnded(ev.Name)
		}
	default:
		// Uninteresting or unknown events.
	}
}

// Detach unregisters the wakeup callback and drops the engine reference.
// Later drains are no-ops. UI loop only.
func (b *EventBridge) Detach() {
	if b.core == nil {
		return
	}
	b.core.SetWakeupCallback(nil)
	b.core = nil
}

// attached reports whether the bridge still references an engine.
func (b *EventBridge) attached() bool {
	return b.core != nil
}
