// Package player ties an engine handle to the UI loop: it owns the engine,
// bridges its notifications, and runs the danmaku overlay on top of it.
package player

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"

	"danmaku-player/pkg/bridge"
	"danmaku-player/pkg/clock"
	"danmaku-player/pkg/danmaku"
	"danmaku-player/pkg/engine"
	"danmaku-player/pkg/performance"
	"danmaku-player/pkg/uiloop"
)

const (
	// ResolutionPollInterval is how often video-params/w is checked until the
	// engine reports a video size.
	ResolutionPollInterval = 500 * time.Millisecond

	// DefaultFontSize is the pixel size used when no text measurer is set.
	DefaultFontSize = 18

	defaultWidth  = 1280
	defaultHeight = 720
)

// Options configures a Player. Factory and Loop are required.
type Options struct {
	Factory engine.Factory
	Loop    *uiloop.Loop

	// Surface is where video and overlay are drawn. nil runs headless: only
	// engine events are bridged.
	Surface bridge.Surface
	// Overlay paints live danmaku after every engine draw.
	Overlay bridge.Overlay
	Monitor *performance.RenderMonitor

	Clock clock.Clock
	Rand  *rand.Rand

	// Measure returns the rendered width of a comment in pixels.
	Measure func(text string) float64

	// RecordPath, when set, receives every launched comment as ASS once the
	// video resolution is known.
	RecordPath string

	// OnResolution runs on the UI loop when the video size is first known.
	OnResolution func(w, h int)
	// OnEnd runs on the UI loop when the engine stops playing.
	OnEnd func(reason string)

	DanmakuVisible bool
	PollInterval   time.Duration
}

// Player owns one engine handle. Apart from construction every method must
// be called on the UI loop.
type Player struct {
	opts   Options
	core   engine.Core
	render engine.RenderContext

	events    *bridge.EventBridge
	video     *bridge.RenderBridge
	scheduler *danmaku.Scheduler
	animator  *danmaku.Animator
	poll      *uiloop.Timer
	recorder  *danmaku.Recorder

	position float64
	duration float64
	width    int
	height   int
	visible  bool
	ended    bool

	closeOnce sync.Once
}

// EstimateWidth approximates the rendered width of text when no font is
// loaded: wide (CJK) cells take a full em, narrow cells half of one.
func EstimateWidth(text string) float64 {
	return float64(runewidth.StringWidth(text)) * DefaultFontSize / 2
}

// New creates the engine through opts.Factory and wires it to the loop.
func New(opts Options) (*Player, error) {
	if opts.Factory == nil || opts.Loop == nil {
		return nil, fmt.Errorf("%w: factory and loop are required", engine.ErrCreate)
	}
	if opts.Clock == nil {
		opts.Clock = clock.NewMonotonic()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = ResolutionPollInterval
	}
	if opts.Measure == nil {
		opts.Measure = EstimateWidth
	}

	h, err := opts.Factory()
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	if h.Core == nil {
		return nil, fmt.Errorf("create engine: %w", engine.ErrCreate)
	}
	if opts.Surface != nil && h.Render == nil {
		h.Core.Destroy()
		return nil, fmt.Errorf("create engine: %w", engine.ErrNoRender)
	}

	for _, name := range []string{engine.PropDuration, engine.PropTimePos} {
		if err := h.Core.ObserveProperty(name); err != nil {
			h.Core.Destroy()
			return nil, fmt.Errorf("observe %s: %w", name, err)
		}
	}

	p := &Player{
		opts:    opts,
		core:    h.Core,
		render:  h.Render,
		visible: opts.DanmakuVisible,
	}
	p.events = bridge.NewEventBridge(opts.Loop, p.core, p)
	if opts.Surface != nil {
		p.video = bridge.NewRenderBridge(opts.Loop, p.render, opts.Surface, opts.Monitor)
		p.video.SetOverlay(opts.Overlay)
	}
	p.scheduler = danmaku.NewScheduler(opts.Clock, opts.Rand)
	p.animator = danmaku.NewAnimator(opts.Clock, p)
	p.poll = opts.Loop.Every(opts.PollInterval, p.pollResolution)

	log.Printf("New: player created (headless=%t)", opts.Surface == nil)
	return p, nil
}

// pollResolution reports true once the engine knows the video size.
func (p *Player) pollResolution() bool {
	if p.core == nil {
		return true
	}
	wv := p.core.GetProperty(engine.PropVideoW)
	if wv.Empty() {
		return false
	}
	w, ok := wv.AsInt()
	if !ok {
		return false
	}
	h, ok := p.core.GetProperty(engine.PropVideoH).AsInt()
	if !ok {
		return false
	}
	p.width, p.height = int(w), int(h)
	log.Printf("pollResolution: video is %dx%d", p.width, p.height)

	if p.opts.RecordPath != "" && p.recorder == nil {
		rec, err := danmaku.NewRecorder(p.opts.RecordPath, p.width, p.height, p.opts.Clock)
		if err != nil {
			log.Printf("pollResolution: danmaku recording disabled: %v", err)
		} else {
			p.recorder = rec
		}
	}
	if p.opts.OnResolution != nil {
		p.opts.OnResolution(p.width, p.height)
	}
	return true
}

// Launch schedules one comment. The lane is reserved and the comment recorded
// even while danmaku are hidden; it is only shown when visible.
func (p *Player) Launch(text string) *danmaku.Entity {
	width := p.opts.Measure(text)
	ch := p.scheduler.Allocate(int(danmaku.EstimateDuration(width)))

	if p.recorder != nil {
		if err := p.recorder.Record(text, danmaku.RecordDurationMs, danmaku.ChannelCount, ch); err != nil {
			log.Printf("Launch: record failed: %v", err)
		}
	}
	if !p.visible {
		return nil
	}
	w, _ := p.Size()
	return p.animator.Spawn(text, ch, danmaku.TravelDuration(w))
}

// Tick advances the overlay; the host calls it once per frame.
func (p *Player) Tick() int {
	return p.animator.Tick()
}

// Size is the surface the overlay is laid out on: the drawable when there is
// one, otherwise the video resolution.
func (p *Player) Size() (int32, int32) {
	if p.opts.Surface != nil {
		return p.opts.Surface.FramebufferSize()
	}
	if p.width > 0 && p.height > 0 {
		return int32(p.width), int32(p.height)
	}
	return defaultWidth, defaultHeight
}

func (p *Player) SetDanmakuVisible(visible bool) {
	if p.visible == visible {
		return
	}
	p.visible = visible
	if !visible {
		p.animator.HideAll()
	}
}

func (p *Player) DanmakuVisible() bool {
	return p.visible
}

// ToggleDanmaku flips overlay visibility and returns the new state.
func (p *Player) ToggleDanmaku() bool {
	p.SetDanmakuVisible(!p.visible)
	return p.visible
}

// PositionChanged implements bridge.Observer.
func (p *Player) PositionChanged(seconds float64) {
	p.position = seconds
}

// DurationChanged implements bridge.Observer.
func (p *Player) DurationChanged(seconds float64) {
	p.duration = seconds
}

// PlaybackEnded implements bridge.EndObserver.
func (p *Player) PlaybackEnded(reason string) {
	p.ended = true
	log.Printf("PlaybackEnded: %s", reason)
	if p.opts.OnEnd != nil {
		p.opts.OnEnd(reason)
	}
}

// Ended reports whether the engine reported the end of playback.
func (p *Player) Ended() bool {
	return p.ended
}

// Position is the last reported playback position in seconds.
func (p *Player) Position() float64 {
	return p.position
}

func (p *Player) Duration() float64 {
	return p.duration
}

// Resolution returns the video size, or ok=false before the poll succeeded.
func (p *Player) Resolution() (w, h int, ok bool) {
	return p.width, p.height, p.width > 0
}

// Progress is position/duration clamped to [0, 1].
func (p *Player) Progress() float64 {
	if p.duration <= 0 {
		return 0
	}
	f := p.position / p.duration
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

func (p *Player) SetProperty(name string, v engine.Value) error {
	if p.core == nil {
		return engine.ErrCreate
	}
	return p.core.SetProperty(name, v)
}

func (p *Player) GetProperty(name string) engine.Value {
	if p.core == nil {
		return engine.Absent()
	}
	return p.core.GetProperty(name)
}

func (p *Player) Command(args ...string) error {
	if p.core == nil {
		return engine.ErrCreate
	}
	return p.core.Command(args...)
}

// Video is the render bridge, nil when headless.
func (p *Player) Video() *bridge.RenderBridge {
	return p.video
}

// Animator exposes live entities to the overlay painter.
func (p *Player) Animator() *danmaku.Animator {
	return p.animator
}

// Recorder is nil until the resolution is known and recording is enabled.
func (p *Player) Recorder() *danmaku.Recorder {
	return p.recorder
}

// Close tears the player down: both callbacks are unregistered and render
// resources released before the engine is destroyed.
func (p *Player) Close() error {
	var err error
	p.closeOnce.Do(func() {
		p.poll.Stop()
		<-p.poll.Stopped()
		p.events.Detach()
		if p.video != nil {
			p.video.Close()
		} else if p.render != nil {
			p.render.SetUpdateCallback(nil)
			p.render.UninitGL()
		}
		p.animator.HideAll()

		p.core.Destroy()
		p.core = nil

		if p.recorder != nil {
			err = p.recorder.Close()
			log.Printf("Close: recorded %d comment(s) to %s", p.recorder.Count(), p.recorder.Path())
		}
		log.Printf("Close: player closed")
	})
	return err
}
