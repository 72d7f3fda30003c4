package danmakuPlayer

import (
	"log"
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"danmaku-player/pkg/danmaku"
	"danmaku-player/pkg/engine"
	"danmaku-player/pkg/input"
	"danmaku-player/pkg/performance"
	"danmaku-player/pkg/player"
	"danmaku-player/pkg/uiloop"
	"danmaku-player/ui"
	"danmaku-player/widgets/shareCode"
)

const (
	reportInterval    = 5 * time.Second
	progressBarHeight = 4
)

// NewDanmakuPlayerScreen creates the engine through cfg.Factory and binds it
// to the window.
func NewDanmakuPlayerScreen(window *sdl.Window, renderer *sdl.Renderer, loop *uiloop.Loop, cfg Config) (*DanmakuPlayerScreen, error) {
	fonts, err := ui.LoadFonts(cfg.Settings.FontSize)
	if err != nil {
		return nil, err
	}

	g := &DanmakuPlayerScreen{
		surface:    NewSurface(window, renderer),
		fonts:      fonts,
		keymap:     input.NewKeymap(nil),
		monitor:    performance.NewRenderMonitor(120),
		window:     window,
		renderer:   renderer,
		dirty:      true,
		lastReport: time.Now(),
	}

	p, err := player.New(player.Options{
		Factory:        cfg.Factory,
		Loop:           loop,
		Surface:        g.surface,
		Overlay:        g.drawOverlay,
		Monitor:        g.monitor,
		Measure:        func(text string) float64 { return ui.MeasureText(fonts.Danmaku, text) },
		RecordPath:     cfg.RecordPath,
		Rand:           cfg.Rand,
		DanmakuVisible: cfg.Settings.DanmakuVisible,
		OnResolution: func(w, h int) {
			log.Printf("NewDanmakuPlayerScreen: video resolution %dx%d", w, h)
		},
		OnEnd: func(string) { g.quit = true },
	})
	if err != nil {
		fonts.Close()
		return nil, err
	}
	g.player = p
	p.Animator().OnSpawn = g.attachSprite

	if err := p.SetProperty(engine.PropVolume, engine.Int(int64(cfg.Settings.Volume))); err != nil {
		log.Printf("NewDanmakuPlayerScreen: could not apply volume: %v", err)
	}
	return g, nil
}

// Player exposes the player so comments can be launched into it.
func (g *DanmakuPlayerScreen) Player() *player.Player {
	return g.player
}

// Done reports whether the user quit or playback ended.
func (g *DanmakuPlayerScreen) Done() bool {
	return g.quit
}

// HandleEvent reacts to SDL window events.
func (g *DanmakuPlayerScreen) HandleEvent(event sdl.Event) {
	switch event.(type) {
	case *sdl.QuitEvent:
		g.quit = true
	case *sdl.WindowEvent:
		g.dirty = true
	}
}

// Update processes input and advances the overlay
func (g *DanmakuPlayerScreen) Update(keyState []uint8) error {
	for _, action := range g.keymap.Poll(keyState) {
		g.dirty = true
		switch action {
		case player.ActionQuit:
			g.quit = true
		case player.ActionFullscreen:
			g.toggleFullscreen()
		case player.ActionShareCode:
			g.showShare = g.share != nil && !g.showShare
		default:
			if _, err := g.player.Do(action); err != nil {
				log.Printf("Update: %s failed: %v", action, err)
			}
		}
	}

	g.player.Tick()
	g.logPerformanceMetrics()
	return nil
}

func (g *DanmakuPlayerScreen) toggleFullscreen() {
	var flags uint32
	if !g.fullscreen {
		flags = sdl.WINDOW_FULLSCREEN_DESKTOP
	}
	if err := g.window.SetFullscreen(flags); err != nil {
		log.Printf("toggleFullscreen: %v", err)
		return
	}
	g.fullscreen = !g.fullscreen
}

// Draw paints a frame when the engine asked for one, danmaku are moving, or
// the window changed. Engine draw errors are logged and the frame is still
// presented.
func (g *DanmakuPlayerScreen) Draw() error {
	video := g.player.Video()
	requested := g.surface.TakePending()
	if !requested && !g.dirty && g.player.Animator().Live() == 0 {
		return nil
	}
	g.dirty = false

	g.renderer.SetDrawColor(0, 0, 0, 255)
	g.renderer.Clear()
	if err := video.Paint(); err != nil {
		log.Printf("Draw: %v", err)
	}
	g.renderer.Present()
	video.Swapped()
	return nil
}

func (g *DanmakuPlayerScreen) drawOverlay(w, h int32) {
	g.player.Animator().Each(func(e *danmaku.Entity) {
		sprite, ok := e.Sprite.(*ui.TextSprite)
		if !ok {
			return
		}
		if err := sprite.Draw(g.renderer, int32(e.X), e.Y); err != nil {
			log.Printf("drawOverlay: %v", err)
		}
	})
	ui.DrawProgressBar(g.renderer, w, h, progressBarHeight, g.player.Progress())
	if g.showShare {
		if err := g.share.Render(g.renderer, w, h, g.fonts); err != nil {
			log.Printf("drawOverlay: %v", err)
		}
	}
}

// SetShareCode shows a QR code for the comment server until C is pressed.
func (g *DanmakuPlayerScreen) SetShareCode(qrPNG []byte, url string) error {
	w, err := shareCode.NewWidget(g.renderer, qrPNG, url)
	if err != nil {
		return err
	}
	if g.share != nil {
		g.share.Destroy()
	}
	g.share = w
	g.showShare = true
	g.dirty = true
	return nil
}

func (g *DanmakuPlayerScreen) attachSprite(e *danmaku.Entity) {
	sprite, err := ui.NewTextSprite(g.renderer, g.fonts.Danmaku, e.Text)
	if err != nil {
		log.Printf("attachSprite: %v", err)
		return
	}
	e.Sprite = sprite
	e.Release = sprite.Destroy
}

// logPerformanceMetrics periodically logs the render handshake report
func (g *DanmakuPlayerScreen) logPerformanceMetrics() {
	if time.Since(g.lastReport) < reportInterval {
		return
	}
	g.lastReport = time.Now()

	r := g.monitor.GetReport()
	log.Printf("Render: avgDraw=%.2fms requests=%d coalesced=%d flips=%d (sync=%d) drawErrors=%d live=%d",
		r.AvgDrawMs, r.Requests, r.Coalesced, r.Flips(), r.SyncFlips, r.DrawErrors, g.player.Animator().Live())
}

// Close tears down the player before the window and fonts go away.
func (g *DanmakuPlayerScreen) Close() error {
	err := g.player.Close()
	if g.share != nil {
		g.share.Destroy()
	}
	g.surface.Close()
	g.fonts.Close()
	return err
}
