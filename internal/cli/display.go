package cli

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"danmaku-player/pkg/commentServer"
	"danmaku-player/pkg/engine"
	"danmaku-player/pkg/player"
	"danmaku-player/pkg/settings"
	"danmaku-player/pkg/uiloop"
	"danmaku-player/screens/danmakuPlayer"
)

const (
	targetFPS     = 60
	defaultWidth  = 1280
	defaultHeight = 720
	shareCodeSize = 180
)

// initializeSDL2 initializes SDL2, trying SDL_VIDEODRIVER first and then the
// platform defaults.
func initializeSDL2() error {
	var videoDrivers []string
	if envDriver := os.Getenv("SDL_VIDEODRIVER"); envDriver != "" {
		log.Printf("Using environment SDL_VIDEODRIVER: %s", envDriver)
		videoDrivers = []string{envDriver}
	}
	if runtime.GOOS == "darwin" {
		videoDrivers = append(videoDrivers, "cocoa", "dummy")
	} else {
		videoDrivers = append(videoDrivers, "wayland", "x11", "kmsdrm", "dummy")
	}

	for _, driver := range videoDrivers {
		sdl.SetHint(sdl.HINT_VIDEODRIVER, driver)
		sdl.SetHint(sdl.HINT_RENDER_BATCHING, "1")
		sdl.SetHint(sdl.HINT_VIDEO_MINIMIZE_ON_FOCUS_LOSS, "0")

		if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
			log.Printf("SDL2 initialization failed with %s driver: %v", driver, err)
			sdl.Quit()
			continue
		}
		if name, err := sdl.GetCurrentVideoDriver(); err == nil {
			log.Printf("SDL2 successfully initialized with %s driver", name)
		}
		return nil
	}
	return fmt.Errorf("all SDL2 video drivers failed")
}

// createWindow creates a resizable window; F toggles fullscreen later.
func createWindow(title string, width, height int32) (*sdl.Window, error) {
	return sdl.CreateWindow(
		title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		width,
		height,
		sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE|sdl.WINDOW_ALLOW_HIGHDPI,
	)
}

// createRenderer creates an accelerated renderer, falling back to software.
func createRenderer(window *sdl.Window) (*sdl.Renderer, error) {
	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		log.Printf("Hardware acceleration failed, trying software: %v", err)
		renderer, err = sdl.CreateRenderer(window, -1, sdl.RENDERER_SOFTWARE)
		if err != nil {
			return nil, err
		}
	}

	if info, err := renderer.GetInfo(); err == nil {
		log.Printf("Renderer: %s (accelerated=%v, vsync=%v)", info.Name,
			info.Flags&sdl.RENDERER_ACCELERATED != 0, info.Flags&sdl.RENDERER_PRESENTVSYNC != 0)
	}

	// Enable alpha blending for the overlay
	renderer.SetDrawBlendMode(sdl.BLENDMODE_BLEND)
	return renderer, nil
}

func windowTitle() string {
	if title := os.Getenv("PLAYER_TITLE"); title != "" {
		return title
	}
	return "Danmaku Player"
}

// runWindowed opens the SDL window and runs the frame loop on the calling
// goroutine, which main locked to the OS thread.
func runWindowed(ctx context.Context, loop *uiloop.Loop, factory engine.Factory, s settings.Settings, rec string, rng *rand.Rand, attach attachFunc) (*player.Player, error) {
	if err := initializeSDL2(); err != nil {
		return nil, err
	}
	defer sdl.Quit()

	window, err := createWindow(windowTitle(), defaultWidth, defaultHeight)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	defer window.Destroy()

	renderer, err := createRenderer(window)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	defer renderer.Destroy()

	screen, err := danmakuPlayer.NewDanmakuPlayerScreen(window, renderer, loop, danmakuPlayer.Config{
		Factory:    factory,
		Settings:   s,
		RecordPath: rec,
		Rand:       rng,
	})
	if err != nil {
		return nil, err
	}
	p := screen.Player()
	detach, server := attach(p)
	if server != nil {
		showShareCode(screen, server)
	}
	runFrameLoop(ctx, loop, screen)
	detach()

	return p, screen.Close()
}

func showShareCode(screen *danmakuPlayer.DanmakuPlayerScreen, server *commentServer.WebServer) {
	qr, err := server.QRCode(shareCodeSize)
	if err != nil {
		log.Printf("showShareCode: %v", err)
		return
	}
	if err := screen.SetShareCode(qr, server.ShareURL()); err != nil {
		log.Printf("showShareCode: %v", err)
	}
}

// runFrameLoop executes the main SDL2 loop: window events, queued UI tasks,
// input, then drawing.
func runFrameLoop(ctx context.Context, loop *uiloop.Loop, screen *danmakuPlayer.DanmakuPlayerScreen) {
	frameTime := time.Second / targetFPS
	lastTime := time.Now()

	for ctx.Err() == nil && !screen.Done() {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			screen.HandleEvent(event)
		}

		loop.RunPending()

		if err := screen.Update(sdl.GetKeyboardState()); err != nil {
			log.Printf("Screen update error: %v", err)
			return
		}
		if err := screen.Draw(); err != nil {
			log.Printf("Screen draw error: %v", err)
			return
		}

		// Frame rate limiting
		elapsed := time.Since(lastTime)
		if elapsed < frameTime {
			time.Sleep(frameTime - elapsed)
		}
		lastTime = time.Now()
	}
}
