package danmakuPlayer

import (
	"math/rand"
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"danmaku-player/pkg/engine"
	"danmaku-player/pkg/input"
	"danmaku-player/pkg/performance"
	"danmaku-player/pkg/player"
	"danmaku-player/pkg/settings"
	"danmaku-player/ui"
	"danmaku-player/widgets/shareCode"
)

// Config selects what the screen plays.
type Config struct {
	Factory    engine.Factory
	Settings   settings.Settings
	RecordPath string
	// Rand picks lanes when every lane is busy; nil seeds from the clock.
	Rand *rand.Rand
}

type DanmakuPlayerScreen struct {
	player  *player.Player
	surface *Surface
	fonts   *ui.Fonts
	keymap  *input.Keymap
	monitor *performance.RenderMonitor

	// SDL2-specific fields
	window   *sdl.Window
	renderer *sdl.Renderer

	share     *shareCode.Widget
	showShare bool

	// Runtime state
	fullscreen bool
	dirty      bool
	quit       bool
	lastReport time.Time
}
