package player

import (
	"danmaku-player/pkg/engine"
	"danmaku-player/pkg/settings"
)

// Action is a user command bound to a key.
type Action int

const (
	ActionNone Action = iota
	ActionToggleDanmaku
	ActionTogglePause
	ActionToggleMute
	ActionVolumeDown
	ActionVolumeUp
	// ActionFullscreen, ActionQuit and ActionShareCode are handled by the
	// window owner.
	ActionFullscreen
	ActionQuit
	ActionShareCode
)

// VolumeStep is the change applied by one volume key press.
const VolumeStep = 5

func (a Action) String() string {
	switch a {
	case ActionToggleDanmaku:
		return "toggle-danmaku"
	case ActionTogglePause:
		return "toggle-pause"
	case ActionToggleMute:
		return "toggle-mute"
	case ActionVolumeDown:
		return "volume-down"
	case ActionVolumeUp:
		return "volume-up"
	case ActionFullscreen:
		return "fullscreen"
	case ActionQuit:
		return "quit"
	case ActionShareCode:
		return "share-code"
	default:
		return "none"
	}
}

// Do applies a player-level action. It reports false for actions the
// window owner must handle.
func (p *Player) Do(a Action) (bool, error) {
	switch a {
	case ActionToggleDanmaku:
		p.ToggleDanmaku()
	case ActionTogglePause:
		return true, p.toggle(engine.PropPause)
	case ActionToggleMute:
		return true, p.toggle(engine.PropMute)
	case ActionVolumeDown:
		return true, p.stepVolume(-VolumeStep)
	case ActionVolumeUp:
		return true, p.stepVolume(VolumeStep)
	default:
		return false, nil
	}
	return true, nil
}

func (p *Player) toggle(name string) error {
	return p.SetProperty(name, engine.Bool(!p.GetProperty(name).AsBool()))
}

// Volume returns the engine volume, 100 when the engine has not reported one.
func (p *Player) Volume() int {
	v, ok := p.GetProperty(engine.PropVolume).AsInt()
	if !ok {
		return 100
	}
	return settings.ClampVolume(int(v))
}

func (p *Player) stepVolume(delta int) error {
	return p.SetProperty(engine.PropVolume, engine.Int(int64(settings.ClampVolume(p.Volume()+delta))))
}
