package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/veandco/go-sdl2/sdl"

	"danmaku-player/pkg/player"
)

func keys(down ...sdl.Scancode) []uint8 {
	state := make([]uint8, sdl.NUM_SCANCODES)
	for _, k := range down {
		state[k] = 1
	}
	return state
}

func TestKeyPressTracker_EdgeTriggered(t *testing.T) {
	kpt := NewKeyPressTracker()
	assert.True(t, kpt.IsPressed(keys(sdl.SCANCODE_D), sdl.SCANCODE_D))
	assert.False(t, kpt.IsPressed(keys(sdl.SCANCODE_D), sdl.SCANCODE_D), "held key fires once")
	assert.False(t, kpt.IsPressed(keys(), sdl.SCANCODE_D))
	assert.True(t, kpt.IsPressed(keys(sdl.SCANCODE_D), sdl.SCANCODE_D))
}

func TestKeyPressTracker_ShortState(t *testing.T) {
	kpt := NewKeyPressTracker()
	assert.False(t, kpt.IsPressed(nil, sdl.SCANCODE_D))
}

func TestKeymap_Poll(t *testing.T) {
	k := NewKeymap(nil)

	assert.Equal(t, []player.Action{player.ActionToggleDanmaku, player.ActionTogglePause},
		k.Poll(keys(sdl.SCANCODE_SPACE, sdl.SCANCODE_D)))
	assert.Empty(t, k.Poll(keys(sdl.SCANCODE_SPACE, sdl.SCANCODE_D)))
	assert.Equal(t, []player.Action{player.ActionVolumeUp}, k.Poll(keys(sdl.SCANCODE_EQUALS)))
	assert.Equal(t, []player.Action{player.ActionQuit}, k.Poll(keys(sdl.SCANCODE_Q)))
	assert.Equal(t, []player.Action{player.ActionShareCode}, k.Poll(keys(sdl.SCANCODE_C)))
}
