package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"danmaku-player/pkg/engine"
)

func TestDo_Toggles(t *testing.T) {
	f := newFixture(t, nil)

	handled, err := f.player.Do(ActionTogglePause)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.True(t, f.core.GetProperty(engine.PropPause).AsBool())

	_, err = f.player.Do(ActionTogglePause)
	require.NoError(t, err)
	assert.False(t, f.core.GetProperty(engine.PropPause).AsBool())

	_, err = f.player.Do(ActionToggleMute)
	require.NoError(t, err)
	assert.True(t, f.core.GetProperty(engine.PropMute).AsBool())

	_, err = f.player.Do(ActionToggleDanmaku)
	require.NoError(t, err)
	assert.False(t, f.player.DanmakuVisible())
}

func TestDo_VolumeClamped(t *testing.T) {
	f := newFixture(t, nil)
	assert.Equal(t, 100, f.player.Volume(), "unreported volume counts as full")

	_, err := f.player.Do(ActionVolumeUp)
	require.NoError(t, err)
	assert.Equal(t, 100, f.player.Volume())

	for i := 0; i < 25; i++ {
		_, err = f.player.Do(ActionVolumeDown)
		require.NoError(t, err)
	}
	assert.Equal(t, 0, f.player.Volume())

	_, err = f.player.Do(ActionVolumeUp)
	require.NoError(t, err)
	assert.Equal(t, 5, f.player.Volume())
}

func TestDo_WindowActionsAreNotHandled(t *testing.T) {
	f := newFixture(t, nil)
	for _, a := range []Action{ActionFullscreen, ActionQuit, ActionShareCode, ActionNone} {
		handled, err := f.player.Do(a)
		assert.NoError(t, err)
		assert.False(t, handled, a.String())
	}
}
