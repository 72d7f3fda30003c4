package bridge

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"danmaku-player/pkg/engine/enginetest"
	"danmaku-player/pkg/uiloop"
)

func newTestRenderBridge() (*uiloop.Loop, *enginetest.Render, *fakeSurface, *RenderBridge) {
	loop := uiloop.New(16)
	rc := enginetest.NewRender()
	surface := newFakeSurface(rc)
	b := NewRenderBridge(loop, rc, surface, nil)
	return loop, rc, surface, b
}

func TestRenderBridge_AsyncHandshake(t *testing.T) {
	loop, rc, surface, b := newTestRenderBridge()
	require.Equal(t, Idle, b.State())

	rc.Frame()
	assert.Equal(t, Idle, b.State(), "nothing changes until the UI loop runs")

	loop.RunPending()
	assert.Equal(t, DrawRequested, b.State())
	assert.Equal(t, 1, surface.scheduled)

	require.NoError(t, b.Paint())
	assert.Equal(t, SwapPending, b.State())
	assert.Equal(t, 0, rc.Flips(), "no flip before the swap completes")

	b.Swapped()
	assert.Equal(t, Idle, b.State())
	assert.Equal(t, 1, rc.Flips())
	assert.Equal(t, 1, b.Monitor().GetReport().AsyncFlips)
}

func TestRenderBridge_DrawUsesInvertedHeight(t *testing.T) {
	loop, rc, surface, b := newTestRenderBridge()
	surface.w, surface.h = 800, 450

	rc.Frame()
	loop.RunPending()
	require.NoError(t, surface.frame(b))

	require.Len(t, rc.Draws(), 1)
	assert.Equal(t, enginetest.Draw{W: 800, H: -450}, rc.Draws()[0])
}

func TestRenderBridge_CoalescesPendingRequests(t *testing.T) {
	loop, rc, surface, b := newTestRenderBridge()

	rc.Frame()
	rc.Frame()
	rc.Frame()
	assert.Equal(t, 1, loop.Pending())
	loop.RunPending()

	assert.Equal(t, 1, surface.scheduled)
	require.NoError(t, surface.frame(b))
	assert.Equal(t, 1, rc.Flips())
	assert.Len(t, rc.Draws(), 1)
}

func TestRenderBridge_RequestDuringHandshakeRunsOnceMore(t *testing.T) {
	loop, rc, surface, b := newTestRenderBridge()

	rc.Frame()
	loop.RunPending()
	assert.Equal(t, DrawRequested, b.State())

	// A new frame arrives before the host painted.
	rc.Frame()
	rc.Frame()
	loop.RunPending()
	assert.Equal(t, DrawRequested, b.State())
	assert.Equal(t, 1, surface.scheduled, "no second draw is queued")

	require.NoError(t, surface.frame(b))
	assert.Equal(t, 1, rc.Flips())

	loop.RunPending()
	assert.Equal(t, DrawRequested, b.State(), "the coalesced request is served after the flip")
	require.NoError(t, surface.frame(b))
	assert.Equal(t, 2, rc.Flips())
	assert.Equal(t, 1, b.Monitor().GetReport().Coalesced)
}

func TestRenderBridge_FlipWithFullTaskQueueDoesNotBlock(t *testing.T) {
	loop := uiloop.New(4)
	rc := enginetest.NewRender()
	surface := newFakeSurface(rc)
	b := NewRenderBridge(loop, rc, surface, nil)

	rc.Frame()
	loop.RunPending()
	rc.Frame()
	loop.RunPending()
	require.Equal(t, DrawRequested, b.State())

	ran := 0
	for i := 0; i < 4; i++ {
		loop.Post(func() { ran++ })
	}

	done := make(chan error, 1)
	go func() { done <- surface.frame(b) }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Swapped blocked re-raising the coalesced request")
	}
	assert.Equal(t, 1, rc.Flips())

	assert.Equal(t, 5, loop.RunPending())
	assert.Equal(t, 4, ran)
	assert.Equal(t, DrawRequested, b.State(), "the coalesced request is still served")
	require.NoError(t, surface.frame(b))
	assert.Equal(t, 2, rc.Flips())
}

func TestRenderBridge_HiddenSurfaceFlipsSynchronously(t *testing.T) {
	loop, rc, surface, b := newTestRenderBridge()
	surface.visible = false

	rc.Frame()
	loop.RunPending()

	assert.Equal(t, Idle, b.State())
	assert.Equal(t, 0, surface.scheduled, "the host is never asked to paint")
	assert.Equal(t, 1, rc.Flips())
	assert.Equal(t, []string{"makeCurrent", "swap", "doneCurrent"}, surface.calls)
	assert.Equal(t, []string{"draw", "flip"}, rc.Log())
	assert.Equal(t, 1, b.Monitor().GetReport().SyncFlips)
}

func TestRenderBridge_ExactlyOneFlipPerRequest(t *testing.T) {
	loop, rc, surface, b := newTestRenderBridge()

	for i := 0; i < 20; i++ {
		surface.visible = i%3 != 0
		rc.Frame()
		loop.RunPending()
		if b.State() == DrawRequested {
			require.NoError(t, surface.frame(b))
		}
		require.Equal(t, Idle, b.State())
		require.Equal(t, i+1, rc.Flips())
	}
}

func TestRenderBridge_RepaintWithoutRequestDoesNotFlip(t *testing.T) {
	_, rc, surface, b := newTestRenderBridge()
	overlays := 0
	b.SetOverlay(func(w, h int32) { overlays++ })

	require.NoError(t, surface.frame(b))
	require.NoError(t, surface.frame(b))

	assert.Equal(t, Idle, b.State())
	assert.Equal(t, 0, rc.Flips())
	assert.Len(t, rc.Draws(), 2)
	assert.Equal(t, 2, overlays)
}

func TestRenderBridge_DrawErrorStillCompletesHandshake(t *testing.T) {
	loop, rc, surface, b := newTestRenderBridge()
	rc.FailDraws(errors.New("lost context"))

	rc.Frame()
	loop.RunPending()
	err := surface.frame(b)
	assert.Error(t, err)
	assert.Equal(t, Idle, b.State())
	assert.Equal(t, 1, rc.Flips())
	assert.Equal(t, 1, b.Monitor().GetReport().DrawErrors)
}

func TestRenderBridge_CloseOrdering(t *testing.T) {
	loop, rc, surface, b := newTestRenderBridge()

	b.Close()
	b.Close()

	assert.False(t, rc.Registered())
	assert.True(t, rc.Uninitialized())
	assert.Equal(t, []string{"unregister", "uninit"}, rc.Log())
	assert.Equal(t, []string{"makeCurrent", "doneCurrent"}, surface.calls)

	rc.Frame()
	loop.RunPending()
	assert.Equal(t, Idle, b.State(), "callbacks after Close cannot reach the bridge")
}
