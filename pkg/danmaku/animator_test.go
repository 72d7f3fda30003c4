package danmaku

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"danmaku-player/pkg/clock"
)

type fixedViewport struct{ w, h int32 }

func (v fixedViewport) Size() (int32, int32) { return v.w, v.h }

func TestAnimator_SpawnGeometry(t *testing.T) {
	c := clock.NewManual()
	a := NewAnimator(c, fixedViewport{1280, 720})

	e := a.Spawn("hello", 5, 1000)
	assert.Equal(t, 1280.0, e.StartX)
	assert.Equal(t, -500.0, e.EndX)
	assert.Equal(t, int32(5*(720/24)), e.Y)
	assert.Equal(t, Channel(5), e.Channel)
	assert.Equal(t, time.Second, e.Duration)
	assert.Equal(t, 1, a.Live())
}

func TestAnimator_YUsesIntegerLaneHeight(t *testing.T) {
	a := NewAnimator(clock.NewManual(), fixedViewport{640, 500})
	e := a.Spawn("x", 23, 1000)
	assert.Equal(t, int32(23*20), e.Y, "500/24 truncates to 20")
}

func TestAnimator_LinearInterpolation(t *testing.T) {
	c := clock.NewManual()
	a := NewAnimator(c, fixedViewport{1500, 720})
	e := a.Spawn("x", 0, 2000)

	c.Advance(500 * time.Millisecond)
	a.Tick()
	assert.InDelta(t, 1000.0, e.X, 1e-9)

	c.Advance(500 * time.Millisecond)
	a.Tick()
	assert.InDelta(t, 500.0, e.X, 1e-9)
	assert.Equal(t, 1, a.Live())
}

func TestAnimator_RemovesAndReleasesOnCompletion(t *testing.T) {
	c := clock.NewManual()
	a := NewAnimator(c, fixedViewport{1280, 720})
	released := 0
	a.OnSpawn = func(e *Entity) {
		e.Sprite = "texture"
		e.Release = func() { released++ }
	}

	short := a.Spawn("short", 0, 1000)
	a.Spawn("long", 1, 3000)

	c.Advance(time.Second)
	assert.Equal(t, 1, a.Tick())
	assert.Equal(t, 1, a.Live())
	assert.Equal(t, 1, released)
	assert.Nil(t, short.Sprite)

	c.Advance(5 * time.Second)
	a.Tick()
	assert.Equal(t, 0, a.Live())
	assert.Equal(t, 2, released)
}

func TestAnimator_HideAll(t *testing.T) {
	c := clock.NewManual()
	a := NewAnimator(c, fixedViewport{1280, 720})
	released := 0
	a.OnSpawn = func(e *Entity) { e.Release = func() { released++ } }

	a.HideAll()
	assert.Equal(t, 0, a.Live(), "idempotent with nothing live")

	for i := 0; i < 30; i++ {
		a.Spawn("x", Channel(i%ChannelCount), 10_000)
	}
	c.Advance(time.Second)
	a.Tick()

	a.HideAll()
	assert.Equal(t, 0, a.Live())
	assert.Equal(t, 30, released)

	a.HideAll()
	assert.Equal(t, 30, released, "released exactly once")
}

func TestAnimator_EachInSpawnOrder(t *testing.T) {
	a := NewAnimator(clock.NewManual(), fixedViewport{100, 240})
	a.Spawn("a", 0, 1000)
	a.Spawn("b", 1, 1000)

	var texts []string
	a.Each(func(e *Entity) { texts = append(texts, e.Text) })
	require.Equal(t, []string{"a", "b"}, texts)
}

func TestEntity_ProgressClamped(t *testing.T) {
	e := &Entity{SpawnedAt: time.Second, Duration: 2 * time.Second}
	assert.Equal(t, 0.0, e.Progress(0))
	assert.Equal(t, 0.5, e.Progress(2*time.Second))
	assert.Equal(t, 1.0, e.Progress(time.Minute))
	assert.Equal(t, 1.0, (&Entity{}).Progress(0))
}
