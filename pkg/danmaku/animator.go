package danmaku

import (
	"log"
	"time"

	"github.com/google/uuid"

	"danmaku-player/pkg/clock"
)

// Viewport reports the play surface size the animation is laid out on.
type Viewport interface {
	Size() (w, h int32)
}

// Entity is one scrolling comment. Its lane never changes.
type Entity struct {
	ID        uuid.UUID
	Text      string
	Channel   Channel
	SpawnedAt time.Duration
	Duration  time.Duration
	StartX    float64
	EndX      float64
	Y         int32

	// X is the current horizontal position, updated by Tick.
	X float64

	// Sprite holds whatever the renderer attached; Release frees it.
	Sprite  any
	Release func()
}

// Progress returns how far through its animation the entity is at now, in
// [0, 1].
func (e *Entity) Progress(now time.Duration) float64 {
	if e.Duration <= 0 {
		return 1
	}
	p := float64(now-e.SpawnedAt) / float64(e.Duration)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

func (e *Entity) positionAt(now time.Duration) float64 {
	return e.StartX + (e.EndX-e.StartX)*e.Progress(now)
}

func (e *Entity) release() {
	if e.Release != nil {
		e.Release()
		e.Release = nil
	}
	e.Sprite = nil
}

// Animator owns every live entity from spawn until its animation ends or
// HideAll runs. UI loop only.
type Animator struct {
	clock    clock.Clock
	viewport Viewport
	live     []*Entity
	// OnSpawn lets the renderer attach a sprite to a new entity.
	OnSpawn func(e *Entity)
}

func NewAnimator(c clock.Clock, viewport Viewport) *Animator {
	return &Animator{clock: c, viewport: viewport}
}

// Spawn starts a comment just off the right edge of the surface; it scrolls
// linearly to ExitMargin pixels past the left edge over durationMs.
func (a *Animator) Spawn(text string, ch Channel, durationMs float64) *Entity {
	w, h := a.viewport.Size()
	now := a.clock.Elapsed()

	e := &Entity{
		ID:        uuid.New(),
		Text:      text,
		Channel:   ch,
		SpawnedAt: now,
		Duration:  time.Duration(durationMs * float64(time.Millisecond)),
		StartX:    float64(w),
		EndX:      -ExitMargin,
		Y:         int32(ch) * (h / ChannelCount),
	}
	e.X = e.StartX
	if a.OnSpawn != nil {
		a.OnSpawn(e)
	}
	a.live = append(a.live, e)
	return e
}

// Tick advances every entity to the current time and removes the ones whose
// animation finished. It returns how many were removed.
func (a *Animator) Tick() int {
	now := a.clock.Elapsed()
	kept := a.live[:0]
	removed := 0
	for _, e := range a.live {
		e.X = e.positionAt(now)
		if e.Progress(now) >= 1 {
			e.release()
			removed++
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(a.live); i++ {
		a.live[i] = nil
	}
	a.live = kept
	return removed
}

// HideAll removes every live entity immediately.
func (a *Animator) HideAll() {
	if len(a.live) == 0 {
		return
	}
	for i, e := range a.live {
		e.release()
		a.live[i] = nil
	}
	log.Printf("HideAll: removed %d danmaku", len(a.live))
	a.live = a.live[:0]
}

// Live returns the number of entities on screen.
func (a *Animator) Live() int {
	return len(a.live)
}

// Each visits live entities in spawn order.
func (a *Animator) Each(fn func(e *Entity)) {
	for _, e := range a.live {
		fn(e)
	}
}
