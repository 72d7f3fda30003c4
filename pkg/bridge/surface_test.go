package bridge

import (
	"danmaku-player/pkg/engine"
	"danmaku-player/pkg/engine/enginetest"
)

// fakeSurface records calls in order and, like a real host, paints on its
// next frame when asked to.
type fakeSurface struct {
	visible   bool
	w, h      int32
	scheduled int
	swaps     int
	current   bool
	calls     []string
	render    *enginetest.Render
}

func newFakeSurface(render *enginetest.Render) *fakeSurface {
	return &fakeSurface{visible: true, w: 1280, h: 720, render: render}
}

func (s *fakeSurface) Visible() bool                   { return s.visible }
func (s *fakeSurface) FramebufferSize() (int32, int32) { return s.w, s.h }
func (s *fakeSurface) Framebuffer() engine.Framebuffer { return nil }

func (s *fakeSurface) MakeCurrent() error {
	s.current = true
	s.calls = append(s.calls, "makeCurrent")
	return nil
}

func (s *fakeSurface) DoneCurrent() {
	s.current = false
	s.calls = append(s.calls, "doneCurrent")
}

func (s *fakeSurface) Swap() error {
	s.swaps++
	s.calls = append(s.calls, "swap")
	return nil
}

func (s *fakeSurface) ScheduleUpdate() {
	s.scheduled++
	s.calls = append(s.calls, "schedule")
}

// frame emulates one host frame: paint, present, notify.
func (s *fakeSurface) frame(b *RenderBridge) error {
	err := b.Paint()
	s.swaps++
	s.calls = append(s.calls, "swap")
	b.Swapped()
	return err
}
