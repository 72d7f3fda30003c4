package danmakuPlayer

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"

	"danmaku-player/pkg/engine"
)

// Surface is the SDL window side of the render bridge. Engine frames are
// streamed into one texture and letterboxed onto the renderer.
type Surface struct {
	window   *sdl.Window
	renderer *sdl.Renderer

	texture       *sdl.Texture
	textureWidth  int
	textureHeight int

	pending bool
}

func NewSurface(window *sdl.Window, renderer *sdl.Renderer) *Surface {
	return &Surface{window: window, renderer: renderer}
}

// Visible is false while the window is minimized or hidden.
func (s *Surface) Visible() bool {
	flags := s.window.GetFlags()
	return flags&(sdl.WINDOW_MINIMIZED|sdl.WINDOW_HIDDEN) == 0
}

func (s *Surface) FramebufferSize() (int32, int32) {
	w, h, err := s.renderer.GetOutputSize()
	if err != nil {
		return s.window.GetSize()
	}
	return w, h
}

func (s *Surface) Framebuffer() engine.Framebuffer {
	return s
}

// MakeCurrent targets the window itself rather than any offscreen texture.
func (s *Surface) MakeCurrent() error {
	return s.renderer.SetRenderTarget(nil)
}

func (s *Surface) DoneCurrent() {}

func (s *Surface) Swap() error {
	s.renderer.Present()
	return nil
}

// ScheduleUpdate marks that the next frame answers a redraw request.
func (s *Surface) ScheduleUpdate() {
	s.pending = true
}

// TakePending reports and clears a scheduled update.
func (s *Surface) TakePending() bool {
	p := s.pending
	s.pending = false
	return p
}

func (s *Surface) ensureTexture(width, height int) error {
	if s.texture != nil && s.textureWidth == width && s.textureHeight == height {
		return nil
	}
	if s.texture != nil {
		s.texture.Destroy()
		s.texture = nil
	}
	texture, err := s.renderer.CreateTexture(uint32(sdl.PIXELFORMAT_RGBA32), sdl.TEXTUREACCESS_STREAMING, int32(width), int32(height))
	if err != nil {
		return fmt.Errorf("failed to create texture: %v", err)
	}
	s.texture = texture
	s.textureWidth, s.textureHeight = width, height
	return nil
}

func (s *Surface) upload(pix []byte, width, height int) error {
	pixels, pitch, err := s.texture.Lock(nil)
	if err != nil {
		return fmt.Errorf("failed to lock texture: %v", err)
	}
	defer s.texture.Unlock()

	row := width * 4
	if pitch == row {
		copy(pixels, pix)
		return nil
	}
	for y := 0; y < height; y++ {
		copy(pixels[y*pitch:y*pitch+row], pix[y*row:(y+1)*row])
	}
	return nil
}

// Blit implements engine.Framebuffer.
func (s *Surface) Blit(pix []byte, width, height int, w, h int32, flipY bool) error {
	if width <= 0 || height <= 0 || len(pix) < width*height*4 {
		return nil
	}
	if err := s.ensureTexture(width, height); err != nil {
		return err
	}
	if err := s.upload(pix, width, height); err != nil {
		return err
	}

	dst := letterbox(int32(width), int32(height), w, h)
	flip := sdl.FLIP_NONE
	if flipY {
		flip = sdl.FLIP_VERTICAL
	}
	return s.renderer.CopyEx(s.texture, nil, &dst, 0, nil, flip)
}

// letterbox fits a videoW x videoH frame into the screen keeping its aspect.
func letterbox(videoW, videoH, screenW, screenH int32) sdl.Rect {
	scaleW := float64(screenW) / float64(videoW)
	scaleH := float64(screenH) / float64(videoH)
	scale := scaleW
	if scaleH < scaleW {
		scale = scaleH
	}

	renderW := int32(float64(videoW) * scale)
	renderH := int32(float64(videoH) * scale)
	return sdl.Rect{
		X: (screenW - renderW) / 2,
		Y: (screenH - renderH) / 2,
		W: renderW,
		H: renderH,
	}
}

func (s *Surface) Close() {
	if s.texture != nil {
		s.texture.Destroy()
		s.texture = nil
	}
}
