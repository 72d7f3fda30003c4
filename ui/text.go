package ui

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
	"github.com/veandco/go-sdl2/ttf"
)

var (
	textColor   = sdl.Color{R: 255, G: 255, B: 255, A: 255}
	shadowColor = sdl.Color{R: 0, G: 0, B: 0, A: 255}
)

// RenderText renders text at the specified position with the given font and color
func RenderText(renderer *sdl.Renderer, text string, x, y int32, color sdl.Color, font *ttf.Font) error {
	if font == nil {
		return fmt.Errorf("font not available")
	}

	surface, err := font.RenderUTF8Blended(text, color)
	if err != nil {
		return err
	}
	defer surface.Free()

	texture, err := renderer.CreateTextureFromSurface(surface)
	if err != nil {
		return err
	}
	defer texture.Destroy()

	_, _, w, h, err := texture.Query()
	if err != nil {
		return err
	}

	dstRect := sdl.Rect{X: x, Y: y, W: w, H: h}
	return renderer.Copy(texture, nil, &dstRect)
}

// MeasureText returns the rendered width of text in pixels.
func MeasureText(font *ttf.Font, text string) float64 {
	if font == nil || text == "" {
		return 0
	}
	w, _, err := font.SizeUTF8(text)
	if err != nil {
		return 0
	}
	return float64(w)
}

// TextSprite is a comment rendered once and drawn every frame until its
// animation ends.
type TextSprite struct {
	text   *sdl.Texture
	shadow *sdl.Texture
	W, H   int32
}

func textTexture(renderer *sdl.Renderer, font *ttf.Font, text string, color sdl.Color) (*sdl.Texture, int32, int32, error) {
	surface, err := font.RenderUTF8Blended(text, color)
	if err != nil {
		return nil, 0, 0, err
	}
	defer surface.Free()

	texture, err := renderer.CreateTextureFromSurface(surface)
	if err != nil {
		return nil, 0, 0, err
	}
	return texture, surface.W, surface.H, nil
}

// NewTextSprite renders white text with a one pixel drop shadow.
func NewTextSprite(renderer *sdl.Renderer, font *ttf.Font, text string) (*TextSprite, error) {
	if font == nil {
		return nil, fmt.Errorf("font not available")
	}
	fg, w, h, err := textTexture(renderer, font, text, textColor)
	if err != nil {
		return nil, err
	}
	bg, _, _, err := textTexture(renderer, font, text, shadowColor)
	if err != nil {
		fg.Destroy()
		return nil, err
	}
	return &TextSprite{text: fg, shadow: bg, W: w, H: h}, nil
}

// Draw copies the sprite with its top-left corner at x, y.
func (s *TextSprite) Draw(renderer *sdl.Renderer, x, y int32) error {
	shadowRect := sdl.Rect{X: x + 1, Y: y + 1, W: s.W, H: s.H}
	if err := renderer.Copy(s.shadow, nil, &shadowRect); err != nil {
		return err
	}
	dst := sdl.Rect{X: x, Y: y, W: s.W, H: s.H}
	return renderer.Copy(s.text, nil, &dst)
}

// Destroy frees both textures.
func (s *TextSprite) Destroy() {
	if s.text != nil {
		s.text.Destroy()
		s.text = nil
	}
	if s.shadow != nil {
		s.shadow.Destroy()
		s.shadow = nil
	}
}
