package shareCode

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/veandco/go-sdl2/sdl"

	"danmaku-player/ui"
)

const (
	margin  = int32(16)
	padding = int32(10)
	label   = "Scan to send danmaku"
)

// Widget shows the comment server QR code in the top-right corner
type Widget struct {
	qrTexture *sdl.Texture
	url       string
	qrWidth   int32
	qrHeight  int32
}

// NewWidget uploads the QR code PNG as a texture.
func NewWidget(renderer *sdl.Renderer, qrPNG []byte, url string) (*Widget, error) {
	img, err := png.Decode(bytes.NewReader(qrPNG))
	if err != nil {
		return nil, fmt.Errorf("failed to decode QR code PNG: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	surface, err := sdl.CreateRGBSurface(0, int32(width), int32(height), 32,
		0x000000ff, 0x0000ff00, 0x00ff0000, 0xff000000)
	if err != nil {
		return nil, fmt.Errorf("failed to create SDL surface: %w", err)
	}
	defer surface.Free()

	surface.Lock()
	pixels := surface.Pixels()
	pitch := int(surface.Pitch)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			offset := y*pitch + x*4
			pixels[offset] = byte(r >> 8)
			pixels[offset+1] = byte(g >> 8)
			pixels[offset+2] = byte(b >> 8)
			pixels[offset+3] = byte(a >> 8)
		}
	}
	surface.Unlock()

	texture, err := renderer.CreateTextureFromSurface(surface)
	if err != nil {
		return nil, fmt.Errorf("failed to create texture from surface: %w", err)
	}

	return &Widget{
		qrTexture: texture,
		url:       url,
		qrWidth:   int32(width),
		qrHeight:  int32(height),
	}, nil
}

// Panel returns the panel rectangle for a window of the given size.
func (w *Widget) Panel(windowWidth, windowHeight int32) sdl.Rect {
	panelW := w.qrWidth + 2*padding
	panelH := w.qrHeight + 2*padding + 40
	return sdl.Rect{X: windowWidth - panelW - margin, Y: margin, W: panelW, H: panelH}
}

// Render draws the panel: QR code, label and URL.
func (w *Widget) Render(renderer *sdl.Renderer, windowWidth, windowHeight int32, fonts *ui.Fonts) error {
	panel := w.Panel(windowWidth, windowHeight)

	renderer.SetDrawBlendMode(sdl.BLENDMODE_BLEND)
	renderer.SetDrawColor(30, 41, 59, 220)
	renderer.FillRect(&panel)
	renderer.SetDrawColor(59, 130, 246, 255)
	renderer.DrawRect(&panel)

	qrRect := sdl.Rect{X: panel.X + padding, Y: panel.Y + padding, W: w.qrWidth, H: w.qrHeight}
	if err := renderer.Copy(w.qrTexture, nil, &qrRect); err != nil {
		return fmt.Errorf("failed to render QR code: %w", err)
	}

	textY := qrRect.Y + qrRect.H + 4
	white := sdl.Color{R: 255, G: 255, B: 255, A: 255}
	gray := sdl.Color{R: 148, G: 163, B: 184, A: 255}
	if err := ui.RenderText(renderer, label, panel.X+padding, textY, white, fonts.Small); err != nil {
		return fmt.Errorf("failed to render label: %w", err)
	}
	if err := ui.RenderText(renderer, w.url, panel.X+padding, textY+18, gray, fonts.Small); err != nil {
		return fmt.Errorf("failed to render URL: %w", err)
	}
	return nil
}

// Destroy cleans up widget resources
func (w *Widget) Destroy() {
	if w.qrTexture != nil {
		w.qrTexture.Destroy()
		w.qrTexture = nil
	}
}
