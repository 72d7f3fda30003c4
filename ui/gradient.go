package ui

import "github.com/veandco/go-sdl2/sdl"

// DrawGradientRect draws a vertical gradient rectangle
func DrawGradientRect(renderer *sdl.Renderer, x, y, width, height int32, startColor, endColor [3]uint8) {
	if width <= 0 || height <= 0 {
		return
	}
	for i := int32(0); i < height; i++ {
		t := 0.0
		if height > 1 {
			t = float64(i) / float64(height-1)
		}

		r := uint8(float64(startColor[0])*(1-t) + float64(endColor[0])*t)
		g := uint8(float64(startColor[1])*(1-t) + float64(endColor[1])*t)
		b := uint8(float64(startColor[2])*(1-t) + float64(endColor[2])*t)

		renderer.SetDrawColor(r, g, b, 255)
		renderer.DrawLine(x, y+i, x+width-1, y+i)
	}
}

// ProgressWidth is the filled width of a bar of total width for fraction.
func ProgressWidth(total int32, fraction float64) int32 {
	switch {
	case fraction <= 0:
		return 0
	case fraction >= 1:
		return total
	}
	return int32(float64(total) * fraction)
}

// DrawProgressBar draws a translucent track along the bottom of a w x h
// surface with the played fraction filled by a gradient.
func DrawProgressBar(renderer *sdl.Renderer, w, h, barHeight int32, fraction float64) {
	y := h - barHeight
	renderer.SetDrawColor(0, 0, 0, 96)
	renderer.FillRect(&sdl.Rect{X: 0, Y: y, W: w, H: barHeight})
	DrawGradientRect(renderer, 0, y, ProgressWidth(w, fraction), barHeight, [3]uint8{0, 174, 236}, [3]uint8{0, 110, 180})
}
