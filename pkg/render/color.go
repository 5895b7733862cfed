package render

import "image/color"

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

// Colors for convenience
var (
	ColorBlack   = color.RGBA{0, 0, 0, 255}
	ColorWhite   = color.RGBA{255, 255, 255, 255}
	ColorRed     = color.RGBA{255, 0, 0, 255}
	ColorGreen   = color.RGBA{0, 255, 0, 255}
	ColorBlue    = color.RGBA{0, 0, 255, 255}
	ColorYellow  = color.RGBA{255, 255, 0, 255}
	ColorMagenta = color.RGBA{255, 0, 255, 255}
	ColorGray    = color.RGBA{128, 128, 128, 255}
	ColorGrid    = color.RGBA{51, 51, 51, 255}
)

// RGB creates an opaque color from RGB values.
func RGB(r, g, b uint8) Color {
	return Color{r, g, b, 255}
}

// HexRGB creates an opaque color from a 0xRRGGBB value.
func HexRGB(v uint32) Color {
	return Color{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}
}

// Shade scales the RGB channels of c by intensity. Alpha is kept.
// Intensity is clamped to [0, 1].
func Shade(c Color, intensity float64) Color {
	if intensity >= 1 {
		return c
	}
	if intensity <= 0 {
		return Color{0, 0, 0, c.A}
	}
	return Color{
		R: uint8(float64(c.R) * intensity),
		G: uint8(float64(c.G) * intensity),
		B: uint8(float64(c.B) * intensity),
		A: c.A,
	}
}
