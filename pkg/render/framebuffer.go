// Package render implements a CPU scanline rasterizer: a color buffer and a
// depth buffer, geometry preparation from meshes to screen-space triangles,
// line and triangle scan-conversion, and presentation helpers.
package render

import (
	"image"
	"image/png"
	"math"
	"os"

	xdraw "golang.org/x/image/draw"
)

// Framebuffer is the color buffer: a row-major grid of pixels.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []Color
}

// NewFramebuffer creates a new framebuffer with the given dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]Color, width*height),
	}
}

// Clear fills the framebuffer with a solid color.
func (fb *Framebuffer) Clear(c Color) {
	if len(fb.Pixels) == 0 {
		return
	}
	fb.Pixels[0] = c
	for filled := 1; filled < len(fb.Pixels); filled *= 2 {
		copy(fb.Pixels[filled:], fb.Pixels[:filled])
	}
}

// SetPixel sets a pixel at (x, y) to the given color.
// Writes outside the buffer are dropped.
func (fb *Framebuffer) SetPixel(x, y int, c Color) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = c
}

// GetPixel returns the color at (x, y).
// Returns transparent black if out of bounds.
func (fb *Framebuffer) GetPixel(x, y int) Color {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return Color{}
	}
	return fb.Pixels[y*fb.Width+x]
}

// DrawLine draws a line from (x0, y0) to (x1, y1) with a digital differential
// analyzer. Exactly max(|dx|, |dy|)+1 pixels are plotted, endpoints included.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c Color) {
	dx := x1 - x0
	dy := y1 - y0
	steps := max(abs(dx), abs(dy))
	if steps == 0 {
		fb.SetPixel(x0, y0, c)
		return
	}

	xInc := float64(dx) / float64(steps)
	yInc := float64(dy) / float64(steps)
	x, y := float64(x0), float64(y0)
	for range steps + 1 {
		fb.SetPixel(int(math.Round(x)), int(math.Round(y)), c)
		x += xInc
		y += yInc
	}
}

// DrawRect draws a filled rectangle.
func (fb *Framebuffer) DrawRect(x, y, w, h int, c Color) {
	x0, y0 := max(x, 0), max(y, 0)
	x1, y1 := min(x+w, fb.Width), min(y+h, fb.Height)
	for py := y0; py < y1; py++ {
		row := fb.Pixels[py*fb.Width : (py+1)*fb.Width]
		for px := x0; px < x1; px++ {
			row[px] = c
		}
	}
}

// DrawGrid plots a dot at every multiple of spacing on both axes.
func (fb *Framebuffer) DrawGrid(spacing int, c Color) {
	if spacing <= 0 {
		return
	}
	for y := 0; y < fb.Height; y += spacing {
		for x := 0; x < fb.Width; x += spacing {
			fb.Pixels[y*fb.Width+x] = c
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// ToImage converts the framebuffer to a standard Go image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for i, p := range fb.Pixels {
		img.Pix[i*4+0] = p.R
		img.Pix[i*4+1] = p.G
		img.Pix[i*4+2] = p.B
		img.Pix[i*4+3] = p.A
	}
	return img
}

// Scaled returns the framebuffer resized to width x height with
// nearest-neighbor sampling, so pixels stay crisp.
func (fb *Framebuffer) Scaled(width, height int) *image.RGBA {
	src := fb.ToImage()
	if width == fb.Width && height == fb.Height {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// SavePNG saves the framebuffer as a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	return SaveImagePNG(path, fb.ToImage())
}

// SaveImagePNG encodes img to a PNG file at path.
func SaveImagePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
