package render

import (
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"math"
	"os"

	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// WrapMode determines how texture coordinates outside [0,1] are handled.
type WrapMode int

const (
	WrapClamp  WrapMode = iota // Clamp to edge
	WrapRepeat                 // Tile the texture
)

// Texture holds a 2D image for texture mapping. Sampling is always
// nearest-neighbor.
type Texture struct {
	Width  int
	Height int
	Pixels []Color // Row-major, row 0 is the top of the image
	WrapU  WrapMode
	WrapV  WrapMode
}

// NewTexture creates an empty texture with the given dimensions.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: make([]Color, width*height),
	}
}

// SolidTexture creates a 1x1 texture of a single color.
func SolidTexture(c Color) *Texture {
	tex := NewTexture(1, 1)
	tex.Pixels[0] = c
	return tex
}

var fallback = SolidTexture(ColorMagenta)

// FallbackTexture returns the shared 1x1 magenta texture used when a texture
// is missing or failed to load. Callers must not modify it.
func FallbackTexture() *Texture {
	return fallback
}

// LoadTexture loads a texture from an image file. PNG, JPEG, BMP, TIFF and
// WebP are supported.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	return TextureFromImage(img), nil
}

// TextureFromImage creates a texture from an image.Image.
func TextureFromImage(img image.Image) *Texture {
	bounds := img.Bounds()
	tex := NewTexture(bounds.Dx(), bounds.Dy())

	for y := range tex.Height {
		for x := range tex.Width {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// RGBA returns 16-bit values, scale to 8-bit
			tex.Pixels[y*tex.Width+x] = Color{
				R: uint8(r >> 8),
				G: uint8(g >> 8),
				B: uint8(b >> 8),
				A: uint8(a >> 8),
			}
		}
	}

	return tex
}

// NewCheckerTexture creates a procedural checkerboard texture.
func NewCheckerTexture(width, height, checkSize int, c1, c2 Color) *Texture {
	tex := NewTexture(width, height)
	for y := range height {
		for x := range width {
			if (x/checkSize+y/checkSize)%2 == 0 {
				tex.Pixels[y*width+x] = c1
			} else {
				tex.Pixels[y*width+x] = c2
			}
		}
	}
	return tex
}

// GetPixel returns the pixel at (x, y) with bounds checking.
func (t *Texture) GetPixel(x, y int) Color {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return Color{}
	}
	return t.Pixels[y*t.Width+x]
}

// Sample returns the texel nearest to (u, v).
//
// v = 0 addresses the bottom row of the image. With flipV set, v = 0
// addresses the top row instead. Coordinates outside [0,1] are clamped to
// the edge unless the texture's wrap mode is WrapRepeat.
func (t *Texture) Sample(u, v float64, flipV bool) Color {
	if t.Width == 0 || t.Height == 0 {
		return ColorMagenta
	}

	u = wrapCoord(u, t.WrapU)
	v = wrapCoord(v, t.WrapV)
	if !flipV {
		v = 1 - v
	}

	x := min(int(u*float64(t.Width)), t.Width-1)
	y := min(int(v*float64(t.Height)), t.Height-1)
	return t.GetPixel(x, y)
}

func wrapCoord(coord float64, mode WrapMode) float64 {
	if math.IsNaN(coord) {
		return 0
	}
	if mode == WrapRepeat {
		return coord - math.Floor(coord)
	}
	return math.Max(0, math.Min(1, coord))
}
