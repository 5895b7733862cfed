package render

import (
	"fmt"
	"math"

	"github.com/taigrr/scanline/pkg/math3d"
)

// ScreenVertex is a projected vertex ready for scan-conversion.
type ScreenVertex struct {
	X, Y float64     // Pixel coordinates, y grows downward
	InvW float64     // 1/w, the reciprocal of view-space depth
	UV   math3d.Vec2 // Texture coordinates as authored
}

// Depth returns the value stored in the depth buffer for this vertex.
func (v ScreenVertex) Depth() float64 {
	return DepthFar - v.InvW
}

// Triangle is a screen-space triangle produced by Prepare. It only lives for
// the frame it was prepared in.
type Triangle struct {
	V         [3]ScreenVertex
	Intensity float64 // Face shading in [0, 1]
}

// Rasterizer draws screen-space triangles into a color buffer, arbitrating
// visibility through a depth buffer of the same size. It is not safe for
// concurrent use.
type Rasterizer struct {
	fb    *Framebuffer
	depth *DepthBuffer

	scratch []Triangle   // Reused by DrawMesh between frames
	Stats   PrepareStats // Accumulated since the last ResetStats
}

// NewRasterizer creates a rasterizer over fb and depth. It panics if their
// dimensions differ.
func NewRasterizer(fb *Framebuffer, depth *DepthBuffer) *Rasterizer {
	if fb.Width != depth.Width || fb.Height != depth.Height {
		panic(fmt.Sprintf("render: color buffer %dx%d and depth buffer %dx%d differ",
			fb.Width, fb.Height, depth.Width, depth.Height))
	}
	return &Rasterizer{fb: fb, depth: depth}
}

// NewTarget allocates a color and depth buffer pair and a rasterizer over
// them.
func NewTarget(width, height int) *Rasterizer {
	return NewRasterizer(NewFramebuffer(width, height), NewDepthBuffer(width, height))
}

// Framebuffer returns the color buffer.
func (r *Rasterizer) Framebuffer() *Framebuffer {
	return r.fb
}

// DepthBuffer returns the depth buffer.
func (r *Rasterizer) DepthBuffer() *DepthBuffer {
	return r.depth
}

// Width returns the render target width.
func (r *Rasterizer) Width() int {
	return r.fb.Width
}

// Height returns the render target height.
func (r *Rasterizer) Height() int {
	return r.fb.Height
}

// Clear resets the color buffer to bg and the depth buffer to DepthFar.
// Call once per frame after the frame has been presented.
func (r *Rasterizer) Clear(bg Color) {
	r.fb.Clear(bg)
	r.depth.Clear(DepthFar)
}

// ResetStats zeroes the preparation statistics.
func (r *Rasterizer) ResetStats() {
	r.Stats = PrepareStats{}
}

// DrawTriangleWireframe draws the three edges 0-1, 1-2, 2-0 without a depth
// test.
func (r *Rasterizer) DrawTriangleWireframe(t Triangle, c Color) {
	r.drawEdge(t.V[0], t.V[1], c)
	r.drawEdge(t.V[1], t.V[2], c)
	r.drawEdge(t.V[2], t.V[0], c)
}

// drawEdge clips the edge a-b to the guard band along its own line, then
// draws it between the floored endpoints.
func (r *Rasterizer) drawEdge(a, b ScreenVertex, c Color) {
	x0, y0, x1, y1, ok := clipSegment(a.X, a.Y, b.X, b.Y, -guardBand, guardBand)
	if !ok {
		return
	}
	r.fb.DrawLine(int(math.Floor(x0)), int(math.Floor(y0)), int(math.Floor(x1)), int(math.Floor(y1)), c)
}

// DrawTrianglePoints draws a size x size square centered on each vertex
// without a depth test. Vertices outside the target are skipped.
func (r *Rasterizer) DrawTrianglePoints(t Triangle, size int, c Color) {
	size = max(size, 1)
	for _, v := range t.V {
		if !finite(v.X) || !finite(v.Y) || math.Abs(v.X) > guardBand || math.Abs(v.Y) > guardBand {
			continue
		}
		x, y := int(math.Floor(v.X)), int(math.Floor(v.Y))
		r.fb.DrawRect(x-size/2, y-size/2, size, size, c)
	}
}

// clipSegment clips the segment (x0, y0)-(x1, y1) to the square [lo, hi] on
// both axes (Liang-Barsky). It reports false when nothing of the segment
// remains or an endpoint is not finite.
func clipSegment(x0, y0, x1, y1, lo, hi float64) (float64, float64, float64, float64, bool) {
	if !finite(x0) || !finite(y0) || !finite(x1) || !finite(y1) {
		return 0, 0, 0, 0, false
	}
	dx, dy := x1-x0, y1-y0
	t0, t1 := 0.0, 1.0
	for _, e := range [4][2]float64{
		{-dx, x0 - lo},
		{dx, hi - x0},
		{-dy, y0 - lo},
		{dy, hi - y0},
	} {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			t0 = max(t0, t)
		} else {
			t1 = min(t1, t)
		}
		if t0 > t1 {
			return 0, 0, 0, 0, false
		}
	}
	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}
