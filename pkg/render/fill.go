package render

import "math"

// guardBand is the half-width of the square that wireframe edges are clipped
// to before int conversion. Vertices just in front of the near plane can
// project millions of pixels off screen.
const guardBand = 1 << 16

// finite reports whether v is neither NaN nor infinite.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// edgeCoeffs returns A, B, C for the edge function A*x + B*y + C of the edge
// from (x0, y0) to (x1, y1). It is zero on the edge and changes sign across it.
func edgeCoeffs(x0, y0, x1, y1 float64) (a, b, c float64) {
	return y0 - y1, x1 - x0, x0*y1 - x1*y0
}

// barycentric maps a pixel to weights of the triangle's three vertices.
type barycentric struct {
	a0, b0, c0 float64 // edge 1-2, scaled by 1/area
	a1, b1, c1 float64 // edge 2-0, scaled by 1/area
}

// weights returns the barycentric weights at pixel (x, y).
func (bc *barycentric) weights(x, y int) (w0, w1, w2 float64) {
	fx, fy := float64(x), float64(y)
	w0 = bc.a0*fx + bc.b0*fy + bc.c0
	w1 = bc.a1*fx + bc.b1*fy + bc.c1
	return w0, w1, 1 - w0 - w1
}

// scanPoint is a floored triangle vertex.
type scanPoint struct {
	x, y float64
}

// scanTriangle floors the vertices of t and reports every covered span to
// span, clamped to a width x height target. Spans are inclusive on both ends.
// It returns false, without calling span, for zero-area triangles and for
// vertices that are not finite.
//
// Setup and stepping stay in float64 so far off-screen vertices keep their
// true position. Only the clamped span ends are converted to int.
//
// The triangle is split at its middle vertex into a flat-bottom part
// (top to middle) and a flat-top part (middle to bottom). A part whose two
// vertices share a row is skipped, so no slope is ever divided by zero. The
// middle row is visited by both parts.
func scanTriangle(t *Triangle, width, height int, bc *barycentric, span func(y, x0, x1 int)) bool {
	var p [3]scanPoint
	for i, v := range t.V {
		if !finite(v.X) || !finite(v.Y) {
			return false
		}
		p[i] = scanPoint{math.Floor(v.X), math.Floor(v.Y)}
	}

	a0, b0, c0 := edgeCoeffs(p[1].x, p[1].y, p[2].x, p[2].y)
	area := a0*p[0].x + b0*p[0].y + c0
	if area == 0 {
		return false
	}
	a1, b1, c1 := edgeCoeffs(p[2].x, p[2].y, p[0].x, p[0].y)
	inv := 1 / area
	*bc = barycentric{a0 * inv, b0 * inv, c0 * inv, a1 * inv, b1 * inv, c1 * inv}

	// stable sort by y
	if p[1].y < p[0].y {
		p[0], p[1] = p[1], p[0]
	}
	if p[2].y < p[1].y {
		p[1], p[2] = p[2], p[1]
		if p[1].y < p[0].y {
			p[0], p[1] = p[1], p[0]
		}
	}
	top, mid, bot := p[0], p[1], p[2]

	maxX, maxY := float64(width-1), float64(height-1)
	emit := func(y int, xa, xb float64) {
		if xa > xb {
			xa, xb = xb, xa
		}
		xa = max(math.Floor(xa), 0)
		xb = min(math.Floor(xb), maxX)
		if xa <= xb {
			span(y, int(xa), int(xb))
		}
	}

	long := inverseSlope(top, bot)

	if mid.y != top.y {
		short := inverseSlope(top, mid)
		y0 := int(min(max(top.y, 0), maxY+1))
		y1 := int(max(min(mid.y, maxY), -1))
		for y := y0; y <= y1; y++ {
			dy := float64(y) - top.y
			emit(y, top.x+dy*short, top.x+dy*long)
		}
	}

	if bot.y != mid.y {
		short := inverseSlope(mid, bot)
		y0 := int(min(max(mid.y, 0), maxY+1))
		y1 := int(max(min(bot.y, maxY), -1))
		for y := y0; y <= y1; y++ {
			emit(y, mid.x+(float64(y)-mid.y)*short, top.x+(float64(y)-top.y)*long)
		}
	}

	return true
}

// inverseSlope returns dx/dy from a to b, or 0 for a horizontal edge.
func inverseSlope(a, b scanPoint) float64 {
	dy := b.y - a.y
	if dy == 0 {
		return 0
	}
	return (b.x - a.x) / dy
}

// FillTriangle fills t with the solid color c, shaded by t.Intensity, and
// writes only pixels that pass the depth test.
func (r *Rasterizer) FillTriangle(t Triangle, c Color) {
	c = Shade(c, t.Intensity)
	iw0, iw1, iw2 := t.V[0].InvW, t.V[1].InvW, t.V[2].InvW

	var bc barycentric
	scanTriangle(&t, r.fb.Width, r.fb.Height, &bc, func(y, x0, x1 int) {
		row := y * r.fb.Width
		for x := x0; x <= x1; x++ {
			w0, w1, w2 := bc.weights(x, y)
			invW := w0*iw0 + w1*iw1 + w2*iw2
			if r.depth.TestAndSet(x, y, DepthFar-invW) {
				r.fb.Pixels[row+x] = c
			}
		}
	})
}

// FillTexturedTriangle fills t with texels from tex using perspective-correct
// texture coordinates, shaded by t.Intensity, and writes only pixels that pass
// the depth test. A nil tex samples the fallback texture.
func (r *Rasterizer) FillTexturedTriangle(t Triangle, tex *Texture, flipV bool) {
	if tex == nil {
		tex = FallbackTexture()
	}
	v0, v1, v2 := t.V[0], t.V[1], t.V[2]

	// attributes divided by w interpolate linearly in screen space
	u0, u1, u2 := v0.UV.X*v0.InvW, v1.UV.X*v1.InvW, v2.UV.X*v2.InvW
	s0, s1, s2 := v0.UV.Y*v0.InvW, v1.UV.Y*v1.InvW, v2.UV.Y*v2.InvW

	var bc barycentric
	scanTriangle(&t, r.fb.Width, r.fb.Height, &bc, func(y, x0, x1 int) {
		row := y * r.fb.Width
		for x := x0; x <= x1; x++ {
			w0, w1, w2 := bc.weights(x, y)
			invW := w0*v0.InvW + w1*v1.InvW + w2*v2.InvW
			if invW <= 0 {
				continue
			}
			if !r.depth.TestAndSet(x, y, DepthFar-invW) {
				continue
			}
			u := (w0*u0 + w1*u1 + w2*u2) / invW
			v := (w0*s0 + w1*s1 + w2*s2) / invW
			r.fb.Pixels[row+x] = Shade(tex.Sample(u, v, flipV), t.Intensity)
		}
	})
}
