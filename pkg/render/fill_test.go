package render

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/taigrr/scanline/pkg/math3d"
)

// flatTriangle builds a full-intensity screen triangle with every vertex at
// the same 1/w.
func flatTriangle(invW float64, pts [3][2]float64) Triangle {
	var tri Triangle
	for i, p := range pts {
		tri.V[i] = ScreenVertex{X: p[0], Y: p[1], InvW: invW}
	}
	tri.Intensity = 1
	return tri
}

func filledSet(fb *Framebuffer, c Color) map[[2]int]bool {
	set := make(map[[2]int]bool)
	for y := range fb.Height {
		for x := range fb.Width {
			if fb.GetPixel(x, y) == c {
				set[[2]int{x, y}] = true
			}
		}
	}
	return set
}

func TestFillTriangleRightTriangle(t *testing.T) {
	r := NewTarget(8, 8)
	r.Clear(ColorBlack)
	c := RGB(10, 200, 30)

	r.FillTriangle(flatTriangle(1, [3][2]float64{{0, 0}, {4, 0}, {0, 4}}), c)

	got := filledSet(r.Framebuffer(), c)
	if len(got) != 15 {
		t.Fatalf("filled %d pixels, want 15", len(got))
	}
	for y := 0; y <= 4; y++ {
		for x := 0; x <= 4-y; x++ {
			if !got[[2]int{x, y}] {
				t.Errorf("pixel (%d, %d) not filled", x, y)
			}
		}
	}
	if n := countColor(r.Framebuffer(), ColorBlack); n != 64-15 {
		t.Errorf("%d untouched pixels, want %d", n, 64-15)
	}
}

func TestFillTriangleVertexOrderIndependent(t *testing.T) {
	pts := [3][2]float64{{2, 1}, {13, 6}, {5, 14}}
	orders := [][3]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}

	var want map[[2]int]bool
	for _, o := range orders {
		r := NewTarget(16, 16)
		r.FillTriangle(flatTriangle(1, [3][2]float64{pts[o[0]], pts[o[1]], pts[o[2]]}), ColorRed)
		got := filledSet(r.Framebuffer(), ColorRed)
		if want == nil {
			want = got
			continue
		}
		if len(got) != len(want) {
			t.Errorf("order %v filled %d pixels, want %d", o, len(got), len(want))
		}
	}
}

func TestFillTriangleScanlinesExhaustive(t *testing.T) {
	tests := []struct {
		name string
		pts  [3][2]float64
	}{
		{"general", [3][2]float64{{3, 1}, {28, 12}, {9, 30}}},
		{"thin", [3][2]float64{{1, 1}, {2, 30}, {3, 15}}},
		{"fractional", [3][2]float64{{4.7, 2.2}, {25.9, 17.5}, {12.1, 29.8}}},
		{"middle on the left", [3][2]float64{{20, 2}, {2, 16}, {24, 29}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NewTarget(32, 32)
			r.FillTriangle(flatTriangle(1, tc.pts), ColorWhite)

			fb := r.Framebuffer()
			minY := int(min(tc.pts[0][1], tc.pts[1][1], tc.pts[2][1]))
			maxY := int(max(tc.pts[0][1], tc.pts[1][1], tc.pts[2][1]))
			for y := minY + 1; y < maxY; y++ {
				found := false
				for x := range fb.Width {
					if fb.GetPixel(x, y) == ColorWhite {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("scanline %d is empty", y)
				}
			}
		})
	}
}

func TestFillTriangleFlatEdges(t *testing.T) {
	tests := []struct {
		name string
		pts  [3][2]float64
		want int
	}{
		// rows 0..3 are 7, 5, 3, 1 wide
		{"flat top", [3][2]float64{{0, 0}, {6, 0}, {3, 3}}, 16},
		// rows 0..3 are 1, 3, 5, 7 wide
		{"flat bottom", [3][2]float64{{3, 0}, {0, 3}, {6, 3}}, 16},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NewTarget(8, 8)
			r.FillTriangle(flatTriangle(1, tc.pts), ColorWhite)
			if got := countColor(r.Framebuffer(), ColorWhite); got != tc.want {
				t.Errorf("filled %d pixels, want %d", got, tc.want)
			}
		})
	}
}

func TestFillTriangleDegenerate(t *testing.T) {
	tests := []struct {
		name string
		pts  [3][2]float64
	}{
		{"horizontal line", [3][2]float64{{0, 2}, {5, 2}, {7, 2}}},
		{"vertical line", [3][2]float64{{3, 0}, {3, 4}, {3, 7}}},
		{"point", [3][2]float64{{3, 3}, {3, 3}, {3, 3}}},
		{"collinear diagonal", [3][2]float64{{0, 0}, {2, 2}, {5, 5}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NewTarget(8, 8)
			r.FillTriangle(flatTriangle(1, tc.pts), ColorWhite)
			if got := countColor(r.Framebuffer(), ColorWhite); got != 0 {
				t.Errorf("zero-area triangle filled %d pixels", got)
			}
		})
	}
}

func TestFillTriangleOffscreenClamped(t *testing.T) {
	r := NewTarget(8, 8)
	r.FillTriangle(flatTriangle(1, [3][2]float64{{-100, -100}, {500, -100}, {-100, 500}}), ColorWhite)
	if got := countColor(r.Framebuffer(), ColorWhite); got != 64 {
		t.Errorf("filled %d pixels, want all 64", got)
	}
}

func TestFillTriangleFarOffscreenVertex(t *testing.T) {
	// a vertex just in front of the near plane lands far outside the target;
	// the visible edges must follow its true position
	r := NewTarget(1024, 8)
	tri := flatTriangle(1, [3][2]float64{{0, 0}, {200000, 100}, {0, 100}})
	tri.V[2].InvW = 0.5
	r.FillTriangle(tri, ColorWhite)

	fb := r.Framebuffer()
	for y := range fb.Height {
		want := fb.Width
		if y == 0 {
			want = 1
		}
		got := 0
		for x := range fb.Width {
			if fb.GetPixel(x, y) == ColorWhite {
				got++
			}
		}
		if got != want {
			t.Errorf("row %d filled %d of %d pixels, want %d", y, got, fb.Width, want)
		}
	}

	// 1/w is affine in screen space: 1 - 0.5*(y/100 - x/200000)
	depths := r.DepthBuffer()
	want := DepthFar - (1 - 0.5*(5.0/100-1000.0/200000))
	if got := depths.Depths[5*depths.Width+1000]; math.Abs(got-want) > 1e-9 {
		t.Errorf("depth at (1000, 5) = %v, want %v", got, want)
	}
}

func TestFillTriangleNonFiniteVertex(t *testing.T) {
	r := NewTarget(8, 8)
	r.FillTriangle(flatTriangle(1, [3][2]float64{{0, 0}, {math.Inf(1), 4}, {0, 4}}), ColorWhite)
	r.FillTriangle(flatTriangle(1, [3][2]float64{{0, 0}, {4, math.NaN()}, {0, 4}}), ColorWhite)
	if got := countColor(r.Framebuffer(), ColorWhite); got != 0 {
		t.Errorf("filled %d pixels, want 0", got)
	}
}

// strictlyConvex reports whether q turns the same way at every corner.
func strictlyConvex(q [4][2]float64) bool {
	sign := 0.0
	for i := range 4 {
		a, b, c := q[i], q[(i+1)%4], q[(i+2)%4]
		cross := (b[0]-a[0])*(c[1]-b[1]) - (b[1]-a[1])*(c[0]-b[0])
		if cross == 0 || sign*cross < 0 {
			return false
		}
		sign = cross
	}
	return true
}

func TestFillAdjacentTrianglesLeaveNoGaps(t *testing.T) {
	// a convex quad split along a diagonal covers one unbroken run per row
	const size = 32
	rng := rand.New(rand.NewPCG(7, 11))

	quads := 0
	for range 2000 {
		var q [4][2]float64
		for i := range q {
			q[i] = [2]float64{float64(rng.IntN(size)), float64(rng.IntN(size))}
		}
		if !strictlyConvex(q) {
			continue
		}
		quads++

		r := NewTarget(size, size)
		r.FillTriangle(flatTriangle(1, [3][2]float64{q[0], q[1], q[2]}), ColorWhite)
		r.FillTriangle(flatTriangle(1, [3][2]float64{q[0], q[2], q[3]}), ColorWhite)

		fb := r.Framebuffer()
		for y := range size {
			first, last, n := -1, -1, 0
			for x := range size {
				if fb.GetPixel(x, y) != ColorWhite {
					continue
				}
				if first < 0 {
					first = x
				}
				last = x
				n++
			}
			if n > 0 && n != last-first+1 {
				t.Fatalf("quad %v: row %d has a gap, %d pixels across %d..%d", q, y, n, first, last)
			}
		}
	}
	if quads == 0 {
		t.Fatal("no convex quads generated")
	}
}

func TestFillTriangleDepthIdempotent(t *testing.T) {
	tri := flatTriangle(0.5, [3][2]float64{{1, 1}, {14, 3}, {6, 13}})

	once := NewTarget(16, 16)
	once.Clear(ColorBlack)
	once.FillTriangle(tri, ColorRed)

	twice := NewTarget(16, 16)
	twice.Clear(ColorBlack)
	twice.FillTriangle(tri, ColorRed)
	twice.FillTriangle(tri, ColorBlue)

	for i := range once.Framebuffer().Pixels {
		if once.Framebuffer().Pixels[i] != twice.Framebuffer().Pixels[i] {
			t.Fatalf("pixel %d differs after redraw", i)
		}
		if once.DepthBuffer().Depths[i] != twice.DepthBuffer().Depths[i] {
			t.Fatalf("depth %d differs after redraw", i)
		}
	}
}

func TestFillTriangleDepthOrdering(t *testing.T) {
	near := flatTriangle(0.5, [3][2]float64{{0, 0}, {12, 0}, {0, 12}})
	far := flatTriangle(0.25, [3][2]float64{{2, 2}, {15, 2}, {2, 15}})

	tests := []struct {
		name  string
		first Triangle
		c1    Color
		then  Triangle
		c2    Color
	}{
		{"near first", near, ColorRed, far, ColorBlue},
		{"far first", far, ColorBlue, near, ColorRed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NewTarget(16, 16)
			r.FillTriangle(tc.first, tc.c1)
			r.FillTriangle(tc.then, tc.c2)

			fb := r.Framebuffer()
			if got := fb.GetPixel(4, 4); got != ColorRed {
				t.Errorf("overlap pixel = %v, want near color %v", got, ColorRed)
			}
			if got := fb.GetPixel(10, 6); got != ColorBlue {
				t.Errorf("far-only pixel = %v, want %v", got, ColorBlue)
			}
		})
	}
}

func TestFillTriangleInterpolatedDepth(t *testing.T) {
	// a tilted triangle crossing a flat one: each wins where it is nearer
	tilted := Triangle{Intensity: 1, V: [3]ScreenVertex{
		{X: 0, Y: 0, InvW: 0.8},
		{X: 15, Y: 0, InvW: 0.2},
		{X: 0, Y: 15, InvW: 0.8},
	}}
	flat := flatTriangle(0.5, [3][2]float64{{0, 0}, {15, 0}, {0, 15}})

	r := NewTarget(16, 16)
	r.FillTriangle(flat, ColorBlue)
	r.FillTriangle(tilted, ColorRed)

	fb := r.Framebuffer()
	if got := fb.GetPixel(1, 1); got != ColorRed {
		t.Errorf("left pixel = %v, want tilted triangle", got)
	}
	if got := fb.GetPixel(12, 1); got != ColorBlue {
		t.Errorf("right pixel = %v, want flat triangle", got)
	}
}

func TestFillTriangleShaded(t *testing.T) {
	r := NewTarget(8, 8)
	tri := flatTriangle(1, [3][2]float64{{0, 0}, {6, 0}, {0, 6}})
	tri.Intensity = 0.5
	r.FillTriangle(tri, RGB(200, 100, 0))
	if got := r.Framebuffer().GetPixel(1, 1); got != RGB(100, 50, 0) {
		t.Errorf("got %v, want %v", got, RGB(100, 50, 0))
	}
}

func TestFillTexturedTriangleSamplesTexture(t *testing.T) {
	// 2x2 texture: bottom row red/green, top row blue/white
	tex := NewTexture(2, 2)
	tex.Pixels = []Color{ColorBlue, ColorWhite, ColorRed, ColorGreen}

	r := NewTarget(16, 16)
	tri := Triangle{Intensity: 1, V: [3]ScreenVertex{
		{X: 0, Y: 15, InvW: 1, UV: math3d.V2(0, 0)},
		{X: 15, Y: 15, InvW: 1, UV: math3d.V2(1, 0)},
		{X: 0, Y: 0, InvW: 1, UV: math3d.V2(0, 1)},
	}}
	r.FillTexturedTriangle(tri, tex, false)

	fb := r.Framebuffer()
	tests := []struct {
		x, y int
		want Color
	}{
		{1, 14, ColorRed},    // near uv (0,0)
		{12, 14, ColorGreen}, // near uv (1,0)
		{1, 2, ColorBlue},    // near uv (0,1)
	}
	for _, tc := range tests {
		if got := fb.GetPixel(tc.x, tc.y); got != tc.want {
			t.Errorf("pixel (%d, %d) = %v, want %v", tc.x, tc.y, got, tc.want)
		}
	}
}

func TestFillTexturedTrianglePerspectiveCorrect(t *testing.T) {
	// the left edge is 4x nearer than the right edge, so texels bunch up
	// toward the left of the screen
	tex := NewTexture(10, 1)
	for i := range tex.Pixels {
		tex.Pixels[i] = RGB(uint8(i*20), 0, 0)
	}

	r := NewTarget(41, 41)
	tri := Triangle{Intensity: 1, V: [3]ScreenVertex{
		{X: 0, Y: 0, InvW: 1, UV: math3d.V2(0, 0)},
		{X: 40, Y: 0, InvW: 0.25, UV: math3d.V2(1, 0)},
		{X: 0, Y: 40, InvW: 1, UV: math3d.V2(0, 1)},
	}}
	r.FillTexturedTriangle(tri, tex, false)

	// at x=24 on row 0: u = (0.6*0.25) / (0.4*1 + 0.6*0.25) = 0.27,
	// where affine interpolation would give 0.6
	got := r.Framebuffer().GetPixel(24, 0)
	want := tex.Pixels[2]
	if got != want {
		t.Errorf("texel = %v, want %v (u=0.27)", got, want)
	}
}

func TestFillTexturedTriangleNilTexture(t *testing.T) {
	r := NewTarget(8, 8)
	r.FillTexturedTriangle(flatTriangle(1, [3][2]float64{{0, 0}, {6, 0}, {0, 6}}), nil, false)
	if got := r.Framebuffer().GetPixel(1, 1); got != ColorMagenta {
		t.Errorf("got %v, want fallback %v", got, ColorMagenta)
	}
}

func TestFillTexturedTriangleDepthTested(t *testing.T) {
	r := NewTarget(8, 8)
	r.FillTriangle(flatTriangle(0.9, [3][2]float64{{0, 0}, {7, 0}, {0, 7}}), ColorRed)
	r.FillTexturedTriangle(flatTriangle(0.1, [3][2]float64{{0, 0}, {7, 0}, {0, 7}}), SolidTexture(ColorGreen), false)
	if got := countColor(r.Framebuffer(), ColorGreen); got != 0 {
		t.Errorf("%d occluded texels were written", got)
	}
}

func BenchmarkFillTriangle(b *testing.B) {
	r := NewTarget(320, 240)
	tri := flatTriangle(0.5, [3][2]float64{{10, 10}, {300, 40}, {120, 230}})

	for b.Loop() {
		r.DepthBuffer().Clear(DepthFar)
		r.FillTriangle(tri, ColorRed)
	}
}

func BenchmarkFillTexturedTriangle(b *testing.B) {
	r := NewTarget(320, 240)
	tex := NewCheckerTexture(64, 64, 8, ColorWhite, ColorBlack)
	tri := Triangle{Intensity: 1, V: [3]ScreenVertex{
		{X: 10, Y: 10, InvW: 1, UV: math3d.V2(0, 1)},
		{X: 300, Y: 40, InvW: 0.5, UV: math3d.V2(1, 1)},
		{X: 120, Y: 230, InvW: 0.25, UV: math3d.V2(0, 0)},
	}}

	for b.Loop() {
		r.DepthBuffer().Clear(DepthFar)
		r.FillTexturedTriangle(tri, tex, false)
	}
}
