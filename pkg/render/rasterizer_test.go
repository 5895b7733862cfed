package render

import (
	"math"
	"testing"

	"github.com/taigrr/scanline/pkg/math3d"
)

// mockMesh implements MeshSource for testing.
type mockMesh struct {
	vertices    []math3d.Vec3
	uvs         []math3d.Vec2
	faces       [][3]int
	translation math3d.Vec3
	rotation    math3d.Vec3
	scale       math3d.Vec3
}

func newMockMesh(vertices []math3d.Vec3, faces ...[3]int) *mockMesh {
	return &mockMesh{vertices: vertices, faces: faces, scale: math3d.V3(1, 1, 1)}
}

func (m *mockMesh) TriangleCount() int { return len(m.faces) }

func (m *mockMesh) Triangle(i int) (pos [3]math3d.Vec3, uv [3]math3d.Vec2) {
	for k, idx := range m.faces[i] {
		pos[k] = m.vertices[idx]
		if idx < len(m.uvs) {
			uv[k] = m.uvs[idx]
		}
	}
	return pos, uv
}

func (m *mockMesh) TransformState() (translation, rotation, scale math3d.Vec3) {
	return m.translation, m.rotation, m.scale
}

// boundedMock adds bounds so Prepare can reject it.
type boundedMock struct {
	*mockMesh
	lo, hi math3d.Vec3
}

func (m boundedMock) Bounds() (lo, hi math3d.Vec3) { return m.lo, m.hi }

// createTestRasterizer creates a square target and a camera at (0, 0, 5)
// looking at the origin.
func createTestRasterizer(size int) (*Rasterizer, *Camera, math3d.Mat4) {
	r := NewTarget(size, size)
	r.Clear(ColorBlack)
	cam := NewCamera()
	cam.SetAspectRatio(1)
	return r, cam, cam.ProjectionMatrix()
}

// frontTriangle is counter-clockwise when seen from +Z.
var frontTriangle = []math3d.Vec3{
	math3d.V3(-1, -1, 0),
	math3d.V3(1, -1, 0),
	math3d.V3(0, 1, 0),
}

func TestIsBackFacing(t *testing.T) {
	a, b, c := math3d.V3(0, 0, -5), math3d.V3(1, 0, -5), math3d.V3(0, 1, -5)

	tests := []struct {
		name    string
		a, b, c math3d.Vec3
		want    bool
	}{
		{"counter-clockwise faces camera", a, b, c, false},
		{"clockwise faces away", a, c, b, true},
		{"edge on", math3d.V3(0, 0, -5), math3d.V3(0, 0, -6), math3d.V3(0, 1, -5), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsBackFacing(tc.a, tc.b, tc.c); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPrepareBackfaceCulling(t *testing.T) {
	tests := []struct {
		name  string
		face  [3]int
		cull  bool
		count int
	}{
		{"front face, culling on", [3]int{0, 1, 2}, true, 1},
		{"back face, culling on", [3]int{0, 2, 1}, true, 0},
		{"back face, culling off", [3]int{0, 2, 1}, false, 1},
		{"front face, culling off", [3]int{0, 1, 2}, false, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, cam, proj := createTestRasterizer(64)
			s := DefaultSettings()
			s.BackfaceCull = tc.cull

			tris := r.Prepare(nil, newMockMesh(frontTriangle, tc.face), cam, proj, s)
			if len(tris) != tc.count {
				t.Errorf("got %d triangles, want %d", len(tris), tc.count)
			}
			if culled := 1 - tc.count; r.Stats.Culled != culled {
				t.Errorf("stats.Culled = %d, want %d", r.Stats.Culled, culled)
			}
		})
	}
}

func TestPrepareScreenMapping(t *testing.T) {
	r, cam, proj := createTestRasterizer(64)
	mesh := newMockMesh(frontTriangle, [3]int{0, 1, 2})
	mesh.uvs = []math3d.Vec2{math3d.V2(0, 0), math3d.V2(1, 0), math3d.V2(0.5, 1)}

	tris := r.Prepare(nil, mesh, cam, proj, DefaultSettings())
	if len(tris) != 1 {
		t.Fatalf("got %d triangles, want 1", len(tris))
	}

	// 90 degree fov at distance 5: x = -1 maps to 32 - 32/5
	v := tris[0].V
	want := []ScreenVertex{
		{X: 32 - 6.4, Y: 32 + 6.4, InvW: 0.2, UV: math3d.V2(0, 0)},
		{X: 32 + 6.4, Y: 32 + 6.4, InvW: 0.2, UV: math3d.V2(1, 0)},
		{X: 32, Y: 32 - 6.4, InvW: 0.2, UV: math3d.V2(0.5, 1)},
	}
	for i := range want {
		if math.Abs(v[i].X-want[i].X) > 1e-6 || math.Abs(v[i].Y-want[i].Y) > 1e-6 {
			t.Errorf("vertex %d at (%v, %v), want (%v, %v)", i, v[i].X, v[i].Y, want[i].X, want[i].Y)
		}
		if math.Abs(v[i].InvW-want[i].InvW) > 1e-9 {
			t.Errorf("vertex %d InvW = %v, want %v", i, v[i].InvW, want[i].InvW)
		}
		if v[i].UV != want[i].UV {
			t.Errorf("vertex %d UV = %v, want %v", i, v[i].UV, want[i].UV)
		}
	}
}

func TestPrepareAppliesTransform(t *testing.T) {
	r, cam, proj := createTestRasterizer(64)
	mesh := newMockMesh([]math3d.Vec3{
		math3d.V3(0, 0, 0),
		math3d.V3(1, 0, 0),
		math3d.V3(0, 1, 0),
	}, [3]int{0, 1, 2})
	mesh.translation = math3d.V3(2, 0, 0)
	mesh.scale = math3d.V3(2, 2, 2)
	// quarter turn about Z maps local +X onto +Y
	mesh.rotation = math3d.V3(0, 0, math.Pi/2)

	tris := r.Prepare(nil, mesh, cam, proj, DefaultSettings())
	if len(tris) != 1 {
		t.Fatalf("got %d triangles, want 1", len(tris))
	}

	// (1,0,0) -> scale (2,0,0) -> rotate (0,2,0) -> translate (2,2,0)
	got := tris[0].V[1]
	wantX, wantY := 32+2*6.4, 32-2*6.4
	if math.Abs(got.X-wantX) > 1e-6 || math.Abs(got.Y-wantY) > 1e-6 {
		t.Errorf("vertex at (%v, %v), want (%v, %v)", got.X, got.Y, wantX, wantY)
	}
}

func TestPrepareNearClipping(t *testing.T) {
	tests := []struct {
		name     string
		vertices []math3d.Vec3
		wantNone bool
	}{
		{"straddles camera", []math3d.Vec3{
			math3d.V3(-1, -1, 0), math3d.V3(1, -1, 0), math3d.V3(0, 1, 10),
		}, false},
		{"one vertex in front", []math3d.Vec3{
			math3d.V3(-1, -1, 10), math3d.V3(1, -1, 10), math3d.V3(0, 1, 0),
		}, false},
		{"behind camera", []math3d.Vec3{
			math3d.V3(-1, -1, 6), math3d.V3(1, -1, 6), math3d.V3(0, 1, 8),
		}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, cam, proj := createTestRasterizer(64)
			s := DefaultSettings()
			s.BackfaceCull = false

			tris := r.Prepare(nil, newMockMesh(tc.vertices, [3]int{0, 1, 2}), cam, proj, s)
			if tc.wantNone {
				if len(tris) != 0 {
					t.Errorf("got %d triangles, want none", len(tris))
				}
				return
			}
			if len(tris) == 0 || len(tris) > 2 {
				t.Fatalf("got %d triangles, want 1 or 2", len(tris))
			}
			if r.Stats.Clipped != 1 {
				t.Errorf("stats.Clipped = %d, want 1", r.Stats.Clipped)
			}
			for _, tri := range tris {
				for _, v := range tri.V {
					if !(v.InvW > 0) || math.IsInf(v.X, 0) || math.IsNaN(v.X) {
						t.Errorf("bad clipped vertex %+v", v)
					}
				}
			}

			// rendering a clipped triangle must stay in bounds
			r.Render(tris, s, nil, ColorRed)
		})
	}
}

func TestPrepareRejectsMeshOutsideFrustum(t *testing.T) {
	r, cam, proj := createTestRasterizer(64)

	visible := boundedMock{newMockMesh(frontTriangle, [3]int{0, 1, 2}), math3d.V3(-1, -1, 0), math3d.V3(1, 1, 0)}
	if tris := r.Prepare(nil, visible, cam, proj, DefaultSettings()); len(tris) != 1 {
		t.Errorf("visible mesh produced %d triangles, want 1", len(tris))
	}

	offscreen := boundedMock{newMockMesh(frontTriangle, [3]int{0, 1, 2}), math3d.V3(-1, -1, 0), math3d.V3(1, 1, 0)}
	offscreen.translation = math3d.V3(100, 0, 0)
	if tris := r.Prepare(nil, offscreen, cam, proj, DefaultSettings()); len(tris) != 0 {
		t.Errorf("offscreen mesh produced %d triangles, want 0", len(tris))
	}
	if r.Stats.MeshesRejected != 1 || r.Stats.Meshes != 2 {
		t.Errorf("stats = %+v, want 1 of 2 meshes rejected", r.Stats)
	}
}

func TestPrepareKeepsFaceOrder(t *testing.T) {
	r, cam, proj := createTestRasterizer(64)
	vertices := []math3d.Vec3{
		math3d.V3(-2, 0, 0), math3d.V3(-1, 0, 0), math3d.V3(-2, 1, 0),
		math3d.V3(1, 0, -1), math3d.V3(2, 0, -1), math3d.V3(1, 1, -1),
	}
	mesh := newMockMesh(vertices, [3]int{3, 4, 5}, [3]int{0, 1, 2})

	tris := r.Prepare(nil, mesh, cam, proj, DefaultSettings())
	if len(tris) != 2 {
		t.Fatalf("got %d triangles, want 2", len(tris))
	}
	if tris[0].V[0].X < 32 || tris[1].V[0].X > 32 {
		t.Errorf("triangles out of face order: x0=%v x1=%v", tris[0].V[0].X, tris[1].V[0].X)
	}
}

func TestFaceIntensity(t *testing.T) {
	light := math3d.V3(0, 0, -1)

	tests := []struct {
		name   string
		normal math3d.Vec3
		want   float64
	}{
		{"facing light", math3d.V3(0, 0, 1), 1},
		{"perpendicular", math3d.V3(1, 0, 0), 0.2},
		{"facing away", math3d.V3(0, 0, -1), 0.2},
		{"45 degrees", math3d.V3(1, 0, 1), 0.2 + 0.8*math.Sqrt2/2},
		{"unnormalized", math3d.V3(0, 0, 7), 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FaceIntensity(tc.normal, light, 0.2); math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPrepareShading(t *testing.T) {
	r, cam, proj := createTestRasterizer(64)
	mesh := newMockMesh(frontTriangle, [3]int{0, 1, 2})

	s := DefaultSettings()
	s.LightDir = math3d.V3(1, 0, 0)
	s.Shaded = true
	tris := r.Prepare(nil, mesh, cam, proj, s)
	if got := tris[0].Intensity; math.Abs(got-s.Ambient) > 1e-9 {
		t.Errorf("side-lit intensity = %v, want ambient %v", got, s.Ambient)
	}

	s.Shaded = false
	tris = r.Prepare(tris[:0], mesh, cam, proj, s)
	if got := tris[0].Intensity; got != 1 {
		t.Errorf("unshaded intensity = %v, want 1", got)
	}
}

func TestRenderModes(t *testing.T) {
	tri := flatTriangle(0.5, [3][2]float64{{2, 2}, {13, 2}, {2, 13}})
	base := RGB(0, 120, 0)
	tex := SolidTexture(RGB(0, 0, 120))

	tests := []struct {
		mode      RenderMode
		wantFill  bool
		wantTex   bool
		wantWire  bool
		wantPoint bool
	}{
		{ModeVertexPoints, false, false, false, true},
		{ModeWireframe, false, false, true, false},
		{ModeFilled, true, false, false, false},
		{ModeWireframeFilled, true, false, true, false},
		{ModeTextured, false, true, false, false},
		{ModeWireframeTextured, false, true, true, false},
	}

	for _, tc := range tests {
		t.Run(tc.mode.String(), func(t *testing.T) {
			r := NewTarget(16, 16)
			r.Clear(ColorBlack)
			s := DefaultSettings()
			s.Mode = tc.mode
			r.Render([]Triangle{tri}, s, tex, base)

			fb := r.Framebuffer()
			if got := fb.GetPixel(5, 5) == base; got != tc.wantFill {
				t.Errorf("interior filled = %v, want %v", got, tc.wantFill)
			}
			if got := fb.GetPixel(5, 5) == tex.Pixels[0]; got != tc.wantTex {
				t.Errorf("interior textured = %v, want %v", got, tc.wantTex)
			}
			if got := fb.GetPixel(7, 2) == s.WireColor; got != tc.wantWire {
				t.Errorf("edge drawn = %v, want %v", got, tc.wantWire)
			}
			if got := fb.GetPixel(13, 2) == s.PointColor; got != tc.wantPoint {
				t.Errorf("vertex point drawn = %v, want %v", got, tc.wantPoint)
			}
		})
	}
}

func TestRenderOverlaysBypassDepth(t *testing.T) {
	tri := flatTriangle(0.5, [3][2]float64{{2, 2}, {13, 2}, {2, 13}})

	for _, mode := range []RenderMode{ModeWireframe, ModeVertexPoints, ModeFilled, ModeTextured} {
		t.Run(mode.String(), func(t *testing.T) {
			r := NewTarget(16, 16)
			r.Clear(ColorBlack)
			// everything already nearer than the triangle
			r.DepthBuffer().Clear(0)

			s := DefaultSettings()
			s.Mode = mode
			r.Render([]Triangle{tri}, s, SolidTexture(ColorBlue), ColorGreen)

			drawn := countColor(r.Framebuffer(), ColorBlack) != 256
			overlay := mode == ModeWireframe || mode == ModeVertexPoints
			if drawn != overlay {
				t.Errorf("drawn = %v, want %v", drawn, overlay)
			}
		})
	}
}

func TestDrawMeshTexturedQuad(t *testing.T) {
	r, cam, proj := createTestRasterizer(64)
	mesh := newMockMesh([]math3d.Vec3{
		math3d.V3(-1, -1, 0), math3d.V3(1, -1, 0), math3d.V3(1, 1, 0), math3d.V3(-1, 1, 0),
	}, [3]int{0, 1, 2}, [3]int{0, 2, 3})
	mesh.uvs = []math3d.Vec2{math3d.V2(0, 0), math3d.V2(1, 0), math3d.V2(1, 1), math3d.V2(0, 1)}

	s := DefaultSettings()
	s.Shaded = false
	tex := NewCheckerTexture(2, 2, 1, ColorWhite, ColorRed)
	r.DrawMesh(mesh, cam, proj, s, tex, ColorGray)

	fb := r.Framebuffer()
	// quad spans 25.6..38.4 on both axes
	for _, p := range [][2]int{{27, 27}, {36, 27}, {27, 36}, {36, 36}} {
		if got := fb.GetPixel(p[0], p[1]); got != ColorWhite && got != ColorRed {
			t.Errorf("pixel %v = %v, want a texel", p, got)
		}
	}
	if fb.GetPixel(27, 27) == fb.GetPixel(36, 27) {
		t.Error("adjacent checker quadrants have the same color")
	}
	if got := fb.GetPixel(5, 5); got != ColorBlack {
		t.Errorf("background pixel = %v, want untouched", got)
	}
	if r.Stats.Emitted != 2 {
		t.Errorf("stats.Emitted = %d, want 2", r.Stats.Emitted)
	}
}

func TestRenderModeText(t *testing.T) {
	for m := ModeVertexPoints; m <= ModeWireframeTextured; m++ {
		text, err := m.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%d): %v", m, err)
		}
		var back RenderMode
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", text, err)
		}
		if back != m {
			t.Errorf("round trip %v -> %q -> %v", m, text, back)
		}
	}
	if _, err := ParseRenderMode("hologram"); err == nil {
		t.Error("expected error for unknown mode")
	}
	if m, err := ParseRenderMode(" Wireframe+Textured "); err != nil || m != ModeWireframeTextured {
		t.Errorf("ParseRenderMode = %v, %v", m, err)
	}
}

func BenchmarkDrawMesh(b *testing.B) {
	r, cam, proj := createTestRasterizer(256)
	mesh := newMockMesh([]math3d.Vec3{
		math3d.V3(-1, -1, 0), math3d.V3(1, -1, 0), math3d.V3(1, 1, 0), math3d.V3(-1, 1, 0),
	}, [3]int{0, 1, 2}, [3]int{0, 2, 3})
	mesh.rotation = math3d.V3(0.3, 0.4, 0)
	s := DefaultSettings()
	tex := NewCheckerTexture(64, 64, 8, ColorWhite, ColorBlack)

	for b.Loop() {
		r.Clear(ColorBlack)
		r.DrawMesh(mesh, cam, proj, s, tex, ColorGray)
	}
}

func TestDrawTriangleWireframeFarVertex(t *testing.T) {
	// the edge from (0,0) towards (500000,2000) rises 1 pixel per 250;
	// pinning the far end would bend it
	r := NewTarget(64, 8)
	r.Clear(ColorBlack)
	tri := Triangle{V: [3]ScreenVertex{{X: 0, Y: 0}, {X: 500000, Y: 2000}, {X: 0, Y: 0}}}
	r.DrawTriangleWireframe(tri, ColorWhite)

	fb := r.Framebuffer()
	for x := range fb.Width {
		if fb.GetPixel(x, 0) != ColorWhite {
			t.Errorf("pixel (%d, 0) not drawn", x)
		}
	}
	if got := countColor(fb, ColorWhite); got != fb.Width {
		t.Errorf("drew %d pixels, want %d on row 0", got, fb.Width)
	}
}

func TestClipSegment(t *testing.T) {
	tests := []struct {
		name   string
		in     [4]float64
		want   [4]float64
		wantOK bool
	}{
		{"inside", [4]float64{1, 2, 3, 4}, [4]float64{1, 2, 3, 4}, true},
		{"end clipped", [4]float64{0, 0, 20, 10}, [4]float64{0, 0, 10, 5}, true},
		{"both ends clipped", [4]float64{-20, 0, 20, 0}, [4]float64{-10, 0, 10, 0}, true},
		{"outside", [4]float64{11, 0, 30, 5}, [4]float64{}, false},
		{"parallel outside", [4]float64{-5, 12, 5, 12}, [4]float64{}, false},
		{"not finite", [4]float64{0, 0, math.Inf(1), 0}, [4]float64{}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			x0, y0, x1, y1, ok := clipSegment(tc.in[0], tc.in[1], tc.in[2], tc.in[3], -10, 10)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if !ok {
				return
			}
			got := [4]float64{x0, y0, x1, y1}
			for i := range got {
				if math.Abs(got[i]-tc.want[i]) > 1e-9 {
					t.Errorf("got %v, want %v", got, tc.want)
					break
				}
			}
		})
	}
}
