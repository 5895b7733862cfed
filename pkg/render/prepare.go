package render

import (
	"math"

	"github.com/taigrr/scanline/pkg/math3d"
)

// MeshSource supplies triangles and a transform state to Prepare. It is
// implemented by models.Mesh; render does not import models.
type MeshSource interface {
	TriangleCount() int
	// Triangle returns the model-space positions and texture coordinates of
	// face i, in winding order.
	Triangle(i int) (pos [3]math3d.Vec3, uv [3]math3d.Vec2)
	// TransformState returns translation, Euler rotation in radians, and scale.
	TransformState() (translation, rotation, scale math3d.Vec3)
}

// BoundedMeshSource extends MeshSource with model-space bounds, which lets
// Prepare reject whole meshes outside the view frustum.
type BoundedMeshSource interface {
	MeshSource
	Bounds() (lo, hi math3d.Vec3)
}

// PrepareStats counts what happened to faces during preparation.
type PrepareStats struct {
	Meshes         int // Meshes prepared
	MeshesRejected int // Meshes whose bounds were outside the frustum
	Faces          int // Faces considered
	Culled         int // Faces dropped as back-facing
	Clipped        int // Faces that touched the near plane
	Emitted        int // Triangles produced
}

// Add accumulates o into s.
func (s *PrepareStats) Add(o PrepareStats) {
	s.Meshes += o.Meshes
	s.MeshesRejected += o.MeshesRejected
	s.Faces += o.Faces
	s.Culled += o.Culled
	s.Clipped += o.Clipped
	s.Emitted += o.Emitted
}

// IsBackFacing reports whether the view-space triangle a, b, c faces away
// from a camera at the origin. Counter-clockwise triangles face the camera.
func IsBackFacing(a, b, c math3d.Vec3) bool {
	normal := b.Sub(a).Cross(c.Sub(a))
	return normal.Dot(a.Negate()) < 0
}

// FaceIntensity returns the shading of a face with view-space normal n under a
// directional light travelling along lightDir. The result is
// ambient + (1-ambient) * max(0, n . -lightDir), clamped to [0, 1].
func FaceIntensity(n, lightDir math3d.Vec3, ambient float64) float64 {
	diffuse := math.Max(0, n.Normalize().Dot(lightDir.Normalize().Negate()))
	return math.Max(0, math.Min(1, ambient+(1-ambient)*diffuse))
}

// Prepare transforms the faces of mesh through the model, view and projection
// matrices and appends the visible screen-space triangles to dst, in face
// order. Back-facing faces are dropped when s.BackfaceCull is set, and faces
// crossing the near plane are clipped to it.
func (r *Rasterizer) Prepare(dst []Triangle, mesh MeshSource, cam *Camera, proj math3d.Mat4, s Settings) []Triangle {
	var stats PrepareStats
	defer func() { r.Stats.Add(stats) }()
	stats.Meshes++

	translation, rotation, scale := mesh.TransformState()
	modelView := cam.ViewMatrix().Mul(math3d.Compose(translation, rotation, scale))

	if bounded, ok := mesh.(BoundedMeshSource); ok {
		lo, hi := bounded.Bounds()
		frustum := NewFrustumFromMatrix(proj.Mul(modelView))
		if !frustum.IntersectAABB(NewAABB(lo, hi)) {
			stats.MeshesRejected++
			return dst
		}
	}

	w, h := float64(r.Width()), float64(r.Height())
	count := mesh.TriangleCount()
	stats.Faces += count

	for i := range count {
		pos, uv := mesh.Triangle(i)

		var view [3]math3d.Vec3
		for k := range 3 {
			view[k] = modelView.MulVec3(pos[k])
		}

		if s.BackfaceCull && IsBackFacing(view[0], view[1], view[2]) {
			stats.Culled++
			continue
		}

		intensity := 1.0
		if s.Shaded {
			normal := view[1].Sub(view[0]).Cross(view[2].Sub(view[0]))
			intensity = FaceIntensity(normal, s.LightDir, s.Ambient)
		}

		var clip [3]clipVertex
		for k := range 3 {
			clip[k] = clipVertex{
				Pos: proj.MulVec4(math3d.V4FromV3(view[k], 1)),
				UV:  uv[k],
			}
		}

		poly, clipped := clipNear(clip)
		if clipped {
			stats.Clipped++
		}

		var screen [4]ScreenVertex
		for k := range poly.N {
			screen[k] = toScreen(poly.V[k], w, h)
		}
		for k := 1; k+1 < poly.N; k++ {
			dst = append(dst, Triangle{
				V:         [3]ScreenVertex{screen[0], screen[k], screen[k+1]},
				Intensity: intensity,
			})
			stats.Emitted++
		}
	}

	return dst
}

// toScreen divides by w and maps normalized device coordinates to pixels,
// with y pointing down.
func toScreen(v clipVertex, width, height float64) ScreenVertex {
	invW := 1 / v.Pos.W
	return ScreenVertex{
		X:    (v.Pos.X*invW + 1) * 0.5 * width,
		Y:    (1 - v.Pos.Y*invW) * 0.5 * height,
		InvW: invW,
		UV:   v.UV,
	}
}

// DrawMesh prepares mesh and renders the result with s. tex may be nil, in
// which case textured modes use the fallback texture.
func (r *Rasterizer) DrawMesh(mesh MeshSource, cam *Camera, proj math3d.Mat4, s Settings, tex *Texture, base Color) {
	r.scratch = r.Prepare(r.scratch[:0], mesh, cam, proj, s)
	r.Render(r.scratch, s, tex, base)
}
