// Package models holds triangle meshes and the loaders that produce them.
package models

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/scanline/pkg/math3d"
)

var (
	// ErrNoTriangles is returned when a model file contains no usable faces.
	ErrNoTriangles = errors.New("model has no triangles")
	// ErrUnsupportedFormat is returned for model files with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported model format")
)

// Mesh is an indexed triangle mesh with an object transform.
//
// Positions and texture coordinates are indexed separately, as in OBJ files.
// A face whose UV index is -1 has no texture coordinate at that corner.
type Mesh struct {
	Name     string
	Vertices []math3d.Vec3
	UVs      []math3d.Vec2
	Faces    []Face

	// Object transform, applied as translation * rotation * scale with the
	// rotation in Z*Y*X order.
	Translation math3d.Vec3
	Rotation    math3d.Vec3 // Euler angles in radians
	Scale       math3d.Vec3

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// Face is a triangle referencing three positions and three texture coordinates.
type Face struct {
	V  [3]int // Indices into Mesh.Vertices
	UV [3]int // Indices into Mesh.UVs, -1 for none
}

// NewMesh creates an empty mesh with an identity transform.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:  name,
		Scale: math3d.V3(1, 1, 1),
	}
}

// AddTriangle appends a face without texture coordinates and grows the
// bounding box to cover its vertices. Indices outside Vertices are left for
// Validate to report.
func (m *Mesh) AddTriangle(a, b, c int) {
	m.Faces = append(m.Faces, Face{V: [3]int{a, b, c}, UV: [3]int{-1, -1, -1}})
	first := len(m.Faces) == 1
	for _, i := range [3]int{a, b, c} {
		if i < 0 || i >= len(m.Vertices) {
			continue
		}
		v := m.Vertices[i]
		if first {
			m.BoundsMin, m.BoundsMax = v, v
			first = false
			continue
		}
		m.BoundsMin = m.BoundsMin.Min(v)
		m.BoundsMax = m.BoundsMax.Max(v)
	}
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		m.BoundsMin, m.BoundsMax = math3d.Vec3{}, math3d.Vec3{}
		return
	}

	m.BoundsMin = m.Vertices[0]
	m.BoundsMax = m.Vertices[0]

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v)
		m.BoundsMax = m.BoundsMax.Max(v)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// Triangle returns the positions and texture coordinates of face i.
// Missing texture coordinates are returned as zero.
func (m *Mesh) Triangle(i int) (pos [3]math3d.Vec3, uv [3]math3d.Vec2) {
	f := m.Faces[i]
	for k := range 3 {
		pos[k] = m.Vertices[f.V[k]]
		if t := f.UV[k]; t >= 0 && t < len(m.UVs) {
			uv[k] = m.UVs[t]
		}
	}
	return pos, uv
}

// TransformState returns the object transform.
func (m *Mesh) TransformState() (translation, rotation, scale math3d.Vec3) {
	return m.Translation, m.Rotation, m.Scale
}

// Bounds returns the model-space bounding box.
func (m *Mesh) Bounds() (lo, hi math3d.Vec3) {
	return m.BoundsMin, m.BoundsMax
}

// Validate checks that the mesh has faces and that every index is in range.
func (m *Mesh) Validate() error {
	if len(m.Faces) == 0 {
		return ErrNoTriangles
	}
	for i, f := range m.Faces {
		for k := range 3 {
			if f.V[k] < 0 || f.V[k] >= len(m.Vertices) {
				return fmt.Errorf("face %d: vertex index %d out of range [0,%d)", i, f.V[k], len(m.Vertices))
			}
			if f.UV[k] >= len(m.UVs) {
				return fmt.Errorf("face %d: uv index %d out of range [0,%d)", i, f.UV[k], len(m.UVs))
			}
		}
	}
	return nil
}

// Transform applies a matrix to every vertex in place and recomputes bounds.
// The object transform is left untouched.
func (m *Mesh) Transform(mat math3d.Mat4) {
	for i := range m.Vertices {
		m.Vertices[i] = mat.MulVec3(m.Vertices[i])
	}
	m.CalculateBounds()
}

// Normalize recenters the vertices on the origin and scales them so the
// largest bounding box dimension equals size.
func (m *Mesh) Normalize(size float64) {
	m.CalculateBounds()
	dims := m.Size()
	maxDim := math.Max(dims.X, math.Max(dims.Y, dims.Z))
	if maxDim <= 0 {
		return
	}
	s := size / maxDim
	m.Transform(math3d.Scale(math3d.V3(s, s, s)).Mul(math3d.Translate(m.Center().Negate())))
}

// Clone creates a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	clone := *m
	clone.Vertices = append([]math3d.Vec3(nil), m.Vertices...)
	clone.UVs = append([]math3d.Vec2(nil), m.UVs...)
	clone.Faces = append([]Face(nil), m.Faces...)
	return &clone
}
