package render

import "github.com/taigrr/scanline/pkg/math3d"

// clipVertex is a vertex in homogeneous clip space with its texture
// coordinate.
type clipVertex struct {
	Pos math3d.Vec4
	UV  math3d.Vec2
}

// nearDistance is the signed distance to the near plane in clip space.
// With a perspective matrix the near plane is z = -w, so points in front of
// it have z + w >= 0.
func nearDistance(v clipVertex) float64 {
	return v.Pos.Z + v.Pos.W
}

// clipPolygon is the polygon produced by clipping one triangle against one
// plane: at most four vertices.
type clipPolygon struct {
	V [4]clipVertex
	N int
}

// clipNear clips a triangle against the near plane with Sutherland-Hodgman.
// The result has 0, 3 or 4 vertices in the original winding order; clipped
// reports whether any vertex was behind the plane.
func clipNear(tri [3]clipVertex) (poly clipPolygon, clipped bool) {
	var out clipPolygon
	var d [3]float64
	inside := 0
	for i := range 3 {
		d[i] = nearDistance(tri[i])
		if d[i] >= 0 {
			inside++
		}
	}
	if inside == 3 {
		out.V[0], out.V[1], out.V[2] = tri[0], tri[1], tri[2]
		out.N = 3
		return out, false
	}
	if inside == 0 {
		return out, true
	}

	for i := range 3 {
		j := (i + 1) % 3
		a, b := tri[i], tri[j]
		da, db := d[i], d[j]
		if da >= 0 {
			out.V[out.N] = a
			out.N++
		}
		if (da >= 0) != (db >= 0) {
			t := da / (da - db)
			out.V[out.N] = clipVertex{
				Pos: a.Pos.Lerp(b.Pos, t),
				UV:  a.UV.Lerp(b.UV, t),
			}
			out.N++
		}
	}
	return out, true
}
