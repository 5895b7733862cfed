package render

// Render draws tris according to s.Mode. Filled and textured modes are depth
// tested. Wireframe and point overlays are not: they are debug visuals and
// always land on top of the object's fill, so they are drawn in a second
// pass.
//
// base is the fill color for the filled modes. tex is used by the textured
// modes; nil selects the fallback texture.
func (r *Rasterizer) Render(tris []Triangle, s Settings, tex *Texture, base Color) {
	mode := s.Mode

	switch {
	case mode.Fills():
		for i := range tris {
			r.FillTriangle(tris[i], base)
		}
	case mode.Textures():
		for i := range tris {
			r.FillTexturedTriangle(tris[i], tex, s.FlipV)
		}
	}

	switch {
	case mode.Wireframe():
		for i := range tris {
			r.DrawTriangleWireframe(tris[i], s.WireColor)
		}
	case mode == ModeVertexPoints:
		for i := range tris {
			r.DrawTrianglePoints(tris[i], s.PointSize, s.PointColor)
		}
	}
}
