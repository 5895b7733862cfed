package render

// DepthFar is the value a cleared depth buffer holds at every pixel.
// Stored depths are 1 - 1/w, so anything in front of the camera is smaller.
const DepthFar = 1.0

// DepthBuffer holds the nearest depth seen at each pixel. Smaller is closer.
type DepthBuffer struct {
	Width  int
	Height int
	Depths []float64
}

// NewDepthBuffer creates a depth buffer cleared to DepthFar.
func NewDepthBuffer(width, height int) *DepthBuffer {
	db := &DepthBuffer{
		Width:  width,
		Height: height,
		Depths: make([]float64, width*height),
	}
	db.Clear(DepthFar)
	return db
}

// Clear sets every depth to z.
func (db *DepthBuffer) Clear(z float64) {
	if len(db.Depths) == 0 {
		return
	}
	db.Depths[0] = z
	for filled := 1; filled < len(db.Depths); filled *= 2 {
		copy(db.Depths[filled:], db.Depths[:filled])
	}
}

// TestAndSet stores z and reports true when z is strictly nearer than the
// stored depth. Equal depths lose, so redrawing a surface is a no-op.
func (db *DepthBuffer) TestAndSet(x, y int, z float64) bool {
	if x < 0 || x >= db.Width || y < 0 || y >= db.Height {
		return false
	}
	i := y*db.Width + x
	if z < db.Depths[i] {
		db.Depths[i] = z
		return true
	}
	return false
}
