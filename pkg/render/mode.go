package render

import (
	"fmt"
	"strings"

	"github.com/taigrr/scanline/pkg/math3d"
)

// RenderMode selects which rasterizer operations run for each triangle.
type RenderMode int

const (
	ModeVertexPoints RenderMode = iota
	ModeWireframe
	ModeFilled
	ModeWireframeFilled
	ModeTextured
	ModeWireframeTextured
)

var modeNames = [...]string{
	ModeVertexPoints:      "points",
	ModeWireframe:         "wireframe",
	ModeFilled:            "filled",
	ModeWireframeFilled:   "wireframe+filled",
	ModeTextured:          "textured",
	ModeWireframeTextured: "wireframe+textured",
}

// String returns the configuration name of the mode.
func (m RenderMode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("RenderMode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseRenderMode parses a mode name as produced by String. Matching is
// case-insensitive.
func ParseRenderMode(s string) (RenderMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range modeNames {
		if s == name {
			return RenderMode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown render mode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m RenderMode) MarshalText() ([]byte, error) {
	if m < 0 || int(m) >= len(modeNames) {
		return nil, fmt.Errorf("invalid render mode %d", int(m))
	}
	return []byte(modeNames[m]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *RenderMode) UnmarshalText(text []byte) error {
	mode, err := ParseRenderMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// Fills reports whether the mode draws solid color triangles.
func (m RenderMode) Fills() bool {
	return m == ModeFilled || m == ModeWireframeFilled
}

// Textures reports whether the mode draws textured triangles.
func (m RenderMode) Textures() bool {
	return m == ModeTextured || m == ModeWireframeTextured
}

// Wireframe reports whether the mode draws triangle edges.
func (m RenderMode) Wireframe() bool {
	return m == ModeWireframe || m == ModeWireframeFilled || m == ModeWireframeTextured
}

// Settings is the per-frame render configuration. It is passed by value to
// every render call.
type Settings struct {
	Mode         RenderMode
	BackfaceCull bool
	Shaded       bool
	FlipV        bool        // Address v = 0 at the top of textures
	LightDir     math3d.Vec3 // View-space direction the light travels
	Ambient      float64     // Intensity of faces turned away from the light
	WireColor    Color
	PointColor   Color
	PointSize    int
}

// DefaultSettings returns textured rendering with culling and shading on and
// a light shining straight into the screen.
func DefaultSettings() Settings {
	return Settings{
		Mode:         ModeTextured,
		BackfaceCull: true,
		Shaded:       true,
		LightDir:     math3d.V3(0, 0, -1),
		Ambient:      0.2,
		WireColor:    ColorWhite,
		PointColor:   ColorRed,
		PointSize:    4,
	}
}
