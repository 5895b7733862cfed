package config

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/taigrr/scanline/internal/logger"
	"github.com/taigrr/scanline/pkg/math3d"
	"github.com/taigrr/scanline/pkg/render"
	"github.com/taigrr/scanline/pkg/scene"
)

// Settings converts the render section to per-frame render settings.
func (r RenderConfig) Settings() (render.Settings, error) {
	s := render.DefaultSettings()

	mode, err := render.ParseRenderMode(r.Mode)
	if err != nil {
		return s, err
	}
	s.Mode = mode
	s.BackfaceCull = r.BackfaceCull
	s.Shaded = r.Shaded
	s.FlipV = r.FlipV
	s.LightDir = math3d.V3(r.Light[0], r.Light[1], r.Light[2])
	s.Ambient = r.Ambient
	s.PointSize = r.PointSize

	if s.WireColor, err = ParseColor(r.WireColor); err != nil {
		return s, fmt.Errorf("wire_color: %w", err)
	}
	if s.PointColor, err = ParseColor(r.PointColor); err != nil {
		return s, fmt.Errorf("point_color: %w", err)
	}
	return s, nil
}

// Colors returns the parsed background and grid colors.
func (r RenderConfig) Colors() (background, grid render.Color, err error) {
	if background, err = ParseColor(r.Background); err != nil {
		return background, grid, fmt.Errorf("background: %w", err)
	}
	if grid, err = ParseColor(r.GridColor); err != nil {
		return background, grid, fmt.Errorf("grid_color: %w", err)
	}
	return background, grid, nil
}

// PlaceholderTexture returns the texture for objects that have none. Nil
// means the magenta fallback.
func (r RenderConfig) PlaceholderTexture() (*render.Texture, error) {
	switch strings.ToLower(strings.TrimSpace(r.Placeholder)) {
	case "", "fallback":
		return nil, nil
	case "checker":
		return render.NewCheckerTexture(64, 64, 8, render.ColorWhite, render.RGB(96, 96, 96)), nil
	}
	return nil, fmt.Errorf("placeholder %q: want fallback or checker", r.Placeholder)
}

// ParseColor parses "#rrggbb", "rrggbb" or "r,g,b".
func ParseColor(s string) (render.Color, error) {
	s = strings.TrimSpace(s)
	if parts := strings.Split(s, ","); len(parts) == 3 {
		var rgb [3]uint8
		for i, p := range parts {
			v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
			if err != nil {
				return render.Color{}, fmt.Errorf("invalid color %q: %w", s, err)
			}
			rgb[i] = uint8(v)
		}
		return render.RGB(rgb[0], rgb[1], rgb[2]), nil
	}

	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return render.Color{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return render.Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return render.HexRGB(uint32(v)), nil
}

// Apply places and configures cam. The aspect ratio is left to the caller,
// which knows the render target size.
func (c CameraConfig) Apply(cam *render.Camera) {
	cam.SetPosition(math3d.V3(c.Position[0], c.Position[1], c.Position[2]))
	cam.SetRotation(degrees(c.Pitch), degrees(c.Yaw))
	cam.SetFOV(degrees(c.FOV))
	cam.SetClipPlanes(c.Near, c.Far)
}

// TurnRadians returns the turn step in radians.
func (c CameraConfig) TurnRadians() float64 {
	return degrees(c.TurnSpeed)
}

func degrees(d float64) float64 {
	return d * math.Pi / 180
}

// Animation converts the animation section to scene animation settings.
func (a AnimationConfig) Animation() scene.Animation {
	return scene.Animation{
		Translate:          a.Translate,
		Rotate:             a.Rotate,
		Scale:              a.Scale,
		Spin:               [3]bool{a.SpinX, a.SpinY, a.SpinZ},
		SpinRate:           a.SpinRate,
		TranslateAmplitude: a.TranslateAmplitude,
		ScaleAmplitude:     a.ScaleAmplitude,
		Frequency:          a.Frequency,
	}
}

// Validate reports every invalid setting in c.
func (c *Config) Validate() error {
	var errs []error
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		errs = append(errs, fmt.Errorf("render size %dx%d must be positive", c.Render.Width, c.Render.Height))
	}
	if c.Render.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps %d must be positive", c.Render.FPS))
	}
	if _, err := c.Render.Settings(); err != nil {
		errs = append(errs, err)
	}
	if _, _, err := c.Render.Colors(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Render.PlaceholderTexture(); err != nil {
		errs = append(errs, err)
	}
	if c.Render.Ambient < 0 || c.Render.Ambient > 1 {
		errs = append(errs, fmt.Errorf("ambient %v must be within [0, 1]", c.Render.Ambient))
	}
	if c.Render.Grid < 0 {
		errs = append(errs, fmt.Errorf("grid spacing %d must not be negative", c.Render.Grid))
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		errs = append(errs, fmt.Errorf("clip planes near=%v far=%v must satisfy 0 < near < far", c.Camera.Near, c.Camera.Far))
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		errs = append(errs, fmt.Errorf("fov %v must be within (0, 180)", c.Camera.FOV))
	}
	if c.Output.Frames < 0 {
		errs = append(errs, fmt.Errorf("frames %d must not be negative", c.Output.Frames))
	}
	if c.Output.Scale < 1 {
		errs = append(errs, fmt.Errorf("output scale %d must be at least 1", c.Output.Scale))
	}
	if c.Output.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers %d must be at least 1", c.Output.Workers))
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
