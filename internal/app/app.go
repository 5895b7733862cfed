// Package app composes frames from a scene and handles the key bindings
// shared by the terminal viewer, the window viewer and the exporter.
package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/taigrr/scanline/internal/config"
	"github.com/taigrr/scanline/pkg/render"
	"github.com/taigrr/scanline/pkg/scene"
)

// App owns the render target, camera and animation state for one viewer.
// It is not safe for concurrent use: front ends call it from one goroutine.
type App struct {
	Settings render.Settings
	Anim     scene.Animation
	Camera   *render.Camera

	cfg        *config.Config
	scene      *scene.Scene
	animator   *scene.Animator
	target     *render.Rasterizer
	background render.Color
	gridColor  render.Color
	log        *zap.Logger

	frames int
	fps    float64 // Smoothed frame rate
}

// New creates an App rendering sc at the configured size.
func New(cfg *config.Config, sc *scene.Scene, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	settings, err := cfg.Render.Settings()
	if err != nil {
		return nil, fmt.Errorf("render settings: %w", err)
	}
	bg, grid, err := cfg.Render.Colors()
	if err != nil {
		return nil, fmt.Errorf("render colors: %w", err)
	}

	a := &App{
		Settings:   settings,
		Anim:       cfg.Animation.Animation(),
		Camera:     render.NewCamera(),
		cfg:        cfg,
		scene:      sc,
		animator:   scene.NewAnimator(cfg.Render.FPS),
		background: bg,
		gridColor:  grid,
		log:        log,
	}
	cfg.Camera.Apply(a.Camera)
	a.Resize(cfg.Render.Width, cfg.Render.Height)
	return a, nil
}

// Resize replaces the render target. The camera aspect ratio follows the
// target size.
func (a *App) Resize(width, height int) {
	width, height = max(width, 1), max(height, 1)
	if a.target != nil && a.target.Width() == width && a.target.Height() == height {
		return
	}
	a.target = render.NewTarget(width, height)
	a.target.Clear(a.background)
	a.Camera.SetAspectRatio(float64(width) / float64(height))
	a.log.Debug("render target resized", zap.Int("width", width), zap.Int("height", height))
}

// Target returns the current render target.
func (a *App) Target() *render.Rasterizer {
	return a.target
}

// Scene returns the scene being drawn.
func (a *App) Scene() *scene.Scene {
	return a.scene
}

// SetScene swaps in a reloaded scene and restarts the animation.
func (a *App) SetScene(sc *scene.Scene) {
	a.scene = sc
	a.animator = scene.NewAnimator(a.cfg.Render.FPS)
	a.log.Info("scene reloaded", zap.Int("objects", len(sc.Objects)), zap.Int("triangles", sc.TriangleCount()))
}

// Frame advances the animation by dt seconds and draws the scene over the
// reference grid. The returned framebuffer holds the finished frame until
// EndFrame is called.
func (a *App) Frame(dt float64) *render.Framebuffer {
	a.animator.Update(a.scene, a.Anim, dt)
	a.trackFPS(dt)

	fb := a.target.Framebuffer()
	fb.DrawGrid(a.cfg.Render.Grid, a.gridColor)

	a.target.ResetStats()
	proj := a.Camera.ProjectionMatrix()
	for _, obj := range a.scene.Objects {
		a.target.DrawMesh(obj.Mesh, a.Camera, proj, a.Settings, obj.Texture, obj.Color)
	}
	a.frames++
	return fb
}

// EndFrame clears the color buffer to the background and the depth buffer to
// far, ready for the next Frame. Call it after the frame was presented.
func (a *App) EndFrame() {
	a.target.Clear(a.background)
}

// Stats returns the preparation statistics of the last frame.
func (a *App) Stats() render.PrepareStats {
	return a.target.Stats
}

// Frames returns the number of frames drawn.
func (a *App) Frames() int {
	return a.frames
}

func (a *App) trackFPS(dt float64) {
	if dt <= 0 {
		return
	}
	const smoothing = 0.1
	inst := 1 / dt
	if a.fps == 0 {
		a.fps = inst
		return
	}
	a.fps += (inst - a.fps) * smoothing
}

// Status returns a one-line summary for the viewers' status bar.
func (a *App) Status() string {
	st := a.target.Stats
	return fmt.Sprintf(" %s | cull:%s shade:%s flip:%s spin:%.0f%% | %d/%d tris | %.0f fps ",
		a.Settings.Mode, onOff(a.Settings.BackfaceCull), onOff(a.Settings.Shaded), onOff(a.Settings.FlipV),
		a.animator.Speed()*100, st.Emitted, st.Faces, a.fps)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
