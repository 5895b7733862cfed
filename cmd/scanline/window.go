//go:build window

package main

import (
	"context"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/taigrr/scanline/internal/app"
	"github.com/taigrr/scanline/internal/config"
	"github.com/taigrr/scanline/internal/logger"
	"github.com/taigrr/scanline/pkg/scene"
)

var windowKeys = map[ebiten.Key]string{
	ebiten.KeyDigit1: "1", ebiten.KeyDigit2: "2", ebiten.KeyDigit3: "3",
	ebiten.KeyDigit4: "4", ebiten.KeyDigit5: "5", ebiten.KeyDigit6: "6",
	ebiten.KeyA: "a", ebiten.KeyC: "c", ebiten.KeyD: "d", ebiten.KeyF: "f",
	ebiten.KeyG: "g", ebiten.KeyL: "l", ebiten.KeyQ: "q", ebiten.KeyR: "r",
	ebiten.KeyS: "s", ebiten.KeyT: "t", ebiten.KeyU: "u", ebiten.KeyW: "w",
	ebiten.KeyX: "x", ebiten.KeyY: "y", ebiten.KeyZ: "z",
	ebiten.KeyArrowUp: "up", ebiten.KeyArrowDown: "down",
	ebiten.KeyArrowLeft: "left", ebiten.KeyArrowRight: "right",
	ebiten.KeyEscape: "esc", ebiten.KeyBackspace: "backspace",
}

// runWindow shows the render target in a desktop window scaled by the
// output scale. It blocks until the window closes.
func runWindow(ctx context.Context, cfg *config.Config, sc *scene.Scene, path string, opts scene.Options) error {
	a, err := app.New(cfg, sc, logger.Named("app"))
	if err != nil {
		return err
	}

	g := &windowGame{
		ctx:    ctx,
		app:    a,
		path:   path,
		opts:   opts,
		reload: watchScene(ctx, path),
		dt:     1 / float64(cfg.Render.FPS),
	}

	ebiten.SetWindowTitle("scanline")
	ebiten.SetWindowSize(cfg.Render.Width*cfg.Output.Scale, cfg.Render.Height*cfg.Output.Scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.Render.FPS)
	return ebiten.RunGame(g)
}

type windowGame struct {
	ctx    context.Context
	app    *app.App
	path   string
	opts   scene.Options
	reload <-chan struct{}
	dt     float64

	img       *ebiten.Image
	keys      []ebiten.Key
	lastTitle time.Time
}

func (g *windowGame) Update() error {
	select {
	case <-g.ctx.Done():
		return ebiten.Termination
	case <-g.reload:
		if next, ok := reloadScene(g.path, g.opts); ok {
			g.app.SetScene(next)
		}
	default:
	}

	g.keys = inpututil.AppendJustPressedKeys(g.keys[:0])
	for _, k := range g.keys {
		if name, ok := windowKeys[k]; ok && g.app.HandleKey(name) {
			return ebiten.Termination
		}
	}

	// Frames are rendered at the tick rate; Draw only presents the latest.
	fb := g.app.Frame(g.dt)
	if g.img == nil || g.img.Bounds().Dx() != fb.Width || g.img.Bounds().Dy() != fb.Height {
		if g.img != nil {
			g.img.Deallocate()
		}
		g.img = ebiten.NewImage(fb.Width, fb.Height)
	}
	g.img.WritePixels(fb.ToImage().Pix)
	g.app.EndFrame()

	if time.Since(g.lastTitle) > time.Second {
		ebiten.SetWindowTitle("scanline -" + g.app.Status())
		g.lastTitle = time.Now()
	}
	return nil
}

func (g *windowGame) Draw(screen *ebiten.Image) {
	if g.img == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	iw, ih := g.img.Bounds().Dx(), g.img.Bounds().Dy()
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	op.GeoM.Scale(float64(sw)/float64(iw), float64(sh)/float64(ih))
	screen.DrawImage(g.img, op)
}

func (g *windowGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}
