package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/taigrr/scanline/internal/app"
	"github.com/taigrr/scanline/internal/config"
	"github.com/taigrr/scanline/internal/logger"
	"github.com/taigrr/scanline/pkg/render"
	"github.com/taigrr/scanline/pkg/scene"
)

// runExport renders cfg.Output.Frames frames at a fixed time step and writes
// them as numbered PNG files. Rendering is sequential; encoding runs on up to
// cfg.Output.Workers goroutines.
func runExport(ctx context.Context, cfg *config.Config, sc *scene.Scene) error {
	out := cfg.Output
	if err := os.MkdirAll(out.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	a, err := app.New(cfg, sc, logger.Named("app"))
	if err != nil {
		return err
	}

	width := cfg.Render.Width * out.Scale
	height := cfg.Render.Height * out.Scale
	dt := 1 / float64(cfg.Render.FPS)

	bar := progressbar.Default(int64(out.Frames), "exporting")
	defer bar.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(out.Workers)

	for i := range out.Frames {
		if gctx.Err() != nil {
			break
		}

		fb := a.Frame(dt)
		img := fb.Scaled(width, height)
		stats := a.Stats()
		a.EndFrame()
		logger.Debug("frame rendered",
			zap.Int("frame", i),
			zap.Int("faces", stats.Faces),
			zap.Int("triangles", stats.Emitted),
		)

		path := filepath.Join(out.Dir, fmt.Sprintf("frame_%04d.png", i))
		g.Go(func() error {
			if err := render.SaveImagePNG(path, img); err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
			return bar.Add(1)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	logger.Info("export finished",
		zap.Int("frames", out.Frames),
		zap.String("dir", out.Dir),
		zap.Int("width", width),
		zap.Int("height", height),
	)
	return nil
}
