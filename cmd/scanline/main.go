// scanline - software 3D rasterizer
// Renders OBJ and glTF models, or scenes of them, in the terminal, in a
// desktop window, or to a sequence of PNG files.
//
// Controls:
//
//	1-6         - Render mode: points, wireframe, filled, wireframe+filled,
//	              textured, wireframe+textured
//	C           - Toggle backface culling
//	L/U         - Shaded / unshaded
//	T/R/G       - Toggle translate / rotate / scale animation
//	X/Y/Z       - Toggle spin about an axis
//	F           - Flip texture V
//	W/A/S/D     - Move camera
//	Arrows      - Turn camera
//	Backspace   - Reset camera and animation
//	Q/Esc       - Quit
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/taigrr/scanline/internal/config"
	"github.com/taigrr/scanline/internal/logger"
	"github.com/taigrr/scanline/pkg/scene"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "scanline - software 3D rasterizer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: scanline [options] <scene.json|scene.yaml|model.obj|model.glb>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	config.ParseFlags()

	if config.SaveRequested() {
		if err := saveConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	args := config.Args()
	if len(args) < 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// saveConfig writes the effective configuration (defaults < file < flags)
// to -write-config, or to the user config directory for -save-config.
func saveConfig() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if path := config.WriteConfigPath(); path != "" {
		if err := cfg.SaveTo(path); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", path)
		return nil
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", config.UserConfigPath())
	return nil
}

func run(path string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// The terminal viewer owns the screen, so logs only go to the file there.
	interactive := !config.Headless() && !config.Window()
	fileCfg := logger.FileConfig{}
	if cfg.Logging.LogFile != "" {
		fileCfg = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	if err := logger.InitWithFileConfig(cfg.Logging.Level, fileCfg, !interactive); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	placeholder, err := cfg.Render.PlaceholderTexture()
	if err != nil {
		return err
	}
	opts := scene.Options{
		AssetsDir:   config.AssetsDir(),
		Placeholder: placeholder,
		Logger:      logger.Named("scene"),
	}
	sc, err := scene.Load(path, opts)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	logger.Info("scene loaded",
		zap.String("path", path),
		zap.Int("objects", len(sc.Objects)),
		zap.Int("triangles", sc.TriangleCount()),
	)

	switch {
	case config.Headless():
		err = runExport(ctx, cfg, sc)
	case config.Window():
		err = runWindow(ctx, cfg, sc, path, opts)
	default:
		err = runTerminal(ctx, cfg, sc, path, opts)
	}
	if err != nil {
		logger.Error("viewer stopped", zap.Error(err))
	}
	return err
}

// reloadScene reloads path, keeping the current scene on failure.
func reloadScene(path string, opts scene.Options) (*scene.Scene, bool) {
	sc, err := scene.Load(path, opts)
	if err != nil {
		logger.Warn("scene reload failed", zap.String("path", path), zap.Error(err))
		return nil, false
	}
	return sc, true
}

// watchScene starts a watcher that sends on the returned channel when the
// scene file changes. Watch errors are logged and disable hot reload.
func watchScene(ctx context.Context, path string) <-chan struct{} {
	changed := make(chan struct{}, 1)
	go func() {
		err := scene.Watch(ctx, path, logger.Named("watch"), func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
		if err != nil {
			logger.Warn("hot reload disabled", zap.Error(err))
		}
	}()
	return changed
}
