package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"
	"go.uber.org/zap"

	"github.com/taigrr/scanline/internal/app"
	"github.com/taigrr/scanline/internal/config"
	"github.com/taigrr/scanline/internal/logger"
	"github.com/taigrr/scanline/pkg/render"
	"github.com/taigrr/scanline/pkg/scene"
)

func runTerminal(ctx context.Context, cfg *config.Config, sc *scene.Scene, path string, opts scene.Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	defer func() {
		term.ExitAltScreen()
		term.ShowCursor()
		if err := term.Shutdown(context.Background()); err != nil {
			logger.Warn("terminal shutdown", zap.Error(err))
		}
	}()

	term.EnterAltScreen()
	term.HideCursor()
	if err := term.Resize(width, height); err != nil {
		return fmt.Errorf("resize terminal: %w", err)
	}

	a, err := app.New(cfg, sc, logger.Named("app"))
	if err != nil {
		return err
	}
	if cfg.Render.FitTerminal {
		a.Resize(render.TargetSize(width, height))
	}
	presenter := render.NewTerminalPresenter(term)

	// Events are forwarded to the frame loop so that App is only touched
	// from one goroutine.
	keys := make(chan string, 32)
	sizes := make(chan uv.WindowSizeEvent, 1)
	go func() {
		for ev := range term.Events() {
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				sendLatest(sizes, ev)
			case uv.KeyPressEvent:
				select {
				case keys <- strings.ToLower(ev.String()):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	reload := watchScene(ctx, path)

	frameTime := time.Duration(harmonica.FPS(cfg.Render.FPS) * float64(time.Second))
	lastFrame := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-sizes:
			term.Erase()
			if err := term.Resize(ev.Width, ev.Height); err != nil {
				return fmt.Errorf("resize terminal: %w", err)
			}
			if cfg.Render.FitTerminal {
				a.Resize(render.TargetSize(ev.Width, ev.Height))
			}
		case <-reload:
			if next, ok := reloadScene(path, opts); ok {
				a.SetScene(next)
			}
		default:
		}

	drain:
		for {
			select {
			case key := <-keys:
				if a.HandleKey(key) {
					return nil
				}
			default:
				break drain
			}
		}

		now := time.Now()
		dt := min(now.Sub(lastFrame).Seconds(), 0.1)
		lastFrame = now

		fb := a.Frame(dt)
		presenter.Status = a.Status()
		if err := presenter.Present(fb); err != nil {
			return fmt.Errorf("present: %w", err)
		}
		a.EndFrame()

		if elapsed := time.Since(now); elapsed < frameTime {
			time.Sleep(frameTime - elapsed)
		}
	}
}

// sendLatest puts v in ch, replacing a value the receiver has not taken yet.
// ch must have a buffer of one and a single sender.
func sendLatest[T any](ch chan T, v T) {
	select {
	case <-ch:
	default:
	}
	ch <- v
}
