//go:build !window

package main

import (
	"context"
	"errors"

	"github.com/taigrr/scanline/internal/config"
	"github.com/taigrr/scanline/pkg/scene"
)

func runWindow(context.Context, *config.Config, *scene.Scene, string, scene.Options) error {
	return errors.New("window viewer not available: rebuild with -tags window")
}
