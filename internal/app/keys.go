package app

import (
	"go.uber.org/zap"

	"github.com/taigrr/scanline/pkg/render"
)

var modeKeys = map[string]render.RenderMode{
	"1": render.ModeVertexPoints,
	"2": render.ModeWireframe,
	"3": render.ModeFilled,
	"4": render.ModeWireframeFilled,
	"5": render.ModeTextured,
	"6": render.ModeWireframeTextured,
}

// HandleKey applies the action bound to key and reports whether the viewer
// should quit. Keys are named the way ultraviolet names them: "a", "1",
// "up", "esc".
func (a *App) HandleKey(key string) (quit bool) {
	if mode, ok := modeKeys[key]; ok {
		a.Settings.Mode = mode
		a.log.Debug("render mode", zap.Stringer("mode", mode))
		return false
	}

	move := a.cfg.Camera.MoveSpeed
	turn := a.cfg.Camera.TurnRadians()

	switch key {
	case "q", "esc", "ctrl+c":
		return true
	case "c":
		a.Settings.BackfaceCull = !a.Settings.BackfaceCull
	case "l":
		a.Settings.Shaded = true
	case "u":
		a.Settings.Shaded = false
	case "f":
		a.Settings.FlipV = !a.Settings.FlipV
	case "t":
		a.Anim.Translate = !a.Anim.Translate
	case "r":
		a.Anim.Rotate = !a.Anim.Rotate
	case "g":
		a.Anim.Scale = !a.Anim.Scale
	case "x":
		a.Anim.Spin[0] = !a.Anim.Spin[0]
	case "y":
		a.Anim.Spin[1] = !a.Anim.Spin[1]
	case "z":
		a.Anim.Spin[2] = !a.Anim.Spin[2]
	case "w":
		a.Camera.MoveForward(move)
	case "s":
		a.Camera.MoveForward(-move)
	case "a":
		a.Camera.MoveRight(-move)
	case "d":
		a.Camera.MoveRight(move)
	case "up":
		a.Camera.Rotate(turn, 0)
	case "down":
		a.Camera.Rotate(-turn, 0)
	case "left":
		a.Camera.Rotate(0, turn)
	case "right":
		a.Camera.Rotate(0, -turn)
	case "backspace":
		a.animator.Reset(a.scene)
		a.cfg.Camera.Apply(a.Camera)
	}
	return false
}
