package scene

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// Animation selects which per-frame motions are applied to scene objects.
type Animation struct {
	Translate bool
	Rotate    bool
	Scale     bool
	Spin      [3]bool // Axes (X, Y, Z) that spin while Rotate is on

	SpinRate           float64 // Radians per second at full speed
	TranslateAmplitude float64 // World units of X oscillation
	ScaleAmplitude     float64 // Fraction of the base scale
	Frequency          float64 // Hz for the translate and scale cycles
}

// DefaultAnimation spins objects slowly about Y.
func DefaultAnimation() Animation {
	return Animation{
		Rotate:             true,
		Spin:               [3]bool{false, true, false},
		SpinRate:           0.6,
		TranslateAmplitude: 1,
		ScaleAmplitude:     0.25,
		Frequency:          0.5,
	}
}

// Animator advances object transforms once per frame. Spin speed eases in
// and out on a critically damped spring when Rotate is toggled.
type Animator struct {
	spring   harmonica.Spring
	speed    float64 // 0 when stopped, 1 at full spin rate
	speedVel float64

	translateT float64 // Seconds spent translating
	scaleT     float64 // Seconds spent scaling
}

// NewAnimator creates an animator stepped at fps frames per second.
func NewAnimator(fps int) *Animator {
	return &Animator{
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
	}
}

// Speed returns the current spin speed as a fraction of the full rate.
func (a *Animator) Speed() float64 {
	return a.speed
}

// Update advances every object in sc by dt seconds.
func (a *Animator) Update(sc *Scene, anim Animation, dt float64) {
	target := 0.0
	if anim.Rotate {
		target = 1.0
	}
	a.speed, a.speedVel = a.spring.Update(a.speed, a.speedVel, target)
	if !anim.Rotate && math.Abs(a.speed) < 1e-4 && math.Abs(a.speedVel) < 1e-4 {
		a.speed, a.speedVel = 0, 0
	}

	if anim.Translate {
		a.translateT += dt
	}
	if anim.Scale {
		a.scaleT += dt
	}

	step := anim.SpinRate * a.speed * dt
	omega := 2 * math.Pi * anim.Frequency
	offset := anim.TranslateAmplitude * math.Sin(omega*a.translateT)
	pulse := 1 + anim.ScaleAmplitude*math.Sin(omega*a.scaleT)

	for _, obj := range sc.Objects {
		m := obj.Mesh
		if anim.Spin[0] {
			m.Rotation.X += step
		}
		if anim.Spin[1] {
			m.Rotation.Y += step
		}
		if anim.Spin[2] {
			m.Rotation.Z += step
		}
		m.Translation.X = obj.BaseTranslation.X + offset
		m.Scale = obj.BaseScale.Scale(pulse)
	}
}

// Reset returns every object to its loaded placement and stops all motion.
func (a *Animator) Reset(sc *Scene) {
	a.speed, a.speedVel = 0, 0
	a.translateT, a.scaleT = 0, 0
	for _, obj := range sc.Objects {
		obj.ResetTransform()
	}
}
