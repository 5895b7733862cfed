package render

import (
	"math"

	"github.com/taigrr/scanline/pkg/math3d"
)

// Camera is a first-person camera described by a position and yaw/pitch
// angles. At zero yaw and pitch it looks down -Z.
type Camera struct {
	Position math3d.Vec3

	Pitch float64 // Rotation around X axis (look up/down)
	Yaw   float64 // Rotation around Y axis (look left/right)

	FOV         float64 // Vertical field of view in radians
	AspectRatio float64 // Width / Height
	Near        float64
	Far         float64

	viewMatrix math3d.Mat4
	projMatrix math3d.Mat4
	viewDirty  bool
	projDirty  bool
}

// NewCamera creates a camera five units back from the origin with a 90
// degree field of view.
func NewCamera() *Camera {
	return &Camera{
		Position:    math3d.V3(0, 0, 5),
		FOV:         math.Pi / 2,
		AspectRatio: 4.0 / 3.0,
		Near:        0.1,
		Far:         100,
		viewDirty:   true,
		projDirty:   true,
	}
}

// SetPosition sets the camera position.
func (c *Camera) SetPosition(pos math3d.Vec3) {
	c.Position = pos
	c.viewDirty = true
}

// SetRotation sets pitch and yaw in radians.
func (c *Camera) SetRotation(pitch, yaw float64) {
	c.Pitch = pitch
	c.Yaw = yaw
	c.clampPitch()
	c.viewDirty = true
}

// SetFOV sets the vertical field of view in radians.
func (c *Camera) SetFOV(fov float64) {
	c.FOV = fov
	c.projDirty = true
}

// SetAspectRatio sets the aspect ratio.
func (c *Camera) SetAspectRatio(aspect float64) {
	c.AspectRatio = aspect
	c.projDirty = true
}

// SetClipPlanes sets the near and far clipping planes.
func (c *Camera) SetClipPlanes(near, far float64) {
	c.Near = near
	c.Far = far
	c.projDirty = true
}

// Forward returns the forward direction vector.
func (c *Camera) Forward() math3d.Vec3 {
	return math3d.V3(
		-math.Sin(c.Yaw)*math.Cos(c.Pitch),
		math.Sin(c.Pitch),
		-math.Cos(c.Yaw)*math.Cos(c.Pitch),
	)
}

// Right returns the right direction vector.
func (c *Camera) Right() math3d.Vec3 {
	return math3d.V3(
		math.Cos(c.Yaw),
		0,
		-math.Sin(c.Yaw),
	)
}

// ViewMatrix returns the world-to-view matrix
// RotateX(-pitch) * RotateY(-yaw) * Translate(-position).
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		rot := math3d.RotateX(-c.Pitch).Mul(math3d.RotateY(-c.Yaw))
		c.viewMatrix = rot.Mul(math3d.Translate(c.Position.Negate()))
		c.viewDirty = false
	}
	return c.viewMatrix
}

// ProjectionMatrix returns the perspective projection matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty {
		c.projMatrix = math3d.Perspective(c.FOV, c.AspectRatio, c.Near, c.Far)
		c.projDirty = false
	}
	return c.projMatrix
}

// MoveForward moves the camera forward (or backward if negative).
func (c *Camera) MoveForward(distance float64) {
	c.Position = c.Position.Add(c.Forward().Scale(distance))
	c.viewDirty = true
}

// MoveRight moves the camera right (or left if negative).
func (c *Camera) MoveRight(distance float64) {
	c.Position = c.Position.Add(c.Right().Scale(distance))
	c.viewDirty = true
}

// MoveUp moves the camera along world up.
func (c *Camera) MoveUp(distance float64) {
	c.Position = c.Position.Add(math3d.Up().Scale(distance))
	c.viewDirty = true
}

// Rotate turns the camera by the given angles in radians.
func (c *Camera) Rotate(deltaPitch, deltaYaw float64) {
	c.Pitch += deltaPitch
	c.Yaw += deltaYaw
	c.clampPitch()
	c.viewDirty = true
}

func (c *Camera) clampPitch() {
	const maxPitch = math.Pi/2 - 0.01
	c.Pitch = math.Max(-maxPitch, math.Min(maxPitch, c.Pitch))
}

// LookAt makes the camera look at a target point.
func (c *Camera) LookAt(target math3d.Vec3) {
	dir := target.Sub(c.Position).Normalize()

	c.Pitch = math.Asin(dir.Y)
	c.Yaw = math.Atan2(-dir.X, -dir.Z)
	c.clampPitch()

	c.viewDirty = true
}
