package render

import (
	"github.com/go-gl/mathgl/mgl32"

	"backdrop/internal/backdrop"
)

const (
	cameraFovY = 60.0 // degrees
	cameraNear = 0.1
	cameraFar  = 200.0
)

// Camera looks down -Z from (0, 0, Z). Rotating layers spin in front of it
// by the frame orientation.
type Camera struct {
	Z      float32
	Aspect float32
}

// NewCamera returns a camera at distance z for a framebuffer of fbW x fbH.
func NewCamera(z float64, fbW, fbH int) Camera {
	c := Camera{Z: float32(z)}
	c.Resize(fbW, fbH)
	return c
}

// Resize updates the aspect ratio. A degenerate size keeps it square.
func (c *Camera) Resize(fbW, fbH int) {
	if fbW <= 0 || fbH <= 0 {
		c.Aspect = 1
		return
	}
	c.Aspect = float32(fbW) / float32(fbH)
}

func (c Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(cameraFovY), c.Aspect, cameraNear, cameraFar)
}

func (c Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(mgl32.Vec3{0, 0, c.Z}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
}

// Model turns an orientation into the rotation applied to every rotating
// layer: yaw about Y, then pitch about X.
func Model(o backdrop.Orientation) mgl32.Mat4 {
	return mgl32.HomogRotate3DY(float32(o.Yaw)).Mul4(mgl32.HomogRotate3DX(float32(o.Pitch)))
}

// gridVertices builds the floor grid of the light-trail effect as line
// pairs: lane borders running along Z and rungs every gridRung units.
func gridVertices() []float32 {
	const gridRung = 5.0
	var v []float32
	y := float32(backdrop.TrailFloorY)
	near := float32(backdrop.TrailRespawnZ)
	far := float32(backdrop.TrailSpawnZ)
	halfLane := float32(backdrop.TrailLaneWidth) / 2

	for lane := backdrop.TrailLaneMin; lane <= backdrop.TrailLaneMax+1; lane++ {
		x := float32(lane)*float32(backdrop.TrailLaneWidth) - halfLane
		v = append(v, x, y, near, x, y, far)
	}
	left := float32(backdrop.TrailLaneMin)*float32(backdrop.TrailLaneWidth) - halfLane
	right := float32(backdrop.TrailLaneMax)*float32(backdrop.TrailLaneWidth) + halfLane
	for z := far; z <= near; z += gridRung {
		v = append(v, left, y, z, right, y, z)
	}
	return v
}
