package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/EnderRifter/StarSim-sub000/internal/geom"
)

const (
	minDistance = 1e-3
	maxPitch    = math.Pi/2 - 0.05
)

// Camera orbits a target point. Yaw turns about +Y, Pitch tilts towards it.
type Camera struct {
	Target   geom.Vector
	Yaw      float64
	Pitch    float64
	Distance float64
	FOV      float64 // vertical, radians
}

func NewCamera(distance float64) *Camera {
	if distance < minDistance {
		distance = minDistance
	}
	return &Camera{
		Target:   geom.Point(0, 0, 0),
		Yaw:      0.6,
		Pitch:    0.45,
		Distance: distance,
		FOV:      math.Pi / 4,
	}
}

// Eye is the camera position in world space.
func (c *Camera) Eye() mgl64.Vec3 {
	cp := math.Cos(c.Pitch)
	dir := mgl64.Vec3{cp * math.Sin(c.Yaw), math.Sin(c.Pitch), cp * math.Cos(c.Yaw)}
	return c.Target.Vec3().Add(dir.Mul(c.Distance))
}

// Matrix returns projection * view for the given aspect ratio.
func (c *Camera) Matrix(aspect float64) mgl64.Mat4 {
	proj := mgl64.Perspective(c.FOV, aspect, c.Distance*0.01, c.Distance*10)
	view := mgl64.LookAtV(c.Eye(), c.Target.Vec3(), mgl64.Vec3{0, 1, 0})
	return proj.Mul4(view)
}

// Project maps p onto a w by h pixel plane. ok is false when p is behind the
// camera or outside the depth range.
func (c *Camera) Project(p geom.Vector, w, h int) (x, y int, depth float64, ok bool) {
	if w <= 0 || h <= 0 {
		return 0, 0, 0, false
	}
	return project(c.Matrix(float64(w)/float64(h)), p, w, h)
}

func project(m mgl64.Mat4, p geom.Vector, w, h int) (int, int, float64, bool) {
	clip := m.Mul4x1(p.Vec3().Vec4(1))
	if clip.W() <= 1e-12 {
		return 0, 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	if ndc.Z() < -1 || ndc.Z() > 1 {
		return 0, 0, 0, false
	}
	x := (ndc.X() + 1) / 2 * float64(w)
	y := (1 - ndc.Y()) / 2 * float64(h)
	return int(math.Floor(x)), int(math.Floor(y)), ndc.Z(), true
}

func (c *Camera) Orbit(dyaw, dpitch float64) {
	c.Yaw = math.Mod(c.Yaw+dyaw, 2*math.Pi)
	c.Pitch = math.Max(-maxPitch, math.Min(maxPitch, c.Pitch+dpitch))
}

func (c *Camera) ZoomIn()  { c.Distance = math.Max(minDistance, c.Distance/1.2) }
func (c *Camera) ZoomOut() { c.Distance *= 1.2 }

// Fit places the camera so a sphere of the given radius about the target
// fills the view.
func (c *Camera) Fit(radius float64) {
	if radius <= 0 {
		return
	}
	c.Distance = math.Max(minDistance, 1.1*radius/math.Sin(c.FOV/2))
}
