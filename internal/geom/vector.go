// Package geom provides the double-precision vector used by every physics and
// geometry component.
//
// A [Vector] carries four components. The first three are spatial; the fourth
// (W) is a homogeneous coordinate that the physics never reads but projection
// code does. Points are built with W=1 and directions with W=0, so the usual
// affine rules fall out of plain componentwise arithmetic:
//
//	p := geom.Point(1, 2, 3)       // W=1
//	d := geom.Direction(0, 1, 0)   // W=0
//	q := p.Add(d.Scale(2))         // still a point
//
// Length and distance operations ignore W.
package geom

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vector is an immutable-by-value 4-component vector.
type Vector mgl64.Vec4

// Zero is the zero direction.
var Zero = Vector{}

func Point(x, y, z float64) Vector     { return Vector{x, y, z, 1} }
func Direction(x, y, z float64) Vector { return Vector{x, y, z, 0} }

// FromVec3 lifts an mgl64.Vec3 with the given homogeneous component.
func FromVec3(v mgl64.Vec3, w float64) Vector { return Vector(v.Vec4(w)) }

func (v Vector) X() float64 { return v[0] }
func (v Vector) Y() float64 { return v[1] }
func (v Vector) Z() float64 { return v[2] }
func (v Vector) W() float64 { return v[3] }

// Component returns the i-th spatial component (0..2).
func (v Vector) Component(i int) float64 { return v[i] }

func (v Vector) Add(o Vector) Vector { return Vector(mgl64.Vec4(v).Add(mgl64.Vec4(o))) }
func (v Vector) Sub(o Vector) Vector { return Vector(mgl64.Vec4(v).Sub(mgl64.Vec4(o))) }
func (v Vector) Scale(s float64) Vector {
	return Vector(mgl64.Vec4(v).Mul(s))
}

// Div divides every component by s. Division by zero follows IEEE-754.
func (v Vector) Div(s float64) Vector {
	return Vector{v[0] / s, v[1] / s, v[2] / s, v[3] / s}
}

func (v Vector) Neg() Vector { return Vector{-v[0], -v[1], -v[2], -v[3]} }

func (v Vector) Dot3(o Vector) float64 { return v.Vec3().Dot(o.Vec3()) }
func (v Vector) Len3Sq() float64       { return v.Dot3(v) }
func (v Vector) Len3() float64         { return v.Vec3().Len() }

func (v Vector) Dist3Sq(o Vector) float64 { return v.Sub(o).Len3Sq() }
func (v Vector) Dist3(o Vector) float64   { return math.Sqrt(v.Dist3Sq(o)) }

// Cross3 is the cross product of the spatial parts; the result is a direction.
func (v Vector) Cross3(o Vector) Vector { return FromVec3(v.Vec3().Cross(o.Vec3()), 0) }

// Vec3 drops the homogeneous component.
func (v Vector) Vec3() mgl64.Vec3 { return mgl64.Vec4(v).Vec3() }
func (v Vector) Vec4() mgl64.Vec4 { return mgl64.Vec4(v) }

// InCube reports whether v lies in the closed axis-aligned cube with the
// given center and half side. NaN components are outside.
func (v Vector) InCube(center Vector, half float64) bool {
	for i := 0; i < 3; i++ {
		if !(math.Abs(v[i]-center[i]) <= half) {
			return false
		}
	}
	return true
}

// IsFinite reports whether no component is NaN or infinite.
func (v Vector) IsFinite() bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// ApproxEqual3 compares the spatial components with an absolute tolerance.
func (v Vector) ApproxEqual3(o Vector, tol float64) bool {
	for i := 0; i < 3; i++ {
		if math.Abs(v[i]-o[i]) > tol {
			return false
		}
	}
	return true
}

func (v Vector) String() string {
	return fmt.Sprintf("(%.6g, %.6g, %.6g, %.6g)", v[0], v[1], v[2], v[3])
}
