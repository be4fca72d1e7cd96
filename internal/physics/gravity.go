package physics

import (
	"math"

	"github.com/EnderRifter/StarSim-sub000/internal/geom"
)

// Gravity is the softened Newtonian force law shared by the exact and tree
// based drivers.
type Gravity struct {
	G         float64
	Softening float64
}

func NewGravity(g, softening float64) Gravity {
	return Gravity{G: g, Softening: softening}
}

// Force returns the pull on target from a point mass srcMass at srcPos.
//
// The magnitude is softened, G*m*M/(d²+ε²), but the direction is normalized
// by the raw distance d. Coincident points (d == 0) have no direction and
// contribute nothing.
func (g Gravity) Force(srcMass float64, srcPos geom.Vector, target *Body) geom.Vector {
	delta := srcPos.Sub(target.Position)
	d2 := delta.Len3Sq()
	if d2 == 0 {
		return geom.Zero
	}
	d := math.Sqrt(d2)
	f := g.G * srcMass * target.Mass / (d2 + g.Softening*g.Softening)
	return geom.Direction(delta.X(), delta.Y(), delta.Z()).Scale(f / d)
}

// Between is the force on a exerted by b.
func (g Gravity) Between(a, b *Body) geom.Vector {
	return g.Force(b.Mass, b.Position, a)
}

// Potential is the softened pair potential energy of a and b.
func (g Gravity) Potential(a, b *Body) float64 {
	r := math.Sqrt(a.Position.Dist3Sq(b.Position) + g.Softening*g.Softening)
	if r == 0 {
		return 0
	}
	return -g.G * a.Mass * b.Mass / r
}
