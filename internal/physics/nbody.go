package physics

import (
	"github.com/EnderRifter/StarSim-sub000/internal/geom"
)

// Energy returns total kinetic plus softened potential energy.
func Energy(g Gravity, bodies []*Body) float64 {
	return KineticEnergy(bodies) + PotentialEnergy(g, bodies)
}

func KineticEnergy(bodies []*Body) float64 {
	ke := 0.0
	for _, b := range bodies {
		ke += 0.5 * b.Mass * b.Velocity.Len3Sq()
	}
	return ke
}

func PotentialEnergy(g Gravity, bodies []*Body) float64 {
	pe := 0.0
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			pe += g.Potential(bodies[i], bodies[j])
		}
	}
	return pe
}

// Momentum is the total linear momentum.
func Momentum(bodies []*Body) geom.Vector {
	p := geom.Zero
	for _, b := range bodies {
		p = p.Add(b.Velocity.Scale(b.Mass))
	}
	return p
}

func AngularMomentum(bodies []*Body) geom.Vector {
	l := geom.Zero
	for _, b := range bodies {
		l = l.Add(b.Position.Cross3(b.Velocity.Scale(b.Mass)))
	}
	return l
}

// CenterOfMass returns the mass-weighted centroid and total mass. An empty
// or massless set yields the origin.
func CenterOfMass(bodies []*Body) (geom.Vector, float64) {
	sum := geom.Direction(0, 0, 0)
	total := 0.0
	for _, b := range bodies {
		sum = sum.Add(b.Position.Scale(b.Mass))
		total += b.Mass
	}
	if total == 0 {
		return geom.Point(0, 0, 0), 0
	}
	c := sum.Div(total)
	return geom.Point(c.X(), c.Y(), c.Z()), total
}
