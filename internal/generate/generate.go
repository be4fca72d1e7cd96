// Package generate builds initial conditions. Every generator draws from the
// *rand.Rand it is given, so a seed fully determines the bodies.
package generate

import (
	"math"

	"golang.org/x/exp/rand"

	"github.com/EnderRifter/StarSim-sub000/internal/geom"
	"github.com/EnderRifter/StarSim-sub000/internal/physics"
)

// Params describes a body population. Not every generator uses every field.
type Params struct {
	Generation  uint32
	Bodies      int
	G           float64
	CentralMass float64
	BodyMass    float64
	MinRadius   float64
	MaxRadius   float64
	Thickness   float64
}

// Func builds bodies from a random source.
type Func func(rng *rand.Rand, p Params) []*physics.Body

// Orbital planes are XY; angular momentum points along +Z.
var orbitAxis = geom.Direction(0, 0, 1)

// CircularVelocity is the velocity for a circular orbit at pos around a mass
// at the origin, perpendicular to both pos and axis.
func CircularVelocity(g, central float64, pos, axis geom.Vector) geom.Vector {
	r := pos.Len3()
	if r == 0 || central <= 0 {
		return geom.Zero
	}
	dir := axis.Cross3(pos)
	n := dir.Len3()
	if n == 0 {
		return geom.Zero
	}
	return dir.Scale(math.Sqrt(g*central/r) / n)
}

// Solar places one star at the origin and Bodies-1 planets on circular
// orbits at evenly spaced radii between MinRadius and MaxRadius.
func Solar(rng *rand.Rand, p Params) []*physics.Body {
	bodies := make([]*physics.Body, 0, p.Bodies)
	bodies = append(bodies, physics.NewBody(p.Generation, 0, geom.Point(0, 0, 0), geom.Zero, p.CentralMass))

	planets := p.Bodies - 1
	for i := 0; i < planets; i++ {
		r := p.MinRadius
		if planets > 1 {
			r += (p.MaxRadius - p.MinRadius) * float64(i) / float64(planets-1)
		}
		pos := onCircle(r, rng.Float64()*2*math.Pi, 0)
		vel := CircularVelocity(p.G, p.CentralMass, pos, orbitAxis)
		bodies = append(bodies, physics.NewBody(p.Generation, uint64(i+1), pos, vel, p.BodyMass))
	}

	zeroMomentum(bodies)
	return bodies
}

// Binary places two stars of CentralMass/2 each on a circular mutual orbit
// with separation MinRadius. Remaining bodies orbit the pair in a ring out
// to MaxRadius.
func Binary(rng *rand.Rand, p Params) []*physics.Body {
	bodies := make([]*physics.Body, 0, max(p.Bodies, 2))

	m := p.CentralMass / 2
	a := p.MinRadius
	speed := 0.0
	if a > 0 {
		speed = math.Sqrt(p.G*p.CentralMass/a) / 2
	}
	phase := rng.Float64() * 2 * math.Pi
	for i := 0; i < 2; i++ {
		pos := onCircle(a/2, phase+float64(i)*math.Pi, 0)
		vel := orbitAxis.Cross3(pos)
		if n := vel.Len3(); n > 0 {
			vel = vel.Scale(speed / n)
		}
		bodies = append(bodies, physics.NewBody(p.Generation, uint64(i), pos, vel, m))
	}

	inner := math.Min(2*p.MinRadius, p.MaxRadius)
	for i := 2; i < p.Bodies; i++ {
		pos := inDisk(rng, inner, p.MaxRadius, p.Thickness)
		vel := CircularVelocity(p.G, p.CentralMass, pos, orbitAxis)
		bodies = append(bodies, physics.NewBody(p.Generation, uint64(i), pos, vel, p.BodyMass))
	}

	zeroMomentum(bodies)
	return bodies
}

// Disk places a central mass at the origin surrounded by a thin disk of
// Bodies-1 particles, uniform in area between MinRadius and MaxRadius.
func Disk(rng *rand.Rand, p Params) []*physics.Body {
	bodies := make([]*physics.Body, 0, p.Bodies)
	bodies = append(bodies, physics.NewBody(p.Generation, 0, geom.Point(0, 0, 0), geom.Zero, p.CentralMass))

	for i := 1; i < p.Bodies; i++ {
		pos := inDisk(rng, p.MinRadius, p.MaxRadius, p.Thickness)
		vel := CircularVelocity(p.G, p.CentralMass, pos, orbitAxis)
		bodies = append(bodies, physics.NewBody(p.Generation, uint64(i), pos, vel, p.BodyMass))
	}

	zeroMomentum(bodies)
	return bodies
}

// Cluster fills a sphere of MaxRadius uniformly with equal masses and gives
// them small isotropic velocities, well below virial equilibrium.
func Cluster(rng *rand.Rand, p Params) []*physics.Body {
	bodies := make([]*physics.Body, 0, p.Bodies)

	total := p.BodyMass * float64(p.Bodies)
	sigma := 0.0
	if p.MaxRadius > 0 {
		sigma = 0.3 * math.Sqrt(p.G*total/p.MaxRadius)
	}

	for i := 0; i < p.Bodies; i++ {
		pos := inBall(rng, p.MaxRadius)
		vel := geom.Direction(rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()).Scale(sigma)
		bodies = append(bodies, physics.NewBody(p.Generation, uint64(i), pos, vel, p.BodyMass))
	}

	zeroMomentum(bodies)
	return bodies
}

func onCircle(r, angle, z float64) geom.Vector {
	return geom.Point(r*math.Cos(angle), r*math.Sin(angle), z)
}

func inDisk(rng *rand.Rand, minR, maxR, thickness float64) geom.Vector {
	r := math.Sqrt(rng.Float64()*(maxR*maxR-minR*minR) + minR*minR)
	z := (rng.Float64() - 0.5) * thickness
	return onCircle(r, rng.Float64()*2*math.Pi, z)
}

func inBall(rng *rand.Rand, radius float64) geom.Vector {
	for {
		p := geom.Point(rng.Float64()*2-1, rng.Float64()*2-1, rng.Float64()*2-1)
		if p.Len3Sq() <= 1 {
			return geom.Point(p.X()*radius, p.Y()*radius, p.Z()*radius)
		}
	}
}

// zeroMomentum shifts every velocity so the system's center of mass is at
// rest.
func zeroMomentum(bodies []*physics.Body) {
	total := 0.0
	for _, b := range bodies {
		total += b.Mass
	}
	if total == 0 {
		return
	}
	drift := physics.Momentum(bodies).Div(total)
	for _, b := range bodies {
		b.Velocity = b.Velocity.Sub(drift)
	}
}
