package sim

import (
	"math"

	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/EnderRifter/StarSim-sub000/internal/geom"
	"github.com/EnderRifter/StarSim-sub000/internal/integrators"
	"github.com/EnderRifter/StarSim-sub000/internal/physics"
)

type particle struct {
	body *physics.Body
}

func (p *particle) Coord3() r3.Vec {
	return r3.Vec{X: p.body.Position.X(), Y: p.body.Position.Y(), Z: p.body.Position.Z()}
}

func (p *particle) Mass() float64 { return p.body.Mass }

// Reference computes forces through gonum's barneshut.Volume as an
// independent cross-check of Exact and BarnesHut. It always queries with
// theta 0: gonum v0.16 divides a leaf's center by its mass when summarizing,
// so its aggregates are misplaced for any body whose mass is not 1. At theta
// 0 ForceOn visits every particle directly and passes real positions.
// Params.Theta is ignored.
type Reference struct {
	params Params
	integ  integrators.Integrator

	volume    barneshut.Volume
	particles []barneshut.Particle3
	wrapped   []*particle
}

func NewReference(p Params, integ integrators.Integrator) *Reference {
	if integ == nil {
		integ = integrators.NewSymplecticEuler()
	}
	return &Reference{params: p, integ: integ}
}

func (u *Reference) Name() string              { return "reference" }
func (u *Reference) Gravity() physics.Gravity { return u.params.Gravity }

func (u *Reference) Advance(bodies []*physics.Body, dt float64) {
	u.particles = u.particles[:0]
	u.wrapped = u.wrapped[:0]
	for _, b := range bodies {
		b.ResetForce()
		if u.params.Contains(b.Position) {
			p := &particle{body: b}
			u.particles = append(u.particles, p)
			u.wrapped = append(u.wrapped, p)
		}
	}

	u.volume.Particles = u.particles
	for _, p := range u.wrapped {
		f := u.volume.ForceOn(p, 0, u.force)
		p.body.AddForce(geom.Direction(f.X, f.Y, f.Z))
	}

	// Positions are read live, so integrate only after every query.
	for _, p := range u.wrapped {
		u.integ.Integrate(p.body, dt)
	}
}

// force adapts Gravity to gonum's Force3. The separation is taken from the
// particles themselves rather than from v.
func (u *Reference) force(p1, p2 barneshut.Particle3, m1, m2 float64, v r3.Vec) r3.Vec {
	if p1 == p2 {
		return r3.Vec{}
	}
	if p2 != nil {
		v = r3.Sub(p2.Coord3(), p1.Coord3())
	}
	d2 := r3.Norm2(v)
	if d2 == 0 {
		return r3.Vec{}
	}
	g := u.params.Gravity
	f := g.G * m1 * m2 / (d2 + g.Softening*g.Softening) / math.Sqrt(d2)
	return r3.Scale(f, v)
}
