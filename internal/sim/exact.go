package sim

import (
	"github.com/EnderRifter/StarSim-sub000/internal/integrators"
	"github.com/EnderRifter/StarSim-sub000/internal/physics"
)

// Exact sums every pairwise force directly. O(n²) per tick.
type Exact struct {
	gravity physics.Gravity
	integ   integrators.Integrator
}

func NewExact(g physics.Gravity, integ integrators.Integrator) *Exact {
	if integ == nil {
		integ = integrators.NewSymplecticEuler()
	}
	return &Exact{gravity: g, integ: integ}
}

func (u *Exact) Name() string              { return "exact" }
func (u *Exact) Gravity() physics.Gravity { return u.gravity }

func (u *Exact) Advance(bodies []*physics.Body, dt float64) {
	for i, b := range bodies {
		b.ResetForce()
		for j, o := range bodies {
			if i == j {
				continue
			}
			b.AddForce(u.gravity.Between(b, o))
		}
	}
	for _, b := range bodies {
		u.integ.Integrate(b, dt)
	}
}
