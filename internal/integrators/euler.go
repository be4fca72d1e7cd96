package integrators

import "github.com/EnderRifter/StarSim-sub000/internal/physics"

// Integrator advances one body from its accumulated force.
type Integrator interface {
	Integrate(b *physics.Body, dt float64)
	Name() string
}

// SymplecticEuler updates velocity first and then moves with the new
// velocity. Orbits keep a bounded energy error instead of spiralling out.
type SymplecticEuler struct{}

func NewSymplecticEuler() *SymplecticEuler {
	return &SymplecticEuler{}
}

func (e *SymplecticEuler) Name() string { return "symplectic" }

func (e *SymplecticEuler) Integrate(b *physics.Body, dt float64) {
	b.Velocity = b.Velocity.Add(b.Force.Scale(dt).Div(b.Mass))
	b.Position = b.Position.Add(b.Velocity.Scale(dt))
}

// ExplicitEuler moves with the old velocity. Kept for comparison only.
type ExplicitEuler struct{}

func NewExplicitEuler() *ExplicitEuler {
	return &ExplicitEuler{}
}

func (e *ExplicitEuler) Name() string { return "euler" }

func (e *ExplicitEuler) Integrate(b *physics.Body, dt float64) {
	b.Position = b.Position.Add(b.Velocity.Scale(dt))
	b.Velocity = b.Velocity.Add(b.Force.Scale(dt).Div(b.Mass))
}
