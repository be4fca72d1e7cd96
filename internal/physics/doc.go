// Package physics holds the particle model and the gravitational force law.
//
//   - [Body]: mutable particle state with a fixed (generation, id) identity
//   - [Gravity]: softened Newtonian force between point masses
//   - [Energy], [Momentum], [AngularMomentum], [CenterOfMass]: diagnostics
//
// # Force law
//
// For a source mass m at P acting on a body of mass M at Q:
//
//	Δ = P - Q, d = |Δ|
//	F = G·m·M / (d² + ε²)
//	force = F · Δ / d
//
// The softening ε bounds the magnitude; the direction still uses the raw d.
package physics
