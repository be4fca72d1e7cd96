package physics

import (
	"fmt"

	"github.com/EnderRifter/StarSim-sub000/internal/geom"
)

// Body is a massive point particle. Position, Velocity and Force are mutated
// by the update driver each tick; Generation and ID are fixed at creation and
// identify the body across snapshots.
type Body struct {
	Position geom.Vector
	Velocity geom.Vector
	Force    geom.Vector
	Mass     float64

	generation uint32
	id         uint64
}

// NewBody creates a body. pos is stored as a point and vel as a direction
// regardless of the homogeneous component passed in.
func NewBody(generation uint32, id uint64, pos, vel geom.Vector, mass float64) *Body {
	return &Body{
		Position:   geom.Point(pos.X(), pos.Y(), pos.Z()),
		Velocity:   geom.Direction(vel.X(), vel.Y(), vel.Z()),
		Mass:       mass,
		generation: generation,
		id:         id,
	}
}

func (b *Body) Generation() uint32 { return b.generation }
func (b *Body) ID() uint64         { return b.id }

// Same reports whether b and o are the same entity, not whether their state
// is equal.
func (b *Body) Same(o *Body) bool {
	if b == nil || o == nil {
		return b == o
	}
	return b.generation == o.generation && b.id == o.id
}

func (b *Body) ResetForce()            { b.Force = geom.Zero }
func (b *Body) AddForce(f geom.Vector) { b.Force = b.Force.Add(f) }

// Clone returns a detached copy with the same identity.
func (b *Body) Clone() *Body {
	c := *b
	return &c
}

func (b *Body) String() string {
	return fmt.Sprintf("body %d/%d m=%.4g p=%v v=%v", b.generation, b.id, b.Mass, b.Position, b.Velocity)
}

// CloneAll deep-copies a body slice.
func CloneAll(bodies []*Body) []*Body {
	out := make([]*Body, len(bodies))
	for i, b := range bodies {
		out[i] = b.Clone()
	}
	return out
}
