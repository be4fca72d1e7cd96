package metrics

import (
	"github.com/EnderRifter/StarSim-sub000/internal/geom"
	"github.com/EnderRifter/StarSim-sub000/internal/physics"
)

var origin = geom.Point(0, 0, 0)

// Bounded is the fraction of body observations that fell inside a cube of
// the given half side centered at the origin. Bodies outside the tree root
// are frozen, so this measures how much of the system is still simulated.
type Bounded struct {
	name    string
	half    float64
	inside  int
	samples int
}

func NewBounded(half float64) *Bounded {
	return &Bounded{
		name: "bounded",
		half: half,
	}
}

func (b *Bounded) Name() string {
	return b.name
}

func (b *Bounded) Observe(bodies []*physics.Body, t float64) {
	for _, body := range bodies {
		b.samples++
		if body.Position.InCube(origin, b.half) {
			b.inside++
		}
	}
}

func (b *Bounded) Value() float64 {
	if b.samples == 0 {
		return 1.0
	}
	return float64(b.inside) / float64(b.samples)
}

func (b *Bounded) Reset() {
	b.inside = 0
	b.samples = 0
}
