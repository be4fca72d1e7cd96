package metrics

import (
	"math"

	"github.com/EnderRifter/StarSim-sub000/internal/geom"
	"github.com/EnderRifter/StarSim-sub000/internal/physics"
)

// MomentumDrift tracks the largest change of total linear momentum, scaled
// by the total momentum magnitude sum(m|v|) of the first observation.
type MomentumDrift struct {
	name     string
	initial  geom.Vector
	scale    float64
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(bodies []*physics.Body, t float64) {
	p := physics.Momentum(bodies)
	if m.samples == 0 {
		m.initial = p
		m.scale = 0
		for _, b := range bodies {
			m.scale += b.Mass * b.Velocity.Len3()
		}
		if m.scale == 0 {
			m.scale = 1
		}
	}
	m.samples++
	m.maxDrift = math.Max(m.maxDrift, p.Dist3(m.initial)/m.scale)
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = geom.Zero
	m.scale = 0
	m.maxDrift = 0
	m.samples = 0
}

// AngularMomentumDrift is MomentumDrift for total angular momentum about the
// origin, scaled by sum(m|r x v|) of the first observation.
type AngularMomentumDrift struct {
	name     string
	initial  geom.Vector
	scale    float64
	maxDrift float64
	samples  int
}

func NewAngularMomentumDrift() *AngularMomentumDrift {
	return &AngularMomentumDrift{name: "angular_momentum_drift"}
}

func (m *AngularMomentumDrift) Name() string { return m.name }

func (m *AngularMomentumDrift) Observe(bodies []*physics.Body, t float64) {
	l := physics.AngularMomentum(bodies)
	if m.samples == 0 {
		m.initial = l
		m.scale = 0
		for _, b := range bodies {
			m.scale += b.Mass * b.Position.Cross3(b.Velocity).Len3()
		}
		if m.scale == 0 {
			m.scale = 1
		}
	}
	m.samples++
	m.maxDrift = math.Max(m.maxDrift, l.Dist3(m.initial)/m.scale)
}

func (m *AngularMomentumDrift) Value() float64 { return m.maxDrift }

func (m *AngularMomentumDrift) Reset() {
	m.initial = geom.Zero
	m.scale = 0
	m.maxDrift = 0
	m.samples = 0
}
