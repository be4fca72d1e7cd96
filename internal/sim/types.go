package sim

import (
	"time"

	"github.com/EnderRifter/StarSim-sub000/internal/geom"
	"github.com/EnderRifter/StarSim-sub000/internal/physics"
)

// Updater advances every body by one tick. Implementations own their scratch
// storage and are not safe for concurrent use.
type Updater interface {
	Advance(bodies []*physics.Body, dt float64)
	Name() string
}

// GravitySource is implemented by updaters that expose their force law, so
// the run loop can track total energy.
type GravitySource interface {
	Gravity() physics.Gravity
}

type Metric interface {
	Name() string
	Observe(bodies []*physics.Body, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(bodies []*physics.Body, t float64)
}

// Params configures the tree based updaters.
type Params struct {
	Gravity        physics.Gravity
	Theta          float64
	UniverseRadius float64
}

// HalfSide is the half side length of the root region. The root cube is the
// universe bound.
func (p Params) HalfSide() float64 { return p.UniverseRadius }

// Contains reports whether pos is inside the universe bound, boundary
// included. Bodies outside it are frozen.
func (p Params) Contains(pos geom.Vector) bool {
	return pos.InCube(geom.Point(0, 0, 0), p.HalfSide())
}

type Config struct {
	Dt            float64
	Steps         int
	SampleEvery   int
	ValidateState bool
}

// Frame is a detached snapshot of all bodies.
type Frame struct {
	Step   int
	Time   float64
	Bodies []*physics.Body
}

type Result struct {
	Frames      []Frame
	Metrics     map[string]float64
	StepsTaken  int
	EnergyDrift float64
	Errors      []error
	Elapsed     time.Duration
}

// Final returns the last sampled frame.
func (r *Result) Final() (Frame, bool) {
	if len(r.Frames) == 0 {
		return Frame{}, false
	}
	return r.Frames[len(r.Frames)-1], true
}
