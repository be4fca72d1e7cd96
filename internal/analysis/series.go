package analysis

import (
	"github.com/EnderRifter/StarSim-sub000/internal/physics"
	"github.com/EnderRifter/StarSim-sub000/internal/sim"
)

func find(f sim.Frame, id uint64) *physics.Body {
	for _, b := range f.Bodies {
		if b.ID() == id {
			return b
		}
	}
	return nil
}

// RadialSeries is the distance between bodies id and center in every frame
// that contains both.
func RadialSeries(frames []sim.Frame, id, center uint64) []float64 {
	out := make([]float64, 0, len(frames))
	for _, f := range frames {
		b, c := find(f, id), find(f, center)
		if b == nil || c == nil {
			continue
		}
		out = append(out, b.Position.Dist3(c.Position))
	}
	return out
}

// CoordinateSeries is position component axis (0, 1 or 2) of body id.
func CoordinateSeries(frames []sim.Frame, id uint64, axis int) []float64 {
	out := make([]float64, 0, len(frames))
	for _, f := range frames {
		if b := find(f, id); b != nil {
			out = append(out, b.Position.Component(axis))
		}
	}
	return out
}

func EnergySeries(frames []sim.Frame, g physics.Gravity) []float64 {
	out := make([]float64, len(frames))
	for i, f := range frames {
		out[i] = physics.Energy(g, f.Bodies)
	}
	return out
}

// Times returns the frame timestamps.
func Times(frames []sim.Frame) []float64 {
	out := make([]float64, len(frames))
	for i, f := range frames {
		out[i] = f.Time
	}
	return out
}
