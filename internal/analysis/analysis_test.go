package analysis

import (
	"context"
	"math"
	"testing"

	"github.com/EnderRifter/StarSim-sub000/internal/geom"
	"github.com/EnderRifter/StarSim-sub000/internal/physics"
	"github.com/EnderRifter/StarSim-sub000/internal/sim"
)

func TestPowerSpectrumPeak(t *testing.T) {
	n := 64
	data := make([]float64, n)
	for i := range data {
		data[i] = math.Sin(2 * math.Pi * 5 * float64(i) / float64(n))
	}

	ps := PowerSpectrum(data)
	if len(ps) != n/2 {
		t.Fatalf("expected %d bins, got %d", n/2, len(ps))
	}
	for k, p := range ps {
		if k != 5 && p > ps[5] {
			t.Errorf("bin %d (%.3f) exceeds the signal bin (%.3f)", k, p, ps[5])
		}
	}
}

func TestDominantPeriod(t *testing.T) {
	tests := []struct {
		name   string
		period float64
		n      int
		dt     float64
	}{
		{"exact bin", 1.6, 256, 0.05},
		{"odd length", 2.0, 101, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := make([]float64, tt.n)
			for i := range series {
				series[i] = 10 + math.Sin(2*math.Pi*float64(i)*tt.dt/tt.period)
			}
			got, ok := DominantPeriod(series, tt.dt)
			if !ok {
				t.Fatal("expected a period")
			}
			if math.Abs(got-tt.period)/tt.period > 0.05 {
				t.Errorf("period = %.4f, want %.4f", got, tt.period)
			}
		})
	}
}

func TestDominantPeriodFlat(t *testing.T) {
	if _, ok := DominantPeriod([]float64{3, 3, 3, 3, 3, 3}, 0.1); ok {
		t.Error("flat series should have no period")
	}
	if _, ok := DominantPeriod([]float64{1, 2}, 0.1); ok {
		t.Error("short series should have no period")
	}
}

func TestOrbitalPeriod(t *testing.T) {
	const (
		central = 1000.0
		radius  = 10.0
	)
	speed := math.Sqrt(central / radius)
	bodies := []*physics.Body{
		physics.NewBody(0, 0, geom.Point(0, 0, 0), geom.Zero, central),
		physics.NewBody(0, 1, geom.Point(radius, 0, 0), geom.Direction(0, speed, 0), 1e-3),
	}

	s := sim.New(sim.NewExact(physics.NewGravity(1, 0.001), nil))
	res, err := s.Run(context.Background(), bodies, sim.Config{Dt: 0.001, Steps: 25600, SampleEvery: 100})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	radial := RadialSeries(res.Frames, 1, 0)
	for i, r := range radial {
		if math.Abs(r-radius) > 0.1 {
			t.Fatalf("frame %d: radius %.4f", i, r)
		}
	}

	xs := CoordinateSeries(res.Frames, 1, 0)
	got, ok := DominantPeriod(xs, 0.1)
	if !ok {
		t.Fatal("expected a period")
	}
	want := 2 * math.Pi * radius / speed
	if math.Abs(got-want)/want > 0.05 {
		t.Errorf("orbital period = %.3f, want %.3f", got, want)
	}

	energy := EnergySeries(res.Frames, physics.NewGravity(1, 0.001))
	if len(energy) != len(res.Frames) || len(Times(res.Frames)) != len(res.Frames) {
		t.Error("series lengths should match frames")
	}
}
