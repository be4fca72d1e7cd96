package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"golang.org/x/exp/rand"

	"github.com/EnderRifter/StarSim-sub000/internal/geom"
	"github.com/EnderRifter/StarSim-sub000/internal/physics"
)

func testParams(theta float64) Params {
	return Params{
		Gravity:        physics.NewGravity(1.0, 0.01),
		Theta:          theta,
		UniverseRadius: 20,
	}
}

func randomBodies(seed uint64, n int, extent float64) []*physics.Body {
	rng := rand.New(rand.NewSource(seed))
	bodies := make([]*physics.Body, n)
	for i := range bodies {
		pos := geom.Point(
			(rng.Float64()*2-1)*extent,
			(rng.Float64()*2-1)*extent,
			(rng.Float64()*2-1)*extent,
		)
		vel := geom.Direction(rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64())
		bodies[i] = physics.NewBody(1, uint64(i), pos, vel, 0.5+rng.Float64())
	}
	return bodies
}

// orbit is a light satellite on a circular orbit of radius 10 around a heavy
// central body.
func orbit() []*physics.Body {
	const (
		central = 1000.0
		radius  = 10.0
	)
	speed := math.Sqrt(central / radius)
	return []*physics.Body{
		physics.NewBody(1, 0, geom.Point(0, 0, 0), geom.Zero, central),
		physics.NewBody(1, 1, geom.Point(radius, 0, 0), geom.Direction(0, speed, 0), 1e-3),
	}
}

func updaters(theta float64) []Updater {
	p := testParams(theta)
	return []Updater{
		NewExact(p.Gravity, nil),
		NewBarnesHut(p, nil),
		NewParallelBarnesHut(p, nil, 4),
		NewReference(p, nil),
	}
}

func TestTwoBodyVelocity(t *testing.T) {
	const (
		m  = 2.0
		d  = 2.0
		dt = 0.01
	)
	g := testParams(0.5).Gravity
	want := dt * g.G * m / (d*d + g.Softening*g.Softening)

	for _, u := range updaters(0.5) {
		t.Run(u.Name(), func(t *testing.T) {
			a := physics.NewBody(1, 0, geom.Point(-d/2, 0, 0), geom.Zero, m)
			b := physics.NewBody(1, 1, geom.Point(d/2, 0, 0), geom.Zero, m)

			u.Advance([]*physics.Body{a, b}, dt)

			for _, body := range []*physics.Body{a, b} {
				if got := body.Velocity.Len3(); math.Abs(got-want) > 1e-12 {
					t.Errorf("body %d speed = %.15f, want %.15f", body.ID(), got, want)
				}
			}
			if a.Velocity.X() <= 0 || b.Velocity.X() >= 0 {
				t.Errorf("bodies should accelerate toward each other: a=%v b=%v", a.Velocity, b.Velocity)
			}
		})
	}
}

func TestOrbitStaysInBand(t *testing.T) {
	const steps = 10000

	final := make(map[string]geom.Vector)
	for _, u := range updaters(0.5) {
		t.Run(u.Name(), func(t *testing.T) {
			bodies := orbit()
			for i := 0; i < steps; i++ {
				u.Advance(bodies, 0.001)
				r := bodies[1].Position.Dist3(bodies[0].Position)
				if r < 9.5 || r > 10.5 {
					t.Fatalf("step %d: radius %.4f left the band", i, r)
				}
			}
			final[u.Name()] = bodies[1].Position
		})
	}

	exact := final["exact"]
	for name, pos := range final {
		if !pos.ApproxEqual3(exact, 1e-6) {
			t.Errorf("%s final position %v differs from exact %v", name, pos, exact)
		}
	}
}

func TestOutOfBoundsBodiesFreeze(t *testing.T) {
	p := testParams(0.5)
	r := p.UniverseRadius

	tests := []struct {
		name string
		pos  geom.Vector
	}{
		{"far outside", geom.Point(2*r+5, 0, 0)},
		{"between bound and twice bound", geom.Point(1.5*r, 0, 0)},
		{"just past bound", geom.Point(r*(1+1e-9), 0, 0)},
		{"past bound on one axis", geom.Point(1, -1, -r-0.01)},
	}

	for _, tt := range tests {
		for _, u := range []Updater{NewBarnesHut(p, nil), NewParallelBarnesHut(p, nil, 2), NewReference(p, nil)} {
			t.Run(tt.name+"/"+u.Name(), func(t *testing.T) {
				outside := physics.NewBody(1, 0, tt.pos, geom.Direction(1, 0, 0), 100)
				outside.AddForce(geom.Direction(3, 3, 3))
				central := physics.NewBody(1, 1, geom.Point(0, 0, 0), geom.Zero, 1000)
				edge := physics.NewBody(1, 2, geom.Point(r, 0, 0), geom.Direction(0, 1, 0), 1)

				u.Advance([]*physics.Body{outside, central, edge}, 0.1)

				if outside.Position != tt.pos {
					t.Errorf("outside body moved to %v", outside.Position)
				}
				if outside.Velocity != geom.Direction(1, 0, 0) {
					t.Errorf("outside body velocity changed to %v", outside.Velocity)
				}
				if outside.Force != geom.Zero {
					t.Errorf("outside body force not cleared: %v", outside.Force)
				}
				if central.Force.X() <= 0 || central.Force.Y() != 0 || central.Force.Z() != 0 {
					t.Errorf("central body should only feel the edge body, got %v", central.Force)
				}
				if edge.Position.Y() == 0 {
					t.Error("body on the boundary should be integrated")
				}
			})
		}
	}
}

func TestReferenceMatchesExactWithUnequalMasses(t *testing.T) {
	for _, theta := range []float64{0, 0.5, 1.2} {
		p := testParams(theta)

		want := randomBodies(5, 80, 12)
		for _, b := range want {
			b.Mass *= 3
		}
		got := physics.CloneAll(want)

		NewExact(p.Gravity, nil).Advance(want, 0.001)
		NewReference(p, nil).Advance(got, 0.001)

		for i := range got {
			tol := 1e-9 * (1 + want[i].Force.Len3())
			if !got[i].Force.ApproxEqual3(want[i].Force, tol) {
				t.Errorf("theta %.1f body %d force %v, want %v", theta, i, got[i].Force, want[i].Force)
			}
		}
	}
}

func TestReferenceTwoHeavyBodies(t *testing.T) {
	p := testParams(0.5)
	a := physics.NewBody(1, 0, geom.Point(-1, 0, 0), geom.Zero, 2)
	b := physics.NewBody(1, 1, geom.Point(1, 0, 0), geom.Zero, 2)

	NewReference(p, nil).Advance([]*physics.Body{a, b}, 0.01)

	g := p.Gravity
	want := g.G * 2 * 2 / (4 + g.Softening*g.Softening)
	if math.Abs(a.Force.X()-want) > 1e-12 || a.Force.Y() != 0 || a.Force.Z() != 0 {
		t.Errorf("force on a = %v, want (%.6f, 0, 0)", a.Force, want)
	}
	if math.Abs(b.Force.X()+want) > 1e-12 {
		t.Errorf("force on b = %v, want (%.6f, 0, 0)", b.Force, -want)
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	p := testParams(0.7)
	seq := NewBarnesHut(p, nil)
	par := NewParallelBarnesHut(p, nil, 4)

	a := randomBodies(7, 500, 15)
	b := physics.CloneAll(a)

	for i := 0; i < 5; i++ {
		seq.Advance(a, 0.001)
		par.Advance(b, 0.001)
	}

	for i := range a {
		if a[i].Position != b[i].Position || a[i].Velocity != b[i].Velocity {
			t.Fatalf("body %d diverged: seq=%v par=%v", i, a[i], b[i])
		}
	}
	if seq.LastQuery() != par.LastQuery() {
		t.Errorf("query counters differ: seq=%+v par=%+v", seq.LastQuery(), par.LastQuery())
	}
	if seq.LastQuery().Approximations == 0 {
		t.Error("expected some approximations at theta 0.7")
	}
}

func TestTreeUpdatersMatchExactAtZeroTheta(t *testing.T) {
	p := testParams(0)
	exact := randomBodies(3, 60, 10)

	NewExact(p.Gravity, nil).Advance(exact, 0.001)

	for _, u := range []Updater{NewBarnesHut(p, nil), NewReference(p, nil)} {
		t.Run(u.Name(), func(t *testing.T) {
			bodies := randomBodies(3, 60, 10)
			u.Advance(bodies, 0.001)

			for i := range bodies {
				want := exact[i].Velocity
				tol := 1e-9 * (1 + want.Len3())
				if !bodies[i].Velocity.ApproxEqual3(want, tol) {
					t.Errorf("body %d velocity %v, want %v", i, bodies[i].Velocity, want)
				}
			}
		})
	}
}

func TestBarnesHutRecordsStats(t *testing.T) {
	u := NewBarnesHut(testParams(0.5), nil)
	bodies := randomBodies(11, 200, 10)
	u.Advance(bodies, 0.001)

	stats := u.LastStats()
	if stats.Bodies != len(bodies) {
		t.Errorf("stats.Bodies = %d, want %d", stats.Bodies, len(bodies))
	}
	q := u.LastQuery()
	if q.Exact+q.Approximated < len(bodies)*(len(bodies)-1)-len(bodies) {
		t.Errorf("query covered too few bodies: %+v", q)
	}
}

type testMetric struct {
	count int
	sum   float64
}

func (m *testMetric) Name() string { return "test" }
func (m *testMetric) Observe(bodies []*physics.Body, t float64) {
	m.count++
	m.sum += float64(len(bodies))
}
func (m *testMetric) Value() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}
func (m *testMetric) Reset() {
	m.count = 0
	m.sum = 0
}

func TestSimulatorRun(t *testing.T) {
	tests := []struct {
		name        string
		steps       int
		sampleEvery int
		wantFrames  int
	}{
		{"every step", 10, 1, 11},
		{"even split", 10, 5, 3},
		{"remainder", 10, 3, 4},
		{"sparser than run", 10, 20, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testParams(0.5)
			s := New(NewBarnesHut(p, nil))
			metric := &testMetric{}
			s.AddMetric(metric)

			bodies := orbit()
			res, err := s.Run(context.Background(), bodies, Config{Dt: 0.001, Steps: tt.steps, SampleEvery: tt.sampleEvery})
			if err != nil {
				t.Fatalf("run failed: %v", err)
			}

			if len(res.Frames) != tt.wantFrames {
				t.Errorf("expected %d frames, got %d", tt.wantFrames, len(res.Frames))
			}
			if res.StepsTaken != tt.steps {
				t.Errorf("expected %d steps, got %d", tt.steps, res.StepsTaken)
			}
			if metric.count != tt.steps {
				t.Errorf("expected %d observations, got %d", tt.steps, metric.count)
			}
			if _, ok := res.Metrics["test"]; !ok {
				t.Error("metric not found in result")
			}
			if res.Frames[0].Bodies[1].Position == bodies[1].Position {
				t.Error("frames should be detached snapshots")
			}
		})
	}
}

func TestSimulatorEnergyDrift(t *testing.T) {
	s := New(NewExact(physics.NewGravity(1, 0.01), nil))
	res, err := s.Run(context.Background(), orbit(), Config{Dt: 0.001, Steps: 5000, SampleEvery: 100})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.EnergyDrift > 1e-2 {
		t.Errorf("energy drift %.2e too large for a circular orbit", res.EnergyDrift)
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	s := New(NewExact(physics.NewGravity(1, 0), nil))

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Steps: 10, SampleEvery: 1}},
		{"negative dt", Config{Dt: -0.1, Steps: 10, SampleEvery: 1}},
		{"zero steps", Config{Dt: 0.1, Steps: 0, SampleEvery: 1}},
		{"zero sample interval", Config{Dt: 0.1, Steps: 10, SampleEvery: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Run(context.Background(), orbit(), tt.cfg)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSimulatorDetectsInvalidState(t *testing.T) {
	bodies := orbit()
	bodies[0].Position = geom.Point(math.NaN(), 0, 0)

	s := New(NewExact(physics.NewGravity(1, 0.01), nil))
	res, err := s.Run(context.Background(), bodies, Config{Dt: 0.01, Steps: 10, SampleEvery: 1, ValidateState: true})

	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	var simErr *SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected *SimulationError, got %T", err)
	}
	if simErr.Step != 1 {
		t.Errorf("expected failure at step 1, got %d", simErr.Step)
	}
	if res == nil || res.StepsTaken != 1 || len(res.Errors) != 1 {
		t.Errorf("expected partial result after one step, got %+v", res)
	}
}

func TestSimulatorCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(NewExact(physics.NewGravity(1, 0.01), nil))
	res, err := s.Run(ctx, orbit(), Config{Dt: 0.01, Steps: 10, SampleEvery: 1})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res.StepsTaken != 0 {
		t.Errorf("expected no steps, got %d", res.StepsTaken)
	}
}

func TestRunWithCallback(t *testing.T) {
	s := New(NewBarnesHut(testParams(0.5), nil))

	calls := 0
	err := s.RunWithCallback(context.Background(), orbit(), Config{Dt: 0.001}, func(_ []*physics.Body, step int, _ float64) bool {
		calls++
		return step < 4
	})
	if err != nil {
		t.Fatalf("callback run failed: %v", err)
	}
	if calls != 5 {
		t.Errorf("expected 5 callbacks, got %d", calls)
	}
}

func TestEnsemble(t *testing.T) {
	p := testParams(0.5)
	e := NewEnsemble(func() Updater { return NewBarnesHut(p, nil) }, 3, 100)

	seen := make(chan uint64, 3)
	results, err := e.Run(context.Background(), Config{Dt: 0.001, Steps: 5, SampleEvery: 5}, func(seed uint64) []*physics.Body {
		seen <- seed
		return randomBodies(seed, 20, 5)
	})
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	close(seen)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if r == nil || r.StepsTaken != 5 {
			t.Errorf("run %d incomplete: %+v", i, r)
		}
	}
	sum := uint64(0)
	for s := range seen {
		sum += s
	}
	if sum != 100+101+102 {
		t.Errorf("unexpected seeds, sum %d", sum)
	}
}

func BenchmarkUpdaters(b *testing.B) {
	for _, u := range updaters(0.5) {
		b.Run(u.Name(), func(b *testing.B) {
			bodies := randomBodies(1, 2000, 15)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				u.Advance(bodies, 1e-4)
			}
		})
	}
}
