package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/EnderRifter/StarSim-sub000/internal/octree"
	"github.com/EnderRifter/StarSim-sub000/internal/physics"
)

type Simulator struct {
	updater   Updater
	metrics   []Metric
	observers []Observer
	log       *slog.Logger
}

type Option func(*Simulator)

// WithLogger routes run progress to l. Runs are silent by default.
func WithLogger(l *slog.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.log = l
		}
	}
}

func New(updater Updater, opts ...Option) *Simulator {
	s := &Simulator{
		updater:   updater,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		log:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) Updater() Updater        { return s.updater }
func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run advances bodies in place for cfg.Steps ticks. The returned result holds
// a frame every cfg.SampleEvery ticks plus the initial state. With
// cfg.ValidateState the run stops at the first non-finite body and returns a
// *SimulationError along with the partial result.
func (s *Simulator) Run(ctx context.Context, bodies []*physics.Body, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	start := time.Now()
	result := &Result{
		Frames:  make([]Frame, 0, cfg.Steps/cfg.SampleEvery+2),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	s.log.Info("run started",
		"updater", s.updater.Name(),
		"bodies", len(bodies),
		"steps", cfg.Steps,
		"dt", cfg.Dt)

	t := 0.0
	result.Frames = append(result.Frames, snapshot(0, t, bodies))
	initialEnergy, hasEnergy := s.energy(bodies)

	var runErr error
	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			result.Elapsed = time.Since(start)
			return result, ctx.Err()
		default:
		}

		for _, m := range s.metrics {
			m.Observe(bodies, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(bodies, t)
		}

		s.updater.Advance(bodies, cfg.Dt)
		t += cfg.Dt
		result.StepsTaken++

		if cfg.ValidateState {
			if err := ValidateState(bodies); err != nil {
				runErr = &SimulationError{Step: i + 1, Time: t, Wrapped: err}
				result.Errors = append(result.Errors, runErr)
				s.log.Warn("run stopped", "step", i+1, "err", err)
				break
			}
		}

		if (i+1)%cfg.SampleEvery == 0 {
			result.Frames = append(result.Frames, snapshot(i+1, t, bodies))
			s.logSample(i+1, t)
		}
	}

	if hasEnergy {
		finalEnergy, _ := s.energy(bodies)
		if initialEnergy != 0 {
			result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Elapsed = time.Since(start)

	s.log.Info("run finished",
		"steps", result.StepsTaken,
		"frames", len(result.Frames),
		"energy_drift", result.EnergyDrift,
		"elapsed", result.Elapsed)

	return result, runErr
}

// RunWithCallback advances bodies and calls fn before every tick. Returning
// false from fn ends the run without error. cfg.Steps <= 0 runs until fn or
// ctx stops it.
func (s *Simulator) RunWithCallback(ctx context.Context, bodies []*physics.Body, cfg Config, fn func(bodies []*physics.Body, step int, t float64) bool) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}

	t := 0.0
	for i := 0; cfg.Steps <= 0 || i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !fn(bodies, i, t) {
			return nil
		}

		s.updater.Advance(bodies, cfg.Dt)
		t += cfg.Dt

		if cfg.ValidateState {
			if err := ValidateState(bodies); err != nil {
				return &SimulationError{Step: i + 1, Time: t, Wrapped: err}
			}
		}
	}

	return nil
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidConfig, cfg.Steps)
	}
	if cfg.SampleEvery <= 0 {
		return fmt.Errorf("%w: sample_every must be at least 1, got %d", ErrInvalidConfig, cfg.SampleEvery)
	}
	return nil
}

func (s *Simulator) energy(bodies []*physics.Body) (float64, bool) {
	gs, ok := s.updater.(GravitySource)
	if !ok {
		return 0, false
	}
	return physics.Energy(gs.Gravity(), bodies), true
}

func (s *Simulator) logSample(step int, t float64) {
	if !s.log.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	attrs := []any{"step", step, "time", t}
	if tr, ok := s.updater.(interface{ LastQuery() octree.Query }); ok {
		q := tr.LastQuery()
		attrs = append(attrs, "exact", q.Exact, "approximations", q.Approximations, "visited", q.Visited)
	}
	s.log.Debug("sample", attrs...)
}

func snapshot(step int, t float64, bodies []*physics.Body) Frame {
	return Frame{Step: step, Time: t, Bodies: physics.CloneAll(bodies)}
}
