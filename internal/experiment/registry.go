package experiment

import (
	"fmt"
	"sort"

	"github.com/EnderRifter/StarSim-sub000/internal/config"
	"github.com/EnderRifter/StarSim-sub000/internal/generate"
	"github.com/EnderRifter/StarSim-sub000/internal/integrators"
	"github.com/EnderRifter/StarSim-sub000/internal/metrics"
	"github.com/EnderRifter/StarSim-sub000/internal/sim"
)

type Registry struct {
	updaters    map[string]func(sim.Params, integrators.Integrator) sim.Updater
	integrators map[string]func() integrators.Integrator
	generators  map[string]generate.Func
}

func NewRegistry() *Registry {
	r := &Registry{
		updaters:    make(map[string]func(sim.Params, integrators.Integrator) sim.Updater),
		integrators: make(map[string]func() integrators.Integrator),
		generators:  make(map[string]generate.Func),
	}

	r.updaters["exact"] = func(p sim.Params, integ integrators.Integrator) sim.Updater {
		return sim.NewExact(p.Gravity, integ)
	}
	r.updaters["barneshut"] = func(p sim.Params, integ integrators.Integrator) sim.Updater {
		return sim.NewBarnesHut(p, integ)
	}
	r.updaters["parallel"] = func(p sim.Params, integ integrators.Integrator) sim.Updater {
		return sim.NewParallelBarnesHut(p, integ, 0)
	}
	r.updaters["reference"] = func(p sim.Params, integ integrators.Integrator) sim.Updater {
		return sim.NewReference(p, integ)
	}

	r.integrators["symplectic"] = func() integrators.Integrator { return integrators.NewSymplecticEuler() }
	r.integrators["euler"] = func() integrators.Integrator { return integrators.NewExplicitEuler() }

	r.generators["solar"] = generate.Solar
	r.generators["binary"] = generate.Binary
	r.generators["disk"] = generate.Disk
	r.generators["cluster"] = generate.Cluster

	return r
}

func (r *Registry) GetUpdater(name string, p sim.Params, integ integrators.Integrator) (sim.Updater, error) {
	fn, ok := r.updaters[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownUpdater, name)
	}
	return fn(p, integ), nil
}

func (r *Registry) GetIntegrator(name string) (integrators.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIntegrator, name)
	}
	return fn(), nil
}

func (r *Registry) GetGenerator(name string) (generate.Func, error) {
	fn, ok := r.generators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGenerator, name)
	}
	return fn, nil
}

func (r *Registry) ListUpdaters() []string    { return sortedKeys(r.updaters) }
func (r *Registry) ListIntegrators() []string { return sortedKeys(r.integrators) }
func (r *Registry) ListGenerators() []string  { return sortedKeys(r.generators) }

// DefaultMetrics returns fresh metric instances for a run of cfg.
func (r *Registry) DefaultMetrics(cfg *config.Config) []sim.Metric {
	return []sim.Metric{
		metrics.NewEnergyDrift(cfg.Gravity()),
		metrics.NewMomentumDrift(),
		metrics.NewAngularMomentumDrift(),
		metrics.NewBounded(cfg.Params().HalfSide()),
	}
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
