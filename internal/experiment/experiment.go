package experiment

import (
	"context"
	"log/slog"

	"golang.org/x/exp/rand"

	"github.com/EnderRifter/StarSim-sub000/internal/config"
	"github.com/EnderRifter/StarSim-sub000/internal/generate"
	"github.com/EnderRifter/StarSim-sub000/internal/logging"
	"github.com/EnderRifter/StarSim-sub000/internal/physics"
	"github.com/EnderRifter/StarSim-sub000/internal/sim"
	"github.com/EnderRifter/StarSim-sub000/internal/storage"
)

// Experiment turns a config into generated bodies and a ready simulator.
type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	simulator *sim.Simulator
	bodies    []*physics.Body
	log       *slog.Logger
}

func New(cfg *config.Config, registry *Registry) *Experiment {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Experiment{
		cfg:      cfg,
		registry: registry,
		log:      logging.Discard(),
	}
}

func (e *Experiment) WithLogger(l *slog.Logger) *Experiment {
	e.log = l
	return e
}

// Setup validates the config, resolves every name through the registry and
// generates the initial bodies from cfg.Seed.
func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	integ, err := e.registry.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return err
	}
	updater, err := e.registry.GetUpdater(e.cfg.Updater, e.cfg.Params(), integ)
	if err != nil {
		return err
	}
	gen, err := e.registry.GetGenerator(e.cfg.Generator.Kind)
	if err != nil {
		return err
	}

	e.bodies = gen(rand.New(rand.NewSource(e.cfg.Seed)), GeneratorParams(e.cfg))

	e.simulator = sim.New(updater, sim.WithLogger(e.log))
	for _, m := range e.registry.DefaultMetrics(e.cfg) {
		e.simulator.AddMetric(m)
	}

	e.log.Debug("experiment ready",
		"name", e.cfg.Name,
		"generator", e.cfg.Generator.Kind,
		"bodies", len(e.bodies),
		"seed", e.cfg.Seed)
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, ErrNotSetup
	}
	return e.simulator.Run(ctx, e.bodies, e.cfg.RunConfig())
}

func (e *Experiment) Config() *config.Config    { return e.cfg }
func (e *Experiment) Bodies() []*physics.Body   { return e.bodies }
func (e *Experiment) Simulator() *sim.Simulator { return e.simulator }

// Metadata describes the run for storage.
func (e *Experiment) Metadata() storage.RunMetadata {
	c := e.cfg
	return storage.RunMetadata{
		Name:           c.Name,
		Seed:           c.Seed,
		Updater:        c.Updater,
		Integrator:     c.Integrator,
		Generator:      c.Generator.Kind,
		Bodies:         c.Generator.Bodies,
		Dt:             c.Dt,
		Steps:          c.Steps,
		SampleEvery:    c.SampleEvery,
		G:              c.Physics.G,
		Softening:      c.Physics.Softening,
		Theta:          c.Physics.Theta,
		UniverseRadius: c.Physics.UniverseRadius,
	}
}

func GeneratorParams(c *config.Config) generate.Params {
	return generate.Params{
		Generation:  c.Generation,
		Bodies:      c.Generator.Bodies,
		G:           c.Physics.G,
		CentralMass: c.Generator.CentralMass,
		BodyMass:    c.Generator.BodyMass,
		MinRadius:   c.Generator.MinRadius,
		MaxRadius:   c.Generator.MaxRadius,
		Thickness:   c.Generator.Thickness,
	}
}
