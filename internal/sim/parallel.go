package sim

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/EnderRifter/StarSim-sub000/internal/physics"
)

// Ensemble runs one simulation per seed concurrently. Every run gets its own
// updater and its own bodies.
type Ensemble struct {
	newUpdater func() Updater
	numRuns    int
	seedStart  uint64
	log        *slog.Logger
}

func NewEnsemble(newUpdater func() Updater, numRuns int, seedStart uint64) *Ensemble {
	return &Ensemble{
		newUpdater: newUpdater,
		numRuns:    numRuns,
		seedStart:  seedStart,
		log:        slog.New(slog.DiscardHandler),
	}
}

func (e *Ensemble) WithLogger(l *slog.Logger) *Ensemble {
	e.log = l
	return e
}

// Run generates initial bodies with initial(seed) for each run and returns
// the results in seed order. The first failing run cancels the rest.
func (e *Ensemble) Run(ctx context.Context, cfg Config, initial func(seed uint64) []*physics.Body) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < e.numRuns; i++ {
		seed := e.seedStart + uint64(i)
		g.Go(func() error {
			s := New(e.newUpdater(), WithLogger(e.log.With("seed", seed)))
			res, err := s.Run(ctx, initial(seed), cfg)
			results[i] = res
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
