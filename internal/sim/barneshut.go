package sim

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/EnderRifter/StarSim-sub000/internal/geom"
	"github.com/EnderRifter/StarSim-sub000/internal/integrators"
	"github.com/EnderRifter/StarSim-sub000/internal/octree"
	"github.com/EnderRifter/StarSim-sub000/internal/physics"
)

// BarnesHut rebuilds an octree over a fixed root region every tick and
// resolves each body's force against it. Bodies outside the root region are
// left untouched apart from their force being cleared.
type BarnesHut struct {
	params Params
	integ  integrators.Integrator
	pool   *octree.Pool

	inside []*physics.Body
	last   octree.Query
	stats  octree.Stats
}

func NewBarnesHut(p Params, integ integrators.Integrator) *BarnesHut {
	if integ == nil {
		integ = integrators.NewSymplecticEuler()
	}
	return &BarnesHut{params: p, integ: integ, pool: octree.NewPool()}
}

func (u *BarnesHut) Name() string              { return "barneshut" }
func (u *BarnesHut) Gravity() physics.Gravity { return u.params.Gravity }
func (u *BarnesHut) Params() Params           { return u.params }

// LastQuery sums the query counters of the previous tick.
func (u *BarnesHut) LastQuery() octree.Query { return u.last }

// LastStats describes the tree built on the previous tick.
func (u *BarnesHut) LastStats() octree.Stats { return u.stats }

func (u *BarnesHut) Advance(bodies []*physics.Body, dt float64) {
	tree := u.build(bodies)

	var q octree.Query
	for _, b := range u.inside {
		q.Add(tree.AccumulateForce(b))
		u.integ.Integrate(b, dt)
	}
	u.finish(tree, q)
}

// build inserts every in-bounds body into a fresh tree and clears all forces.
func (u *BarnesHut) build(bodies []*physics.Body) *octree.Tree {
	tree := u.pool.Get(geom.Point(0, 0, 0), 2*u.params.HalfSide(), u.params.Gravity, u.params.Theta)

	u.inside = u.inside[:0]
	for _, b := range bodies {
		if tree.Contains(b.Position) {
			tree.Insert(b)
			u.inside = append(u.inside, b)
		}
	}
	for _, b := range bodies {
		b.ResetForce()
	}
	return tree
}

func (u *BarnesHut) finish(tree *octree.Tree, q octree.Query) {
	u.last = q
	u.stats = tree.Stats()
	u.pool.Put(tree)
}

// ParallelBarnesHut builds the tree on the calling goroutine and then runs
// the read-only force queries on a bounded group of workers. Integration
// starts after every query has finished, which gives the same result as
// BarnesHut because queries only read positions snapshotted at insertion.
type ParallelBarnesHut struct {
	BarnesHut
	workers  int
	minChunk int
	queries  []octree.Query
}

func NewParallelBarnesHut(p Params, integ integrators.Integrator, workers int) *ParallelBarnesHut {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &ParallelBarnesHut{
		BarnesHut: *NewBarnesHut(p, integ),
		workers:   workers,
		minChunk:  64,
	}
}

func (u *ParallelBarnesHut) Name() string { return "parallel" }

func (u *ParallelBarnesHut) Advance(bodies []*physics.Body, dt float64) {
	tree := u.build(bodies)

	n := len(u.inside)
	if cap(u.queries) < n {
		u.queries = make([]octree.Query, n)
	}
	u.queries = u.queries[:n]

	parallelFor(n, u.workers, u.minChunk, func(start, end int) {
		for i := start; i < end; i++ {
			u.queries[i] = tree.AccumulateForce(u.inside[i])
		}
	})

	var q octree.Query
	for i, b := range u.inside {
		q.Add(u.queries[i])
		u.integ.Integrate(b, dt)
	}
	u.finish(tree, q)
}

var _ Updater = (*ParallelBarnesHut)(nil)

// parallelFor splits [0, n) into contiguous chunks of at least minChunk
// items and runs fn on up to workers goroutines.
func parallelFor(n, workers, minChunk int, fn func(start, end int)) {
	if n <= minChunk || workers <= 1 {
		fn(0, n)
		return
	}
	if n/minChunk < workers {
		workers = n / minChunk
	}
	chunk := (n + workers - 1) / workers

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			fn(start, end)
			return nil
		})
	}
	_ = g.Wait()
}
