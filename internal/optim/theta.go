package optim

import (
	"time"

	"github.com/EnderRifter/StarSim-sub000/internal/geom"
	"github.com/EnderRifter/StarSim-sub000/internal/octree"
	"github.com/EnderRifter/StarSim-sub000/internal/physics"
)

// ThetaResult compares tree forces at one opening angle against direct
// summation.
type ThetaResult struct {
	Theta          float64
	MaxRelError    float64
	MeanRelError   float64
	Exact          int
	Approximations int
	Elapsed        time.Duration
}

// ThetaSweep builds a tree over bodies for every theta and measures the
// force error relative to exact summation. Bodies outside the root cube of
// half side halfSide are ignored. The bodies are not modified.
func ThetaSweep(bodies []*physics.Body, g physics.Gravity, halfSide float64, thetas []float64) []ThetaResult {
	inside := make([]*physics.Body, 0, len(bodies))
	probe := octree.NewSpace()
	root := probe.NewRoot(geom.Point(0, 0, 0), 2*halfSide)
	for _, b := range bodies {
		if probe.Contains(root, b.Position) {
			inside = append(inside, b.Clone())
		}
	}

	exact := make([]geom.Vector, len(inside))
	for i, b := range inside {
		for j, o := range inside {
			if i != j {
				exact[i] = exact[i].Add(g.Between(b, o))
			}
		}
	}

	pool := octree.NewPool()
	results := make([]ThetaResult, 0, len(thetas))
	for _, theta := range thetas {
		start := time.Now()
		tree := pool.Get(geom.Point(0, 0, 0), 2*halfSide, g, theta)
		for _, b := range inside {
			tree.Insert(b)
		}

		res := ThetaResult{Theta: theta}
		var q octree.Query
		sum := 0.0
		for i, b := range inside {
			b.ResetForce()
			q.Add(tree.AccumulateForce(b))

			ref := exact[i].Len3()
			if ref == 0 {
				continue
			}
			rel := b.Force.Dist3(exact[i]) / ref
			sum += rel
			if rel > res.MaxRelError {
				res.MaxRelError = rel
			}
		}
		res.Elapsed = time.Since(start)
		pool.Put(tree)

		if len(inside) > 0 {
			res.MeanRelError = sum / float64(len(inside))
		}
		res.Exact = q.Exact
		res.Approximations = q.Approximations
		results = append(results, res)
	}

	return results
}
