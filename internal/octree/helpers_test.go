package octree_test

import (
	"golang.org/x/exp/rand"

	"github.com/EnderRifter/StarSim-sub000/internal/geom"
	"github.com/EnderRifter/StarSim-sub000/internal/octree"
	"github.com/EnderRifter/StarSim-sub000/internal/physics"
)

var testGravity = physics.NewGravity(1.0, 0.01)

func randomBodies(seed uint64, n int, extent float64) []*physics.Body {
	rng := rand.New(rand.NewSource(seed))
	bodies := make([]*physics.Body, n)
	for i := range bodies {
		pos := geom.Point(
			(rng.Float64()*2-1)*extent,
			(rng.Float64()*2-1)*extent,
			(rng.Float64()*2-1)*extent,
		)
		bodies[i] = physics.NewBody(1, uint64(i), pos, geom.Zero, 0.5+rng.Float64())
	}
	return bodies
}

func buildTree(bodies []*physics.Body, side, theta float64) *octree.Tree {
	space := octree.NewSpace()
	root := space.NewRoot(geom.Point(0, 0, 0), side)
	tree := octree.NewTree(space, root, testGravity, theta)
	for _, b := range bodies {
		if tree.Contains(b.Position) {
			tree.Insert(b)
		}
	}
	return tree
}

func exactForce(b *physics.Body, bodies []*physics.Body) geom.Vector {
	f := geom.Zero
	for _, o := range bodies {
		if o.Same(b) {
			continue
		}
		f = f.Add(testGravity.Between(b, o))
	}
	return f
}

func treeForce(tree *octree.Tree, b *physics.Body) (geom.Vector, octree.Query) {
	b.ResetForce()
	q := tree.AccumulateForce(b)
	return b.Force, q
}
