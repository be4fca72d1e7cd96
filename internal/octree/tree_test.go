package octree_test

import (
	"fmt"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/exp/rand"

	"github.com/EnderRifter/StarSim-sub000/internal/geom"
	"github.com/EnderRifter/StarSim-sub000/internal/octree"
	"github.com/EnderRifter/StarSim-sub000/internal/physics"
)

func pathKey(path []octree.Label) string {
	parts := make([]string, len(path))
	for i, l := range path {
		parts[i] = l.String()
	}
	return "/" + strings.Join(parts, "/")
}

func snapshot(tree *octree.Tree) map[string]octree.NodeInfo {
	out := map[string]octree.NodeInfo{}
	tree.Walk(func(path []octree.Label, info octree.NodeInfo) bool {
		out[pathKey(path)] = info
		return true
	})
	return out
}

var _ = Describe("Tree", func() {
	Describe("Insert", func() {
		It("keeps mass and center of mass consistent with inserted bodies", func() {
			bodies := randomBodies(1, 50, 10)
			tree := buildTree(bodies, 40, 0.5)

			com, mass := physics.CenterOfMass(bodies)
			root := tree.Node(tree.Root())
			Expect(root.Count).To(Equal(50))
			Expect(root.Mass).To(BeNumerically("~", mass, 1e-9))
			Expect(root.CenterOfMass.ApproxEqual3(com, 1e-9)).To(BeTrue())
		})

		It("is independent of insertion order", func() {
			bodies := randomBodies(2, 64, 10)
			first := snapshot(buildTree(bodies, 40, 0.5))

			rng := rand.New(rand.NewSource(99))
			shuffled := make([]*physics.Body, len(bodies))
			for i, j := range rng.Perm(len(bodies)) {
				shuffled[i] = bodies[j]
			}
			second := snapshot(buildTree(shuffled, 40, 0.5))

			Expect(second).To(HaveLen(len(first)))
			for key, a := range first {
				b, ok := second[key]
				Expect(ok).To(BeTrue(), "node %s missing", key)
				Expect(b.Count).To(Equal(a.Count))
				Expect(b.Mass).To(BeNumerically("~", a.Mass, 1e-9))
				Expect(b.CenterOfMass.ApproxEqual3(a.CenterOfMass, 1e-9)).To(BeTrue(), "node %s", key)
			}
		})

		It("stops at the first body and splits on the second", func() {
			space := octree.NewSpace()
			tree := octree.NewTree(space, space.NewRoot(geom.Point(0, 0, 0), 8), testGravity, 0.5)

			a := physics.NewBody(0, 1, geom.Point(1, 1, 1), geom.Zero, 1)
			tree.Insert(a)
			root := tree.Node(tree.Root())
			Expect(root.Count).To(Equal(1))
			Expect(root.Occupant).To(BeIdenticalTo(a))
			Expect(root.Children).To(HaveEach(octree.NoNode))
			Expect(root.CenterOfMass.ApproxEqual3(a.Position, 0)).To(BeTrue())

			b := physics.NewBody(0, 2, geom.Point(-1, -1, -1), geom.Zero, 3)
			tree.Insert(b)
			root = tree.Node(tree.Root())
			Expect(root.Count).To(Equal(2))
			Expect(root.Occupant).To(BeIdenticalTo(a), "first body is retained")
			Expect(root.Mass).To(Equal(4.0))
			Expect(root.CenterOfMass.ApproxEqual3(geom.Point(-0.5, -0.5, -0.5), 1e-12)).To(BeTrue())

			ne := tree.Node(tree.Child(tree.Root(), octree.TopNorthEast))
			sw := tree.Node(tree.Child(tree.Root(), octree.BottomSouthWest))
			Expect(ne.Occupant).To(BeIdenticalTo(a))
			Expect(sw.Occupant).To(BeIdenticalTo(b))
			Expect(ne.Side).To(Equal(4.0))
			Expect(tree.Stats().Nodes).To(Equal(3))
		})

		It("terminates for coincident bodies", func() {
			bodies := []*physics.Body{
				physics.NewBody(0, 1, geom.Point(1, 1, 1), geom.Zero, 1),
				physics.NewBody(0, 2, geom.Point(1, 1, 1), geom.Zero, 2),
				physics.NewBody(0, 3, geom.Point(1, 1, 1), geom.Zero, 3),
				physics.NewBody(0, 4, geom.Point(-2, 0, 0), geom.Zero, 1),
			}
			tree := buildTree(bodies, 8, 0)

			st := tree.Stats()
			Expect(st.Buckets).To(Equal(1))
			Expect(st.MaxDepth).To(Equal(octree.MaxDepth))
			Expect(st.Bodies).To(Equal(4))

			for _, b := range bodies {
				f, _ := treeForce(tree, b)
				Expect(f.ApproxEqual3(exactForce(b, bodies), 1e-12)).To(BeTrue(), "body %d", b.ID())
			}
		})
	})

	Describe("AccumulateForce", func() {
		It("adds nothing for a body alone in the tree", func() {
			b := physics.NewBody(0, 1, geom.Point(0, 0, 0), geom.Zero, 1)
			tree := buildTree([]*physics.Body{b}, 8, 0.5)
			f, q := treeForce(tree, b)
			Expect(f).To(Equal(geom.Zero))
			Expect(q.Exact).To(BeZero())
			Expect(q.Approximations).To(BeZero())
		})

		It("converges to the exact all-pairs force as theta goes to zero", func() {
			bodies := randomBodies(3, 200, 10)

			exact := buildTree(bodies, 40, 0)
			for _, b := range bodies {
				want := exactForce(b, bodies)
				got, q := treeForce(exact, b)
				Expect(q.Approximations).To(BeZero())
				Expect(q.Exact).To(Equal(len(bodies) - 1))
				Expect(got.Sub(want).Len3()).To(BeNumerically("<=", 1e-9*want.Len3()))
			}

			fine := buildTree(bodies, 40, 0.05)
			for _, b := range bodies {
				want := exactForce(b, bodies)
				got, _ := treeForce(fine, b)
				Expect(got.Sub(want).Len3()).To(BeNumerically("<=", 1e-2*want.Len3()))
			}
		})

		It("approximates fewer bodies as theta decreases", func() {
			bodies := randomBodies(4, 300, 10)
			thetas := []float64{2, 1.2, 0.8, 0.5, 0.3, 0.1, 0}

			prevApprox, prevExact := -1, -1
			for _, theta := range thetas {
				tree := buildTree(bodies, 40, theta)
				var total octree.Query
				for _, b := range bodies {
					_, q := treeForce(tree, b)
					total.Add(q)
				}
				By(fmt.Sprintf("theta=%.2f approximated=%d exact=%d", theta, total.Approximated, total.Exact))
				if prevApprox >= 0 {
					Expect(total.Approximated).To(BeNumerically("<=", prevApprox))
					Expect(total.Exact).To(BeNumerically(">=", prevExact))
				}
				// an aggregate may include the querying body itself at large theta
				Expect(total.Exact + total.Approximated).To(BeNumerically(">=", len(bodies)*(len(bodies)-1)))
				prevApprox, prevExact = total.Approximated, total.Exact
			}
		})
	})
})

var _ = Describe("Pool", func() {
	It("hands out empty trees over a fresh root", func() {
		pool := octree.NewPool()
		tree := pool.Get(geom.Point(0, 0, 0), 20, testGravity, 0.5)
		for _, b := range randomBodies(5, 30, 5) {
			tree.Insert(b)
		}
		Expect(tree.Stats().Nodes).To(BeNumerically(">", 1))
		pool.Put(tree)

		tree = pool.Get(geom.Point(1, 1, 1), 10, testGravity, 0.7)
		Expect(tree.Stats()).To(Equal(octree.Stats{Nodes: 1, Regions: 1}))
		Expect(tree.Space().Center(tree.RootRegion()).ApproxEqual3(geom.Point(1, 1, 1), 0)).To(BeTrue())
		Expect(tree.Theta()).To(Equal(0.7))
	})
})
