package octree_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/exp/rand"

	"github.com/EnderRifter/StarSim-sub000/internal/geom"
	"github.com/EnderRifter/StarSim-sub000/internal/octree"
)

var _ = Describe("Label", func() {
	It("covers all eight sign combinations exactly once", func() {
		seen := map[[3]float64]octree.Label{}
		for _, l := range octree.Labels {
			x, y, z := l.Sign()
			key := [3]float64{x, y, z}
			Expect(seen).NotTo(HaveKey(key), "duplicate sign for %s", l)
			seen[key] = l
		}
		Expect(seen).To(HaveLen(8))
	})

	It("names octants by vertical half and quadrant", func() {
		x, y, z := octree.TopNorthEast.Sign()
		Expect([]float64{x, y, z}).To(Equal([]float64{1, 1, 1}))
		x, y, z = octree.BottomSouthWest.Sign()
		Expect([]float64{x, y, z}).To(Equal([]float64{-1, -1, -1}))
		Expect(octree.TopSouthEast.String()).To(Equal("top-south-east"))
	})

	It("panics on out-of-range labels", func() {
		Expect(func() { octree.Label(8).Sign() }).To(PanicWith(MatchError(octree.ErrInvalidLabel)))
	})
})

var _ = Describe("Space", func() {
	var (
		space *octree.Space
		root  octree.RegionID
	)

	BeforeEach(func() {
		space = octree.NewSpace()
		root = space.NewRoot(geom.Point(1, 2, 3), 8)
	})

	Describe("Contains", func() {
		It("includes its own center and boundary", func() {
			Expect(space.Contains(root, geom.Point(1, 2, 3))).To(BeTrue())
			Expect(space.Contains(root, geom.Point(5, 6, 7))).To(BeTrue())
			Expect(space.Contains(root, geom.Point(-3, -2, -1))).To(BeTrue())
		})

		It("excludes points more than half a side away on any axis", func() {
			Expect(space.Contains(root, geom.Point(5.001, 2, 3))).To(BeFalse())
			Expect(space.Contains(root, geom.Point(1, -2.001, 3))).To(BeFalse())
			Expect(space.Contains(root, geom.Point(1, 2, 7.5))).To(BeFalse())
		})
	})

	Describe("Child", func() {
		It("halves the side and offsets the center by a quarter side", func() {
			for _, l := range octree.Labels {
				c := space.Child(root, l)
				x, y, z := l.Sign()
				Expect(space.Side(c)).To(Equal(4.0))
				Expect(space.Center(c).ApproxEqual3(geom.Point(1+2*x, 2+2*y, 3+2*z), 1e-12)).To(BeTrue())
			}
		})

		It("creates children lazily and caches them", func() {
			Expect(space.HasChild(root, octree.TopNorthWest)).To(BeFalse())
			first := space.Child(root, octree.TopNorthWest)
			Expect(space.HasChild(root, octree.TopNorthWest)).To(BeTrue())
			Expect(space.Child(root, octree.TopNorthWest)).To(Equal(first))
			Expect(space.Len()).To(Equal(2))
		})

		It("fails loudly on an invalid label", func() {
			Expect(func() { space.Child(root, octree.Label(42)) }).To(PanicWith(MatchError(octree.ErrInvalidLabel)))
		})

		It("partitions the parent volume", func() {
			children := make([]octree.RegionID, 0, 8)
			volume := 0.0
			for _, l := range octree.Labels {
				c := space.Child(root, l)
				children = append(children, c)
				volume += math.Pow(space.Side(c), 3)
			}
			Expect(volume).To(BeNumerically("~", math.Pow(space.Side(root), 3), 1e-9))

			rng := rand.New(rand.NewSource(7))
			for i := 0; i < 2000; i++ {
				p := geom.Point(1+(rng.Float64()*2-1)*4, 2+(rng.Float64()*2-1)*4, 3+(rng.Float64()*2-1)*4)
				owners := 0
				for _, c := range children {
					if space.Contains(c, p) {
						owners++
					}
				}
				Expect(owners).To(Equal(1), "point %v", p)
				Expect(space.Contains(space.Child(root, space.LabelFor(root, p)), p)).To(BeTrue())
			}
		})
	})

	It("drops every region on Reset", func() {
		space.Child(root, octree.BottomNorthEast)
		space.Reset()
		Expect(space.Len()).To(Equal(0))
	})
})
