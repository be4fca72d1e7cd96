package octree

import "github.com/EnderRifter/StarSim-sub000/internal/geom"

// RegionID addresses a region inside a Space.
type RegionID int32

const NoRegion RegionID = -1

type region struct {
	center   geom.Vector
	side     float64
	children [numLabels]RegionID
}

func newRegion(center geom.Vector, side float64) region {
	r := region{center: center, side: side}
	for i := range r.children {
		r.children[i] = NoRegion
	}
	return r
}

// Space is an arena of cubic regions. Regions are only ever added; Reset
// drops all of them at once while keeping the backing storage.
type Space struct {
	regions []region
}

func NewSpace() *Space {
	return &Space{regions: make([]region, 0, 64)}
}

func (s *Space) Reset() { s.regions = s.regions[:0] }

func (s *Space) Len() int { return len(s.regions) }

// NewRoot adds a parentless region.
func (s *Space) NewRoot(center geom.Vector, side float64) RegionID {
	id := RegionID(len(s.regions))
	s.regions = append(s.regions, newRegion(geom.Point(center.X(), center.Y(), center.Z()), side))
	return id
}

func (s *Space) Center(id RegionID) geom.Vector { return s.regions[id].center }
func (s *Space) Side(id RegionID) float64       { return s.regions[id].side }

// Contains reports whether p lies inside the region, boundary included.
func (s *Space) Contains(id RegionID, p geom.Vector) bool {
	r := &s.regions[id]
	return p.InCube(r.center, r.side/2)
}

// HasChild reports whether the child for l was already created.
func (s *Space) HasChild(id RegionID, l Label) bool {
	mustValid(l)
	return s.regions[id].children[l] != NoRegion
}

// Child returns the child region for l, creating it on first use. Its side
// is half the parent's and its center is offset by a quarter side on every
// axis. An invalid label panics.
func (s *Space) Child(id RegionID, l Label) RegionID {
	mustValid(l)
	if c := s.regions[id].children[l]; c != NoRegion {
		return c
	}
	parent := s.regions[id]
	q := parent.side / 4
	sx, sy, sz := l.Sign()
	center := parent.center.Add(geom.Direction(sx*q, sy*q, sz*q))

	c := RegionID(len(s.regions))
	s.regions = append(s.regions, newRegion(center, parent.side/2))
	s.regions[id].children[l] = c
	return c
}

// LabelFor returns the octant of p relative to the region center. A
// coordinate equal to the center falls in the positive half.
func (s *Space) LabelFor(id RegionID, p geom.Vector) Label {
	c := s.regions[id].center
	return labelOf(p.X() >= c.X(), p.Y() >= c.Y(), p.Z() >= c.Z())
}
