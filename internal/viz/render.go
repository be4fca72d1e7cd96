package viz

import (
	"github.com/EnderRifter/StarSim-sub000/internal/geom"
	"github.com/EnderRifter/StarSim-sub000/internal/octree"
	"github.com/EnderRifter/StarSim-sub000/internal/physics"
)

// Segment is a world-space line.
type Segment struct {
	A, B geom.Vector
}

// CubeWireframe returns the twelve edges of an axis-aligned cube.
func CubeWireframe(center geom.Vector, half float64) []Segment {
	corner := func(i int) geom.Vector {
		sign := func(bit int) float64 {
			if i&bit != 0 {
				return half
			}
			return -half
		}
		return center.Add(geom.Direction(sign(1), sign(2), sign(4)))
	}
	var segs []Segment
	for i := 0; i < 8; i++ {
		for _, bit := range []int{1, 2, 4} {
			if i&bit == 0 {
				segs = append(segs, Segment{corner(i), corner(i | bit)})
			}
		}
	}
	return segs
}

// AxesWireframe returns the three positive coordinate axes.
func AxesWireframe(length float64) []Segment {
	o := geom.Point(0, 0, 0)
	return []Segment{
		{o, geom.Point(length, 0, 0)},
		{o, geom.Point(0, length, 0)},
		{o, geom.Point(0, 0, length)},
	}
}

// TreeWireframe outlines every non-root node of t down to maxDepth levels
// below the root.
func TreeWireframe(t *octree.Tree, maxDepth int) []Segment {
	var segs []Segment
	t.Walk(func(path []octree.Label, info octree.NodeInfo) bool {
		if len(path) > 0 {
			segs = append(segs, CubeWireframe(info.Center, info.Side/2)...)
		}
		return len(path) < maxDepth
	})
	return segs
}

// DrawSegments projects and draws every segment with both ends visible.
func DrawSegments(c *Canvas, cam *Camera, segs []Segment) {
	w, h := c.Pixels()
	m := cam.Matrix(float64(w) / float64(h))
	for _, s := range segs {
		x0, y0, _, ok0 := project(m, s.A, w, h)
		x1, y1, _, ok1 := project(m, s.B, w, h)
		if ok0 && ok1 {
			c.DrawLine(x0, y0, x1, y1)
		}
	}
}

// RenderBodies plots each body as a dot, or a small blob when its mass is at
// least heavy. It returns how many bodies landed on the canvas.
func RenderBodies(c *Canvas, cam *Camera, bodies []*physics.Body, heavy float64) int {
	w, h := c.Pixels()
	m := cam.Matrix(float64(w) / float64(h))
	drawn := 0
	for _, b := range bodies {
		x, y, _, ok := project(m, b.Position, w, h)
		if !ok || x < 0 || y < 0 || x >= w || y >= h {
			continue
		}
		drawn++
		if heavy > 0 && b.Mass >= heavy {
			c.Blob(x, y, 1)
			continue
		}
		c.Set(x, y)
	}
	return drawn
}
