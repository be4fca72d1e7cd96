package octree

import (
	"errors"
	"fmt"
)

// Label names one of the eight octants of a cube: a vertical half
// (Top = +Y) and a horizontal quadrant (North = +Z, East = +X).
type Label uint8

const (
	TopNorthWest Label = iota
	TopNorthEast
	TopSouthEast
	TopSouthWest
	BottomNorthWest
	BottomNorthEast
	BottomSouthEast
	BottomSouthWest

	numLabels
)

// Labels lists every octant exactly once.
var Labels = [numLabels]Label{
	TopNorthWest, TopNorthEast, TopSouthEast, TopSouthWest,
	BottomNorthWest, BottomNorthEast, BottomSouthEast, BottomSouthWest,
}

var ErrInvalidLabel = errors.New("octree: invalid octant label")

var labelNames = [numLabels]string{
	"top-north-west", "top-north-east", "top-south-east", "top-south-west",
	"bottom-north-west", "bottom-north-east", "bottom-south-east", "bottom-south-west",
}

func (l Label) Valid() bool { return l < numLabels }

func (l Label) String() string {
	if !l.Valid() {
		return fmt.Sprintf("label(%d)", uint8(l))
	}
	return labelNames[l]
}

func (l Label) Top() bool { return l < BottomNorthWest }

func (l Label) North() bool {
	q := l % 4
	return q == 0 || q == 1
}

func (l Label) East() bool {
	q := l % 4
	return q == 1 || q == 2
}

// Sign returns the unit offset direction of the octant along x, y and z.
func (l Label) Sign() (x, y, z float64) {
	mustValid(l)
	x, y, z = -1, -1, -1
	if l.East() {
		x = 1
	}
	if l.Top() {
		y = 1
	}
	if l.North() {
		z = 1
	}
	return x, y, z
}

func labelOf(east, top, north bool) Label {
	var q Label
	switch {
	case north && !east:
		q = 0
	case north && east:
		q = 1
	case !north && east:
		q = 2
	default:
		q = 3
	}
	if !top {
		q += 4
	}
	return q
}

func mustValid(l Label) {
	if !l.Valid() {
		panic(fmt.Errorf("%w: %d", ErrInvalidLabel, uint8(l)))
	}
}
