package octree

import (
	"github.com/EnderRifter/StarSim-sub000/internal/geom"
	"github.com/EnderRifter/StarSim-sub000/internal/physics"
)

// NodeID addresses a node inside a Tree.
type NodeID int32

const NoNode NodeID = -1

// MaxDepth bounds subdivision. Bodies at identical positions would otherwise
// split forever; a node at this depth keeps its bodies in a flat bucket.
const MaxDepth = 64

type member struct {
	body *physics.Body
	mass float64
	pos  geom.Vector
}

type node struct {
	region   RegionID
	depth    int
	count    int
	mass     float64
	com      geom.Vector
	occupant *physics.Body
	children [numLabels]NodeID
	bucket   []member
}

func newNode(r RegionID, depth int) node {
	n := node{region: r, depth: depth}
	for i := range n.children {
		n.children[i] = NoNode
	}
	return n
}

// Tree aggregates mass over the regions of a Space.
type Tree struct {
	space   *Space
	nodes   []node
	root    NodeID
	gravity physics.Gravity
	theta   float64
	depth   int
}

// NewTree creates an empty tree whose root node shadows the given region.
func NewTree(space *Space, root RegionID, g physics.Gravity, theta float64) *Tree {
	t := &Tree{space: space, nodes: make([]node, 0, 64)}
	t.reset(root, g, theta)
	return t
}

func (t *Tree) reset(root RegionID, g physics.Gravity, theta float64) {
	t.nodes = append(t.nodes[:0], newNode(root, 0))
	t.root = 0
	t.gravity = g
	t.theta = theta
	t.depth = 0
}

func (t *Tree) Space() *Space            { return t.space }
func (t *Tree) Root() NodeID             { return t.root }
func (t *Tree) RootRegion() RegionID     { return t.nodes[t.root].region }
func (t *Tree) Theta() float64           { return t.theta }
func (t *Tree) Gravity() physics.Gravity { return t.gravity }

// Contains reports whether p lies inside the root region.
func (t *Tree) Contains(p geom.Vector) bool {
	return t.space.Contains(t.RootRegion(), p)
}

// Insert adds b below the root. The caller is responsible for only inserting
// bodies inside the root region.
func (t *Tree) Insert(b *physics.Body) {
	t.insert(t.root, b)
}

func (t *Tree) insert(id NodeID, b *physics.Body) {
	n := &t.nodes[id]

	total := n.mass + b.Mass
	if total != 0 {
		n.com = n.com.Scale(n.mass).Add(b.Position.Scale(b.Mass)).Div(total)
	} else {
		n.com = b.Position
	}
	n.mass = total
	n.count++

	if n.count == 1 {
		n.occupant = b
		return
	}

	if n.depth >= MaxDepth {
		if n.count == 2 {
			n.bucket = append(n.bucket, member{n.occupant, n.occupant.Mass, n.occupant.Position})
		}
		n.bucket = append(n.bucket, member{b, b.Mass, b.Position})
		return
	}

	// n is invalidated by child creation below.
	count, occupant := n.count, n.occupant

	t.insert(t.childFor(id, b.Position), b)
	if count == 2 {
		t.insert(t.childFor(id, occupant.Position), occupant)
	}
}

func (t *Tree) childFor(id NodeID, p geom.Vector) NodeID {
	return t.child(id, t.space.LabelFor(t.nodes[id].region, p))
}

func (t *Tree) child(id NodeID, l Label) NodeID {
	mustValid(l)
	if c := t.nodes[id].children[l]; c != NoNode {
		return c
	}
	r := t.space.Child(t.nodes[id].region, l)
	depth := t.nodes[id].depth + 1

	c := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, newNode(r, depth))
	t.nodes[id].children[l] = c
	if depth > t.depth {
		t.depth = depth
	}
	return c
}

// Query counts how a force query was resolved.
type Query struct {
	Exact          int // single bodies applied directly
	Approximations int // subtrees applied as one aggregate mass
	Approximated   int // bodies inside those subtrees
	Visited        int
}

func (q *Query) Add(o Query) {
	q.Exact += o.Exact
	q.Approximations += o.Approximations
	q.Approximated += o.Approximated
	q.Visited += o.Visited
}

// AccumulateForce adds to ref.Force the pull of everything in the tree.
func (t *Tree) AccumulateForce(ref *physics.Body) Query {
	var q Query
	t.accumulate(t.root, ref, &q)
	return q
}

func (t *Tree) accumulate(id NodeID, ref *physics.Body, q *Query) {
	n := &t.nodes[id]
	if n.count == 0 {
		return
	}
	q.Visited++

	if n.count == 1 {
		if !n.occupant.Same(ref) {
			ref.AddForce(t.gravity.Force(n.mass, n.com, ref))
			q.Exact++
		}
		return
	}

	s := t.space.Side(n.region)
	if s*s < t.theta*t.theta*n.com.Dist3Sq(ref.Position) {
		ref.AddForce(t.gravity.Force(n.mass, n.com, ref))
		q.Approximations++
		q.Approximated += n.count
		return
	}

	if n.bucket != nil {
		for _, m := range n.bucket {
			if m.body.Same(ref) {
				continue
			}
			ref.AddForce(t.gravity.Force(m.mass, m.pos, ref))
			q.Exact++
		}
		return
	}

	for _, c := range n.children {
		if c != NoNode {
			t.accumulate(c, ref, q)
		}
	}
}

// NodeInfo is a read-only view of one node.
type NodeInfo struct {
	ID           NodeID
	Region       RegionID
	Depth        int
	Count        int
	Mass         float64
	CenterOfMass geom.Vector
	Center       geom.Vector
	Side         float64
	Occupant     *physics.Body
	Children     [numLabels]NodeID
}

func (t *Tree) Node(id NodeID) NodeInfo {
	n := &t.nodes[id]
	return NodeInfo{
		ID:           id,
		Region:       n.region,
		Depth:        n.depth,
		Count:        n.count,
		Mass:         n.mass,
		CenterOfMass: n.com,
		Center:       t.space.Center(n.region),
		Side:         t.space.Side(n.region),
		Occupant:     n.occupant,
		Children:     n.children,
	}
}

// Child returns the child node for l or NoNode.
func (t *Tree) Child(id NodeID, l Label) NodeID {
	mustValid(l)
	return t.nodes[id].children[l]
}

// Walk visits nodes depth first in label order. path holds the labels from
// the root; it is reused between calls. Returning false skips the subtree.
func (t *Tree) Walk(fn func(path []Label, info NodeInfo) bool) {
	path := make([]Label, 0, t.depth)
	t.walk(t.root, path, fn)
}

func (t *Tree) walk(id NodeID, path []Label, fn func([]Label, NodeInfo) bool) {
	if !fn(path, t.Node(id)) {
		return
	}
	for _, l := range Labels {
		if c := t.nodes[id].children[l]; c != NoNode {
			t.walk(c, append(path, l), fn)
		}
	}
}

// Stats describes the shape of the current build.
type Stats struct {
	Bodies   int
	Nodes    int
	Regions  int
	MaxDepth int
	Buckets  int
}

func (t *Tree) Stats() Stats {
	st := Stats{
		Bodies:   t.nodes[t.root].count,
		Nodes:    len(t.nodes),
		Regions:  t.space.Len(),
		MaxDepth: t.depth,
	}
	for i := range t.nodes {
		if t.nodes[i].bucket != nil {
			st.Buckets++
		}
	}
	return st
}
