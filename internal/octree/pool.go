package octree

import (
	"sync"

	"github.com/EnderRifter/StarSim-sub000/internal/geom"
	"github.com/EnderRifter/StarSim-sub000/internal/physics"
)

// Pool recycles tree and region storage between ticks.
type Pool struct {
	pool sync.Pool
}

func NewPool() *Pool {
	return &Pool{
		pool: sync.Pool{
			New: func() interface{} {
				return &Tree{space: NewSpace(), nodes: make([]node, 0, 64)}
			},
		},
	}
}

// Get returns an empty tree over a fresh root region of the given side
// centered at center.
func (p *Pool) Get(center geom.Vector, side float64, g physics.Gravity, theta float64) *Tree {
	t := p.pool.Get().(*Tree)
	t.space.Reset()
	root := t.space.NewRoot(center, side)
	t.reset(root, g, theta)
	return t
}

func (p *Pool) Put(t *Tree) {
	clear(t.nodes)
	t.nodes = t.nodes[:0]
	t.space.Reset()
	p.pool.Put(t)
}
