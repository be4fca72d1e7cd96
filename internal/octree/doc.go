// Package octree implements the Barnes-Hut spatial partition used to
// approximate gravitational forces in O(n log n).
//
// Two arenas cooperate:
//
//   - [Space] holds axis-aligned cubic regions. Each region lazily creates
//     and caches up to eight children, one per [Label].
//   - [Tree] overlays one mass-aggregating node per region it touches. Nodes
//     keep a running body count, total mass and center of mass, plus the
//     first body inserted (used only to skip self-interaction).
//
// Both arenas address entries by integer handle ([RegionID], [NodeID]); a
// parent stores child handles in an array indexed by [Label] and children
// never point back. A tree is built once per tick and discarded, so storage
// is recycled through [Pool] instead of being reallocated.
//
// # Approximation
//
// [Tree.AccumulateForce] walks the tree for one body. A single-body node is
// applied exactly, a node whose side s satisfies s² < θ²·d² (d being the
// distance to its center of mass) is applied as one aggregate point mass,
// anything else is refined into its children. θ = 0 degenerates to the exact
// all-pairs sum.
//
// # Thread Safety
//
// Insertion mutates running aggregates and must be done by one goroutine.
// Once built, AccumulateForce only reads the tree and may be called
// concurrently for distinct bodies.
package octree
