package lineart

import (
	"math"

	"github.com/chazu/stager/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// triangle is a welded world-space triangle.
type triangle struct {
	v      [3]int // indices into mesh.verts
	object int    // index of the owning scene object
	normal v3.Vec
}

// mesh is every scene triangle in one vertex pool.
type mesh struct {
	verts []v3.Vec
	tris  []triangle
}

// weldKey quantizes a position so vertices produced separately for the
// same point share an index.
type weldKey [3]int64

// weld merges the world-space triangles of objs. Vertices closer than a
// small fraction of the scene size are merged; degenerate triangles are
// dropped.
func weld(objs []*scene.Object) *mesh {
	m := &mesh{}
	tol := weldTolerance(objs)
	index := make(map[weldKey]int)
	key := func(p v3.Vec) weldKey {
		return weldKey{
			int64(math.Round(p.X / tol)),
			int64(math.Round(p.Y / tol)),
			int64(math.Round(p.Z / tol)),
		}
	}

	for oi, o := range objs {
		for t := 0; t < o.TriangleCount(); t++ {
			w := o.WorldTriangle(t)
			var tri triangle
			tri.object = oi
			for i, p := range w {
				k := key(p)
				idx, ok := index[k]
				if !ok {
					idx = len(m.verts)
					index[k] = idx
					m.verts = append(m.verts, p)
				}
				tri.v[i] = idx
			}
			if tri.v[0] == tri.v[1] || tri.v[1] == tri.v[2] || tri.v[0] == tri.v[2] {
				continue
			}
			n := w[1].Sub(w[0]).Cross(w[2].Sub(w[0]))
			l := n.Length()
			if l < 1e-18 {
				continue
			}
			tri.normal = n.MulScalar(1 / l)
			m.tris = append(m.tris, tri)
		}
	}
	return m
}

// weldTolerance is 1e-6 of the largest object extent, and never zero.
func weldTolerance(objs []*scene.Object) float64 {
	extent := 0.0
	for _, o := range objs {
		size := o.LocalBounds().Size()
		extent = math.Max(extent, math.Max(size.X, math.Max(size.Y, size.Z)))
	}
	if extent <= 0 || math.IsInf(extent, 0) || math.IsNaN(extent) {
		extent = 1
	}
	return extent * 1e-6
}

// edgeKey is an undirected edge, lower vertex index first.
type edgeKey [2]int

func newEdgeKey(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// adjacency maps every edge to the triangles that use it.
func (m *mesh) adjacency() map[edgeKey][]int {
	adj := make(map[edgeKey][]int, len(m.tris)*3/2)
	for ti, t := range m.tris {
		for i := 0; i < 3; i++ {
			k := newEdgeKey(t.v[i], t.v[(i+1)%3])
			adj[k] = append(adj[k], ti)
		}
	}
	return adj
}
