package lineart

import (
	"math"
	"sort"

	"github.com/chazu/stager/pkg/framing"
	"github.com/chazu/stager/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// edge3 is a classified world-space line before hidden-line removal.
type edge3 struct {
	kind Kind
	a, b v3.Vec
}

// classify walks the mesh edges and keeps the ones that are feature lines
// for a camera looking along forward. An edge takes the first matching
// kind in the order contour, material, crease.
func classify(m *mesh, forward v3.Vec, la scene.LineArt) []edge3 {
	adj := m.adjacency()
	// Dihedral angles above this are creases; a flat surface has 0.
	creaseLimit := framing.Radians(180 - la.CreaseAngle)

	keys := make([]edgeKey, 0, len(adj))
	for k := range adj {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})

	var out []edge3
	for _, k := range keys {
		kind, ok := edgeKind(m, adj[k], forward, la, creaseLimit)
		if !ok {
			continue
		}
		out = append(out, edge3{kind: kind, a: m.verts[k[0]], b: m.verts[k[1]]})
	}
	return out
}

func edgeKind(m *mesh, faces []int, forward v3.Vec, la scene.LineArt, creaseLimit float64) (Kind, bool) {
	if len(faces) == 1 {
		return Contour, la.Contour
	}

	front, back := false, false
	objects := make(map[int]bool, 2)
	for _, f := range faces {
		if m.tris[f].normal.Dot(forward) < 0 {
			front = true
		} else {
			back = true
		}
		objects[m.tris[f].object] = true
	}

	if la.Contour && front && back {
		return Contour, true
	}
	if la.Material && len(objects) > 1 {
		return Material, true
	}
	if la.Crease && len(faces) == 2 {
		n0, n1 := m.tris[faces[0]].normal, m.tris[faces[1]].normal
		angle := math.Acos(math.Max(-1, math.Min(1, n0.Dot(n1))))
		if angle > creaseLimit {
			return Crease, true
		}
	}
	// Non-manifold edges with more than two faces are always drawn.
	if la.Crease && len(faces) > 2 {
		return Crease, true
	}
	return 0, false
}
