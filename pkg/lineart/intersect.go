package lineart

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/dhconnelly/rtreego"
)

// boxPad keeps zero-thickness triangle bounds valid rtree rectangles.
const boxPad = 1e-9

// triEntry indexes one triangle in the rtree.
type triEntry struct {
	idx  int
	rect rtreego.Rect
}

func (e *triEntry) Bounds() rtreego.Rect { return e.rect }

func triRect(m *mesh, ti int) rtreego.Rect {
	lo := []float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := []float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, vi := range m.tris[ti].v {
		p := m.verts[vi]
		for k, c := range [3]float64{p.X, p.Y, p.Z} {
			lo[k] = math.Min(lo[k], c)
			hi[k] = math.Max(hi[k], c)
		}
	}
	for k := range lo {
		lo[k] -= boxPad
		hi[k] += boxPad
	}
	r, err := rtreego.NewRectFromPoints(rtreego.Point(lo), rtreego.Point(hi))
	if err != nil {
		// Only reachable with non-finite coordinates.
		r, _ = rtreego.NewRect(rtreego.Point{0, 0, 0}, []float64{boxPad, boxPad, boxPad})
	}
	return r
}

// intersections returns the lines along which triangles of different
// objects cross. Candidate pairs come from an rtree over triangle bounds.
func intersections(m *mesh) []edge3 {
	if len(m.tris) == 0 {
		return nil
	}
	multi := false
	for _, t := range m.tris[1:] {
		if t.object != m.tris[0].object {
			multi = true
			break
		}
	}
	if !multi {
		return nil
	}

	tree := rtreego.NewTree(3, 25, 50)
	entries := make([]*triEntry, len(m.tris))
	for i := range m.tris {
		entries[i] = &triEntry{idx: i, rect: triRect(m, i)}
		tree.Insert(entries[i])
	}

	var out []edge3
	for _, e := range entries {
		a := m.tris[e.idx]
		for _, hit := range tree.SearchIntersect(e.rect) {
			j := hit.(*triEntry).idx
			// Each unordered pair once, different objects only.
			if j <= e.idx || m.tris[j].object == a.object {
				continue
			}
			if p, q, ok := triTriSegment(m, e.idx, j); ok {
				out = append(out, edge3{kind: Intersection, a: p, b: q})
			}
		}
	}
	return out
}

func (m *mesh) corners(ti int) [3]v3.Vec {
	t := m.tris[ti]
	return [3]v3.Vec{m.verts[t.v[0]], m.verts[t.v[1]], m.verts[t.v[2]]}
}

// triTriSegment returns the segment shared by triangles i and j. Coplanar
// and touching-only pairs report ok=false.
func triTriSegment(m *mesh, i, j int) (v3.Vec, v3.Vec, bool) {
	ta, tb := m.corners(i), m.corners(j)
	na, nb := m.tris[i].normal, m.tris[j].normal

	a0, a1, ok := planeCrossing(ta, nb, tb[0])
	if !ok {
		return v3.Vec{}, v3.Vec{}, false
	}
	b0, b1, ok := planeCrossing(tb, na, ta[0])
	if !ok {
		return v3.Vec{}, v3.Vec{}, false
	}

	dir := na.Cross(nb)
	if dir.Length() < 1e-12 {
		return v3.Vec{}, v3.Vec{}, false
	}
	// Overlap of the two crossings along the common line.
	ta0, ta1 := ordered(a0.Dot(dir), a1.Dot(dir))
	tb0, tb1 := ordered(b0.Dot(dir), b1.Dot(dir))
	lo, hi := math.Max(ta0, tb0), math.Min(ta1, tb1)
	if hi-lo < 1e-12 {
		return v3.Vec{}, v3.Vec{}, false
	}
	base, span := a0, a1.Sub(a0)
	s0, s1 := a0.Dot(dir), a1.Dot(dir)
	if s1 == s0 {
		return v3.Vec{}, v3.Vec{}, false
	}
	at := func(t float64) v3.Vec {
		return base.Add(span.MulScalar((t - s0) / (s1 - s0)))
	}
	return at(lo), at(hi), true
}

// planeCrossing returns where triangle t crosses the plane through p with
// normal n.
func planeCrossing(t [3]v3.Vec, n, p v3.Vec) (v3.Vec, v3.Vec, bool) {
	var d [3]float64
	pos, neg := 0, 0
	for i, c := range t {
		d[i] = c.Sub(p).Dot(n)
		if math.Abs(d[i]) < 1e-12 {
			d[i] = 0
		}
		switch {
		case d[i] > 0:
			pos++
		case d[i] < 0:
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return v3.Vec{}, v3.Vec{}, false
	}

	var pts []v3.Vec
	for i := 0; i < 3; i++ {
		j := (i + 1) % 3
		switch {
		case d[i] == 0:
			pts = append(pts, t[i])
		case d[i]*d[j] < 0:
			s := d[i] / (d[i] - d[j])
			pts = append(pts, t[i].Add(t[j].Sub(t[i]).MulScalar(s)))
		}
	}
	if len(pts) < 2 {
		return v3.Vec{}, v3.Vec{}, false
	}
	return pts[0], pts[1], true
}

func ordered(a, b float64) (float64, float64) {
	if a > b {
		return b, a
	}
	return a, b
}
