package lineart

import "math"

// Polyline is a chain of connected segments of one kind.
type Polyline struct {
	Kind   Kind
	Points []Point
}

// chainKey rounds a point to 1/1000 px for endpoint matching.
type chainKey [2]int64

func keyOf(p Point) chainKey {
	return chainKey{int64(math.Round(p[0] * 1000)), int64(math.Round(p[1] * 1000))}
}

// Polylines joins segments of the same kind that share endpoints. Each
// segment is used exactly once; the output order follows the input.
func (d *Drawing) Polylines() []Polyline {
	type end struct {
		seg   int
		start bool
	}
	ends := make(map[Kind]map[chainKey][]end)
	for i, s := range d.Segments {
		m := ends[s.Kind]
		if m == nil {
			m = make(map[chainKey][]end)
			ends[s.Kind] = m
		}
		m[keyOf(s.A)] = append(m[keyOf(s.A)], end{i, true})
		m[keyOf(s.B)] = append(m[keyOf(s.B)], end{i, false})
	}

	used := make([]bool, len(d.Segments))
	// next finds an unused segment of kind k touching p and returns its far
	// endpoint.
	next := func(k Kind, p Point) (Point, bool) {
		for _, e := range ends[k][keyOf(p)] {
			if used[e.seg] {
				continue
			}
			used[e.seg] = true
			if e.start {
				return d.Segments[e.seg].B, true
			}
			return d.Segments[e.seg].A, true
		}
		return Point{}, false
	}

	var out []Polyline
	for i, s := range d.Segments {
		if used[i] {
			continue
		}
		used[i] = true
		pts := []Point{s.A, s.B}
		for p, ok := next(s.Kind, s.B); ok; p, ok = next(s.Kind, p) {
			pts = append(pts, p)
		}
		var head []Point
		for p, ok := next(s.Kind, s.A); ok; p, ok = next(s.Kind, p) {
			head = append(head, p)
		}
		if len(head) > 0 {
			rev := make([]Point, 0, len(head)+len(pts))
			for j := len(head) - 1; j >= 0; j-- {
				rev = append(rev, head[j])
			}
			pts = append(rev, pts...)
		}
		out = append(out, Polyline{Kind: s.Kind, Points: pts})
	}
	return out
}

// clipSegment clips a segment to [0,w]×[0,h] (Liang-Barsky).
func clipSegment(a, b Point, w, h float64) (Point, Point, bool) {
	t0, t1 := 0.0, 1.0
	dx, dy := b[0]-a[0], b[1]-a[1]
	for _, c := range [...][2]float64{
		{-dx, a[0]},
		{dx, w - a[0]},
		{-dy, a[1]},
		{dy, h - a[1]},
	} {
		p, q := c[0], c[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			t0 = math.Max(t0, r)
		} else {
			t1 = math.Min(t1, r)
		}
		if t0 > t1 {
			return a, b, false
		}
	}
	return Point{a[0] + t0*dx, a[1] + t0*dy}, Point{a[0] + t1*dx, a[1] + t1*dy}, true
}

// Clipped returns a copy of d with every segment clipped to the frame.
func (d *Drawing) Clipped() *Drawing {
	out := &Drawing{Width: d.Width, Height: d.Height, PixelSize: d.PixelSize}
	for _, s := range d.Segments {
		a, b, ok := clipSegment(s.A, s.B, float64(d.Width), float64(d.Height))
		if ok && a != b {
			out.Segments = append(out.Segments, Segment{Kind: s.Kind, A: a, B: b})
		}
	}
	return out
}
