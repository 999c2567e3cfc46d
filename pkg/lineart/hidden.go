package lineart

import (
	"math"

	"github.com/chazu/stager/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// sampleStep is the spacing, in pixels, of visibility samples along a line.
const sampleStep = 0.5

// depthBuffer holds the nearest surface depth per pixel.
type depthBuffer struct {
	cam  scene.Camera
	w, h int
	z    []float64
	bias float64 // depth slack for lines lying on the surface
}

func newDepthBuffer(cam scene.Camera, m *mesh) *depthBuffer {
	zb := &depthBuffer{
		cam:  cam,
		w:    cam.ResX,
		h:    cam.ResY,
		z:    make([]float64, cam.ResX*cam.ResY),
		bias: 2 * cam.PixelSize(),
	}
	for i := range zb.z {
		zb.z[i] = math.Inf(1)
	}
	for ti := range m.tris {
		zb.fill(m.corners(ti))
	}
	return zb
}

// fill rasterizes one triangle, keeping the nearest depth per pixel
// center. Depth is linear in screen space for an orthographic camera.
func (zb *depthBuffer) fill(t [3]v3.Vec) {
	var px, py, pz [3]float64
	for i, p := range t {
		px[i], py[i], pz[i] = zb.cam.Project(p)
	}
	area := (px[1]-px[0])*(py[2]-py[0]) - (px[2]-px[0])*(py[1]-py[0])
	if math.Abs(area) < 1e-12 {
		return
	}

	x0 := max(0, int(math.Floor(min(px[0], px[1], px[2]))))
	x1 := min(zb.w-1, int(math.Ceil(max(px[0], px[1], px[2]))))
	y0 := max(0, int(math.Floor(min(py[0], py[1], py[2]))))
	y1 := min(zb.h-1, int(math.Ceil(max(py[0], py[1], py[2]))))

	for y := y0; y <= y1; y++ {
		cy := float64(y) + 0.5
		for x := x0; x <= x1; x++ {
			cx := float64(x) + 0.5
			w0 := ((px[1]-cx)*(py[2]-cy) - (px[2]-cx)*(py[1]-cy)) / area
			w1 := ((px[2]-cx)*(py[0]-cy) - (px[0]-cx)*(py[2]-cy)) / area
			w2 := 1 - w0 - w1
			if w0 < -1e-9 || w1 < -1e-9 || w2 < -1e-9 {
				continue
			}
			d := w0*pz[0] + w1*pz[1] + w2*pz[2]
			if !zb.cam.InClip(d) {
				continue
			}
			if i := y*zb.w + x; d < zb.z[i] {
				zb.z[i] = d
			}
		}
	}
}

// nearby returns the farthest depth stored in the 3×3 pixels around
// (x, y). Using the farthest neighbour keeps silhouette lines, which sit
// between a near surface and whatever lies behind it. Pixels outside the
// frame report +Inf.
func (zb *depthBuffer) nearby(x, y float64) float64 {
	ix, iy := int(math.Floor(x)), int(math.Floor(y))
	far := math.Inf(-1)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			qx, qy := ix+dx, iy+dy
			if qx < 0 || qy < 0 || qx >= zb.w || qy >= zb.h {
				return math.Inf(1)
			}
			far = math.Max(far, zb.z[qy*zb.w+qx])
		}
	}
	return far
}

// visibleRuns samples e in screen space and returns its unoccluded
// stretches.
func (zb *depthBuffer) visibleRuns(e edge3) []Segment {
	ax, ay, ad := zb.cam.Project(e.a)
	bx, by, bd := zb.cam.Project(e.b)
	if !zb.cam.InClip(ad) && !zb.cam.InClip(bd) {
		return nil
	}
	length := math.Hypot(bx-ax, by-ay)
	n := max(1, int(math.Ceil(length/sampleStep)))

	var (
		out     []Segment
		inRun   bool
		runFrom Point
		last    Point
	)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		p := Point{ax + (bx-ax)*t, ay + (by-ay)*t}
		d := ad + (bd-ad)*t
		visible := d <= zb.nearby(p[0], p[1])+zb.bias
		switch {
		case visible && !inRun:
			inRun, runFrom = true, p
		case !visible && inRun:
			inRun = false
			if last != runFrom {
				out = append(out, Segment{Kind: e.kind, A: runFrom, B: last})
			}
		}
		last = p
	}
	if inRun && last != runFrom {
		out = append(out, Segment{Kind: e.kind, A: runFrom, B: last})
	}
	return out
}
