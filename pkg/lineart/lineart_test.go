package lineart

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/stager/pkg/framing"
	"github.com/chazu/stager/pkg/kernel/sdfx"
	"github.com/chazu/stager/pkg/scene"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func boxObject(t *testing.T, name string, size float64, at v3.Vec) *scene.Object {
	t.Helper()
	k := sdfx.NewWithCells(8)
	solid, err := k.Box(size, size, size)
	if err != nil {
		t.Fatal(err)
	}
	mesh, err := k.ToMesh(solid)
	if err != nil {
		t.Fatal(err)
	}
	return scene.NewObject(name, mesh, sdf.Translate3d(at), scene.PaletteColor(0))
}

// framedScene aims the camera at objs from the given yaw and elevation.
func framedScene(t *testing.T, yaw, elev float64, objs ...*scene.Object) *scene.Scene {
	t.Helper()
	s, err := scene.New(scene.EngineEEVEE, 128, 128, nil)
	if err != nil {
		t.Fatal(err)
	}
	s.Add(objs...)
	b, ok := framing.WorldBounds(s.Bounded())
	if !ok {
		t.Fatal("empty scene")
	}
	plan, err := framing.PlanOrbit(framing.OrbitSpec{
		Center:    b.Center(),
		Radius:    10,
		Elevation: elev,
		Yaws:      []float64{yaw},
	}, framing.WorldCorners(s.Bounded()), s.FitOptions(framing.StrategyLocal, 1.15), 1.15)
	if err != nil {
		t.Fatal(err)
	}
	s.Camera.Pose = plan.Views[0].Pose
	s.Camera.OrthoScale = plan.Scale
	return s
}

func TestExtractCube(t *testing.T) {
	s := framedScene(t, 45, framing.IsometricElevation, boxObject(t, "cube", 1, v3.Vec{}))
	d, err := Extract(s)
	if err != nil {
		t.Fatal(err)
	}
	if d.Count(Contour) == 0 {
		t.Error("expected contour lines")
	}
	if d.Count(Material) != 0 || d.Count(Intersection) != 0 {
		t.Errorf("single object produced material %d / intersection %d lines",
			d.Count(Material), d.Count(Intersection))
	}
	for _, seg := range d.Segments {
		for _, p := range []Point{seg.A, seg.B} {
			if p[0] < 0 || p[1] < 0 || p[0] > 128 || p[1] > 128 {
				t.Fatalf("segment point %v outside the fitted frame", p)
			}
		}
	}
}

func TestExtractDisabled(t *testing.T) {
	s := framedScene(t, 0, 30, boxObject(t, "cube", 1, v3.Vec{}))
	s.LineArt.Enabled = false
	if _, err := Extract(s); !errors.Is(err, scene.ErrConfigurationUnavailable) {
		t.Errorf("err = %v, want ErrConfigurationUnavailable", err)
	}
}

func TestHiddenObjectDrawsNothing(t *testing.T) {
	big := boxObject(t, "big", 2, v3.Vec{})
	small := boxObject(t, "small", 0.5, v3.Vec{Z: -3})

	// Looking straight down, the small box is entirely behind the big one.
	alone := framedScene(t, 0, framing.TopDownElevation, big)
	d1, err := Extract(alone)
	if err != nil {
		t.Fatal(err)
	}

	both := framedScene(t, 0, framing.TopDownElevation, big, small)
	both.Camera = alone.Camera
	d2, err := Extract(both)
	if err != nil {
		t.Fatal(err)
	}
	if len(d1.Segments) != len(d2.Segments) {
		t.Errorf("hidden box changed the drawing: %d vs %d segments", len(d1.Segments), len(d2.Segments))
	}
}

func TestIntersectionLines(t *testing.T) {
	a := boxObject(t, "a", 1, v3.Vec{})
	b := boxObject(t, "b", 1, v3.Vec{X: 0.5, Y: 0.3, Z: 0.2})
	m := weld([]*scene.Object{a, b})
	if got := intersections(m); len(got) == 0 {
		t.Fatal("expected intersection lines between overlapping boxes")
	}

	apart := weld([]*scene.Object{a, boxObject(t, "c", 1, v3.Vec{X: 5})})
	if got := intersections(apart); len(got) != 0 {
		t.Errorf("separate boxes produced %d intersection lines", len(got))
	}
}

func TestTriTriSegment(t *testing.T) {
	// A horizontal triangle pierced by a vertical one along y=0.
	m := &mesh{
		verts: []v3.Vec{
			{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 0, Y: 1},
			{X: -0.5, Z: -1}, {X: 0.5, Z: -1}, {Z: 1},
		},
		tris: []triangle{
			{v: [3]int{0, 1, 2}, object: 0, normal: v3.Vec{Z: 1}},
			{v: [3]int{3, 4, 5}, object: 1, normal: v3.Vec{Y: -1}},
		},
	}
	p, q, ok := triTriSegment(m, 0, 1)
	if !ok {
		t.Fatal("expected an intersection")
	}
	for _, v := range []v3.Vec{p, q} {
		if v.Y != 0 || v.Z != 0 {
			t.Errorf("intersection point %v not on the line y=0,z=0", v)
		}
	}
	if l := q.Sub(p).Length(); l < 0.4 || l > 1.01 {
		t.Errorf("intersection length = %v", l)
	}
}

func TestClassifyCrease(t *testing.T) {
	// Two triangles folded 90° along the X axis.
	m := &mesh{
		verts: []v3.Vec{{X: 0}, {X: 1}, {Y: 1}, {Z: 1}},
		tris: []triangle{
			{v: [3]int{0, 1, 2}, normal: v3.Vec{Z: 1}},
			{v: [3]int{1, 0, 3}, normal: v3.Vec{Y: 1}},
		},
	}
	la := scene.DefaultLineArt()
	la.Contour = false
	edges := classify(m, v3.Vec{X: -1, Y: -1, Z: -1}.MulScalar(0.57735), la)
	creases := 0
	for _, e := range edges {
		if e.kind == Crease {
			creases++
		}
	}
	if creases != 1 {
		t.Errorf("creases = %d, want 1", creases)
	}

	la.CreaseAngle = 80 // only folds sharper than 100° count
	for _, e := range classify(m, v3.Vec{Z: -1}, la) {
		if e.kind == Crease {
			t.Error("90° fold classified as crease at an 80° threshold")
		}
	}
}

func TestClipSegment(t *testing.T) {
	tests := []struct {
		name   string
		a, b   Point
		wantOK bool
		wantA  Point
		wantB  Point
	}{
		{"inside", Point{1, 1}, Point{5, 5}, true, Point{1, 1}, Point{5, 5}},
		{"crosses right", Point{5, 5}, Point{15, 5}, true, Point{5, 5}, Point{10, 5}},
		{"outside", Point{-5, -5}, Point{-1, -1}, false, Point{}, Point{}},
		{"through", Point{-5, 5}, Point{15, 5}, true, Point{0, 5}, Point{10, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b, ok := clipSegment(tt.a, tt.b, 10, 10)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && (a != tt.wantA || b != tt.wantB) {
				t.Errorf("clip = %v %v, want %v %v", a, b, tt.wantA, tt.wantB)
			}
		})
	}
}

func TestPolylinesChain(t *testing.T) {
	d := &Drawing{Width: 10, Height: 10, Segments: []Segment{
		{Kind: Contour, A: Point{1, 1}, B: Point{2, 1}},
		{Kind: Contour, A: Point{3, 1}, B: Point{2, 1}},
		{Kind: Contour, A: Point{0, 1}, B: Point{1, 1}},
		{Kind: Crease, A: Point{2, 1}, B: Point{2, 5}},
	}}
	lines := d.Polylines()
	if len(lines) != 2 {
		t.Fatalf("polylines = %d, want 2", len(lines))
	}
	if got := len(lines[0].Points); got != 4 {
		t.Errorf("contour chain has %d points, want 4", got)
	}
	if lines[1].Kind != Crease {
		t.Errorf("second chain kind = %v", lines[1].Kind)
	}
}

func TestWriteSVGAndDXF(t *testing.T) {
	s := framedScene(t, 45, framing.IsometricElevation, boxObject(t, "cube", 1, v3.Vec{}))
	d, err := Extract(s)
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()

	svgPath := filepath.Join(dir, "view_045.svg")
	if err := WriteSVG(svgPath, d, StyleFrom(s.LineArt)); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(svgPath)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{"<svg", "viewBox=\"0 0 1280 1280\"", "<polyline", `id="contour"`, "stroke-width:15"} {
		if !strings.Contains(out, want) {
			t.Errorf("svg missing %q", want)
		}
	}

	dxfPath := filepath.Join(dir, "view_045.dxf")
	if err := WriteDXF(dxfPath, d); err != nil {
		t.Fatal(err)
	}
	data, err = os.ReadFile(dxfPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "LINE") || !strings.Contains(string(data), "contour") {
		t.Error("dxf missing contour LINE entities")
	}

	err = WriteSVG(filepath.Join(dir, "missing", "x.svg"), d, Style{Width: 1})
	if !errors.Is(err, scene.ErrExportFailed) {
		t.Errorf("err = %v, want ErrExportFailed", err)
	}
}
