package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/chazu/stager/pkg/graph"
)

func evalOK(t *testing.T, source string) *graph.SceneGraph {
	t.Helper()
	g, evalErrs, err := NewEngine().Evaluate(context.Background(), source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if g == nil {
		t.Fatal("expected non-nil graph")
	}
	return g
}

func evalFails(t *testing.T, source, want string) {
	t.Helper()
	g, evalErrs, err := NewEngine().Evaluate(context.Background(), source)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if g != nil {
		t.Fatal("expected nil graph on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error")
	}
	if want != "" && !strings.Contains(evalErrs[0].Message, want) {
		t.Errorf("error = %q, want containing %q", evalErrs[0].Message, want)
	}
}

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(cylinder :height 3)`,
			expect: `(cylinder "__kw_height" 3)`,
		},
		{
			name:   "multiple keywords",
			input:  `(box :x 1 :y 2)`,
			expect: `(box "__kw_x" 1 "__kw_y" 2)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "color string preserved",
			input:  `:color "#555555"`,
			expect: `"__kw_color" "#555555"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(def pole-height 3)`,
			expect: `(def pole_height 3)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:line-width`,
			expect: `"__kw_line-width"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Primitive tests
// ---------------------------------------------------------------------------

func TestSimpleBox(t *testing.T) {
	g := evalOK(t, `(defpart "panel" (box :x 0.4 :y 0.1 :z 1.2))`)

	if g.NodeCount() != 1 {
		t.Fatalf("expected 1 node, got %d", g.NodeCount())
	}
	panel := g.Lookup("panel")
	if panel == nil {
		t.Fatal("expected node named 'panel'")
	}
	if panel.Kind != graph.NodePrimitive {
		t.Errorf("expected NodePrimitive, got %s", panel.Kind)
	}
	bd, ok := panel.Data.(graph.BoxData)
	if !ok {
		t.Fatalf("expected BoxData, got %T", panel.Data)
	}
	if bd.Size != (graph.Vec3{X: 0.4, Y: 0.1, Z: 1.2}) {
		t.Errorf("size = %+v", bd.Size)
	}
	if bd.Appearance.Hidden {
		t.Error("part should be visible by default")
	}
}

func TestCylinderWithColor(t *testing.T) {
	g := evalOK(t, `(defpart "pole" (cylinder :height 3 :radius 0.1) :color "#555555")`)

	cd, ok := g.MustLookup("pole").Data.(graph.CylinderData)
	if !ok {
		t.Fatalf("expected CylinderData, got %T", g.MustLookup("pole").Data)
	}
	if cd.Height != 3 || cd.Radius != 0.1 {
		t.Errorf("cylinder = %+v", cd)
	}
	if cd.Appearance.Color != "#555555" {
		t.Errorf("color = %q", cd.Appearance.Color)
	}
}

func TestHiddenPart(t *testing.T) {
	g := evalOK(t, `
(defpart "helper" (box :x 1 :y 1 :z 1) :visible false)
(defpart "shown" (box :x 1 :y 1 :z 1) :visible true)
`)
	a, _ := graph.AppearanceOf(g.MustLookup("helper"))
	if !a.Hidden {
		t.Error("helper should be hidden")
	}
	if n := len(g.VisibleParts()); n != 1 {
		t.Errorf("expected 1 visible part, got %d", n)
	}
}

func TestColorBuiltin(t *testing.T) {
	g := evalOK(t, `
(defpart "a" (box :x 1 :y 1 :z 1) :color (color 255 136 0))
(defpart "b" (box :x 1 :y 1 :z 1) :color (color "#abc"))
`)
	a, _ := graph.AppearanceOf(g.MustLookup("a"))
	if a.Color != "#ff8800" {
		t.Errorf("a color = %q, want #ff8800", a.Color)
	}
	b, _ := graph.AppearanceOf(g.MustLookup("b"))
	if b.Color != "#abc" {
		t.Errorf("b color = %q, want #abc", b.Color)
	}

	evalFails(t, `(color "red")`, "not #rgb")
	evalFails(t, `(color 300 0 0)`, "out of range")
}

// ---------------------------------------------------------------------------
// Variable reference test
// ---------------------------------------------------------------------------

func TestVariableReference(t *testing.T) {
	g := evalOK(t, `
(def h 2.5)
(defpart "post" (cylinder :height h :radius 0.05))
`)
	cd := g.MustLookup("post").Data.(graph.CylinderData)
	if cd.Height != 2.5 {
		t.Errorf("expected height=2.5 (from variable), got %f", cd.Height)
	}
}

// ---------------------------------------------------------------------------
// Model with placement test
// ---------------------------------------------------------------------------

func TestModelWithPlacement(t *testing.T) {
	g := evalOK(t, `
(defpart "pole" (cylinder :height 3 :radius 0.1) :color "#555555")
(defpart "panel" (box :x 0.4 :y 0.1 :z 1.2))
(model "kiosk"
  (place (part "pole") :at (vec3 0 0 1.5))
  (place (part "panel") :at (vec3 0 0 2.2) :rotate (vec3 0 0 45))
  :description "street kiosk")
`)

	// 2 primitives + 2 transforms + 1 group = 5 nodes
	if g.NodeCount() != 5 {
		t.Fatalf("expected 5 nodes, got %d", g.NodeCount())
	}

	kiosk := g.Lookup("kiosk")
	if kiosk == nil {
		t.Fatal("expected node named 'kiosk'")
	}
	if kiosk.Kind != graph.NodeGroup {
		t.Errorf("kiosk: expected NodeGroup, got %s", kiosk.Kind)
	}
	if len(kiosk.Children) != 2 {
		t.Errorf("kiosk: expected 2 children, got %d", len(kiosk.Children))
	}
	if gd := kiosk.Data.(graph.GroupData); gd.Description != "street kiosk" {
		t.Errorf("description = %q", gd.Description)
	}
	if len(g.Roots) != 1 || g.Roots[0] != kiosk.ID {
		t.Errorf("expected kiosk as the only root, got %v", g.Roots)
	}

	rotated := 0
	for _, n := range g.Nodes {
		if n.Kind != graph.NodeTransform {
			continue
		}
		td, ok := n.Data.(graph.TransformData)
		if !ok {
			t.Fatalf("transform node: expected TransformData, got %T", n.Data)
		}
		if td.Translation == nil {
			t.Error("transform node: expected non-nil translation")
		}
		if td.Rotation != nil {
			rotated++
			if td.Rotation.Z != 45 {
				t.Errorf("rotation = %+v", *td.Rotation)
			}
		}
	}
	if rotated != 1 {
		t.Errorf("expected 1 rotated placement, got %d", rotated)
	}

	if res := graph.ValidateAll(g); !res.OK() {
		t.Errorf("evaluated graph should validate: %v", res.Errors)
	}
}

func TestRepeatedPlacement(t *testing.T) {
	g := evalOK(t, `
(defpart "leg" (box :x 0.1 :y 0.1 :z 1))
(model "bench"
  (place (part "leg") :at (vec3 -1 0 0.5))
  (place (part "leg") :at (vec3 1 0 0.5)))
`)
	bench := g.MustLookup("bench")
	if len(bench.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(bench.Children))
	}
	if bench.Children[0] == bench.Children[1] {
		t.Error("repeated placements of one part must get distinct IDs")
	}
}

func TestEvaluationIsDeterministic(t *testing.T) {
	src := `
(defpart "leg" (box :x 0.1 :y 0.1 :z 1))
(model "bench" (place (part "leg") :at (vec3 0 0 0.5)))
`
	a := evalOK(t, src)
	b := evalOK(t, src)
	if a.MustLookup("bench").Children[0] != b.MustLookup("bench").Children[0] {
		t.Error("placement IDs differ between evaluations")
	}
}

// ---------------------------------------------------------------------------
// Error tests
// ---------------------------------------------------------------------------

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"missing part", `(part "nonexistent")`, "no part named"},
		{"duplicate part", `(defpart "a" (box :x 1 :y 1 :z 1)) (defpart "a" (box :x 1 :y 1 :z 1))`, "already defined"},
		{"defpart without body", `(defpart "a")`, "requires a name"},
		{"defpart bad body", `(defpart "a" 42)`, "expected box or cylinder"},
		{"box bad size", `(box :x "wide")`, "expected number"},
		{"vec3 arity", `(vec3 1 2)`, "exactly 3"},
		{"place without part", `(place :at (vec3 0 0 0))`, "requires a part"},
		{"place bad at", `(defpart "a" (box :x 1 :y 1 :z 1)) (place (part "a") :at 5)`, "expected vec3"},
		{"model bad child", `(model "m" 5)`, "expected node reference"},
		{"visible not bool", `(defpart "a" (box :x 1 :y 1 :z 1) :visible "no")`, "expected boolean"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evalFails(t, tt.source, tt.want)
		})
	}
}

// ---------------------------------------------------------------------------
// Plain Lisp still works
// ---------------------------------------------------------------------------

func TestArithmeticStillWorks(t *testing.T) {
	g := evalOK(t, `
(def spacing (* 0.5 3))
(defpart "slat" (box :x spacing :y 0.05 :z 0.02))
`)
	bd := g.MustLookup("slat").Data.(graph.BoxData)
	if bd.Size.X != 1.5 {
		t.Errorf("expected x=1.5, got %f", bd.Size.X)
	}
}
