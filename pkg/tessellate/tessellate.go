// Package tessellate walks a scene graph and produces posed scene objects
// using a geometry kernel. One object is produced per placement of a
// visible primitive part.
package tessellate

import (
	"fmt"
	"image/color"

	"github.com/chazu/stager/pkg/framing"
	"github.com/chazu/stager/pkg/graph"
	"github.com/chazu/stager/pkg/kernel"
	"github.com/chazu/stager/pkg/scene"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// transformStack accumulates world matrices during graph traversal. Each
// level is composed onto the one below it.
type transformStack struct {
	levels []sdf.M44
}

func newTransformStack() *transformStack {
	return &transformStack{levels: []sdf.M44{sdf.Identity3d()}}
}

// push composes a placement onto the current matrix: the child is rotated
// about X, then Y, then Z, then translated.
func (ts *transformStack) push(td graph.TransformData) {
	local := sdf.Identity3d()
	if r := td.Rotation; r != nil && !r.IsZero() {
		local = sdf.RotateZ(framing.Radians(r.Z)).
			Mul(sdf.RotateY(framing.Radians(r.Y))).
			Mul(sdf.RotateX(framing.Radians(r.X)))
	}
	if t := td.Translation; t != nil && !t.IsZero() {
		local = sdf.Translate3d(v3.Vec{X: t.X, Y: t.Y, Z: t.Z}).Mul(local)
	}
	ts.levels = append(ts.levels, ts.top().Mul(local))
}

func (ts *transformStack) pop() {
	if len(ts.levels) > 1 {
		ts.levels = ts.levels[:len(ts.levels)-1]
	}
}

func (ts *transformStack) top() sdf.M44 {
	return ts.levels[len(ts.levels)-1]
}

// tessellator carries traversal state. Meshes are cached per primitive node
// so a part placed several times is meshed once.
type tessellator struct {
	g      *graph.SceneGraph
	k      kernel.Kernel
	ts     *transformStack
	meshes map[graph.NodeID]*kernel.Mesh
	colors map[graph.NodeID]color.RGBA
}

// Tessellate walks the scene graph and produces one scene object per
// placement of a visible primitive part. Hidden parts are skipped. A graph
// without roots renders each visible part once at the origin. The graph is
// never mutated.
func Tessellate(g *graph.SceneGraph, k kernel.Kernel) ([]*scene.Object, error) {
	if g == nil {
		return nil, nil
	}
	t := &tessellator{
		g:      g,
		k:      k,
		ts:     newTransformStack(),
		meshes: make(map[graph.NodeID]*kernel.Mesh),
		colors: make(map[graph.NodeID]color.RGBA),
	}
	t.assignColors()

	var objs []*scene.Object
	if len(g.Roots) == 0 {
		for _, part := range g.VisibleParts() {
			collected, err := t.walk(part)
			if err != nil {
				return nil, fmt.Errorf("tessellate: part %s: %w", part.ID.Short(), err)
			}
			objs = append(objs, collected...)
		}
		return objs, nil
	}

	for _, rootID := range g.Roots {
		root := g.Get(rootID)
		if root == nil {
			continue
		}
		collected, err := t.walk(root)
		if err != nil {
			return nil, fmt.Errorf("tessellate: error walking root %s: %w", rootID.Short(), err)
		}
		objs = append(objs, collected...)
	}
	return objs, nil
}

// assignColors resolves every part's color up front so palette colors do
// not depend on traversal order.
func (t *tessellator) assignColors() {
	for i, part := range t.g.Parts() {
		a, _ := graph.AppearanceOf(part)
		c, err := scene.ParseColor(a.Color)
		if err != nil {
			c, err = scene.ParseColor(t.g.Defaults.Color)
		}
		if err != nil {
			c = scene.PaletteColor(i)
		}
		t.colors[part.ID] = c
	}
}

// walk recursively traverses a node and its children, collecting objects.
func (t *tessellator) walk(n *graph.Node) ([]*scene.Object, error) {
	switch n.Kind {
	case graph.NodePrimitive:
		return t.primitive(n)
	case graph.NodeTransform:
		return t.transform(n)
	case graph.NodeGroup:
		return t.children(n)
	default:
		return nil, fmt.Errorf("unknown node kind: %v", n.Kind)
	}
}

// primitive meshes a part and poses it with the current transform.
func (t *tessellator) primitive(n *graph.Node) ([]*scene.Object, error) {
	a, ok := graph.AppearanceOf(n)
	if !ok {
		return nil, fmt.Errorf("primitive node %s has unsupported data type %T", n.ID.Short(), n.Data)
	}
	if a.Hidden {
		return nil, nil
	}

	mesh, err := t.mesh(n)
	if err != nil {
		return nil, err
	}

	// Prefer the node's Name, fall back to short ID.
	name := n.Name
	if name == "" {
		name = n.ID.Short()
	}
	return []*scene.Object{scene.NewObject(name, mesh, t.ts.top(), t.colors[n.ID])}, nil
}

func (t *tessellator) mesh(n *graph.Node) (*kernel.Mesh, error) {
	if m, ok := t.meshes[n.ID]; ok {
		return m, nil
	}

	var (
		solid kernel.Solid
		err   error
	)
	switch data := n.Data.(type) {
	case graph.BoxData:
		solid, err = t.k.Box(data.Size.X, data.Size.Y, data.Size.Z)
	case graph.CylinderData:
		solid, err = t.k.Cylinder(data.Height, data.Radius)
	default:
		return nil, fmt.Errorf("primitive node %s has unsupported data type %T", n.ID.Short(), n.Data)
	}
	if err != nil {
		return nil, fmt.Errorf("tessellate: solid for node %s: %w", n.ID.Short(), err)
	}

	mesh, err := t.k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed for node %s: %w", n.ID.Short(), err)
	}
	mesh.PartName = n.Name
	t.meshes[n.ID] = mesh
	return mesh, nil
}

// transform pushes the placement, recurses into children, then pops.
func (t *tessellator) transform(n *graph.Node) ([]*scene.Object, error) {
	td, ok := n.Data.(graph.TransformData)
	if !ok {
		return nil, fmt.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}
	t.ts.push(td)
	defer t.ts.pop()
	return t.children(n)
}

// children recurses into a node's children in order.
func (t *tessellator) children(n *graph.Node) ([]*scene.Object, error) {
	var objs []*scene.Object
	for _, child := range t.g.Children(n) {
		collected, err := t.walk(child)
		if err != nil {
			return nil, err
		}
		objs = append(objs, collected...)
	}
	return objs, nil
}
