package scene

import (
	"image/color"

	"github.com/chazu/stager/pkg/framing"
	"github.com/chazu/stager/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Object is one mesh placed in the world.
type Object struct {
	Name  string
	Mesh  *kernel.Mesh // local space
	World sdf.M44      // local to world
	Color color.RGBA

	local framing.Box
}

var _ framing.Bounded = (*Object)(nil)

// NewObject wraps a local-space mesh. The local bounding box is taken from
// the mesh vertices.
func NewObject(name string, mesh *kernel.Mesh, world sdf.M44, c color.RGBA) *Object {
	min, max := mesh.Bounds()
	return &Object{
		Name:  name,
		Mesh:  mesh,
		World: world,
		Color: c,
		local: framing.Box{Min: vec(min), Max: vec(max)},
	}
}

// LocalCorners returns the eight corners of the local bounding box.
func (o *Object) LocalCorners() [8]v3.Vec {
	return o.local.Corners()
}

// WorldMatrix returns the local to world transform.
func (o *Object) WorldMatrix() sdf.M44 {
	return o.World
}

// LocalBounds returns the local bounding box.
func (o *Object) LocalBounds() framing.Box {
	return o.local
}

// TriangleCount returns the number of mesh triangles.
func (o *Object) TriangleCount() int {
	if o.Mesh == nil {
		return 0
	}
	return o.Mesh.TriangleCount()
}

// WorldTriangle returns triangle t transformed to world space.
func (o *Object) WorldTriangle(t int) [3]v3.Vec {
	tri := o.Mesh.Triangle(t)
	return [3]v3.Vec{
		o.World.MulPosition(vec(tri[0])),
		o.World.MulPosition(vec(tri[1])),
		o.World.MulPosition(vec(tri[2])),
	}
}

func vec(a [3]float64) v3.Vec {
	return v3.Vec{X: a[0], Y: a[1], Z: a[2]}
}
