// Package kernel defines the abstract geometry kernel interface.
// Implementations provide primitive solids and meshing behind this
// interface so the rest of the system never touches a backend directly.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the local-space axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives, centered on the local origin.
	Box(x, y, z float64) (Solid, error)
	Cylinder(height, radius float64) (Solid, error)

	// Mesh output in the solid's local space.
	ToMesh(s Solid) (*Mesh, error)
}
