// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"fmt"

	"github.com/chazu/stager/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultMeshCells controls marching cubes tessellation resolution along the
// longest axis of a solid.
const DefaultMeshCells = 64

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a new SdfxKernel with the default mesh resolution.
func New() *SdfxKernel {
	return &SdfxKernel{cells: DefaultMeshCells}
}

// NewWithCells returns an SdfxKernel meshing at the given resolution.
// Values below 8 are raised to 8.
func NewWithCells(cells int) *SdfxKernel {
	if cells < 8 {
		cells = 8
	}
	return &SdfxKernel{cells: cells}
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) (sdf.SDF3, error) {
	ss, ok := s.(*sdfxSolid)
	if !ok {
		return nil, fmt.Errorf("sdfx: foreign solid type %T", s)
	}
	return ss.s, nil
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// Box creates a box with the given full extents, centered on the origin.
func (k *SdfxKernel) Box(x, y, z float64) (kernel.Solid, error) {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx.Box3D: %w", err)
	}
	return wrap(s), nil
}

// Cylinder creates a Z-aligned cylinder centered on the origin.
func (k *SdfxKernel) Cylinder(height, radius float64) (kernel.Solid, error) {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx.Cylinder3D: %w", err)
	}
	return wrap(s), nil
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	sdf3, err := unwrap(s)
	if err != nil {
		return nil, err
	}

	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(sdf3, renderer)
	if len(triangles) == 0 {
		return nil, fmt.Errorf("sdfx: marching cubes produced no triangles at %d cells", k.cells)
	}
	min, max := s.BoundingBox()
	fitToBounds(triangles, sdf.Box3{
		Min: v3.Vec{X: min[0], Y: min[1], Z: min[2]},
		Max: v3.Vec{X: max[0], Y: max[1], Z: max[2]},
	})

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		// Compute face normal.
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}

// fitToBounds stretches the triangles so their bounds match want on every
// axis. Uniform marching cubes lands the surface up to a cell inside the
// solid's faces, which would otherwise shorten long parts.
func fitToBounds(triangles []*sdf.Triangle3, want sdf.Box3) {
	got := sdf.Box3{Min: triangles[0][0], Max: triangles[0][0]}
	for _, t := range triangles {
		for _, v := range t {
			got = got.Include(v)
		}
	}
	gs, ws := got.Size(), want.Size()
	scale := v3.Vec{X: ratio(ws.X, gs.X), Y: ratio(ws.Y, gs.Y), Z: ratio(ws.Z, gs.Z)}
	gc, wc := got.Center(), want.Center()
	for _, t := range triangles {
		for i := range t {
			t[i] = wc.Add(t[i].Sub(gc).Mul(scale))
		}
	}
}

func ratio(want, got float64) float64 {
	if got < 1e-12 || want <= 0 {
		return 1
	}
	return want / got
}
