package framing

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// DefaultSize is the X/Y size reported for an empty object set.
const DefaultSize = 2.0

// Bounded is anything with a local bounding box and a world transform.
type Bounded interface {
	// LocalCorners returns the eight local-space bounding box corners.
	LocalCorners() [8]v3.Vec
	// WorldMatrix maps local space to world space.
	WorldMatrix() sdf.M44
}

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max v3.Vec
}

// EmptyBox returns an inverted box that any Extend call will replace.
func EmptyBox() Box {
	inf := math.Inf(1)
	return Box{
		Min: v3.Vec{X: inf, Y: inf, Z: inf},
		Max: v3.Vec{X: -inf, Y: -inf, Z: -inf},
	}
}

// Extend grows the box to include p.
func (b *Box) Extend(p v3.Vec) {
	b.Min = v3.Vec{X: math.Min(b.Min.X, p.X), Y: math.Min(b.Min.Y, p.Y), Z: math.Min(b.Min.Z, p.Z)}
	b.Max = v3.Vec{X: math.Max(b.Max.X, p.X), Y: math.Max(b.Max.Y, p.Y), Z: math.Max(b.Max.Z, p.Z)}
}

// IsEmpty reports whether nothing has been added to the box.
func (b Box) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Center returns the midpoint of the box.
func (b Box) Center() v3.Vec {
	return b.Min.Add(b.Max).MulScalar(0.5)
}

// Size returns the extents of the box.
func (b Box) Size() v3.Vec {
	return b.Max.Sub(b.Min)
}

// Contains reports whether p lies inside the box, with tolerance tol.
func (b Box) Contains(p v3.Vec, tol float64) bool {
	return p.X >= b.Min.X-tol && p.X <= b.Max.X+tol &&
		p.Y >= b.Min.Y-tol && p.Y <= b.Max.Y+tol &&
		p.Z >= b.Min.Z-tol && p.Z <= b.Max.Z+tol
}

// Corners returns the eight corners of the box.
func (b Box) Corners() [8]v3.Vec {
	var out [8]v3.Vec
	for i := range out {
		c := b.Min
		if i&4 != 0 {
			c.X = b.Max.X
		}
		if i&2 != 0 {
			c.Y = b.Max.Y
		}
		if i&1 != 0 {
			c.Z = b.Max.Z
		}
		out[i] = c
	}
	return out
}

// WorldCorners transforms every local corner of every object into world
// space. The result has 8·len(objs) points.
func WorldCorners(objs []Bounded) []v3.Vec {
	out := make([]v3.Vec, 0, 8*len(objs))
	for _, o := range objs {
		m := o.WorldMatrix()
		for _, c := range o.LocalCorners() {
			out = append(out, m.MulPosition(c))
		}
	}
	return out
}

// WorldBounds reduces the world corners of objs to an AABB. ok is false for
// an empty set.
func WorldBounds(objs []Bounded) (b Box, ok bool) {
	b = EmptyBox()
	for _, p := range WorldCorners(objs) {
		b.Extend(p)
	}
	return b, !b.IsEmpty()
}

// ComputeBounds returns the world center and the X/Y spans of objs. An empty
// set yields the origin and DefaultSize in both axes.
func ComputeBounds(objs []Bounded) (center v3.Vec, sizeX, sizeY float64) {
	b, ok := WorldBounds(objs)
	if !ok {
		return v3.Vec{}, DefaultSize, DefaultSize
	}
	size := b.Size()
	return b.Center(), size.X, size.Y
}
