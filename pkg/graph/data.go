package graph

// ---------------------------------------------------------------------------
// Appearance
// ---------------------------------------------------------------------------

// Appearance carries per-part display settings.
type Appearance struct {
	Color  string `json:"color,omitempty"`  // "#rrggbb"; empty = palette color
	Hidden bool   `json:"hidden,omitempty"` // excluded from framing and rendering
}

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

// PrimitiveKind distinguishes between primitive shapes.
type PrimitiveKind int

const (
	PrimBox      PrimitiveKind = iota // rectangular solid
	PrimCylinder                      // cylindrical solid
)

func (k PrimitiveKind) String() string {
	switch k {
	case PrimBox:
		return "box"
	case PrimCylinder:
		return "cylinder"
	default:
		return "unknown"
	}
}

// BoxData is an axis-aligned box centered on its local origin.
type BoxData struct {
	PrimKind   PrimitiveKind `json:"prim_kind"`
	Size       Vec3          `json:"size"` // full extents along X, Y, Z
	Appearance Appearance    `json:"appearance"`
}

func (BoxData) nodeData() {}

// CylinderData is a Z-aligned cylinder centered on its local origin.
type CylinderData struct {
	PrimKind   PrimitiveKind `json:"prim_kind"`
	Height     float64       `json:"height"`
	Radius     float64       `json:"radius"`
	Appearance Appearance    `json:"appearance"`
}

func (CylinderData) nodeData() {}

// appearanceOf returns the appearance of a primitive payload.
func appearanceOf(d NodeData) (Appearance, bool) {
	switch v := d.(type) {
	case BoxData:
		return v.Appearance, true
	case CylinderData:
		return v.Appearance, true
	}
	return Appearance{}, false
}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// TransformData represents a spatial transformation applied to child nodes.
// Created by the (place ...) form. Rotation is applied before translation.
type TransformData struct {
	Translation *Vec3 `json:"translation,omitempty"`
	Rotation    *Vec3 `json:"rotation,omitempty"` // Euler angles in degrees
}

func (TransformData) nodeData() {}

// ---------------------------------------------------------------------------
// Group
// ---------------------------------------------------------------------------

// GroupData represents a logical grouping. Created by the (model ...) form.
type GroupData struct {
	Description string `json:"description,omitempty"`
}

func (GroupData) nodeData() {}
