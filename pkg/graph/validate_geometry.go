package graph

import (
	"fmt"
	"math"
	"regexp"
)

// ---------------------------------------------------------------------------
// Tier 2: Geometric validation (errors + warnings)
// ---------------------------------------------------------------------------

// validateGeometry runs all Tier 2 geometric checks.
// Returns errors (blocking) and warnings (advisory) separately.
func validateGeometry(g *SceneGraph) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning

	errs = append(errs, validateNonZeroDimensions(g)...)
	errs = append(errs, validateFiniteTransforms(g)...)
	warnings = append(warnings, validateAnyVisible(g)...)

	return errs, warnings
}

// validateNonZeroDimensions checks that every primitive has positive extents.
func validateNonZeroDimensions(g *SceneGraph) []ValidationError {
	var errs []ValidationError

	positive := func(node *Node, label string, v float64) {
		if v > 0 && !math.IsInf(v, 0) {
			return
		}
		errs = append(errs, ValidationError{
			NodeID:   node.ID,
			Message:  fmt.Sprintf("%s is %.4f, must be positive", label, v),
			Severity: SeverityError,
		})
	}

	for _, node := range g.Nodes {
		switch d := node.Data.(type) {
		case BoxData:
			positive(node, "box size X", d.Size.X)
			positive(node, "box size Y", d.Size.Y)
			positive(node, "box size Z", d.Size.Z)
		case CylinderData:
			positive(node, "cylinder height", d.Height)
			positive(node, "cylinder radius", d.Radius)
		}
	}

	return errs
}

func finiteVec(v *Vec3) bool {
	if v == nil {
		return true
	}
	for _, c := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// validateFiniteTransforms rejects NaN/Inf translations and rotations.
func validateFiniteTransforms(g *SceneGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		td, ok := node.Data.(TransformData)
		if !ok {
			continue
		}
		if !finiteVec(td.Translation) || !finiteVec(td.Rotation) {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  "transform has a non-finite component",
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// validateAnyVisible warns when every primitive is hidden; framing then falls
// back to the default bounds.
func validateAnyVisible(g *SceneGraph) []ValidationWarning {
	parts := g.Parts()
	if len(parts) == 0 {
		return []ValidationWarning{{Message: "graph has no primitives"}}
	}
	if len(g.VisibleParts()) == 0 {
		return []ValidationWarning{{Message: fmt.Sprintf("all %d primitives are hidden", len(parts))}}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Tier 3: Appearance warnings
// ---------------------------------------------------------------------------

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// validateAppearance warns on colors the renderer cannot parse; those parts
// fall back to the palette.
func validateAppearance(g *SceneGraph) []ValidationWarning {
	var warnings []ValidationWarning

	for _, node := range g.Parts() {
		a, _ := appearanceOf(node.Data)
		if a.Color != "" && !hexColor.MatchString(a.Color) {
			warnings = append(warnings, ValidationWarning{
				NodeID:  node.ID,
				Message: fmt.Sprintf("part %q has unparsable color %q; using palette", node.Name, a.Color),
			})
		}
	}

	return warnings
}

// ValidColor reports whether s is a "#rgb" or "#rrggbb" color.
func ValidColor(s string) bool {
	return hexColor.MatchString(s)
}
