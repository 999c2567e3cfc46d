package graph

import "fmt"

// ValidationSeverity indicates whether a validation finding blocks rendering
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks rendering
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (zero if graph-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	NodeID  NodeID
	Message string
}

func (w ValidationWarning) String() string {
	if w.NodeID.IsZero() {
		return w.Message
	}
	return fmt.Sprintf("node %s: %s", w.NodeID.Short(), w.Message)
}

// ValidationResult bundles errors (blocking) and warnings (advisory)
// from all validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// OK reports whether no blocking errors were found.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate runs all Tier 1 structural validation checks on the scene graph
// and returns a slice of validation errors. An empty slice means the graph is
// valid. This function is read-only and never mutates the graph.
func Validate(g *SceneGraph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDAG(g)...)
	errs = append(errs, validateReferences(g)...)
	errs = append(errs, validateNames(g)...)
	errs = append(errs, validateRoots(g)...)
	errs = append(errs, validateKinds(g)...)
	return errs
}

// ValidateAll runs all validation tiers (structural, geometric, appearance)
// and returns a ValidationResult with separated errors and warnings.
func ValidateAll(g *SceneGraph) ValidationResult {
	// Tier 1: structural validation.
	tier1 := Validate(g)

	// Tier 2: geometric validation.
	tier2Errs, tier2Warnings := validateGeometry(g)

	// Tier 3: appearance warnings.
	tier3Warnings := validateAppearance(g)

	var result ValidationResult
	for _, e := range tier1 {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{
				NodeID:  e.NodeID,
				Message: e.Message,
			})
		} else {
			result.Errors = append(result.Errors, e)
		}
	}

	result.Errors = append(result.Errors, tier2Errs...)
	result.Warnings = append(result.Warnings, tier2Warnings...)
	result.Warnings = append(result.Warnings, tier3Warnings...)

	return result
}

// validateDAG checks for cycles using DFS with 3-color marking.
// White (0) = unvisited, gray (1) = in current DFS path, black (2) = fully explored.
// If we encounter a gray node during traversal, we have found a cycle.
func validateDAG(g *SceneGraph) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[NodeID]int) // default zero = white
	var errs []ValidationError

	var visit func(id NodeID) bool // returns true if cycle found
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("cycle detected: node %s is part of a cycle", id.Short()),
				Severity: SeverityError,
			})
			return true
		}

		color[id] = gray

		node, ok := g.Nodes[id]
		if !ok {
			// Dangling reference; handled by validateReferences.
			color[id] = black
			return false
		}

		for _, childID := range node.Children {
			if visit(childID) {
				return true
			}
		}

		color[id] = black
		return false
	}

	// Start DFS from every node to catch disconnected components.
	for id := range g.Nodes {
		if color[id] == white {
			if visit(id) {
				// One cycle error is sufficient; stop early.
				break
			}
		}
	}

	return errs
}

// validateReferences checks that every child NodeID points to a node that
// actually exists in g.Nodes.
func validateReferences(g *SceneGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		for _, childID := range node.Children {
			if _, ok := g.Nodes[childID]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("child reference %s does not exist", childID.Short()),
					Severity: SeverityError,
				})
			}
		}
	}

	return errs
}

// validateNames checks that the NameIndex is injective (no two nodes share the
// same name) and that every entry in NameIndex points to an existing node.
func validateNames(g *SceneGraph) []ValidationError {
	var errs []ValidationError

	for name, id := range g.NameIndex {
		if _, ok := g.Nodes[id]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q references non-existent node %s", name, id.Short()),
				Severity: SeverityError,
			})
		}
	}

	nameToNodes := make(map[string][]NodeID)
	for id, node := range g.Nodes {
		if node.Name != "" {
			nameToNodes[node.Name] = append(nameToNodes[node.Name], id)
		}
	}
	for name, ids := range nameToNodes {
		if len(ids) > 1 {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("duplicate name %q assigned to %d nodes", name, len(ids)),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// validateRoots checks that every root ID references an existing node and
// warns about orphan nodes (nodes unreachable from any root). Orphan
// primitives are still rendered when a graph has no roots at all.
func validateRoots(g *SceneGraph) []ValidationError {
	var errs []ValidationError

	for _, rid := range g.Roots {
		if _, ok := g.Nodes[rid]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("root reference %s does not exist", rid.Short()),
				Severity: SeverityError,
			})
		}
	}

	if len(g.Nodes) == 0 || len(g.Roots) == 0 {
		return errs
	}

	reachable := make(map[NodeID]bool)
	queue := make([]NodeID, 0, len(g.Roots))
	for _, rid := range g.Roots {
		if _, ok := g.Nodes[rid]; ok && !reachable[rid] {
			reachable[rid] = true
			queue = append(queue, rid)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		node := g.Nodes[current]
		if node == nil {
			continue
		}
		for _, childID := range node.Children {
			if !reachable[childID] {
				reachable[childID] = true
				queue = append(queue, childID)
			}
		}
	}

	for id, node := range g.Nodes {
		if !reachable[id] {
			name := node.Name
			if name == "" {
				name = id.Short()
			}
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("node %q is not reachable from any root (orphan)", name),
				Severity: SeverityWarning,
			})
		}
	}

	return errs
}

// validateKinds checks that each node's payload matches its kind and that
// primitives are leaves.
func validateKinds(g *SceneGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		var ok bool
		switch node.Kind {
		case NodePrimitive:
			switch node.Data.(type) {
			case BoxData, CylinderData:
				ok = true
			}
			if len(node.Children) > 0 {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  "primitive node must not have children",
					Severity: SeverityError,
				})
			}
		case NodeTransform:
			_, ok = node.Data.(TransformData)
		case NodeGroup:
			_, ok = node.Data.(GroupData)
		}
		if !ok {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("%s node has unexpected data type %T", node.Kind, node.Data),
				Severity: SeverityError,
			})
		}
	}

	return errs
}
