package graph

// NodeKind enumerates the types of nodes in the scene graph.
type NodeKind int

const (
	NodePrimitive NodeKind = iota // geometric primitive (box, cylinder)
	NodeTransform                 // spatial transformation (place)
	NodeGroup                     // logical grouping (model)
)

func (k NodeKind) String() string {
	switch k {
	case NodePrimitive:
		return "primitive"
	case NodeTransform:
		return "transform"
	case NodeGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Node is the fundamental element of the scene graph.
type Node struct {
	ID       NodeID    `json:"id"`
	Kind     NodeKind  `json:"kind"`
	Name     string    `json:"name,omitempty"`
	Source   SourceRef `json:"source"`
	Children []NodeID  `json:"children,omitempty"`
	Data     NodeData  `json:"data"`
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}
