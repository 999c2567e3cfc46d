package graph

import (
	"fmt"
	"sort"
)

// DefaultUnits is the only unit system scene scripts use.
const DefaultUnits = "m"

// GlobalDefaults contains graph-wide default settings.
type GlobalDefaults struct {
	Units string `json:"units"`
	Color string `json:"color,omitempty"` // fallback part color; empty = palette
}

// SceneGraph is the top-level immutable data structure produced by script
// evaluation. It is never mutated in place; each evaluation produces a new graph.
type SceneGraph struct {
	Nodes     map[NodeID]*Node  `json:"nodes"`
	Roots     []NodeID          `json:"roots"`
	NameIndex map[string]NodeID `json:"name_index"`
	Defaults  GlobalDefaults    `json:"defaults"`
	Version   uint64            `json:"version"`
}

// New creates an empty SceneGraph with default settings.
func New() *SceneGraph {
	return &SceneGraph{
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string]NodeID),
		Defaults: GlobalDefaults{
			Units: DefaultUnits,
		},
	}
}

// AddNode adds a node to the graph. It does not check for duplicates.
func (g *SceneGraph) AddNode(n *Node) {
	g.Nodes[n.ID] = n
	if n.Name != "" {
		g.NameIndex[n.Name] = n.ID
	}
}

// AddRoot registers a node ID as a root of the graph.
func (g *SceneGraph) AddRoot(id NodeID) {
	g.Roots = append(g.Roots, id)
}

// Lookup returns the node with the given user-assigned name, or nil.
func (g *SceneGraph) Lookup(name string) *Node {
	id, ok := g.NameIndex[name]
	if !ok {
		return nil
	}
	return g.Nodes[id]
}

// MustLookup returns the node with the given name, or panics.
func (g *SceneGraph) MustLookup(name string) *Node {
	n := g.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("graph: no node named %q", name))
	}
	return n
}

// Get returns the node with the given ID, or nil.
func (g *SceneGraph) Get(id NodeID) *Node {
	return g.Nodes[id]
}

// Parts returns all primitive nodes in the graph, ordered by name then ID
// so callers iterate deterministically.
func (g *SceneGraph) Parts() []*Node {
	var parts []*Node
	for _, n := range g.Nodes {
		if n.Kind == NodePrimitive {
			parts = append(parts, n)
		}
	}
	sort.Slice(parts, func(i, j int) bool {
		if parts[i].Name != parts[j].Name {
			return parts[i].Name < parts[j].Name
		}
		return parts[i].ID < parts[j].ID
	})
	return parts
}

// VisibleParts returns the primitive nodes that are not hidden.
func (g *SceneGraph) VisibleParts() []*Node {
	var visible []*Node
	for _, n := range g.Parts() {
		if a, ok := appearanceOf(n.Data); ok && !a.Hidden {
			visible = append(visible, n)
		}
	}
	return visible
}

// Children returns the child nodes of the given node.
func (g *SceneGraph) Children(n *Node) []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c := g.Nodes[cid]; c != nil {
			children = append(children, c)
		}
	}
	return children
}

// NodeCount returns the total number of nodes.
func (g *SceneGraph) NodeCount() int {
	return len(g.Nodes)
}

// AppearanceOf returns the appearance of a primitive node. ok is false for
// non-primitive nodes.
func AppearanceOf(n *Node) (a Appearance, ok bool) {
	if n == nil {
		return Appearance{}, false
	}
	return appearanceOf(n.Data)
}
