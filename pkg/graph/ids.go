package graph

import (
	"crypto/sha256"
	"encoding/hex"
)

// NodeID is a content-addressed identifier for graph nodes. It is the hex
// SHA-256 of the node's creation path (e.g. "defpart/pole").
type NodeID string

// ZeroID is the empty NodeID.
const ZeroID NodeID = ""

// NewNodeID derives a stable NodeID from a creation path.
func NewNodeID(path string) NodeID {
	sum := sha256.Sum256([]byte(path))
	return NodeID(hex.EncodeToString(sum[:]))
}

// IsZero reports whether id is unset.
func (id NodeID) IsZero() bool {
	return id == ZeroID
}

// Short returns the first 8 hex characters, for logs and error messages.
func (id NodeID) Short() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

// SourceRef points at the script location that created a node.
type SourceRef struct {
	Line int `json:"line,omitempty"`
	Col  int `json:"col,omitempty"`
}

// Vec3 is a plain 3-vector used in node payloads.
type Vec3 struct {
	X, Y, Z float64
}

// IsZero reports whether all components are zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}
