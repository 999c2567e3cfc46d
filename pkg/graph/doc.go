// Package graph defines the scene graph types for stager.
// The scene graph is an immutable DAG of primitives, transforms, and
// groups that describes one model to be framed and rendered.
package graph
