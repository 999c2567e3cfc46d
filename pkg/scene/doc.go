// Package scene holds the state of one render: posed mesh objects, the
// orthographic camera, sun and world lighting, line-art settings and the
// capabilities of the selected render engine.
//
// A *Scene is created per model and passed explicitly to every step that
// reads or changes it. Optional configuration steps return errors wrapping
// ErrConfigurationUnavailable; callers record them with Scene.Warn and carry
// on.
package scene
