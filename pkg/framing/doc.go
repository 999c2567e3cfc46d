// Package framing computes orthographic camera framing for a set of posed
// objects: the world bounds of the objects, camera placement on an orbit
// around their center, a roll-stable look-at orientation, and the
// orthographic width needed to keep every bounding corner in frame.
//
// Everything here is a pure function of its inputs. Vectors and transforms
// are sdfx types so scene objects can be fed straight from the kernel.
package framing

import "errors"

// ErrGeometryDegenerate reports input geometry that cannot be framed, such
// as a camera placed on its own target or a non-finite extent.
var ErrGeometryDegenerate = errors.New("geometry degenerate")
