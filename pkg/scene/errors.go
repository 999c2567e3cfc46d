package scene

import (
	"errors"

	"github.com/chazu/stager/pkg/framing"
)

var (
	// ErrConfigurationUnavailable reports an optional setting the engine or
	// the environment cannot provide.
	ErrConfigurationUnavailable = errors.New("configuration unavailable")

	// ErrGeometryDegenerate reports geometry that cannot be framed.
	ErrGeometryDegenerate = framing.ErrGeometryDegenerate

	// ErrExportFailed reports an output file that could not be written.
	ErrExportFailed = errors.New("export failed")
)
