package mesh

import "errors"

var (
	// ErrUnknownLayout indicates a layout name that is neither tetgen nor blender.
	ErrUnknownLayout = errors.New("mesh: unknown file layout")

	// ErrBadResolution indicates a generator resolution below one cell.
	ErrBadResolution = errors.New("mesh: resolution must be at least 1")
)
