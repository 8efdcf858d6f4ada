package xpbd

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexOutOfRange indicates a tetrahedron referencing a particle that does not exist.
	ErrIndexOutOfRange = errors.New("xpbd: tetrahedron index out of range")

	// ErrNoParticle indicates a pin request for a particle that does not exist.
	ErrNoParticle = errors.New("xpbd: no such particle")
)

// LoadError reports which tetrahedron broke the build.
type LoadError struct {
	Tet     int
	Index   int
	Wrapped error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("tetrahedron %d: index %d: %v", e.Tet, e.Index, e.Wrapped)
}

func (e *LoadError) Unwrap() error {
	return e.Wrapped
}
