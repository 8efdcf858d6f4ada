package sim

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/softsim/internal/xpbd"
)

// ErrUnstable indicates NaN or Inf in the particle state.
var ErrUnstable = errors.New("sim: particle state diverged (NaN or Inf)")

type Metric interface {
	Name() string
	Observe(b *xpbd.SoftBody, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(b *xpbd.SoftBody, frame int, t float64)
}

// GrabEvent pins Particle to Target from frame Start until frame End.
// End <= Start holds the grab until the run finishes.
type GrabEvent struct {
	Particle int
	Target   mgl64.Vec3
	Start    int
	End      int
}

type Config struct {
	Dt            float64
	Substeps      int
	Frames        int
	Gravity       mgl64.Vec3
	ValidateState bool
	Grabs         []GrabEvent
}

func DefaultConfig() Config {
	return Config{
		Dt:            1.0 / 60.0,
		Substeps:      10,
		Frames:        300,
		Gravity:       mgl64.Vec3{0, -10, 0},
		ValidateState: true,
	}
}

// Frame is what a run records after every frame.
type Frame struct {
	Time        float64
	Centroid    mgl64.Vec3
	EdgeError   float64
	VolumeError float64
}

type Result struct {
	Frames     []Frame
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

// Heights returns the centroid height of every recorded frame.
func (r *Result) Heights() []float64 {
	hs := make([]float64, len(r.Frames))
	for i, f := range r.Frames {
		hs[i] = f.Centroid.Y()
	}
	return hs
}

type FrameError struct {
	Frame int
	Time  float64
	Err   error
}

func (e FrameError) Error() string {
	return fmt.Sprintf("frame %d (t=%.4f): %v", e.Frame, e.Time, e.Err)
}

func (e FrameError) Unwrap() error { return e.Err }
