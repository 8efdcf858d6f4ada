package sim

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Dt <= 0 {
		t.Error("DefaultConfig has invalid Dt")
	}
	if cfg.Substeps <= 0 {
		t.Error("DefaultConfig has invalid Substeps")
	}
	if cfg.Frames <= 0 {
		t.Error("DefaultConfig has invalid Frames")
	}
	if cfg.Gravity.Y() >= 0 {
		t.Error("DefaultConfig gravity should point down")
	}
}

func TestFrameError(t *testing.T) {
	err := FrameError{Frame: 150, Time: 2.5, Err: ErrUnstable}
	expected := "frame 150 (t=2.5000): sim: particle state diverged (NaN or Inf)"
	if err.Error() != expected {
		t.Errorf("FrameError.Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, ErrUnstable) {
		t.Error("FrameError should unwrap to ErrUnstable")
	}
}

func TestResultHeights(t *testing.T) {
	r := &Result{Frames: []Frame{
		{Centroid: mgl64.Vec3{0, 3, 0}},
		{Centroid: mgl64.Vec3{1, 2, 0}},
	}}
	hs := r.Heights()
	if len(hs) != 2 || hs[0] != 3 || hs[1] != 2 {
		t.Errorf("Heights() = %v, want [3 2]", hs)
	}
}
