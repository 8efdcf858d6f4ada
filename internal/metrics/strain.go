package metrics

import (
	"math"

	"github.com/san-kum/softsim/internal/xpbd"
)

// EdgeStrain tracks the worst relative edge deviation seen in any frame.
type EdgeStrain struct {
	name  string
	worst float64
}

func NewEdgeStrain() *EdgeStrain {
	return &EdgeStrain{name: "edge_strain"}
}

func (e *EdgeStrain) Name() string { return e.name }

func (e *EdgeStrain) Observe(b *xpbd.SoftBody, t float64) {
	e.worst = math.Max(e.worst, b.EdgeError())
}

func (e *EdgeStrain) Value() float64 { return e.worst }

func (e *EdgeStrain) Reset() { e.worst = 0 }

// VolumeLoss tracks the worst relative tetrahedron volume deviation.
type VolumeLoss struct {
	name  string
	worst float64
}

func NewVolumeLoss() *VolumeLoss {
	return &VolumeLoss{name: "volume_error"}
}

func (v *VolumeLoss) Name() string { return v.name }

func (v *VolumeLoss) Observe(b *xpbd.SoftBody, t float64) {
	v.worst = math.Max(v.worst, b.VolumeError())
}

func (v *VolumeLoss) Value() float64 { return v.worst }

func (v *VolumeLoss) Reset() { v.worst = 0 }
