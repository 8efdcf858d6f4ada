package xpbd

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultDamping = 0.9999

	// velocities shorter than this are snapped to zero after each substep
	restVelocity = 1e-5
)

// Params are the material and environment constants of one integration.
type Params struct {
	EdgeCompliance   float64
	VolumeCompliance float64
	// Damping scales the reconciled velocity every substep.
	Damping float64
	// GroundHeight is the y of the ground plane. -Inf disables it.
	GroundHeight float64
}

// Integrate advances particles by one frame of length dt split into
// substeps. Every substep predicts, solves edges then volumes once, and
// reconciles velocities from the position change.
func Integrate(ps []Particle, edges []Edge, tets []Tetrahedron, dt float64, substeps int, gravity mgl64.Vec3, p Params) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return
	}
	if substeps < 1 {
		substeps = 1
	}

	h := dt / float64(substeps)
	if h*h == 0 {
		return
	}

	for range substeps {
		predict(ps, h, gravity, p.GroundHeight)
		solveEdges(ps, edges, p.EdgeCompliance, h)
		solveVolumes(ps, tets, p.VolumeCompliance, h)
		reconcile(ps, h, p.Damping)
	}
}

func predict(ps []Particle, h float64, gravity mgl64.Vec3, ground float64) {
	for i := range ps {
		p := &ps[i]
		if p.InvMass == 0 {
			continue
		}
		p.Velocity = p.Velocity.Add(gravity.Mul(h))
		p.Prev = p.Position
		p.Position = p.Position.Add(p.Velocity.Mul(h))

		if p.Position.Y() < ground {
			p.Position = p.Prev
			p.Position[1] = ground
		}
	}
}

func reconcile(ps []Particle, h, damping float64) {
	invH := 1.0 / h
	if math.IsInf(invH, 0) || math.IsNaN(invH) {
		return
	}

	for i := range ps {
		p := &ps[i]
		if p.InvMass == 0 {
			continue
		}
		p.Velocity = p.Position.Sub(p.Prev).Mul(damping * invH)
		if p.Velocity.Len() < restVelocity {
			p.Velocity = mgl64.Vec3{}
		}
	}
}
