package xpbd

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Pin grabs particle i and holds it at target until Unpin. Pinning the
// grabbed particle again only moves the target; pinning another particle
// releases the previous one first.
func (b *SoftBody) Pin(i int, target mgl64.Vec3) error {
	if i < 0 || i >= len(b.particles) {
		return fmt.Errorf("%w: %d of %d", ErrNoParticle, i, len(b.particles))
	}

	if b.grabbed != nil && b.grabbed.particle != i {
		b.Unpin()
	}
	if b.grabbed == nil {
		b.grabbed = &grab{particle: i, invMass: b.particles[i].InvMass}
		b.particles[i].InvMass = 0
	}

	b.grabbed.target = target
	b.holdGrab()
	return nil
}

// Unpin releases the grabbed particle, if any. Its inverse mass is restored
// and its velocity cleared.
func (b *SoftBody) Unpin() {
	if b.grabbed == nil {
		return
	}
	p := &b.particles[b.grabbed.particle]
	p.InvMass = b.grabbed.invMass
	p.Velocity = mgl64.Vec3{}
	p.Prev = p.Position
	b.grabbed = nil
}

// Grabbed returns the pinned particle index and its target.
func (b *SoftBody) Grabbed() (particle int, target mgl64.Vec3, ok bool) {
	if b.grabbed == nil {
		return -1, mgl64.Vec3{}, false
	}
	return b.grabbed.particle, b.grabbed.target, true
}

// NearestParticle returns the index of the particle closest to point, or -1
// for an empty body.
func (b *SoftBody) NearestParticle(point mgl64.Vec3) int {
	best, bestDist := -1, 0.0
	for i := range b.particles {
		d := b.particles[i].Position.Sub(point).LenSqr()
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func (b *SoftBody) holdGrab() {
	if b.grabbed == nil {
		return
	}
	p := &b.particles[b.grabbed.particle]
	p.Position = b.grabbed.target
	p.Prev = b.grabbed.target
	p.Velocity = mgl64.Vec3{}
}
