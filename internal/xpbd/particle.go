package xpbd

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Particle is one simulated mesh node. InvMass is 0 for immovable or pinned
// particles.
type Particle struct {
	Position mgl64.Vec3
	Prev     mgl64.Vec3
	Velocity mgl64.Vec3
	Mass     float64
	InvMass  float64
}

func newParticles(positions []mgl64.Vec3) []Particle {
	ps := make([]Particle, len(positions))
	for i, p := range positions {
		ps[i] = Particle{Position: p, Prev: p}
	}
	return ps
}

func cloneParticles(ps []Particle) []Particle {
	c := make([]Particle, len(ps))
	copy(c, ps)
	return c
}

func (p *Particle) valid() bool {
	for _, v := range [...]mgl64.Vec3{p.Position, p.Prev, p.Velocity} {
		for _, f := range v {
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return false
			}
		}
	}
	return true
}
