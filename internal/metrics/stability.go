package metrics

import (
	"math"

	"github.com/san-kum/softsim/internal/xpbd"
)

// Stability is the fraction of observed frames in which every particle is
// finite and within threshold of the origin.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(b *xpbd.SoftBody, t float64) {
	s.samples++
	if !b.Valid() {
		s.violations++
		return
	}
	for i := 0; i < b.NumParticles(); i++ {
		p := b.Particle(i).Position
		if math.Abs(p.X()) > s.threshold || math.Abs(p.Y()) > s.threshold || math.Abs(p.Z()) > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
