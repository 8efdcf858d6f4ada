package metrics

import (
	"github.com/san-kum/softsim/internal/sim"
	"github.com/san-kum/softsim/internal/xpbd"
)

// CentroidDrop is how far the centroid has fallen below its height at
// construction time, as of the last observed frame.
type CentroidDrop struct {
	name    string
	start   float64
	current float64
}

func NewCentroidDrop(b *xpbd.SoftBody) *CentroidDrop {
	y := b.Centroid().Y()
	return &CentroidDrop{name: "centroid_drop", start: y, current: y}
}

func (c *CentroidDrop) Name() string { return c.name }

func (c *CentroidDrop) Observe(b *xpbd.SoftBody, t float64) {
	c.current = b.Centroid().Y()
}

func (c *CentroidDrop) Value() float64 { return c.start - c.current }

func (c *CentroidDrop) Reset() { c.current = c.start }

// GroundContact is the mean fraction of particles touching the ground plane.
type GroundContact struct {
	name      string
	tolerance float64
	sum       float64
	samples   int
}

func NewGroundContact(tolerance float64) *GroundContact {
	return &GroundContact{name: "ground_contact", tolerance: tolerance}
}

func (g *GroundContact) Name() string { return g.name }

func (g *GroundContact) Observe(b *xpbd.SoftBody, t float64) {
	n := b.NumParticles()
	if n == 0 {
		return
	}
	ground := b.Params().GroundHeight
	touching := 0
	for i := 0; i < n; i++ {
		if b.Particle(i).Position.Y() <= ground+g.tolerance {
			touching++
		}
	}
	g.sum += float64(touching) / float64(n)
	g.samples++
}

func (g *GroundContact) Value() float64 {
	if g.samples == 0 {
		return 0
	}
	return g.sum / float64(g.samples)
}

func (g *GroundContact) Reset() {
	g.sum = 0
	g.samples = 0
}

// Default is the metric set attached to every CLI run.
func Default(b *xpbd.SoftBody) []sim.Metric {
	return []sim.Metric{
		NewCentroidDrop(b),
		NewEdgeStrain(),
		NewVolumeLoss(),
		NewGroundContact(1e-3),
		NewStability(1e4),
	}
}
