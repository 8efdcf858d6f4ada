package xpbd

import (
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/softsim/internal/mesh"
)

// Options configure a SoftBody. Zero values select the defaults.
type Options struct {
	// Density scales the volume-derived particle masses. Defaults to 1.
	Density          float64
	EdgeCompliance   float64
	VolumeCompliance float64
	// Damping is the fraction of velocity kept every substep. 1 disables
	// damping; 0 selects DefaultDamping.
	Damping      float64
	GroundHeight float64
	Logger       *slog.Logger
}

// grab is the interaction state while one particle is pinned.
type grab struct {
	particle int
	target   mgl64.Vec3
	invMass  float64
}

// SoftBody is a tetrahedral mesh simulated with XPBD. It is not safe for
// concurrent use: Step, Pin, Unpin and Reset must be serialized by the caller.
type SoftBody struct {
	particles []Particle
	rest      []Particle
	edges     []Edge
	tets      []Tetrahedron
	params    Params
	grabbed   *grab
	logger    *slog.Logger
}

// New builds a soft body from rest positions and tetrahedra. It fails only
// when an element references a particle that does not exist.
func New(m mesh.Mesh, opts Options) (*SoftBody, error) {
	if opts.Density <= 0 {
		opts.Density = 1
	}
	if opts.Damping == 0 {
		opts.Damping = DefaultDamping
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	ps := newParticles(m.Nodes)
	edges, tets, err := buildConstraints(ps, m.Elements, opts.Density)
	if err != nil {
		return nil, err
	}

	b := &SoftBody{
		particles: ps,
		rest:      cloneParticles(ps),
		edges:     edges,
		tets:      tets,
		params: Params{
			EdgeCompliance:   opts.EdgeCompliance,
			VolumeCompliance: opts.VolumeCompliance,
			Damping:          opts.Damping,
			GroundHeight:     opts.GroundHeight,
		},
		logger: opts.Logger,
	}

	b.logger.Debug("soft body built",
		"particles", len(ps),
		"edges", len(edges),
		"tets", len(tets))

	return b, nil
}

// Load imports a node/element file pair and builds a soft body from it. An
// unreadable file gives an empty body; the caller decides whether that is
// fatal.
func Load(nodePath, elementPath string, layout mesh.Layout, opts Options) (*SoftBody, error) {
	im := mesh.NewImporter(layout, opts.Logger)
	return New(im.Import(nodePath, elementPath), opts)
}

// Step advances the simulation by one frame. A grabbed particle is held at
// its target.
func (b *SoftBody) Step(dt float64, substeps int, gravity mgl64.Vec3) {
	b.holdGrab()
	Integrate(b.particles, b.edges, b.tets, dt, substeps, gravity, b.params)
	b.holdGrab()
}

// SetCompliance updates the material softness used by subsequent steps.
func (b *SoftBody) SetCompliance(edge, volume float64) {
	b.params.EdgeCompliance = edge
	b.params.VolumeCompliance = volume
}

func (b *SoftBody) Params() Params { return b.params }

// Reset restores the rest snapshot and releases any grab.
func (b *SoftBody) Reset() {
	b.grabbed = nil
	copy(b.particles, b.rest)
}

func (b *SoftBody) NumParticles() int { return len(b.particles) }

// Particle returns a copy of particle i.
func (b *SoftBody) Particle(i int) Particle { return b.particles[i] }

// Positions copies the current particle positions into a new slice.
func (b *SoftBody) Positions() []mgl64.Vec3 {
	return b.PositionsInto(make([]mgl64.Vec3, len(b.particles)))
}

// RestPositions copies the positions of the rest snapshot into a new slice.
func (b *SoftBody) RestPositions() []mgl64.Vec3 {
	dst := make([]mgl64.Vec3, len(b.rest))
	for i := range b.rest {
		dst[i] = b.rest[i].Position
	}
	return dst
}

// PositionsInto copies the current positions into dst, growing it if needed.
func (b *SoftBody) PositionsInto(dst []mgl64.Vec3) []mgl64.Vec3 {
	if cap(dst) < len(b.particles) {
		dst = make([]mgl64.Vec3, len(b.particles))
	}
	dst = dst[:len(b.particles)]
	for i := range b.particles {
		dst[i] = b.particles[i].Position
	}
	return dst
}

func (b *SoftBody) Edges() []Edge { return b.edges }

func (b *SoftBody) Tetrahedra() []Tetrahedron { return b.tets }

// Centroid is the unweighted mean of the particle positions.
func (b *SoftBody) Centroid() mgl64.Vec3 {
	var c mgl64.Vec3
	if len(b.particles) == 0 {
		return c
	}
	for i := range b.particles {
		c = c.Add(b.particles[i].Position)
	}
	return c.Mul(1.0 / float64(len(b.particles)))
}

// EdgeError is the largest relative deviation of an edge from its rest length.
func (b *SoftBody) EdgeError() float64 {
	worst := 0.0
	for _, e := range b.edges {
		if e.RestLength == 0 {
			continue
		}
		l := b.particles[e.A].Position.Sub(b.particles[e.B].Position).Len()
		worst = math.Max(worst, math.Abs(l-e.RestLength)/e.RestLength)
	}
	return worst
}

// VolumeError is the largest relative deviation of a tetrahedron from its
// rest volume.
func (b *SoftBody) VolumeError() float64 {
	worst := 0.0
	for _, t := range b.tets {
		if t.RestVolume == 0 {
			continue
		}
		v := tetVolume(b.particles, t.Ids)
		worst = math.Max(worst, math.Abs(v-t.RestVolume)/math.Abs(t.RestVolume))
	}
	return worst
}

// Valid reports whether every particle holds finite values.
func (b *SoftBody) Valid() bool {
	for i := range b.particles {
		if !b.particles[i].valid() {
			return false
		}
	}
	return true
}
