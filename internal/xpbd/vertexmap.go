package xpbd

import "github.com/go-gl/mathgl/mgl64"

// DefaultWeldTolerance is the distance under which a display vertex is
// considered to sit on a particle.
const DefaultWeldTolerance = 1e-4

// VertexMap fans particle positions out to display vertices. Several
// vertices may coincide with one particle, e.g. where a surface is split for
// flat shading.
type VertexMap struct {
	fanout   [][]int
	vertices int
	unbound  int
}

// BindVertices matches every display vertex to the nearest particle within
// tol, using the rest positions.
func BindVertices(particles, vertices []mgl64.Vec3, tol float64) VertexMap {
	m := VertexMap{
		fanout:   make([][]int, len(particles)),
		vertices: len(vertices),
	}
	tol2 := tol * tol

	for v, pos := range vertices {
		best, bestDist := -1, 0.0
		for p := range particles {
			d := particles[p].Sub(pos).LenSqr()
			if d <= tol2 && (best < 0 || d < bestDist) {
				best, bestDist = p, d
			}
		}
		if best < 0 {
			m.unbound++
			continue
		}
		m.fanout[best] = append(m.fanout[best], v)
	}
	return m
}

// Apply writes each particle position to all of its vertices in dst.
// Unbound vertices are left untouched.
func (m VertexMap) Apply(positions, dst []mgl64.Vec3) {
	for p, vs := range m.fanout {
		if p >= len(positions) {
			return
		}
		for _, v := range vs {
			if v < len(dst) {
				dst[v] = positions[p]
			}
		}
	}
}

// Vertices lists the display vertices bound to particle p.
func (m VertexMap) Vertices(p int) []int {
	if p < 0 || p >= len(m.fanout) {
		return nil
	}
	return m.fanout[p]
}

func (m VertexMap) NumVertices() int { return m.vertices }

// Unbound counts display vertices with no particle within tolerance.
func (m VertexMap) Unbound() int { return m.unbound }
