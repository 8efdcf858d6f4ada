package xpbd

import "github.com/go-gl/mathgl/mgl64"

// volumeFaces gives, for each corner i, the face opposite it as
// (base, a, b). The gradient of the signed volume with respect to corner i
// is (p[a]-p[base]) x (p[b]-p[base]) / 6.
var volumeFaces = [4][3]int{{1, 3, 2}, {0, 2, 3}, {0, 3, 1}, {0, 1, 2}}

// solveEdges runs one Gauss-Seidel sweep over the distance constraints.
func solveEdges(ps []Particle, edges []Edge, compliance, h float64) {
	alpha := compliance / (h * h)

	for _, e := range edges {
		p1, p2 := &ps[e.A], &ps[e.B]

		w := p1.InvMass + p2.InvMass
		if w == 0 {
			continue
		}

		diff := p1.Position.Sub(p2.Position)
		length := diff.Len()
		if length == 0 {
			continue
		}

		n := diff.Mul(1.0 / length)
		s := -(length - e.RestLength) / (w + alpha)

		p1.Position = p1.Position.Add(n.Mul(s * p1.InvMass))
		p2.Position = p2.Position.Sub(n.Mul(s * p2.InvMass))
	}
}

// solveVolumes runs one Gauss-Seidel sweep over the volume constraints.
func solveVolumes(ps []Particle, tets []Tetrahedron, compliance, h float64) {
	alpha := compliance / (h * h)

	var grads [4]mgl64.Vec3
	for _, t := range tets {
		w := 0.0
		for i, face := range volumeFaces {
			base := ps[t.Ids[face[0]]].Position
			a := ps[t.Ids[face[1]]].Position.Sub(base)
			b := ps[t.Ids[face[2]]].Position.Sub(base)
			grads[i] = a.Cross(b).Mul(1.0 / 6.0)
			w += ps[t.Ids[i]].InvMass * grads[i].LenSqr()
		}
		if w == 0 {
			continue
		}

		c := tetVolume(ps, t.Ids) - t.RestVolume
		s := -c / (w + alpha)

		for i, id := range t.Ids {
			ps[id].Position = ps[id].Position.Add(grads[i].Mul(s * ps[id].InvMass))
		}
	}
}
