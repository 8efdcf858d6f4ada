package xpbd

import (
	"cmp"
	"math"
	"slices"

	"github.com/san-kum/softsim/internal/mesh"
)

// Edge is a distance constraint between particles A < B.
type Edge struct {
	A, B       int
	RestLength float64
}

// Tetrahedron is a volume constraint over four particles. RestVolume is
// signed, computed with the same formula the solver uses at runtime.
type Tetrahedron struct {
	Ids        [4]int
	RestVolume float64
}

var tetEdges = [6][2]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}

func tetVolume(ps []Particle, ids [4]int) float64 {
	return mesh.SignedVolume(ps[ids[0]].Position, ps[ids[1]].Position, ps[ids[2]].Position, ps[ids[3]].Position)
}

// buildConstraints derives the edge and volume constraints of a tetrahedral
// mesh and writes every particle's mass. Each element adds 1/(density*|V|/4)
// to the inverse mass of its four corners.
func buildConstraints(ps []Particle, elements []mesh.Element, density float64) ([]Edge, []Tetrahedron, error) {
	for t, e := range elements {
		for _, id := range e {
			if id < 0 || id >= len(ps) {
				return nil, nil, &LoadError{Tet: t, Index: id, Wrapped: ErrIndexOutOfRange}
			}
		}
	}

	for i := range ps {
		ps[i].InvMass = 0
	}

	tets := make([]Tetrahedron, len(elements))
	edges := make([]Edge, 0, len(elements)*len(tetEdges))

	for t, e := range elements {
		ids := [4]int(e)
		vol := tetVolume(ps, ids)
		tets[t] = Tetrahedron{Ids: ids, RestVolume: vol}

		if quarter := density * math.Abs(vol) / 4.0; quarter > 0 {
			for _, id := range ids {
				ps[id].InvMass += 1.0 / quarter
			}
		}

		for _, pair := range tetEdges {
			a, b := ids[pair[0]], ids[pair[1]]
			if a > b {
				a, b = b, a
			}
			edges = append(edges, Edge{A: a, B: b})
		}
	}

	slices.SortFunc(edges, func(x, y Edge) int {
		if c := cmp.Compare(x.A, y.A); c != 0 {
			return c
		}
		return cmp.Compare(x.B, y.B)
	})
	edges = slices.CompactFunc(edges, func(x, y Edge) bool {
		return x.A == y.A && x.B == y.B
	})
	for i := range edges {
		edges[i].RestLength = ps[edges[i].A].Position.Sub(ps[edges[i].B].Position).Len()
	}

	for i := range ps {
		if ps[i].InvMass > 0 {
			ps[i].Mass = 1.0 / ps[i].InvMass
		} else {
			ps[i].Mass = 0
		}
	}

	return edges, tets, nil
}
