package mesh

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// SignedVolume is the signed volume of the tetrahedron (p0, p1, p2, p3):
// ((p1-p0) x (p2-p0)) . (p3-p0) / 6. It is positive when p3 lies on the side
// of triangle (p0, p1, p2) that its right-handed normal points to.
func SignedVolume(p0, p1, p2, p3 mgl64.Vec3) float64 {
	return p1.Sub(p0).Cross(p2.Sub(p0)).Dot(p3.Sub(p0)) / 6.0
}

// RegularTetrahedron returns a regular tetrahedron with the given edge length
// whose centroid sits at center. One face is horizontal with the apex up.
func RegularTetrahedron(edge float64, center mgl64.Vec3) Mesh {
	h := edge * math.Sqrt(2.0/3.0)
	r := edge / math.Sqrt(3.0)

	base := -h / 4
	nodes := []mgl64.Vec3{
		{r, base, 0},
		{-r / 2, base, edge / 2},
		{-r / 2, base, -edge / 2},
		{0, base + h, 0},
	}
	for i := range nodes {
		nodes[i] = nodes[i].Add(center)
	}

	return Mesh{
		Nodes:    nodes,
		Elements: []Element{orient(nodes, Element{0, 1, 2, 3})},
	}
}

// kuhn lists the axis orders of the six tetrahedra that split a cube along
// its main diagonal. Neighbouring cells share faces exactly.
var kuhn = [6][3]int{
	{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
}

// Box tetrahedralizes an axis-aligned box with res cells per axis. origin is
// the minimum corner.
func Box(res int, size, origin mgl64.Vec3) (Mesh, error) {
	if res < 1 {
		return Mesh{}, fmt.Errorf("%w: got %d", ErrBadResolution, res)
	}

	n := res + 1
	nodes := make([]mgl64.Vec3, 0, n*n*n)
	for k := 0; k < n; k++ {
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				nodes = append(nodes, mgl64.Vec3{
					origin.X() + size.X()*float64(i)/float64(res),
					origin.Y() + size.Y()*float64(j)/float64(res),
					origin.Z() + size.Z()*float64(k)/float64(res),
				})
			}
		}
	}

	idx := func(c [3]int) int { return c[0] + c[1]*n + c[2]*n*n }

	elements := make([]Element, 0, res*res*res*6)
	for k := 0; k < res; k++ {
		for j := 0; j < res; j++ {
			for i := 0; i < res; i++ {
				for _, order := range kuhn {
					c := [3]int{i, j, k}
					var e Element
					e[0] = idx(c)
					for step, axis := range order {
						c[axis]++
						e[step+1] = idx(c)
					}
					elements = append(elements, orient(nodes, e))
				}
			}
		}
	}

	return Mesh{Nodes: nodes, Elements: elements}, nil
}

// orient swaps the last two corners of e when its signed volume is negative.
func orient(nodes []mgl64.Vec3, e Element) Element {
	if SignedVolume(nodes[e[0]], nodes[e[1]], nodes[e[2]], nodes[e[3]]) < 0 {
		e[2], e[3] = e[3], e[2]
	}
	return e
}
