package mesh

import "sort"

// Triangle is three node indices in counter-clockwise order seen from outside.
type Triangle [3]int

// faces of a positively oriented tetrahedron, wound outward.
var tetFaces = [4][3]int{{0, 2, 1}, {0, 1, 3}, {0, 3, 2}, {1, 2, 3}}

// Surface returns the boundary of a tetrahedral mesh: every face that belongs
// to exactly one element, in element order.
func Surface(elements []Element) []Triangle {
	counts := make(map[[3]int]int, len(elements)*4)
	for _, e := range elements {
		for _, f := range tetFaces {
			counts[faceKey(e[f[0]], e[f[1]], e[f[2]])]++
		}
	}

	var tris []Triangle
	for _, e := range elements {
		for _, f := range tetFaces {
			t := Triangle{e[f[0]], e[f[1]], e[f[2]]}
			if counts[faceKey(t[0], t[1], t[2])] == 1 {
				tris = append(tris, t)
			}
		}
	}
	return tris
}

func faceKey(a, b, c int) [3]int {
	k := []int{a, b, c}
	sort.Ints(k)
	return [3]int{k[0], k[1], k[2]}
}
