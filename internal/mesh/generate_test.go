package mesh

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegularTetrahedron(t *testing.T) {
	center := mgl64.Vec3{1, 2, 3}
	m := RegularTetrahedron(1.0, center)

	require.Len(t, m.Nodes, 4)
	require.Len(t, m.Elements, 1)

	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			assert.InDelta(t, 1.0, m.Nodes[i].Sub(m.Nodes[j]).Len(), 1e-12, "edge %d-%d", i, j)
		}
	}

	var c mgl64.Vec3
	for _, p := range m.Nodes {
		c = c.Add(p)
	}
	assert.True(t, c.Mul(0.25).ApproxEqualThreshold(center, 1e-12))

	e := m.Elements[0]
	vol := SignedVolume(m.Nodes[e[0]], m.Nodes[e[1]], m.Nodes[e[2]], m.Nodes[e[3]])
	assert.InDelta(t, 1/(6*math.Sqrt2), vol, 1e-12)
}

func TestBox(t *testing.T) {
	size := mgl64.Vec3{2, 1, 3}
	m, err := Box(2, size, mgl64.Vec3{-1, 0, 0})
	require.NoError(t, err)

	assert.Len(t, m.Nodes, 27)
	assert.Len(t, m.Elements, 48)

	total := 0.0
	for _, e := range m.Elements {
		vol := SignedVolume(m.Nodes[e[0]], m.Nodes[e[1]], m.Nodes[e[2]], m.Nodes[e[3]])
		assert.Greater(t, vol, 0.0, "elements are positively oriented")
		total += vol
	}
	assert.InDelta(t, 6.0, total, 1e-9)
}

func TestBox_BadResolution(t *testing.T) {
	_, err := Box(0, mgl64.Vec3{1, 1, 1}, mgl64.Vec3{})
	assert.ErrorIs(t, err, ErrBadResolution)
}

func TestSurface(t *testing.T) {
	tet := RegularTetrahedron(1, mgl64.Vec3{})
	assert.Len(t, Surface(tet.Elements), 4)

	box, err := Box(2, mgl64.Vec3{1, 1, 1}, mgl64.Vec3{})
	require.NoError(t, err)

	// each of the 6 box faces is a 2x2 grid of squares, two triangles each
	tris := Surface(box.Elements)
	assert.Len(t, tris, 6*4*2)

	for _, tri := range tris {
		a, b, c := box.Nodes[tri[0]], box.Nodes[tri[1]], box.Nodes[tri[2]]
		normal := b.Sub(a).Cross(c.Sub(a))
		centroid := a.Add(b).Add(c).Mul(1.0 / 3.0)
		out := centroid.Sub(mgl64.Vec3{0.5, 0.5, 0.5})
		assert.Greater(t, normal.Dot(out), 0.0, "triangle %v faces outward", tri)
	}
}
