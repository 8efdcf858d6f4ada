package xpbd

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/softsim/internal/mesh"
)

func TestBindVertices(t *testing.T) {
	particles := []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	vertices := []mgl64.Vec3{
		{0, 0, 0},
		{1, 0, 0},
		{0, 0, 0.00005},
		{5, 5, 5},
		{0, 1, 0},
		{1, 0, 0},
	}

	m := BindVertices(particles, vertices, DefaultWeldTolerance)

	tests := []struct {
		particle int
		want     []int
	}{
		{0, []int{0, 2}},
		{1, []int{1, 5}},
		{2, []int{4}},
	}
	for _, tt := range tests {
		got := m.Vertices(tt.particle)
		if len(got) != len(tt.want) {
			t.Fatalf("particle %d: vertices %v, want %v", tt.particle, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("particle %d: vertices %v, want %v", tt.particle, got, tt.want)
			}
		}
	}

	if m.Unbound() != 1 {
		t.Errorf("expected 1 unbound vertex, got %d", m.Unbound())
	}
	if m.NumVertices() != len(vertices) {
		t.Errorf("expected %d vertices, got %d", len(vertices), m.NumVertices())
	}
}

func TestVertexMap_FollowsSimulation(t *testing.T) {
	tet := mesh.RegularTetrahedron(1, mgl64.Vec3{0, 5, 0})
	body, err := New(tet, Options{GroundHeight: -100})
	if err != nil {
		t.Fatal(err)
	}

	// one display vertex per triangle corner
	var display []mgl64.Vec3
	for _, tri := range mesh.Surface(tet.Elements) {
		for _, id := range tri {
			display = append(display, tet.Nodes[id])
		}
	}
	m := BindVertices(body.Positions(), display, DefaultWeldTolerance)

	for p := 0; p < body.NumParticles(); p++ {
		if n := len(m.Vertices(p)); n != 3 {
			t.Errorf("particle %d fans out to %d vertices, want 3", p, n)
		}
	}

	for range 10 {
		body.Step(1.0/60, 10, gravity)
	}
	pos := body.Positions()
	m.Apply(pos, display)

	for p := range pos {
		for _, v := range m.Vertices(p) {
			if display[v] != pos[p] {
				t.Errorf("vertex %d = %v, particle %d = %v", v, display[v], p, pos[p])
			}
		}
	}
}
