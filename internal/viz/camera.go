package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Camera is a perspective camera orbiting Target at Distance.
type Camera struct {
	Target           mgl64.Vec3
	Distance, Near   float64
	RotX, RotY, RotZ float64
	Zoom             float64
	// Extent is the world span that fills the shorter screen side at zoom 1.
	Extent float64
}

func NewCamera(target mgl64.Vec3) *Camera {
	return &Camera{
		Target:   target,
		Distance: 10,
		Near:     0.1,
		RotX:     -0.35,
		RotY:     0.6,
		Zoom:     1,
		Extent:   4,
	}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

func (c *Camera) rotation() mgl64.Mat3 {
	return mgl64.Rotate3DZ(c.RotZ).Mul3(mgl64.Rotate3DY(c.RotY)).Mul3(mgl64.Rotate3DX(c.RotX))
}

// Project maps a world point to dot coordinates on a sw x sh screen. ok is
// false when the point is behind the near plane or off screen.
func (c *Camera) Project(p mgl64.Vec3, sw, sh int) (x, y int, ok bool) {
	return c.project(c.rotation(), p, sw, sh)
}

func (c *Camera) project(rot mgl64.Mat3, p mgl64.Vec3, sw, sh int) (int, int, bool) {
	v := rot.Mul3x1(p.Sub(c.Target)).Mul(c.Zoom)
	if v.Z() >= c.Distance-c.Near {
		return 0, 0, false
	}
	persp := c.Distance / (c.Distance - v.Z())
	unit := float64(min(sw, sh)) / c.Extent

	x := int(math.Round(v.X()*persp*unit)) + sw/2
	y := int(math.Round(-v.Y()*persp*unit)) + sh/2
	return x, y, x >= 0 && x < sw && y >= 0 && y < sh
}

// Wireframe is a set of segments between vertex indices.
type Wireframe struct {
	Edges [][2]int
}

// TriangleWireframe outlines consecutive vertex triples, the layout produced
// by duplicating every surface triangle corner.
func TriangleWireframe(numTriangles int) *Wireframe {
	w := &Wireframe{Edges: make([][2]int, 0, numTriangles*3)}
	for t := 0; t < numTriangles; t++ {
		a, b, c := 3*t, 3*t+1, 3*t+2
		w.Edges = append(w.Edges, [2]int{a, b}, [2]int{b, c}, [2]int{c, a})
	}
	return w
}

// Render draws every edge with at least one visible endpoint.
func (w *Wireframe) Render(c *Canvas, cam *Camera, vertices []mgl64.Vec3) {
	if c == nil || w == nil || cam == nil {
		return
	}
	sw, sh := c.Dots()
	rot := cam.rotation()
	for _, e := range w.Edges {
		x1, y1, v1 := cam.project(rot, vertices[e[0]], sw, sh)
		x2, y2, v2 := cam.project(rot, vertices[e[1]], sw, sh)
		if v1 || v2 {
			c.DrawLine(x1, y1, x2, y2)
		}
	}
}

// RenderGround draws a square grid of the given half size on the plane y.
func RenderGround(c *Canvas, cam *Camera, center mgl64.Vec3, y, half float64, lines int) {
	if math.IsInf(y, 0) || lines < 2 {
		return
	}
	sw, sh := c.Dots()
	rot := cam.rotation()
	seg := func(a, b mgl64.Vec3) {
		x1, y1, v1 := cam.project(rot, a, sw, sh)
		x2, y2, v2 := cam.project(rot, b, sw, sh)
		if v1 && v2 {
			c.DrawLine(x1, y1, x2, y2)
		}
	}
	for i := 0; i < lines; i++ {
		f := -half + 2*half*float64(i)/float64(lines-1)
		seg(mgl64.Vec3{center.X() + f, y, center.Z() - half}, mgl64.Vec3{center.X() + f, y, center.Z() + half})
		seg(mgl64.Vec3{center.X() - half, y, center.Z() + f}, mgl64.Vec3{center.X() + half, y, center.Z() + f})
	}
}
