package xpbd_test

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/softsim/internal/mesh"
	"github.com/san-kum/softsim/internal/xpbd"
)

var gravity = mgl64.Vec3{0, -10, 0}

func snapshot(b *xpbd.SoftBody) []xpbd.Particle {
	ps := make([]xpbd.Particle, b.NumParticles())
	for i := range ps {
		ps[i] = b.Particle(i)
	}
	return ps
}

var _ = Describe("SoftBody", func() {
	var (
		body *xpbd.SoftBody
		rest []xpbd.Particle
	)

	BeforeEach(func() {
		box, err := mesh.Box(2, mgl64.Vec3{1, 1, 1}, mgl64.Vec3{0, 2, 0})
		Expect(err).NotTo(HaveOccurred())

		body, err = xpbd.New(box, xpbd.Options{EdgeCompliance: 0.01, VolumeCompliance: 0.01})
		Expect(err).NotTo(HaveOccurred())
		rest = snapshot(body)
	})

	Describe("Pin", func() {
		It("rejects particles that do not exist", func() {
			Expect(body.Pin(-1, mgl64.Vec3{})).To(MatchError(xpbd.ErrNoParticle))
			Expect(body.Pin(body.NumParticles(), mgl64.Vec3{})).To(MatchError(xpbd.ErrNoParticle))
		})

		It("holds the particle at its target through steps", func() {
			target := mgl64.Vec3{0.5, 4, 0.5}
			Expect(body.Pin(13, target)).To(Succeed())

			for range 30 {
				body.Step(1.0/60, 10, gravity)
				Expect(body.Particle(13).Position).To(Equal(target))
			}

			p, tgt, ok := body.Grabbed()
			Expect(ok).To(BeTrue())
			Expect(p).To(Equal(13))
			Expect(tgt).To(Equal(target))
			Expect(body.Particle(13).InvMass).To(BeZero())
		})

		It("drags the rest of the body along", func() {
			start := body.Centroid()
			top := body.NearestParticle(mgl64.Vec3{0.5, 3, 0.5})
			Expect(body.Pin(top, body.Particle(top).Position.Add(mgl64.Vec3{0, 2, 0}))).To(Succeed())

			for range 60 {
				body.Step(1.0/60, 10, mgl64.Vec3{})
			}
			Expect(body.Centroid().Y()).To(BeNumerically(">", start.Y()))
		})

		It("moves the target when the same particle is pinned again", func() {
			Expect(body.Pin(5, mgl64.Vec3{0, 3, 0})).To(Succeed())
			Expect(body.Pin(5, mgl64.Vec3{1, 3, 0})).To(Succeed())

			Expect(body.Particle(5).Position).To(Equal(mgl64.Vec3{1, 3, 0}))
			body.Unpin()
			Expect(body.Particle(5).InvMass).To(Equal(rest[5].InvMass))
		})

		It("releases the previous particle when another one is grabbed", func() {
			Expect(body.Pin(5, mgl64.Vec3{0, 3, 0})).To(Succeed())
			Expect(body.Pin(6, mgl64.Vec3{1, 3, 0})).To(Succeed())

			Expect(body.Particle(5).InvMass).To(Equal(rest[5].InvMass))
			Expect(body.Particle(6).InvMass).To(BeZero())
		})
	})

	Describe("Unpin", func() {
		It("restores every inverse mass and clears the velocity", func() {
			for i := 0; i < body.NumParticles(); i++ {
				before := body.Particle(i).InvMass
				Expect(body.Pin(i, body.Particle(i).Position.Add(mgl64.Vec3{0, 0.1, 0}))).To(Succeed())
				body.Step(1.0/60, 10, gravity)
				body.Unpin()

				Expect(body.Particle(i).InvMass).To(Equal(before))
				Expect(body.Particle(i).Velocity).To(Equal(mgl64.Vec3{}))
			}

			_, _, ok := body.Grabbed()
			Expect(ok).To(BeFalse())
		})

		It("is a no-op without a grab", func() {
			body.Unpin()
			Expect(snapshot(body)).To(Equal(rest))
		})
	})

	Describe("Reset", func() {
		It("restores the import snapshot after any sequence of steps", func() {
			Expect(body.Pin(3, mgl64.Vec3{2, 5, 2})).To(Succeed())
			for range 20 {
				body.Step(1.0/60, 10, gravity)
			}
			body.Unpin()
			for range 20 {
				body.Step(1.0/60, 10, gravity)
			}

			body.Reset()
			Expect(snapshot(body)).To(Equal(rest))
		})

		It("is idempotent", func() {
			for range 10 {
				body.Step(1.0/60, 10, gravity)
			}
			body.Reset()
			once := snapshot(body)
			body.Reset()
			Expect(snapshot(body)).To(Equal(once))
		})

		It("releases an active grab", func() {
			Expect(body.Pin(7, mgl64.Vec3{3, 3, 3})).To(Succeed())
			body.Reset()

			_, _, ok := body.Grabbed()
			Expect(ok).To(BeFalse())
			Expect(body.Particle(7)).To(Equal(rest[7]))
		})
	})

	Describe("SetCompliance", func() {
		It("changes how far a loaded body sags", func() {
			sag := func(edge, volume float64) float64 {
				body.Reset()
				body.SetCompliance(edge, volume)
				Expect(body.Params().EdgeCompliance).To(Equal(edge))

				top := body.NearestParticle(mgl64.Vec3{0.5, 3, 0.5})
				Expect(body.Pin(top, body.Particle(top).Position)).To(Succeed())
				for range 120 {
					body.Step(1.0/60, 10, gravity)
				}
				body.Unpin()
				return body.EdgeError()
			}

			stiff := sag(0, 0)
			soft := sag(1, 1)
			Expect(soft).To(BeNumerically(">", stiff))
		})
	})

	Describe("Positions", func() {
		It("returns an independent copy", func() {
			pos := body.Positions()
			Expect(pos).To(HaveLen(body.NumParticles()))
			pos[0] = mgl64.Vec3{math.NaN(), 0, 0}
			Expect(body.Valid()).To(BeTrue())
		})
	})
})
