package permutation_test

import (
	"context"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/tuna/internal/permutation"
	"github.com/san-kum/tuna/internal/vonmises"
)

var _ = Describe("Bootstrap", func() {
	var (
		ctx  context.Context
		phi  []float64
		opts permutation.Options
	)

	BeforeEach(func() {
		ctx = context.Background()
		phi = directions(36, 2)
		opts = permutation.DefaultOptions()
		opts.Shuffles = 200
		opts.Seed = 11
	})

	It("assigns the floor p-value to strongly tuned data", func() {
		res, err := permutation.Bootstrap(ctx, phi, tuned(phi, 0.3, 1), opts)
		Expect(err).NotTo(HaveOccurred())

		Expect(res.Better).To(Equal(0))
		Expect(res.P).To(Equal(0.5 / 200))
		Expect(res.Shuffles).To(Equal(200))
		Expect(res.NullR2).To(HaveLen(200))
		Expect(res.Fit.Params.A1).To(BeNumerically("~", 5, 0.5))
	})

	It("keeps p within bounds for untuned data", func() {
		res, err := permutation.Bootstrap(ctx, phi, gaussian(len(phi), 3), opts)
		Expect(err).NotTo(HaveOccurred())

		Expect(res.P).To(BeNumerically(">=", 0.5/200))
		Expect(res.P).To(BeNumerically("<=", 1))
		for _, r2 := range res.NullR2 {
			Expect(r2).To(BeNumerically(">=", 0))
		}
	})

	It("caps p at one when every shuffle is better", func() {
		Expect(permutation.PValue(200, 200)).To(Equal(1.0))
		Expect(permutation.PValue(199, 200)).To(Equal(199.5 / 200))
		Expect(permutation.PValue(0, 200)).To(Equal(0.5 / 200))
	})

	It("counts only strictly better shuffles", func() {
		res, err := permutation.Bootstrap(ctx, phi, gaussian(len(phi), 5), opts)
		Expect(err).NotTo(HaveOccurred())

		better := 0
		for _, r2 := range res.NullR2 {
			if r2 < res.Fit.R2 {
				better++
			}
		}
		Expect(res.Better).To(Equal(better))
		Expect(res.P).To(Equal((float64(better) + 0.5) / 200))
	})

	It("is reproducible for a fixed seed", func() {
		x := gaussian(len(phi), 7)
		a, err := permutation.Bootstrap(ctx, phi, x, opts)
		Expect(err).NotTo(HaveOccurred())
		b, err := permutation.Bootstrap(ctx, phi, x, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(a.NullR2).To(Equal(b.NullR2))
	})

	It("draws from a caller supplied stream", func() {
		x := gaussian(len(phi), 8)
		opts.Rand = rand.New(rand.NewSource(99))
		a, err := permutation.Bootstrap(ctx, phi, x, opts)
		Expect(err).NotTo(HaveOccurred())

		opts.Rand = rand.New(rand.NewSource(99))
		b, err := permutation.Bootstrap(ctx, phi, x, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(a.NullR2).To(Equal(b.NullR2))
	})

	Context("with several workers", func() {
		BeforeEach(func() {
			opts.Workers = 4
		})

		It("fills every shuffle and stays reproducible", func() {
			x := gaussian(len(phi), 9)
			a, err := permutation.Bootstrap(ctx, phi, x, opts)
			Expect(err).NotTo(HaveOccurred())
			b, err := permutation.Bootstrap(ctx, phi, x, opts)
			Expect(err).NotTo(HaveOccurred())

			Expect(a.NullR2).To(HaveLen(200))
			Expect(a.NullR2).To(Equal(b.NullR2))
			Expect(a.NullR2).NotTo(ContainElement(0.0))
		})

		It("reports progress up to the total", func() {
			var calls, last, seenTotal int
			opts.Progress = func(done, total int) {
				calls++
				last = done
				seenTotal = total
			}
			_, err := permutation.Bootstrap(ctx, phi, gaussian(len(phi), 10), opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(calls).To(Equal(200))
			Expect(last).To(Equal(200))
			Expect(seenTotal).To(Equal(200))
		})
	})

	It("stops when the context is cancelled", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := permutation.Bootstrap(cctx, phi, gaussian(len(phi), 1), opts)
		Expect(err).To(MatchError(context.Canceled))
	})

	DescribeTable("rejects invalid input",
		func(mutate func(*permutation.Options, *[]float64, *[]float64)) {
			x := gaussian(len(phi), 1)
			mutate(&opts, &phi, &x)
			_, err := permutation.Bootstrap(ctx, phi, x, opts)
			Expect(err).To(MatchError(vonmises.ErrInvalidInput))
		},
		Entry("zero shuffles", func(o *permutation.Options, _, _ *[]float64) { o.Shuffles = 0 }),
		Entry("negative workers", func(o *permutation.Options, _, _ *[]float64) { o.Workers = -1 }),
		Entry("short responses", func(_ *permutation.Options, _, x *[]float64) { *x = (*x)[:10] }),
		Entry("irregular angles", func(_ *permutation.Options, p, x *[]float64) {
			*p = []float64{0, 0.1, 0.5, 1.5}
			*x = (*x)[:4]
		}),
	)
})
