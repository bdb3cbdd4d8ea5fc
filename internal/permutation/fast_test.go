package permutation_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/tuna/internal/permutation"
	"github.com/san-kum/tuna/internal/vonmises"
)

var _ = Describe("FastTuning", func() {
	var (
		ctx  context.Context
		opts permutation.Options
	)

	BeforeEach(func() {
		ctx = context.Background()
		opts = permutation.DefaultOptions()
		opts.Shuffles = 1000
		opts.Seed = 21
	})

	It("assigns the floor p-value to strongly tuned data", func() {
		phi := directions(16, 4)
		res, err := permutation.FastTuning(ctx, phi, tuned(phi, 0.3, 2), opts)
		Expect(err).NotTo(HaveOccurred())

		Expect(res.P).To(Equal(0.5 / 1000))
		Expect(res.Null).To(HaveLen(1000))
		Expect(res.S).To(BeNumerically(">", permutation.Summarize(res.Null).Max))
	})

	It("is calibrated under the null", func() {
		phi := directions(36, 1)
		opts.Shuffles = 200

		var sum float64
		const trials = 300
		for trial := 0; trial < trials; trial++ {
			opts.Seed = int64(1000 + trial)
			res, err := permutation.FastTuning(ctx, phi, gaussian(len(phi), int64(trial)), opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.P).To(BeNumerically(">=", 0.5/200))
			Expect(res.P).To(BeNumerically("<=", 1))
			sum += res.P
		}
		Expect(sum / trials).To(BeNumerically("~", 0.5, 0.1))
	})

	It("caps p at one when the response has no second harmonic", func() {
		phi := directions(36, 1)
		y := make([]float64, len(phi))
		for i, p := range phi {
			y[i] = math.Cos(p)
		}

		res, err := permutation.FastTuning(ctx, phi, y, opts)
		Expect(err).NotTo(HaveOccurred())

		Expect(res.S).To(BeNumerically("<", 1e-12))
		Expect(res.P).To(Equal(1.0))
	})

	It("matches balanced weighting when every angle is seen once", func() {
		phi := directions(24, 1)
		y := gaussian(len(phi), 4)

		balanced, err := permutation.FastTuning(ctx, phi, y, opts)
		Expect(err).NotTo(HaveOccurred())
		opts.Balanced = false
		unbalanced, err := permutation.FastTuning(ctx, phi, y, opts)
		Expect(err).NotTo(HaveOccurred())

		Expect(unbalanced.S).To(Equal(balanced.S))
		Expect(unbalanced.Null).To(Equal(balanced.Null))
		Expect(unbalanced.P).To(Equal(balanced.P))
	})

	It("only rescales the statistic for equal repeat counts", func() {
		phi := directions(16, 3)
		y := gaussian(len(phi), 6)

		balanced, err := permutation.FastTuning(ctx, phi, y, opts)
		Expect(err).NotTo(HaveOccurred())
		opts.Balanced = false
		unbalanced, err := permutation.FastTuning(ctx, phi, y, opts)
		Expect(err).NotTo(HaveOccurred())

		Expect(unbalanced.S).To(BeNumerically("~", balanced.S/3, 1e-12))
		Expect(unbalanced.P).To(Equal(balanced.P))
	})

	It("weights unevenly repeated angles by inverse count", func() {
		phi := []float64{0, 0, 0, math.Pi / 2}
		y := []float64{1, 1, 1, 0}
		opts.Balanced = false
		res, err := permutation.FastTuning(ctx, phi, y, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.S).To(BeNumerically("~", 1, 1e-12))
	})

	It("accepts irregular angles", func() {
		phi := []float64{0, 0.1, 0.5, 1.5, 2.0, 3.3}
		_, err := permutation.FastTuning(ctx, phi, gaussian(len(phi), 1), opts)
		Expect(err).NotTo(HaveOccurred())
	})

	It("agrees in distribution between sequential and batched shuffles", func() {
		phi := directions(12, 4)
		y := gaussian(len(phi), 12)
		opts.Shuffles = 5000

		batched, err := permutation.FastTuning(ctx, phi, y, opts)
		Expect(err).NotTo(HaveOccurred())
		opts.Sequential = true
		sequential, err := permutation.FastTuning(ctx, phi, y, opts)
		Expect(err).NotTo(HaveOccurred())

		Expect(sequential.Null).To(HaveLen(len(batched.Null)))
		Expect(sequential.S).To(Equal(batched.S))

		b, s := permutation.Summarize(batched.Null), permutation.Summarize(sequential.Null)
		Expect(s.Mean).To(BeNumerically("~", b.Mean, 0.1*b.StdDev))
		Expect(s.StdDev).To(BeNumerically("~", b.StdDev, 0.1*b.StdDev))
	})

	It("splits shuffles across workers", func() {
		phi := directions(16, 2)
		y := gaussian(len(phi), 13)
		opts.Workers = 3

		var last int
		opts.Progress = func(done, _ int) { last = done }
		a, err := permutation.FastTuning(ctx, phi, y, opts)
		Expect(err).NotTo(HaveOccurred())
		b, err := permutation.FastTuning(ctx, phi, y, opts)
		Expect(err).NotTo(HaveOccurred())

		Expect(last).To(Equal(1000))
		Expect(a.Null).To(HaveLen(1000))
		Expect(a.Null).To(Equal(b.Null))
		Expect(a.Null).NotTo(ContainElement(0.0))
	})

	It("stops when the context is cancelled", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		phi := directions(8, 1)
		opts.Sequential = true
		_, err := permutation.FastTuning(cctx, phi, gaussian(len(phi), 1), opts)
		Expect(err).To(MatchError(context.Canceled))
	})

	DescribeTable("rejects invalid input",
		func(phi, y []float64, shuffles int) {
			opts.Shuffles = shuffles
			_, err := permutation.FastTuning(ctx, phi, y, opts)
			Expect(err).To(MatchError(vonmises.ErrInvalidInput))
		},
		Entry("empty", nil, nil, 10),
		Entry("length mismatch", []float64{0, 1}, []float64{1}, 10),
		Entry("nan response", []float64{0, 1}, []float64{1, math.NaN()}, 10),
		Entry("zero shuffles", []float64{0, 1}, []float64{1, 2}, 0),
	)
})

var _ = Describe("Summarize", func() {
	It("reports moments and quantiles", func() {
		values := make([]float64, 100)
		for i := range values {
			values[len(values)-1-i] = float64(i + 1)
		}
		s := permutation.Summarize(values)

		Expect(s.N).To(Equal(100))
		Expect(s.Mean).To(BeNumerically("~", 50.5, 1e-12))
		Expect(s.Min).To(Equal(1.0))
		Expect(s.Max).To(Equal(100.0))
		Expect(s.Median).To(Equal(50.0))
		Expect(s.Q05).To(BeNumerically("~", 5, 1))
		Expect(s.Q95).To(BeNumerically("~", 95, 1))
		Expect(values[0]).To(Equal(100.0))
	})

	It("handles degenerate inputs", func() {
		Expect(permutation.Summarize(nil)).To(Equal(permutation.Summary{}))
		one := permutation.Summarize([]float64{3})
		Expect(one.StdDev).To(Equal(0.0))
		Expect(one.Median).To(Equal(3.0))
	})
})
