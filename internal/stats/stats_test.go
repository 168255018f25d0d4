package stats_test

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/stat"

	"github.com/verisim/verisim/internal/stats"
)

var _ = Describe("Statistic", func() {
	It("returns zero for every kind on an empty stream", func() {
		for _, k := range stats.DefaultKinds() {
			Expect(stats.NewStatistic(k).Compute()).To(BeZero())
		}
	})

	It("returns zero for every kind on an all-zero stream", func() {
		for _, k := range stats.DefaultKinds() {
			s := stats.NewStatistic(k)
			for i := 0; i < 100; i++ {
				s.Insert(0)
			}
			Expect(s.Compute()).To(BeZero())
		}
	})

	It("handles a constant stream", func() {
		const k = -3.25
		mean := stats.NewStatistic(stats.Mean)
		variance := stats.NewStatistic(stats.Variance)
		maxAbs := stats.NewStatistic(stats.MaxAbs)
		for i := 0; i < 10; i++ {
			mean.Insert(k)
			variance.Insert(k)
			maxAbs.Insert(k)
		}
		Expect(mean.Compute()).To(BeNumerically("~", k, 1e-12))
		Expect(variance.Compute()).To(BeNumerically("~", 0, 1e-12))
		Expect(maxAbs.Compute()).To(Equal(math.Abs(k)))
	})

	It("reports variance as zero below two samples", func() {
		s := stats.NewStatistic(stats.Variance)
		s.Insert(7.5)
		Expect(s.Compute()).To(BeZero())
	})

	It("matches batch moments on a random stream", func() {
		rng := rand.New(rand.NewSource(42))
		xs := make([]float64, 500)
		mean := stats.NewStatistic(stats.Mean)
		variance := stats.NewStatistic(stats.Variance)
		for i := range xs {
			xs[i] = rng.NormFloat64()*3 + 1
			mean.Insert(xs[i])
			variance.Insert(xs[i])
		}
		Expect(mean.Compute()).To(BeNumerically("~", stat.Mean(xs, nil), 1e-9))
		Expect(variance.Compute()).To(BeNumerically("~", stat.Variance(xs, nil), 1e-9))
	})

	It("is reusable after Reset", func() {
		s := stats.NewStatistic(stats.MaxAbs)
		s.Insert(-9)
		s.Reset()
		Expect(s.Count()).To(BeZero())
		s.Insert(2)
		Expect(s.Compute()).To(Equal(2.0))
	})
})

var _ = Describe("SignalStats", func() {
	It("rejects empty, unknown and duplicate kind sets", func() {
		_, err := stats.NewSignalStats()
		Expect(err).To(HaveOccurred())
		_, err = stats.NewSignalStats(stats.Kind("Median"))
		Expect(err).To(HaveOccurred())
		_, err = stats.NewSignalStats(stats.Mean, stats.Mean)
		Expect(err).To(HaveOccurred())
	})

	It("feeds every member the identical stream", func() {
		s := stats.MustSignalStats(stats.DefaultKinds()...)
		for _, v := range []float64{1, -4, 2.5} {
			s.InsertData(v)
		}
		m := s.Map()
		Expect(m).To(HaveLen(3))
		Expect(m[stats.MaxAbs]).To(Equal(4.0))
		Expect(m[stats.Mean]).To(BeNumerically("~", -0.5/3.0, 1e-12))
		Expect(s.Count()).To(Equal(uint64(3)))
	})

	It("is deterministic across independent instances", func() {
		a := stats.MustSignalStats(stats.DefaultKinds()...)
		b := stats.MustSignalStats(stats.DefaultKinds()...)
		rng := rand.New(rand.NewSource(7))
		for i := 0; i < 200; i++ {
			v := rng.Float64()*20 - 10
			a.InsertData(v)
			b.InsertData(v)
		}
		Expect(a.Map()).To(Equal(b.Map()))
	})

	It("compares schemas by kind set only", func() {
		a := stats.MustSignalStats(stats.MaxAbs, stats.Mean)
		b := stats.MustSignalStats(stats.Mean, stats.MaxAbs)
		c := stats.MustSignalStats(stats.Mean)
		Expect(stats.Compatible(a, b)).To(BeTrue())
		Expect(stats.Compatible(a, c)).To(BeFalse())
	})
})

var _ = Describe("VectorStats", func() {
	It("derives the magnitude stream from the axis streams", func() {
		v, err := stats.NewVectorStats(stats.DefaultKinds()...)
		Expect(err).NotTo(HaveOccurred())

		// Track expectations with a parallel magnitude bundle.
		want := stats.MustSignalStats(stats.DefaultKinds()...)
		rng := rand.New(rand.NewSource(3))
		for i := 0; i < 300; i++ {
			x, y, z := rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()
			v.InsertData(x, y, z)
			want.InsertData(math.Sqrt(x*x + y*y + z*z))
		}
		Expect(v.Count()).To(Equal(uint64(300)))
		Expect(v.Mag().Map()).To(Equal(want.Map()))
	})

	It("exposes per-axis bundles", func() {
		v, _ := stats.NewVectorStats(stats.MaxAbs)
		v.InsertData(3, -4, 0)
		Expect(v.X().Map()[stats.MaxAbs]).To(Equal(3.0))
		Expect(v.Y().Map()[stats.MaxAbs]).To(Equal(4.0))
		Expect(v.Z().Map()[stats.MaxAbs]).To(Equal(0.0))
		Expect(v.Mag().Map()[stats.MaxAbs]).To(Equal(5.0))
	})
})

var _ = Describe("ParseKinds", func() {
	It("parses a comma list with whitespace", func() {
		kinds, err := stats.ParseKinds("MaxAbs, Variance,Mean")
		Expect(err).NotTo(HaveOccurred())
		Expect(kinds).To(Equal([]stats.Kind{stats.MaxAbs, stats.Variance, stats.Mean}))
	})

	It("rejects unknown tokens", func() {
		_, err := stats.ParseKinds("MaxAbs,Median")
		Expect(err).To(HaveOccurred())
	})
})
