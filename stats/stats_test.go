package stats

import (
	"math"
	"testing"

	"github.com/matryer/is"
)

func TestRunningStat(t *testing.T) {
	is := is.New(t)
	type tc struct {
		samples  []int
		mean     float64
		stdev    float64
		min, max float64
	}
	cases := []tc{
		{[]int{10, 12, 23, 23, 16, 23, 21, 16}, 18, 5.2372293656638, 10, 23},
		{[]int{14, 35, 71, 124, 10, 24, 55, 33, 87, 19}, 47.2, 36.937785531891, 10, 124},
		{[]int{1}, 1, 0, 1, 1},
		{[]int{}, 0, 0, 0, 0},
		{[]int{1, 1}, 1, 0, 1, 1},
	}
	for _, c := range cases {
		s := &Statistic{}
		for _, v := range c.samples {
			s.Push(float64(v))
		}
		is.True(FuzzyEqual(s.Mean(), c.mean))
		is.True(FuzzyEqual(s.Stdev(), c.stdev))
		is.Equal(s.Min(), c.min)
		is.Equal(s.Max(), c.max)
		is.Equal(s.Iterations(), len(c.samples))
	}
}

func TestZVal(t *testing.T) {
	is := is.New(t)
	is.True(math.Abs(ZVal(95)-1.959964) < 1e-5)
	is.True(math.Abs(ZVal(99)-2.575829) < 1e-5)
}

func TestConfidenceInterval(t *testing.T) {
	is := is.New(t)
	s := &Statistic{}
	for _, v := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		s.Push(v)
	}
	// sample stdev sqrt(32/7), n = 8
	expected := ZVal(95) * math.Sqrt(32.0/7.0/8.0)
	is.True(FuzzyEqual(s.ConfidenceInterval(95), expected))
}

func TestQuantile(t *testing.T) {
	is := is.New(t)
	samples := []float64{9, 1, 5, 3, 7}
	is.Equal(Quantile(0.5, samples), 5.0)
	is.Equal(Quantile(1, samples), 9.0)
	is.Equal(Quantile(0, samples), 1.0)
	is.Equal(Quantile(0.5, nil), 0.0)
}
