// Package stats holds the descriptive statistics and the two-sample t-test
// used to compare true-pair and false-pair similarity distributions.
package stats

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrInsufficientData is returned when a sample is too small for the requested statistic.
var ErrInsufficientData = errors.New("insufficient data")

// Summary describes one group of values.
type Summary struct {
	Count int
	Mean  float64
	Max   float64
	Min   float64
}

// Summarize computes count, mean, max and min of values.
func Summarize(values []float64) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, fmt.Errorf("summarize: %w", ErrInsufficientData)
	}
	return Summary{
		Count: len(values),
		Mean:  stat.Mean(values, nil),
		Max:   floats.Max(values),
		Min:   floats.Min(values),
	}, nil
}

// TTestResult is the outcome of a two-sample t-test.
type TTestResult struct {
	Statistic float64
	PValue    float64
	DF        float64
}

// Significant reports whether the p-value is below alpha. A NaN p-value is never significant.
func (r TTestResult) Significant(alpha float64) bool {
	return r.PValue < alpha
}

// TTest runs an unpaired, two-tailed t-test of the null hypothesis that a and
// b share a mean. With equalVar it pools the variances (Student); otherwise it
// uses Welch's correction.
func TTest(a, b []float64, equalVar bool) (TTestResult, error) {
	na, nb := float64(len(a)), float64(len(b))
	if len(a) == 0 || len(b) == 0 {
		return TTestResult{}, fmt.Errorf("t-test: both samples must be non-empty: %w", ErrInsufficientData)
	}
	ma, mb := stat.Mean(a, nil), stat.Mean(b, nil)
	va, vb := variance(a), variance(b)

	var se, df float64
	if equalVar {
		df = na + nb - 2
		if df < 1 {
			return TTestResult{}, fmt.Errorf("t-test: need at least three observations: %w", ErrInsufficientData)
		}
		pooled := ((na-1)*va + (nb-1)*vb) / df
		se = math.Sqrt(pooled * (1/na + 1/nb))
	} else {
		if len(a) < 2 || len(b) < 2 {
			return TTestResult{}, fmt.Errorf("t-test: welch needs two observations per sample: %w", ErrInsufficientData)
		}
		qa, qb := va/na, vb/nb
		se = math.Sqrt(qa + qb)
		df = (qa + qb) * (qa + qb) / (qa*qa/(na-1) + qb*qb/(nb-1))
	}

	diff := ma - mb
	if se == 0 {
		if diff == 0 {
			return TTestResult{Statistic: math.NaN(), PValue: math.NaN(), DF: df}, nil
		}
		return TTestResult{Statistic: math.Copysign(math.Inf(1), diff), PValue: 0, DF: df}, nil
	}
	t := diff / se
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.CDF(-math.Abs(t))
	return TTestResult{Statistic: t, PValue: math.Min(1, p), DF: df}, nil
}

// variance is the unbiased sample variance; zero for fewer than two values.
func variance(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	return stat.Variance(x, nil)
}
