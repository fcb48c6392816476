package rankings

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// stddev is the population standard deviation
func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.PopStdDev(values, nil)
}

// percentile interpolates linearly over an ascending slice at rank
// p*(n-1). stat.Quantile's LinInterp ranks at p*n, which skews the clip
// bounds low on the small tables a division produces.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func sortedCopy(values []float64) []float64 {
	out := append([]float64(nil), values...)
	sort.Float64s(out)
	return out
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
