package rankings

import "math"

const flatTolerance = 1e-12

// Neutral is the normalized value every team gets for a flat metric
const Neutral = 0.5

// Normalize maps values onto [0,1]. It reports flat=true when the input had
// no spread, in which case every output is Neutral. Non-finite inputs are
// replaced by the mean of the finite ones before normalizing.
func Normalize(values []float64, cfg NormalizerConfig) (out []float64, flat bool) {
	out = make([]float64, len(values))
	if len(values) == 0 {
		return out, false
	}

	clean := sanitize(values)
	sorted := sortedCopy(clean)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if hi-lo <= flatTolerance*math.Max(1, math.Abs(hi)) {
		for i := range out {
			out[i] = Neutral
		}
		return out, true
	}

	switch cfg.Mode {
	case NormalizeLogistic:
		m, sd := mean(clean), stddev(clean)
		for i, v := range clean {
			out[i] = 1 / (1 + math.Exp(-(v-m)/sd))
		}
	default:
		clipLo := percentile(sorted, cfg.ClipLow)
		clipHi := percentile(sorted, cfg.ClipHigh)
		if clipHi-clipLo <= flatTolerance*math.Max(1, math.Abs(clipHi)) {
			// clipping swallowed the spread, fall back to the raw range
			clipLo, clipHi = lo, hi
		}
		for i, v := range clean {
			out[i] = clamp01((v - clipLo) / (clipHi - clipLo))
		}
	}
	return out, false
}

// NormalizeOptional normalizes only the entries marked present. Missing
// entries are returned as NaN for the caller to fill with its fallback.
func NormalizeOptional(values []float64, present []bool, cfg NormalizerConfig) (out []float64, flat bool) {
	out = make([]float64, len(values))
	var subset []float64
	for i, v := range values {
		if present[i] {
			subset = append(subset, v)
		}
	}
	normed, flat := Normalize(subset, cfg)

	j := 0
	for i := range values {
		if present[i] {
			out[i] = normed[j]
			j++
		} else {
			out[i] = math.NaN()
		}
	}
	return out, flat
}

func sanitize(values []float64) []float64 {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if isFinite(v) {
			finite = append(finite, v)
		}
	}
	fill := Neutral
	if len(finite) > 0 {
		fill = mean(finite)
	}

	out := make([]float64, len(values))
	for i, v := range values {
		if isFinite(v) {
			out[i] = v
		} else {
			out[i] = fill
		}
	}
	return out
}
