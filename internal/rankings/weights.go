package rankings

// RecencyWeights builds the weights of n games ordered oldest-first.
//
// The most recent RecentGames games share RecentShare of the mass evenly and
// the older games split the rest. Games whose age rank is at least TaperStart
// are then scaled by a multiplier that falls linearly to TaperFloor at the
// oldest game, and the result is renormalized to sum to 1.
func RecencyWeights(n int, cfg RecencyConfig) []float64 {
	if n <= 0 {
		return []float64{}
	}

	w := make([]float64, n)
	k := cfg.RecentGames
	if k <= 0 || n <= k {
		for i := range w {
			w[i] = 1 / float64(n)
		}
	} else {
		recent := cfg.RecentShare / float64(k)
		older := (1 - cfg.RecentShare) / float64(n-k)
		for i := range w {
			if age := n - 1 - i; age < k {
				w[i] = recent
			} else {
				w[i] = older
			}
		}
	}

	if cfg.TaperStart >= 0 && cfg.TaperStart < n {
		span := float64(n - cfg.TaperStart)
		for i := range w {
			age := n - 1 - i
			if age < cfg.TaperStart {
				continue
			}
			step := float64(age - cfg.TaperStart + 1)
			w[i] *= 1 - (1-cfg.TaperFloor)*step/span
		}
	}

	var sum float64
	for _, v := range w {
		sum += v
	}
	if sum <= 0 {
		for i := range w {
			w[i] = 1 / float64(n)
		}
		return w
	}
	for i := range w {
		w[i] /= sum
	}
	return w
}
