package rankings

// Shrink pulls a raw metric toward the league mean in proportion to how few
// games back it: (games*raw + tau*mean) / (games + tau).
func Shrink(raw float64, gamesUsed int, tau, leagueMean float64) float64 {
	g := float64(gamesUsed)
	if g < 0 {
		g = 0
	}
	if g+tau <= 0 {
		return leagueMean
	}
	return (g*raw + tau*leagueMean) / (g + tau)
}

// shrinkAll applies Shrink to every team against the mean of the raw values
func shrinkAll(raw []float64, games []int, tau float64) []float64 {
	leagueMean := mean(raw)
	out := make([]float64, len(raw))
	for i := range raw {
		out[i] = Shrink(raw[i], games[i], tau, leagueMean)
	}
	return out
}
