package rankings

// ClipDifferential clips a goal differential to [-limit, +limit]
func ClipDifferential(diff, limit int) int {
	if diff > limit {
		return limit
	}
	if diff < -limit {
		return -limit
	}
	return diff
}

// CapGoals rewrites a game's score so its differential lies inside the band.
// The losing side's goals are kept and the winner's are reduced, so a 15-0
// result becomes 6-0 with a cap of 6.
func CapGoals(goalsFor, goalsAgainst, limit int) (int, int) {
	switch diff := goalsFor - goalsAgainst; {
	case diff > limit:
		return goalsAgainst + limit, goalsAgainst
	case diff < -limit:
		return goalsFor, goalsFor + limit
	default:
		return goalsFor, goalsAgainst
	}
}
