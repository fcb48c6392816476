package rankings

import (
	"math"

	"github.com/yourusername/power-rankings/internal/models"
)

// PowerScore combines the normalized sub-scores with the composite weights
func PowerScore(offNorm, defNorm, sosNorm float64, w Weights) float64 {
	return clamp01(w.Offense*offNorm + w.Defense*defNorm + w.SOS*sosNorm)
}

// ConfidenceMultiplier grows with games played and reaches 1 at
// FullConfidenceGames. Teams with no games get 0; they never reach scoring.
func ConfidenceMultiplier(gamesUsed int, cfg ConfidenceConfig) float64 {
	if gamesUsed <= 0 {
		return 0
	}
	if cfg.FullConfidenceGames <= 0 {
		return 1
	}
	return math.Min(1, math.Pow(float64(gamesUsed)/float64(cfg.FullConfidenceGames), cfg.Exponent))
}

// Classify returns Active once a team reaches the games threshold
func Classify(gamesUsed, activeThreshold int) models.TeamStatus {
	if gamesUsed >= activeThreshold {
		return models.StatusActive
	}
	return models.StatusProvisional
}
