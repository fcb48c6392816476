package rankings

import (
	"sort"

	"github.com/yourusername/power-rankings/internal/models"
)

// Rank sorts teams into their published order and assigns 1-based ranks. The
// team id is the last key, so the order is total and no ties reach output.
// The input slice is not modified.
func Rank(teams []models.RankedTeam, policy DefensePolicy) []models.RankedTeam {
	out := append([]models.RankedTeam(nil), teams...)
	sort.SliceStable(out, func(i, j int) bool {
		return rankedBefore(out[i], out[j], policy)
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

func rankedBefore(a, b models.RankedTeam, policy DefensePolicy) bool {
	if a.PowerScoreAdjusted != b.PowerScoreAdjusted {
		return a.PowerScoreAdjusted > b.PowerScoreAdjusted
	}
	if a.SOSNorm != b.SOSNorm {
		return a.SOSNorm > b.SOSNorm
	}
	if a.OffNorm != b.OffNorm {
		return a.OffNorm > b.OffNorm
	}
	if policy != DefenseIgnore && a.DefNorm != b.DefNorm {
		return a.DefNorm > b.DefNorm
	}
	return a.TeamID < b.TeamID
}
