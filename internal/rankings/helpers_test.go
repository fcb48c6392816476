package rankings

import (
	"time"

	"github.com/yourusername/power-rankings/internal/models"
)

var testAsOf = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

// league accumulates both sides of every match
type league struct {
	records []models.MatchRecord
}

func (l *league) play(home, away string, homeGoals, awayGoals int, daysAgo int) {
	r := models.MatchRecord{
		TeamID:       home,
		OpponentID:   away,
		GoalsFor:     homeGoals,
		GoalsAgainst: awayGoals,
		PlayedOn:     testAsOf.AddDate(0, 0, -daysAgo),
	}
	l.records = append(l.records, r, r.Mirror())
}

func (l *league) playInDivision(home, away string, homeGoals, awayGoals, daysAgo int, homeDiv, awayDiv string) {
	h := models.MatchRecord{
		TeamID:       home,
		OpponentID:   away,
		GoalsFor:     homeGoals,
		GoalsAgainst: awayGoals,
		PlayedOn:     testAsOf.AddDate(0, 0, -daysAgo),
		Division:     homeDiv,
	}
	a := h.Mirror()
	a.Division = awayDiv
	l.records = append(l.records, h, a)
}

func findTeam(teams []models.RankedTeam, id string) (models.RankedTeam, bool) {
	for _, t := range teams {
		if t.TeamID == id {
			return t, true
		}
	}
	return models.RankedTeam{}, false
}
