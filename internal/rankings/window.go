package rankings

import (
	"sort"
	"time"

	"github.com/yourusername/power-rankings/internal/models"
)

// day truncates t to its UTC calendar date
func day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// SelectWindow returns the most recent maxGames records played in the
// windowDays days ending at asOf, ordered oldest-first. A record is eligible
// when asOf-windowDays < PlayedOn <= asOf at date granularity. The input is
// not modified.
func SelectWindow(records []models.MatchRecord, asOf time.Time, windowDays, maxGames int) []models.MatchRecord {
	if windowDays <= 0 || maxGames <= 0 {
		return nil
	}

	end := day(asOf)
	start := end.AddDate(0, 0, -windowDays)

	eligible := make([]models.MatchRecord, 0, len(records))
	for _, r := range records {
		d := day(r.PlayedOn)
		if d.After(start) && !d.After(end) {
			eligible = append(eligible, r)
		}
	}

	sortChronological(eligible)

	if len(eligible) > maxGames {
		eligible = eligible[len(eligible)-maxGames:]
	}
	return eligible
}

// sortChronological orders records oldest-first with a deterministic
// tie-break for games on the same date.
func sortChronological(records []models.MatchRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		da, db := day(a.PlayedOn), day(b.PlayedOn)
		if !da.Equal(db) {
			return da.Before(db)
		}
		if a.OpponentID != b.OpponentID {
			return a.OpponentID < b.OpponentID
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor < b.GoalsFor
		}
		return a.GoalsAgainst < b.GoalsAgainst
	})
}
