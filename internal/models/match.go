package models

import "time"

// MatchRecord is one side of a played match. Every match produces two records,
// one per team, with goals expressed from that team's point of view.
type MatchRecord struct {
	TeamID       string    `db:"team_id" json:"team_id" validate:"required,nefield=OpponentID"`
	OpponentID   string    `db:"opponent_id" json:"opponent_id" validate:"required"`
	GoalsFor     int       `db:"goals_for" json:"goals_for" validate:"gte=0"`
	GoalsAgainst int       `db:"goals_against" json:"goals_against" validate:"gte=0"`
	PlayedOn     time.Time `db:"played_on" json:"played_on"`
	Division     string    `db:"division" json:"division,omitempty" validate:"omitempty,max=64"`
}

// GoalDifferential returns goals for minus goals against
func (m MatchRecord) GoalDifferential() int {
	return m.GoalsFor - m.GoalsAgainst
}

// Outcome returns 1 for a win, 0.5 for a draw and 0 for a loss
func (m MatchRecord) Outcome() float64 {
	switch {
	case m.GoalsFor > m.GoalsAgainst:
		return 1
	case m.GoalsFor == m.GoalsAgainst:
		return 0.5
	default:
		return 0
	}
}

// Mirror returns the record of the same match seen from the opponent's side
func (m MatchRecord) Mirror() MatchRecord {
	return MatchRecord{
		TeamID:       m.OpponentID,
		OpponentID:   m.TeamID,
		GoalsFor:     m.GoalsAgainst,
		GoalsAgainst: m.GoalsFor,
		PlayedOn:     m.PlayedOn,
		Division:     m.Division,
	}
}
