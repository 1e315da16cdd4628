package models

import "time"

// BracketSlot is one side of a bracket match: either a resolved team or a
// reference to the prior-round match whose winner will fill it. Exactly one
// of the two fields is set; sentinel team ids are never used.
type BracketSlot struct {
	TeamID        *int `json:"team_id,omitempty"`
	SourceMatchID *int `json:"source_match_id,omitempty"`
}

func ResolvedSlot(teamID int) BracketSlot {
	return BracketSlot{TeamID: &teamID}
}

func PendingSlot(sourceMatchID int) BracketSlot {
	return BracketSlot{SourceMatchID: &sourceMatchID}
}

// Resolved reports whether the slot holds a concrete team.
func (s BracketSlot) Resolved() bool {
	return s.TeamID != nil
}

// BracketMatch is one elimination match inside a tournament. Round 1 is the
// first round; OrderInRound fixes the pairing order that winner advancement
// follows.
type BracketMatch struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	Round        int         `json:"round" db:"round"`
	OrderInRound int         `json:"order_in_round" db:"order_in_round"`
	Home         BracketSlot `json:"home" db:"-"`
	Away         BracketSlot `json:"away" db:"-"`
	Status       MatchStatus `json:"status" db:"status"`
	HomeScore    *int        `json:"home_score,omitempty" db:"home_score"`
	AwayScore    *int        `json:"away_score,omitempty" db:"away_score"`
	WinnerTeamID *int        `json:"winner_team_id,omitempty" db:"winner_team_id"`
	ScheduledAt  time.Time   `json:"scheduled_at" db:"scheduled_at"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}

// LoserTeamID returns the losing side of a completed match with two
// resolved participants, or nil if that cannot be determined.
func (m *BracketMatch) LoserTeamID() *int {
	if m.WinnerTeamID == nil || !m.Home.Resolved() || !m.Away.Resolved() {
		return nil
	}
	if *m.Home.TeamID == *m.WinnerTeamID {
		return m.Away.TeamID
	}
	return m.Home.TeamID
}
