package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled  MatchStatus = "scheduled"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusCompleted  MatchStatus = "completed"
)

type MatchType string

const (
	MatchTypeLeague     MatchType = "league"
	MatchTypeTournament MatchType = "tournament"
	MatchTypeExhibition MatchType = "exhibition"
)

// Match is a scheduled league/exhibition fixture. Day and DayWindowStart
// are persisted grouping keys and must agree with the day derived from
// ScheduledAt via the gameday boundary rule; the catch-up executor and the
// overdue query rely on that.
type Match struct {
	ID             int         `json:"id" db:"id"`
	SeasonID       int         `json:"season_id" db:"season_id"`
	HomeTeamID     int         `json:"home_team_id" db:"home_team_id"`
	AwayTeamID     int         `json:"away_team_id" db:"away_team_id"`
	Day            int         `json:"day" db:"day"`
	DayWindowStart time.Time   `json:"-" db:"day_window_start"`
	ScheduledAt    time.Time   `json:"scheduled_at" db:"scheduled_at"`
	MatchType      MatchType   `json:"match_type" db:"match_type"`
	Status         MatchStatus `json:"status" db:"status"`
	Simulated      bool        `json:"simulated" db:"simulated"`
	HomeScore      *int        `json:"home_score,omitempty" db:"home_score"`
	AwayScore      *int        `json:"away_score,omitempty" db:"away_score"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
}
