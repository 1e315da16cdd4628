package models

import "time"

// SeasonStanding is one row of a season's league table. Live standings are
// computed from completed matches; a snapshot is persisted at rollover.
type SeasonStanding struct {
	ID           int       `json:"id,omitempty" db:"id"`
	SeasonID     int       `json:"season_id" db:"season_id"`
	TeamID       int       `json:"team_id" db:"team_id"`
	Points       int       `json:"points" db:"points"`
	GamesPlayed  int       `json:"games_played" db:"games_played"`
	Wins         int       `json:"wins" db:"wins"`
	Draws        int       `json:"draws" db:"draws"`
	Losses       int       `json:"losses" db:"losses"`
	ScoreFor     int       `json:"score_for" db:"score_for"`
	ScoreAgainst int       `json:"score_against" db:"score_against"`
	Rank         int       `json:"rank" db:"rank"`
	CreatedAt    time.Time `json:"created_at,omitempty" db:"created_at"`
}
