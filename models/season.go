package models

import "time"

// SeasonPhase represents season phases, matching the ENUM in the database.
type SeasonPhase string

const (
	PhaseRegularSeason SeasonPhase = "regular_season"
	PhasePlayoffs      SeasonPhase = "playoffs"
	PhaseEnded         SeasonPhase = "ended"
)

// Season is one 17-day cycle of the game world. CurrentDay is the persisted
// progression cursor; it only moves forward and is mutated solely by the
// day progression controller and the rollover coordinator.
type Season struct {
	ID           int         `json:"id" db:"id"`
	SeasonNumber int         `json:"season_number" db:"season_number"`
	StartDate    time.Time   `json:"start_date" db:"start_date"`
	EndDate      time.Time   `json:"end_date" db:"end_date"`
	CurrentDay   int         `json:"current_day" db:"current_day"`
	Phase        SeasonPhase `json:"phase" db:"phase"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}
