package models

import "time"

// TournamentStatus represents tournament statuses, matching the ENUM in the DB.
type TournamentStatus string

const (
	TournamentRegistrationOpen TournamentStatus = "registration_open"
	TournamentInProgress       TournamentStatus = "in_progress"
	TournamentCompleted        TournamentStatus = "completed"
)

// Tournament is a fixed-capacity single-elimination cup. Capacity is set at
// creation and never changes; the bracket engine fills short fields with
// bot teams before generating round 1.
type Tournament struct {
	ID                   int              `json:"id" db:"id"`
	Name                 string           `json:"name" db:"name"`
	Division             string           `json:"division" db:"division"`
	Capacity             int              `json:"capacity" db:"capacity"`
	Status               TournamentStatus `json:"status" db:"status"`
	RegistrationDeadline time.Time        `json:"registration_deadline" db:"registration_deadline"`
	WinnerTeamID         *int             `json:"winner_team_id,omitempty" db:"winner_team_id"`
	CreatedAt            time.Time        `json:"created_at" db:"created_at"`

	// Optional related entities, loaded on demand.
	Entries        []*TournamentEntry `json:"entries,omitempty" db:"-"`
	BracketMatches []*BracketMatch    `json:"bracket_matches,omitempty" db:"-"`
}

// TournamentEntry registers one team in one tournament. Unique per
// (tournament, team). Placement stays nil until the tournament completes.
type TournamentEntry struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	TeamID       int       `json:"team_id" db:"team_id"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`
	Placement    *int      `json:"placement,omitempty" db:"placement"`
}
