package services

import (
	"context"

	"github.com/fantasy-arena/backend/models"
)

// MatchSimulator computes a result for a fixture between two rosters. The
// progression engine treats it as an external collaborator: a failure means
// the affected match is retried on a later tick.
type MatchSimulator interface {
	Simulate(ctx context.Context, homeTeamID, awayTeamID int) (homeScore, awayScore int, err error)
}

// TeamProvisioner supplies filler teams when a tournament field is short at
// the registration deadline. It returns the ids of the created teams.
type TeamProvisioner interface {
	FillTournament(ctx context.Context, tournamentID, count int) ([]int, error)
}

// SeasonEndEffects is invoked once per rollover with the expiring season.
// Fire-and-forget from the engine's perspective; failures are logged but do
// not abort the rollover.
type SeasonEndEffects interface {
	Apply(ctx context.Context, seasonID int) error
}

// ScheduleGenerator creates the league fixture list for a freshly opened
// season.
type ScheduleGenerator interface {
	GenerateForSeason(ctx context.Context, season *models.Season) error
}

// EventBroadcaster pushes engine events to connected clients. *ws.Hub
// satisfies this.
type EventBroadcaster interface {
	BroadcastToRoom(roomID string, eventType string, payload interface{})
}
