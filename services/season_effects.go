package services

import (
	"context"
	"fmt"
	"log/slog"
)

// standingsEffects freezes the final league table when a season ends.
type standingsEffects struct {
	standings *StandingsService
	logger    *slog.Logger
}

func NewStandingsEffects(standings *StandingsService, logger *slog.Logger) SeasonEndEffects {
	return &standingsEffects{standings: standings, logger: logger}
}

func (e *standingsEffects) Apply(ctx context.Context, seasonID int) error {
	if err := e.standings.SnapshotSeason(ctx, seasonID); err != nil {
		return fmt.Errorf("failed to snapshot standings for season %d: %w", seasonID, err)
	}
	e.logger.InfoContext(ctx, "season standings frozen", slog.Int("season_id", seasonID))
	return nil
}
