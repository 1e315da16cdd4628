package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fantasy-arena/backend/models"
	"github.com/fantasy-arena/backend/repositories"
)

// botProvisioner fills short tournament fields with bot teams. The teams are
// created in the tournament's division and persist after the tournament, so
// brackets and placements reference real team rows.
type botProvisioner struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	logger         *slog.Logger
}

func NewBotProvisioner(tournamentRepo repositories.TournamentRepository, teamRepo repositories.TeamRepository, logger *slog.Logger) TeamProvisioner {
	return &botProvisioner{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		logger:         logger,
	}
}

func (p *botProvisioner) FillTournament(ctx context.Context, tournamentID, count int) ([]int, error) {
	if count <= 0 {
		return nil, nil
	}

	tournament, err := p.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	teamIDs := make([]int, 0, count)
	for i := 0; i < count; i++ {
		team := &models.Team{
			// The uuid fragment keeps names unique across fills.
			Name:     fmt.Sprintf("Bot %s", uuid.NewString()[:8]),
			Division: tournament.Division,
			IsBot:    true,
		}
		if err := p.teamRepo.Create(ctx, team); err != nil {
			return nil, fmt.Errorf("failed to create bot team %d of %d: %w", i+1, count, err)
		}
		teamIDs = append(teamIDs, team.ID)
	}

	p.logger.InfoContext(ctx, "bot teams provisioned",
		slog.Int("tournament_id", tournamentID),
		slog.Int("count", len(teamIDs)))
	return teamIDs, nil
}
